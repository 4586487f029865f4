package greenroom

import "testing"

// --- Color ---

func TestColorWhite(t *testing.T) {
	if ColorWhite.R != 1 || ColorWhite.G != 1 || ColorWhite.B != 1 || ColorWhite.A != 1 {
		t.Errorf("ColorWhite = %v, want {1,1,1,1}", ColorWhite)
	}
}

func TestColorToRGBA(t *testing.T) {
	tests := []struct {
		name string
		in   Color
		want colorRGBA
	}{
		{"white", Color{1, 1, 1, 1}, colorRGBA{255, 255, 255, 255}},
		{"black", Color{0, 0, 0, 1}, colorRGBA{0, 0, 0, 255}},
		{"half alpha premultiplies", Color{1, 0, 0, 0.5}, colorRGBA{127, 0, 0, 127}},
		{"clamps above", Color{2, 0, 0, 1}, colorRGBA{255, 0, 0, 255}},
		{"clamps below", Color{-1, 0, 0, 1}, colorRGBA{0, 0, 0, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.toRGBA(); got != tt.want {
				t.Errorf("toRGBA() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestColorRGBA_SixteenBit(t *testing.T) {
	r, g, b, a := (colorRGBA{255, 0, 127, 255}).RGBA()
	if r != 0xffff || g != 0 || b != 127*0x101 || a != 0xffff {
		t.Errorf("RGBA() = %d, %d, %d, %d", r, g, b, a)
	}
}

// --- Enum constant values (catch accidental iota drift) ---

func TestEnumValues(t *testing.T) {
	// SourceState
	if SourceUninitialized != 0 {
		t.Errorf("SourceUninitialized = %d, want 0", SourceUninitialized)
	}
	if SourceInitializing != 1 {
		t.Errorf("SourceInitializing = %d, want 1", SourceInitializing)
	}
	if SourceReady != 2 {
		t.Errorf("SourceReady = %d, want 2", SourceReady)
	}
	if SourceFailed != 3 {
		t.Errorf("SourceFailed = %d, want 3", SourceFailed)
	}

	// SceneState
	if SceneConstructed != 0 {
		t.Errorf("SceneConstructed = %d, want 0", SceneConstructed)
	}
	if SceneAssetReady != 1 {
		t.Errorf("SceneAssetReady = %d, want 1", SceneAssetReady)
	}
	if SceneAttached != 2 {
		t.Errorf("SceneAttached = %d, want 2", SceneAttached)
	}
	if SceneDetached != 3 {
		t.Errorf("SceneDetached = %d, want 3", SceneDetached)
	}
}

// --- Shared images ---

func TestEnsureWhiteImage_Singleton(t *testing.T) {
	img1 := ensureWhiteImage()
	img2 := ensureWhiteImage()
	if img1 != img2 {
		t.Error("ensureWhiteImage returned different images")
	}
	if w, h := img1.Bounds().Dx(), img1.Bounds().Dy(); w != 1 || h != 1 {
		t.Errorf("white image size = %dx%d, want 1x1", w, h)
	}
}

func TestEnsureMagentaImage_Singleton(t *testing.T) {
	img1 := ensureMagentaImage()
	img2 := ensureMagentaImage()
	if img1 != img2 {
		t.Error("ensureMagentaImage returned different images")
	}
	if w, h := img1.Bounds().Dx(), img1.Bounds().Dy(); w != 1 || h != 1 {
		t.Errorf("magenta image size = %dx%d, want 1x1", w, h)
	}
}

// --- Benchmarks (verify zero allocations) ---

func BenchmarkColorToRGBA(b *testing.B) {
	c := Color{0.4, 0.5, 0.6, 0.8}
	b.ReportAllocs()
	for b.Loop() {
		_ = c.toRGBA()
	}
}
