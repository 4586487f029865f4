package greenroom

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Scene is one screen of an application: a title, a level, a settings menu.
// The Manager drives every Scene through a fixed lifecycle, calling all of
// these methods from the game loop goroutine:
//
//  1. AssetBundles is read once, when the scene is handed to ChangeScene.
//  2. FinishConstruction runs after every named bundle has loaded and before
//     the scene is shown. Build the parts that need loaded assets here.
//  3. Update then Draw run every tick while the scene is current.
//  4. Dispose runs exactly once, after the scene has been replaced or when
//     its transition fails partway.
//
// Keep constructors cheap: a Scene is constructed before its assets exist,
// so anything touching assets belongs in FinishConstruction.
type Scene interface {
	// AssetBundles names the manifest bundles this scene needs loaded
	// before it can be shown. Order does not matter. Nil or empty means
	// the scene needs no assets.
	AssetBundles() []string

	// FinishConstruction completes setup once the scene's bundles are
	// loaded. Returning a non-nil error aborts the transition: the scene
	// is disposed and never shown.
	FinishConstruction() error

	// Update advances the scene by dt seconds (one tick). Returning a
	// non-nil error stops the game loop and surfaces the error from Run.
	Update(dt float64) error

	// Draw renders the scene onto screen.
	Draw(screen *ebiten.Image)

	// Dispose releases the scene's resources. It must be safe to call
	// more than once; only the first call should do work.
	Dispose()
}

// SceneState describes where a Scene is in its lifecycle. States only move
// forward: a Scene instance is used for at most one transition and cannot
// return to an earlier state.
type SceneState uint8

const (
	SceneConstructed SceneState = iota // handed to ChangeScene; assets loading
	SceneAssetReady                    // bundles loaded; not yet shown
	SceneAttached                      // current scene, receiving Update/Draw
	SceneDetached                      // replaced or failed; disposed
)

// BaseScene provides default implementations for every Scene method. Embed
// it so a scene only implements the methods it needs:
//
//	type Title struct {
//		greenroom.BaseScene
//	}
//
//	func (t *Title) AssetBundles() []string { return []string{"title"} }
//	func (t *Title) Draw(screen *ebiten.Image) { ... }
//
// Scenes that override Dispose should use IsDisposed as their idempotency
// guard and finish by calling the embedded Dispose:
//
//	func (t *Title) Dispose() {
//		if t.IsDisposed() {
//			return
//		}
//		// release resources
//		t.BaseScene.Dispose()
//	}
type BaseScene struct {
	disposed bool
}

// AssetBundles returns nil: no bundles required.
func (b *BaseScene) AssetBundles() []string {
	return nil
}

// FinishConstruction does nothing.
func (b *BaseScene) FinishConstruction() error {
	return nil
}

// Update does nothing.
func (b *BaseScene) Update(dt float64) error {
	return nil
}

// Draw draws nothing.
func (b *BaseScene) Draw(screen *ebiten.Image) {}

// Dispose marks the scene disposed. Calling it again has no effect.
func (b *BaseScene) Dispose() {
	b.disposed = true
}

// IsDisposed reports whether Dispose has been called.
func (b *BaseScene) IsDisposed() bool {
	return b.disposed
}
