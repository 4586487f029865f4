package greenroom

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
)

// --- HTTPFetcher tests ---

func newAssetServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/assets/hero.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("HERO"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	srv := newAssetServer(t)

	var f HTTPFetcher
	data, err := f.Fetch(srv.URL + "/assets/hero.png")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "HERO" {
		t.Errorf("body = %q, want HERO", data)
	}
}

func TestHTTPFetcher_BaseURL(t *testing.T) {
	srv := newAssetServer(t)

	tests := []struct {
		name    string
		baseURL string
		locator string
	}{
		{"trailing slash", srv.URL + "/assets/", "hero.png"},
		{"no trailing slash", srv.URL + "/assets", "hero.png"},
		{"leading slash on locator", srv.URL + "/assets", "/hero.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := HTTPFetcher{BaseURL: tt.baseURL}
			data, err := f.Fetch(tt.locator)
			if err != nil {
				t.Fatalf("Fetch: %v", err)
			}
			if string(data) != "HERO" {
				t.Errorf("body = %q, want HERO", data)
			}
		})
	}
}

func TestHTTPFetcher_AbsoluteURLSkipsBase(t *testing.T) {
	srv := newAssetServer(t)

	// Absolute locators must not be re-joined onto BaseURL.
	f := HTTPFetcher{BaseURL: "http://base.invalid"}
	data, err := f.Fetch(srv.URL + "/assets/hero.png")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "HERO" {
		t.Errorf("body = %q, want HERO", data)
	}
}

func TestHTTPFetcher_NotFound(t *testing.T) {
	srv := newAssetServer(t)

	var f HTTPFetcher
	_, err := f.Fetch(srv.URL + "/assets/missing.png")
	if err == nil {
		t.Fatal("expected error for 404, got nil")
	}
	if !strings.Contains(err.Error(), "status") {
		t.Errorf("error = %q, want mention of status", err.Error())
	}
}

// --- FileFetcher tests ---

func TestFileFetcher_Fetch(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "img"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "img", "logo.png"), []byte("LOGO"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := FileFetcher{Root: dir}
	data, err := f.Fetch("img/logo.png")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "LOGO" {
		t.Errorf("data = %q, want LOGO", data)
	}
}

func TestFileFetcher_Missing(t *testing.T) {
	f := FileFetcher{Root: t.TempDir()}
	if _, err := f.Fetch("nope.png"); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

// --- FSFetcher tests ---

func TestFSFetcher_Fetch(t *testing.T) {
	f := FSFetcher{FS: fstest.MapFS{
		"audio/theme.ogg": &fstest.MapFile{Data: []byte("OGG")},
	}}

	data, err := f.Fetch("audio/theme.ogg")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "OGG" {
		t.Errorf("data = %q, want OGG", data)
	}

	if _, err := f.Fetch("audio/missing.ogg"); err == nil {
		t.Error("expected error for missing entry, got nil")
	}
}
