package greenroom

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the window that Run creates.
type RunConfig struct {
	// Title is the window title.
	Title string

	// Width and Height are the window size in device-independent pixels.
	// Zero values fall back to the manager's logical size.
	Width  int
	Height int

	// Resizable lets the user resize the window. The manager's logical
	// size stays fixed; ebiten scales it to fit.
	Resizable bool
}

// Run opens a window and drives m until a scene returns an error from
// Update or the window is closed. It is a convenience wrapper; for full
// control over the window, call ebiten.RunGame(m) yourself.
//
// Run blocks for the lifetime of the window and must be called from the
// main goroutine.
func Run(m *Manager, cfg RunConfig) error {
	if m == nil {
		panic("greenroom: Run: nil manager")
	}
	w, h := cfg.Width, cfg.Height
	if w <= 0 {
		w = m.cfg.Width
	}
	if h <= 0 {
		h = m.cfg.Height
	}
	ebiten.SetWindowSize(w, h)
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	return ebiten.RunGame(m)
}
