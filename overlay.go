package greenroom

import (
	"fmt"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Bar geometry. The track is rasterized once and reused.
const (
	barWidth     = 240
	barHeight    = 16
	barSmoothing = 0.15 // seconds for the displayed ratio to reach a new target
)

// progressOverlay is the built-in loading bar drawn before the first scene
// attaches. The displayed ratio chases the real one through a short tween so
// a burst of finished assets reads as motion instead of a jump.
//
// All methods run on the game loop goroutine.
type progressOverlay struct {
	track     *ebiten.Image
	target    float64
	displayed float64
	tween     *gween.Tween
}

func newProgressOverlay() *progressOverlay {
	return &progressOverlay{}
}

// setTarget feeds the overlay the real loading ratio.
func (o *progressOverlay) setTarget(r float64) {
	if r <= o.target {
		return
	}
	o.target = r
	o.tween = gween.New(float32(o.displayed), float32(r), barSmoothing, ease.OutQuad)
}

// update advances the displayed ratio toward the target.
func (o *progressOverlay) update(dt float64) {
	if o.tween == nil {
		return
	}
	v, finished := o.tween.Update(float32(dt))
	o.displayed = float64(v)
	if finished {
		o.tween = nil
	}
}

// ensureTrack rasterizes the rounded track on first use, so a Manager that
// never draws the overlay never builds it.
func (o *progressOverlay) ensureTrack() {
	if o.track != nil {
		return
	}
	dc := gg.NewContext(barWidth, barHeight)
	dc.SetColor(color.RGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xff})
	dc.DrawRoundedRectangle(0, 0, barWidth, barHeight, barHeight/2)
	dc.Fill()
	dc.SetColor(color.RGBA{R: 0x50, G: 0x50, B: 0x50, A: 0xff})
	dc.DrawRoundedRectangle(1, 1, barWidth-2, barHeight-2, (barHeight-2)/2)
	dc.Fill()
	o.track = ebiten.NewImageFromImage(dc.Image())
}

// draw renders the bar centered on screen with a percentage readout.
func (o *progressOverlay) draw(screen *ebiten.Image) {
	o.ensureTrack()

	bounds := screen.Bounds()
	x := float64(bounds.Dx()-barWidth) / 2
	y := float64(bounds.Dy()-barHeight) / 2

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(x, y)
	screen.DrawImage(o.track, op)

	// Stretch the shared white pixel across the completed portion, inset
	// so the track edge stays visible.
	fillW := (barWidth - 4) * o.displayed
	if fillW >= 1 {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(fillW, barHeight-4)
		op.GeoM.Translate(x+2, y+2)
		screen.DrawImage(ensureWhiteImage(), op)
	}

	msg := fmt.Sprintf("%3.0f%%", o.displayed*100)
	ebitenutil.DebugPrintAt(screen, msg, int(x)+barWidth+8, int(y))
}

// fillScreen covers screen with c at the given alpha. Drives the fade-in
// after a scene attaches.
func fillScreen(screen *ebiten.Image, c Color, alpha float64) {
	a := clamp01(alpha)
	if a <= 0 {
		return
	}
	bounds := screen.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(bounds.Dx()), float64(bounds.Dy()))
	op.ColorScale.Scale(
		float32(clamp01(c.R)*a),
		float32(clamp01(c.G)*a),
		float32(clamp01(c.B)*a),
		float32(a),
	)
	screen.DrawImage(ensureWhiteImage(), op)
}
