package greenroom

import (
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is opaque white.
var ColorWhite = Color{1, 1, 1, 1}

// ColorBlack is opaque black, the default clear color and fade color.
var ColorBlack = Color{0, 0, 0, 1}

// toRGBA converts a greenroom Color to a premultiplied color value usable
// with ebiten.Image.Fill and draw color scales.
func (c Color) toRGBA() colorRGBA {
	return colorRGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

// colorRGBA implements the color.Color interface for image.Fill.
type colorRGBA struct {
	R, G, B, A uint8
}

func (c colorRGBA) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * 0x101
	g = uint32(c.G) * 0x101
	b = uint32(c.B) * 0x101
	a = uint32(c.A) * 0x101
	return
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// SetDebugMode enables or disables debug mode. When enabled, cache misses,
// background-load failures, and lifecycle oddities are logged to stderr.
func SetDebugMode(enabled bool) {
	debugMode = enabled
}

// debugMode gates diagnostic logging for the whole package. Read without
// synchronization on hot paths; set it once at startup.
var debugMode bool

func debugf(format string, args ...any) {
	if debugMode {
		log.Printf("greenroom: "+format, args...)
	}
}

// white pixel singleton, used to draw solid bars and fade rectangles by
// scaling a 1x1 image. Created lazily so that merely importing the package
// does not touch the graphics backend.
var whiteImage *ebiten.Image

func ensureWhiteImage() *ebiten.Image {
	if whiteImage == nil {
		whiteImage = ebiten.NewImage(1, 1)
		whiteImage.Fill(color.White)
	}
	return whiteImage
}

// magenta placeholder singleton returned by Source.Image for missing keys.
// No sync.Once: typed getters run on the game loop goroutine.
var magentaImage *ebiten.Image

func ensureMagentaImage() *ebiten.Image {
	if magentaImage == nil {
		magentaImage = ebiten.NewImage(1, 1)
		magentaImage.Fill(color.RGBA{R: 255, G: 0, B: 255, A: 255})
	}
	return magentaImage
}
