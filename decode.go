package greenroom

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path"
	"strings"
	"time"

	"github.com/golang/freetype/truetype"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// DecodeFunc turns fetched bytes into a typed asset value. Decoders run on
// loader goroutines; the returned value is cached and shared by every
// requester of the asset, so it must be safe to read concurrently.
type DecodeFunc func(data []byte) (any, error)

// Sound is a fully decoded audio asset: raw 16-bit little-endian stereo PCM.
// Decoding happens once at load time; each call to Player creates an
// independent player over the shared samples.
type Sound struct {
	SampleRate int
	PCM        []byte
}

// Player creates a new audio player for this sound. The context's sample
// rate should match the rate the Source decoded at (see SetSampleRate).
func (s *Sound) Player(ctx *audio.Context) (*audio.Player, error) {
	return ctx.NewPlayer(bytes.NewReader(s.PCM))
}

// Duration returns the playing time of the decoded samples.
func (s *Sound) Duration() time.Duration {
	if s.SampleRate <= 0 {
		return 0
	}
	// 2 bytes per sample, 2 channels.
	frames := len(s.PCM) / 4
	return time.Duration(frames) * time.Second / time.Duration(s.SampleRate)
}

// assetExt extracts the lowercased file extension from a locator, ignoring
// any query string or fragment.
func assetExt(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	return strings.ToLower(path.Ext(url))
}

// decodeAsset routes fetched bytes through the decoder registered for the
// locator's extension, falling back to the built-in set:
//
//	.png .jpg .jpeg  *ebiten.Image
//	.wav .ogg .mp3   *Sound
//	.ttf .otf        *truetype.Font
//	.json            any (json.Unmarshal)
//	anything else    []byte (raw)
func (s *Source) decodeAsset(url string, data []byte) (any, error) {
	ext := assetExt(url)
	if fn, ok := s.decoders[ext]; ok {
		return fn(data)
	}
	switch ext {
	case ".png", ".jpg", ".jpeg":
		return decodeImage(data)
	case ".wav":
		return decodeSound(data, s.sampleRate, func(r *bytes.Reader) (io.Reader, error) {
			return wav.DecodeWithSampleRate(s.sampleRate, r)
		})
	case ".ogg":
		return decodeSound(data, s.sampleRate, func(r *bytes.Reader) (io.Reader, error) {
			return vorbis.DecodeWithSampleRate(s.sampleRate, r)
		})
	case ".mp3":
		return decodeSound(data, s.sampleRate, func(r *bytes.Reader) (io.Reader, error) {
			return mp3.DecodeWithSampleRate(s.sampleRate, r)
		})
	case ".ttf", ".otf":
		f, err := truetype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse font: %w", err)
		}
		return f, nil
	case ".json":
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("parse JSON: %w", err)
		}
		return v, nil
	default:
		return data, nil
	}
}

func decodeImage(data []byte) (any, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return ebiten.NewImageFromImage(img), nil
}

func decodeSound(data []byte, sampleRate int, decode func(*bytes.Reader) (io.Reader, error)) (any, error) {
	stream, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode audio: %w", err)
	}
	pcm, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("decode audio samples: %w", err)
	}
	return &Sound{SampleRate: sampleRate, PCM: pcm}, nil
}
