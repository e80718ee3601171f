// Package signature implements the freehand drawing surface used to capture
// signatures.
package signature

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"sync"

	"golang.org/x/image/vector"
	"seehuhn.de/go/geom/vec"

	"pdf-annotator/internal/domain"
)

// Surface geometry and pen.
const (
	Width       = 400
	Height      = 200
	StrokeWidth = 2.0
)

// MaxPixels bounds the decoded size of an imported signature image.
const MaxPixels = Width * Height * 4

// DataURLPrefix starts every saved signature.
const DataURLPrefix = "data:image/png;base64,"

var ink = color.Black

// capSegments is the number of edges of the polygon approximating a round cap.
const capSegments = 12

// Pad records pointer strokes on a fixed-size surface. A pad is single use:
// Save and Discard close it.
type Pad struct {
	mu      sync.Mutex
	width   int
	height  int
	strokes []domain.Stroke
	drawing bool
	closed  bool
}

// NewPad returns an empty pad of the standard size.
func NewPad() *Pad {
	return &Pad{width: Width, height: Height}
}

// Apply feeds one pointer event to the pad.
func (p *Pad) Apply(ev domain.PadEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return domain.ErrPadClosed
	}

	pt := domain.Point{
		X: math.Min(math.Max(ev.X, 0), float64(p.width)),
		Y: math.Min(math.Max(ev.Y, 0), float64(p.height)),
	}
	switch ev.Kind {
	case domain.PadDown:
		p.drawing = true
		p.strokes = append(p.strokes, domain.Stroke{pt})
	case domain.PadMove:
		if !p.drawing {
			return nil
		}
		last := len(p.strokes) - 1
		p.strokes[last] = append(p.strokes[last], pt)
	case domain.PadUp, domain.PadLeave:
		p.drawing = false
	default:
		return fmt.Errorf("%w: unknown pad event %q", domain.ErrInvalidIntent, ev.Kind)
	}
	return nil
}

// Clear wipes the surface.
func (p *Pad) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return domain.ErrPadClosed
	}
	p.strokes = nil
	p.drawing = false
	return nil
}

// Save encodes the surface as a PNG data URL and closes the pad.
func (p *Pad) Save() (*domain.SignatureCapture, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, domain.ErrPadClosed
	}

	img := Rasterize(p.strokes, p.width, p.height)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode signature: %w", err)
	}

	p.closed = true
	return &domain.SignatureCapture{
		DataURL: DataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()),
		Width:   p.width,
		Height:  p.height,
		Strokes: p.strokes,
	}, nil
}

// Discard closes the pad without saving.
func (p *Pad) Discard() {
	p.mu.Lock()
	p.closed = true
	p.strokes = nil
	p.mu.Unlock()
}

// Rasterize draws strokes onto a transparent w x h image. Successive points
// of a stroke are joined by segments with round caps. A stroke with a single
// point leaves no ink.
func Rasterize(strokes []domain.Stroke, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	src := image.NewUniform(ink)
	r := vector.NewRasterizer(w, h)
	half := StrokeWidth / 2

	fill := func() {
		r.Draw(img, img.Bounds(), src, image.Point{})
		r.Reset(w, h)
	}

	for _, s := range strokes {
		if len(s) < 2 {
			continue
		}
		for i := 1; i < len(s); i++ {
			a := vec.Vec2{X: s[i-1].X, Y: s[i-1].Y}
			b := vec.Vec2{X: s[i].X, Y: s[i].Y}
			d := b.Sub(a)
			if d.Length() > 0 {
				n := d.Normalize().Rot90().Mul(half)
				moveTo(r, a.Add(n))
				lineTo(r, b.Add(n))
				lineTo(r, b.Sub(n))
				lineTo(r, a.Sub(n))
				r.ClosePath()
				fill()
			}
			roundCap(r, a, half)
			fill()
		}
		roundCap(r, vec.Vec2{X: s[len(s)-1].X, Y: s[len(s)-1].Y}, half)
		fill()
	}
	return img
}

func roundCap(r *vector.Rasterizer, c vec.Vec2, radius float64) {
	for i := 0; i < capSegments; i++ {
		theta := 2 * math.Pi * float64(i) / capSegments
		p := c.Add(vec.Vec2{X: math.Cos(theta), Y: math.Sin(theta)}.Mul(radius))
		if i == 0 {
			moveTo(r, p)
		} else {
			lineTo(r, p)
		}
	}
	r.ClosePath()
}

func moveTo(r *vector.Rasterizer, p vec.Vec2) { r.MoveTo(float32(p.X), float32(p.Y)) }
func lineTo(r *vector.Rasterizer, p vec.Vec2) { r.LineTo(float32(p.X), float32(p.Y)) }

// DecodeDataURL returns the decoded bytes of a base64 image data URL and the
// image's pixel size.
func DecodeDataURL(dataURL string) ([]byte, image.Config, error) {
	header, payload, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return nil, image.Config{}, fmt.Errorf("%w: not a base64 image data URL", domain.ErrInvalidSignature)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, image.Config{}, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, image.Config{}, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, image.Config{}, fmt.Errorf("%w: image is %dx%d, limit is %d pixels",
			domain.ErrInvalidSignature, cfg.Width, cfg.Height, MaxPixels)
	}
	return raw, cfg, nil
}
