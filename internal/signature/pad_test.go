package signature

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"pdf-annotator/internal/domain"
)

func draw(t *testing.T, p *Pad, events ...domain.PadEvent) {
	t.Helper()
	for _, ev := range events {
		if err := p.Apply(ev); err != nil {
			t.Fatalf("apply %s: %v", ev.Kind, err)
		}
	}
}

func TestPad_SaveEncodesStrokes(t *testing.T) {
	p := NewPad()
	draw(t, p,
		domain.PadEvent{Kind: domain.PadDown, X: 10, Y: 100},
		domain.PadEvent{Kind: domain.PadMove, X: 200, Y: 100},
		domain.PadEvent{Kind: domain.PadUp},
		// moves with the pointer up leave no ink
		domain.PadEvent{Kind: domain.PadMove, X: 300, Y: 150},
	)

	capture, err := p.Save()
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(capture.DataURL, DataURLPrefix) {
		t.Fatalf("unexpected data URL prefix: %.30s", capture.DataURL)
	}
	if capture.Width != Width || capture.Height != Height {
		t.Fatalf("unexpected size %dx%d", capture.Width, capture.Height)
	}
	if len(capture.Strokes) != 1 || len(capture.Strokes[0]) != 2 {
		t.Fatalf("unexpected strokes %v", capture.Strokes)
	}

	raw, cfg, err := DecodeDataURL(capture.DataURL)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != Width || cfg.Height != Height {
		t.Fatalf("unexpected PNG size %dx%d", cfg.Width, cfg.Height)
	}

	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("png: %v", err)
	}
	if _, _, _, a := img.At(100, 100).RGBA(); a == 0 {
		t.Fatalf("expected ink on the stroke")
	}
	if _, _, _, a := img.At(300, 150).RGBA(); a != 0 {
		t.Fatalf("expected no ink where the pointer moved while up")
	}
	if _, _, _, a := img.At(100, 110).RGBA(); a != 0 {
		t.Fatalf("expected stroke to stay thin")
	}
}

func TestPad_ClosedAfterSave(t *testing.T) {
	p := NewPad()
	if _, err := p.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := p.Save(); !errors.Is(err, domain.ErrPadClosed) {
		t.Fatalf("expected ErrPadClosed, got %v", err)
	}
	if err := p.Apply(domain.PadEvent{Kind: domain.PadDown}); !errors.Is(err, domain.ErrPadClosed) {
		t.Fatalf("expected ErrPadClosed, got %v", err)
	}
	if err := p.Clear(); !errors.Is(err, domain.ErrPadClosed) {
		t.Fatalf("expected ErrPadClosed, got %v", err)
	}
}

func TestPad_ClearAndDiscard(t *testing.T) {
	p := NewPad()
	draw(t, p,
		domain.PadEvent{Kind: domain.PadDown, X: 0, Y: 0},
		domain.PadEvent{Kind: domain.PadMove, X: 50, Y: 50},
	)
	if err := p.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	// the stroke ended with the clear
	draw(t, p, domain.PadEvent{Kind: domain.PadMove, X: 60, Y: 60})

	capture, err := p.Save()
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(capture.Strokes) != 0 {
		t.Fatalf("expected no strokes after clear, got %v", capture.Strokes)
	}

	q := NewPad()
	q.Discard()
	if err := q.Apply(domain.PadEvent{Kind: domain.PadDown}); !errors.Is(err, domain.ErrPadClosed) {
		t.Fatalf("expected ErrPadClosed after discard, got %v", err)
	}
}

func TestPad_LeaveEndsStroke(t *testing.T) {
	p := NewPad()
	draw(t, p,
		domain.PadEvent{Kind: domain.PadDown, X: 10, Y: 10},
		domain.PadEvent{Kind: domain.PadMove, X: 20, Y: 10},
		domain.PadEvent{Kind: domain.PadLeave},
		domain.PadEvent{Kind: domain.PadMove, X: 500, Y: 10},
		domain.PadEvent{Kind: domain.PadDown, X: 450, Y: -20},
	)
	capture, err := p.Save()
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(capture.Strokes) != 2 || len(capture.Strokes[0]) != 2 {
		t.Fatalf("unexpected strokes %v", capture.Strokes)
	}
	if got := capture.Strokes[1][0]; got.X != Width || got.Y != 0 {
		t.Fatalf("expected point clamped to the surface, got %+v", got)
	}

	if err := NewPad().Apply(domain.PadEvent{Kind: "hover"}); !errors.Is(err, domain.ErrInvalidIntent) {
		t.Fatalf("expected ErrInvalidIntent, got %v", err)
	}
}

func TestDecodeDataURL_Rejects(t *testing.T) {
	for _, in := range []string{
		"",
		"https://example.com/sig.png",
		"data:text/plain;base64,aGk=",
		"data:image/png;base64,!!!",
		"data:image/png;base64,aGVsbG8=",
	} {
		if _, _, err := DecodeDataURL(in); !errors.Is(err, domain.ErrInvalidSignature) {
			t.Errorf("%q: expected ErrInvalidSignature, got %v", in, err)
		}
	}
}

func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, w, h), color.Palette{color.White, color.Black})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return DataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestDecodeDataURL_PixelLimit(t *testing.T) {
	if _, cfg, err := DecodeDataURL(pngDataURL(t, Width*2, Height*2)); err != nil || cfg.Width != Width*2 {
		t.Fatalf("image at the limit should decode, got cfg=%+v err=%v", cfg, err)
	}

	// A flat paletted image compresses to a few kilobytes regardless of size.
	big := pngDataURL(t, 1500, 1500)
	if len(big) > 64<<10 {
		t.Fatalf("expected a small data URL, got %d bytes", len(big))
	}
	if _, _, err := DecodeDataURL(big); !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}
