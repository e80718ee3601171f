package overlay

import (
	"strings"
	"testing"

	"pdf-annotator/internal/domain"
)

func TestLayoutCallout(t *testing.T) {
	lines, w, h := LayoutCallout("hello")
	if len(lines) != 1 || w != 35+2*CalloutPadding || h != CalloutLineHeight+2*CalloutPadding {
		t.Fatalf("unexpected layout %v %vx%v", lines, w, h)
	}

	word := "abcdefghij"
	long := strings.TrimSpace(strings.Repeat(word+" ", 10))
	lines, w, h = LayoutCallout(long)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), lines)
	}
	if w > CalloutMaxWidth {
		t.Fatalf("callout wider than %d: %v", CalloutMaxWidth, w)
	}
	if h != 3*CalloutLineHeight+2*CalloutPadding {
		t.Fatalf("unexpected height %v", h)
	}

	lines, _, _ = LayoutCallout("first\n\nthird")
	if len(lines) != 3 || lines[1] != "" {
		t.Fatalf("expected newlines to be kept, got %q", lines)
	}

	_, w, _ = LayoutCallout(strings.Repeat("x", 100))
	if w != CalloutMaxWidth {
		t.Fatalf("expected overlong word to be capped at %d, got %v", CalloutMaxWidth, w)
	}
}

func TestRender_WithoutDocument(t *testing.T) {
	o := Render(domain.NewViewerState(false))
	if o.Page != 1 || len(o.Elements) != 0 || o.Width != 0 {
		t.Fatalf("unexpected overlay %+v", o)
	}
}

func TestFitBox(t *testing.T) {
	cases := []struct {
		w, h, wantW, wantH float64
	}{
		{100, 50, 100, 50},
		{400, 200, 200, 100},
		{400, 100, 200, 50},
		{100, 400, 25, 100},
	}
	for _, c := range cases {
		w, h := FitBox(c.w, c.h, SignatureMaxWidth, SignatureMaxHeight)
		if !near(w, c.wantW) || !near(h, c.wantH) {
			t.Errorf("FitBox(%v, %v) = %v, %v; want %v, %v", c.w, c.h, w, h, c.wantW, c.wantH)
		}
	}
}
