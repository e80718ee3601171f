package domain

import (
	"errors"
	"testing"
	"time"
)

// TestAnnotation_Validate covers the per-type required fields.
func TestAnnotation_Validate(t *testing.T) {
	base := Annotation{
		ID:         "a1",
		Type:       AnnotationHighlight,
		PageNumber: 1,
		X:          0.1,
		Y:          0.2,
		Width:      0.3,
		Height:     0.02,
		Color:      "#FFFF00",
		CreatedAt:  time.Now(),
	}

	tests := []struct {
		name   string
		mutate func(a *Annotation)
		errMsg string
	}{
		{name: "valid highlight", mutate: func(a *Annotation) {}},
		{name: "missing id", mutate: func(a *Annotation) { a.ID = "" }, errMsg: "id: annotation ID is required"},
		{name: "unknown type", mutate: func(a *Annotation) { a.Type = "strike" }, errMsg: "type: unknown annotation type"},
		{name: "page zero", mutate: func(a *Annotation) { a.PageNumber = 0 }, errMsg: "page_number: page number must be 1 or greater"},
		{name: "bad color", mutate: func(a *Annotation) { a.Color = "yellow" }, errMsg: "color: color must be #RRGGBB"},
		{name: "zero area is kept", mutate: func(a *Annotation) { a.Width = 0 }},
		{name: "negative area", mutate: func(a *Annotation) { a.Height = -0.1 }, errMsg: "width: text markup area cannot be negative"},
		{
			name: "comment without text",
			mutate: func(a *Annotation) {
				a.Type = AnnotationComment
				a.Color = ""
			},
			errMsg: "text: comment text is required",
		},
		{
			name: "signature without image",
			mutate: func(a *Annotation) {
				a.Type = AnnotationSignature
			},
			errMsg: "image_data_url: signature image is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := base
			tt.mutate(&a)
			err := a.Validate()
			if tt.errMsg == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if vErr.Error() != tt.errMsg {
				t.Fatalf("expected %q, got %q", tt.errMsg, vErr.Error())
			}
		})
	}
}

func TestValidColor(t *testing.T) {
	for _, c := range []string{"#FFFF00", "#ff9999", "#99FF99"} {
		if !ValidColor(c) {
			t.Errorf("expected %s to be valid", c)
		}
	}
	for _, c := range []string{"", "FFFF00", "#FFF", "#GGGGGG", "#FFFF000"} {
		if ValidColor(c) {
			t.Errorf("expected %s to be invalid", c)
		}
	}
}

func TestClampScale(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{1.0, 1.0},
		{0.4, 0.5},
		{3.2, 3.0},
		{1.2000000000000002, 1.2},
		{0.30000000000000004, 0.5},
	}
	for _, c := range cases {
		if got := ClampScale(c.in); got != c.want {
			t.Errorf("ClampScale(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestIntentRequest_ToIntent(t *testing.T) {
	in, err := IntentRequest{Type: "go_to_page", Page: 3}.ToIntent()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, ok := in.(GoToPage); !ok || got.Page != 3 {
		t.Fatalf("unexpected intent %#v", in)
	}

	if _, err := (IntentRequest{Type: "click"}).ToIntent(); !errors.Is(err, ErrInvalidIntent) {
		t.Fatalf("expected ErrInvalidIntent for click without point, got %v", err)
	}
	if _, err := (IntentRequest{Type: "explode"}).ToIntent(); !errors.Is(err, ErrInvalidIntent) {
		t.Fatalf("expected ErrInvalidIntent for unknown type, got %v", err)
	}
}

type countingHandle struct {
	closes int
}

func (h *countingHandle) PageCount() int { return 1 }
func (h *countingHandle) PageSize(int) (PageSize, error) { return PageSize{}, nil }
func (h *countingHandle) RenderPNG(int, float64) ([]byte, error) { return nil, nil }
func (h *countingHandle) Close() error {
	h.closes++
	return nil
}

func TestLoadedDocument_ReleaseOnce(t *testing.T) {
	h := &countingHandle{}
	doc := &LoadedDocument{Name: "doc.pdf", Data: []byte("%PDF-"), Handle: h}

	for i := 0; i < 3; i++ {
		if err := doc.Release(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if h.closes != 1 {
		t.Fatalf("expected handle closed once, got %d", h.closes)
	}
	if doc.Data != nil {
		t.Fatalf("expected bytes dropped on release")
	}

	var nilDoc *LoadedDocument
	if err := nilDoc.Release(); err != nil {
		t.Fatalf("nil release should be a no-op")
	}
}
