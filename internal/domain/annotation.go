package domain

import (
	"regexp"
	"time"
)

// AnnotationType is the kind of mark a user placed on a page.
type AnnotationType string

const (
	AnnotationHighlight AnnotationType = "highlight"
	AnnotationUnderline AnnotationType = "underline"
	AnnotationComment   AnnotationType = "comment"
	AnnotationSignature AnnotationType = "signature"
)

// Valid reports whether t is one of the known annotation types.
func (t AnnotationType) Valid() bool {
	switch t {
	case AnnotationHighlight, AnnotationUnderline, AnnotationComment, AnnotationSignature:
		return true
	}
	return false
}

// Point is a position in some 2D coordinate space. The space is stated by
// whoever hands the value around (client, container, page or normalized).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle with a top-left origin.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Stroke is one pointer-down..pointer-up polyline on a signature pad, in pad pixels.
type Stroke []Point

// Annotation is one user-added mark. X, Y, Width and Height are normalized
// to the page: 0..1 fractions of the page width and height, origin top-left.
type Annotation struct {
	ID            string         `json:"id"`
	Type          AnnotationType `json:"type"`
	PageNumber    int            `json:"page_number"`
	X             float64        `json:"x"`
	Y             float64        `json:"y"`
	Width         float64        `json:"width,omitempty"`
	Height        float64        `json:"height,omitempty"`
	Color         string         `json:"color,omitempty"`
	Text          string         `json:"text,omitempty"`
	ImageDataURL  string         `json:"image_data_url,omitempty"`
	Strokes       []Stroke       `json:"strokes,omitempty"`
	CapturedScale float64        `json:"captured_scale"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Bounds returns the normalized rectangle of the annotation.
func (a Annotation) Bounds() Rect {
	return Rect{X: a.X, Y: a.Y, Width: a.Width, Height: a.Height}
}

// Validate checks the fields every record must carry for its type.
func (a Annotation) Validate() error {
	if a.ID == "" {
		return &ValidationError{Field: "id", Message: "annotation ID is required"}
	}
	if !a.Type.Valid() {
		return &ValidationError{Field: "type", Message: "unknown annotation type"}
	}
	if a.PageNumber < 1 {
		return &ValidationError{Field: "page_number", Message: "page number must be 1 or greater"}
	}
	switch a.Type {
	case AnnotationHighlight, AnnotationUnderline:
		if !ValidColor(a.Color) {
			return &ValidationError{Field: "color", Message: "color must be #RRGGBB"}
		}
		if a.Width < 0 || a.Height < 0 {
			return &ValidationError{Field: "width", Message: "text markup area cannot be negative"}
		}
	case AnnotationComment:
		if a.Text == "" {
			return &ValidationError{Field: "text", Message: "comment text is required"}
		}
	case AnnotationSignature:
		if a.ImageDataURL == "" {
			return &ValidationError{Field: "image_data_url", Message: "signature image is required"}
		}
	}
	return nil
}

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ValidColor reports whether c is a #RRGGBB colour.
func ValidColor(c string) bool {
	return colorPattern.MatchString(c)
}
