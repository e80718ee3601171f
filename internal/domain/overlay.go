package domain

// OverlayKind is how an overlay element is drawn.
type OverlayKind string

const (
	OverlayFill      OverlayKind = "fill"
	OverlayUnderline OverlayKind = "underline"
	OverlayCallout   OverlayKind = "callout"
	OverlayImage     OverlayKind = "image"
)

// OverlayElement is the transient visual of one annotation record. Positions
// are page-relative pixels at the overlay's scale.
type OverlayElement struct {
	AnnotationID string      `json:"annotation_id"`
	Kind         OverlayKind `json:"kind"`
	Left         float64     `json:"left"`
	Top          float64     `json:"top"`
	Width        float64     `json:"width"`
	Height       float64     `json:"height"`
	Color        string      `json:"color,omitempty"`
	Opacity      float64     `json:"opacity,omitempty"`
	BorderBottom float64     `json:"border_bottom,omitempty"`
	Lines        []string    `json:"lines,omitempty"`
	Src          string      `json:"src,omitempty"`
	ZIndex       int         `json:"z_index,omitempty"`
}

// Overlay is the reconciled overlay layer for the active page.
type Overlay struct {
	Page     int              `json:"page"`
	Scale    float64          `json:"scale"`
	Width    float64          `json:"width"`
	Height   float64          `json:"height"`
	Elements []OverlayElement `json:"elements"`
}

// SessionSnapshot is what clients get back after every state change.
type SessionSnapshot struct {
	SessionID       string        `json:"session_id"`
	Page            int           `json:"page"`
	PageCount       int           `json:"page_count"`
	Scale           float64       `json:"scale"`
	Tool            Tool          `json:"tool"`
	Color           string        `json:"color"`
	Document        *DocumentInfo `json:"document,omitempty"`
	Pending         *Placement    `json:"pending,omitempty"`
	AnnotationCount int           `json:"annotation_count"`
	Overlay         Overlay       `json:"overlay"`
	ClearSelection  bool          `json:"clear_selection,omitempty"`
	Created         []Annotation  `json:"created,omitempty"`
}
