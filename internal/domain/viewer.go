package domain

import "math"

// Tool is the annotation tool currently selected in the viewer.
type Tool string

const (
	ToolHighlight Tool = "highlight"
	ToolUnderline Tool = "underline"
	ToolComment   Tool = "comment"
	ToolSignature Tool = "signature"
)

// Valid reports whether t is a known tool.
func (t Tool) Valid() bool {
	return AnnotationType(t).Valid()
}

// MarksText reports whether the tool acts on text selections.
func (t Tool) MarksText() bool {
	return t == ToolHighlight || t == ToolUnderline
}

// PlacesAtClick reports whether the tool anchors on a click.
func (t Tool) PlacesAtClick() bool {
	return t == ToolComment || t == ToolSignature
}

// Zoom bounds and step.
const (
	MinScale     = 0.5
	MaxScale     = 3.0
	ScaleStep    = 0.2
	DefaultScale = 1.0
)

const (
	DefaultTool  = ToolHighlight
	DefaultColor = "#FFFF00"
)

// ClampScale rounds s to hundredths and bounds it to [MinScale, MaxScale].
func ClampScale(s float64) float64 {
	s = math.Round(s*100) / 100
	return math.Min(math.Max(s, MinScale), MaxScale)
}

// PageSize is a page's size in PDF points at scale 1.
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Scaled returns the on-screen pixel size of the page at scale.
func (p PageSize) Scaled(scale float64) PageSize {
	return PageSize{Width: p.Width * scale, Height: p.Height * scale}
}

// DocumentInfo describes the document loaded in a session.
type DocumentInfo struct {
	Name      string     `json:"name"`
	Size      int64      `json:"size"`
	PageCount int        `json:"page_count"`
	Pages     []PageSize `json:"pages"`
}

// Page returns the size of page n (1-based).
func (d *DocumentInfo) Page(n int) (PageSize, bool) {
	if d == nil || n < 1 || n > len(d.Pages) {
		return PageSize{}, false
	}
	return d.Pages[n-1], true
}

// Placement is a comment or signature anchor waiting for its content.
type Placement struct {
	Kind   AnnotationType `json:"kind"`
	Page   int            `json:"page"`
	Anchor Point          `json:"anchor"`
	Scale  float64        `json:"scale"`
}

// ViewerState is the single state object of one annotation session.
// It is treated as a value: transitions return a new state.
type ViewerState struct {
	Page     int           `json:"page"`
	Scale    float64       `json:"scale"`
	Tool     Tool          `json:"tool"`
	Color    string        `json:"color"`
	Document *DocumentInfo `json:"document,omitempty"`
	Pending  *Placement    `json:"pending,omitempty"`

	// Visible lists the IDs of records drawn on the active page, in draw order.
	Visible []string `json:"visible"`

	// RestoreOnReturn rebuilds Visible from history when a page is re-entered.
	RestoreOnReturn bool `json:"-"`

	Annotations AnnotationStore `json:"-"`
}

// NewViewerState returns the initial state of a session.
func NewViewerState(restoreOnReturn bool) ViewerState {
	return ViewerState{
		Page:            1,
		Scale:           DefaultScale,
		Tool:            DefaultTool,
		Color:           DefaultColor,
		Visible:         []string{},
		RestoreOnReturn: restoreOnReturn,
		Annotations:     NewAnnotationStore(),
	}
}

// PageCount returns the number of pages, or 1 when nothing is loaded.
func (s ViewerState) PageCount() int {
	if s.Document == nil || s.Document.PageCount < 1 {
		return 1
	}
	return s.Document.PageCount
}

// CurrentPageSize returns the active page's size in points.
func (s ViewerState) CurrentPageSize() (PageSize, bool) {
	return s.Document.Page(s.Page)
}
