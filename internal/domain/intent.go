package domain

import "fmt"

// Viewport is the geometry the client observed when the input happened, in
// client (CSS pixel) space.
type Viewport struct {
	// Bounding-box origin of the scrolling page container.
	ContainerLeft float64 `json:"container_left"`
	ContainerTop  float64 `json:"container_top"`

	ScrollLeft float64 `json:"scroll_left"`
	ScrollTop  float64 `json:"scroll_top"`

	// Top-left of the rendered page inside the container's scrolled content.
	PageOffsetX float64 `json:"page_offset_x"`
	PageOffsetY float64 `json:"page_offset_y"`
}

// Intent is a user action handed to the reducer. Intents carry what
// happened, never what should be drawn.
type Intent interface {
	Name() string
}

type (
	SetTool  struct{ Tool Tool }
	SetColor struct{ Color string }
	GoToPage struct{ Page int }
	NextPage struct{}
	PrevPage struct{}
	ZoomIn   struct{}
	ZoomOut  struct{}
	SetZoom  struct{ Scale float64 }

	// SelectText carries the client rectangles of a text selection range,
	// one per visual line.
	SelectText struct {
		Rects    []Rect
		Viewport Viewport
	}

	// Click is a pointer click on the page container.
	Click struct {
		Point    Point
		Viewport Viewport
	}

	ConfirmComment struct{ Text string }

	// ConfirmSignature completes a pending signature placement with the
	// captured image. Width and Height are the image's intrinsic pixel size.
	ConfirmSignature struct {
		ImageDataURL string
		Width        int
		Height       int
		Strokes      []Stroke
	}

	CancelPlacement  struct{}
	RemoveAnnotation struct{ ID string }
)

func (SetTool) Name() string { return "set_tool" }
func (SetColor) Name() string { return "set_color" }
func (GoToPage) Name() string { return "go_to_page" }
func (NextPage) Name() string { return "next_page" }
func (PrevPage) Name() string { return "prev_page" }
func (ZoomIn) Name() string { return "zoom_in" }
func (ZoomOut) Name() string { return "zoom_out" }
func (SetZoom) Name() string { return "set_zoom" }
func (SelectText) Name() string { return "select_text" }
func (Click) Name() string { return "click" }
func (ConfirmComment) Name() string { return "confirm_comment" }
func (ConfirmSignature) Name() string { return "confirm_signature" }
func (CancelPlacement) Name() string { return "cancel_placement" }
func (RemoveAnnotation) Name() string { return "remove_annotation" }

// IntentRequest is the wire form of an intent.
type IntentRequest struct {
	Type         string   `json:"type"`
	Tool         Tool     `json:"tool,omitempty"`
	Color        string   `json:"color,omitempty"`
	Page         int      `json:"page,omitempty"`
	Scale        float64  `json:"scale,omitempty"`
	Rects        []Rect   `json:"rects,omitempty"`
	Point        *Point   `json:"point,omitempty"`
	Viewport     Viewport `json:"viewport"`
	Text         string   `json:"text,omitempty"`
	ImageDataURL string   `json:"image_data_url,omitempty"`
	PadID        string   `json:"pad_id,omitempty"`
	AnnotationID string   `json:"annotation_id,omitempty"`
}

// ToIntent converts the wire form into a typed intent. confirm_signature
// with a pad_id is resolved by the caller, which owns the pads.
func (r IntentRequest) ToIntent() (Intent, error) {
	switch r.Type {
	case "set_tool":
		return SetTool{Tool: r.Tool}, nil
	case "set_color":
		return SetColor{Color: r.Color}, nil
	case "go_to_page":
		return GoToPage{Page: r.Page}, nil
	case "next_page":
		return NextPage{}, nil
	case "prev_page":
		return PrevPage{}, nil
	case "zoom_in":
		return ZoomIn{}, nil
	case "zoom_out":
		return ZoomOut{}, nil
	case "set_zoom":
		return SetZoom{Scale: r.Scale}, nil
	case "select_text":
		return SelectText{Rects: r.Rects, Viewport: r.Viewport}, nil
	case "click":
		if r.Point == nil {
			return nil, fmt.Errorf("%w: click requires a point", ErrInvalidIntent)
		}
		return Click{Point: *r.Point, Viewport: r.Viewport}, nil
	case "confirm_comment":
		return ConfirmComment{Text: r.Text}, nil
	case "confirm_signature":
		return ConfirmSignature{ImageDataURL: r.ImageDataURL}, nil
	case "cancel_placement":
		return CancelPlacement{}, nil
	case "remove_annotation":
		return RemoveAnnotation{ID: r.AnnotationID}, nil
	}
	return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidIntent, r.Type)
}
