package overlay

import "pdf-annotator/internal/domain"

// Element styling.
const (
	HighlightOpacity   = 0.3
	UnderlineThickness = 2.0
	CalloutColor       = "#FEF9C3"
	RaisedZIndex       = 10
)

// Render projects the visible records of s onto its active page. Records of
// other pages never appear, whatever Visible holds.
func Render(s domain.ViewerState) domain.Overlay {
	out := domain.Overlay{
		Page:     s.Page,
		Scale:    s.Scale,
		Elements: []domain.OverlayElement{},
	}
	page, ok := s.CurrentPageSize()
	if !ok {
		return out
	}
	px := page.Scaled(s.Scale)
	out.Width, out.Height = px.Width, px.Height

	for _, id := range s.Visible {
		a, ok := s.Annotations.Get(id)
		if !ok || a.PageNumber != s.Page {
			continue
		}
		out.Elements = append(out.Elements, element(a, page, s.Scale))
	}
	return out
}

func element(a domain.Annotation, page domain.PageSize, scale float64) domain.OverlayElement {
	r := ToPixels(a.Bounds(), page, scale)
	el := domain.OverlayElement{
		AnnotationID: a.ID,
		Left:         r.X,
		Top:          r.Y,
		Width:        r.Width,
		Height:       r.Height,
	}

	switch a.Type {
	case domain.AnnotationHighlight:
		el.Kind = domain.OverlayFill
		el.Color = a.Color
		el.Opacity = HighlightOpacity
	case domain.AnnotationUnderline:
		// Drawn as a bottom border hugging the text line.
		el.Kind = domain.OverlayUnderline
		el.Color = a.Color
		el.Top = r.Y + r.Height
		el.Height = 0
		el.BorderBottom = UnderlineThickness
	case domain.AnnotationComment:
		el.Kind = domain.OverlayCallout
		el.Color = CalloutColor
		el.Lines, el.Width, el.Height = LayoutCallout(a.Text)
		el.ZIndex = RaisedZIndex
	case domain.AnnotationSignature:
		el.Kind = domain.OverlayImage
		el.Src = a.ImageDataURL
		el.ZIndex = RaisedZIndex
	}
	return el
}
