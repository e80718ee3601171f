// Package overlay holds the pure state machine of an annotation session and
// the projection of its state onto the active page.
package overlay

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"pdf-annotator/internal/domain"
)

// Signature placements are fit into this box, in pixels at the capture scale.
const (
	SignatureMaxWidth  = 200.0
	SignatureMaxHeight = 100.0
)

// Env supplies the impure inputs of a transition.
type Env struct {
	NewID func() string
	Now   func() time.Time
}

// Effects reports what a transition did besides changing state.
type Effects struct {
	Created        []domain.Annotation
	Removed        []string
	ClearSelection bool
	PageChanged    bool
}

// Reduce applies one intent to s and returns the next state. s itself is
// never modified. On error the returned state is s unchanged.
func Reduce(s domain.ViewerState, in domain.Intent, env Env) (domain.ViewerState, Effects, error) {
	switch in := in.(type) {
	case domain.SetTool:
		if !in.Tool.Valid() {
			return s, Effects{}, fmt.Errorf("%w: %q", domain.ErrInvalidTool, in.Tool)
		}
		s.Tool = in.Tool
		return s, Effects{}, nil

	case domain.SetColor:
		if !domain.ValidColor(in.Color) {
			return s, Effects{}, fmt.Errorf("%w: %q", domain.ErrInvalidColor, in.Color)
		}
		s.Color = strings.ToUpper(in.Color)
		return s, Effects{}, nil

	case domain.GoToPage:
		return goToPage(s, in.Page)
	case domain.NextPage:
		return goToPage(s, s.Page+1)
	case domain.PrevPage:
		return goToPage(s, s.Page-1)

	case domain.ZoomIn:
		s.Scale = domain.ClampScale(s.Scale + domain.ScaleStep)
		return s, Effects{}, nil
	case domain.ZoomOut:
		s.Scale = domain.ClampScale(s.Scale - domain.ScaleStep)
		return s, Effects{}, nil
	case domain.SetZoom:
		if in.Scale <= 0 {
			return s, Effects{}, fmt.Errorf("%w: scale must be positive", domain.ErrInvalidIntent)
		}
		s.Scale = domain.ClampScale(in.Scale)
		return s, Effects{}, nil

	case domain.SelectText:
		return selectText(s, in, env)
	case domain.Click:
		return click(s, in)
	case domain.ConfirmComment:
		return confirmComment(s, in, env)
	case domain.ConfirmSignature:
		return confirmSignature(s, in, env)

	case domain.CancelPlacement:
		s.Pending = nil
		return s, Effects{}, nil

	case domain.RemoveAnnotation:
		store, ok := s.Annotations.Remove(in.ID)
		if !ok {
			return s, Effects{}, fmt.Errorf("%w: %s", domain.ErrAnnotationNotFound, in.ID)
		}
		s.Annotations = store
		s.Visible = slices.DeleteFunc(slices.Clone(s.Visible), func(id string) bool { return id == in.ID })
		return s, Effects{Removed: []string{in.ID}}, nil
	}

	if in == nil {
		return s, Effects{}, fmt.Errorf("%w: nil intent", domain.ErrInvalidIntent)
	}
	return s, Effects{}, fmt.Errorf("%w: unsupported intent %s", domain.ErrInvalidIntent, in.Name())
}

// Load returns s with a new document in place of the previous one: page 1,
// no history and no pending placement. Tool, colour and scale carry over.
func Load(s domain.ViewerState, info domain.DocumentInfo) domain.ViewerState {
	s.Document = &info
	s.Page = 1
	s.Pending = nil
	s.Visible = []string{}
	s.Annotations = domain.NewAnnotationStore()
	return s
}

func goToPage(s domain.ViewerState, page int) (domain.ViewerState, Effects, error) {
	page = min(max(page, 1), s.PageCount())
	if page == s.Page {
		return s, Effects{}, nil
	}
	s.Page = page
	s.Pending = nil
	if s.RestoreOnReturn {
		s.Visible = s.Annotations.IDs(page)
	} else {
		s.Visible = []string{}
	}
	return s, Effects{PageChanged: true}, nil
}

func selectText(s domain.ViewerState, in domain.SelectText, env Env) (domain.ViewerState, Effects, error) {
	if !s.Tool.MarksText() || len(in.Rects) == 0 {
		return s, Effects{}, nil
	}
	page, ok := s.CurrentPageSize()
	if !ok {
		return s, Effects{}, domain.ErrNoDocument
	}

	next := s
	created := make([]domain.Annotation, 0, len(in.Rects))
	for _, r := range in.Rects {
		n := Normalize(ContainerRect(r, in.Viewport), in.Viewport, page, s.Scale)
		a := domain.Annotation{
			ID:            env.NewID(),
			Type:          domain.AnnotationType(s.Tool),
			PageNumber:    s.Page,
			X:             n.X,
			Y:             n.Y,
			Width:         n.Width,
			Height:        n.Height,
			Color:         s.Color,
			CapturedScale: s.Scale,
			CreatedAt:     env.Now(),
		}
		if err := a.Validate(); err != nil {
			return s, Effects{}, fmt.Errorf("%w: %v", domain.ErrInvalidIntent, err)
		}
		next = record(next, a)
		created = append(created, a)
	}
	return next, Effects{Created: created, ClearSelection: true}, nil
}

func click(s domain.ViewerState, in domain.Click) (domain.ViewerState, Effects, error) {
	if !s.Tool.PlacesAtClick() {
		return s, Effects{}, nil
	}
	page, ok := s.CurrentPageSize()
	if !ok {
		return s, Effects{}, domain.ErrNoDocument
	}
	s.Pending = &domain.Placement{
		Kind:   domain.AnnotationType(s.Tool),
		Page:   s.Page,
		Anchor: NormalizePoint(ContainerPoint(in.Point, in.Viewport), in.Viewport, page, s.Scale),
		Scale:  s.Scale,
	}
	return s, Effects{}, nil
}

func confirmComment(s domain.ViewerState, in domain.ConfirmComment, env Env) (domain.ViewerState, Effects, error) {
	p := s.Pending
	if p == nil || p.Kind != domain.AnnotationComment {
		return s, Effects{}, domain.ErrNoPendingPlacement
	}
	if strings.TrimSpace(in.Text) == "" {
		return s, Effects{}, domain.ErrEmptyComment
	}

	a := domain.Annotation{
		ID:            env.NewID(),
		Type:          domain.AnnotationComment,
		PageNumber:    p.Page,
		X:             p.Anchor.X,
		Y:             p.Anchor.Y,
		Text:          in.Text,
		CapturedScale: p.Scale,
		CreatedAt:     env.Now(),
	}
	s.Pending = nil
	return record(s, a), Effects{Created: []domain.Annotation{a}}, nil
}

func confirmSignature(s domain.ViewerState, in domain.ConfirmSignature, env Env) (domain.ViewerState, Effects, error) {
	p := s.Pending
	if p == nil || p.Kind != domain.AnnotationSignature {
		return s, Effects{}, domain.ErrNoPendingPlacement
	}
	if in.ImageDataURL == "" || in.Width <= 0 || in.Height <= 0 {
		return s, Effects{}, domain.ErrInvalidSignature
	}
	page, ok := s.Document.Page(p.Page)
	if !ok {
		return s, Effects{}, domain.ErrNoDocument
	}

	w, h := FitBox(float64(in.Width), float64(in.Height), SignatureMaxWidth, SignatureMaxHeight)
	px := page.Scaled(p.Scale)
	a := domain.Annotation{
		ID:            env.NewID(),
		Type:          domain.AnnotationSignature,
		PageNumber:    p.Page,
		X:             p.Anchor.X,
		Y:             p.Anchor.Y,
		Width:         w / px.Width,
		Height:        h / px.Height,
		ImageDataURL:  in.ImageDataURL,
		Strokes:       in.Strokes,
		CapturedScale: p.Scale,
		CreatedAt:     env.Now(),
	}
	s.Pending = nil
	return record(s, a), Effects{Created: []domain.Annotation{a}}, nil
}

// record stores a and makes it visible when it belongs to the active page.
func record(s domain.ViewerState, a domain.Annotation) domain.ViewerState {
	s.Annotations = s.Annotations.Add(a)
	if a.PageNumber == s.Page {
		s.Visible = append(slices.Clip(s.Visible), a.ID)
	}
	return s
}
