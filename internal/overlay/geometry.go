package overlay

import "pdf-annotator/internal/domain"

// ContainerRect maps a client-space rectangle into the container's scrolled
// content space.
func ContainerRect(r domain.Rect, vp domain.Viewport) domain.Rect {
	p := ContainerPoint(domain.Point{X: r.X, Y: r.Y}, vp)
	return domain.Rect{X: p.X, Y: p.Y, Width: r.Width, Height: r.Height}
}

// ContainerPoint maps a client-space point into the container's scrolled
// content space.
func ContainerPoint(p domain.Point, vp domain.Viewport) domain.Point {
	return domain.Point{
		X: p.X - vp.ContainerLeft + vp.ScrollLeft,
		Y: p.Y - vp.ContainerTop + vp.ScrollTop,
	}
}

// Normalize converts a container-space rectangle into page fractions for a
// page of size page (points) drawn at scale.
func Normalize(r domain.Rect, vp domain.Viewport, page domain.PageSize, scale float64) domain.Rect {
	px := page.Scaled(scale)
	return domain.Rect{
		X:      (r.X - vp.PageOffsetX) / px.Width,
		Y:      (r.Y - vp.PageOffsetY) / px.Height,
		Width:  r.Width / px.Width,
		Height: r.Height / px.Height,
	}
}

// NormalizePoint is Normalize for a single point.
func NormalizePoint(p domain.Point, vp domain.Viewport, page domain.PageSize, scale float64) domain.Point {
	px := page.Scaled(scale)
	return domain.Point{
		X: (p.X - vp.PageOffsetX) / px.Width,
		Y: (p.Y - vp.PageOffsetY) / px.Height,
	}
}

// ToPixels converts a normalized rectangle to page-relative pixels at scale.
func ToPixels(n domain.Rect, page domain.PageSize, scale float64) domain.Rect {
	px := page.Scaled(scale)
	return domain.Rect{
		X:      n.X * px.Width,
		Y:      n.Y * px.Height,
		Width:  n.Width * px.Width,
		Height: n.Height * px.Height,
	}
}

// FitBox scales w x h down to fit inside maxW x maxH, keeping the aspect
// ratio. Sizes that already fit are returned unchanged.
func FitBox(w, h, maxW, maxH float64) (float64, float64) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	ratio := min(maxW/w, maxH/h)
	return w * ratio, h * ratio
}
