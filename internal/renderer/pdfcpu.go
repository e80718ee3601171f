package renderer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"pdf-annotator/internal/domain"
)

// PdfcpuRenderer reads page geometry with pdfcpu. It has no rasterizer, so
// clients draw pages themselves and use the server for overlays only.
type PdfcpuRenderer struct {
	logger domain.Logger
}

// NewPdfcpuRenderer creates a geometry-only renderer.
func NewPdfcpuRenderer(logger domain.Logger) *PdfcpuRenderer {
	return &PdfcpuRenderer{logger: logger}
}

func (r *PdfcpuRenderer) Name() string { return NamePdfcpu }

func (r *PdfcpuRenderer) Open(ctx context.Context, data []byte) (domain.RenderedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sizes, err := pageDims(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	r.logger.Debug("PDF opened", "renderer", NamePdfcpu, "pages", len(sizes))
	return geometryDocument(sizes), nil
}

// pageDims reads every page's size in points, keeping fractional sizes.
func pageDims(data []byte) ([]domain.PageSize, error) {
	dims, err := api.PageDims(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, err
	}
	sizes := make([]domain.PageSize, 0, len(dims))
	for _, d := range dims {
		sizes = append(sizes, domain.PageSize{Width: d.Width, Height: d.Height})
	}
	return sizes, nil
}

type geometryDocument []domain.PageSize

func (g geometryDocument) PageCount() int { return len(g) }

func (g geometryDocument) PageSize(n int) (domain.PageSize, error) {
	if err := checkPage(n, len(g)); err != nil {
		return domain.PageSize{}, err
	}
	return g[n-1], nil
}

func (g geometryDocument) RenderPNG(int, float64) ([]byte, error) {
	return nil, domain.ErrRenderUnsupported
}

func (g geometryDocument) Close() error { return nil }
