package renderer

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/gen2brain/go-fitz"

	"pdf-annotator/internal/domain"
)

// FitzRenderer opens documents with MuPDF through go-fitz.
type FitzRenderer struct {
	logger domain.Logger
}

// NewFitzRenderer creates a new MuPDF backed renderer
func NewFitzRenderer(logger domain.Logger) *FitzRenderer {
	return &FitzRenderer{logger: logger}
}

func (r *FitzRenderer) Name() string { return NameFitz }

type openResult struct {
	doc *fitzDocument
	err error
}

// Open parses data and reads every page's bounds. If ctx ends first the
// document is closed as soon as parsing finishes.
func (r *FitzRenderer) Open(ctx context.Context, data []byte) (domain.RenderedDocument, error) {
	resultCh := make(chan openResult, 1)
	go func() {
		d, err := r.openFitz(data)
		resultCh <- openResult{doc: d, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			return nil, res.err
		}
		r.logger.Debug("PDF opened", "renderer", NameFitz, "pages", len(res.doc.sizes))
		return res.doc, nil
	case <-ctx.Done():
		r.logger.Warn("PDF open abandoned", "renderer", NameFitz, "error", ctx.Err())
		go func() {
			if res := <-resultCh; res.doc != nil {
				res.doc.Close()
			}
		}()
		return nil, ctx.Err()
	}
}

// openFitz reads page bounds from MuPDF, which rounds them to whole points.
// Fractional sizes come from pdfcpu when both agree on the page layout.
func (r *FitzRenderer) openFitz(data []byte) (*fitzDocument, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	n := doc.NumPage()
	sizes := make([]domain.PageSize, 0, n)
	for i := 0; i < n; i++ {
		b, err := doc.Bound(i)
		if err != nil {
			doc.Close()
			return nil, fmt.Errorf("failed to read bounds of page %d: %w", i+1, err)
		}
		sizes = append(sizes, domain.PageSize{Width: float64(b.Dx()), Height: float64(b.Dy())})
	}

	exact, err := pageDims(data)
	if err != nil {
		r.logger.Debug("Using rounded page bounds", "renderer", NameFitz, "error", err)
		return &fitzDocument{doc: doc, sizes: sizes}, nil
	}
	if len(exact) != n {
		r.logger.Warn("Page count mismatch, using rounded page bounds", "renderer", NameFitz, "fitz", n, "pdfcpu", len(exact))
		return &fitzDocument{doc: doc, sizes: sizes}, nil
	}
	for i, e := range exact {
		if math.Abs(e.Width-sizes[i].Width) <= 1 && math.Abs(e.Height-sizes[i].Height) <= 1 {
			sizes[i] = e
		}
	}
	return &fitzDocument{doc: doc, sizes: sizes}, nil
}

// fitzDocument serializes access to the MuPDF context, which is not safe
// for concurrent use.
type fitzDocument struct {
	mu     sync.Mutex
	doc    *fitz.Document
	sizes  []domain.PageSize
	closed bool
}

func (d *fitzDocument) PageCount() int { return len(d.sizes) }

func (d *fitzDocument) PageSize(n int) (domain.PageSize, error) {
	if err := checkPage(n, len(d.sizes)); err != nil {
		return domain.PageSize{}, err
	}
	return d.sizes[n-1], nil
}

// RenderPNG rasterizes page n (1-based) at scale, where 1 is 72 dpi.
func (d *fitzDocument) RenderPNG(n int, scale float64) ([]byte, error) {
	if err := checkPage(n, len(d.sizes)); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, domain.ErrDocumentReleased
	}
	img, err := d.doc.ImagePNG(n-1, 72*scale)
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", n, err)
	}
	return img, nil
}

func (d *fitzDocument) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.doc.Close()
}
