// Package export round-trips session documents through pdfcpu and optionally
// writes the annotation history into the copy as native PDF annotations.
package export

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"pdf-annotator/internal/domain"
)

// PdfcpuExporter implements domain.Exporter.
type PdfcpuExporter struct {
	logger domain.Logger
}

// NewPdfcpuExporter creates a new exporter
func NewPdfcpuExporter(logger domain.Logger) *PdfcpuExporter {
	return &PdfcpuExporter{logger: logger}
}

// Export loads data, embeds annotations when mode is ExportEmbed, and saves
// the result. An empty mode means ExportPlain.
func (e *PdfcpuExporter) Export(ctx context.Context, data []byte, annotations []domain.Annotation, mode domain.ExportMode) ([]byte, error) {
	switch mode {
	case "", domain.ExportPlain, domain.ExportEmbed:
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedExport, mode)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdfCtx, err := api.ReadContext(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	if err := pdfCtx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to count pages: %w", err)
	}

	if mode == domain.ExportEmbed && len(annotations) > 0 {
		if err := embed(pdfCtx, annotations); err != nil {
			return nil, err
		}
		e.logger.Debug("Annotations embedded", "count", len(annotations))
	}

	var buf bytes.Buffer
	if err := api.WriteContext(pdfCtx, &buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func embed(ctx *model.Context, annotations []domain.Annotation) error {
	byPage := map[int][]domain.Annotation{}
	for _, a := range annotations {
		byPage[a.PageNumber] = append(byPage[a.PageNumber], a)
	}
	pages := make([]int, 0, len(byPage))
	for p := range byPage {
		pages = append(pages, p)
	}
	sort.Ints(pages)

	for _, p := range pages {
		if p < 1 || p > ctx.PageCount {
			return fmt.Errorf("%w: annotation on page %d of %d", domain.ErrPageOutOfRange, p, ctx.PageCount)
		}
		pageDict, _, inh, err := ctx.PageDict(p, false)
		if err != nil {
			return fmt.Errorf("failed to read page %d: %w", p, err)
		}
		box := pageBox(inh)
		if box == nil {
			return fmt.Errorf("page %d has no media box", p)
		}

		refs := types.Array{}
		for _, a := range byPage[p] {
			d, err := annotationDict(ctx, a, box)
			if err != nil {
				return fmt.Errorf("annotation %s: %w", a.ID, err)
			}
			ref, err := ctx.IndRefForNewObject(d)
			if err != nil {
				return fmt.Errorf("annotation %s: %w", a.ID, err)
			}
			refs = append(refs, *ref)
		}
		if err := appendAnnots(ctx, pageDict, refs); err != nil {
			return fmt.Errorf("page %d: %w", p, err)
		}
	}
	return nil
}

// pageBox is the visible area of a page, which is what viewers draw.
func pageBox(inh *model.InheritedPageAttrs) *types.Rectangle {
	if inh == nil {
		return nil
	}
	if inh.CropBox != nil {
		return inh.CropBox
	}
	return inh.MediaBox
}

func appendAnnots(ctx *model.Context, pageDict types.Dict, refs types.Array) error {
	annots := types.Array{}
	if obj, found := pageDict.Find("Annots"); found {
		if ref, ok := obj.(types.IndirectRef); ok {
			derefObj, err := ctx.Dereference(ref)
			if err != nil {
				return fmt.Errorf("failed to dereference Annots: %w", err)
			}
			obj = derefObj
		}
		existing, ok := obj.(types.Array)
		if !ok {
			return fmt.Errorf("annots is not an array")
		}
		annots = append(annots, existing...)
	}
	pageDict["Annots"] = append(annots, refs...)
	return nil
}
