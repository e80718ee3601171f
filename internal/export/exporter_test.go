package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"pdf-annotator/internal/domain"
	"pdf-annotator/internal/signature"
	"pdf-annotator/internal/testpdf"
	"pdf-annotator/pkg/logger"
)

func newExporter() *PdfcpuExporter {
	return NewPdfcpuExporter(logger.NewLoggerTo(io.Discard, "error"))
}

func readBack(t *testing.T, data []byte) *model.Context {
	t.Helper()
	ctx, err := api.ReadContext(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		t.Fatalf("exported file is not readable: %v", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		t.Fatalf("page count: %v", err)
	}
	return ctx
}

func pageAnnots(t *testing.T, ctx *model.Context, page int) []types.Dict {
	t.Helper()
	pageDict, _, _, err := ctx.PageDict(page, false)
	if err != nil {
		t.Fatalf("page dict: %v", err)
	}
	obj, found := pageDict.Find("Annots")
	if !found {
		return nil
	}
	if ref, ok := obj.(types.IndirectRef); ok {
		if obj, err = ctx.Dereference(ref); err != nil {
			t.Fatalf("dereference: %v", err)
		}
	}
	var out []types.Dict
	for _, item := range obj.(types.Array) {
		if ref, ok := item.(types.IndirectRef); ok {
			if item, err = ctx.Dereference(ref); err != nil {
				t.Fatalf("dereference: %v", err)
			}
		}
		out = append(out, item.(types.Dict))
	}
	return out
}

func number(o types.Object) float64 {
	switch v := o.(type) {
	case types.Float:
		return float64(v)
	case types.Integer:
		return float64(v)
	}
	return -1
}

func signatureURL(t *testing.T) string {
	t.Helper()
	pad := signature.NewPad()
	for _, ev := range []domain.PadEvent{
		{Kind: domain.PadDown, X: 20, Y: 100},
		{Kind: domain.PadMove, X: 380, Y: 120},
		{Kind: domain.PadUp},
	} {
		if err := pad.Apply(ev); err != nil {
			t.Fatalf("pad: %v", err)
		}
	}
	capture, err := pad.Save()
	if err != nil {
		t.Fatalf("pad save: %v", err)
	}
	return capture.DataURL
}

func sampleAnnotations(t *testing.T) []domain.Annotation {
	now := time.Now()
	return []domain.Annotation{
		{ID: "h1", Type: domain.AnnotationHighlight, PageNumber: 1, X: 0.1, Y: 0.1, Width: 0.5, Height: 0.02, Color: "#FFFF00", CreatedAt: now},
		{ID: "u1", Type: domain.AnnotationUnderline, PageNumber: 1, X: 0.1, Y: 0.2, Width: 0.4, Height: 0.02, Color: "#99FF99", CreatedAt: now},
		{ID: "c1", Type: domain.AnnotationComment, PageNumber: 2, X: 0.5, Y: 0.5, Text: "Check this, später", CreatedAt: now},
		{ID: "s1", Type: domain.AnnotationSignature, PageNumber: 2, X: 0.2, Y: 0.8, Width: 0.3, Height: 0.1, ImageDataURL: signatureURL(t), CreatedAt: now},
	}
}

func TestExport_PlainRoundTrip(t *testing.T) {
	src := testpdf.Pages(2)

	out, err := newExporter().Export(context.Background(), src, sampleAnnotations(t), domain.ExportPlain)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("export is not a PDF")
	}

	ctx := readBack(t, out)
	if ctx.PageCount != 2 {
		t.Fatalf("expected 2 pages, got %d", ctx.PageCount)
	}
	if got := pageAnnots(t, ctx, 1); len(got) != 0 {
		t.Fatalf("plain export must not write annotations, found %d", len(got))
	}
}

func TestExport_EmbedAnnotations(t *testing.T) {
	out, err := newExporter().Export(context.Background(), testpdf.Pages(2), sampleAnnotations(t), domain.ExportEmbed)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	ctx := readBack(t, out)

	page1 := pageAnnots(t, ctx, 1)
	if len(page1) != 2 {
		t.Fatalf("expected 2 annotations on page 1, got %d", len(page1))
	}
	if page1[0]["Subtype"] != types.Name("Highlight") || page1[1]["Subtype"] != types.Name("Underline") {
		t.Fatalf("unexpected subtypes %v, %v", page1[0]["Subtype"], page1[1]["Subtype"])
	}

	rect := page1[0]["Rect"].(types.Array)
	// x=0.1 of 612 wide, y=0.1 from the top of 792 high
	if llx, ury := number(rect[0]), number(rect[3]); llx < 61.1 || llx > 61.3 || ury < 712.7 || ury > 712.9 {
		t.Fatalf("unexpected highlight rect %v", rect)
	}
	if _, ok := page1[0]["QuadPoints"]; !ok {
		t.Fatalf("expected QuadPoints on highlight")
	}

	page2 := pageAnnots(t, ctx, 2)
	if len(page2) != 2 {
		t.Fatalf("expected 2 annotations on page 2, got %d", len(page2))
	}
	if page2[0]["Subtype"] != types.Name("Text") {
		t.Fatalf("expected comment as Text annotation, got %v", page2[0]["Subtype"])
	}
	contents, ok := page2[0]["Contents"].(types.StringLiteral)
	if !ok {
		t.Fatalf("expected comment Contents string, got %T", page2[0]["Contents"])
	}
	if text, err := types.StringLiteralToString(contents); err != nil || text != "Check this, später" {
		t.Fatalf("unexpected comment Contents %q (%v)", text, err)
	}
	if page2[1]["Subtype"] != types.Name("Stamp") {
		t.Fatalf("expected signature as Stamp annotation, got %v", page2[1]["Subtype"])
	}
	if _, ok := page2[1]["AP"]; !ok {
		t.Fatalf("expected signature appearance stream")
	}
}

func TestExport_Errors(t *testing.T) {
	e := newExporter()

	if _, err := e.Export(context.Background(), testpdf.Pages(1), nil, "flatten"); !errors.Is(err, domain.ErrUnsupportedExport) {
		t.Fatalf("expected ErrUnsupportedExport, got %v", err)
	}
	if _, err := e.Export(context.Background(), []byte("%PDF-1.4 garbage"), nil, domain.ExportPlain); err == nil {
		t.Fatalf("expected read error")
	}

	offPage := []domain.Annotation{{ID: "x", Type: domain.AnnotationHighlight, PageNumber: 3, Color: "#FFFF00"}}
	if _, err := e.Export(context.Background(), testpdf.Pages(1), offPage, domain.ExportEmbed); !errors.Is(err, domain.ErrPageOutOfRange) {
		t.Fatalf("expected ErrPageOutOfRange, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Export(ctx, testpdf.Pages(1), nil, domain.ExportPlain); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParseColor(t *testing.T) {
	rgb, err := parseColor("#FF9900")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rgb != [3]float64{1, 0.6, 0} {
		t.Fatalf("unexpected components %v", rgb)
	}
	if _, err := parseColor("orange"); !errors.Is(err, domain.ErrInvalidColor) {
		t.Fatalf("expected ErrInvalidColor, got %v", err)
	}
}
