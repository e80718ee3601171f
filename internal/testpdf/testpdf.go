// Package testpdf builds small, well-formed PDF files for tests.
package testpdf

import (
	"bytes"
	"fmt"
)

// Letter is a US Letter page in points.
var Letter = [2]float64{612, 792}

// Pages returns a PDF with n blank Letter pages.
func Pages(n int) []byte {
	sizes := make([][2]float64, n)
	for i := range sizes {
		sizes[i] = Letter
	}
	return Build(sizes...)
}

// Build returns a PDF with one blank page per size (width, height in points).
// Object 1 is the catalog, 2 the page tree and 3.. the pages.
func Build(sizes ...[2]float64) []byte {
	var objects []string
	kids := ""
	for i := range sizes {
		kids += fmt.Sprintf("%d 0 R ", i+3)
	}
	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, len(sizes)),
	)
	for _, s := range sizes {
		objects = append(objects, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %g %g] /Resources << >> >>", s[0], s[1]))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}
