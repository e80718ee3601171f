// Package renderer opens uploaded PDFs for page geometry and rasterization.
package renderer

import (
	"fmt"
	"strings"

	"pdf-annotator/internal/domain"
)

// Names of the available renderers.
const (
	NameFitz   = "fitz"
	NamePdfcpu = "pdfcpu"
)

// New returns the renderer registered under name.
func New(name string, logger domain.Logger) (domain.PageRenderer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameFitz:
		return NewFitzRenderer(logger), nil
	case NamePdfcpu:
		return NewPdfcpuRenderer(logger), nil
	}
	return nil, fmt.Errorf("unknown renderer %q", name)
}

func checkPage(n, count int) error {
	if n < 1 || n > count {
		return fmt.Errorf("%w: page %d of %d", domain.ErrPageOutOfRange, n, count)
	}
	return nil
}
