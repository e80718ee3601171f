// Package intake validates uploaded files before they reach the viewer.
package intake

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	apperrors "pdf-annotator/pkg/errors"
)

// Signature is the leading byte sequence of every PDF file (25 50 44 46 2D).
const Signature = "%PDF-"

// DefaultMaxSize is the upload ceiling used when none is configured.
const DefaultMaxSize int64 = 10 * 1024 * 1024

var (
	ErrTooLarge   = errors.New("file exceeds size ceiling")
	ErrNotPDF     = errors.New("missing PDF signature")
	ErrUnreadable = errors.New("file could not be read")
	ErrEmpty      = errors.New("file is empty")
)

// Validator checks uploads against the size ceiling and the PDF signature.
type Validator struct {
	maxSize int64
}

// NewValidator creates a validator; a non-positive maxSize means DefaultMaxSize.
func NewValidator(maxSize int64) *Validator {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Validator{maxSize: maxSize}
}

// MaxSize returns the configured ceiling in bytes.
func (v *Validator) MaxSize() int64 {
	return v.maxSize
}

// Read buffers r and validates it. declaredSize is the size the client
// announced, or a negative value when unknown; it lets oversized uploads be
// refused before any byte is read.
func (v *Validator) Read(r io.Reader, declaredSize int64) ([]byte, error) {
	if declaredSize > v.maxSize {
		return nil, v.TooLarge()
	}

	data, err := io.ReadAll(io.LimitReader(r, v.maxSize+1))
	if err != nil {
		return nil, &apperrors.AppError{
			Type:       apperrors.ErrorTypeValidation,
			Message:    "Failed to read the file. Please try again.",
			StatusCode: http.StatusBadRequest,
			Cause:      fmt.Errorf("%w: %v", ErrUnreadable, err),
		}
	}
	if int64(len(data)) > v.maxSize {
		return nil, v.TooLarge()
	}
	if err := Check(data); err != nil {
		return nil, err
	}
	return data, nil
}

// Check validates an in-memory payload's signature.
func Check(data []byte) error {
	if len(data) == 0 {
		return &apperrors.AppError{
			Type:       apperrors.ErrorTypeValidation,
			Message:    "Received empty PDF data",
			StatusCode: http.StatusBadRequest,
			Cause:      ErrEmpty,
		}
	}
	if !bytes.HasPrefix(data, []byte(Signature)) {
		return &apperrors.AppError{
			Type:       apperrors.ErrorTypeValidation,
			Message:    "The selected file is not a valid PDF.",
			StatusCode: http.StatusBadRequest,
			Cause:      ErrNotPDF,
		}
	}
	return nil
}

// TooLarge is the error returned for uploads over the ceiling.
func (v *Validator) TooLarge() error {
	err := apperrors.NewTooLargeError(fmt.Sprintf("File is too large. Maximum size is %s.", humanSize(v.maxSize)))
	err.Cause = ErrTooLarge
	return err
}

func humanSize(n int64) string {
	const mb = 1024 * 1024
	if n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%.1fMB", float64(n)/mb)
}

// SanitizeName strips path components from a client-supplied filename.
func SanitizeName(name string) string {
	name = strings.TrimSpace(filepath.Base(strings.ReplaceAll(name, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		return "document.pdf"
	}
	return name
}

// ExportName is the download name of an exported copy.
func ExportName(original string) string {
	return "annotated-" + SanitizeName(original)
}
