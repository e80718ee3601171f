package domain

import "errors"

// Domain errors
var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrAnnotationNotFound = errors.New("annotation not found")
	ErrPadNotFound        = errors.New("signature pad not found")
	ErrPadClosed          = errors.New("signature pad already closed")
	ErrNoDocument         = errors.New("no document loaded")
	ErrStaleLoad          = errors.New("load superseded by a newer upload")
	ErrPageOutOfRange     = errors.New("page out of range")
	ErrInvalidTool        = errors.New("invalid tool")
	ErrInvalidColor       = errors.New("invalid color")
	ErrInvalidIntent      = errors.New("invalid intent")
	ErrNoPendingPlacement = errors.New("no pending placement")
	ErrEmptyComment       = errors.New("comment text is empty")
	ErrInvalidSignature   = errors.New("invalid signature image")
	ErrRenderUnsupported  = errors.New("renderer cannot rasterize pages")
	ErrDocumentReleased   = errors.New("document already released")
	ErrUnsupportedExport  = errors.New("unsupported export mode")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}
