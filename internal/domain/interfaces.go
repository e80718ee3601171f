package domain

import (
	"context"
	"io"
	"time"
)

// PageRenderer opens PDF bytes with an external rendering engine.
type PageRenderer interface {
	Name() string
	Open(ctx context.Context, data []byte) (RenderedDocument, error)
}

// RenderedDocument is an open document in the rendering engine.
type RenderedDocument interface {
	PageCount() int
	// PageSize returns the size of page n (1-based) in points.
	PageSize(n int) (PageSize, error)
	// RenderPNG rasterizes page n at the given zoom scale.
	RenderPNG(n int, scale float64) ([]byte, error)
	Close() error
}

// ExportMode selects what the export writes besides the original content.
type ExportMode string

const (
	ExportPlain ExportMode = "none"
	ExportEmbed ExportMode = "embed"
)

// Exporter round-trips document bytes through a PDF object model.
type Exporter interface {
	Export(ctx context.Context, data []byte, annotations []Annotation, mode ExportMode) ([]byte, error)
}

// SessionRepository keeps live sessions.
type SessionRepository interface {
	Save(session *Session) error
	Get(id string) (*Session, error)
	Delete(id string) error
	IdleSince(cutoff time.Time) []*Session
	Count() int
}

// AnnotationMirror copies the annotation history to durable storage.
type AnnotationMirror interface {
	Save(ctx context.Context, sessionID string, annotation Annotation) error
	Delete(ctx context.Context, sessionID string, annotationID string) error
	DeleteSession(ctx context.Context, sessionID string) error
	List(ctx context.Context, sessionID string) ([]Annotation, error)
}

// ExportArchive keeps a copy of exported documents.
type ExportArchive interface {
	Upload(ctx context.Context, path string, file io.Reader) error
}

// SessionService is the controller used by the HTTP layer.
type SessionService interface {
	CreateSession(ctx context.Context) (*SessionSnapshot, error)
	GetSession(ctx context.Context, sessionID string) (*SessionSnapshot, error)
	CloseSession(ctx context.Context, sessionID string) error
	LoadDocument(ctx context.Context, sessionID string, name string, file io.Reader, size int64) (*SessionSnapshot, error)
	Dispatch(ctx context.Context, sessionID string, req IntentRequest) (*SessionSnapshot, error)
	Overlay(ctx context.Context, sessionID string) (*Overlay, error)
	Annotations(ctx context.Context, sessionID string, page int) ([]Annotation, error)
	MirroredAnnotations(ctx context.Context, sessionID string) ([]Annotation, error)
	RenderPage(ctx context.Context, sessionID string, page int) ([]byte, error)
	Export(ctx context.Context, sessionID string, mode ExportMode) (*ExportResult, error)

	OpenPad(ctx context.Context, sessionID string) (string, error)
	PadEvents(ctx context.Context, sessionID, padID string, events []PadEvent) error
	ClearPad(ctx context.Context, sessionID, padID string) error
	SavePad(ctx context.Context, sessionID, padID string) (*SignatureCapture, error)
	DiscardPad(ctx context.Context, sessionID, padID string) error
}

// ExportResult is a finished export ready for download.
type ExportResult struct {
	Filename string
	Data     []byte
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetMaxFileSize() int64
	GetLogLevel() string
	GetSupabaseURL() string
	GetSupabaseKey() string
	GetAnnotationTable() string
	GetExportBucket() string
	GetRenderer() string
	GetRestoreOverlays() bool
	GetSessionIdleTimeout() time.Duration
	GetAllowedOrigins() []string
}
