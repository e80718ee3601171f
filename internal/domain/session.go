package domain

import (
	"sync"
	"time"
)

// LoadedDocument is a document accepted into a session together with the
// renderer handle opened for it.
type LoadedDocument struct {
	Name   string
	Data   []byte
	Info   DocumentInfo
	Handle RenderedDocument

	releaseOnce sync.Once
	releaseErr  error
}

// Release closes the renderer handle. Only the first call has an effect.
func (d *LoadedDocument) Release() error {
	if d == nil {
		return nil
	}
	d.releaseOnce.Do(func() {
		if d.Handle != nil {
			d.releaseErr = d.Handle.Close()
		}
		d.Data = nil
	})
	return d.releaseErr
}

// Session is one viewer's annotation session. All fields are guarded by the
// embedded mutex; intents for one session are applied one at a time.
type Session struct {
	sync.Mutex

	ID         string
	State      ViewerState
	Document   *LoadedDocument
	Pads       map[string]SignaturePad
	CreatedAt  time.Time
	LastActive time.Time

	// Generation counts document loads started in this session. A load
	// only lands if the generation still matches when it completes.
	Generation uint64
	Closed     bool

	// MirrorMu orders writes to the annotation mirror for this session. It
	// is taken before the session lock, never while holding it.
	MirrorMu sync.Mutex
}

// NewSession returns a session in its initial state.
func NewSession(id string, now time.Time, restoreOnReturn bool) *Session {
	return &Session{
		ID:         id,
		State:      NewViewerState(restoreOnReturn),
		Pads:       map[string]SignaturePad{},
		CreatedAt:  now,
		LastActive: now,
	}
}

// PadEventKind is a pointer event on a signature pad.
type PadEventKind string

const (
	PadDown  PadEventKind = "down"
	PadMove  PadEventKind = "move"
	PadUp    PadEventKind = "up"
	PadLeave PadEventKind = "leave"
)

// PadEvent is a pointer event in pad pixel coordinates.
type PadEvent struct {
	Kind PadEventKind `json:"kind"`
	X    float64      `json:"x"`
	Y    float64      `json:"y"`
}

// SignatureCapture is the result of saving a signature pad.
type SignatureCapture struct {
	DataURL string   `json:"data_url"`
	Width   int      `json:"width"`
	Height  int      `json:"height"`
	Strokes []Stroke `json:"strokes"`
}

// SignaturePad is a fixed-size drawing surface.
type SignaturePad interface {
	Apply(ev PadEvent) error
	Clear() error
	Save() (*SignatureCapture, error)
	Discard()
}
