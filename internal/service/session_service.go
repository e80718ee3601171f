package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"pdf-annotator/internal/domain"
	"pdf-annotator/internal/intake"
	"pdf-annotator/internal/overlay"
	"pdf-annotator/internal/signature"
	apperrors "pdf-annotator/pkg/errors"
)

// SessionOptions tunes a SessionService.
type SessionOptions struct {
	MaxFileSize     int64
	RestoreOverlays bool
}

// SessionService owns the live annotation sessions. Each session is
// mutated only under its own lock; rendering engine work and exports run
// outside it.
type SessionService struct {
	sessions domain.SessionRepository
	renderer domain.PageRenderer
	exporter domain.Exporter
	mirror   domain.AnnotationMirror
	archive  domain.ExportArchive
	intake   *intake.Validator
	logger   domain.Logger

	restoreOverlays bool

	now    func() time.Time
	newID  func() string
	newPad func() domain.SignaturePad
}

// NewSessionService creates a new session service. archive may be nil.
func NewSessionService(
	sessions domain.SessionRepository,
	renderer domain.PageRenderer,
	exporter domain.Exporter,
	mirror domain.AnnotationMirror,
	archive domain.ExportArchive,
	logger domain.Logger,
	opts SessionOptions,
) *SessionService {
	return &SessionService{
		sessions:        sessions,
		renderer:        renderer,
		exporter:        exporter,
		mirror:          mirror,
		archive:         archive,
		intake:          intake.NewValidator(opts.MaxFileSize),
		logger:          logger,
		restoreOverlays: opts.RestoreOverlays,
		now:             time.Now,
		newID:           uuid.NewString,
		newPad:          func() domain.SignaturePad { return signature.NewPad() },
	}
}

func (s *SessionService) CreateSession(ctx context.Context) (*domain.SessionSnapshot, error) {
	sess := domain.NewSession(s.newID(), s.now(), s.restoreOverlays)
	if err := s.sessions.Save(sess); err != nil {
		return nil, apperrors.NewInternalError("Failed to create session", err)
	}
	s.logger.Info("Session created", "session_id", sess.ID)

	sess.Lock()
	defer sess.Unlock()
	return snapshot(sess, overlay.Effects{}), nil
}

func (s *SessionService) GetSession(ctx context.Context, sessionID string) (*domain.SessionSnapshot, error) {
	var snap *domain.SessionSnapshot
	err := s.withSession(sessionID, func(sess *domain.Session) error {
		snap = snapshot(sess, overlay.Effects{})
		return nil
	})
	return snap, err
}

// CloseSession tears a session down and releases its document.
func (s *SessionService) CloseSession(ctx context.Context, sessionID string) error {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return err
	}
	s.teardown(ctx, sess)
	return nil
}

func (s *SessionService) teardown(ctx context.Context, sess *domain.Session) {
	sess.Lock()
	if sess.Closed {
		sess.Unlock()
		return
	}
	sess.Closed = true
	if err := sess.Document.Release(); err != nil {
		s.logger.Warn("Failed to release document", "session_id", sess.ID, "error", err)
	}
	sess.Document = nil
	for id, pad := range sess.Pads {
		pad.Discard()
		delete(sess.Pads, id)
	}
	sess.Unlock()

	if err := s.sessions.Delete(sess.ID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		s.logger.Warn("Failed to drop session", "session_id", sess.ID, "error", err)
	}
	s.clearMirror(ctx, sess)
	s.logger.Info("Session closed", "session_id", sess.ID)
}

// LoadDocument validates an upload and makes it the session's document.
// Loads are numbered; a load overtaken by a newer one is discarded. On any
// failure the session keeps its previous document and state.
func (s *SessionService) LoadDocument(ctx context.Context, sessionID string, name string, file io.Reader, size int64) (*domain.SessionSnapshot, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	data, err := s.intake.Read(file, size)
	if err != nil {
		s.logger.Debug("Upload rejected", "session_id", sessionID, "error", err)
		return nil, err
	}
	name = intake.SanitizeName(name)

	sess.Lock()
	if sess.Closed {
		sess.Unlock()
		return nil, domain.ErrSessionNotFound
	}
	sess.Generation++
	gen := sess.Generation
	sess.Unlock()

	doc, err := s.open(ctx, name, data)
	if err != nil {
		s.logger.Error("Failed to load PDF", err, "session_id", sessionID, "file", name)
		return nil, apperrors.NewProcessingError(fmt.Sprintf("Failed to load PDF: %v", err), err)
	}

	sess.Lock()
	if sess.Closed {
		sess.Unlock()
		s.release(doc)
		return nil, domain.ErrSessionNotFound
	}
	if sess.Generation != gen {
		current := sess.Generation
		sess.Unlock()
		s.release(doc)
		s.logger.Debug("Discarding stale load", "session_id", sessionID, "generation", gen, "current", current)
		return nil, apperrors.NewConflictError("A newer upload replaced this document.", domain.ErrStaleLoad)
	}
	s.release(sess.Document)
	sess.Document = doc
	sess.State = overlay.Load(sess.State, doc.Info)
	sess.LastActive = s.now()
	snap := snapshot(sess, overlay.Effects{})
	sess.Unlock()

	s.clearMirror(ctx, sess)
	s.logger.Info("Document loaded", "session_id", sessionID, "file", name, "pages", doc.Info.PageCount, "size", doc.Info.Size)
	return snap, nil
}

func (s *SessionService) open(ctx context.Context, name string, data []byte) (*domain.LoadedDocument, error) {
	handle, err := s.renderer.Open(ctx, data)
	if err != nil {
		return nil, err
	}

	count := handle.PageCount()
	if count < 1 {
		handle.Close()
		return nil, fmt.Errorf("document has no pages")
	}
	info := domain.DocumentInfo{Name: name, Size: int64(len(data)), PageCount: count}
	for n := 1; n <= count; n++ {
		size, err := handle.PageSize(n)
		if err != nil {
			handle.Close()
			return nil, err
		}
		info.Pages = append(info.Pages, size)
	}
	return &domain.LoadedDocument{Name: name, Data: data, Info: info, Handle: handle}, nil
}

func (s *SessionService) release(doc *domain.LoadedDocument) {
	if err := doc.Release(); err != nil {
		s.logger.Warn("Failed to release document", "file", doc.Name, "error", err)
	}
}

// Dispatch applies one intent to the session and mirrors the records it
// created or removed.
func (s *SessionService) Dispatch(ctx context.Context, sessionID string, req domain.IntentRequest) (*domain.SessionSnapshot, error) {
	var (
		snap   *domain.SessionSnapshot
		eff    overlay.Effects
		target *domain.Session
		doc    *domain.LoadedDocument
	)
	err := s.withSession(sessionID, func(sess *domain.Session) error {
		in, err := s.resolveIntent(sess, req)
		if err != nil {
			return err
		}

		next, effects, err := overlay.Reduce(sess.State, in, overlay.Env{NewID: s.newID, Now: s.now})
		if err != nil {
			return err
		}
		sess.State = next
		eff = effects
		snap = snapshot(sess, eff)
		target, doc = sess, sess.Document
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.mirrorEffects(ctx, target, doc, eff)
	s.logger.Debug("Intent applied", "session_id", sessionID, "intent", req.Type, "created", len(eff.Created))
	return snap, nil
}

// mirrorEffects writes created and removed records to the mirror. Writes
// are dropped when the document they belong to has been replaced or the
// session closed since the intent was applied; the mirror was or will be
// cleared for that session in clearMirror.
func (s *SessionService) mirrorEffects(ctx context.Context, sess *domain.Session, doc *domain.LoadedDocument, eff overlay.Effects) {
	if len(eff.Created) == 0 && len(eff.Removed) == 0 {
		return
	}
	sess.MirrorMu.Lock()
	defer sess.MirrorMu.Unlock()

	sess.Lock()
	current := !sess.Closed && sess.Document == doc
	sess.Unlock()
	if !current {
		s.logger.Debug("Skipping mirror write for replaced document", "session_id", sess.ID,
			"created", len(eff.Created), "removed", len(eff.Removed))
		return
	}

	for _, a := range eff.Created {
		if err := s.mirror.Save(ctx, sess.ID, a); err != nil {
			s.logger.Warn("Failed to mirror annotation", "session_id", sess.ID, "annotation_id", a.ID, "error", err)
		}
	}
	for _, id := range eff.Removed {
		if err := s.mirror.Delete(ctx, sess.ID, id); err != nil {
			s.logger.Warn("Failed to remove mirrored annotation", "session_id", sess.ID, "annotation_id", id, "error", err)
		}
	}
}

// clearMirror drops every mirrored record of the session. Callers must not
// hold the session lock.
func (s *SessionService) clearMirror(ctx context.Context, sess *domain.Session) {
	sess.MirrorMu.Lock()
	defer sess.MirrorMu.Unlock()
	if err := s.mirror.DeleteSession(ctx, sess.ID); err != nil {
		s.logger.Warn("Failed to clear mirrored annotations", "session_id", sess.ID, "error", err)
	}
}

// resolveIntent turns the wire form into an intent, pulling signature images
// from pads or data URLs. Called with the session locked.
func (s *SessionService) resolveIntent(sess *domain.Session, req domain.IntentRequest) (domain.Intent, error) {
	in, err := req.ToIntent()
	if err != nil {
		return nil, err
	}
	confirm, ok := in.(domain.ConfirmSignature)
	if !ok {
		return in, nil
	}

	// Check before consuming a pad so a misplaced confirm keeps the drawing.
	if p := sess.State.Pending; p == nil || p.Kind != domain.AnnotationSignature {
		return nil, domain.ErrNoPendingPlacement
	}

	if req.PadID != "" {
		pad, ok := sess.Pads[req.PadID]
		if !ok {
			return nil, domain.ErrPadNotFound
		}
		capture, err := pad.Save()
		if err != nil {
			return nil, err
		}
		delete(sess.Pads, req.PadID)
		return domain.ConfirmSignature{
			ImageDataURL: capture.DataURL,
			Width:        capture.Width,
			Height:       capture.Height,
			Strokes:      capture.Strokes,
		}, nil
	}

	_, cfg, err := signature.DecodeDataURL(confirm.ImageDataURL)
	if err != nil {
		return nil, err
	}
	confirm.Width, confirm.Height = cfg.Width, cfg.Height
	return confirm, nil
}

func (s *SessionService) Overlay(ctx context.Context, sessionID string) (*domain.Overlay, error) {
	var o domain.Overlay
	err := s.withSession(sessionID, func(sess *domain.Session) error {
		o = overlay.Render(sess.State)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Annotations returns the history of one page, or of every page when page is 0.
func (s *SessionService) Annotations(ctx context.Context, sessionID string, page int) ([]domain.Annotation, error) {
	var out []domain.Annotation
	err := s.withSession(sessionID, func(sess *domain.Session) error {
		if page == 0 {
			out = sess.State.Annotations.All()
		} else {
			out = sess.State.Annotations.Page(page)
		}
		return nil
	})
	if out == nil && err == nil {
		out = []domain.Annotation{}
	}
	return out, err
}

// MirroredAnnotations reads the session's records back from the mirror.
func (s *SessionService) MirroredAnnotations(ctx context.Context, sessionID string) ([]domain.Annotation, error) {
	if _, err := s.sessions.Get(sessionID); err != nil {
		return nil, err
	}
	out, err := s.mirror.List(ctx, sessionID)
	if err != nil {
		s.logger.Error("Failed to list mirrored annotations", err, "session_id", sessionID)
		return nil, apperrors.NewNetworkError("Failed to load saved annotations.", err)
	}
	return out, nil
}

// RenderPage rasterizes a page at the session's current scale. Page 0 means
// the active page.
func (s *SessionService) RenderPage(ctx context.Context, sessionID string, page int) ([]byte, error) {
	var (
		handle domain.RenderedDocument
		scale  float64
	)
	err := s.withSession(sessionID, func(sess *domain.Session) error {
		if sess.Document == nil {
			return domain.ErrNoDocument
		}
		if page == 0 {
			page = sess.State.Page
		}
		handle = sess.Document.Handle
		scale = sess.State.Scale
		return nil
	})
	if err != nil {
		return nil, err
	}

	img, err := handle.RenderPNG(page, scale)
	if err != nil {
		if errors.Is(err, domain.ErrPageOutOfRange) || errors.Is(err, domain.ErrRenderUnsupported) {
			return nil, err
		}
		if errors.Is(err, domain.ErrDocumentReleased) {
			s.logger.Debug("Document replaced during render", "session_id", sessionID, "page", page)
			return nil, apperrors.NewConflictError("The document changed while rendering. Please try again.", err)
		}
		s.logger.Error("Failed to render page", err, "session_id", sessionID, "page", page)
		return nil, apperrors.NewProcessingError("Failed to render page. Please try again.", err)
	}
	return img, nil
}

// Export produces the downloadable copy and archives it when an archive is
// configured. Archive failures never fail the export.
func (s *SessionService) Export(ctx context.Context, sessionID string, mode domain.ExportMode) (*domain.ExportResult, error) {
	var (
		data        []byte
		name        string
		annotations []domain.Annotation
	)
	err := s.withSession(sessionID, func(sess *domain.Session) error {
		if sess.Document == nil {
			return domain.ErrNoDocument
		}
		data = sess.Document.Data
		name = sess.Document.Name
		annotations = sess.State.Annotations.All()
		return nil
	})
	if err != nil {
		return nil, err
	}

	out, err := s.exporter.Export(ctx, data, annotations, mode)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedExport) {
			return nil, err
		}
		s.logger.Error("Failed to export PDF", err, "session_id", sessionID, "mode", mode)
		return nil, apperrors.NewProcessingError("Failed to export PDF. Please try again.", err)
	}

	result := &domain.ExportResult{Filename: intake.ExportName(name), Data: out}
	if s.archive != nil {
		path := sessionID + "/" + result.Filename
		if err := s.archive.Upload(ctx, path, bytes.NewReader(out)); err != nil {
			s.logger.Warn("Failed to archive export", "session_id", sessionID, "path", path, "error", err)
		}
	}
	s.logger.Info("Document exported", "session_id", sessionID, "mode", mode, "annotations", len(annotations))
	return result, nil
}

func (s *SessionService) OpenPad(ctx context.Context, sessionID string) (string, error) {
	var padID string
	err := s.withSession(sessionID, func(sess *domain.Session) error {
		padID = s.newID()
		sess.Pads[padID] = s.newPad()
		return nil
	})
	return padID, err
}

func (s *SessionService) PadEvents(ctx context.Context, sessionID, padID string, events []domain.PadEvent) error {
	return s.withPad(sessionID, padID, func(pad domain.SignaturePad) error {
		for _, ev := range events {
			if err := pad.Apply(ev); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SessionService) ClearPad(ctx context.Context, sessionID, padID string) error {
	return s.withPad(sessionID, padID, func(pad domain.SignaturePad) error {
		return pad.Clear()
	})
}

// SavePad captures the pad's drawing and discards the pad.
func (s *SessionService) SavePad(ctx context.Context, sessionID, padID string) (*domain.SignatureCapture, error) {
	var capture *domain.SignatureCapture
	err := s.withSession(sessionID, func(sess *domain.Session) error {
		pad, ok := sess.Pads[padID]
		if !ok {
			return domain.ErrPadNotFound
		}
		c, err := pad.Save()
		if err != nil {
			return err
		}
		delete(sess.Pads, padID)
		capture = c
		return nil
	})
	return capture, err
}

func (s *SessionService) DiscardPad(ctx context.Context, sessionID, padID string) error {
	return s.withSession(sessionID, func(sess *domain.Session) error {
		pad, ok := sess.Pads[padID]
		if !ok {
			return domain.ErrPadNotFound
		}
		pad.Discard()
		delete(sess.Pads, padID)
		return nil
	})
}

// ReapIdle closes sessions unused for longer than maxIdle and returns how
// many were closed.
func (s *SessionService) ReapIdle(ctx context.Context, maxIdle time.Duration) int {
	idle := s.sessions.IdleSince(s.now().Add(-maxIdle))
	for _, sess := range idle {
		s.teardown(ctx, sess)
	}
	if len(idle) > 0 {
		s.logger.Info("Idle sessions reaped", "count", len(idle), "remaining", s.sessions.Count())
	}
	return len(idle)
}

// RunReaper calls ReapIdle every interval until ctx ends.
func (s *SessionService) RunReaper(ctx context.Context, interval, maxIdle time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.ReapIdle(ctx, maxIdle)
		}
	}
}

// withSession runs fn with the session locked and marks it active.
func (s *SessionService) withSession(sessionID string, fn func(sess *domain.Session) error) error {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return err
	}
	sess.Lock()
	defer sess.Unlock()
	if sess.Closed {
		return domain.ErrSessionNotFound
	}
	sess.LastActive = s.now()
	return fn(sess)
}

func (s *SessionService) withPad(sessionID, padID string, fn func(pad domain.SignaturePad) error) error {
	return s.withSession(sessionID, func(sess *domain.Session) error {
		pad, ok := sess.Pads[padID]
		if !ok {
			return domain.ErrPadNotFound
		}
		return fn(pad)
	})
}

func snapshot(sess *domain.Session, eff overlay.Effects) *domain.SessionSnapshot {
	st := sess.State
	return &domain.SessionSnapshot{
		SessionID:       sess.ID,
		Page:            st.Page,
		PageCount:       st.PageCount(),
		Scale:           st.Scale,
		Tool:            st.Tool,
		Color:           st.Color,
		Document:        st.Document,
		Pending:         st.Pending,
		AnnotationCount: st.Annotations.Len(),
		Overlay:         overlay.Render(st),
		ClearSelection:  eff.ClearSelection,
		Created:         eff.Created,
	}
}
