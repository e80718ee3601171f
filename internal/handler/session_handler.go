// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"pdf-annotator/internal/domain"
	"pdf-annotator/internal/intake"

	"github.com/gorilla/mux"
)

// multipartOverhead is headroom for multipart boundaries and headers on top
// of the file itself.
const multipartOverhead = 1 << 20

// maxIntentBody bounds intent payloads; signature data URLs are the largest.
const maxIntentBody = 4 << 20

// SessionHandler handles annotation session requests
type SessionHandler struct {
	sessions domain.SessionService
	intake   *intake.Validator
	logger   domain.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions domain.SessionService, maxFileSize int64, logger domain.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		intake:   intake.NewValidator(maxFileSize),
		logger:   logger,
	}
}

// CreateSession handles POST /sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sessions.CreateSession(r.Context())
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// GetSession handles GET /sessions/{id}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	snap, err := h.sessions.GetSession(r.Context(), sessionID)
	if err != nil {
		writeAppError(w, h.logger, err, "session_id", sessionID)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// CloseSession handles DELETE /sessions/{id}
func (h *SessionHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	if err := h.sessions.CloseSession(r.Context(), sessionID); err != nil {
		writeAppError(w, h.logger, err, "session_id", sessionID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadDocument handles POST /sessions/{id}/document
func (h *SessionHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	r.Body = http.MaxBytesReader(w, r.Body, h.intake.MaxSize()+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeAppError(w, h.logger, h.intake.TooLarge(), "session_id", sessionID)
			return
		}
		writeError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	snap, err := h.sessions.LoadDocument(r.Context(), sessionID, header.Filename, file, header.Size)
	if err != nil {
		writeAppError(w, h.logger, err, "session_id", sessionID, "file", header.Filename)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// RenderPage handles GET /sessions/{id}/pages/{page}/image
func (h *SessionHandler) RenderPage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]
	page, err := strconv.Atoi(vars["page"])
	if err != nil || page < 1 {
		writeError(w, http.StatusBadRequest, "Page must be a positive number")
		return
	}

	img, err := h.sessions.RenderPage(r.Context(), sessionID, page)
	if err != nil {
		writeAppError(w, h.logger, err, "session_id", sessionID, "page", page)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

// Dispatch handles POST /sessions/{id}/intents
func (h *SessionHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req domain.IntentRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxIntentBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Type == "" {
		writeError(w, http.StatusBadRequest, "type is required")
		return
	}

	snap, err := h.sessions.Dispatch(r.Context(), sessionID, req)
	if err != nil {
		writeAppError(w, h.logger, err, "session_id", sessionID, "intent", req.Type)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// GetOverlay handles GET /sessions/{id}/overlay
func (h *SessionHandler) GetOverlay(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	o, err := h.sessions.Overlay(r.Context(), sessionID)
	if err != nil {
		writeAppError(w, h.logger, err, "session_id", sessionID)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// ListAnnotations handles GET /sessions/{id}/annotations?page=&source=
func (h *SessionHandler) ListAnnotations(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	query := r.URL.Query()

	if query.Get("source") == "mirror" {
		list, err := h.sessions.MirroredAnnotations(r.Context(), sessionID)
		if err != nil {
			writeAppError(w, h.logger, err, "session_id", sessionID)
			return
		}
		writeJSON(w, http.StatusOK, list)
		return
	}

	page := 0
	if raw := query.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "Page must be a positive number")
			return
		}
		page = n
	}

	list, err := h.sessions.Annotations(r.Context(), sessionID, page)
	if err != nil {
		writeAppError(w, h.logger, err, "session_id", sessionID)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// RemoveAnnotation handles DELETE /sessions/{id}/annotations/{annotationId}
func (h *SessionHandler) RemoveAnnotation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	snap, err := h.sessions.Dispatch(r.Context(), sessionID, domain.IntentRequest{
		Type:         domain.RemoveAnnotation{}.Name(),
		AnnotationID: vars["annotationId"],
	})
	if err != nil {
		writeAppError(w, h.logger, err, "session_id", sessionID, "annotation_id", vars["annotationId"])
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Export handles GET /sessions/{id}/export?annotations=none|embed
func (h *SessionHandler) Export(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	mode := domain.ExportMode(r.URL.Query().Get("annotations"))
	if mode == "" {
		mode = domain.ExportPlain
	}

	res, err := h.sessions.Export(r.Context(), sessionID, mode)
	if err != nil {
		writeAppError(w, h.logger, err, "session_id", sessionID, "mode", mode)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}
