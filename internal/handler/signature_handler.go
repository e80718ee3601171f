package handler

import (
	"encoding/json"
	"net/http"

	"pdf-annotator/internal/domain"
	"pdf-annotator/internal/signature"

	"github.com/gorilla/mux"
)

// SignatureHandler handles signature pad requests.
type SignatureHandler struct {
	sessions domain.SessionService
	logger   domain.Logger
}

func NewSignatureHandler(sessions domain.SessionService, logger domain.Logger) *SignatureHandler {
	return &SignatureHandler{
		sessions: sessions,
		logger:   logger,
	}
}

type openPadResponse struct {
	PadID  string `json:"pad_id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type padEventsRequest struct {
	Events []domain.PadEvent `json:"events"`
}

// OpenPad handles POST /sessions/{id}/signature-pads
func (h *SignatureHandler) OpenPad(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	padID, err := h.sessions.OpenPad(r.Context(), sessionID)
	if err != nil {
		writeAppError(w, h.logger, err, "session_id", sessionID)
		return
	}
	writeJSON(w, http.StatusCreated, openPadResponse{PadID: padID, Width: signature.Width, Height: signature.Height})
}

// PadEvents handles POST /sessions/{id}/signature-pads/{padId}/events
func (h *SignatureHandler) PadEvents(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req padEventsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxIntentBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.sessions.PadEvents(r.Context(), vars["id"], vars["padId"], req.Events); err != nil {
		writeAppError(w, h.logger, err, "session_id", vars["id"], "pad_id", vars["padId"])
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearPad handles POST /sessions/{id}/signature-pads/{padId}/clear
func (h *SignatureHandler) ClearPad(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.sessions.ClearPad(r.Context(), vars["id"], vars["padId"]); err != nil {
		writeAppError(w, h.logger, err, "session_id", vars["id"], "pad_id", vars["padId"])
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SavePad handles POST /sessions/{id}/signature-pads/{padId}/save
func (h *SignatureHandler) SavePad(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	capture, err := h.sessions.SavePad(r.Context(), vars["id"], vars["padId"])
	if err != nil {
		writeAppError(w, h.logger, err, "session_id", vars["id"], "pad_id", vars["padId"])
		return
	}
	writeJSON(w, http.StatusOK, capture)
}

// DiscardPad handles DELETE /sessions/{id}/signature-pads/{padId}
func (h *SignatureHandler) DiscardPad(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.sessions.DiscardPad(r.Context(), vars["id"], vars["padId"]); err != nil {
		writeAppError(w, h.logger, err, "session_id", vars["id"], "pad_id", vars["padId"])
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
