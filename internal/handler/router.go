package handler

import (
	"net/http"

	"pdf-annotator/internal/domain"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(sessionHandler *SessionHandler, signatureHandler *SignatureHandler, logger domain.Logger, allowedOrigins []string) http.Handler {
	router := mux.NewRouter()
	router.Use(Recoverer(logger), RequestLogger(logger))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"pdf-annotator"}`))
	}).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()

	// Session routes
	api.HandleFunc("/sessions", sessionHandler.CreateSession).Methods("POST")
	api.HandleFunc("/sessions/{id}", sessionHandler.GetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", sessionHandler.CloseSession).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/document", sessionHandler.UploadDocument).Methods("POST")
	api.HandleFunc("/sessions/{id}/pages/{page}/image", sessionHandler.RenderPage).Methods("GET")
	api.HandleFunc("/sessions/{id}/intents", sessionHandler.Dispatch).Methods("POST")
	api.HandleFunc("/sessions/{id}/overlay", sessionHandler.GetOverlay).Methods("GET")
	api.HandleFunc("/sessions/{id}/annotations", sessionHandler.ListAnnotations).Methods("GET")
	api.HandleFunc("/sessions/{id}/annotations/{annotationId}", sessionHandler.RemoveAnnotation).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/export", sessionHandler.Export).Methods("GET")

	// Signature pad routes
	api.HandleFunc("/sessions/{id}/signature-pads", signatureHandler.OpenPad).Methods("POST")
	api.HandleFunc("/sessions/{id}/signature-pads/{padId}/events", signatureHandler.PadEvents).Methods("POST")
	api.HandleFunc("/sessions/{id}/signature-pads/{padId}/clear", signatureHandler.ClearPad).Methods("POST")
	api.HandleFunc("/sessions/{id}/signature-pads/{padId}/save", signatureHandler.SavePad).Methods("POST")
	api.HandleFunc("/sessions/{id}/signature-pads/{padId}", signatureHandler.DiscardPad).Methods("DELETE")

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
		},
		ExposedHeaders: []string{
			"Content-Disposition",
		},
		MaxAge: 300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}
