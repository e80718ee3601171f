package config

import (
	"fmt"

	"pdf-annotator/internal/domain"
	"pdf-annotator/internal/export"
	"pdf-annotator/internal/renderer"
	"pdf-annotator/internal/repository"
	"pdf-annotator/internal/service"
	"pdf-annotator/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config            domain.Config
	Logger            domain.Logger
	SupabaseClient    *repository.SupabaseClient
	SessionRepository domain.SessionRepository
	AnnotationMirror  domain.AnnotationMirror
	ExportArchive     domain.ExportArchive
	Renderer          domain.PageRenderer
	Exporter          domain.Exporter
	SessionService    *service.SessionService
}

// NewContainer creates a new dependency injection container from the environment
func NewContainer() (*Container, error) {
	cfg := NewConfig()
	return NewContainerWith(cfg, logger.NewLogger(cfg.GetLogLevel()))
}

// NewContainerWith wires the application around cfg. Supabase is optional:
// without credentials annotations are not mirrored and exports not archived.
func NewContainerWith(cfg domain.Config, appLogger domain.Logger) (*Container, error) {
	pageRenderer, err := renderer.New(cfg.GetRenderer(), appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	supabaseClient := repository.NewSupabaseClient(cfg, appLogger)
	var (
		mirror  domain.AnnotationMirror = repository.NoopAnnotationMirror{}
		archive domain.ExportArchive
	)
	if supabaseClient.Configured() {
		if err := supabaseClient.Initialize(); err != nil {
			appLogger.Warn("Supabase unavailable, annotations will not be mirrored", "error", err)
		} else {
			mirror = repository.NewSupabaseAnnotationMirror(supabaseClient, cfg.GetAnnotationTable(), appLogger)
			if bucket := cfg.GetExportBucket(); bucket != "" {
				archive = repository.NewSupabaseExportArchive(supabaseClient, bucket, appLogger)
			}
		}
	}

	sessions := repository.NewMemorySessionRepository()
	exporter := export.NewPdfcpuExporter(appLogger)
	sessionService := service.NewSessionService(
		sessions,
		pageRenderer,
		exporter,
		mirror,
		archive,
		appLogger,
		service.SessionOptions{
			MaxFileSize:     cfg.GetMaxFileSize(),
			RestoreOverlays: cfg.GetRestoreOverlays(),
		},
	)

	appLogger.Info("Container initialized",
		"renderer", pageRenderer.Name(),
		"mirror", supabaseClient.GetSupabaseClient() != nil,
		"archive", archive != nil,
	)

	return &Container{
		Config:            cfg,
		Logger:            appLogger,
		SupabaseClient:    supabaseClient,
		SessionRepository: sessions,
		AnnotationMirror:  mirror,
		ExportArchive:     archive,
		Renderer:          pageRenderer,
		Exporter:          exporter,
		SessionService:    sessionService,
	}, nil
}

// GetConfig returns the configuration instance
func (c *Container) GetConfig() domain.Config {
	return c.Config
}

// GetLogger returns the logger instance
func (c *Container) GetLogger() domain.Logger {
	return c.Logger
}
