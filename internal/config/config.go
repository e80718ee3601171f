package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"pdf-annotator/internal/domain"
)

const (
	defaultMaxFileSize        int64 = 10 * 1024 * 1024 // 10MB
	defaultSessionIdleTimeout       = 30 * time.Minute
)

var defaultAllowedOrigins = []string{
	"http://localhost:5173", // Vite dev server
	"http://localhost:4173", // Vite preview
	"http://localhost:3000", // Alternative dev port
}

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort         string
	MaxFileSize        int64
	LogLevel           string
	SupabaseURL        string
	SupabaseKey        string
	AnnotationTable    string
	ExportBucket       string
	Renderer           string
	RestoreOverlays    bool
	SessionIdleTimeout time.Duration
	AllowedOrigins     []string
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:         getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		MaxFileSize:        getEnvInt64OrDefault("MAX_FILE_SIZE", defaultMaxFileSize),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		SupabaseURL:        getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:        getEnvOrDefault("SUPABASE_ANON_KEY", ""),
		AnnotationTable:    getEnvOrDefault("ANNOTATION_TABLE", "annotations"),
		ExportBucket:       getEnvOrDefault("EXPORT_BUCKET", ""),
		Renderer:           getEnvOrDefault("RENDERER", "fitz"),
		RestoreOverlays:    getEnvBoolOrDefault("RESTORE_OVERLAYS", false),
		SessionIdleTimeout: getEnvDurationOrDefault("SESSION_IDLE_TIMEOUT", defaultSessionIdleTimeout),
		AllowedOrigins:     getEnvListOrDefault("ALLOWED_ORIGINS", defaultAllowedOrigins),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetMaxFileSize returns the maximum allowed file size
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase anon key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// GetAnnotationTable returns the table annotations are mirrored into
func (c *AppConfig) GetAnnotationTable() string {
	return c.AnnotationTable
}

// GetExportBucket returns the storage bucket for exported copies; empty disables archiving
func (c *AppConfig) GetExportBucket() string {
	return c.ExportBucket
}

// GetRenderer returns the page renderer name
func (c *AppConfig) GetRenderer() string {
	return c.Renderer
}

// GetRestoreOverlays reports whether overlays are redrawn when a page is revisited
func (c *AppConfig) GetRestoreOverlays() bool {
	return c.RestoreOverlays
}

// GetSessionIdleTimeout returns how long an unused session is kept
func (c *AppConfig) GetSessionIdleTimeout() time.Duration {
	return c.SessionIdleTimeout
}

// GetAllowedOrigins returns the CORS origins
func (c *AppConfig) GetAllowedOrigins() []string {
	return c.AllowedOrigins
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
