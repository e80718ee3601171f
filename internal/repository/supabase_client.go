package repository

import (
	"fmt"

	"pdf-annotator/internal/domain"

	"github.com/supabase-community/supabase-go"
)

// SupabaseClient holds the Supabase connection shared by the annotation
// mirror and the export archive.
type SupabaseClient struct {
	client *supabase.Client
	config domain.Config
	logger domain.Logger
}

// NewSupabaseClient creates a new Supabase client instance
func NewSupabaseClient(config domain.Config, logger domain.Logger) *SupabaseClient {
	return &SupabaseClient{
		config: config,
		logger: logger,
	}
}

// Configured reports whether URL and key are set.
func (s *SupabaseClient) Configured() bool {
	return s.config.GetSupabaseURL() != "" && s.config.GetSupabaseKey() != ""
}

// Initialize establishes a connection to Supabase
func (s *SupabaseClient) Initialize() error {
	supabaseURL := s.config.GetSupabaseURL()
	supabaseKey := s.config.GetSupabaseKey()

	if supabaseURL == "" || supabaseKey == "" {
		return fmt.Errorf("Supabase URL and key must be provided")
	}

	client, err := supabase.NewClient(supabaseURL, supabaseKey, &supabase.ClientOptions{})
	if err != nil {
		return fmt.Errorf("failed to create Supabase client: %w", err)
	}

	s.client = client
	s.logger.Info("Supabase client initialized successfully", "url", supabaseURL)
	return nil
}

// GetSupabaseClient returns the typed Supabase client for repository use
func (s *SupabaseClient) GetSupabaseClient() *supabase.Client {
	return s.client
}
