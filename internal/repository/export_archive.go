package repository

import (
	"context"
	"fmt"
	"io"

	storage_go "github.com/supabase-community/storage-go"

	"pdf-annotator/internal/domain"
)

// SupabaseExportArchive stores exported documents in a Supabase Storage bucket.
type SupabaseExportArchive struct {
	supabaseClient *SupabaseClient
	bucket         string
	logger         domain.Logger
}

func NewSupabaseExportArchive(supabaseClient *SupabaseClient, bucket string, logger domain.Logger) *SupabaseExportArchive {
	return &SupabaseExportArchive{
		supabaseClient: supabaseClient,
		bucket:         bucket,
		logger:         logger,
	}
}

func (s *SupabaseExportArchive) Upload(ctx context.Context, path string, file io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	client := s.supabaseClient.GetSupabaseClient()
	if client == nil || client.Storage == nil {
		return fmt.Errorf("supabase storage not initialized")
	}

	contentType := "application/pdf"
	upsert := true
	_, err := client.Storage.UploadFile(s.bucket, path, file, storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return fmt.Errorf("storage upload failed: %w", err)
	}

	s.logger.Debug("Export archived", "bucket", s.bucket, "path", path)
	return nil
}
