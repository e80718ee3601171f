package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"pdf-annotator/internal/domain"

	"github.com/supabase-community/postgrest-go"
)

// DefaultAnnotationTable is used when no table is configured.
const DefaultAnnotationTable = "annotations"

// SupabaseAnnotationMirror copies annotation records into a Supabase table.
type SupabaseAnnotationMirror struct {
	supabaseClient *SupabaseClient
	table          string
	logger         domain.Logger
}

func NewSupabaseAnnotationMirror(supabaseClient *SupabaseClient, table string, logger domain.Logger) *SupabaseAnnotationMirror {
	if table == "" {
		table = DefaultAnnotationTable
	}
	return &SupabaseAnnotationMirror{
		supabaseClient: supabaseClient,
		table:          table,
		logger:         logger,
	}
}

func (r *SupabaseAnnotationMirror) Save(ctx context.Context, sessionID string, a domain.Annotation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	client := r.supabaseClient.GetSupabaseClient()
	if client == nil {
		return fmt.Errorf("supabase client not initialized")
	}

	_, _, err := client.From(r.table).
		Insert(annotationRow(sessionID, a), false, "", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to save annotation: %w", err)
	}
	return nil
}

func (r *SupabaseAnnotationMirror) Delete(ctx context.Context, sessionID string, annotationID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	client := r.supabaseClient.GetSupabaseClient()
	if client == nil {
		return fmt.Errorf("supabase client not initialized")
	}

	_, _, err := client.From(r.table).
		Delete("", "").
		Eq("id", annotationID).
		Eq("session_id", sessionID).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete annotation: %w", err)
	}
	return nil
}

func (r *SupabaseAnnotationMirror) DeleteSession(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	client := r.supabaseClient.GetSupabaseClient()
	if client == nil {
		return fmt.Errorf("supabase client not initialized")
	}

	_, _, err := client.From(r.table).
		Delete("", "").
		Eq("session_id", sessionID).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete session annotations: %w", err)
	}
	return nil
}

// List returns the mirrored records of a session, oldest first.
func (r *SupabaseAnnotationMirror) List(ctx context.Context, sessionID string) ([]domain.Annotation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	client := r.supabaseClient.GetSupabaseClient()
	if client == nil {
		return nil, fmt.Errorf("supabase client not initialized")
	}

	data, _, err := client.From(r.table).
		Select("*", "", false).
		Eq("session_id", sessionID).
		Order("created_at", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list annotations: %w", err)
	}

	out := []domain.Annotation{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return out, nil
}

func annotationRow(sessionID string, a domain.Annotation) map[string]interface{} {
	row := map[string]interface{}{
		"id":             a.ID,
		"session_id":     sessionID,
		"type":           string(a.Type),
		"page_number":    a.PageNumber,
		"x":              a.X,
		"y":              a.Y,
		"captured_scale": a.CapturedScale,
		"created_at":     a.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if a.Width != 0 || a.Height != 0 {
		row["width"] = a.Width
		row["height"] = a.Height
	}
	if a.Color != "" {
		row["color"] = a.Color
	}
	if a.Text != "" {
		row["text"] = sanitizeText(a.Text)
	}
	if a.ImageDataURL != "" {
		row["image_data_url"] = a.ImageDataURL
	}
	return row
}

var reControl = regexp.MustCompile(`[\x00]`)

// sanitizeText removes characters that PostgreSQL rejects in text fields (notably NUL bytes).
func sanitizeText(s string) string {
	if s == "" {
		return s
	}
	s = reControl.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\\u0000", "")
	return s
}

// NoopAnnotationMirror is used when Supabase is not configured.
type NoopAnnotationMirror struct{}

func (NoopAnnotationMirror) Save(context.Context, string, domain.Annotation) error { return nil }
func (NoopAnnotationMirror) Delete(context.Context, string, string) error { return nil }
func (NoopAnnotationMirror) DeleteSession(context.Context, string) error { return nil }
func (NoopAnnotationMirror) List(context.Context, string) ([]domain.Annotation, error) {
	return []domain.Annotation{}, nil
}
