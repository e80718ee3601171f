package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"pdf-annotator/internal/domain"
	"pdf-annotator/pkg/logger"
)

type stubConfig struct {
	url, key string
}

func (c stubConfig) GetServerPort() string { return "8080" }
func (c stubConfig) GetMaxFileSize() int64 { return 10 << 20 }
func (c stubConfig) GetLogLevel() string { return "error" }
func (c stubConfig) GetSupabaseURL() string { return c.url }
func (c stubConfig) GetSupabaseKey() string { return c.key }
func (c stubConfig) GetAnnotationTable() string { return "" }
func (c stubConfig) GetExportBucket() string { return "" }
func (c stubConfig) GetRenderer() string { return "fitz" }
func (c stubConfig) GetRestoreOverlays() bool { return false }
func (c stubConfig) GetSessionIdleTimeout() time.Duration { return time.Minute }
func (c stubConfig) GetAllowedOrigins() []string { return nil }

func quietLogger() domain.Logger {
	return logger.NewLoggerTo(io.Discard, "error")
}

func TestMemorySessionRepository(t *testing.T) {
	repo := NewMemorySessionRepository()
	now := time.Now()

	fresh := domain.NewSession("fresh", now, false)
	stale := domain.NewSession("stale", now.Add(-time.Hour), false)
	for _, s := range []*domain.Session{fresh, stale} {
		if err := repo.Save(s); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	if repo.Count() != 2 {
		t.Fatalf("expected 2 sessions, got %d", repo.Count())
	}

	got, err := repo.Get("fresh")
	if err != nil || got != fresh {
		t.Fatalf("expected stored session, got %v (%v)", got, err)
	}

	idle := repo.IdleSince(now.Add(-time.Minute))
	if len(idle) != 1 || idle[0].ID != "stale" {
		t.Fatalf("expected only the stale session, got %d", len(idle))
	}

	if err := repo.Delete("stale"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get("stale"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := repo.Delete("stale"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound on second delete, got %v", err)
	}
}

func TestSupabaseClient_RequiresCredentials(t *testing.T) {
	c := NewSupabaseClient(stubConfig{}, quietLogger())
	if c.Configured() {
		t.Fatalf("expected client without credentials to be unconfigured")
	}
	if err := c.Initialize(); err == nil {
		t.Fatalf("expected error without URL and key")
	}
	if c.GetSupabaseClient() != nil {
		t.Fatalf("expected no underlying client")
	}

	if !NewSupabaseClient(stubConfig{url: "http://localhost:54321", key: "k"}, quietLogger()).Configured() {
		t.Fatalf("expected client with credentials to be configured")
	}
}

func TestMirrorAndArchive_Uninitialized(t *testing.T) {
	client := NewSupabaseClient(stubConfig{}, quietLogger())
	ctx := context.Background()

	mirror := NewSupabaseAnnotationMirror(client, "", quietLogger())
	if mirror.table != DefaultAnnotationTable {
		t.Fatalf("expected default table, got %s", mirror.table)
	}
	if err := mirror.Save(ctx, "s1", domain.Annotation{ID: "a1"}); err == nil {
		t.Fatalf("expected error from uninitialized mirror")
	}
	if err := mirror.Delete(ctx, "s1", "a1"); err == nil {
		t.Fatalf("expected error from uninitialized mirror")
	}
	if err := mirror.DeleteSession(ctx, "s1"); err == nil {
		t.Fatalf("expected error from uninitialized mirror")
	}
	if _, err := mirror.List(ctx, "s1"); err == nil {
		t.Fatalf("expected error from uninitialized mirror")
	}

	archive := NewSupabaseExportArchive(client, "exports", quietLogger())
	if err := archive.Upload(ctx, "s1/doc.pdf", nil); err == nil {
		t.Fatalf("expected error from uninitialized archive")
	}

	var noop NoopAnnotationMirror
	if err := noop.Save(ctx, "s1", domain.Annotation{}); err != nil {
		t.Fatalf("noop mirror returned %v", err)
	}
	if list, err := noop.List(ctx, "s1"); err != nil || list == nil {
		t.Fatalf("noop mirror list returned %v, %v", list, err)
	}
}

func TestAnnotationRow(t *testing.T) {
	created := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	row := annotationRow("s1", domain.Annotation{
		ID:            "a1",
		Type:          domain.AnnotationComment,
		PageNumber:    2,
		X:             0.25,
		Y:             0.5,
		Text:          "hi\x00 there",
		CapturedScale: 1.2,
		CreatedAt:     created,
	})

	if row["session_id"] != "s1" || row["type"] != "comment" || row["page_number"] != 2 {
		t.Fatalf("unexpected row %v", row)
	}
	if row["text"] != "hi there" {
		t.Fatalf("expected NUL bytes stripped, got %q", row["text"])
	}
	if _, ok := row["width"]; ok {
		t.Fatalf("expected no size for a comment")
	}
	if row["created_at"] != "2026-03-04T05:06:07Z" {
		t.Fatalf("unexpected created_at %v", row["created_at"])
	}
}
