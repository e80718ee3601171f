package intake

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	apperrors "pdf-annotator/pkg/errors"
)

func TestValidator_AcceptsPDF(t *testing.T) {
	v := NewValidator(0)
	payload := []byte("%PDF-1.7\n%...")

	data, err := v.Read(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Fatalf("expected payload to be returned unchanged")
	}
	if v.MaxSize() != DefaultMaxSize {
		t.Fatalf("expected default ceiling %d, got %d", DefaultMaxSize, v.MaxSize())
	}
}

func TestValidator_RejectsBadSignature(t *testing.T) {
	v := NewValidator(1024)
	for _, payload := range []string{"PK\x03\x04", "%PDF", "%pdf-1.4", " %PDF-1.4"} {
		_, err := v.Read(strings.NewReader(payload), -1)
		if !errors.Is(err, ErrNotPDF) {
			t.Fatalf("payload %q: expected ErrNotPDF, got %v", payload, err)
		}
		if apperrors.UserMessage(err) != "The selected file is not a valid PDF." {
			t.Fatalf("unexpected message %q", apperrors.UserMessage(err))
		}
	}
}

func TestValidator_RejectsDeclaredOversize(t *testing.T) {
	v := NewValidator(10 * 1024 * 1024)

	_, err := v.Read(strings.NewReader("%PDF-"), 10*1024*1024+1)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if apperrors.GetStatusCode(err) != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", apperrors.GetStatusCode(err))
	}
	if apperrors.UserMessage(err) != "File is too large. Maximum size is 10MB." {
		t.Fatalf("unexpected message %q", apperrors.UserMessage(err))
	}
}

func TestValidator_RejectsStreamedOversize(t *testing.T) {
	v := NewValidator(8)
	_, err := v.Read(strings.NewReader("%PDF-1.4 and more"), -1)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestValidator_EmptyAndUnreadable(t *testing.T) {
	v := NewValidator(1024)

	if _, err := v.Read(strings.NewReader(""), 0); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}

	r := io.MultiReader(strings.NewReader("%PDF-"), errReader{})
	if _, err := v.Read(r, -1); !errors.Is(err, ErrUnreadable) {
		t.Fatalf("expected ErrUnreadable, got %v", err)
	}
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestNames(t *testing.T) {
	cases := map[string]string{
		"doc.pdf":             "doc.pdf",
		"../../etc/doc.pdf":   "doc.pdf",
		`C:\Users\me\doc.pdf`: "doc.pdf",
		"   ":                 "document.pdf",
	}
	for in, want := range cases {
		if got := SanitizeName(in); got != want {
			t.Errorf("SanitizeName(%q) = %q, want %q", in, got, want)
		}
	}
	if got := ExportName("doc.pdf"); got != "annotated-doc.pdf" {
		t.Fatalf("unexpected export name %q", got)
	}
}
