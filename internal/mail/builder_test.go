package mail_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/unclebandit/mailmerge-backend/internal/mail"
	"github.com/unclebandit/mailmerge-backend/internal/model"
)

func decodeRaw(t *testing.T, raw string) string {
	t.Helper()
	decoded, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		t.Fatalf("raw message is not base64url with padding: %v", err)
	}
	return string(decoded)
}

func TestBuildPlainText(t *testing.T) {
	msg, err := mail.Build("Ops <ops@example.com>", "ann@example.com", "Hello", "Dear Ann", false, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	serialized := decodeRaw(t, msg.Raw)
	for _, want := range []string{
		"From: Ops <ops@example.com>",
		"To: ann@example.com",
		"Subject: Hello",
		"Content-Type: text/plain; charset=UTF-8",
		"Dear Ann",
	} {
		if !strings.Contains(serialized, want) {
			t.Errorf("serialized message missing %q", want)
		}
	}
}

func TestBuildHTMLContentType(t *testing.T) {
	msg, err := mail.Build("ops@example.com", "ann@example.com", "Hello", "<p>Hi</p>", true, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	serialized := decodeRaw(t, msg.Raw)
	if !strings.Contains(serialized, "Content-Type: text/html; charset=UTF-8") {
		t.Error("expected an HTML text part")
	}
}

func TestBuildAttachments(t *testing.T) {
	attachments := []model.Attachment{
		{Filename: "report.pdf", MimeType: "application/pdf", Data: []byte("pdf bytes")},
		{Filename: "notes.txt", Data: []byte("plain notes")},
	}

	msg, err := mail.Build("ops@example.com", "ann@example.com", "Hello", "see attached", false, attachments)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	serialized := decodeRaw(t, msg.Raw)
	if !strings.Contains(serialized, `Content-Disposition: attachment; filename="report.pdf"`) {
		t.Error("first attachment not declared as downloadable")
	}
	if !strings.Contains(serialized, "Content-Type: application/pdf") {
		t.Error("first attachment lost its mime type")
	}
	// Missing mime type falls back to octet-stream
	if !strings.Contains(serialized, "Content-Type: application/octet-stream") {
		t.Error("second attachment should default to octet-stream")
	}
	if !strings.Contains(serialized, base64.StdEncoding.EncodeToString([]byte("pdf bytes"))) {
		t.Error("attachment bytes not base64-encoded in body")
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	attachments := []model.Attachment{{Filename: "a.bin", Data: []byte{1, 2, 3}}}

	first, err := mail.Build("ops@example.com", "ann@example.com", "Hello", "body", false, attachments)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := mail.Build("ops@example.com", "ann@example.com", "Hello", "body", false, attachments)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Raw != second.Raw {
		t.Error("identical inputs produced different raw messages")
	}
}

func TestBuildRejectsNamelessAttachment(t *testing.T) {
	_, err := mail.Build("ops@example.com", "ann@example.com", "Hello", "body", false,
		[]model.Attachment{{Data: []byte("x")}})
	if err == nil {
		t.Fatal("expected an error for an attachment without a filename")
	}
}
