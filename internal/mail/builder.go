// internal/mail/builder.go
package mail

import (
    "encoding/base64"
    "fmt"
    "strings"

    "github.com/unclebandit/mailmerge-backend/internal/model"
)

// Fixed boundary keeps the serialized message byte-identical for identical
// inputs.
const mimeBoundary = "mailmerge_boundary"

// Build assembles a multipart MIME message and base64url-encodes it into a
// TransportMessage. One text part (plain or HTML per isHTML), then one part
// per attachment carrying its original filename and an attachment
// disposition.
func Build(from, to, subject, body string, isHTML bool, attachments []model.Attachment) (*TransportMessage, error) {
    textType := "text/plain"
    if isHTML {
        textType = "text/html"
    }

    lines := []string{
        "From: " + from,
        "To: " + to,
        "Subject: " + subject,
        "MIME-Version: 1.0",
        "Content-Type: multipart/mixed; boundary=" + mimeBoundary,
        "",
        "--" + mimeBoundary,
        "Content-Type: " + textType + "; charset=UTF-8",
        "Content-Transfer-Encoding: 7bit",
        "",
        body,
    }

    for _, att := range attachments {
        if att.Filename == "" {
            return nil, fmt.Errorf("attachment has no filename")
        }
        mimeType := att.MimeType
        if mimeType == "" {
            mimeType = "application/octet-stream"
        }
        lines = append(lines,
            "",
            "--"+mimeBoundary,
            "Content-Type: "+mimeType,
            "Content-Transfer-Encoding: base64",
            fmt.Sprintf("Content-Disposition: attachment; filename=%q", att.Filename),
            "",
            wrapBase64(att.Data),
        )
    }

    lines = append(lines, "", "--"+mimeBoundary+"--")

    serialized := strings.Join(lines, "\r\n")
    return &TransportMessage{
        From:    from,
        To:      to,
        Subject: subject,
        Raw:     base64.URLEncoding.EncodeToString([]byte(serialized)),
    }, nil
}

// wrapBase64 encodes data and folds it at 76 columns per RFC 2045.
func wrapBase64(data []byte) string {
    encoded := base64.StdEncoding.EncodeToString(data)
    var b strings.Builder
    for len(encoded) > 76 {
        b.WriteString(encoded[:76])
        b.WriteString("\r\n")
        encoded = encoded[76:]
    }
    b.WriteString(encoded)
    return b.String()
}
