// internal/model/attachment.go
package model

// Attachment is an opaque binary blob attached to every message of a
// campaign. Content is passed through untouched.
type Attachment struct {
    Filename string `json:"filename"`
    MimeType string `json:"mime_type"`
    Data     []byte `json:"data"`
}
