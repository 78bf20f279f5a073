// internal/mail/transport.go
package mail

import "context"

// TransportMessage is the envelope handed to a Transport. Raw carries the
// full serialized MIME message, base64url-encoded, which is the exact shape
// the Gmail API expects.
type TransportMessage struct {
    From    string
    To      string
    Subject string
    Raw     string
}

// Transport delivers one message and reports the provider's message id. The
// dispatch loop issues exactly one attempt per row; retrying is the caller's
// business.
type Transport interface {
    Send(ctx context.Context, msg *TransportMessage) (string, error)
}
