// internal/model/campaign.go
package model

import "time"

// Campaign modes
const (
    ModeStatic       = "static"
    ModePersonalized = "personalized"
)

// Campaign statuses
const (
    StatusDraft       = "draft"
    StatusDispatching = "dispatching"
    StatusCompleted   = "completed"
    StatusIncomplete  = "incomplete"
)

type Campaign struct {
    ID               int        `db:"id" json:"id"`
    Name             string     `db:"name" json:"name"`
    SenderName       string     `db:"sender_name" json:"sender_name,omitempty"`
    Subject          string     `db:"subject" json:"subject"`
    Body             string     `db:"body" json:"body"`
    IsHTML           bool       `db:"is_html" json:"is_html"`
    Mode             string     `db:"mode" json:"mode"` // static, personalized
    TestMode         bool       `db:"test_mode" json:"test_mode"`
    SendDelaySeconds int        `db:"send_delay_seconds" json:"send_delay_seconds"`
    Status           string     `db:"status" json:"status"`
    CreatedAt        time.Time  `db:"created_at" json:"created_at"`
    UpdatedAt        *time.Time `db:"updated_at" json:"updated_at,omitempty"`

    // Attachments are shared byte-for-byte across every recipient of the
    // campaign; they are never personalized.
    Attachments []Attachment `db:"-" json:"attachments,omitempty"`
}

// Sender returns the From header value: "Name <addr>" when a sender name is
// configured, otherwise the bare operator address.
func (c *Campaign) Sender(operatorEmail string) string {
    if c.SenderName != "" {
        return c.SenderName + " <" + operatorEmail + ">"
    }
    return operatorEmail
}
