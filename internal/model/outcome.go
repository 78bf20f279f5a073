// internal/model/outcome.go
package model

import "time"

// Outcome statuses
const (
    OutcomeSuccess = "Success"
    OutcomeFailed  = "Failed"
)

// DispatchOutcome is the per-row result of one delivery attempt. Exactly one
// is produced for every row of a completed run, in row order, including rows
// rejected for an invalid address.
type DispatchOutcome struct {
    ID         int       `db:"id" json:"id"`
    CampaignID int       `db:"campaign_id" json:"campaign_id"`
    RunID      string    `db:"run_id" json:"run_id"`
    RowIndex   int       `db:"row_index" json:"row_index"`
    // Recipient is the row's original address, kept for audit even when test
    // mode redirected the actual send elsewhere.
    Recipient       string    `db:"recipient" json:"recipient"`
    ActualRecipient string    `db:"actual_recipient" json:"actual_recipient"`
    Status          string    `db:"status" json:"status"` // Success, Failed
    MessageID       string    `db:"message_id" json:"message_id,omitempty"`
    ErrorDetail     string    `db:"error_detail" json:"error_detail,omitempty"`
    Timestamp       time.Time `db:"sent_at" json:"timestamp"`
}
