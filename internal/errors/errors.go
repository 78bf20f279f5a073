// internal/errors/errors.go
package appErrors

import "fmt"

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
    CampaignID int
}

func (e *ErrCampaignNotFound) Error() string {
    return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id int) error {
    return &ErrCampaignNotFound{CampaignID: id}
}

// ErrInvalidAddress marks a row whose email field cannot be sent to. The
// message text is what lands in the outcome ledger's error column.
type ErrInvalidAddress struct {
    Value any
}

func (e *ErrInvalidAddress) Error() string {
    return "Invalid email address"
}

func NewInvalidAddress(value any) error {
    return &ErrInvalidAddress{Value: value}
}

// ErrAuthentication is fatal: without an authenticated transport the run
// never starts and no ledger is produced.
type ErrAuthentication struct {
    Reason error
}

func (e *ErrAuthentication) Error() string {
    return fmt.Sprintf("authentication failed: %v", e.Reason)
}

func (e *ErrAuthentication) Unwrap() error {
    return e.Reason
}

func NewAuthentication(reason error) error {
    return &ErrAuthentication{Reason: reason}
}

// ErrBuild marks a message that could not be assembled. Attachments are
// shared across the whole campaign, so a build failure aborts the remaining
// rows instead of being absorbed as a per-row outcome.
type ErrBuild struct {
    RowIndex int
    Reason   error
}

func (e *ErrBuild) Error() string {
    return fmt.Sprintf("failed to build message for row %d: %v", e.RowIndex, e.Reason)
}

func (e *ErrBuild) Unwrap() error {
    return e.Reason
}

func NewBuild(rowIndex int, reason error) error {
    return &ErrBuild{RowIndex: rowIndex, Reason: reason}
}
