// internal/dispatch/ledger.go
package dispatch

import (
    "encoding/csv"
    "io"

    "github.com/google/uuid"

    "github.com/unclebandit/mailmerge-backend/internal/model"
)

// csvTimeLayout is the timestamp format of the exported results file.
const csvTimeLayout = "2006-01-02 15:04:05"

// Ledger accumulates dispatch outcomes in strict row order. It is owned by
// the loop while a run is in progress and read-only afterwards.
type Ledger struct {
    runID     string
    outcomes  []model.DispatchOutcome
    completed bool
}

func NewLedger() *Ledger {
    return &Ledger{runID: uuid.NewString()}
}

func (l *Ledger) append(o model.DispatchOutcome) {
    o.RunID = l.runID
    l.outcomes = append(l.outcomes, o)
}

// RunID identifies this run across persisted outcomes and exports.
func (l *Ledger) RunID() string {
    return l.runID
}

// Outcomes returns the recorded outcomes in row order.
func (l *Ledger) Outcomes() []model.DispatchOutcome {
    return l.outcomes
}

// Summary reports aggregate success and failure counts.
func (l *Ledger) Summary() (successCount, failureCount int) {
    for _, o := range l.outcomes {
        if o.Status == model.OutcomeSuccess {
            successCount++
        } else {
            failureCount++
        }
    }
    return successCount, failureCount
}

// Completed reports whether every row was processed. A run with failures can
// still be complete; an aborted run is not.
func (l *Ledger) Completed() bool {
    return l.completed
}

// WriteCSV renders the ledger as a delimited table, one line per processed
// row, in row order.
func (l *Ledger) WriteCSV(w io.Writer) error {
    return WriteCSV(w, l.outcomes)
}

// WriteCSV writes outcomes in the export format, header
// recipient,status,message_id,error,timestamp. Also used for ledgers
// re-read from storage.
func WriteCSV(w io.Writer, outcomes []model.DispatchOutcome) error {
    cw := csv.NewWriter(w)
    if err := cw.Write([]string{"recipient", "status", "message_id", "error", "timestamp"}); err != nil {
        return err
    }
    for _, o := range outcomes {
        record := []string{
            o.Recipient,
            o.Status,
            o.MessageID,
            o.ErrorDetail,
            o.Timestamp.Format(csvTimeLayout),
        }
        if err := cw.Write(record); err != nil {
            return err
        }
    }
    cw.Flush()
    return cw.Error()
}
