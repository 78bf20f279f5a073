// internal/dispatch/loop.go
package dispatch

import (
    "context"
    "fmt"
    "time"

    appErrors "github.com/unclebandit/mailmerge-backend/internal/errors"
    "github.com/unclebandit/mailmerge-backend/internal/mail"
    "github.com/unclebandit/mailmerge-backend/internal/merge"
    "github.com/unclebandit/mailmerge-backend/internal/model"
)

// ProgressFunc is called once per row before the send attempt. Observability
// only; the loop does not care whether anyone listens.
type ProgressFunc func(index, total int, target string)

// Loop dispatches a campaign one row at a time, in row order, with no
// overlapping sends. Row-local failures become ledger entries; only build
// failures and cancellation abort the run.
type Loop struct {
    Transport     mail.Transport
    OperatorEmail string
    OnProgress    ProgressFunc

    // sleep is swapped out in tests; nil means a real ctx-aware sleep.
    sleep func(ctx context.Context, d time.Duration) error
}

// Run processes every row of the campaign. The returned ledger is always
// usable, even when err != nil; in that case it covers only the rows
// processed before the abort and Completed() reports false.
func (dl *Loop) Run(ctx context.Context, campaign *model.Campaign, rows []model.Row) (*Ledger, error) {
    ledger := NewLedger()
    total := len(rows)

    for i, row := range rows {
        if err := ctx.Err(); err != nil {
            return ledger, err
        }

        rawEmail := row.EmailValue()
        recipient, err := merge.ValidateRecipient(rawEmail)
        if err != nil {
            ledger.append(model.DispatchOutcome{
                CampaignID:  campaign.ID,
                RowIndex:    i,
                Recipient:   rawString(rawEmail),
                Status:      model.OutcomeFailed,
                ErrorDetail: err.Error(),
                Timestamp:   time.Now(),
            })
            continue
        }

        // Test mode sends to the operator's own mailbox; the ledger still
        // records the row's original address.
        target := recipient
        if campaign.TestMode {
            target = dl.OperatorEmail
        }

        subject := campaign.Subject
        body := campaign.Body
        if campaign.Mode == model.ModePersonalized {
            subject = merge.Resolve(subject, row)
            body = merge.Resolve(body, row)
        }

        msg, err := mail.Build(campaign.Sender(dl.OperatorEmail), target, subject, body, campaign.IsHTML, campaign.Attachments)
        if err != nil {
            // Attachments are shared across all rows, so a build failure
            // here would fail every remaining row the same way.
            return ledger, appErrors.NewBuild(i, err)
        }

        if dl.OnProgress != nil {
            dl.OnProgress(i, total, target)
        }

        outcome := model.DispatchOutcome{
            CampaignID:      campaign.ID,
            RowIndex:        i,
            Recipient:       recipient,
            ActualRecipient: target,
            Timestamp:       time.Now(),
        }
        messageID, err := dl.Transport.Send(ctx, msg)
        if err != nil {
            outcome.Status = model.OutcomeFailed
            outcome.ErrorDetail = err.Error()
        } else {
            outcome.Status = model.OutcomeSuccess
            outcome.MessageID = messageID
        }
        ledger.append(outcome)

        if i < total-1 && campaign.SendDelaySeconds > 0 {
            if err := dl.pause(ctx, time.Duration(campaign.SendDelaySeconds)*time.Second); err != nil {
                return ledger, err
            }
        }
    }

    ledger.completed = true
    return ledger, nil
}

func (dl *Loop) pause(ctx context.Context, d time.Duration) error {
    if dl.sleep != nil {
        return dl.sleep(ctx, d)
    }
    timer := time.NewTimer(d)
    defer timer.Stop()
    select {
    case <-ctx.Done():
        return ctx.Err()
    case <-timer.C:
        return nil
    }
}

func rawString(value any) string {
    if value == nil {
        return ""
    }
    if s, ok := value.(string); ok {
        return s
    }
    return fmt.Sprintf("%v", value)
}
