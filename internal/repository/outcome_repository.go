package repository

import (
    "database/sql"

    "github.com/unclebandit/mailmerge-backend/internal/model"
)

// OutcomeRepositoryInterface defines methods used by the service
type OutcomeRepositoryInterface interface {
    InsertRun(outcomes []model.DispatchOutcome) error
    ListLatestRun(campaignID int) ([]model.DispatchOutcome, error)
}

// OutcomeRepository persists the ledger of a dispatch run.
type OutcomeRepository struct {
    DB *sql.DB
}

// InsertRun writes a run's outcomes in one transaction so a ledger is never
// half-persisted.
func (r *OutcomeRepository) InsertRun(outcomes []model.DispatchOutcome) error {
    if len(outcomes) == 0 {
        return nil
    }

    tx, err := r.DB.Begin()
    if err != nil {
        return err
    }
    defer tx.Rollback()

    query := `
        INSERT INTO dispatch_outcomes
        (campaign_id, run_id, row_index, recipient, actual_recipient, status, message_id, error_detail, sent_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
    for _, o := range outcomes {
        if _, err := tx.Exec(query,
            o.CampaignID, o.RunID, o.RowIndex, o.Recipient, o.ActualRecipient,
            o.Status, o.MessageID, o.ErrorDetail, o.Timestamp,
        ); err != nil {
            return err
        }
    }

    return tx.Commit()
}

// ListLatestRun fetches the most recent run's outcomes in row order.
func (r *OutcomeRepository) ListLatestRun(campaignID int) ([]model.DispatchOutcome, error) {
    query := `
        SELECT id, campaign_id, run_id, row_index, recipient, actual_recipient, status, message_id, error_detail, sent_at
        FROM dispatch_outcomes
        WHERE campaign_id=$1
          AND run_id = (
            SELECT run_id FROM dispatch_outcomes
            WHERE campaign_id=$1
            ORDER BY sent_at DESC LIMIT 1
          )
        ORDER BY row_index
    `
    rows, err := r.DB.Query(query, campaignID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    outcomes := []model.DispatchOutcome{}
    for rows.Next() {
        var o model.DispatchOutcome
        if err := rows.Scan(
            &o.ID, &o.CampaignID, &o.RunID, &o.RowIndex, &o.Recipient, &o.ActualRecipient,
            &o.Status, &o.MessageID, &o.ErrorDetail, &o.Timestamp,
        ); err != nil {
            return nil, err
        }
        outcomes = append(outcomes, o)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    if len(outcomes) == 0 {
        return nil, sql.ErrNoRows
    }
    return outcomes, nil
}

var _ OutcomeRepositoryInterface = (*OutcomeRepository)(nil)
