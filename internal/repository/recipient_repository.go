package repository

import (
    "database/sql"
    "encoding/json"
    "fmt"

    "github.com/unclebandit/mailmerge-backend/internal/model"
)

// RecipientRepositoryInterface defines methods used by the service
type RecipientRepositoryInterface interface {
    ReplaceForCampaign(campaignID int, rows []model.Row) error
    ListByCampaign(campaignID int) ([]model.Row, error)
    CountByCampaign(campaignID int) (int, error)
}

// RecipientRepository is the concrete implementation. Row field maps are
// stored as JSONB so arbitrary table columns survive round-tripping.
type RecipientRepository struct {
    DB *sql.DB
}

// ReplaceForCampaign swaps the campaign's recipient table for a freshly
// uploaded one. Row order is preserved through row_index.
func (r *RecipientRepository) ReplaceForCampaign(campaignID int, rows []model.Row) error {
    tx, err := r.DB.Begin()
    if err != nil {
        return err
    }
    defer tx.Rollback()

    if _, err := tx.Exec(`DELETE FROM recipients WHERE campaign_id=$1`, campaignID); err != nil {
        return err
    }

    query := `INSERT INTO recipients (campaign_id, row_index, fields) VALUES ($1, $2, $3)`
    for i, row := range rows {
        fields, err := json.Marshal(row)
        if err != nil {
            return fmt.Errorf("failed to encode row %d: %w", i, err)
        }
        if _, err := tx.Exec(query, campaignID, i, fields); err != nil {
            return err
        }
    }

    return tx.Commit()
}

// ListByCampaign fetches the campaign's rows in upload order.
func (r *RecipientRepository) ListByCampaign(campaignID int) ([]model.Row, error) {
    query := `SELECT fields FROM recipients WHERE campaign_id=$1 ORDER BY row_index`
    rows, err := r.DB.Query(query, campaignID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    result := []model.Row{}
    for rows.Next() {
        var fields []byte
        if err := rows.Scan(&fields); err != nil {
            return nil, err
        }
        var row model.Row
        if err := json.Unmarshal(fields, &row); err != nil {
            return nil, err
        }
        result = append(result, row)
    }
    return result, rows.Err()
}

func (r *RecipientRepository) CountByCampaign(campaignID int) (int, error) {
    var count int
    err := r.DB.QueryRow(`SELECT COUNT(*) FROM recipients WHERE campaign_id=$1`, campaignID).Scan(&count)
    return count, err
}

var _ RecipientRepositoryInterface = (*RecipientRepository)(nil)
