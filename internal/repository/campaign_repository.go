package repository

import (
    "database/sql"
    "fmt"
    "time"

    appErrors "github.com/unclebandit/mailmerge-backend/internal/errors"
    "github.com/unclebandit/mailmerge-backend/internal/model"
)

type CampaignRepositoryInterface interface {
    Create(c *model.Campaign) error
    Update(c *model.Campaign) error
    UpdateStatus(campaignID int, status string) error
    GetByID(id int) (*model.Campaign, error)
    ListCampaigns(offset, limit int, mode, status string) ([]*model.Campaign, int, error)
    GetCampaignStats(campaignID int) (map[string]int, error)
}

type CampaignRepository struct {
    DB *sql.DB
}

// ====================== Campaign CRUD ======================

func (r *CampaignRepository) Create(c *model.Campaign) error {
    c.CreatedAt = time.Now()
    if c.Status == "" {
        c.Status = model.StatusDraft
    }
    if c.Mode == "" {
        c.Mode = model.ModeStatic
    }
    query := `
        INSERT INTO campaigns (name, sender_name, subject, body, is_html, mode, test_mode, send_delay_seconds, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id
    `
    return r.DB.QueryRow(query,
        c.Name, c.SenderName, c.Subject, c.Body, c.IsHTML,
        c.Mode, c.TestMode, c.SendDelaySeconds, c.Status, c.CreatedAt,
    ).Scan(&c.ID)
}

func (r *CampaignRepository) Update(c *model.Campaign) error {
    query := `
        UPDATE campaigns
        SET name=$1, sender_name=$2, subject=$3, body=$4, is_html=$5, mode=$6, test_mode=$7, send_delay_seconds=$8, status=$9, updated_at=NOW()
        WHERE id=$10
    `
    _, err := r.DB.Exec(query,
        c.Name, c.SenderName, c.Subject, c.Body, c.IsHTML,
        c.Mode, c.TestMode, c.SendDelaySeconds, c.Status, c.ID,
    )
    return err
}

func (r *CampaignRepository) UpdateStatus(campaignID int, status string) error {
    query := `UPDATE campaigns SET status=$1, updated_at=$2 WHERE id=$3`
    _, err := r.DB.Exec(query, status, time.Now(), campaignID)
    return err
}

func (r *CampaignRepository) GetByID(id int) (*model.Campaign, error) {
    query := `
        SELECT id, name, sender_name, subject, body, is_html, mode, test_mode, send_delay_seconds, status, created_at, updated_at
        FROM campaigns WHERE id=$1
    `
    var c model.Campaign
    err := r.DB.QueryRow(query, id).Scan(
        &c.ID, &c.Name, &c.SenderName, &c.Subject, &c.Body, &c.IsHTML,
        &c.Mode, &c.TestMode, &c.SendDelaySeconds, &c.Status, &c.CreatedAt, &c.UpdatedAt,
    )
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, appErrors.NewCampaignNotFound(id)
        }
        return nil, err
    }
    return &c, nil
}

func (r *CampaignRepository) ListCampaigns(offset, limit int, mode, status string) ([]*model.Campaign, int, error) {
    campaigns := []*model.Campaign{}
    query := `SELECT id, name, sender_name, subject, body, is_html, mode, test_mode, send_delay_seconds, status, created_at, updated_at FROM campaigns WHERE 1=1`
    args := []interface{}{}
    argPos := 1

    if mode != "" {
        query += fmt.Sprintf(" AND mode=$%d", argPos)
        args = append(args, mode)
        argPos++
    }
    if status != "" {
        query += fmt.Sprintf(" AND status=$%d", argPos)
        args = append(args, status)
        argPos++
    }

    query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
    args = append(args, limit, offset)

    rows, err := r.DB.Query(query, args...)
    if err != nil {
        return nil, 0, err
    }
    defer rows.Close()

    for rows.Next() {
        c := &model.Campaign{}
        if err := rows.Scan(
            &c.ID, &c.Name, &c.SenderName, &c.Subject, &c.Body, &c.IsHTML,
            &c.Mode, &c.TestMode, &c.SendDelaySeconds, &c.Status, &c.CreatedAt, &c.UpdatedAt,
        ); err != nil {
            return nil, 0, err
        }
        campaigns = append(campaigns, c)
    }

    // Count total
    countQuery := `SELECT COUNT(*) FROM campaigns WHERE 1=1`
    argsCount := []interface{}{}
    argPosCount := 1
    if mode != "" {
        countQuery += fmt.Sprintf(" AND mode=$%d", argPosCount)
        argsCount = append(argsCount, mode)
        argPosCount++
    }
    if status != "" {
        countQuery += fmt.Sprintf(" AND status=$%d", argPosCount)
        argsCount = append(argsCount, status)
    }

    var total int
    if err := r.DB.QueryRow(countQuery, argsCount...).Scan(&total); err != nil {
        return nil, 0, err
    }

    return campaigns, total, nil
}

// GetCampaignStats counts dispatch outcomes by status across the campaign.
func (r *CampaignRepository) GetCampaignStats(campaignID int) (map[string]int, error) {
    query := `SELECT status, COUNT(*) FROM dispatch_outcomes WHERE campaign_id=$1 GROUP BY status`
    rows, err := r.DB.Query(query, campaignID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    stats := map[string]int{"total": 0, "success": 0, "failed": 0}
    for rows.Next() {
        var status string
        var count int
        if err := rows.Scan(&status, &count); err != nil {
            return nil, err
        }
        switch status {
        case model.OutcomeSuccess:
            stats["success"] = count
        case model.OutcomeFailed:
            stats["failed"] = count
        }
        stats["total"] += count
    }
    return stats, nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
