// internal/service/campaign_service.go
package service

import (
    "context"
    "fmt"
    "io"
    "log"
    "strings"
    "time"

    "github.com/unclebandit/mailmerge-backend/internal/dispatch"
    appErrors "github.com/unclebandit/mailmerge-backend/internal/errors"
    "github.com/unclebandit/mailmerge-backend/internal/ingest"
    "github.com/unclebandit/mailmerge-backend/internal/mail"
    "github.com/unclebandit/mailmerge-backend/internal/merge"
    "github.com/unclebandit/mailmerge-backend/internal/model"
    "github.com/unclebandit/mailmerge-backend/internal/queue"
    "github.com/unclebandit/mailmerge-backend/internal/repository"
)

type CampaignService struct {
    CampaignRepo  repository.CampaignRepositoryInterface
    RecipientRepo repository.RecipientRepositoryInterface
    OutcomeRepo   repository.OutcomeRepositoryInterface
    Queue         queue.Queue

    // Transport and OperatorEmail come from the authentication provider at
    // process start. Without them a dispatch run cannot begin.
    Transport     mail.Transport
    OperatorEmail string

    // OnProgress, when set, observes each row before its send attempt.
    OnProgress dispatch.ProgressFunc
}

// CreateCampaignInput mirrors the API payload for creating a campaign.
type CreateCampaignInput struct {
    Name             string
    SenderName       string
    Subject          string
    Body             string
    IsHTML           bool
    Mode             string
    TestMode         bool
    SendDelaySeconds int
}

// DispatchRequestResult reports what the dispatch endpoint queued.
type DispatchRequestResult struct {
    CampaignID int    `json:"campaign_id"`
    Recipients int    `json:"recipients"`
    Status     string `json:"status"`
}

type CampaignDetails struct {
    ID               int            `json:"id"`
    Name             string         `json:"name"`
    SenderName       string         `json:"sender_name,omitempty"`
    Subject          string         `json:"subject"`
    Body             string         `json:"body"`
    IsHTML           bool           `json:"is_html"`
    Mode             string         `json:"mode"`
    TestMode         bool           `json:"test_mode"`
    SendDelaySeconds int            `json:"send_delay_seconds"`
    Status           string         `json:"status"`
    CreatedAt        time.Time      `json:"created_at"`
    UpdatedAt        *time.Time     `json:"updated_at,omitempty"`
    RecipientCount   int            `json:"recipient_count"`
    Stats            map[string]int `json:"stats"`
}

func (s *CampaignService) CreateCampaign(in CreateCampaignInput) (*model.Campaign, error) {
    if strings.TrimSpace(in.Subject) == "" && strings.TrimSpace(in.Body) == "" {
        return nil, fmt.Errorf("campaign needs a subject or a body")
    }
    mode := in.Mode
    if mode == "" {
        mode = model.ModeStatic
    }
    if mode != model.ModeStatic && mode != model.ModePersonalized {
        return nil, fmt.Errorf("unknown campaign mode: %s", mode)
    }
    if in.SendDelaySeconds < 0 {
        return nil, fmt.Errorf("send delay cannot be negative")
    }

    c := &model.Campaign{
        Name:             in.Name,
        SenderName:       in.SenderName,
        Subject:          in.Subject,
        Body:             in.Body,
        IsHTML:           in.IsHTML,
        Mode:             mode,
        TestMode:         in.TestMode,
        SendDelaySeconds: in.SendDelaySeconds,
        Status:           model.StatusDraft,
    }

    if err := s.CampaignRepo.Create(c); err != nil {
        return nil, err
    }

    return c, nil
}

// UploadRecipients replaces the campaign's recipient table with a parsed CSV
// upload and reports the field names usable as placeholders.
func (s *CampaignService) UploadRecipients(campaignID int, file io.Reader) (int, []string, error) {
    campaign, err := s.CampaignRepo.GetByID(campaignID)
    if err != nil {
        return 0, nil, err
    }

    rows, fields, err := ingest.ParseCSV(file)
    if err != nil {
        return 0, nil, err
    }

    // Placeholders the template expects but the upload does not provide stay
    // unresolved in every message; worth flagging at upload time.
    available := map[string]bool{}
    for _, f := range fields {
        available[f] = true
    }
    for _, f := range merge.Fields(campaign.Subject + " " + campaign.Body) {
        if !available[f] {
            log.Printf("Campaign %d template references field %q missing from the upload", campaignID, f)
        }
    }

    if err := s.RecipientRepo.ReplaceForCampaign(campaignID, rows); err != nil {
        return 0, nil, err
    }

    return len(rows), fields, nil
}

// RenderPreview resolves the campaign's subject and body against one row,
// without sending anything.
func (s *CampaignService) RenderPreview(campaignID, rowIndex int) (subject, body string, err error) {
    campaign, err := s.CampaignRepo.GetByID(campaignID)
    if err != nil {
        return "", "", err
    }

    rows, err := s.RecipientRepo.ListByCampaign(campaignID)
    if err != nil {
        return "", "", err
    }
    if rowIndex < 0 || rowIndex >= len(rows) {
        return "", "", fmt.Errorf("row index %d out of range (%d recipients)", rowIndex, len(rows))
    }

    row := rows[rowIndex]
    return merge.Resolve(campaign.Subject, row), merge.Resolve(campaign.Body, row), nil
}

// DispatchCampaign queues a dispatch job. The actual run happens in a
// subscriber or the worker binary.
func (s *CampaignService) DispatchCampaign(campaignID int) (*DispatchRequestResult, error) {
    campaign, err := s.CampaignRepo.GetByID(campaignID)
    if err != nil {
        return nil, err
    }
    if campaign.Status == model.StatusDispatching {
        return nil, fmt.Errorf("campaign %d is already dispatching", campaignID)
    }

    count, err := s.RecipientRepo.CountByCampaign(campaignID)
    if err != nil {
        return nil, err
    }
    if count == 0 {
        return nil, fmt.Errorf("campaign %d has no recipients", campaignID)
    }

    if err := s.CampaignRepo.UpdateStatus(campaignID, model.StatusDispatching); err != nil {
        return nil, err
    }

    if err := s.Queue.Publish(queue.TopicCampaignDispatch, campaignID); err != nil {
        return nil, err
    }

    return &DispatchRequestResult{
        CampaignID: campaignID,
        Recipients: count,
        Status:     model.StatusDispatching,
    }, nil
}

// RunDispatch executes the campaign's dispatch loop and persists the ledger.
// The ledger is persisted and returned even when the run aborts early, so a
// partial run stays auditable.
func (s *CampaignService) RunDispatch(ctx context.Context, campaignID int) (*dispatch.Ledger, error) {
    if s.Transport == nil || s.OperatorEmail == "" {
        return nil, appErrors.NewAuthentication(fmt.Errorf("no authenticated transport available"))
    }

    campaign, err := s.CampaignRepo.GetByID(campaignID)
    if err != nil {
        return nil, err
    }

    rows, err := s.RecipientRepo.ListByCampaign(campaignID)
    if err != nil {
        return nil, err
    }

    onProgress := s.OnProgress
    if onProgress == nil {
        onProgress = func(index, total int, target string) {
            log.Printf("Sending %d/%d to %s (campaign %d)", index+1, total, target, campaignID)
        }
    }

    loop := &dispatch.Loop{
        Transport:     s.Transport,
        OperatorEmail: s.OperatorEmail,
        OnProgress:    onProgress,
    }

    ledger, runErr := loop.Run(ctx, campaign, rows)

    if err := s.OutcomeRepo.InsertRun(ledger.Outcomes()); err != nil {
        log.Println("Failed to persist dispatch outcomes:", err)
    }

    status := model.StatusCompleted
    if !ledger.Completed() {
        status = model.StatusIncomplete
    }
    if err := s.CampaignRepo.UpdateStatus(campaignID, status); err != nil {
        log.Println("Failed to update campaign status:", err)
    }

    success, failed := ledger.Summary()
    log.Printf("Campaign %d run %s: %d succeeded, %d failed, completed=%v",
        campaignID, ledger.RunID(), success, failed, ledger.Completed())

    return ledger, runErr
}

// ExportResults writes the latest run's ledger as CSV.
func (s *CampaignService) ExportResults(campaignID int, w io.Writer) error {
    outcomes, err := s.OutcomeRepo.ListLatestRun(campaignID)
    if err != nil {
        return err
    }
    return dispatch.WriteCSV(w, outcomes)
}

// ListCampaigns fetches campaigns with pagination
func (s *CampaignService) ListCampaigns(page, pageSize int, mode, status string) ([]model.Campaign, map[string]int, error) {
    if page < 1 {
        page = 1
    }
    if pageSize < 1 {
        pageSize = 20
    }
    if pageSize > 100 {
        pageSize = 100
    }
    offset := (page - 1) * pageSize

    ptrs, total, err := s.CampaignRepo.ListCampaigns(offset, pageSize, mode, status)
    if err != nil {
        return nil, nil, err
    }

    campaigns := make([]model.Campaign, len(ptrs))
    for i, c := range ptrs {
        campaigns[i] = *c
    }

    totalPages := (total + pageSize - 1) / pageSize
    pagination := map[string]int{
        "page":        page,
        "page_size":   pageSize,
        "total_count": total,
        "total_pages": totalPages,
    }

    return campaigns, pagination, nil
}

func (s *CampaignService) GetCampaignDetailsWithStats(campaignID int) (*CampaignDetails, error) {
    campaign, err := s.CampaignRepo.GetByID(campaignID)
    if err != nil {
        return nil, err
    }

    stats, err := s.CampaignRepo.GetCampaignStats(campaignID)
    if err != nil {
        return nil, err
    }

    count, err := s.RecipientRepo.CountByCampaign(campaignID)
    if err != nil {
        return nil, err
    }

    return &CampaignDetails{
        ID:               campaign.ID,
        Name:             campaign.Name,
        SenderName:       campaign.SenderName,
        Subject:          campaign.Subject,
        Body:             campaign.Body,
        IsHTML:           campaign.IsHTML,
        Mode:             campaign.Mode,
        TestMode:         campaign.TestMode,
        SendDelaySeconds: campaign.SendDelaySeconds,
        Status:           campaign.Status,
        CreatedAt:        campaign.CreatedAt,
        UpdatedAt:        campaign.UpdatedAt,
        RecipientCount:   count,
        Stats:            stats,
    }, nil
}
