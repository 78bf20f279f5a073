// internal/controller/campaign_controller.go
package controller

import (
    "bytes"
    "encoding/json"
    "net/http"
    "strconv"

    "github.com/unclebandit/mailmerge-backend/internal/service"

    "github.com/go-chi/chi/v5"
)

type CampaignController struct {
    CampaignService *service.CampaignService
}

func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
    var body struct {
        Name             string `json:"name"`
        SenderName       string `json:"sender_name"`
        Subject          string `json:"subject"`
        Body             string `json:"body"`
        IsHTML           bool   `json:"is_html"`
        Mode             string `json:"mode"`
        TestMode         bool   `json:"test_mode"`
        SendDelaySeconds int    `json:"send_delay_seconds"`
    }
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        http.Error(w, "invalid body", http.StatusBadRequest)
        return
    }

    campaign, err := c.CampaignService.CreateCampaign(service.CreateCampaignInput{
        Name:             body.Name,
        SenderName:       body.SenderName,
        Subject:          body.Subject,
        Body:             body.Body,
        IsHTML:           body.IsHTML,
        Mode:             body.Mode,
        TestMode:         body.TestMode,
        SendDelaySeconds: body.SendDelaySeconds,
    })
    if err != nil {
        http.Error(w, err.Error(), http.StatusInternalServerError)
        return
    }

    json.NewEncoder(w).Encode(campaign)
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
    // Parse query parameters
    page, _ := strconv.Atoi(r.URL.Query().Get("page"))
    pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
    mode := r.URL.Query().Get("mode")
    status := r.URL.Query().Get("status")

    // Default values if missing
    if page < 1 {
        page = 1
    }
    if pageSize < 1 {
        pageSize = 20
    }

    campaigns, pagination, err := c.CampaignService.ListCampaigns(page, pageSize, mode, status)
    if err != nil {
        http.Error(w, err.Error(), http.StatusInternalServerError)
        return
    }

    json.NewEncoder(w).Encode(map[string]interface{}{
        "data":       campaigns,
        "pagination": pagination, // total_count, total_pages, page, page_size
    })
}

// UploadRecipients ingests a CSV recipient table for the campaign and
// reports the field names usable as {{placeholders}}.
func (c *CampaignController) UploadRecipients(w http.ResponseWriter, r *http.Request) {
    idStr := chi.URLParam(r, "id")
    id, _ := strconv.Atoi(idStr)

    file, _, err := r.FormFile("file")
    if err != nil {
        http.Error(w, "missing file upload", http.StatusBadRequest)
        return
    }
    defer file.Close()

    count, fields, err := c.CampaignService.UploadRecipients(id, file)
    if err != nil {
        http.Error(w, err.Error(), http.StatusBadRequest)
        return
    }

    json.NewEncoder(w).Encode(map[string]interface{}{
        "campaign_id":      id,
        "recipients":       count,
        "available_fields": fields,
    })
}

func (c *CampaignController) PersonalizedPreview(w http.ResponseWriter, r *http.Request) {
    campaignIDStr := chi.URLParam(r, "id")
    campaignID, _ := strconv.Atoi(campaignIDStr)

    var body struct {
        RowIndex int `json:"row_index"`
    }
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        http.Error(w, "invalid body", http.StatusBadRequest)
        return
    }

    subject, content, err := c.CampaignService.RenderPreview(campaignID, body.RowIndex)
    if err != nil {
        http.Error(w, err.Error(), http.StatusInternalServerError)
        return
    }

    json.NewEncoder(w).Encode(map[string]interface{}{
        "subject":   subject,
        "body":      content,
        "row_index": body.RowIndex,
    })
}

func (c *CampaignController) DispatchCampaign(w http.ResponseWriter, r *http.Request) {
    idStr := chi.URLParam(r, "id")
    id, _ := strconv.Atoi(idStr)

    result, err := c.CampaignService.DispatchCampaign(id)
    if err != nil {
        http.Error(w, err.Error(), http.StatusInternalServerError)
        return
    }

    json.NewEncoder(w).Encode(result)
}

// ExportResults streams the latest run's ledger as a downloadable CSV.
func (c *CampaignController) ExportResults(w http.ResponseWriter, r *http.Request) {
    idStr := chi.URLParam(r, "id")
    id, _ := strconv.Atoi(idStr)

    var buf bytes.Buffer
    if err := c.CampaignService.ExportResults(id, &buf); err != nil {
        http.Error(w, err.Error(), http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "text/csv")
    w.Header().Set("Content-Disposition", `attachment; filename="email_results.csv"`)
    w.Write(buf.Bytes())
}
