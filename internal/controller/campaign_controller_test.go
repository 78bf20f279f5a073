package controller_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/unclebandit/mailmerge-backend/internal/controller"
	appErrors "github.com/unclebandit/mailmerge-backend/internal/errors"
	"github.com/unclebandit/mailmerge-backend/internal/model"
	"github.com/unclebandit/mailmerge-backend/internal/service"
)

// --- Mock Repositories ---

type MockCampaignRepo struct {
	campaigns []*model.Campaign
}

func (m *MockCampaignRepo) GetByID(id int) (*model.Campaign, error) {
	for _, c := range m.campaigns {
		if c.ID == id {
			return c, nil
		}
	}
	if len(m.campaigns) > 0 {
		return m.campaigns[0], nil
	}
	return nil, appErrors.NewCampaignNotFound(id)
}

func (m *MockCampaignRepo) Create(c *model.Campaign) error {
	c.ID = len(m.campaigns) + 1
	c.CreatedAt = time.Now()
	m.campaigns = append(m.campaigns, c)
	return nil
}

func (m *MockCampaignRepo) Update(c *model.Campaign) error          { return nil }
func (m *MockCampaignRepo) UpdateStatus(id int, status string) error { return nil }

func (m *MockCampaignRepo) ListCampaigns(offset, limit int, mode, status string) ([]*model.Campaign, int, error) {
	var filtered []*model.Campaign
	for _, c := range m.campaigns {
		if mode != "" && c.Mode != mode {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		filtered = append(filtered, c)
	}
	total := len(filtered)

	start := offset
	end := offset + limit
	if start > total {
		return []*model.Campaign{}, total, nil
	}
	if end > total {
		end = total
	}
	return filtered[start:end], total, nil
}

func (m *MockCampaignRepo) GetCampaignStats(campaignID int) (map[string]int, error) {
	return map[string]int{"total": 0, "success": 0, "failed": 0}, nil
}

type MockRecipientRepo struct {
	rows []model.Row
}

func (m *MockRecipientRepo) ReplaceForCampaign(campaignID int, rows []model.Row) error {
	m.rows = rows
	return nil
}

func (m *MockRecipientRepo) ListByCampaign(campaignID int) ([]model.Row, error) {
	return m.rows, nil
}

func (m *MockRecipientRepo) CountByCampaign(campaignID int) (int, error) {
	return len(m.rows), nil
}

type MockOutcomeRepo struct {
	outcomes []model.DispatchOutcome
}

func (m *MockOutcomeRepo) InsertRun(outcomes []model.DispatchOutcome) error {
	m.outcomes = append(m.outcomes, outcomes...)
	return nil
}

func (m *MockOutcomeRepo) ListLatestRun(campaignID int) ([]model.DispatchOutcome, error) {
	return m.outcomes, nil
}

// --- Tests ---

func TestPersonalizedPreviewHandler(t *testing.T) {
	svc := &service.CampaignService{
		CampaignRepo: &MockCampaignRepo{campaigns: []*model.Campaign{{
			ID:      1,
			Subject: "Hi {{name}}",
			Body:    "Check out {{preferred_product}} in {{location}}!",
			Mode:    model.ModePersonalized,
		}}},
		RecipientRepo: &MockRecipientRepo{rows: []model.Row{
			{"email": "alice@example.com", "name": "Alice", "location": "Nairobi", "preferred_product": "Shoes"},
		}},
	}

	ctrl := &controller.CampaignController{
		CampaignService: svc,
	}

	body := map[string]interface{}{"row_index": 0}
	b, _ := json.Marshal(body)

	req := httptest.NewRequest("POST", "/campaigns/1/preview", bytes.NewReader(b))
	w := httptest.NewRecorder()

	ctrl.PersonalizedPreview(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var res map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	subject, ok := res["subject"].(string)
	if !ok {
		t.Fatalf("subject not found or not a string")
	}
	if subject != "Hi Alice" {
		t.Errorf("expected personalized subject, got %q", subject)
	}

	renderedBody, _ := res["body"].(string)
	if !strings.Contains(renderedBody, "Shoes") || !strings.Contains(renderedBody, "Nairobi") {
		t.Errorf("expected personalized body, got %q", renderedBody)
	}
}

func TestListCampaignsPagination(t *testing.T) {
	totalCampaigns := 25
	campaigns := []*model.Campaign{}
	for i := 1; i <= totalCampaigns; i++ {
		campaigns = append(campaigns, &model.Campaign{
			ID:     i,
			Name:   "Campaign " + strconv.Itoa(i),
			Mode:   model.ModeStatic,
			Status: model.StatusDraft,
		})
	}

	repo := &MockCampaignRepo{campaigns: campaigns}
	svc := &service.CampaignService{CampaignRepo: repo}
	ctrl := &controller.CampaignController{CampaignService: svc}

	pageSize := 10
	seen := map[int]bool{}

	totalPages := (totalCampaigns + pageSize - 1) / pageSize

	for page := 1; page <= totalPages; page++ {
		req := httptest.NewRequest(
			"GET",
			"/campaigns?page="+strconv.Itoa(page)+
				"&page_size="+strconv.Itoa(pageSize)+
				"&mode=static&status=draft",
			nil,
		)
		w := httptest.NewRecorder()

		ctrl.ListCampaigns(w, req)
		resp := w.Result()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		var res struct {
			Data       []model.Campaign `json:"data"`
			Pagination struct {
				Page       int `json:"page"`
				PageSize   int `json:"page_size"`
				TotalCount int `json:"total_count"`
			} `json:"pagination"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if res.Pagination.Page != page {
			t.Errorf("expected page %d, got %d", page, res.Pagination.Page)
		}
		if res.Pagination.PageSize != pageSize {
			t.Errorf("expected page size %d, got %d", pageSize, res.Pagination.PageSize)
		}
		if res.Pagination.TotalCount != totalCampaigns {
			t.Errorf("expected total count %d, got %d", totalCampaigns, res.Pagination.TotalCount)
		}

		for _, c := range res.Data {
			if seen[c.ID] {
				t.Errorf("duplicate campaign ID %d across pages", c.ID)
			}
			seen[c.ID] = true

			if c.Mode != model.ModeStatic {
				t.Errorf("expected mode static, got %s", c.Mode)
			}
			if c.Status != model.StatusDraft {
				t.Errorf("expected status draft, got %s", c.Status)
			}
		}
	}

	if len(seen) != totalCampaigns {
		t.Errorf("expected %d unique campaigns, got %d", totalCampaigns, len(seen))
	}
}

func TestExportResultsHandler(t *testing.T) {
	svc := &service.CampaignService{
		OutcomeRepo: &MockOutcomeRepo{outcomes: []model.DispatchOutcome{
			{RowIndex: 0, Recipient: "a@x.com", Status: model.OutcomeSuccess, MessageID: "m1", Timestamp: time.Now()},
			{RowIndex: 1, Recipient: "bad", Status: model.OutcomeFailed, ErrorDetail: "Invalid email address", Timestamp: time.Now()},
		}},
	}
	ctrl := &controller.CampaignController{CampaignService: svc}

	req := httptest.NewRequest("GET", "/campaigns/1/results.csv", nil)
	w := httptest.NewRecorder()

	ctrl.ExportResults(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Disposition"); !strings.Contains(got, "email_results.csv") {
		t.Errorf("unexpected content disposition %q", got)
	}

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 records, got %d lines", len(lines))
	}
	if lines[0] != "recipient,status,message_id,error,timestamp" {
		t.Errorf("unexpected header %q", lines[0])
	}
}
