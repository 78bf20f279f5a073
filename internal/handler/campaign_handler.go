// internal/handler/campaign_handler.go
package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/unclebandit/mailmerge-backend/internal/repository"
	"github.com/unclebandit/mailmerge-backend/internal/service"
)

// CampaignHandler holds the dependencies for campaign-related HTTP handlers
type CampaignHandler struct {
	Repo    *repository.CampaignRepository
	Service *service.CampaignService
}

// NewCampaignHandler creates a new CampaignHandler with the given repository
func NewCampaignHandler(repo *repository.CampaignRepository) *CampaignHandler {
	return &CampaignHandler{
		Repo: repo,
	}
}

// GetCampaignHandlerWithStats returns a single campaign plus per-status
// outcome counts and its recipient count.
func (h *CampaignHandler) GetCampaignHandlerWithStats(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	details, err := h.Service.GetCampaignDetailsWithStats(id)
	if err != nil {
		log.Println("Error fetching campaign:", err)
		http.Error(w, "failed to fetch campaign: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(details)
}
