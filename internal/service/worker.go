package service

import (
	"context"
	"log"

	"github.com/unclebandit/mailmerge-backend/internal/dispatch"
)

// DispatchRunner is the slice of CampaignService the worker needs
type DispatchRunner interface {
	RunDispatch(ctx context.Context, campaignID int) (*dispatch.Ledger, error)
}

// Worker drains campaign dispatch jobs from a channel, one campaign at a
// time. Rows within a campaign stay strictly sequential inside RunDispatch.
type Worker struct {
	Runner  DispatchRunner
	JobChan <-chan int
}

// Constructor
func NewWorker(runner DispatchRunner, jobChan <-chan int) *Worker {
	return &Worker{
		Runner:  runner,
		JobChan: jobChan,
	}
}

// Start begins processing jobs
func (w *Worker) Start(ctx context.Context) {
	for campaignID := range w.JobChan {
		ledger, err := w.Runner.RunDispatch(ctx, campaignID)
		if err != nil {
			log.Println("Dispatch run did not complete:", err)
		}
		if ledger != nil {
			success, failed := ledger.Summary()
			log.Printf("Campaign %d: %d succeeded, %d failed", campaignID, success, failed)
		}
	}
}
