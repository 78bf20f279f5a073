package queue

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/unclebandit/mailmerge-backend/internal/dispatch"
)

// TopicCampaignDispatch carries campaign IDs whose rows are ready to send.
const TopicCampaignDispatch = "campaign_dispatch"

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue is an in-process queue with retry, used when no broker is
// configured.
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(payload any) error
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		handlers: make(map[string][]func(payload any) error),
	}
}

// JobPayload wraps a message payload with retry info
type JobPayload struct {
	Payload    any
	RetryCount int
	MaxRetries int
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	job := JobPayload{
		Payload:    payload,
		RetryCount: 0,
		MaxRetries: 3,
	}

	for _, handler := range handlers {
		go q.processJob(handler, job)
	}

	return nil
}

// processJob handles retries and errors
func (q *InMemoryQueue) processJob(handler func(payload any) error, job JobPayload) {
	for job.RetryCount <= job.MaxRetries {
		err := handler(job.Payload)
		if err == nil {
			return // ACK
		}

		job.RetryCount++
		log.Printf("Job failed (attempt %d/%d): %+v, error: %v\n", job.RetryCount, job.MaxRetries, job.Payload, err)

		if job.RetryCount > job.MaxRetries {
			log.Printf("Job permanently failed after %d attempts: %+v\n", job.MaxRetries, job.Payload)
			return // No requeue
		}

		// Exponential backoff before retry
		time.Sleep(time.Duration(job.RetryCount*500) * time.Millisecond)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// DispatchRunner is implemented by the campaign service
type DispatchRunner interface {
	RunDispatch(ctx context.Context, campaignID int) (*dispatch.Ledger, error)
}

// StartCampaignDispatchSubscriber wires dispatch jobs to the runner. The
// handler always acks: every row already gets exactly one send attempt
// inside the run, so requeueing a failed campaign would mean duplicate
// sends.
func StartCampaignDispatchSubscriber(ctx context.Context, q Queue, runner DispatchRunner) {
	go func() {
		err := q.Subscribe(TopicCampaignDispatch, func(payload any) error {
			campaignID, ok := payload.(int)
			if !ok {
				log.Println("Invalid dispatch payload, expected campaign ID")
				return nil
			}

			log.Println("Processing dispatch job for campaign:", campaignID)

			ledger, err := runner.RunDispatch(ctx, campaignID)
			if err != nil {
				log.Println("Dispatch run did not complete:", err)
				return nil // no requeue
			}

			success, failed := ledger.Summary()
			log.Printf("Campaign %d dispatched: %d succeeded, %d failed", campaignID, success, failed)
			return nil
		})

		if err != nil {
			log.Println("Failed to start subscriber for", TopicCampaignDispatch, ":", err)
		}
	}()
}
