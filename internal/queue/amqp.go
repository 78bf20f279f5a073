package queue

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/streadway/amqp"
)

type dispatchJob struct {
	CampaignID int `json:"campaign_id"`
}

// AmqpQueue is the RabbitMQ-backed Queue, used when RABBITMQ_URL is set so
// the worker binary can run dispatches out of process.
type AmqpQueue struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAmqpQueue(url string) (*AmqpQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	return &AmqpQueue{conn: conn, ch: ch}, nil
}

func (q *AmqpQueue) Close() {
	q.ch.Close()
	q.conn.Close()
}

// Publish enqueues a campaign ID on a durable queue named after the topic.
func (q *AmqpQueue) Publish(topic string, payload any) error {
	campaignID, ok := payload.(int)
	if !ok {
		return fmt.Errorf("expected campaign ID payload, got %T", payload)
	}

	declared, err := q.ch.QueueDeclare(
		topic,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	body, _ := json.Marshal(dispatchJob{CampaignID: campaignID})
	return q.ch.Publish(
		"",
		declared.Name,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// Subscribe consumes the topic's queue and feeds campaign IDs to the
// handler. Messages are acked after the handler runs; a dispatch run is
// never requeued, since its rows already got their single send attempt.
func (q *AmqpQueue) Subscribe(topic string, handler func(payload any) error) error {
	declared, err := q.ch.QueueDeclare(
		topic,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	msgs, err := q.ch.Consume(
		declared.Name,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for d := range msgs {
			var job dispatchJob
			if err := json.Unmarshal(d.Body, &job); err != nil {
				log.Println("Invalid job:", err)
				d.Ack(false)
				continue
			}

			if err := handler(job.CampaignID); err != nil {
				log.Println("Dispatch job handler failed:", err)
			}
			d.Ack(false)
		}
	}()

	return nil
}

var _ Queue = (*AmqpQueue)(nil)
var _ Queue = (*InMemoryQueue)(nil)
