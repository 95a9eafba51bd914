package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/EO-DataHub/eodhp-user-sync/models"
	"github.com/apache/pulsar-client-go/pulsar"
)

const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// UserSyncEvent is published after every roster synchronisation run.
type UserSyncEvent struct {
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
	Created      int    `json:"created"`
	Updated      int    `json:"updated"`
	Skipped      int    `json:"skipped"`
	LinksCreated int    `json:"linksCreated"`
	Timestamp    int64  `json:"timestamp"`
}

// NewUserSyncEvent builds the event for a finished run.
func NewUserSyncEvent(report *models.SyncReport, syncErr error, at time.Time) UserSyncEvent {
	event := UserSyncEvent{
		Status:    StatusSucceeded,
		Timestamp: at.Unix(),
	}
	if syncErr != nil {
		event.Status = StatusFailed
		event.Error = syncErr.Error()
	}
	if report != nil {
		event.Created = report.Created
		event.Updated = report.Updated
		event.Skipped = report.Skipped
		event.LinksCreated = report.LinksCreated
	}
	return event
}

type EventPublisher struct {
	client   pulsar.Client
	producer pulsar.Producer
}

// NewEventPublisher initializes the Pulsar client and producer.
func NewEventPublisher(pulsarURL, topic string) (*EventPublisher, error) {
	client, err := pulsar.NewClient(pulsar.ClientOptions{
		URL: pulsarURL,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create Pulsar client: %w", err)
	}

	producer, err := client.CreateProducer(pulsar.ProducerOptions{
		Topic: topic,
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("could not create Pulsar producer: %w", err)
	}

	return &EventPublisher{
		client:   client,
		producer: producer,
	}, nil
}

// Notify publishes a sync event to Pulsar
func (p *EventPublisher) Notify(event UserSyncEvent) error {
	// Serialize the payload as JSON
	message, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("could not serialize event payload: %w", err)
	}

	_, err = p.producer.Send(context.Background(), &pulsar.ProducerMessage{
		Payload: message,
	})
	if err != nil {
		return fmt.Errorf("could not send event to Pulsar: %w", err)
	}

	return nil
}

// Close closes the Pulsar client and producer
func (p *EventPublisher) Close() {
	p.producer.Close()
	p.client.Close()
}
