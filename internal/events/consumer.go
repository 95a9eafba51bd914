package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/rs/zerolog"
)

// SyncRequest asks for a roster synchronisation run.
type SyncRequest struct {
	RequestedBy string `json:"requestedBy"`
}

// SyncRequestHandler processes one sync request.
type SyncRequestHandler func(ctx context.Context, req SyncRequest) error

type EventConsumer struct {
	client   pulsar.Client
	consumer pulsar.Consumer
	log      *zerolog.Logger
}

// NewEventConsumer initializes the Pulsar client and consumer.
func NewEventConsumer(pulsarURL, topic, subscription string, log *zerolog.Logger) (*EventConsumer, error) {
	client, err := pulsar.NewClient(pulsar.ClientOptions{URL: pulsarURL})
	if err != nil {
		return nil, fmt.Errorf("could not create Pulsar client: %w", err)
	}

	consumer, err := client.Subscribe(pulsar.ConsumerOptions{
		Topic:            topic,
		SubscriptionName: subscription,
		Type:             pulsar.Shared,
		DLQ: &pulsar.DLQPolicy{
			MaxDeliveries:   3,
			DeadLetterTopic: topic + "-dlq",
		},
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("could not create Pulsar consumer: %w", err)
	}

	return &EventConsumer{client: client, consumer: consumer, log: log}, nil
}

// Consume receives sync requests until ctx is cancelled. Requests that cannot be
// decoded are acknowledged and dropped, failed runs are negatively acknowledged.
func (c *EventConsumer) Consume(ctx context.Context, handle SyncRequestHandler) error {
	for {
		msg, err := c.consumer.Receive(ctx)
		if err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			c.log.Error().Err(err).Msg("Error receiving message")
			continue
		}

		var req SyncRequest
		if err := json.Unmarshal(msg.Payload(), &req); err != nil {
			c.log.Error().Err(err).Str("payload", string(msg.Payload())).Msg("Error unmarshaling sync request")
			c.consumer.Ack(msg)
			continue
		}

		c.log.Info().Str("requested_by", req.RequestedBy).Msg("Received sync request")

		if err := handle(ctx, req); err != nil {
			c.log.Error().Err(err).Msg("Sync request failed")
			c.consumer.Nack(msg)
			continue
		}

		c.consumer.Ack(msg)
	}
}

// Close cleans up the Pulsar consumer and client.
func (c *EventConsumer) Close() {
	c.consumer.Close()
	c.client.Close()
}
