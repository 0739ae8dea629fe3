package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"
)

// UpdatePublisher publishes entity-change notifications to NATS after the
// store write is confirmed, so downstream readers (dashboards, API layers)
// can invalidate caches without polling.
// Subjects follow the pattern: fund.graph.updates.{entity_kind}.{fund}
type UpdatePublisher struct {
	js        jetstream.JetStream
	inputChan <-chan EntityUpdate
	log       zerolog.Logger
}

// EntityUpdate identifies one changed entity.
type EntityUpdate struct {
	EntityKind     string    `json:"entity_kind"`
	EntityID       string    `json:"entity_id"`
	Fund           string    `json:"fund,omitempty"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

func NewUpdatePublisher(js jetstream.JetStream, inputChan <-chan EntityUpdate, log zerolog.Logger) *UpdatePublisher {
	return &UpdatePublisher{
		js:        js,
		inputChan: inputChan,
		log:       log,
	}
}

// Run starts the publisher loop. Publish failures are non-fatal: the store
// is the source of truth and readers can always fall back to it.
func (p *UpdatePublisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case update, ok := <-p.inputChan:
			if !ok {
				return nil
			}

			if err := p.publish(ctx, update); err != nil {
				p.log.Warn().Err(err).
					Str("kind", update.EntityKind).
					Str("id", update.EntityID).
					Msg("outbound publish failed")
			}
		}
	}
}

func (p *UpdatePublisher) publish(ctx context.Context, update EntityUpdate) error {
	data, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}

	subject := fmt.Sprintf("fund.graph.updates.%s", update.EntityKind)
	if update.Fund != "" {
		subject = fmt.Sprintf("%s.%s", subject, update.Fund)
	}

	_, err = p.js.Publish(ctx, subject, data)
	return err
}

// EnsureUpdateStream creates the outbound notifications stream.
func EnsureUpdateStream(ctx context.Context, js jetstream.JetStream, log zerolog.Logger) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      "FUND_GRAPH_UPDATES",
		Subjects:  []string{"fund.graph.updates.>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    72 * time.Hour,
		Replicas:  1,
	})
	if err != nil {
		return fmt.Errorf("create update stream: %w", err)
	}
	log.Info().Str("stream", "FUND_GRAPH_UPDATES").Msg("stream ensured")
	return nil
}
