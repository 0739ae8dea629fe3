// Package ingestion is the shell around the single-threaded core: it
// subscribes to NATS JetStream subjects carrying extracted chain events and
// block headers, parses the JSON payloads into typed events, and feeds them
// to the reconciler through a channel.
package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"
)

// NATSSubscriber consumes JetStream subjects and forwards raw messages to
// the event channel. One subject per event kind, so kinds can be replayed
// independently.
type NATSSubscriber struct {
	js        jetstream.JetStream
	eventChan chan<- RawEvent
	log       zerolog.Logger
	consumers []jetstream.ConsumeContext
}

// RawEvent is the parsed-but-untyped message from NATS, ready for the shell
// to convert into a typed event before sending to the core.
type RawEvent struct {
	Subject   string
	EventType string // corresponds to an event.Kind name, or "BlockTick"
	Data      []byte
	Received  time.Time
	AckFunc   func() // ack after the core has durably applied the event
	NakFunc   func() // nak on failure; the message is redelivered
}

// SubjectConfig maps one NATS subject to one event type.
type SubjectConfig struct {
	Subject      string
	EventType    string
	ConsumerName string
	StreamName   string
}

const (
	eventStream = "FUND_EVENTS"
	blockStream = "FUND_BLOCKS"
)

// DefaultSubjects returns the subject configuration: one subject per event
// kind under fund.events, plus block headers under fund.blocks.
func DefaultSubjects() []SubjectConfig {
	kinds := []string{
		"ParameterSet",
		"ManagerSet",
		"StateUpdated",
		"SharesTransferred",
		"PurchaseSettled",
		"RedemptionSettled",
		"Settled",
		"RedeemingShareIncreased",
		"RedeemingShareDecreased",
		"RedeemRequested",
		"RedeemCancelled",
		"Rebalanced",
	}
	subjects := make([]SubjectConfig, 0, len(kinds)+1)
	for _, kind := range kinds {
		subjects = append(subjects, SubjectConfig{
			Subject:      fmt.Sprintf("fund.events.%s.>", kind),
			EventType:    kind,
			ConsumerName: "fundgraph-" + kind,
			StreamName:   eventStream,
		})
	}
	subjects = append(subjects, SubjectConfig{
		Subject:      "fund.blocks.>",
		EventType:    "BlockTick",
		ConsumerName: "fundgraph-blocks",
		StreamName:   blockStream,
	})
	return subjects
}

func NewNATSSubscriber(js jetstream.JetStream, eventChan chan<- RawEvent, log zerolog.Logger) *NATSSubscriber {
	return &NATSSubscriber{
		js:        js,
		eventChan: eventChan,
		log:       log,
	}
}

// Subscribe creates JetStream consumers for all configured subjects.
// Consumers use explicit ACK, max_deliver=5, ack_wait=30s.
func (ns *NATSSubscriber) Subscribe(ctx context.Context, subjects []SubjectConfig) error {
	for _, cfg := range subjects {
		consumer, err := ns.js.CreateOrUpdateConsumer(ctx, cfg.StreamName, jetstream.ConsumerConfig{
			Durable:       cfg.ConsumerName,
			FilterSubject: cfg.Subject,
			AckPolicy:     jetstream.AckExplicitPolicy,
			AckWait:       30 * time.Second,
			MaxDeliver:    5,
			DeliverPolicy: jetstream.DeliverAllPolicy,
		})
		if err != nil {
			return fmt.Errorf("create consumer %s: %w", cfg.ConsumerName, err)
		}

		eventType := cfg.EventType
		consumerContext, err := consumer.Consume(func(msg jetstream.Msg) {
			raw := RawEvent{
				Subject:   msg.Subject(),
				EventType: eventType,
				Data:      msg.Data(),
				Received:  time.Now(),
				AckFunc:   func() { msg.Ack() },
				NakFunc:   func() { msg.Nak() },
			}

			select {
			case ns.eventChan <- raw:
			case <-ctx.Done():
				msg.Nak()
			}
		})
		if err != nil {
			return fmt.Errorf("consume %s: %w", cfg.ConsumerName, err)
		}

		ns.consumers = append(ns.consumers, consumerContext)
		ns.log.Info().
			Str("subject", cfg.Subject).
			Str("consumer", cfg.ConsumerName).
			Msg("subscribed")
	}

	return nil
}

// EnsureStreams creates the required JetStream streams if they don't exist.
// Streams use FileStorage, retention=Limits, max_age=72h.
func EnsureStreams(ctx context.Context, js jetstream.JetStream, log zerolog.Logger) error {
	streams := []jetstream.StreamConfig{
		{
			Name:      eventStream,
			Subjects:  []string{"fund.events.>"},
			Storage:   jetstream.FileStorage,
			Retention: jetstream.LimitsPolicy,
			MaxAge:    72 * time.Hour,
			Replicas:  1,
		},
		{
			Name:      blockStream,
			Subjects:  []string{"fund.blocks.>"},
			Storage:   jetstream.FileStorage,
			Retention: jetstream.LimitsPolicy,
			MaxAge:    72 * time.Hour,
			Replicas:  1,
		},
	}

	for _, cfg := range streams {
		if _, err := js.CreateOrUpdateStream(ctx, cfg); err != nil {
			return fmt.Errorf("create stream %s: %w", cfg.Name, err)
		}
		log.Info().Str("stream", cfg.Name).Msg("stream ensured")
	}

	return nil
}

// Stop gracefully stops all consumers.
func (ns *NATSSubscriber) Stop() {
	for _, cc := range ns.consumers {
		cc.Stop()
	}
	ns.log.Info().Msg("nats subscribers stopped")
}

// ConnectNATS establishes a NATS connection and returns a JetStream context.
func ConnectNATS(url string, log zerolog.Logger) (*nats.Conn, jetstream.JetStream, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info().Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("jetstream: %w", err)
	}

	return nc, js, nil
}
