// Package fanout republishes engine hook events onto Kafka, so external
// consumers (audit pipelines, downstream indexers) can follow working memory
// changes without holding a reference to the in-process Context.
package fanout

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"metacontext/internal/metacontext"
)

// Config controls whether and where events are published.
type Config struct {
	Enabled bool
	Brokers string
	Topic   string
}

// EventEnvelope is the wire shape written for every published event.
type EventEnvelope struct {
	Name      string    `json:"name"`
	At        time.Time `json:"at"`
	ContextID string    `json:"context_id"`
	Payload   any       `json:"payload"`
}

// KafkaEventPublisher writes engine events to Kafka as they are emitted.
type KafkaEventPublisher struct {
	writer *kafka.Writer
}

// NewKafkaEventPublisher builds a publisher when cfg.Enabled, else returns a
// nil publisher whose methods are safe no-ops. Each published event carries
// its own originating context id (metacontext.Event.ContextID), so a single
// publisher can be shared across multiple Context instances.
func NewKafkaEventPublisher(cfg Config) (*KafkaEventPublisher, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &KafkaEventPublisher{writer: writer}, nil
}

// Subscribe registers the publisher as a wildcard listener on bus, so every
// event the engine emits is republished.
func (p *KafkaEventPublisher) Subscribe(bus *metacontext.HookBus) {
	if p == nil {
		return
	}
	bus.OnAny(func(ev metacontext.Event) {
		if err := p.publish(context.Background(), ev); err != nil {
			log.Warn().Err(err).Str("event", string(ev.Name)).Msg("metacontext: kafka publish failed")
		}
	})
}

func (p *KafkaEventPublisher) publish(ctx context.Context, ev metacontext.Event) error {
	if p == nil || p.writer == nil {
		return nil
	}
	envelope := EventEnvelope{
		Name:      string(ev.Name),
		At:        ev.At,
		ContextID: ev.ContextID,
		Payload:   ev.Payload,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	msg := kafka.Message{Key: []byte(ev.ContextID), Value: data, Time: time.Now()}
	return p.writer.WriteMessages(ctx, msg)
}

// Close shuts down the underlying writer.
func (p *KafkaEventPublisher) Close() {
	if p == nil || p.writer == nil {
		return
	}
	if err := p.writer.Close(); err != nil {
		log.Warn().Err(err).Msg("metacontext: kafka writer close failed")
	}
}
