package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/samirrijal/oinez/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream. Each
// API instance subscribes with its own ephemeral consumer so every sibling
// sees every report and keeps its knowledge base in sync.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

func (s *Subscriber) SubscribeObstacleReported(ctx context.Context, handler func(ctx context.Context, ev *domain.ReportEvent) error) error {
	return s.subscribeReport(ctx, SubjectObstacleReported, handler)
}

func (s *Subscriber) SubscribeFeatureReported(ctx context.Context, handler func(ctx context.Context, ev *domain.ReportEvent) error) error {
	return s.subscribeReport(ctx, SubjectFeatureReported, handler)
}

func (s *Subscriber) SubscribeObstacleCleared(ctx context.Context, handler func(ctx context.Context, ev *domain.ClearEvent) error) error {
	sub, err := s.js.Subscribe(SubjectObstacleCleared, func(msg *nats.Msg) {
		var ev domain.ClearEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			_ = msg.Nak()
			return
		}
		if err := handler(ctx, &ev); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

func (s *Subscriber) subscribeReport(ctx context.Context, subject string, handler func(ctx context.Context, ev *domain.ReportEvent) error) error {
	sub, err := s.js.Subscribe(subject, func(msg *nats.Msg) {
		var ev domain.ReportEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			_ = msg.Nak()
			return
		}
		if err := handler(ctx, &ev); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
