// Package notify publishes run-update events to NATS so collaborators can
// react to fresh metrics without polling the tool server. Publishing is
// optional and fire-and-forget: a failed publish is logged, never retried,
// and never affects the caller.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/trackmcp/internal/config"
	"git.home.luguber.info/inful/trackmcp/internal/logfields"
	"git.home.luguber.info/inful/trackmcp/internal/retry"
	"git.home.luguber.info/inful/trackmcp/internal/watch"
)

// connectPolicy covers brokers that come up slightly after the server.
var connectPolicy = retry.NewPolicy(retry.BackoffLinear, 500*time.Millisecond, 2*time.Second, 2)

// Publisher forwards run updates to a NATS subject.
type Publisher struct {
	conn    *nats.Conn
	subject string
}

// NewPublisher connects to NATS per the notify configuration, retrying the
// initial connect with backoff. Returns nil without error when no NATS URL
// is configured.
func NewPublisher(cfg config.NotifyConfig) (*Publisher, error) {
	if cfg.NATSURL == "" {
		return nil, nil
	}
	var conn *nats.Conn
	var err error
	for attempt := 0; ; attempt++ {
		conn, err = nats.Connect(cfg.NATSURL, nats.Name("trackmcp"))
		if err == nil {
			break
		}
		if attempt >= connectPolicy.MaxRetries {
			return nil, fmt.Errorf("connect to NATS: %w", err)
		}
		slog.Warn("NATS connect failed, retrying",
			logfields.URL(cfg.NATSURL), logfields.Error(err))
		time.Sleep(connectPolicy.Delay(attempt + 1))
	}

	slog.Info("NATS run-update publisher connected",
		logfields.URL(cfg.NATSURL), logfields.Subject(cfg.Subject))

	return &Publisher{conn: conn, subject: cfg.Subject}, nil
}

// Run subscribes to the hub and publishes every update until ctx ends.
func (p *Publisher) Run(ctx context.Context, hub *watch.Hub) {
	events, cancel := hub.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, open := <-events:
			if !open {
				return
			}
			p.publish(ev)
		}
	}
}

func (p *Publisher) publish(ev watch.RunUpdate) {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Warn("marshal run update", logfields.Error(err))
		return
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		slog.Warn("publish run update", logfields.Subject(p.subject), logfields.Error(err))
	}
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
