package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	natslib "github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/internal/config"
)

// Publisher sends domain events to NATS subjects named <prefix>.<event name>.
type Publisher struct {
	conn   *natslib.Conn
	prefix string
	logger *zap.Logger
}

// Connect dials NATS and keeps reconnecting in the background after drops.
func Connect(cfg config.NATSConfig, appName string, logger *zap.Logger) (*Publisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := natslib.Connect(cfg.URL,
		natslib.Name(appName),
		natslib.MaxReconnects(-1),
		natslib.ReconnectWait(2*time.Second),
		natslib.DisconnectErrHandler(func(_ *natslib.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		natslib.ReconnectHandler(func(c *natslib.Conn) {
			logger.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	logger.Info("connected to nats", zap.String("url", conn.ConnectedUrl()))
	return &Publisher{conn: conn, prefix: cfg.SubjectPrefix, logger: logger}, nil
}

func (p *Publisher) Publish(ctx context.Context, event domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p == nil || p.conn == nil || p.conn.IsClosed() {
		return natslib.ErrConnectionClosed
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.conn.Publish(Subject(p.prefix, event.Name), payload)
}

// IsConnected reports the connection state for health checks.
func (p *Publisher) IsConnected() bool {
	return p != nil && p.conn != nil && p.conn.IsConnected()
}

// Ping is a monitor probe.
func (p *Publisher) Ping(ctx context.Context) error {
	if !p.IsConnected() {
		return natslib.ErrConnectionClosed
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *Publisher) Close(ctx context.Context) error {
	if p == nil || p.conn == nil {
		return nil
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := p.conn.FlushTimeout(time.Until(deadline)); err != nil {
			p.logger.Warn("nats flush failed", zap.Error(err))
		}
	}
	return p.conn.Drain()
}

// Subject joins prefix and event name with a dot, skipping an empty prefix.
func Subject(prefix, name string) string {
	prefix = strings.Trim(prefix, ".")
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
