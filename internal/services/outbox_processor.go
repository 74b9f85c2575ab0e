package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskdesk/internal/infrastructure/mailer"
	"github.com/fastygo/taskdesk/internal/infrastructure/outbox"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// ProcessorConfig controls how the outbox is drained.
type ProcessorConfig struct {
	BatchSize  int
	MaxRetries int
	// RetryBase is the first retry delay; each further attempt doubles it up to MaxBackoff.
	RetryBase  time.Duration
	MaxBackoff time.Duration
	Retention  time.Duration
}

// DrainResult summarizes one Drain pass.
type DrainResult struct {
	Sent    int
	Retried int
	Dropped int
}

// OutboxProcessor renders queued items and hands them to the mailer.
type OutboxProcessor struct {
	store   *outbox.Store
	mailer  mailer.Mailer
	monitor ConnectionHealth
	logger  *zap.Logger
	cfg     ProcessorConfig
	now     func() time.Time
}

func NewOutboxProcessor(
	store *outbox.Store,
	m mailer.Mailer,
	monitor ConnectionHealth,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *OutboxProcessor {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 30 * time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = time.Hour
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 72 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutboxProcessor{
		store:   store,
		mailer:  m,
		monitor: monitor,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Drain delivers one batch of due items.
func (p *OutboxProcessor) Drain(ctx context.Context) (DrainResult, error) {
	var result DrainResult
	if p == nil || p.store == nil {
		return result, nil
	}
	if p.monitor != nil && !p.monitor.IsOnline() {
		p.logger.Debug("skipping outbox drain (offline)")
		return result, nil
	}

	now := p.now()
	items, err := p.store.Due(now, p.cfg.BatchSize)
	if err != nil {
		return result, err
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		msg, err := render(item)
		if err != nil {
			p.logger.Error("dropping undeliverable outbox item",
				zap.String("item_id", item.ID),
				zap.String("kind", string(item.Kind)),
				zap.Error(err))
			p.ack(item)
			result.Dropped++
			continue
		}

		if err := p.mailer.Send(ctx, msg); err != nil {
			p.logger.Warn("email delivery failed",
				zap.String("item_id", item.ID),
				zap.String("kind", string(item.Kind)),
				zap.Int("attempt", item.Attempts+1),
				zap.Error(err))

			if item.Attempts+1 >= p.cfg.MaxRetries {
				p.logger.Error("dropping outbox item (max retries reached)", zap.String("item_id", item.ID))
				p.ack(item)
				result.Dropped++
				continue
			}
			if err := p.store.Retry(item, err, now.Add(p.backoff(item.Attempts))); err != nil {
				p.logger.Error("failed to reschedule outbox item", zap.String("item_id", item.ID), zap.Error(err))
			}
			result.Retried++
			continue
		}

		p.ack(item)
		result.Sent++
	}
	return result, nil
}

// Cleanup removes items older than the retention period.
func (p *OutboxProcessor) Cleanup(ctx context.Context) error {
	if p == nil || p.store == nil {
		return nil
	}
	removed, err := p.store.Cleanup(p.now().Add(-p.cfg.Retention))
	if err != nil {
		return err
	}
	if removed > 0 {
		p.logger.Warn("expired outbox items removed", zap.Int("count", removed))
	}
	return nil
}

// Size returns the number of queued items.
func (p *OutboxProcessor) Size() int {
	if p == nil || p.store == nil {
		return 0
	}
	size, err := p.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (p *OutboxProcessor) ack(item outbox.Item) {
	if err := p.store.Ack(item); err != nil {
		p.logger.Warn("failed to remove outbox item", zap.String("item_id", item.ID), zap.Error(err))
	}
}

func (p *OutboxProcessor) backoff(attempts int) time.Duration {
	delay := p.cfg.RetryBase
	for i := 0; i < attempts && delay < p.cfg.MaxBackoff; i++ {
		delay *= 2
	}
	if delay > p.cfg.MaxBackoff {
		delay = p.cfg.MaxBackoff
	}
	return delay
}

func render(item outbox.Item) (mailer.Message, error) {
	switch item.Kind {
	case outbox.KindRoleUpgrade:
		var data mailer.RoleUpgradeData
		if err := item.Decode(&data); err != nil {
			return mailer.Message{}, err
		}
		return mailer.RenderRoleUpgrade(item.Recipient, data)
	case outbox.KindOverdueTask:
		var data mailer.OverdueTaskData
		if err := item.Decode(&data); err != nil {
			return mailer.Message{}, err
		}
		return mailer.RenderOverdueTask(item.Recipient, data)
	default:
		return mailer.Message{}, fmt.Errorf("unsupported outbox kind %s", item.Kind)
	}
}
