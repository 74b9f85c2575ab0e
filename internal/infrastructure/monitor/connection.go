package monitor

import (
	"context"
	"sync"
	"time"

	redislib "github.com/redis/go-redis/v9"
	mongolib "go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/fastygo/taskdesk/internal/infrastructure/outbox"
)

const (
	ComponentMongo  = "mongodb"
	ComponentRedis  = "redis"
	ComponentOutbox = "outbox"
	ComponentNATS   = "nats"
)

// Probe checks one dependency; a nil error means healthy.
type Probe func(ctx context.Context) error

type check struct {
	name     string
	probe    Probe
	required bool
	timeout  time.Duration
}

// Monitor polls dependencies on a ticker and caches the latest Status.
type Monitor struct {
	checks []check
	outbox *outbox.Store

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

// Register adds a named probe. Required probes decide IsOnline.
func (m *Monitor) Register(name string, probe Probe, required bool) *Monitor {
	if probe != nil {
		m.checks = append(m.checks, check{name: name, probe: probe, required: required, timeout: 3 * time.Second})
	}
	return m
}

func (m *Monitor) WithMongo(client *mongolib.Client) *Monitor {
	if client == nil {
		return m
	}
	return m.Register(ComponentMongo, func(ctx context.Context) error {
		return client.Ping(ctx, nil)
	}, true)
}

func (m *Monitor) WithRedis(client *redislib.Client) *Monitor {
	if client == nil {
		return m
	}
	return m.Register(ComponentRedis, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}, true)
}

func (m *Monitor) WithOutbox(store *outbox.Store) *Monitor {
	if store == nil {
		return m
	}
	m.outbox = store
	return m.Register(ComponentOutbox, func(ctx context.Context) error {
		_, err := store.Size()
		return err
	}, false)
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Healthy(m.required())
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	components := make(map[string]bool, len(m.status.Components))
	for k, v := range m.status.Components {
		components[k] = v
	}
	status := m.status
	status.Components = components
	return status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh(context.Background())
	for {
		select {
		case <-ticker.C:
			m.Refresh(context.Background())
		case <-m.stopCh:
			return
		}
	}
}

// Refresh runs every probe once and stores the result.
func (m *Monitor) Refresh(ctx context.Context) {
	status := Status{
		Components: make(map[string]bool, len(m.checks)),
		LastCheck:  time.Now().UTC(),
	}
	for _, c := range m.checks {
		probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := c.probe(probeCtx)
		cancel()
		if err != nil {
			m.logger.Warn("dependency check failed", zap.String("component", c.name), zap.Error(err))
		}
		status.Components[c.name] = err == nil
	}
	if m.outbox != nil {
		if size, err := m.outbox.Size(); err == nil {
			status.OutboxSize = size
		}
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
}

func (m *Monitor) required() []string {
	var names []string
	for _, c := range m.checks {
		if c.required {
			names = append(names, c.name)
		}
	}
	return names
}
