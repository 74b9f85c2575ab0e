package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskdesk/domain"
)

func TestDispatcher_RoutesByName(t *testing.T) {
	d := NewDispatcher()
	var specific, all []string

	d.Subscribe(domain.EventTaskCreated, "counter", func(ctx context.Context, e domain.Event) error {
		specific = append(specific, e.Name)
		return nil
	})
	d.Subscribe(AllEvents, "audit", func(ctx context.Context, e domain.Event) error {
		all = append(all, e.Name)
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), domain.NewEvent(domain.EventTaskCreated, "t1", "u1", nil)))
	require.NoError(t, d.Publish(context.Background(), domain.NewEvent(domain.EventUserDeleted, "u2", "u1", nil)))

	assert.Equal(t, []string{domain.EventTaskCreated}, specific)
	assert.Equal(t, []string{domain.EventTaskCreated, domain.EventUserDeleted}, all)
}

func TestDispatcher_RunsEveryHandlerOnFailure(t *testing.T) {
	d := NewDispatcher()
	var reached bool
	d.Subscribe(AllEvents, "nats", func(ctx context.Context, e domain.Event) error {
		return errors.New("connection closed")
	})
	d.Subscribe(AllEvents, "audit", func(ctx context.Context, e domain.Event) error {
		reached = true
		return nil
	})

	err := d.Publish(context.Background(), domain.NewEvent(domain.EventUserRoleChanged, "u2", "u1", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nats: connection closed")
	assert.True(t, reached)
}
