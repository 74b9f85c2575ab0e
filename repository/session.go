package repository

import (
	"context"

	"github.com/fastygo/taskdesk/domain"
)

type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
	// DeleteByUser revokes every session of userID and returns how many were removed.
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}
