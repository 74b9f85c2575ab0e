package repository

import (
	"context"
	"time"

	"github.com/fastygo/taskdesk/domain"
)

// UserFilter narrows user listings. Search is a case-insensitive substring match on username or email.
type UserFilter struct {
	Role   string
	Search string
	Skip   int
	Limit  int
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	Count(ctx context.Context, filter UserFilter) (int64, error)
	// UpdateRole sets the role and returns the role stored before the update.
	UpdateRole(ctx context.Context, id string, role domain.Role) (domain.Role, error)
	Delete(ctx context.Context, id string) error
	// MergePreferences applies patch over the stored preferences (or the defaults when none exist) in one write.
	MergePreferences(ctx context.Context, id string, patch domain.PreferencesPatch) (*domain.Preferences, error)
	SetPreferences(ctx context.Context, id string, prefs domain.Preferences) error
	CountByRole(ctx context.Context) ([]domain.GroupCount, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
}
