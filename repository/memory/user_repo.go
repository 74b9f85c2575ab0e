package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/repository"
)

type userRepository struct {
	s *Store
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, user := range r.s.users {
		if user.Email == email {
			return cloneUser(user), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return domain.ErrUserExists
		}
	}
	if user.ID == "" {
		user.ID = newID()
	}
	ts := r.s.stamp()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = ts
	}
	user.UpdatedAt = ts
	r.s.users[user.ID] = *cloneUser(*user)
	return nil
}

func (r *userRepository) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	matched := r.match(filter)
	sort.Slice(matched, func(i, j int) bool {
		return newestFirst(matched[i].CreatedAt, matched[j].CreatedAt, matched[i].ID, matched[j].ID)
	})
	page := paginate(matched, filter.Skip, filter.Limit)
	out := make([]domain.User, 0, len(page))
	for _, u := range page {
		u.PasswordHash = ""
		out = append(out, u)
	}
	return out, nil
}

func (r *userRepository) Count(ctx context.Context, filter repository.UserFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.match(filter))), nil
}

func (r *userRepository) match(filter repository.UserFilter) []domain.User {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var out []domain.User
	for _, u := range r.s.users {
		if filter.Role != "" && string(u.Role) != filter.Role {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Username), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		out = append(out, *cloneUser(u))
	}
	return out
}

func (r *userRepository) UpdateRole(ctx context.Context, id string, role domain.Role) (domain.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return "", domain.ErrUserNotFound
	}
	previous := user.Role
	user.Role = role
	user.UpdatedAt = r.s.stamp()
	r.s.users[id] = user
	return previous, nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.s.users, id)
	return nil
}

func (r *userRepository) MergePreferences(ctx context.Context, id string, patch domain.PreferencesPatch) (*domain.Preferences, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	merged := patch.Apply(user.EffectivePreferences())
	user.Preferences = &merged
	user.UpdatedAt = r.s.stamp()
	r.s.users[id] = user
	out := merged
	return &out, nil
}

func (r *userRepository) SetPreferences(ctx context.Context, id string, prefs domain.Preferences) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.Preferences = &prefs
	user.UpdatedAt = r.s.stamp()
	r.s.users[id] = user
	return nil
}

func (r *userRepository) CountByRole(ctx context.Context) ([]domain.GroupCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := make(map[string]int64)
	for _, u := range r.s.users {
		counts[string(u.Role)]++
	}
	return groupCounts(counts), nil
}

func (r *userRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, u := range r.s.users {
		if !u.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func cloneUser(u domain.User) *domain.User {
	if u.Preferences != nil {
		prefs := *u.Preferences
		u.Preferences = &prefs
	}
	return &u
}
