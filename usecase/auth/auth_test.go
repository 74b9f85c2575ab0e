package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/repository/memory"
)

func newUseCase(t *testing.T) (*UseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	uc := New(store.Users(), store.Sessions(), Config{
		Secret:     "test-secret",
		Issuer:     "taskdesk-test",
		SessionTTL: time.Hour,
		HashCost:   bcrypt.MinCost,
	}, nil)
	return uc, store
}

func register(t *testing.T, uc *UseCase) *domain.User {
	t.Helper()
	user, err := uc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	return user
}

func TestRegister(t *testing.T) {
	uc, store := newUseCase(t)
	user := register(t, uc)

	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Empty(t, user.PasswordHash)

	stored, err := store.Users().GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret-pass")))

	_, err = uc.Register(context.Background(), RegisterInput{Username: "alice", Email: "alice@example.com", Password: "another"})
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestRegister_Validation(t *testing.T) {
	uc, _ := newUseCase(t)
	cases := []RegisterInput{
		{Username: "al", Email: "al@example.com", Password: "secret1"},
		{Username: "alice", Email: "not-an-email", Password: "secret1"},
		{Username: "alice", Email: "alice@example.com", Password: "123"},
	}
	for _, in := range cases {
		_, err := uc.Register(context.Background(), in)
		assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid), "input %+v", in)
	}
}

func TestLoginAndAuthenticate(t *testing.T) {
	uc, _ := newUseCase(t)
	user := register(t, uc)
	ctx := context.Background()

	result, err := uc.Login(ctx, "ALICE@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	assert.Equal(t, user.ID, result.User.ID)
	assert.Empty(t, result.User.PasswordHash)

	principal, err := uc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.UserID)

	require.NoError(t, uc.Logout(ctx, principal.SessionID))
	_, err = uc.Authenticate(ctx, result.Token)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))
}

func TestLogin_BadCredentials(t *testing.T) {
	uc, _ := newUseCase(t)
	register(t, uc)

	_, err := uc.Login(context.Background(), "alice@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = uc.Login(context.Background(), "nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthenticate_RejectsForeignTokens(t *testing.T) {
	uc, store := newUseCase(t)
	register(t, uc)
	result, err := uc.Login(context.Background(), "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	other := New(store.Users(), store.Sessions(), Config{Secret: "other-secret", Issuer: "taskdesk-test"}, nil)
	_, err = other.Authenticate(context.Background(), result.Token)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))

	_, err = uc.Authenticate(context.Background(), "garbage")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))
}

func TestGetSession_DropsExpired(t *testing.T) {
	uc, store := newUseCase(t)
	ctx := context.Background()
	past := time.Now().Add(-time.Minute)
	require.NoError(t, store.Sessions().Save(ctx, &domain.Session{
		ID:        "stale",
		UserID:    "u1",
		CreatedAt: past.Add(-time.Hour),
		ExpiresAt: past,
	}))

	_, err := uc.GetSession(ctx, "stale")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = store.Sessions().Get(ctx, "stale")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRefresh_ExtendsSession(t *testing.T) {
	uc, store := newUseCase(t)
	register(t, uc)
	ctx := context.Background()
	login, err := uc.Login(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)
	principal, err := uc.Authenticate(ctx, login.Token)
	require.NoError(t, err)

	uc.now = func() time.Time { return time.Now().Add(30 * time.Minute) }
	refreshed, err := uc.Refresh(ctx, principal.SessionID)
	require.NoError(t, err)
	assert.True(t, refreshed.ExpiresAt.After(login.ExpiresAt))

	stored, err := store.Sessions().Get(ctx, principal.SessionID)
	require.NoError(t, err)
	assert.Equal(t, refreshed.ExpiresAt, stored.ExpiresAt)
}
