package auth

import (
	"context"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/pkg/logger"
	"github.com/fastygo/taskdesk/repository"
)

const (
	minUsernameLength = 3
	minPasswordLength = 6
)

type Config struct {
	Secret     string
	Issuer     string
	SessionTTL time.Duration
	// HashCost defaults to bcrypt.DefaultCost.
	HashCost int
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Principal is the authenticated caller resolved from an access token.
type Principal struct {
	UserID    string
	SessionID string
}

type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *domain.User `json:"user"`
}

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
}

type Option func(*UseCase)

func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) {
		if now != nil {
			uc.now = now
		}
	}
}

func New(users repository.UserRepository, sessions repository.SessionRepository, cfg Config, logger *zap.Logger, opts ...Option) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.HashCost == 0 {
		cfg.HashCost = bcrypt.DefaultCost
	}
	uc := &UseCase{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *UseCase) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if utf8.RuneCountInString(username) < minUsernameLength {
		return nil, domain.NewError(domain.ErrCodeInvalid, "username must be at least 3 characters long")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.NewError(domain.ErrCodeInvalid, "invalid email")
	}
	if len(in.Password) < minPasswordLength {
		return nil, domain.NewError(domain.ErrCodeInvalid, "password must be at least 6 characters long")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.cfg.HashCost)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "hash password", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.WithRequestID(ctx, uc.logger).Info("user registered", zap.String("user_id", user.ID))
	user.PasswordHash = ""
	return user, nil
}

// Login verifies credentials, opens a session and returns a token bound to it.
func (uc *UseCase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := uc.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	now := uc.now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: expiry(now, uc.cfg.SessionTTL),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	token, err := uc.signToken(session)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "sign token", err)
	}

	user.PasswordHash = ""
	return &LoginResult{Token: token, ExpiresAt: session.ExpiresAt, User: user}, nil
}

func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}

func (uc *UseCase) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(uc.now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Refresh extends a live session and issues a new token for it.
func (uc *UseCase) Refresh(ctx context.Context, sessionID string) (*LoginResult, error) {
	session, err := uc.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.ExpiresAt = expiry(uc.now(), uc.cfg.SessionTTL)
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	token, err := uc.signToken(session)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "sign token", err)
	}
	return &LoginResult{Token: token, ExpiresAt: session.ExpiresAt}, nil
}

// Authenticate resolves a bearer token to a principal. Tokens whose session was revoked are rejected.
func (uc *UseCase) Authenticate(ctx context.Context, raw string) (*Principal, error) {
	claims, err := uc.parseToken(raw)
	if err != nil {
		if isExpiredToken(err) {
			return nil, domain.NewError(domain.ErrCodeUnauthorized, "token expired")
		}
		return nil, err
	}

	session, err := uc.GetSession(ctx, claims.SessionID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.NewError(domain.ErrCodeUnauthorized, "session revoked")
		}
		return nil, err
	}
	if session.UserID != claims.UserID {
		return nil, domain.ErrUnauthorized
	}
	return &Principal{UserID: claims.UserID, SessionID: session.ID}, nil
}
