package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/fastygo/taskdesk/domain"
)

// Claims is the access token payload. SessionID ties the token to a revocable session.
type Claims struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func (uc *UseCase) signToken(session *domain.Session) (string, error) {
	claims := Claims{
		UserID:    session.UserID,
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    uc.cfg.Issuer,
			Subject:   session.UserID,
			IssuedAt:  jwt.NewNumericDate(uc.now()),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(uc.cfg.Secret))
}

func (uc *UseCase) parseToken(raw string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	token, err := parser.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(uc.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, "invalid token", err)
	}
	if uc.cfg.Issuer != "" && !claims.VerifyIssuer(uc.cfg.Issuer, true) {
		return nil, domain.NewError(domain.ErrCodeUnauthorized, "invalid token issuer")
	}
	if claims.UserID == "" || claims.SessionID == "" {
		return nil, domain.NewError(domain.ErrCodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

func isExpiredToken(err error) bool {
	var vErr *jwt.ValidationError
	return errors.As(err, &vErr) && vErr.Errors&jwt.ValidationErrorExpired != 0
}

func expiry(now time.Time, ttl time.Duration) time.Time {
	return now.Add(ttl).Truncate(time.Second)
}
