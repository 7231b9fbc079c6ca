package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/providers"
	apperrors "github.com/wrenchwise/backend/pkg/errors"
)

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTIssuer issues HS256 session tokens
type JWTIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

var _ providers.TokenIssuer = (*JWTIssuer)(nil)

// NewJWTIssuer creates a token issuer signing with secret
func NewJWTIssuer(secret, issuer string, ttl time.Duration) *JWTIssuer {
	return &JWTIssuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a new token for user
func (j *JWTIssuer) Issue(user *entities.User) (string, *providers.TokenClaims, error) {
	now := j.now().UTC().Truncate(time.Second)
	claims := sessionClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   user.ID,
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", nil, apperrors.NewInternalError("failed to sign session token", err)
	}
	return signed, toTokenClaims(&claims), nil
}

// Parse verifies signature, issuer and expiry
func (j *JWTIssuer) Parse(token string) (*providers.TokenClaims, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (interface{}, error) { return j.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, &apperrors.AppError{
				Type:    apperrors.ErrorTypeUnauthorized,
				Message: "session expired",
				Err:     providers.ErrTokenExpired,
			}
		}
		return nil, apperrors.NewUnauthorizedError("invalid session token")
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, apperrors.NewUnauthorizedError("invalid session token")
	}
	return toTokenClaims(&claims), nil
}

func toTokenClaims(c *sessionClaims) *providers.TokenClaims {
	out := &providers.TokenClaims{
		UserID:  c.Subject,
		Email:   c.Email,
		TokenID: c.ID,
	}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out
}
