package services

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/providers"
	"github.com/wrenchwise/backend/internal/domain/repositories"
	"github.com/wrenchwise/backend/internal/infrastructure/observability"
	"github.com/wrenchwise/backend/pkg/config"
	apperrors "github.com/wrenchwise/backend/pkg/errors"
	"github.com/wrenchwise/backend/pkg/validation"
)

const revokedTokenPrefix = "session:revoked:"

var errSessionRevoked = errors.New("session revoked")

// SignUpRequest is the payload of a sign up
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"omitempty,max=120"`
}

// SignInRequest is the payload of a sign in
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthService handles accounts and session tokens.
// Every operation returns the resulting Session alongside any error.
type AuthService struct {
	users             repositories.UserRepository
	hasher            providers.PasswordHasher
	tokens            providers.TokenIssuer
	revocations       providers.CacheProvider
	validate          *validator.Validate
	minPasswordLength int
	metrics           *observability.Metrics
	now               func() time.Time
}

// NewAuthService creates a new auth service. Without a revocations cache signed out
// tokens stay valid until they expire.
func NewAuthService(
	users repositories.UserRepository,
	hasher providers.PasswordHasher,
	tokens providers.TokenIssuer,
	revocations providers.CacheProvider,
	cfg config.AuthConfig,
	metrics *observability.Metrics,
) *AuthService {
	return &AuthService{
		users:             users,
		hasher:            hasher,
		tokens:            tokens,
		revocations:       revocations,
		validate:          validation.New(),
		minPasswordLength: cfg.MinPasswordLength,
		metrics:           metrics,
		now:               time.Now,
	}
}

// SignUp creates an account and signs it in
func (s *AuthService) SignUp(ctx context.Context, req SignUpRequest) (entities.Session, error) {
	session, _ := entities.NewSession().Begin()

	user, err := s.signUp(ctx, req)
	if err != nil {
		observability.RecordAuthAttempt(ctx, s.metrics, "signup", "failure")
		return fail(session, err)
	}

	observability.RecordAuthAttempt(ctx, s.metrics, "signup", "success")
	return s.succeed(session, user)
}

func (s *AuthService) signUp(ctx context.Context, req SignUpRequest) (*entities.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Struct(s.validate, req); err != nil {
		return nil, err
	}
	if len(req.Password) < s.minPasswordLength {
		return nil, apperrors.NewValidationError("password must be at least " + strconv.Itoa(s.minPasswordLength) + " characters")
	}

	name := req.Name
	if name == "" {
		name = entities.DefaultDisplayName(req.Email)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		ID:        uuid.New().String(),
		Email:     req.Email,
		Name:      name,
		CreatedAt: s.now().UTC(),
	}
	if err := s.users.Create(ctx, user, hash); err != nil {
		return nil, err
	}
	return user, nil
}

// SignIn verifies credentials. Unknown email and wrong password are indistinguishable.
func (s *AuthService) SignIn(ctx context.Context, req SignInRequest) (entities.Session, error) {
	session, _ := entities.NewSession().Begin()

	user, err := s.signIn(ctx, req)
	if err != nil {
		observability.RecordAuthAttempt(ctx, s.metrics, "signin", "failure")
		return fail(session, err)
	}

	observability.RecordAuthAttempt(ctx, s.metrics, "signin", "success")
	return s.succeed(session, user)
}

func (s *AuthService) signIn(ctx context.Context, req SignInRequest) (*entities.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Struct(s.validate, req); err != nil {
		return nil, err
	}

	creds, err := s.users.GetCredentialsByEmail(ctx, req.Email)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, apperrors.NewInvalidCredentialsError("invalid email or password")
		}
		return nil, err
	}
	if err := s.hasher.Compare(creds.PasswordHash, req.Password); err != nil {
		return nil, err
	}
	return creds.User, nil
}

// SignOut revokes token until it would have expired. Signing out an invalid or
// already revoked token succeeds.
func (s *AuthService) SignOut(ctx context.Context, token string) (entities.Session, error) {
	session := entities.NewSession()
	if token == "" {
		return session.SignOut(), nil
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		return session.SignOut(), nil
	}
	session = entities.Session{State: entities.SessionAuthenticated, Token: token, ExpiresAt: &claims.ExpiresAt}

	ttl := int(math.Ceil(claims.ExpiresAt.Sub(s.now()).Seconds()))
	if ttl > 0 && s.revocations != nil {
		if err := s.revocations.Set(ctx, revokedTokenPrefix+claims.TokenID, []byte(claims.UserID), ttl); err != nil {
			return session.SignOut(), apperrors.NewExternalError("failed to revoke session", err)
		}
	}
	return session.SignOut(), nil
}

// Authenticate resolves a bearer token to its claims. Revoked, expired and malformed
// tokens are UNAUTHORIZED.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*providers.TokenClaims, error) {
	if token == "" {
		return nil, apperrors.NewUnauthorizedError("authentication required")
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	if s.revocations == nil {
		return claims, nil
	}
	revoked, err := s.revocations.Exists(ctx, revokedTokenPrefix+claims.TokenID)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to check session", err)
	}
	if revoked {
		return nil, &apperrors.AppError{Type: apperrors.ErrorTypeUnauthorized, Message: "session has been signed out", Err: errSessionRevoked}
	}
	return claims, nil
}

// GetCurrentUser returns the signed in user, or nil when token is empty, expired,
// revoked or names a deleted account. A malformed token is INVALID_CREDENTIALS.
func (s *AuthService) GetCurrentUser(ctx context.Context, token string) (*entities.User, error) {
	if token == "" {
		return nil, nil
	}

	claims, err := s.Authenticate(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, providers.ErrTokenExpired), errors.Is(err, errSessionRevoked):
			return nil, nil
		case apperrors.IsType(err, apperrors.ErrorTypeUnauthorized):
			return nil, apperrors.NewInvalidCredentialsError("invalid session token")
		}
		return nil, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) succeed(session entities.Session, user *entities.User) (entities.Session, error) {
	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		return fail(session, err)
	}
	return session.Succeed(user, token, claims.ExpiresAt)
}

func fail(session entities.Session, err error) (entities.Session, error) {
	failed, _ := session.Fail(err)
	return failed, err
}

