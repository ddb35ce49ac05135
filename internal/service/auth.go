package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/business_site/internal/hash"
	"github.com/Skotchmaster/business_site/internal/logging"
	"github.com/Skotchmaster/business_site/internal/middleware/metrics"
	"github.com/Skotchmaster/business_site/internal/models"
	"github.com/Skotchmaster/business_site/internal/mykafka"
	"github.com/Skotchmaster/business_site/internal/repo"
	"github.com/Skotchmaster/business_site/internal/tokens"
)

// AccountStore is the read side of the account table used by authentication.
type AccountStore interface {
	FindAccountByEmail(ctx context.Context, email string) (*models.User, error)
	FindAccountByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*tokens.Claims, bool)
}

type AuthService struct {
	Accounts AccountStore
	Hasher   *hash.Hasher
	Issuer   *tokens.Issuer
	Verifier TokenVerifier
	Producer mykafka.Publisher
}

type LoginResult struct {
	Tokens *tokens.Pair
	User   *models.User
}

// Login checks the credentials and issues a token pair. An unknown email and
// a wrong password fail the same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Accounts.FindAccountByEmail(ctx, email)
	if err != nil {
		if repo.IsNotFound(err) {
			s.Hasher.CheckMissing(password)
			l.Warn("login_failed", "status", 401, "reason", "unknown account")
			metrics.RecordAuthFailure("invalid_credentials")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	ok, err := s.Hasher.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("check password: %w", err)
	}
	if !ok {
		l.Warn("login_failed", "status", 401, "reason", "wrong password", "user_id", user.ID)
		metrics.RecordAuthFailure("invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	pair, err := s.Issuer.IssueTokens(user)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	mykafka.Publish(ctx, s.Producer, mykafka.TopicUserEvents, user.ID.String(), map[string]any{
		"type":   "user_logged_in",
		"userID": user.ID.String(),
		"email":  user.Email,
	})

	l.Info("login_successful", "user_id", user.ID)
	return &LoginResult{Tokens: pair, User: user}, nil
}

// Refresh exchanges a refresh token for a new access token. The account is
// read again so that name and admin changes are picked up.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*tokens.Pair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, ok := s.Verifier.Verify(ctx, refreshToken)
	if !ok || claims.TokenType != tokens.RefreshToken {
		l.Warn("refresh_failed", "status", 401, "reason", "invalid refresh token")
		metrics.RecordAuthFailure("invalid_token")
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.Accounts.FindAccountByEmail(ctx, claims.User.Email)
	if err != nil {
		if repo.IsNotFound(err) {
			l.Warn("refresh_failed", "status", 401, "reason", "account no longer exists")
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	accessToken, accessExp, err := s.Issuer.IssueAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	l.Info("refresh_successful", "user_id", user.ID)
	return &tokens.Pair{AccessToken: accessToken, AccessExp: accessExp}, nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrNotFound
	}

	user, err := s.Accounts.FindAccountByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return user, nil
}
