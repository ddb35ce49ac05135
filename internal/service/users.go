package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/business_site/internal/hash"
	"github.com/Skotchmaster/business_site/internal/logging"
	"github.com/Skotchmaster/business_site/internal/models"
	"github.com/Skotchmaster/business_site/internal/mykafka"
	"github.com/Skotchmaster/business_site/internal/repo"
	"github.com/Skotchmaster/business_site/internal/transport"
)

// UserService is the admin side of account management.
type UserService struct {
	Repo     *repo.GormRepo
	Hasher   *hash.Hasher
	Producer mykafka.Publisher
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.Repo.ListAccounts(ctx)
}

func (s *UserService) Create(ctx context.Context, req transport.CreateUserRequest) (*models.User, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, ErrValidation
	}

	pwHash, err := s.Hasher.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: pwHash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		IsAdmin:      req.IsAdmin,
	}
	if err := s.Repo.CreateAccount(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			return nil, fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return nil, err
	}

	mykafka.Publish(ctx, s.Producer, mykafka.TopicUserEvents, user.ID.String(), map[string]any{
		"type":    "user_created",
		"userID":  user.ID.String(),
		"email":   user.Email,
		"isAdmin": user.IsAdmin,
	})
	return user, nil
}

// Update applies the fields present in req to the account with the given
// email. A new password is hashed before it is stored.
func (s *UserService) Update(ctx context.Context, email string, req transport.UpdateUserRequest) (*models.User, error) {
	user, err := s.Repo.FindAccountByEmail(ctx, email)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if req.Email != nil {
		if strings.TrimSpace(*req.Email) == "" {
			return nil, ErrValidation
		}
		user.Email = *req.Email
	}
	if req.Password != nil {
		if *req.Password == "" {
			return nil, ErrValidation
		}
		pwHash, err := s.Hasher.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = pwHash
	}
	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}

	if err := s.Repo.SaveAccount(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			return nil, fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return nil, err
	}

	mykafka.Publish(ctx, s.Producer, mykafka.TopicUserEvents, user.ID.String(), map[string]any{
		"type":            "user_updated",
		"userID":          user.ID.String(),
		"email":           user.Email,
		"isAdmin":         user.IsAdmin,
		"passwordChanged": req.Password != nil,
	})
	return user, nil
}

// Delete removes the account with the given email. callerEmail is the admin
// making the request; an admin cannot remove their own account.
func (s *UserService) Delete(ctx context.Context, email, callerEmail string) error {
	if repo.NormalizeEmail(email) == repo.NormalizeEmail(callerEmail) {
		return ErrSelfDelete
	}

	if err := s.Repo.DeleteAccountByEmail(ctx, email); err != nil {
		if repo.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}

	mykafka.Publish(ctx, s.Producer, mykafka.TopicUserEvents, repo.NormalizeEmail(email), map[string]any{
		"type":  "user_deleted",
		"email": repo.NormalizeEmail(email),
	})
	return nil
}

// SeedAdmin makes sure an admin account exists for email. An existing
// account is left untouched.
func (s *UserService) SeedAdmin(ctx context.Context, email, password string) error {
	l := logging.FromContext(ctx).With("svc", "users.seed_admin")

	if strings.TrimSpace(email) == "" || password == "" {
		return nil
	}

	_, err := s.Repo.FindAccountByEmail(ctx, email)
	if err == nil {
		l.Debug("seed_admin_skipped", "reason", "account exists")
		return nil
	}
	if !repo.IsNotFound(err) {
		return fmt.Errorf("find account: %w", err)
	}

	_, err = s.Create(ctx, transport.CreateUserRequest{
		Email:    email,
		Password: password,
		IsAdmin:  true,
	})
	if err != nil && !errors.Is(err, ErrConflict) {
		return fmt.Errorf("create admin: %w", err)
	}

	l.Info("seed_admin_created", "email", repo.NormalizeEmail(email))
	return nil
}
