// Package services contains the server-side business logic. Every service
// checks input, enforces per-user ownership and translates repository
// failures into the sentinel errors of package common.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/tradejournal/internal/common"
	"github.com/dmitrijs2005/tradejournal/internal/server/cache"
	"github.com/dmitrijs2005/tradejournal/internal/server/models"
	"github.com/dmitrijs2005/tradejournal/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles registration, credential checks and password resets.
// Users are cached by id after the first lookup.
type UserService struct {
	repomanager repomanager.RepositoryManager
	users       *cache.Cache[string, *models.User]
	bcryptCost  int

	dummyOnce sync.Once
	dummyHash []byte
}

func NewUserService(m repomanager.RepositoryManager, users *cache.Cache[string, *models.User], bcryptCost int) *UserService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{repomanager: m, users: users, bcryptCost: bcryptCost}
}

// WarmCache loads every user into the cache and returns how many were
// loaded.
func (s *UserService) WarmCache(ctx context.Context) (int, error) {
	all, err := s.repomanager.Users().List(ctx)
	if err != nil {
		return 0, fmt.Errorf("error listing users: %w", err)
	}
	for _, u := range all {
		s.users.Set(u.ID, u)
	}
	return len(all), nil
}

func (s *UserService) Register(ctx context.Context, email, password, nickname string) (*models.User, error) {
	email = common.NormalizeEmail(email)
	nickname = strings.TrimSpace(nickname)
	if email == "" || password == "" || nickname == "" {
		return nil, common.NewValidationError(common.CodeMissingFields, "email, password and nickname are required")
	}

	repo := s.repomanager.Users()

	_, err := repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, common.ErrorAlreadyExists
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	if len(password) < common.MinPasswordLength {
		return nil, common.NewValidationError(common.CodePasswordTooShort, fmt.Sprintf("at least %d characters", common.MinPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := repo.Create(ctx, &models.User{Email: email, PasswordHash: string(hash), Nickname: nickname})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.users.Set(user.ID, user)
	return user, nil
}

// Authenticate returns the user owning email when password matches.
// Unknown emails cost the same bcrypt comparison as a wrong password.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, common.NewValidationError(common.CodeMissingFields, "email and password are required")
	}

	user, err := s.repomanager.Users().GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	hash := s.dummy()
	if user != nil {
		hash = []byte(user.PasswordHash)
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil || user == nil {
		return nil, common.ErrorUnauthorized
	}

	s.users.Set(user.ID, user)
	return user, nil
}

// ResetPassword replaces the password of the account owning email.
func (s *UserService) ResetPassword(ctx context.Context, email, newPassword string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(newPassword) == "" {
		return common.NewValidationError(common.CodeMissingFields, "email and newPassword are required")
	}
	if len(newPassword) < common.MinPasswordLength {
		return common.NewValidationError(common.CodePasswordTooShort, fmt.Sprintf("at least %d characters", common.MinPasswordLength))
	}

	repo := s.repomanager.Users()

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("error looking up user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	if err := repo.UpdatePasswordHash(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}

	user.PasswordHash = string(hash)
	s.users.Set(user.ID, user)
	return nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := s.users.Get(id); ok {
		return u, nil
	}

	user, err := s.repomanager.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	s.users.Set(user.ID, user)
	return user, nil
}

func (s *UserService) dummy() []byte {
	s.dummyOnce.Do(func() {
		secret, err := common.MakeRandHexString(16)
		if err != nil {
			secret = "unguessable-placeholder"
		}
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte(secret), s.bcryptCost)
	})
	return s.dummyHash
}
