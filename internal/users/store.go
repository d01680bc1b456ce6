package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"notesbuzz/internal/apperr"
)

// Store implements signup and credential checks on top of a Repository.
type Store struct {
	repo      Repository
	cost      int
	dummyHash []byte
}

// NewStore returns a Store hashing with the given bcrypt cost.
func NewStore(repo Repository, cost int) (*Store, error) {
	// Compared against when the username is unknown so both paths cost one
	// bcrypt evaluation.
	dummy, err := bcrypt.GenerateFromPassword([]byte("notesbuzz-missing-user"), cost)
	if err != nil {
		return nil, fmt.Errorf("bcrypt cost %d: %w", cost, err)
	}
	return &Store{repo: repo, cost: cost, dummyHash: dummy}, nil
}

// Create validates the input, hashes password and stores a new user.
// It fails with apperr.ErrInvalidInput (as ValidationErrors) or
// apperr.ErrConflict.
func (s *Store) Create(ctx context.Context, username, email, password string) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if err := validate(username, email, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", apperr.ErrStorage, err)
	}
	return user, nil
}

// Verify reports whether password matches the stored hash for username.
// Unknown usernames are simply false.
func (s *Store) Verify(ctx context.Context, username, password string) (bool, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return false, nil
		}
		return false, fmt.Errorf("%w: %w", apperr.ErrStorage, err)
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil, nil
}

// Authenticate is Verify with a mismatch reported as apperr.ErrUnauthorized.
func (s *Store) Authenticate(ctx context.Context, username, password string) error {
	ok, err := s.Verify(ctx, username, password)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrUnauthorized
	}
	return nil
}
