package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/Clark-Hu/movie-reviews/internal/domain"
	"github.com/Clark-Hu/movie-reviews/internal/repository"
)

// RegisterUser validates params and creates the account. A taken username or email
// yields domain.ErrConflict.
func (s *Service) RegisterUser(ctx context.Context, params domain.UserCreate) (domain.User, error) {
	if err := s.check(ctx, params); err != nil {
		return domain.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureIdentityFree(ctx, "", params.Username, params.Email); err != nil {
		return domain.User{}, err
	}
	user, err := s.repo.Users.Create(ctx, params)
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	s.logger.Printf("catalog: registered user %s (%s)", user.ID, user.Username)
	return user, nil
}

// GetUser fetches a user by id.
func (s *Service) GetUser(ctx context.Context, id string) (domain.User, error) {
	user, err := s.repo.Users.Get(ctx, id)
	if err != nil {
		return domain.User{}, wrapLookup("user", id, err)
	}
	return user, nil
}

// GetUserByUsername fetches a user by username.
func (s *Service) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	user, err := s.repo.Users.GetByUsername(ctx, username)
	if err != nil {
		return domain.User{}, wrapLookup("user", username, err)
	}
	return user, nil
}

// UpdateProfile applies a partial profile update, keeping usernames and emails unique.
func (s *Service) UpdateProfile(ctx context.Context, id string, update domain.UserUpdate) (domain.User, error) {
	if err := s.check(ctx, update); err != nil {
		return domain.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.repo.Users.Get(ctx, id)
	if err != nil {
		return domain.User{}, wrapLookup("user", id, err)
	}
	var username, email string
	if update.Username != nil && *update.Username != current.Username {
		username = *update.Username
	}
	if update.Email != nil && *update.Email != current.Email {
		email = *update.Email
	}
	if err := s.ensureIdentityFree(ctx, id, username, email); err != nil {
		return domain.User{}, err
	}

	user, err := s.repo.Users.Update(ctx, id, update)
	if err != nil {
		return domain.User{}, wrapLookup("user", id, err)
	}
	return user, nil
}

// ensureIdentityFree reports a conflict when username or email belongs to an account
// other than self. Empty values are not checked.
func (s *Service) ensureIdentityFree(ctx context.Context, self, username, email string) error {
	if username != "" {
		other, err := s.repo.Users.GetByUsername(ctx, username)
		switch {
		case err == nil && other.ID != self:
			return fmt.Errorf("username %q is already taken: %w", username, domain.ErrConflict)
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("lookup username: %w", err)
		}
	}
	if email != "" {
		other, err := s.repo.Users.GetByEmail(ctx, email)
		switch {
		case err == nil && other.ID != self:
			return fmt.Errorf("email %q is already registered: %w", email, domain.ErrConflict)
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("lookup email: %w", err)
		}
	}
	return nil
}

// wrapLookup annotates a store error with the entity it was looking for while
// keeping it matchable with errors.Is.
func wrapLookup(kind, key string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", kind, key, domain.ErrNotFound)
	}
	return fmt.Errorf("load %s %s: %w", kind, key, err)
}
