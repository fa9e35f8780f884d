// Package memory provides an in-memory ProfileStore for tests and
// dry runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"githarvest/internal/core/domain"
	"githarvest/internal/core/ports/driven"
)

// ProfileStore is an in-memory implementation of driven.ProfileStore.
// Safe for concurrent use.
type ProfileStore struct {
	mu    sync.RWMutex
	repos map[domain.RepoRef]*domain.RepositoryProfile
	users map[string]*domain.UserProfile
}

var _ driven.ProfileStore = (*ProfileStore)(nil)

// NewProfileStore creates an empty store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		repos: make(map[domain.RepoRef]*domain.RepositoryProfile),
		users: make(map[string]*domain.UserProfile),
	}
}

// SaveRepository stores or replaces a repository profile.
func (s *ProfileStore) SaveRepository(_ context.Context, profile *domain.RepositoryProfile) error {
	if profile == nil || profile.Owner == "" || profile.Name == "" {
		return fmt.Errorf("%w: repository profile needs owner and name", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *profile
	s.repos[profile.Ref()] = &copied
	return nil
}

// GetRepository returns a stored repository profile.
func (s *ProfileStore) GetRepository(_ context.Context, ref domain.RepoRef) (*domain.RepositoryProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.repos[ref]
	if !ok {
		return nil, fmt.Errorf("repository profile %s: %w", ref, domain.ErrNotFound)
	}
	copied := *profile
	return &copied, nil
}

// ListRepositories returns all stored repository profiles, ordered by
// owner then name.
func (s *ProfileStore) ListRepositories(_ context.Context) ([]*domain.RepositoryProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.RepositoryProfile, 0, len(s.repos))
	for _, profile := range s.repos {
		copied := *profile
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Owner != out[j].Owner {
			return out[i].Owner < out[j].Owner
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// SaveUser stores or replaces a user profile.
func (s *ProfileStore) SaveUser(_ context.Context, profile *domain.UserProfile) error {
	if profile == nil || profile.Login == "" {
		return fmt.Errorf("%w: user profile needs a login", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *profile
	s.users[profile.Login] = &copied
	return nil
}

// GetUser returns a stored user profile.
func (s *ProfileStore) GetUser(_ context.Context, login string) (*domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.users[login]
	if !ok {
		return nil, fmt.Errorf("user profile %s: %w", login, domain.ErrNotFound)
	}
	copied := *profile
	return &copied, nil
}

// ListUsers returns all stored user profiles, ordered by login.
func (s *ProfileStore) ListUsers(_ context.Context) ([]*domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.UserProfile, 0, len(s.users))
	for _, profile := range s.users {
		copied := *profile
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Login < out[j].Login })
	return out, nil
}
