package driven

import (
	"context"

	"githarvest/internal/core/domain"
)

// ProfileStore persists harvested profiles. The core emits records
// through this port and never writes files itself.
//
// Implementations must be safe for concurrent use: harvest workers save
// profiles from multiple goroutines.
type ProfileStore interface {
	// SaveRepository stores or replaces a repository profile, keyed by
	// owner/name.
	SaveRepository(ctx context.Context, profile *domain.RepositoryProfile) error

	// GetRepository retrieves a repository profile.
	// Returns domain.ErrNotFound if absent.
	GetRepository(ctx context.Context, ref domain.RepoRef) (*domain.RepositoryProfile, error)

	// ListRepositories returns all stored repository profiles, ordered
	// by owner then name.
	ListRepositories(ctx context.Context) ([]*domain.RepositoryProfile, error)

	// SaveUser stores or replaces a user profile, keyed by login.
	SaveUser(ctx context.Context, profile *domain.UserProfile) error

	// GetUser retrieves a user profile.
	// Returns domain.ErrNotFound if absent.
	GetUser(ctx context.Context, login string) (*domain.UserProfile, error)

	// ListUsers returns all stored user profiles, ordered by login.
	ListUsers(ctx context.Context) ([]*domain.UserProfile, error)
}
