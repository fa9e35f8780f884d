package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"githarvest/internal/core/domain"
)

func TestProfileStoreRepositories(t *testing.T) {
	ctx := context.Background()

	t.Run("round-trips a repository profile", func(t *testing.T) {
		store := NewProfileStore()
		profile := &domain.RepositoryProfile{
			Owner:     "octocat",
			Name:      "hello-world",
			Language:  "Go",
			Stars:     42,
			Missing:   []string{domain.SubDependencies},
			FetchedAt: time.Now(),
		}

		require.NoError(t, store.SaveRepository(ctx, profile))
		got, err := store.GetRepository(ctx, domain.RepoRef{Owner: "octocat", Name: "hello-world"})

		require.NoError(t, err)
		assert.Equal(t, profile.Language, got.Language)
		assert.True(t, got.Unavailable(domain.SubDependencies))
	})

	t.Run("save replaces an existing profile", func(t *testing.T) {
		store := NewProfileStore()
		ref := domain.RepoRef{Owner: "octocat", Name: "hello-world"}
		require.NoError(t, store.SaveRepository(ctx, &domain.RepositoryProfile{Owner: ref.Owner, Name: ref.Name, Stars: 1}))
		require.NoError(t, store.SaveRepository(ctx, &domain.RepositoryProfile{Owner: ref.Owner, Name: ref.Name, Stars: 2}))

		got, err := store.GetRepository(ctx, ref)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Stars)

		all, err := store.ListRepositories(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("get of an unknown repository fails with not found", func(t *testing.T) {
		store := NewProfileStore()

		_, err := store.GetRepository(ctx, domain.RepoRef{Owner: "a", Name: "b"})

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("rejects a profile without identity", func(t *testing.T) {
		store := NewProfileStore()

		err := store.SaveRepository(ctx, &domain.RepositoryProfile{Owner: "only-owner"})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("list is ordered by owner then name", func(t *testing.T) {
		store := NewProfileStore()
		for _, ref := range []domain.RepoRef{
			{Owner: "zeta", Name: "a"},
			{Owner: "alpha", Name: "b"},
			{Owner: "alpha", Name: "a"},
		} {
			require.NoError(t, store.SaveRepository(ctx, &domain.RepositoryProfile{Owner: ref.Owner, Name: ref.Name}))
		}

		all, err := store.ListRepositories(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "alpha/a", all[0].Ref().String())
		assert.Equal(t, "alpha/b", all[1].Ref().String())
		assert.Equal(t, "zeta/a", all[2].Ref().String())
	})

	t.Run("returned profiles are copies", func(t *testing.T) {
		store := NewProfileStore()
		ref := domain.RepoRef{Owner: "octocat", Name: "hello-world"}
		require.NoError(t, store.SaveRepository(ctx, &domain.RepositoryProfile{Owner: ref.Owner, Name: ref.Name, Stars: 1}))

		got, err := store.GetRepository(ctx, ref)
		require.NoError(t, err)
		got.Stars = 99

		again, err := store.GetRepository(ctx, ref)
		require.NoError(t, err)
		assert.Equal(t, 1, again.Stars)
	})
}

func TestProfileStoreUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("round-trips a user profile", func(t *testing.T) {
		store := NewProfileStore()
		require.NoError(t, store.SaveUser(ctx, &domain.UserProfile{Login: "octocat", Location: "San Francisco"}))

		got, err := store.GetUser(ctx, "octocat")

		require.NoError(t, err)
		assert.Equal(t, "San Francisco", got.Location)
	})

	t.Run("rejects a user without a login", func(t *testing.T) {
		store := NewProfileStore()

		err := store.SaveUser(ctx, &domain.UserProfile{Name: "Anonymous"})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("get of an unknown user fails with not found", func(t *testing.T) {
		store := NewProfileStore()

		_, err := store.GetUser(ctx, "ghost")

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("list is ordered by login", func(t *testing.T) {
		store := NewProfileStore()
		for _, login := range []string{"zoe", "amy", "mia"} {
			require.NoError(t, store.SaveUser(ctx, &domain.UserProfile{Login: login}))
		}

		all, err := store.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "amy", all[0].Login)
		assert.Equal(t, "zoe", all[2].Login)
	})
}
