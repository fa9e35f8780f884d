package scrape

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"time"

	gh "github.com/google/go-github/v80/github"

	"githarvest/internal/core/domain"
	"githarvest/internal/github"
)

// BuildUserProfile fetches one user account's full record.
func (a *Aggregator) BuildUserProfile(ctx context.Context, login string) (*domain.UserProfile, error) {
	if login == "" {
		return nil, fmt.Errorf("%w: empty login", domain.ErrInvalidInput)
	}
	var user gh.User
	if err := a.ex.GetJSON(ctx, a.ex.URL("/users/"+login, nil), &user); err != nil {
		return nil, fmt.Errorf("user metadata for %s: %w", login, err)
	}
	return &domain.UserProfile{
		Login:       user.GetLogin(),
		Name:        user.GetName(),
		Company:     user.GetCompany(),
		Location:    user.GetLocation(),
		Email:       user.GetEmail(),
		Bio:         user.GetBio(),
		HTMLURL:     user.GetHTMLURL(),
		PublicRepos: user.GetPublicRepos(),
		PublicGists: user.GetPublicGists(),
		Followers:   user.GetFollowers(),
		Following:   user.GetFollowing(),
		CreatedAt:   user.GetCreatedAt().Time,
		UpdatedAt:   user.GetUpdatedAt().Time,
		FetchedAt:   time.Now().UTC(),
	}, nil
}

// SearchUsers walks the user search endpoint for a query and yields
// the matching logins in relevance order.
func (a *Aggregator) SearchUsers(ctx context.Context, query string) iter.Seq2[string, error] {
	q := url.Values{}
	q.Set("q", query)
	searchURL := a.ex.URL("/search/users", q)
	return func(yield func(string, error) bool) {
		for user, err := range github.CollectSearch[*gh.User](ctx, a.ex, searchURL, a.perPage) {
			if err != nil {
				yield("", err)
				return
			}
			if !yield(user.GetLogin(), nil) {
				return
			}
		}
	}
}

// SearchRepositories walks the repository search endpoint for a query
// and yields the matching references in relevance order.
func (a *Aggregator) SearchRepositories(ctx context.Context, query string) iter.Seq2[domain.RepoRef, error] {
	q := url.Values{}
	q.Set("q", query)
	searchURL := a.ex.URL("/search/repositories", q)
	return func(yield func(domain.RepoRef, error) bool) {
		for repo, err := range github.CollectSearch[*gh.Repository](ctx, a.ex, searchURL, a.perPage) {
			if err != nil {
				yield(domain.RepoRef{}, err)
				return
			}
			ref := domain.RepoRef{Owner: repo.GetOwner().GetLogin(), Name: repo.GetName()}
			if !yield(ref, nil) {
				return
			}
		}
	}
}

// ListUserRepositories yields every public repository owned by a user.
func (a *Aggregator) ListUserRepositories(ctx context.Context, login string) iter.Seq2[domain.RepoRef, error] {
	reposURL := a.ex.URL("/users/"+login+"/repos", nil)
	return func(yield func(domain.RepoRef, error) bool) {
		for repo, err := range github.Collect[*gh.Repository](ctx, a.ex, reposURL, a.perPage) {
			if err != nil {
				yield(domain.RepoRef{}, err)
				return
			}
			ref := domain.RepoRef{Owner: repo.GetOwner().GetLogin(), Name: repo.GetName()}
			if !yield(ref, nil) {
				return
			}
		}
	}
}
