package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"githarvest/internal/classify"
	"githarvest/internal/core/domain"
	"githarvest/internal/github"
)

func newAggregator(t *testing.T, handler http.Handler) *Aggregator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	pool, err := github.NewPool(context.Background(), []string{"tok"}, 5*time.Second)
	require.NoError(t, err)

	policy := github.DefaultRetryPolicy()
	policy.BaseDelay = time.Millisecond
	policy.Throttle = 10000
	ex := github.NewExecutor(pool, srv.URL, policy)

	rules, err := classify.DefaultPatterns().Compile()
	require.NoError(t, err)
	return NewAggregator(ex, rules, 20, 100)
}

func writeJSON(w http.ResponseWriter, v any) {
	json.NewEncoder(w).Encode(v)
}

// repoMux serves a minimal but complete API surface for octocat/hello-world.
func repoMux(t *testing.T) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octocat/hello-world", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"name":             "hello-world",
			"full_name":        "octocat/hello-world",
			"html_url":         "https://github.com/octocat/hello-world",
			"description":      "My first repository",
			"language":         "Go",
			"topics":           []string{"tutorial", "example"},
			"license":          map[string]any{"name": "MIT License"},
			"stargazers_count": 1500,
			"forks_count":      120,
			"open_issues_count": 7,
			"default_branch":   "main",
			"pushed_at":        "2026-05-01T12:00:00Z",
		})
	})
	mux.HandleFunc("/repos/octocat/hello-world/git/trees/main", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("recursive"))
		writeJSON(w, map[string]any{
			"sha": "abc123",
			"tree": []map[string]any{
				{"path": "README.md", "type": "blob", "size": 120},
				{"path": "go.mod", "type": "blob", "size": 80},
				{"path": ".github/workflows/ci.yml", "type": "blob", "size": 300},
				{"path": "docs", "type": "tree"},
				{"path": "images/logo.png", "type": "blob", "size": 9000},
			},
		})
	})
	mux.HandleFunc("/repos/octocat/hello-world/dependency-graph/sbom", func(w http.ResponseWriter, r *http.Request) {
		packages := []map[string]any{
			{"name": "com.github.octocat/hello-world"},
		}
		for i := 1; i <= 35; i++ {
			packages = append(packages, map[string]any{
				"name":        fmt.Sprintf("npm:pkg-%02d", i),
				"versionInfo": fmt.Sprintf("1.0.%d", i),
			})
		}
		writeJSON(w, map[string]any{"sbom": map[string]any{"packages": packages}})
	})
	mux.HandleFunc("/repos/octocat/hello-world/issues", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "all", r.URL.Query().Get("state"))
		writeJSON(w, []map[string]any{
			{"number": 1, "state": "open"},
			{"number": 2, "state": "closed"},
			{"number": 3, "state": "closed"},
			// Pull requests leak into the issues listing and must not count.
			{"number": 4, "state": "open", "pull_request": map[string]any{"url": "x"}},
		})
	})
	mux.HandleFunc("/repos/octocat/hello-world/pulls", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "all", r.URL.Query().Get("state"))
		writeJSON(w, []map[string]any{
			{"number": 4, "state": "open"},
			{"number": 5, "state": "closed", "merged_at": "2026-04-01T10:00:00Z"},
			{"number": 6, "state": "closed"},
		})
	})
	mux.HandleFunc("/repos/octocat/hello-world/commits", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{{"sha": "a"}, {"sha": "b"}, {"sha": "c"}})
	})
	mux.HandleFunc("/repos/octocat/hello-world/contributors", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{{"login": "octocat"}, {"login": "hubot"}})
	})
	mux.HandleFunc("/repos/octocat/hello-world/tags", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{{"name": "v1.1.0"}, {"name": "v1.0.0"}})
	})
	return mux
}

func TestBuildRepositoryProfile(t *testing.T) {
	ref := domain.RepoRef{Owner: "octocat", Name: "hello-world"}

	t.Run("assembles a complete profile", func(t *testing.T) {
		agg := newAggregator(t, repoMux(t))

		p, err := agg.BuildRepositoryProfile(context.Background(), ref)

		require.NoError(t, err)
		assert.Empty(t, p.Missing)
		assert.Equal(t, "Go", p.Language)
		assert.Equal(t, "MIT License", p.License)
		assert.Equal(t, 1500, p.Stars)
		assert.Equal(t, []string{"tutorial", "example"}, p.Topics)
		assert.Equal(t, time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC), p.LastCommitDate)

		assert.Equal(t, []string{"go.mod"}, p.Classification.DatabaseFiles)
		assert.ElementsMatch(t, []string{"README.md", "docs"}, p.Classification.DocumentationFiles)
		assert.Equal(t, "GitHub Actions", p.Classification.CITool)

		assert.Equal(t, domain.IssueSummary{Open: 1, Closed: 2}, p.Issues)
		assert.Equal(t, domain.PullSummary{Open: 1, Closed: 2, Merged: 1}, p.Pulls)
		assert.Equal(t, 3, p.Commits)
		assert.Equal(t, 2, p.Contributors)
		assert.Equal(t, []string{"v1.1.0", "v1.0.0"}, p.Tags)
	})

	t.Run("truncates dependencies to the cap in graph order", func(t *testing.T) {
		agg := newAggregator(t, repoMux(t))

		p, err := agg.BuildRepositoryProfile(context.Background(), ref)

		require.NoError(t, err)
		require.Len(t, p.Dependencies, 20)
		assert.Equal(t, domain.DependencyRecord{Name: "pkg-01", Version: "1.0.1", Ecosystem: "npm"}, p.Dependencies[0])
		assert.Equal(t, "pkg-20", p.Dependencies[19].Name)
	})

	t.Run("maps notebook repositories to python", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/repos/octocat/hello-world", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]any{"name": "hello-world", "language": "Jupyter Notebook"})
		})
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, []any{})
		})
		agg := newAggregator(t, mux)

		p, err := agg.BuildRepositoryProfile(context.Background(), ref)

		require.NoError(t, err)
		assert.Equal(t, "Python", p.Language)
	})

	t.Run("a failed sub-fetch degrades instead of failing the profile", func(t *testing.T) {
		agg := newAggregator(t, missingDependencyGraph(t))

		p, err := agg.BuildRepositoryProfile(context.Background(), ref)

		require.NoError(t, err)
		assert.True(t, p.Unavailable(domain.SubDependencies))
		assert.Empty(t, p.Dependencies)
		assert.Equal(t, 1500, p.Stars)
		assert.Equal(t, 3, p.Commits)
	})

	t.Run("fails when the core metadata call fails", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"Not Found"}`))
		})
		agg := newAggregator(t, mux)

		_, err := agg.BuildRepositoryProfile(context.Background(), ref)

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("an auth failure on a sub-fetch aborts the profile", func(t *testing.T) {
		mux := repoMux(t)
		agg := newAggregator(t, withUnauthorizedSBOM(mux))

		_, err := agg.BuildRepositoryProfile(context.Background(), ref)

		assert.ErrorIs(t, err, domain.ErrAuthInvalid)
	})
}

// missingDependencyGraph is repoMux with the SBOM endpoint returning 404.
func missingDependencyGraph(t *testing.T) http.Handler {
	t.Helper()
	mux := repoMux(t)
	return overrideRoute(mux, "/repos/octocat/hello-world/dependency-graph/sbom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Not Found"}`))
	})
}

func withUnauthorizedSBOM(mux *http.ServeMux) http.Handler {
	return overrideRoute(mux, "/repos/octocat/hello-world/dependency-graph/sbom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Bad credentials"}`))
	})
}

// overrideRoute shadows one path on an existing mux.
func overrideRoute(next *http.ServeMux, path string, handler http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == path {
			handler(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func TestBuildUserProfile(t *testing.T) {
	t.Run("maps the account fields", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/users/octocat", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]any{
				"login":        "octocat",
				"name":         "The Octocat",
				"company":      "GitHub",
				"location":     "San Francisco",
				"bio":          "Mascot",
				"html_url":     "https://github.com/octocat",
				"public_repos": 8,
				"followers":    4000,
				"following":    9,
				"created_at":   "2011-01-25T18:44:36Z",
			})
		})
		agg := newAggregator(t, mux)

		p, err := agg.BuildUserProfile(context.Background(), "octocat")

		require.NoError(t, err)
		assert.Equal(t, "The Octocat", p.Name)
		assert.Equal(t, "San Francisco", p.Location)
		assert.Equal(t, 4000, p.Followers)
		assert.Equal(t, 2011, p.CreatedAt.Year())
	})

	t.Run("rejects an empty login", func(t *testing.T) {
		agg := newAggregator(t, http.NewServeMux())

		_, err := agg.BuildUserProfile(context.Background(), "")

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestSearchAndListing(t *testing.T) {
	t.Run("search users yields logins in order", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/search/users", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "location:iceland", r.URL.Query().Get("q"))
			writeJSON(w, map[string]any{
				"total_count": 2,
				"items":       []map[string]any{{"login": "freyja"}, {"login": "odin"}},
			})
		})
		agg := newAggregator(t, mux)

		var logins []string
		for login, err := range agg.SearchUsers(context.Background(), "location:iceland") {
			require.NoError(t, err)
			logins = append(logins, login)
		}

		assert.Equal(t, []string{"freyja", "odin"}, logins)
	})

	t.Run("search repositories yields references", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/search/repositories", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]any{
				"total_count": 1,
				"items": []map[string]any{
					{"name": "hello-world", "owner": map[string]any{"login": "octocat"}},
				},
			})
		})
		agg := newAggregator(t, mux)

		var refs []domain.RepoRef
		for ref, err := range agg.SearchRepositories(context.Background(), "language:go") {
			require.NoError(t, err)
			refs = append(refs, ref)
		}

		assert.Equal(t, []domain.RepoRef{{Owner: "octocat", Name: "hello-world"}}, refs)
	})

	t.Run("list user repositories yields references", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/users/octocat/repos", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, []map[string]any{
				{"name": "hello-world", "owner": map[string]any{"login": "octocat"}},
				{"name": "spoon-knife", "owner": map[string]any{"login": "octocat"}},
			})
		})
		agg := newAggregator(t, mux)

		var refs []domain.RepoRef
		for ref, err := range agg.ListUserRepositories(context.Background(), "octocat") {
			require.NoError(t, err)
			refs = append(refs, ref)
		}

		require.Len(t, refs, 2)
		assert.Equal(t, "spoon-knife", refs[1].Name)
	})
}
