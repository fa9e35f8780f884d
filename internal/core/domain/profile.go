package domain

import (
	"fmt"
	"strings"
	"time"
)

// RepoRef identifies one repository to harvest.
type RepoRef struct {
	Owner string
	Name  string
}

// String returns the owner/name form used in logs and store keys.
func (r RepoRef) String() string {
	return r.Owner + "/" + r.Name
}

// ParseRepoRef parses an "owner/name" string.
func ParseRepoRef(s string) (RepoRef, error) {
	owner, name, ok := strings.Cut(s, "/")
	if !ok || owner == "" || name == "" {
		return RepoRef{}, fmt.Errorf("%w: repository reference %q, want owner/name", ErrInvalidInput, s)
	}
	return RepoRef{Owner: owner, Name: name}, nil
}

// DependencyRecord is one entry from a repository's dependency graph.
type DependencyRecord struct {
	// Name is the short package name, without the ecosystem prefix.
	Name string

	// Version is the resolved version, when the graph reports one.
	Version string

	// Ecosystem is the package ecosystem (npm, pip, gomod, ...).
	Ecosystem string
}

// IssueSummary holds per-state issue counts for a repository.
type IssueSummary struct {
	Open   int
	Closed int
}

// PullSummary holds per-state pull request counts for a repository.
// Merged pull requests also count as closed.
type PullSummary struct {
	Open   int
	Closed int
	Merged int
}

// Sub-resource names recorded in RepositoryProfile.Missing when a
// sub-fetch degrades to unavailable.
const (
	SubTree         = "tree"
	SubDependencies = "dependencies"
	SubIssues       = "issues"
	SubPulls        = "pulls"
	SubCommits      = "commits"
	SubContributors = "contributors"
	SubTags         = "tags"
)

// RepositoryProfile is the aggregated record for one repository.
// Fields backed by failed sub-fetches hold their zero value and the
// sub-resource name appears in Missing. Immutable once emitted.
type RepositoryProfile struct {
	// Identity.
	Owner   string
	Name    string
	HTMLURL string

	// Descriptive fields from the core metadata call.
	Description string
	Language    string
	Topics      []string
	License     string

	// Activity metrics.
	Stars          int
	Forks          int
	OpenIssues     int
	LastCommitDate time.Time

	// Derived from the file tree.
	Classification Classification

	// Dependency graph entries, truncated to the configured cap.
	Dependencies []DependencyRecord

	// Listing-derived summaries.
	Issues       IssueSummary
	Pulls        PullSummary
	Commits      int
	Contributors int
	Tags         []string

	// Missing names the sub-resources that degraded to unavailable.
	Missing []string

	// FetchedAt is when the profile was assembled.
	FetchedAt time.Time
}

// Ref returns the repository's identity.
func (p *RepositoryProfile) Ref() RepoRef {
	return RepoRef{Owner: p.Owner, Name: p.Name}
}

// Unavailable reports whether the named sub-resource failed to fetch.
func (p *RepositoryProfile) Unavailable(sub string) bool {
	for _, m := range p.Missing {
		if m == sub {
			return true
		}
	}
	return false
}

// UserProfile is the aggregated record for one user account.
type UserProfile struct {
	Login       string
	Name        string
	Company     string
	Location    string
	Email       string
	Bio         string
	HTMLURL     string
	PublicRepos int
	PublicGists int
	Followers   int
	Following   int
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// FetchedAt is when the profile was assembled.
	FetchedAt time.Time
}

// MatchesLocation reports whether the profile's location equals the
// given one, compared case-insensitively. An empty filter matches all.
func (u *UserProfile) MatchesLocation(location string) bool {
	if location == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(u.Location), strings.TrimSpace(location))
}
