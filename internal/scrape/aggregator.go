package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"

	"githarvest/internal/classify"
	"githarvest/internal/core/domain"
	"githarvest/internal/github"
	"githarvest/internal/logger"
)

// DefaultDependencyCap bounds how many dependency graph entries one
// profile keeps.
const DefaultDependencyCap = 20

// Aggregator builds profiles one target at a time. Safe for concurrent
// use: all state is fixed at construction.
type Aggregator struct {
	ex      *github.Executor
	rules   *classify.Ruleset
	depCap  int
	perPage int
}

// NewAggregator wires an aggregator to its executor and rule set.
// Non-positive caps fall back to the defaults.
func NewAggregator(ex *github.Executor, rules *classify.Ruleset, depCap, perPage int) *Aggregator {
	if depCap <= 0 {
		depCap = DefaultDependencyCap
	}
	if perPage <= 0 {
		perPage = github.DefaultPerPage
	}
	return &Aggregator{ex: ex, rules: rules, depCap: depCap, perPage: perPage}
}

// BuildRepositoryProfile assembles the full record for one repository.
// The core metadata call is load-bearing: if it fails the profile is
// not produced. Every other sub-fetch degrades independently into the
// profile's Missing list.
func (a *Aggregator) BuildRepositoryProfile(ctx context.Context, ref domain.RepoRef) (*domain.RepositoryProfile, error) {
	var repo gh.Repository
	metaURL := a.ex.URL(fmt.Sprintf("/repos/%s/%s", ref.Owner, ref.Name), nil)
	if err := a.ex.GetJSON(ctx, metaURL, &repo); err != nil {
		return nil, fmt.Errorf("repository metadata for %s: %w", ref, err)
	}

	p := &domain.RepositoryProfile{
		Owner:          ref.Owner,
		Name:           ref.Name,
		HTMLURL:        repo.GetHTMLURL(),
		Description:    repo.GetDescription(),
		Language:       normalizeLanguage(repo.GetLanguage()),
		Topics:         repo.Topics,
		License:        repo.GetLicense().GetName(),
		Stars:          repo.GetStargazersCount(),
		Forks:          repo.GetForksCount(),
		OpenIssues:     repo.GetOpenIssuesCount(),
		LastCommitDate: repo.GetPushedAt().Time,
		FetchedAt:      time.Now().UTC(),
	}

	if err := a.degrade(p, domain.SubTree, a.fetchClassification(ctx, ref, repo.GetDefaultBranch(), p)); err != nil {
		return nil, err
	}
	if err := a.degrade(p, domain.SubDependencies, a.fetchDependencies(ctx, ref, p)); err != nil {
		return nil, err
	}
	if err := a.degrade(p, domain.SubIssues, a.fetchIssues(ctx, ref, p)); err != nil {
		return nil, err
	}
	if err := a.degrade(p, domain.SubPulls, a.fetchPulls(ctx, ref, p)); err != nil {
		return nil, err
	}
	if err := a.degrade(p, domain.SubCommits, a.fetchCommitCount(ctx, ref, p)); err != nil {
		return nil, err
	}
	if err := a.degrade(p, domain.SubContributors, a.fetchContributorCount(ctx, ref, p)); err != nil {
		return nil, err
	}
	if err := a.degrade(p, domain.SubTags, a.fetchTags(ctx, ref, p)); err != nil {
		return nil, err
	}
	return p, nil
}

// degrade absorbs a sub-fetch failure into the profile's Missing list.
// Auth failures, pool-wide rate limiting and cancellation are job-level
// conditions and propagate instead.
func (a *Aggregator) degrade(p *domain.RepositoryProfile, sub string, err error) error {
	if err == nil {
		return nil
	}
	if jobLevel(err) {
		return err
	}
	logger.Debug("Sub-fetch %s degraded for %s/%s: %v", sub, p.Owner, p.Name, err)
	p.Missing = append(p.Missing, sub)
	return nil
}

// jobLevel reports whether an error must abort the whole harvest run
// rather than degrade a single field.
func jobLevel(err error) bool {
	return errors.Is(err, domain.ErrAuthInvalid) ||
		errors.Is(err, domain.ErrRateLimitExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// fetchClassification lists the full tree of the default branch and
// runs the pattern rules over it.
func (a *Aggregator) fetchClassification(ctx context.Context, ref domain.RepoRef, branch string, p *domain.RepositoryProfile) error {
	if branch == "" {
		branch = "HEAD"
	}
	q := url.Values{}
	q.Set("recursive", "1")
	var tree gh.Tree
	treeURL := a.ex.URL(fmt.Sprintf("/repos/%s/%s/git/trees/%s", ref.Owner, ref.Name, branch), q)
	if err := a.ex.GetJSON(ctx, treeURL, &tree); err != nil {
		return err
	}

	entries := make([]domain.FileEntry, 0, len(tree.Entries))
	for _, te := range tree.Entries {
		entry := domain.FileEntry{Path: te.GetPath(), Size: int64(te.GetSize())}
		switch te.GetType() {
		case "blob":
			entry.Type = domain.EntryFile
		case "tree":
			entry.Type = domain.EntryDir
		default:
			// Submodule commits and the like carry no classifiable content.
			continue
		}
		entries = append(entries, entry)
	}
	p.Classification = a.rules.Classify(entries)
	return nil
}

// fetchDependencies reads the dependency graph SBOM export. The first
// SBOM package describes the repository itself and is skipped; the rest
// are kept in graph order up to the cap.
func (a *Aggregator) fetchDependencies(ctx context.Context, ref domain.RepoRef, p *domain.RepositoryProfile) error {
	var sbom gh.SBOM
	sbomURL := a.ex.URL(fmt.Sprintf("/repos/%s/%s/dependency-graph/sbom", ref.Owner, ref.Name), nil)
	if err := a.ex.GetJSON(ctx, sbomURL, &sbom); err != nil {
		return err
	}

	info := sbom.GetSBOM()
	if info == nil {
		p.Dependencies = nil
		return nil
	}
	packages := info.Packages
	if len(packages) > 0 {
		packages = packages[1:]
	}
	deps := make([]domain.DependencyRecord, 0, min(len(packages), a.depCap))
	for _, pkg := range packages {
		if len(deps) == a.depCap {
			break
		}
		name, eco := splitPackageName(pkg.GetName())
		if name == "" {
			continue
		}
		deps = append(deps, domain.DependencyRecord{
			Name:      name,
			Version:   pkg.GetVersionInfo(),
			Ecosystem: eco,
		})
	}
	p.Dependencies = deps
	return nil
}

// splitPackageName splits an SBOM package identifier such as
// "npm:express" into its short name and ecosystem.
func splitPackageName(full string) (name, ecosystem string) {
	if i := strings.LastIndex(full, ":"); i >= 0 {
		return full[i+1:], full[:strings.Index(full, ":")]
	}
	return full, ""
}

func (a *Aggregator) fetchIssues(ctx context.Context, ref domain.RepoRef, p *domain.RepositoryProfile) error {
	q := url.Values{}
	q.Set("state", "all")
	issuesURL := a.ex.URL(fmt.Sprintf("/repos/%s/%s/issues", ref.Owner, ref.Name), q)

	var summary domain.IssueSummary
	for issue, err := range github.Collect[*gh.Issue](ctx, a.ex, issuesURL, a.perPage) {
		if err != nil {
			return err
		}
		// The issues endpoint interleaves pull requests.
		if issue.IsPullRequest() {
			continue
		}
		if issue.GetState() == "open" {
			summary.Open++
		} else {
			summary.Closed++
		}
	}
	p.Issues = summary
	return nil
}

func (a *Aggregator) fetchPulls(ctx context.Context, ref domain.RepoRef, p *domain.RepositoryProfile) error {
	q := url.Values{}
	q.Set("state", "all")
	pullsURL := a.ex.URL(fmt.Sprintf("/repos/%s/%s/pulls", ref.Owner, ref.Name), q)

	var summary domain.PullSummary
	for pr, err := range github.Collect[*gh.PullRequest](ctx, a.ex, pullsURL, a.perPage) {
		if err != nil {
			return err
		}
		if pr.GetState() == "open" {
			summary.Open++
			continue
		}
		summary.Closed++
		if !pr.GetMergedAt().IsZero() {
			summary.Merged++
		}
	}
	p.Pulls = summary
	return nil
}

func (a *Aggregator) fetchCommitCount(ctx context.Context, ref domain.RepoRef, p *domain.RepositoryProfile) error {
	commitsURL := a.ex.URL(fmt.Sprintf("/repos/%s/%s/commits", ref.Owner, ref.Name), nil)
	n, err := github.Count(github.Collect[*gh.RepositoryCommit](ctx, a.ex, commitsURL, a.perPage))
	if err != nil {
		return err
	}
	p.Commits = n
	return nil
}

func (a *Aggregator) fetchContributorCount(ctx context.Context, ref domain.RepoRef, p *domain.RepositoryProfile) error {
	contribURL := a.ex.URL(fmt.Sprintf("/repos/%s/%s/contributors", ref.Owner, ref.Name), nil)
	n, err := github.Count(github.Collect[*gh.Contributor](ctx, a.ex, contribURL, a.perPage))
	if err != nil {
		return err
	}
	p.Contributors = n
	return nil
}

func (a *Aggregator) fetchTags(ctx context.Context, ref domain.RepoRef, p *domain.RepositoryProfile) error {
	tagsURL := a.ex.URL(fmt.Sprintf("/repos/%s/%s/tags", ref.Owner, ref.Name), nil)
	var tags []string
	for tag, err := range github.Collect[*gh.RepositoryTag](ctx, a.ex, tagsURL, a.perPage) {
		if err != nil {
			return err
		}
		tags = append(tags, tag.GetName())
	}
	p.Tags = tags
	return nil
}

// normalizeLanguage folds notebook-dominated repositories into their
// effective language.
func normalizeLanguage(lang string) string {
	if lang == "Jupyter Notebook" {
		return "Python"
	}
	return lang
}
