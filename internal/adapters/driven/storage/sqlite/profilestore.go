package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"githarvest/internal/core/domain"
	"githarvest/internal/core/ports/driven"
)

var _ driven.ProfileStore = (*Store)(nil)

// SaveRepository inserts or replaces a repository profile.
func (s *Store) SaveRepository(ctx context.Context, profile *domain.RepositoryProfile) error {
	if profile == nil || profile.Owner == "" || profile.Name == "" {
		return fmt.Errorf("%w: repository profile needs owner and name", domain.ErrInvalidInput)
	}

	topics, err := marshalJSON(profile.Topics)
	if err != nil {
		return err
	}
	classification, err := marshalJSON(profile.Classification)
	if err != nil {
		return err
	}
	dependencies, err := marshalJSON(profile.Dependencies)
	if err != nil {
		return err
	}
	issues, err := marshalJSON(profile.Issues)
	if err != nil {
		return err
	}
	pulls, err := marshalJSON(profile.Pulls)
	if err != nil {
		return err
	}
	tags, err := marshalJSON(profile.Tags)
	if err != nil {
		return err
	}
	missing, err := marshalJSON(profile.Missing)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO repository_profiles (
			owner, name, html_url, description, language, topics, license,
			stars, forks, open_issues, last_commit_date,
			classification, dependencies, issues, pulls,
			commits, contributors, tags, missing, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner, name) DO UPDATE SET
			html_url = excluded.html_url,
			description = excluded.description,
			language = excluded.language,
			topics = excluded.topics,
			license = excluded.license,
			stars = excluded.stars,
			forks = excluded.forks,
			open_issues = excluded.open_issues,
			last_commit_date = excluded.last_commit_date,
			classification = excluded.classification,
			dependencies = excluded.dependencies,
			issues = excluded.issues,
			pulls = excluded.pulls,
			commits = excluded.commits,
			contributors = excluded.contributors,
			tags = excluded.tags,
			missing = excluded.missing,
			fetched_at = excluded.fetched_at
	`,
		profile.Owner, profile.Name, profile.HTMLURL, profile.Description,
		profile.Language, topics, profile.License,
		profile.Stars, profile.Forks, profile.OpenIssues, nullTime(profile.LastCommitDate),
		classification, dependencies, issues, pulls,
		profile.Commits, profile.Contributors, tags, missing, profile.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("saving repository profile %s: %w", profile.Ref(), err)
	}
	return nil
}

// GetRepository loads one repository profile by reference.
func (s *Store) GetRepository(ctx context.Context, ref domain.RepoRef) (*domain.RepositoryProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT owner, name, html_url, description, language, topics, license,
		       stars, forks, open_issues, last_commit_date,
		       classification, dependencies, issues, pulls,
		       commits, contributors, tags, missing, fetched_at
		FROM repository_profiles
		WHERE owner = ? AND name = ?
	`, ref.Owner, ref.Name)

	profile, err := scanRepository(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("repository profile %s: %w", ref, domain.ErrNotFound)
	}
	return profile, err
}

// ListRepositories returns every stored repository profile, ordered by
// owner then name.
func (s *Store) ListRepositories(ctx context.Context) ([]*domain.RepositoryProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT owner, name, html_url, description, language, topics, license,
		       stars, forks, open_issues, last_commit_date,
		       classification, dependencies, issues, pulls,
		       commits, contributors, tags, missing, fetched_at
		FROM repository_profiles
		ORDER BY owner, name
	`)
	if err != nil {
		return nil, fmt.Errorf("listing repository profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*domain.RepositoryProfile
	for rows.Next() {
		profile, err := scanRepository(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

// SaveUser inserts or replaces a user profile.
func (s *Store) SaveUser(ctx context.Context, profile *domain.UserProfile) error {
	if profile == nil || profile.Login == "" {
		return fmt.Errorf("%w: user profile needs a login", domain.ErrInvalidInput)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_profiles (
			login, name, company, location, email, bio, html_url,
			public_repos, public_gists, followers, following,
			created_at, updated_at, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(login) DO UPDATE SET
			name = excluded.name,
			company = excluded.company,
			location = excluded.location,
			email = excluded.email,
			bio = excluded.bio,
			html_url = excluded.html_url,
			public_repos = excluded.public_repos,
			public_gists = excluded.public_gists,
			followers = excluded.followers,
			following = excluded.following,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			fetched_at = excluded.fetched_at
	`,
		profile.Login, profile.Name, profile.Company, profile.Location,
		profile.Email, profile.Bio, profile.HTMLURL,
		profile.PublicRepos, profile.PublicGists, profile.Followers, profile.Following,
		nullTime(profile.CreatedAt), nullTime(profile.UpdatedAt), profile.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("saving user profile %s: %w", profile.Login, err)
	}
	return nil
}

// GetUser loads one user profile by login.
func (s *Store) GetUser(ctx context.Context, login string) (*domain.UserProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT login, name, company, location, email, bio, html_url,
		       public_repos, public_gists, followers, following,
		       created_at, updated_at, fetched_at
		FROM user_profiles
		WHERE login = ?
	`, login)

	profile, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user profile %s: %w", login, domain.ErrNotFound)
	}
	return profile, err
}

// ListUsers returns every stored user profile, ordered by login.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.UserProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT login, name, company, location, email, bio, html_url,
		       public_repos, public_gists, followers, following,
		       created_at, updated_at, fetched_at
		FROM user_profiles
		ORDER BY login
	`)
	if err != nil {
		return nil, fmt.Errorf("listing user profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*domain.UserProfile
	for rows.Next() {
		profile, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRepository(row scanner) (*domain.RepositoryProfile, error) {
	var (
		p              domain.RepositoryProfile
		topics         string
		classification string
		dependencies   string
		issues         string
		pulls          string
		tags           string
		missing        string
		lastCommit     sql.NullTime
	)
	err := row.Scan(
		&p.Owner, &p.Name, &p.HTMLURL, &p.Description, &p.Language, &topics, &p.License,
		&p.Stars, &p.Forks, &p.OpenIssues, &lastCommit,
		&classification, &dependencies, &issues, &pulls,
		&p.Commits, &p.Contributors, &tags, &missing, &p.FetchedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastCommit.Valid {
		p.LastCommitDate = lastCommit.Time
	}
	jsonCols := []struct {
		raw  string
		dest any
	}{
		{topics, &p.Topics},
		{classification, &p.Classification},
		{dependencies, &p.Dependencies},
		{issues, &p.Issues},
		{pulls, &p.Pulls},
		{tags, &p.Tags},
		{missing, &p.Missing},
	}
	for _, col := range jsonCols {
		if err := unmarshalJSON(col.raw, col.dest); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

func scanUser(row scanner) (*domain.UserProfile, error) {
	var (
		p         domain.UserProfile
		createdAt sql.NullTime
		updatedAt sql.NullTime
	)
	err := row.Scan(
		&p.Login, &p.Name, &p.Company, &p.Location, &p.Email, &p.Bio, &p.HTMLURL,
		&p.PublicRepos, &p.PublicGists, &p.Followers, &p.Following,
		&createdAt, &updatedAt, &p.FetchedAt,
	)
	if err != nil {
		return nil, err
	}
	if createdAt.Valid {
		p.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.Time
	}
	return &p, nil
}

func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshalling profile field: %w", err)
	}
	return string(b), nil
}

func unmarshalJSON(raw string, dest any) error {
	if raw == "" || raw == "null" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return fmt.Errorf("unmarshalling profile field: %w", err)
	}
	return nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
