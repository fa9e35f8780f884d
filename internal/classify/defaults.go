package classify

// DefaultPatterns returns the built-in rule set. Configuration may
// replace any list wholesale; there is no merging.
func DefaultPatterns() Patterns {
	return Patterns{
		Database: []string{
			`requirements?\.txt`, `schema\.sql`, `pom\.xml`, `Pipfile`,
			`database\.yml`, `\.env`, `\.env\.example`, `database\.config`, `config\.yml`,
			`pyproject\.toml`, `package\.json`, `docker-compose\.yml`, `Gemfile`, `go\.mod`,
			`build\.gradle`, `settings\.py`, `init\.sql`, `db\.js`, `database\.js`, `db_config\.php`,
			`database\.ini`, `db\.properties`, `hibernate\.cfg\.xml`, `connection\.js`, `knexfile\.js`,
			`application\.properties`, `alembic\.ini`, `flyway\.conf`, `v1__init\.sql`, `pg_hba\.conf`,
			`postgresql\.conf`, `my\.ini`, `my\.cnf`,
		},
		Documentation: []string{
			`doc`, `docs`, `documentation`, `documentations`, `readme`,
			`readme\.md`, `contributing\.md`, `code_of_conduct\.md`, `changelog\.md`,
			`install\.md`, `license`, `api\.md`, `security\.md`, `support\.md`, `governance\.md`,
			`faq\.md`, `styleguide\.md`, `todo\.md`, `authors`, `credits\.md`, `dco\.md`,
			`changelog`, `pull_request_template\.md`,
		},
		APISpecFiles: []string{
			`swagger(\..+)?\.(json|ya?ml)`, `openapi(\..+)?\.(json|ya?ml)`,
			`postman_collection\.json`, `api\.md`,
		},
		APISpecDirs: []string{
			`swagger`, `openapi`, `postman`, `api-docs`, `api-spec`, `apidocs`,
		},
		SkipDirs: []string{
			// Static assets
			`images`, `imgs`, `img`, `figures`, `figure`, `figs`,
			// Build artifacts and scratch output
			`assets`, `asset`, `__pycache__`, `log`, `logs`, `\.git`,
			// Third-party code
			`3rdparty`, `bin`, `buildfiles`, `darwin`,
		},
		CICD: []CIPattern{
			{Pattern: `\.github/workflows/`, Tool: "GitHub Actions"},
			{Pattern: `circle\.yml`, Tool: "CircleCI"},
			{Pattern: `travis\.yml`, Tool: "Travis CI"},
			{Pattern: `jenkinsfile`, Tool: "Jenkins"},
			{Pattern: `gitlab-ci\.yml`, Tool: "GitLab CI"},
			{Pattern: `azure-pipelines\.yml`, Tool: "Azure Pipelines"},
		},
	}
}
