package classify

import (
	"fmt"
	"regexp"

	"githarvest/internal/core/domain"
)

// CIPattern pairs a path pattern with the tool name it identifies.
// Declaration order is significant: the first pattern with any match
// names the repository's CI tool.
type CIPattern struct {
	Pattern string `toml:"pattern"`
	Tool    string `toml:"tool"`
}

// Patterns is the raw, configurable rule set. Every entry is a regular
// expression; the scope each list applies to is fixed by the schema, so
// a pattern never has to guess whether it sees a basename or a path.
//
//   - Database, Documentation, APISpecFiles match entry basenames.
//   - APISpecDirs and SkipDirs match individual path segments.
//   - CICD patterns match anywhere in the full path.
//
// All matching is case-insensitive.
type Patterns struct {
	Database      []string    `toml:"database"`
	Documentation []string    `toml:"documentation"`
	APISpecFiles  []string    `toml:"api_spec_files"`
	APISpecDirs   []string    `toml:"api_spec_dirs"`
	SkipDirs      []string    `toml:"skip_dirs"`
	CICD          []CIPattern `toml:"ci"`
}

type ciRule struct {
	re   *regexp.Regexp
	tool string
}

// Ruleset is a compiled, immutable Patterns.
type Ruleset struct {
	database      []*regexp.Regexp
	documentation []*regexp.Regexp
	apiSpecFiles  []*regexp.Regexp
	apiSpecDirs   []*regexp.Regexp
	skipDirs      []*regexp.Regexp
	cicd          []ciRule
}

// Compile validates every pattern and builds the Ruleset used for the
// lifetime of the process. A single bad pattern fails the whole set so
// misconfiguration surfaces at startup, not mid-harvest.
func (p Patterns) Compile() (*Ruleset, error) {
	rs := &Ruleset{}
	var err error
	if rs.database, err = compileAnchored("database", p.Database); err != nil {
		return nil, err
	}
	if rs.documentation, err = compileAnchored("documentation", p.Documentation); err != nil {
		return nil, err
	}
	if rs.apiSpecFiles, err = compileAnchored("api_spec_files", p.APISpecFiles); err != nil {
		return nil, err
	}
	if rs.apiSpecDirs, err = compileAnchored("api_spec_dirs", p.APISpecDirs); err != nil {
		return nil, err
	}
	if rs.skipDirs, err = compileAnchored("skip_dirs", p.SkipDirs); err != nil {
		return nil, err
	}
	for i, c := range p.CICD {
		if c.Tool == "" {
			return nil, fmt.Errorf("ci pattern %d: %w: missing tool name", i+1, domain.ErrInvalidInput)
		}
		re, err := regexp.Compile("(?i)" + c.Pattern)
		if err != nil {
			return nil, fmt.Errorf("ci pattern %q: %w", c.Pattern, domain.ErrInvalidInput)
		}
		rs.cicd = append(rs.cicd, ciRule{re: re, tool: c.Tool})
	}
	return rs, nil
}

// compileAnchored compiles patterns that must cover a whole basename or
// path segment, case-insensitively.
func compileAnchored(list string, patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, pat := range patterns {
		re, err := regexp.Compile(`(?i)^(?:` + pat + `)$`)
		if err != nil {
			return nil, fmt.Errorf("%s pattern %q: %w", list, pat, domain.ErrInvalidInput)
		}
		out = append(out, re)
	}
	return out, nil
}

func matchAny(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
