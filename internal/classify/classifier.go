package classify

import (
	"path"
	"strings"

	"githarvest/internal/core/domain"
)

// Classify prunes skip directories out of a file tree and matches what
// remains against every category. Categories are independent: one entry
// may land in several, and landing in one never shadows another. The
// CI tool is decided separately by rule order.
func (r *Ruleset) Classify(entries []domain.FileEntry) domain.Classification {
	kept := r.Prune(entries)

	c := domain.Classification{}
	for _, e := range kept {
		base := path.Base(e.Path)
		if matchAny(r.database, base) {
			c.DatabaseFiles = append(c.DatabaseFiles, e.Path)
		}
		if matchAny(r.documentation, base) {
			c.DocumentationFiles = append(c.DocumentationFiles, e.Path)
		}
		if r.isAPISpec(e.Path, base) {
			c.APISpecFiles = append(c.APISpecFiles, e.Path)
		}
	}
	c.CITool = r.ciTool(kept)
	return c
}

// Prune drops every entry whose path crosses a skip directory. Pruning
// is idempotent: running it over its own output changes nothing.
func (r *Ruleset) Prune(entries []domain.FileEntry) []domain.FileEntry {
	if len(r.skipDirs) == 0 {
		return entries
	}
	kept := make([]domain.FileEntry, 0, len(entries))
	for _, e := range entries {
		if !r.pruned(e) {
			kept = append(kept, e)
		}
	}
	return kept
}

// pruned reports whether any directory segment of the entry's path
// matches a skip pattern. For directory entries the final segment is a
// directory too.
func (r *Ruleset) pruned(e domain.FileEntry) bool {
	segments := strings.Split(e.Path, "/")
	if e.Type == domain.EntryFile && len(segments) > 0 {
		segments = segments[:len(segments)-1]
	}
	for _, seg := range segments {
		if matchAny(r.skipDirs, seg) {
			return true
		}
	}
	return false
}

// isAPISpec matches either the basename against the file patterns or
// any path segment against the directory patterns.
func (r *Ruleset) isAPISpec(fullPath, base string) bool {
	if matchAny(r.apiSpecFiles, base) {
		return true
	}
	for _, seg := range strings.Split(fullPath, "/") {
		if matchAny(r.apiSpecDirs, seg) {
			return true
		}
	}
	return false
}

// ciTool returns the tool of the first CI rule, in declaration order,
// that matches any kept path. Empty string means no tool detected.
func (r *Ruleset) ciTool(entries []domain.FileEntry) string {
	for _, rule := range r.cicd {
		for _, e := range entries {
			if rule.re.MatchString(e.Path) {
				return rule.tool
			}
		}
	}
	return ""
}
