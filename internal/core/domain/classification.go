package domain

// EntryType distinguishes files from directories in a tree listing.
type EntryType string

const (
	// EntryFile is a regular file (a git blob).
	EntryFile EntryType = "file"

	// EntryDir is a directory (a git tree).
	EntryDir EntryType = "dir"
)

// FileEntry is one path from a repository's recursive tree listing.
// It is read-only input to the classifier.
type FileEntry struct {
	// Path is the full path relative to the repository root.
	Path string

	// Type is file or dir.
	Type EntryType

	// Size is the blob size in bytes. Zero for directories.
	Size int64
}

// Classification is the result of matching one repository's pruned file
// tree against the configured pattern sets. Created fresh per run and
// immutable once returned.
type Classification struct {
	// DatabaseFiles are paths whose basename matched a database
	// indicator pattern.
	DatabaseFiles []string

	// DocumentationFiles are paths whose basename matched a
	// documentation pattern.
	DocumentationFiles []string

	// APISpecFiles are paths matching an API specification pattern,
	// either by basename or by a spec directory segment.
	APISpecFiles []string

	// CITool is the detected CI/CD tool name, chosen by the first
	// matching entry of the ordered pattern mapping. Empty when no
	// CI/CD configuration was found.
	CITool string
}

// Empty reports whether nothing matched in any category.
func (c Classification) Empty() bool {
	return len(c.DatabaseFiles) == 0 &&
		len(c.DocumentationFiles) == 0 &&
		len(c.APISpecFiles) == 0 &&
		c.CITool == ""
}
