// Package domain defines the core entities produced by a harvest run.
//
// This package is the innermost layer of the architecture. It defines
// the fundamental types:
//
//   - RepositoryProfile: the aggregated record for one repository
//   - UserProfile: the aggregated record for one user account
//   - Classification: the result of pattern-matching a file tree
//   - FileEntry: one path from a repository tree listing
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import the Go
// standard library. All other packages depend on domain, never the
// reverse.
//
// Profiles are plain data: the aggregator assembles them privately and
// callers treat them as immutable once emitted.
package domain
