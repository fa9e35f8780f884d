// Package classify turns a repository's file tree into a structural
// classification: which database, documentation and API-spec files it
// carries, and which CI/CD tool it uses.
//
// Matching is pure and configuration-driven. Patterns compile once into
// a Ruleset; classification itself touches no I/O and is safe to run
// from any number of workers.
package classify
