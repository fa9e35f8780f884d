// Package scrape assembles repository and user profiles from the
// GitHub API and drives harvest runs across many targets.
//
// The Aggregator builds a single profile: one core metadata call that
// must succeed, then a series of sub-fetches (tree, dependency graph,
// issues, pulls, commits, contributors, tags) that degrade
// independently. A sub-fetch failure marks the field unavailable on the
// profile instead of losing the record; only auth failures and
// pool-wide rate limiting abort the whole job.
//
// The Harvester fans targets out over a bounded worker pool and
// persists finished profiles through the store port.
package scrape
