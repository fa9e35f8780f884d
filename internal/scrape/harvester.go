package scrape

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"githarvest/internal/core/domain"
	"githarvest/internal/core/ports/driven"
	"githarvest/internal/logger"
)

// DefaultWorkers is the harvest concurrency when none is configured.
const DefaultWorkers = 4

// Report summarises one harvest run.
type Report struct {
	// RunID tags every record and log line of the run.
	RunID string

	// Completed counts profiles stored with every field present.
	Completed int

	// Partial counts profiles stored with at least one field degraded.
	Partial int

	// Failed counts targets that produced no profile at all.
	Failed int
}

// Total returns the number of targets the run attempted.
func (r *Report) Total() int {
	return r.Completed + r.Partial + r.Failed
}

// Harvester fans harvest targets out over a bounded worker pool,
// builds profiles through the aggregator and persists them.
type Harvester struct {
	agg     *Aggregator
	store   driven.ProfileStore
	workers int
}

// NewHarvester wires a harvester. Non-positive worker counts fall back
// to the default.
func NewHarvester(agg *Aggregator, store driven.ProfileStore, workers int) *Harvester {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Harvester{agg: agg, store: store, workers: workers}
}

// HarvestRepositories builds and stores a profile for every target.
// Per-target failures are counted and the run continues; a job-level
// failure (invalid credentials, pool-wide rate limiting) cancels the
// remaining targets and is returned alongside the partial report.
func (h *Harvester) HarvestRepositories(ctx context.Context, refs []domain.RepoRef) (*Report, error) {
	return h.run(ctx, len(refs), func(ctx context.Context, i int) (partial bool, err error) {
		ref := refs[i]
		profile, err := h.agg.BuildRepositoryProfile(ctx, ref)
		if err != nil {
			return false, err
		}
		if err := h.store.SaveRepository(ctx, profile); err != nil {
			return false, err
		}
		return len(profile.Missing) > 0, nil
	})
}

// HarvestUsers builds and stores a profile for every login. A non-empty
// location keeps only users whose profile location matches it; filtered
// users count as completed without being stored.
func (h *Harvester) HarvestUsers(ctx context.Context, logins []string, location string) (*Report, error) {
	return h.run(ctx, len(logins), func(ctx context.Context, i int) (partial bool, err error) {
		profile, err := h.agg.BuildUserProfile(ctx, logins[i])
		if err != nil {
			return false, err
		}
		if !profile.MatchesLocation(location) {
			return false, nil
		}
		if err := h.store.SaveUser(ctx, profile); err != nil {
			return false, err
		}
		return false, nil
	})
}

// run executes n targets over the worker pool and tallies the report.
func (h *Harvester) run(ctx context.Context, n int, target func(context.Context, int) (bool, error)) (*Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	report := &Report{RunID: uuid.NewString()}
	logger.Info("Starting run %s: %d targets, %d workers", report.RunID, n, h.workers)

	indexes := make(chan int)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var jobErr error

	abort := func(err error) {
		mu.Lock()
		if jobErr == nil {
			jobErr = err
		}
		mu.Unlock()
		cancel()
	}

	for w := 0; w < h.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				partial, err := target(ctx, i)
				if err != nil {
					if jobLevel(err) {
						abort(err)
						return
					}
					logger.Warn("Run %s: target %d failed: %v", report.RunID, i+1, err)
					mu.Lock()
					report.Failed++
					mu.Unlock()
					continue
				}
				mu.Lock()
				if partial {
					report.Partial++
				} else {
					report.Completed++
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			break feed
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()

	logger.Info("Run %s finished: %d completed, %d partial, %d failed",
		report.RunID, report.Completed, report.Partial, report.Failed)
	if jobErr != nil {
		return report, jobErr
	}
	return report, ctx.Err()
}
