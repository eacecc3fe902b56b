// Package aggregate merges the reference lists of multiple seed works into a
// deduplicated DOI set with per-seed provenance.
package aggregate

import (
	"context"
	"runtime"
	"sync"

	"github.com/matsen/refcart/internal/crossref"
)

// Worker pool bounds for parallel registry calls.
const (
	MinWorkers = 4
	MaxWorkers = 32
)

// DefaultWorkers derives a worker count from available parallelism,
// clamped to [MinWorkers, MaxWorkers].
func DefaultWorkers() int {
	n := 2 * runtime.NumCPU()
	if n > 16 {
		n = 16
	}
	return ClampWorkers(n)
}

// ClampWorkers clamps a worker count to the supported range.
func ClampWorkers(n int) int {
	if n < MinWorkers {
		return MinWorkers
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}

// Fetcher provides reference lists for seed works.
type Fetcher interface {
	References(ctx context.Context, doi string) ([]crossref.RawReference, error)
}

// SeedError records a reference-list fetch failure for one seed.
type SeedError struct {
	Seed string `json:"seed"`
	Err  error  `json:"-"`
}

func (e SeedError) Error() string {
	return "fetching references for " + e.Seed + ": " + e.Err.Error()
}

// Result is the merged output of one aggregation round.
type Result struct {
	// Refs maps each deduplicated DOI to its representative raw
	// reference: the first one seen, processing seeds in input order.
	Refs map[string]crossref.RawReference

	// Sources maps each DOI to the seeds whose (truncated) reference
	// list contained it, in seed input order. Never empty for a DOI
	// present in Refs.
	Sources map[string][]string

	// Order lists the deduplicated DOIs in first-seen order.
	Order []string

	// Failures records seeds whose fetch failed. A failed seed does not
	// abort the others; the merge proceeds with whatever succeeded.
	Failures []SeedError
}

// Empty reports whether aggregation produced no references.
func (r Result) Empty() bool {
	return len(r.Order) == 0
}

// Aggregate fetches each seed's reference list in parallel with at most
// workers concurrent calls, truncates each list to perSeedLimit entries,
// and merges the results. The merge runs after all fetches complete and
// processes seeds strictly in input order, so the representative raw
// reference and provenance ordering are deterministic regardless of
// completion order.
func Aggregate(ctx context.Context, f Fetcher, seeds []string, perSeedLimit, workers int) Result {
	workers = ClampWorkers(workers)

	lists := make([][]crossref.RawReference, len(seeds))
	errs := make([]error, len(seeds))

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for i, seed := range seeds {
		wg.Add(1)
		go func(idx int, s string) {
			defer wg.Done()
			sem <- struct{}{}        // acquire semaphore
			defer func() { <-sem }() // release semaphore
			lists[idx], errs[idx] = f.References(ctx, s)
		}(i, seed)
	}

	wg.Wait()

	result := Result{
		Refs:    make(map[string]crossref.RawReference),
		Sources: make(map[string][]string),
	}

	for i, seed := range seeds {
		if errs[i] != nil {
			result.Failures = append(result.Failures, SeedError{Seed: seed, Err: errs[i]})
			continue
		}

		refs := lists[i]
		if perSeedLimit > 0 && len(refs) > perSeedLimit {
			refs = refs[:perSeedLimit]
		}

		for _, ref := range refs {
			if _, ok := result.Refs[ref.DOI]; !ok {
				result.Refs[ref.DOI] = ref
				result.Order = append(result.Order, ref.DOI)
			}
			if !containsSeed(result.Sources[ref.DOI], seed) {
				result.Sources[ref.DOI] = append(result.Sources[ref.DOI], seed)
			}
		}
	}

	return result
}

func containsSeed(seeds []string, seed string) bool {
	for _, s := range seeds {
		if s == seed {
			return true
		}
	}
	return false
}
