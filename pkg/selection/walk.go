package selection

import (
	"context"

	"github.com/Sternrassler/artic-catalog/pkg/catalog"
)

// StepOutcome is the typed result of absorbing one page of a walk.
type StepOutcome int

const (
	// StepContinue means pending remains and the next page should be fetched.
	StepContinue StepOutcome = iota

	// StepDone means the pending count reached zero.
	StepDone

	// StepExhausted means the data source ran out before pending did.
	StepExhausted
)

// StepResult reports what one absorbed page contributed and whether the
// walk should fetch another.
type StepResult struct {
	Outcome  StepOutcome
	NextPage int
	Added    int
}

// Absorb takes identifiers from an already fetched page in server-returned
// order and decides whether the walk continues. Identifiers already in the
// set do not decrement pending: the walk keeps gathering until it has
// pending genuinely new records or the source is exhausted. Exhaustion
// forces pending to zero. The set is persisted when the page added
// anything.
//
// Callers that fetch pages on another goroutine must apply Absorb from the
// goroutine that owns the accumulator; the fetch itself never touches it.
func (a *Accumulator) Absorb(page *catalog.Page, pageNum int) StepResult {
	selectionWalkPagesTotal.Inc()

	added := 0
	for _, id := range page.IDs() {
		if a.pending == 0 {
			break
		}
		if a.set.Add(id) {
			added++
			a.pending--
		}
	}

	if added > 0 {
		if err := a.save(); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to persist selection during walk")
		}
	}

	switch {
	case a.pending == 0:
		selectionWalksTotal.WithLabelValues("done").Inc()
		a.logger.Debug().
			Int("added", added).
			Int("selected", a.set.Len()).
			Msg("Selection walk complete")
		return StepResult{Outcome: StepDone, Added: added}

	case len(page.Artworks) == 0,
		page.Pagination.Total > 0 && a.set.Len() >= page.Pagination.Total,
		page.Pagination.TotalPages > 0 && pageNum >= page.Pagination.TotalPages:
		a.pending = 0
		selectionWalksTotal.WithLabelValues("exhausted").Inc()
		a.logger.Debug().
			Int("added", added).
			Int("selected", a.set.Len()).
			Msg("Selection walk exhausted data source")
		return StepResult{Outcome: StepExhausted, Added: added}

	default:
		return StepResult{Outcome: StepContinue, NextPage: pageNum + 1, Added: added}
	}
}

// FailWalk ends a walk after a fetch failure: the pending count is reset
// to zero and the partial selection is retained (and already persisted).
func (a *Accumulator) FailWalk(err error) {
	a.pending = 0
	selectionWalksTotal.WithLabelValues("failed").Inc()
	a.logger.Warn().
		Err(err).
		Int("selected", a.set.Len()).
		Msg("Selection walk failed - partial selection retained")
}

// Walk drains the pending count left by SelectFirstN by fetching the pages
// after current, strictly one fetch in flight at a time: the next page is
// requested only after the previous one resolves. It is the synchronous
// convenience for library callers; like the rest of the accumulator it
// must be driven from a single goroutine.
//
// On fetch failure the walk ends via FailWalk and the error is surfaced.
// Returns the number of identifiers added by the walk.
func (a *Accumulator) Walk(ctx context.Context, fetcher PageFetcher, current catalog.PageRequest) (int, error) {
	if a.pending == 0 {
		return 0, nil
	}

	added := 0
	req := current.Next()

	for {
		page, err := fetcher.FetchPage(ctx, req)
		if err != nil {
			a.FailWalk(err)
			return added, err
		}

		res := a.Absorb(page, req.Page)
		added += res.Added

		if res.Outcome != StepContinue {
			return added, nil
		}
		req.Page = res.NextPage
	}
}
