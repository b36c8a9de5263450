// Package selection maintains the persisted cross-page selection set and
// implements the forward walk that gathers identifiers from subsequent
// pages to satisfy a "select first N" request.
package selection

import (
	"context"
	"errors"

	"github.com/Sternrassler/artic-catalog/pkg/catalog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for selection walks.
var (
	selectionWalksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_selection_walks_total",
		Help: "Total cross-page selection walks by result",
	}, []string{"result"}) // "done", "exhausted", "failed"

	selectionWalkPagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_selection_walk_pages_total",
		Help: "Total pages fetched by cross-page selection walks",
	})
)

// ErrInvalidCount is returned when a requested selection count is not a
// positive number. The request is rejected with no state change.
var ErrInvalidCount = errors.New("selection count must be a positive number")

// Store persists the selection set between sessions. SaveSelection
// receives the full set after every mutation; LoadSelection runs once at
// startup and reports whether a prior set existed.
type Store interface {
	LoadSelection() ([]int, bool)
	SaveSelection(ids []int) error
}

// PageFetcher fetches a single catalog page. *catalog.Client implements it.
type PageFetcher interface {
	FetchPage(ctx context.Context, req catalog.PageRequest) (*catalog.Page, error)
}

// Accumulator owns the selection set and the pending count of a cross-page
// walk. It is not safe for concurrent use; the view layer drives it from a
// single event loop.
type Accumulator struct {
	set     *Set
	pending int
	store   Store
	logger  zerolog.Logger
}

// NewAccumulator creates an accumulator, replacing the initial empty set
// with any previously persisted selection.
func NewAccumulator(store Store) *Accumulator {
	logger := log.With().Str("component", "selection").Logger()

	set := NewSet()
	if ids, ok := store.LoadSelection(); ok {
		set = NewSetFromIDs(ids)
		logger.Debug().Int("count", set.Len()).Msg("Restored persisted selection")
	}

	return &Accumulator{
		set:    set,
		store:  store,
		logger: logger,
	}
}

// Has reports whether a record is selected.
func (a *Accumulator) Has(id int) bool { return a.set.Has(id) }

// Count returns the number of selected records.
func (a *Accumulator) Count() int { return a.set.Len() }

// Pending returns the outstanding count of a cross-page walk. It is zero
// unless a walk is in progress.
func (a *Accumulator) Pending() int { return a.pending }

// IDs returns the selected identifiers in ascending order.
func (a *Accumulator) IDs() []int { return a.set.IDs() }

// save mirrors the full set to the store.
func (a *Accumulator) save() error {
	return a.store.SaveSelection(a.set.IDs())
}

// Toggle flips one record, persists the set, and reports whether the
// record is now selected.
func (a *Accumulator) Toggle(id int) (bool, error) {
	selected := a.set.Toggle(id)
	return selected, a.save()
}

// AllSelected reports whether every record on the page is selected.
func (a *Accumulator) AllSelected(page *catalog.Page) bool {
	if len(page.Artworks) == 0 {
		return false
	}
	for _, id := range page.IDs() {
		if !a.set.Has(id) {
			return false
		}
	}
	return true
}

// SelectPage adds every identifier visible on the page.
func (a *Accumulator) SelectPage(page *catalog.Page) error {
	changed := false
	for _, id := range page.IDs() {
		if a.set.Add(id) {
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return a.save()
}

// DeselectPage removes every identifier visible on the page.
func (a *Accumulator) DeselectPage(page *catalog.Page) error {
	changed := false
	for _, id := range page.IDs() {
		if a.set.Remove(id) {
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return a.save()
}

// Clear removes every selected record and persists the empty set.
func (a *Accumulator) Clear() error {
	if a.set.Len() == 0 {
		return nil
	}
	a.set = NewSet()
	return a.save()
}

// SelectFirstN selects the first n records overall, starting from the
// current page. Identifiers are taken from the page in server-returned
// order; the shortfall beyond the page becomes the pending count and is
// satisfied by Walk. Returns how many positions the current page covered.
//
// n <= 0 is rejected with ErrInvalidCount and no state change.
func (a *Accumulator) SelectFirstN(n int, current *catalog.Page) (int, error) {
	if n <= 0 {
		return 0, ErrInvalidCount
	}

	took := 0
	for _, id := range current.IDs() {
		if took == n {
			break
		}
		a.set.Add(id)
		took++
	}

	a.pending = n - took

	a.logger.Debug().
		Int("requested", n).
		Int("from_page", took).
		Int("pending", a.pending).
		Msg("Select first N")

	return took, a.save()
}
