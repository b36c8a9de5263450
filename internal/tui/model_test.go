package tui

import (
	"context"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Sternrassler/artic-catalog/pkg/catalog"
	"github.com/Sternrassler/artic-catalog/pkg/selection"
)

// fakeFetcher serves synthetic pages of a fixed-size catalog.
type fakeFetcher struct {
	total    int
	failPage int
	requests []int
}

func (f *fakeFetcher) FetchPage(_ context.Context, req catalog.PageRequest) (*catalog.Page, error) {
	f.requests = append(f.requests, req.Page)
	if f.failPage != 0 && req.Page == f.failPage {
		return nil, &catalog.APIError{StatusCode: 500, Class: catalog.ErrorClassServer, Message: "boom"}
	}

	offset := (req.Page - 1) * req.Limit
	count := req.Limit
	if offset+count > f.total {
		count = f.total - offset
	}
	if count < 0 {
		count = 0
	}

	artworks := make([]catalog.Artwork, count)
	for i := range artworks {
		artworks[i] = catalog.Artwork{
			ID:    1000 + offset + i,
			Title: fmt.Sprintf("Work %d", offset+i+1),
		}
	}

	return &catalog.Page{
		Artworks: artworks,
		Pagination: catalog.Pagination{
			Total:       f.total,
			Limit:       req.Limit,
			Offset:      offset,
			TotalPages:  (f.total + req.Limit - 1) / req.Limit,
			CurrentPage: req.Page,
		},
	}, nil
}

type memStore struct {
	saved [][]int
}

func (s *memStore) LoadSelection() ([]int, bool) { return nil, false }
func (s *memStore) SaveSelection(ids []int) error {
	s.saved = append(s.saved, append([]int(nil), ids...))
	return nil
}

func newTestModel(t *testing.T, total, pageSize int) (Model, *fakeFetcher) {
	t.Helper()
	fetcher := &fakeFetcher{total: total}
	acc := selection.NewAccumulator(&memStore{})
	m := NewModel(fetcher, acc, pageSize)

	// Deliver the initial page load synchronously.
	msg := m.Init()()
	updated, _ := m.Update(msg)
	return updated.(Model), fetcher
}

func keyPress(k string) tea.KeyMsg {
	if k == "space" {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func TestModel_InitialPageLoad(t *testing.T) {
	m, fetcher := newTestModel(t, 100, 12)

	if m.loading {
		t.Error("expected loading to finish")
	}
	if m.page == nil {
		t.Fatal("expected a loaded page")
	}
	if m.page.Pagination.CurrentPage != 1 {
		t.Errorf("expected page 1, got %d", m.page.Pagination.CurrentPage)
	}
	if len(m.visible) != 12 {
		t.Errorf("expected 12 visible rows, got %d", len(m.visible))
	}
	if len(fetcher.requests) != 1 || fetcher.requests[0] != 1 {
		t.Errorf("expected single fetch of page 1, got %v", fetcher.requests)
	}
}

func TestModel_PageNavigation(t *testing.T) {
	m, _ := newTestModel(t, 100, 12)

	updated, cmd := m.Update(keyPress("l"))
	m = updated.(Model)
	if !m.loading {
		t.Error("expected loading during page change")
	}
	if cmd == nil {
		t.Fatal("expected a load command")
	}

	updated, _ = m.Update(cmd())
	m = updated.(Model)
	if m.page.Pagination.CurrentPage != 2 {
		t.Errorf("expected page 2, got %d", m.page.Pagination.CurrentPage)
	}

	// Back on page 1 the previous-page key is a no-op.
	updated, cmd = m.Update(keyPress("h"))
	m = updated.(Model)
	updated, _ = m.Update(cmd())
	m = updated.(Model)
	if _, cmd := m.Update(keyPress("h")); cmd != nil {
		t.Error("expected no command when already on the first page")
	}
}

func TestModel_StalePageDiscarded(t *testing.T) {
	m, _ := newTestModel(t, 100, 12)

	// Two rapid page changes; only the last response may land.
	updated, cmdA := m.Update(keyPress("l"))
	m = updated.(Model)
	updated, cmdB := m.Update(keyPress("l"))
	m = updated.(Model)

	// The late arrival of the first response must not clobber the second.
	msgB := cmdB()
	msgA := cmdA()

	updated, _ = m.Update(msgB)
	m = updated.(Model)
	if m.page.Pagination.CurrentPage != 3 {
		t.Fatalf("expected page 3, got %d", m.page.Pagination.CurrentPage)
	}

	updated, _ = m.Update(msgA)
	m = updated.(Model)
	if m.page.Pagination.CurrentPage != 3 {
		t.Errorf("stale page overwrote current page, got %d", m.page.Pagination.CurrentPage)
	}
}

func TestModel_PageLoadFailureKeepsCurrentPage(t *testing.T) {
	m, fetcher := newTestModel(t, 100, 12)
	fetcher.failPage = 2

	updated, cmd := m.Update(keyPress("l"))
	m = updated.(Model)
	updated, _ = m.Update(cmd())
	m = updated.(Model)

	if m.page == nil || m.page.Pagination.CurrentPage != 1 {
		t.Error("expected page 1 to remain on screen after failed load")
	}
	if !m.statusErr || m.status == "" {
		t.Error("expected an error status message")
	}
}

func TestModel_ToggleRow(t *testing.T) {
	m, _ := newTestModel(t, 100, 12)

	updated, _ := m.Update(keyPress("space"))
	m = updated.(Model)

	if m.acc.Count() != 1 {
		t.Fatalf("expected 1 selected, got %d", m.acc.Count())
	}
	if !m.acc.Has(1000) {
		t.Error("expected first row (ID 1000) selected")
	}

	updated, _ = m.Update(keyPress("space"))
	m = updated.(Model)
	if m.acc.Count() != 0 {
		t.Errorf("expected toggle off, got %d selected", m.acc.Count())
	}
}

func TestModel_TogglePage(t *testing.T) {
	m, _ := newTestModel(t, 100, 12)

	updated, _ := m.Update(keyPress("a"))
	m = updated.(Model)
	if m.acc.Count() != 12 {
		t.Fatalf("expected full page selected, got %d", m.acc.Count())
	}

	updated, _ = m.Update(keyPress("a"))
	m = updated.(Model)
	if m.acc.Count() != 0 {
		t.Errorf("expected page deselected, got %d", m.acc.Count())
	}
}

func TestModel_SelectFirstN_WithinPage(t *testing.T) {
	m, _ := newTestModel(t, 100, 12)

	updated, cmd := m.submitSelectCount("5")
	m = updated.(Model)

	if m.acc.Count() != 5 {
		t.Fatalf("expected 5 selected, got %d", m.acc.Count())
	}
	if m.walking {
		t.Error("expected no walk for an in-page count")
	}
	if cmd == nil {
		t.Error("expected a status-clear command")
	}
}

func TestModel_SelectFirstN_InvalidInput(t *testing.T) {
	m, _ := newTestModel(t, 100, 12)

	for _, input := range []string{"abc", "", "-3", "0", "1.5"} {
		updated, _ := m.submitSelectCount(input)
		m = updated.(Model)
		if m.acc.Count() != 0 {
			t.Errorf("input %q changed the selection", input)
		}
		if !m.statusErr {
			t.Errorf("input %q did not produce an error status", input)
		}
	}
}

// pumpWalk runs the walk to completion by executing each step command and
// feeding its message back through Update, the way the runtime would.
func pumpWalk(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for cmd != nil && m.walking {
		updated, next := m.Update(cmd())
		m = updated.(Model)
		cmd = next
	}
	return m
}

func TestModel_SelectFirstN_CrossPageWalk(t *testing.T) {
	m, fetcher := newTestModel(t, 100, 12)

	updated, cmd := m.submitSelectCount("30")
	m = updated.(Model)

	if !m.walking {
		t.Fatal("expected a walk for a cross-page count")
	}
	if m.acc.Count() != 12 {
		t.Fatalf("expected 12 selected before walk, got %d", m.acc.Count())
	}
	if m.acc.Pending() != 18 {
		t.Fatalf("expected 18 pending, got %d", m.acc.Pending())
	}

	m = pumpWalk(t, m, cmd)

	if m.walking {
		t.Error("expected walk flag cleared")
	}
	if m.acc.Count() != 30 {
		t.Errorf("expected 30 selected after walk, got %d", m.acc.Count())
	}
	if m.acc.Pending() != 0 {
		t.Errorf("expected no pending after walk, got %d", m.acc.Pending())
	}

	// Pages 2 and 3 follow the initial page 1 fetch, in order.
	if len(fetcher.requests) != 3 || fetcher.requests[1] != 2 || fetcher.requests[2] != 3 {
		t.Errorf("unexpected fetch order: %v", fetcher.requests)
	}
}

func TestModel_WalkFailureKeepsPartialSelection(t *testing.T) {
	m, fetcher := newTestModel(t, 100, 12)
	fetcher.failPage = 3

	updated, cmd := m.submitSelectCount("40")
	m = updated.(Model)
	m = pumpWalk(t, m, cmd)

	if m.walking {
		t.Error("expected walk flag cleared after failure")
	}
	if m.acc.Count() != 24 {
		t.Errorf("expected 24 selected (pages 1 and 2), got %d", m.acc.Count())
	}
	if m.acc.Pending() != 0 {
		t.Errorf("expected pending reset after failure, got %d", m.acc.Pending())
	}
	if !m.statusErr || m.status == "" {
		t.Error("expected an error status after a failed walk")
	}
}

func TestModel_WalkStopsWhenCatalogExhausted(t *testing.T) {
	m, _ := newTestModel(t, 20, 12)

	updated, cmd := m.submitSelectCount("50")
	m = updated.(Model)
	m = pumpWalk(t, m, cmd)

	if m.walking {
		t.Error("expected walk flag cleared")
	}
	if m.acc.Count() != 20 {
		t.Errorf("expected all 20 artworks selected, got %d", m.acc.Count())
	}
	if m.acc.Pending() != 0 {
		t.Errorf("expected pending forced to zero on exhaustion, got %d", m.acc.Pending())
	}
}

// Walk step commands run on their own goroutines under the runtime while the
// event loop keeps rendering. Only fetches happen off-loop; all selection
// mutation stays in Update, so rendering mid-walk must stay race-free.
func TestModel_ViewDuringWalk(t *testing.T) {
	m, _ := newTestModel(t, 100, 12)

	updated, cmd := m.submitSelectCount("40")
	m = updated.(Model)

	for cmd != nil && m.walking {
		msgCh := make(chan tea.Msg, 1)
		go func(c tea.Cmd) {
			msgCh <- c()
		}(cmd)

		var msg tea.Msg
		for msg == nil {
			_ = m.View()
			select {
			case msg = <-msgCh:
			default:
			}
		}

		updated, next := m.Update(msg)
		m = updated.(Model)
		cmd = next
	}

	if m.acc.Count() != 40 {
		t.Errorf("expected 40 selected after walk, got %d", m.acc.Count())
	}
	if m.walking {
		t.Error("expected walk flag cleared")
	}
}

func TestModel_FilterNarrowsVisibleRows(t *testing.T) {
	m, _ := newTestModel(t, 100, 12)

	m.filter.SetValue("Work 3")
	m.rebuildRows()

	if len(m.visible) == 0 || len(m.visible) == 12 {
		t.Fatalf("expected a narrowed row set, got %d", len(m.visible))
	}
	for _, art := range m.visible {
		if art.Title == "" {
			t.Error("expected filtered rows to keep artwork data")
		}
	}

	m.filter.SetValue("")
	m.rebuildRows()
	if len(m.visible) != 12 {
		t.Errorf("expected full page after clearing filter, got %d", len(m.visible))
	}
}

func TestModel_SortCycling(t *testing.T) {
	m, _ := newTestModel(t, 100, 12)

	updated, cmd := m.Update(keyPress("s"))
	m = updated.(Model)
	if m.req.SortField != catalog.SortTitle {
		t.Fatalf("expected title sort, got %q", m.req.SortField)
	}

	updated, _ = m.Update(cmd())
	m = updated.(Model)
	if m.page.Pagination.CurrentPage != 1 {
		t.Errorf("expected sort change to reload page 1, got %d", m.page.Pagination.CurrentPage)
	}

	// Reverse flips direction for the active field.
	updated, cmd = m.Update(keyPress("S"))
	m = updated.(Model)
	if !m.req.SortDesc {
		t.Error("expected descending sort")
	}
	updated, _ = m.Update(cmd())
	m = updated.(Model)

	// Cycling past the last field returns to default order.
	for i := 0; i < 3; i++ {
		updated, cmd = m.Update(keyPress("s"))
		m = updated.(Model)
		updated, _ = m.Update(cmd())
		m = updated.(Model)
	}
	if m.req.SortField != "" {
		t.Errorf("expected default order after full cycle, got %q", m.req.SortField)
	}
	if m.req.SortDesc {
		t.Error("expected direction reset with default order")
	}
}
