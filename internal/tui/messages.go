package tui

import (
	"github.com/Sternrassler/artic-catalog/pkg/catalog"
)

// Message types for the TUI

// PageLoadedMsg signals that a catalog page has been loaded. Seq ties
// the result to the request that started it so stale pages from rapid
// paging can be discarded.
type PageLoadedMsg struct {
	Page    *catalog.Page
	Request catalog.PageRequest
	Seq     int
}

// PageLoadFailedMsg signals that a page fetch failed. The previously
// displayed page stays on screen.
type PageLoadFailedMsg struct {
	Err     error
	Request catalog.PageRequest
	Seq     int
}

// WalkPageMsg delivers one fetched page of a cross-page selection walk.
// The model absorbs it into the selection on the event loop and decides
// whether to fetch the next page; the fetching goroutine never touches
// the accumulator.
type WalkPageMsg struct {
	Page    *catalog.Page
	Request catalog.PageRequest
	Err     error
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}
