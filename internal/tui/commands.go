package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Sternrassler/artic-catalog/pkg/catalog"
	"github.com/Sternrassler/artic-catalog/pkg/selection"
)

// Command factories for async operations

const pageLoadTimeout = 30 * time.Second

// LoadPageCmd fetches one catalog page. The sequence number comes back
// in the resulting message so the model can ignore stale responses.
func LoadPageCmd(fetcher selection.PageFetcher, req catalog.PageRequest, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), pageLoadTimeout)
		defer cancel()

		page, err := fetcher.FetchPage(ctx, req)
		if err != nil {
			return PageLoadFailedMsg{Err: err, Request: req, Seq: seq}
		}
		return PageLoadedMsg{Page: page, Request: req, Seq: seq}
	}
}

// WalkStepCmd fetches one page of a cross-page selection walk. It only
// fetches; the model absorbs the page into the accumulator when the
// message arrives, so all selection state stays on the event loop.
func WalkStepCmd(fetcher selection.PageFetcher, req catalog.PageRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), pageLoadTimeout)
		defer cancel()

		page, err := fetcher.FetchPage(ctx, req)
		if err != nil {
			return WalkPageMsg{Err: err, Request: req}
		}
		return WalkPageMsg{Page: page, Request: req}
	}
}

// ClearStatusCmd clears the status bar after a short delay.
func ClearStatusCmd() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
