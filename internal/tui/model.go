// Package tui implements the terminal interface: a paginated, sortable
// artwork table with cross-page selection.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/Sternrassler/artic-catalog/internal/tui/components"
	"github.com/Sternrassler/artic-catalog/internal/tui/styles"
	"github.com/Sternrassler/artic-catalog/pkg/catalog"
	"github.com/Sternrassler/artic-catalog/pkg/selection"
)

// sortCycle is the order the sort key steps through. The empty field is
// the server's default relevance order.
var sortCycle = []string{"", catalog.SortTitle, catalog.SortOrigin, catalog.SortDateStart}

// Model is the root bubbletea model.
type Model struct {
	fetcher selection.PageFetcher
	acc     *selection.Accumulator
	keys    KeyMap

	table      table.Model
	countModal components.InputModal
	filter     textinput.Model

	req       catalog.PageRequest
	page      *catalog.Page
	visible   []catalog.Artwork
	loading   bool
	walking   bool
	walkAdded int
	seq       int

	filtering bool

	status    string
	statusErr bool

	width    int
	height   int
	showHelp bool
}

// NewModel creates the root model. The first page loads on Init.
func NewModel(fetcher selection.PageFetcher, acc *selection.Accumulator, pageSize int) Model {
	columns := []table.Column{
		{Title: " ", Width: 2},
		{Title: "ID", Width: 8},
		{Title: "Title", Width: 40},
		{Title: "Artist", Width: 28},
		{Title: "Origin", Width: 16},
		{Title: "Date", Width: 11},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(pageSize),
	)
	ts := table.DefaultStyles()
	ts.Header = styles.TableHeaderStyle
	ts.Selected = styles.TableSelectedStyle
	t.SetStyles(ts)

	fi := textinput.New()
	fi.Placeholder = "filter this page..."
	fi.CharLimit = 60
	fi.Width = 30
	fi.Prompt = "/"
	fi.PromptStyle = styles.AccentStyle

	return Model{
		fetcher:    fetcher,
		acc:        acc,
		keys:       Keys,
		table:      t,
		countModal: components.NewInputModal(),
		filter:     fi,
		req:        catalog.PageRequest{Page: 1, Limit: pageSize},
		loading:    true,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return LoadPageCmd(m.fetcher, m.req, m.seq)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width - 2)
		return m, nil

	case PageLoadedMsg:
		if msg.Seq != m.seq {
			// A later request superseded this one.
			return m, nil
		}
		m.loading = false
		m.page = msg.Page
		m.req = msg.Request
		m.rebuildRows()
		m.table.SetCursor(0)
		return m, nil

	case PageLoadFailedMsg:
		if msg.Seq != m.seq {
			return m, nil
		}
		m.loading = false
		return m.setError(fmt.Sprintf("page %d failed to load: %v", msg.Request.Page, msg.Err))

	case WalkPageMsg:
		return m.handleWalkPage(msg)

	case ClearStatusMsg:
		m.status = ""
		m.statusErr = false
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Modal and filter capture input before global bindings.
	if m.countModal.IsVisible() {
		var cmd tea.Cmd
		var submitted bool
		m.countModal, cmd, submitted = m.countModal.Update(msg)
		if submitted {
			value := m.countModal.Value()
			m.countModal.Hide()
			return m.submitSelectCount(value)
		}
		return m, cmd
	}

	if m.filtering {
		switch msg.String() {
		case "enter":
			m.filtering = false
			m.filter.Blur()
			return m, nil
		case "esc":
			m.filtering = false
			m.filter.Blur()
			m.filter.SetValue("")
			m.rebuildRows()
			return m, nil
		}
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.rebuildRows()
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		if m.filter.Value() != "" {
			m.filter.SetValue("")
			m.rebuildRows()
			return m, nil
		}
		m.showHelp = false
		return m, nil

	case key.Matches(msg, m.keys.NextPage):
		if m.page != nil && m.req.Page >= m.page.Pagination.TotalPages {
			return m, nil
		}
		return m.loadPage(m.req.Page + 1)

	case key.Matches(msg, m.keys.PrevPage):
		if m.req.Page <= 1 {
			return m, nil
		}
		return m.loadPage(m.req.Page - 1)

	case key.Matches(msg, m.keys.Refresh):
		return m.loadPage(m.req.Page)

	case key.Matches(msg, m.keys.Sort):
		return m.cycleSort()

	case key.Matches(msg, m.keys.Reverse):
		if m.req.SortField == "" {
			return m.setError("no sort field active")
		}
		m.req.SortDesc = !m.req.SortDesc
		return m.loadPage(1)

	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.filter.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Toggle):
		return m.toggleCurrent()

	case key.Matches(msg, m.keys.TogglePage):
		return m.togglePage()

	case key.Matches(msg, m.keys.SelectN):
		if m.walking {
			return m.setError("a selection walk is already running")
		}
		m.countModal.Show("Select first N artworks")
		return m, textinput.Blink

	case key.Matches(msg, m.keys.ClearAll):
		if m.walking {
			return m.setError("a selection walk is already running")
		}
		if err := m.acc.Clear(); err != nil {
			return m.setError(fmt.Sprintf("failed to clear selection: %v", err))
		}
		m.rebuildRows()
		return m.setStatus("selection cleared")
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// handleWalkPage absorbs one fetched walk page into the selection and
// issues the next step while pending remains. The accumulator is only
// touched here, on the event loop; the fetch ran elsewhere.
func (m Model) handleWalkPage(msg WalkPageMsg) (tea.Model, tea.Cmd) {
	if !m.walking {
		return m, nil
	}

	if msg.Err != nil {
		m.acc.FailWalk(msg.Err)
		m.walking = false
		m.rebuildRows()
		return m.setError(fmt.Sprintf("selection stopped after %d added, partial selection kept: %v", m.walkAdded, msg.Err))
	}

	res := m.acc.Absorb(msg.Page, msg.Request.Page)
	m.walkAdded += res.Added
	m.rebuildRows()

	if res.Outcome == selection.StepContinue {
		next := msg.Request
		next.Page = res.NextPage
		return m, WalkStepCmd(m.fetcher, next)
	}

	m.walking = false
	return m.setStatus(fmt.Sprintf("%d added from following pages, %d selected", m.walkAdded, m.acc.Count()))
}

// loadPage requests a page, superseding any load still in flight. The
// request is recorded immediately so rapid paging advances from the
// latest requested page, not the latest loaded one.
func (m Model) loadPage(page int) (tea.Model, tea.Cmd) {
	req := m.req
	req.Page = page
	m.req = req
	m.loading = true
	m.seq++
	return m, LoadPageCmd(m.fetcher, req, m.seq)
}

func (m Model) cycleSort() (tea.Model, tea.Cmd) {
	next := 0
	for i, field := range sortCycle {
		if field == m.req.SortField {
			next = (i + 1) % len(sortCycle)
			break
		}
	}
	m.req.SortField = sortCycle[next]
	m.req.SortDesc = false
	return m.loadPage(1)
}

func (m Model) toggleCurrent() (tea.Model, tea.Cmd) {
	if m.walking {
		return m.setError("a selection walk is already running")
	}
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.visible) {
		return m, nil
	}
	id := m.visible[cursor].ID
	selected, err := m.acc.Toggle(id)
	if err != nil {
		return m.setError(fmt.Sprintf("failed to persist selection: %v", err))
	}
	m.rebuildRows()
	if selected {
		return m.setStatus(fmt.Sprintf("selected #%d, %d total", id, m.acc.Count()))
	}
	return m.setStatus(fmt.Sprintf("deselected #%d, %d total", id, m.acc.Count()))
}

func (m Model) togglePage() (tea.Model, tea.Cmd) {
	if m.walking {
		return m.setError("a selection walk is already running")
	}
	if m.page == nil {
		return m, nil
	}

	var err error
	var what string
	if m.acc.AllSelected(m.page) {
		err = m.acc.DeselectPage(m.page)
		what = "deselected page"
	} else {
		err = m.acc.SelectPage(m.page)
		what = "selected page"
	}
	if err != nil {
		return m.setError(fmt.Sprintf("failed to persist selection: %v", err))
	}
	m.rebuildRows()
	return m.setStatus(fmt.Sprintf("%s, %d total", what, m.acc.Count()))
}

// submitSelectCount handles the select-first-N prompt. Anything that is
// not a positive number is rejected without touching the selection.
func (m Model) submitSelectCount(value string) (tea.Model, tea.Cmd) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return m.setError(fmt.Sprintf("%q is not a positive number", value))
	}
	if m.page == nil {
		return m.setError("no page loaded yet")
	}

	took, err := m.acc.SelectFirstN(n, m.page)
	if err != nil {
		return m.setError(fmt.Sprintf("selection failed: %v", err))
	}
	m.rebuildRows()

	if m.acc.Pending() > 0 {
		m.walking = true
		m.walkAdded = 0
		m.status = fmt.Sprintf("selected %d on this page, fetching %d more...", took, m.acc.Pending())
		m.statusErr = false
		return m, WalkStepCmd(m.fetcher, m.req.Next())
	}
	return m.setStatus(fmt.Sprintf("selected first %d, %d total", n, m.acc.Count()))
}

func (m Model) setStatus(text string) (tea.Model, tea.Cmd) {
	m.status = text
	m.statusErr = false
	return m, ClearStatusCmd()
}

func (m Model) setError(text string) (tea.Model, tea.Cmd) {
	m.status = text
	m.statusErr = true
	return m, ClearStatusCmd()
}

// rebuildRows recomputes the visible artworks for the current page and
// filter, then feeds them to the table.
func (m *Model) rebuildRows() {
	if m.page == nil {
		m.visible = nil
		m.table.SetRows(nil)
		return
	}

	m.visible = filterArtworks(m.page.Artworks, m.filter.Value())

	rows := make([]table.Row, len(m.visible))
	for i, art := range m.visible {
		mark := styles.UnselectedChar
		if m.acc.Has(art.ID) {
			mark = styles.SelectedChar
		}
		rows[i] = table.Row{
			mark,
			strconv.Itoa(art.ID),
			styles.Truncate(art.Title, 40),
			styles.Truncate(art.ArtistDisplay, 28),
			styles.Truncate(art.PlaceOfOrigin, 16),
			formatDates(art.DateStart, art.DateEnd),
		}
	}
	m.table.SetRows(rows)
}

// filterArtworks narrows the page with a fuzzy match over title and
// artist. An empty query keeps everything.
func filterArtworks(artworks []catalog.Artwork, query string) []catalog.Artwork {
	if query == "" {
		return artworks
	}

	targets := make([]string, len(artworks))
	for i, art := range artworks {
		targets[i] = art.Title + " " + art.ArtistDisplay
	}

	matches := fuzzy.Find(query, targets)
	out := make([]catalog.Artwork, len(matches))
	for i, match := range matches {
		out[i] = artworks[match.Index]
	}
	return out
}

func formatDates(start, end int) string {
	switch {
	case start == 0 && end == 0:
		return "—"
	case start == end || end == 0:
		return strconv.Itoa(start)
	default:
		return fmt.Sprintf("%d–%d", start, end)
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n")

	if m.countModal.IsVisible() {
		b.WriteString(m.countModal.View())
		b.WriteString("\n")
	}

	b.WriteString(m.table.View())
	b.WriteString("\n")

	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}

	b.WriteString(m.footerView())

	if m.showHelp {
		b.WriteString("\n")
		b.WriteString(m.helpView())
	}

	return b.String()
}

func (m Model) headerView() string {
	title := styles.TitleStyle.Render("artcat")

	var info string
	if m.page != nil {
		p := m.page.Pagination
		info = fmt.Sprintf("page %d/%d of %d works", p.CurrentPage, p.TotalPages, p.Total)
	}
	if m.loading {
		info += "  loading..."
	}

	sel := fmt.Sprintf("%d selected", m.acc.Count())
	if m.walking {
		sel += fmt.Sprintf(" (+%d pending)", m.acc.Pending())
	}

	sortLabel := "relevance"
	if m.req.SortField != "" {
		sortLabel = m.req.SortField
		if m.req.SortDesc {
			sortLabel += " desc"
		}
	}

	return styles.HeaderStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Center,
			title, "  ",
			styles.SubtitleStyle.Render(info), "  ",
			styles.AccentStyle.Render(sel), "  ",
			styles.DimStyle.Render("sort: "+sortLabel),
		),
	)
}

func (m Model) footerView() string {
	if m.status != "" {
		if m.statusErr {
			return styles.StatusStyle.Render(styles.ErrorStyle.Render(m.status))
		}
		return styles.StatusStyle.Render(styles.SuccessStyle.Render(m.status))
	}
	return styles.StatusStyle.Render(
		styles.DimStyle.Render("space toggle • a page • n first N • s sort • / filter • ? help • q quit"),
	)
}

func (m Model) helpView() string {
	bindings := []key.Binding{
		m.keys.Up, m.keys.Down, m.keys.PrevPage, m.keys.NextPage,
		m.keys.Toggle, m.keys.TogglePage, m.keys.SelectN, m.keys.ClearAll,
		m.keys.Sort, m.keys.Reverse, m.keys.Filter, m.keys.Refresh,
		m.keys.Help, m.keys.Quit,
	}

	var lines []string
	for _, b := range bindings {
		h := b.Help()
		lines = append(lines, fmt.Sprintf("%s  %s",
			styles.HelpKeyStyle.Render(fmt.Sprintf("%-8s", h.Key)),
			styles.HelpDescStyle.Render(h.Desc)))
	}
	return strings.Join(lines, "\n")
}
