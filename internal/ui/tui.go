package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/srndpty/j-law-grep/internal/api"
	"github.com/srndpty/j-law-grep/internal/config"
	"github.com/srndpty/j-law-grep/internal/controller"
	apperrors "github.com/srndpty/j-law-grep/internal/errors"
	"github.com/srndpty/j-law-grep/internal/history"
	"github.com/srndpty/j-law-grep/internal/snippet"
)

// Focusable form fields, in tab order.
const (
	focusQuery = iota
	focusMode
	focusLaw
	focusYear
	focusCount
)

// Messages delivered to the model.
type (
	// searchDoneMsg carries the outcome of one search round trip. The
	// sequence number lets the controller discard superseded completions.
	searchDoneMsg struct {
		seq  uint64
		resp *api.SearchResponse
		err  error
	}

	// ConfigReloadedMsg is sent from outside the program when the config
	// file changes on disk.
	ConfigReloadedMsg struct {
		Cfg *config.Config
	}

	historyLoadedMsg struct {
		entries []history.Entry
	}
)

// SearcherFactory builds a searcher for the given configuration. The
// model uses it to swap backends when the config file is reloaded.
type SearcherFactory func(cfg *config.Config) api.Searcher

// Model is the bubbletea model for the search screen. All interaction
// state lives in the controller; the model owns only presentation.
type Model struct {
	ctrl      *controller.Controller
	searcher  api.Searcher
	newSearch SearcherFactory
	hist      *history.Store
	endpoint  string

	query   textinput.Model
	law     textinput.Model
	year    textinput.Model
	spinner spinner.Model
	results viewport.Model
	styles  Styles

	focus       int
	width       int
	height      int
	ready       bool
	quitting    bool
	histEntries []history.Entry
	histIdx     int // -1 means not cycling
}

// NewModel creates the search screen model. The initial controller state
// comes from the config defaults; the first search fires on Init.
func NewModel(cfg *config.Config, factory SearcherFactory, hist *history.Store) *Model {
	ctrl := controller.New(controller.State{
		Query:    cfg.Defaults.Query,
		Mode:     api.ParseMode(cfg.Defaults.Mode),
		Filters:  controller.Filters{Law: cfg.Defaults.Law, Year: cfg.Defaults.Year},
		Page:     1,
		PageSize: cfg.PageSize,
	}, controller.WithLiveSearch(cfg.LiveSearch))

	styles := GetStyles(DetectNoColor())

	query := textinput.New()
	query.Prompt = ""
	query.SetValue(ctrl.State().Query)
	query.Focus()

	law := textinput.New()
	law.Prompt = ""
	law.Placeholder = "法令名"
	law.SetValue(ctrl.State().Filters.Law)
	law.CharLimit = 64

	year := textinput.New()
	year.Prompt = ""
	year.Placeholder = "施行年"
	year.SetValue(ctrl.State().Filters.Year)
	year.CharLimit = 4

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorIndigo))

	return &Model{
		ctrl:      ctrl,
		searcher:  factory(cfg),
		newSearch: factory,
		hist:      hist,
		endpoint:  cfg.Endpoint,
		query:     query,
		law:       law,
		year:      year,
		spinner:   sp,
		styles:    styles,
		histIdx:   -1,
	}
}

// Controller exposes the interaction controller, used by tests.
func (m *Model) Controller() *controller.Controller {
	return m.ctrl
}

// Init implements tea.Model. The initial mount submits exactly once so
// the user sees results without acting.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.submitCmd(),
		m.loadHistoryCmd(),
	)
}

// submitCmd snapshots the controller state and performs the search
// asynchronously. The controller is mutated here, on the update loop;
// the returned command only does I/O.
func (m *Model) submitCmd() tea.Cmd {
	seq, req := m.ctrl.Submit()
	searcher := m.searcher
	hist := m.hist

	slog.Info("search_submitted",
		slog.Uint64("seq", seq),
		slog.String("query", req.Q),
		slog.String("mode", string(req.Mode)))

	return func() tea.Msg {
		if hist != nil {
			if err := hist.Append(req); err != nil {
				slog.Warn("history_append_failed", slog.String("error", err.Error()))
			}
		}
		resp, err := searcher.Search(context.Background(), req)
		return searchDoneMsg{seq: seq, resp: resp, err: err}
	}
}

func (m *Model) loadHistoryCmd() tea.Cmd {
	if m.hist == nil {
		return nil
	}
	hist := m.hist
	return func() tea.Msg {
		entries, err := hist.Recent(50)
		if err != nil {
			slog.Warn("history_read_failed", slog.String("error", err.Error()))
			return nil
		}
		return historyLoadedMsg{entries: entries}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.query.Width = max(20, msg.Width-16)
		m.results.Width = msg.Width
		m.results.Height = max(3, msg.Height-10)
		m.ready = true
		m.refreshResults()
		return m, nil

	case searchDoneMsg:
		if m.ctrl.Resolve(msg.seq, msg.resp, msg.err) {
			if msg.err != nil {
				slog.Warn("search_failed",
					slog.Uint64("seq", msg.seq),
					slog.Any("error", apperrors.FormatForLog(msg.err)))
			} else {
				slog.Info("search_complete",
					slog.Uint64("seq", msg.seq),
					slog.Int("total", msg.resp.Total),
					slog.Int("took_ms", msg.resp.TookMS))
			}
			m.refreshResults()
		}
		return m, m.loadHistoryCmd()

	case historyLoadedMsg:
		m.histEntries = msg.entries
		return m, nil

	case ConfigReloadedMsg:
		m.searcher = m.newSearch(msg.Cfg)
		m.endpoint = msg.Cfg.Endpoint
		m.ctrl.SetLiveSearch(msg.Cfg.LiveSearch)
		m.ctrl.SetPageSize(msg.Cfg.PageSize)
		slog.Info("config_reloaded", slog.String("endpoint", m.endpoint))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "enter":
		return m, m.submitCmd()

	case "tab":
		m.setFocus((m.focus + 1) % focusCount)
		return m, nil

	case "shift+tab":
		m.setFocus((m.focus + focusCount - 1) % focusCount)
		return m, nil

	case "pgdown":
		if m.ctrl.SetPage(m.ctrl.State().Page + 1) {
			return m, m.submitCmd()
		}
		return m, nil

	case "pgup":
		if m.ctrl.SetPage(m.ctrl.State().Page - 1) {
			return m, m.submitCmd()
		}
		return m, nil
	}

	switch m.focus {
	case focusMode:
		switch msg.String() {
		case " ", "left", "right":
			return m, m.toggleMode()
		}
		return m, nil

	case focusQuery:
		switch msg.String() {
		case "up":
			m.cycleHistory(1)
			return m, nil
		case "down":
			m.cycleHistory(-1)
			return m, nil
		}
	}

	return m, m.updateFocusedInput(msg)
}

// updateFocusedInput forwards a key to the focused text input and syncs
// the controller with the edited value. Typing never issues a request;
// filter edits may under live search.
func (m *Model) updateFocusedInput(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case focusQuery:
		m.query, cmd = m.query.Update(msg)
		m.ctrl.SetQuery(m.query.Value())
		m.histIdx = -1
	case focusLaw:
		m.law, cmd = m.law.Update(msg)
		if m.ctrl.SetFilter(api.FilterLaw, m.law.Value()) {
			return tea.Batch(cmd, m.submitCmd())
		}
	case focusYear:
		m.year, cmd = m.year.Update(msg)
		if m.ctrl.SetFilter(api.FilterYear, m.year.Value()) {
			return tea.Batch(cmd, m.submitCmd())
		}
	}
	return cmd
}

func (m *Model) toggleMode() tea.Cmd {
	next := api.ModeLiteral
	if m.ctrl.State().Mode == api.ModeLiteral {
		next = api.ModeRegex
	}
	if m.ctrl.SetMode(next) {
		return m.submitCmd()
	}
	return nil
}

// cycleHistory walks recent queries from the query field. dir > 0 moves
// to older entries.
func (m *Model) cycleHistory(dir int) {
	if len(m.histEntries) == 0 {
		return
	}
	m.histIdx += dir
	if m.histIdx < 0 {
		m.histIdx = -1
		return
	}
	if m.histIdx >= len(m.histEntries) {
		m.histIdx = len(m.histEntries) - 1
	}
	q := m.histEntries[m.histIdx].Query
	m.query.SetValue(q)
	m.query.CursorEnd()
	m.ctrl.SetQuery(q)
}

func (m *Model) setFocus(f int) {
	m.focus = f
	m.query.Blur()
	m.law.Blur()
	m.year.Blur()
	switch f {
	case focusQuery:
		m.query.Focus()
	case focusLaw:
		m.law.Focus()
	case focusYear:
		m.year.Focus()
	}
}

// refreshResults re-renders the result cards into the viewport.
func (m *Model) refreshResults() {
	m.results.SetContent(m.renderHits())
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var sections []string
	sections = append(sections, m.styles.Header.Render("jlawgrep")+m.styles.Dim.Render(" • "+m.endpoint))
	sections = append(sections, m.renderForm())
	sections = append(sections, m.renderStatus())
	if m.ready {
		sections = append(sections, m.results.View())
	} else {
		sections = append(sections, m.renderHits())
	}
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m *Model) renderForm() string {
	label := func(f int, text string) string {
		if m.focus == f {
			return m.styles.Active.Render(text)
		}
		return m.styles.Label.Render(text)
	}

	queryLine := fmt.Sprintf("%s %s", label(focusQuery, "検索語:"), m.query.View())
	modeLine := fmt.Sprintf("%s %s", label(focusMode, "モード:"), m.renderModeToggle())
	filterLine := fmt.Sprintf("%s %s  %s %s",
		label(focusLaw, "法令名:"), m.law.View(),
		label(focusYear, "施行年:"), m.year.View())

	return strings.Join([]string{queryLine, modeLine, filterLine}, "\n")
}

func (m *Model) renderModeToggle() string {
	mode := m.ctrl.State().Mode
	render := func(target api.Mode, text string) string {
		if mode == target {
			return m.styles.Active.Render("● " + text)
		}
		return m.styles.Dim.Render("○ " + text)
	}
	return render(api.ModeLiteral, "literal") + "  " + render(api.ModeRegex, "regex")
}

// renderStatus renders the lines between the form and the results: the
// spinner while loading, the error banner after a failure, and the
// summary of the last successful response. A failed resubmit never hides
// the summary: the banner sits above it, over the stale results.
func (m *Model) renderStatus() string {
	vm := m.ctrl.View()
	var lines []string

	if vm.Loading {
		lines = append(lines, fmt.Sprintf("%s 検索中...", m.spinner.View()))
	}
	if vm.Err != "" {
		banner := "✗ " + vm.Err
		if vm.Retryable {
			banner += "（enterで再試行）"
		}
		lines = append(lines, m.styles.Error.Render(banner))
	}
	if !vm.Loading {
		lines = append(lines, m.styles.Summary.Render(
			fmt.Sprintf("検索結果 %d件 (%d ms) — %d頁", vm.Response.Total, vm.Response.TookMS, m.ctrl.State().Page)))
	}

	return strings.Join(lines, "\n")
}

// renderHits renders all result cards, or the explicit empty state.
func (m *Model) renderHits() string {
	vm := m.ctrl.View()

	if len(vm.Response.Hits) == 0 {
		if vm.Loading {
			return ""
		}
		return m.styles.Dim.Render("該当する条文が見つかりませんでした")
	}

	cards := make([]string, 0, len(vm.Response.Hits))
	for _, hit := range vm.Response.Hits {
		cards = append(cards, m.renderHit(hit))
	}
	return strings.Join(cards, "\n"+m.styles.Border.Render(strings.Repeat("─", max(20, m.width-2)))+"\n")
}

// renderHit renders one result card: path label, snippet with highlight
// segments styled, and a permalink only when the URL is non-empty.
func (m *Model) renderHit(hit api.SearchHit) string {
	var sb strings.Builder

	sb.WriteString(m.styles.Path.Render(hit.Path))
	if hit.Line > 0 {
		sb.WriteString(m.styles.Dim.Render(fmt.Sprintf(":%d", hit.Line)))
	}
	sb.WriteString("\n  ")

	for _, seg := range snippet.Parse(hit.Snippet) {
		if seg.Highlight {
			sb.WriteString(m.styles.Highlight.Render(seg.Text))
		} else {
			sb.WriteString(seg.Text)
		}
	}

	if hit.URL != "" {
		sb.WriteString("\n  ")
		sb.WriteString(m.styles.Permalink.Render(hit.URL))
	}

	return sb.String()
}

func (m *Model) renderFooter() string {
	return m.styles.Dim.Render("tab: 項目移動 • enter: 検索 • pgup/pgdn: 頁送り • ↑↓: 履歴 • esc: 終了")
}

// Run starts the TUI program and blocks until it exits. The returned
// program handle is delivered through onStart so callers can Send
// messages (config reloads) into the running program.
func Run(model *Model, onStart func(*tea.Program)) error {
	p := tea.NewProgram(model, tea.WithAltScreen())
	if onStart != nil {
		onStart(p)
	}
	_, err := p.Run()
	return err
}
