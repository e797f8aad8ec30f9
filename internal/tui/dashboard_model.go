// Package tui implements the interactive terminal dashboard.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rshade/co2focus/internal/chart"
	"github.com/rshade/co2focus/internal/dashboard"
	"github.com/rshade/co2focus/internal/selector"
)

// Default dimensions before the first WindowSizeMsg.
const (
	defaultWidth     = 100
	defaultHeight    = 30
	defaultPrecision = 2
	// chromeHeight is the number of lines around the table.
	chromeHeight = 14
	minTableRows = 5
)

// Options configures NewDashboardModel.
type Options struct {
	// Year is the initial target year; zero means the state's default.
	Year int
	// Precision is the number of decimals shown in table cells.
	Precision int
}

// DashboardModel is the Bubble Tea model for the dashboard. It shows one
// figure at a time as a table and keeps an independent mode per figure.
type DashboardModel struct {
	ctx   context.Context
	state *dashboard.AppState

	ids    []chart.ID
	active int
	year   int
	modes  map[chart.ID]selector.ViewMode

	figures map[chart.ID]chart.Figure
	table   table.Model
	status  string
	err     error

	precision int
	width     int
	height    int
	quitting  bool
}

// NewDashboardModel builds every figure once so switching tabs is instant.
func NewDashboardModel(ctx context.Context, state *dashboard.AppState, opts Options) *DashboardModel {
	m := &DashboardModel{
		ctx:       ctx,
		state:     state,
		ids:       chart.IDs(),
		year:      opts.Year,
		modes:     make(map[chart.ID]selector.ViewMode),
		figures:   make(map[chart.ID]chart.Figure),
		precision: opts.Precision,
		width:     defaultWidth,
		height:    defaultHeight,
	}
	if m.year == 0 {
		m.year = state.DefaultYear
	}
	if m.precision <= 0 {
		m.precision = defaultPrecision
	}
	for _, id := range m.ids {
		if id.ModeDriven() {
			m.modes[id] = selector.ModeAnnual
		}
		fig, err := state.Figure(ctx, m.request(id))
		if err == nil || fig.Error != "" {
			m.figures[id] = fig
		}
	}
	m.refreshTable()
	return m
}

// Init implements tea.Model.
func (m *DashboardModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.refreshTable()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// handleKeyMsg processes keyboard input.
//
//nolint:exhaustive // Only handling the dashboard's key bindings.
func (m *DashboardModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyTab:
		m.selectFigure(m.active + 1)
		return m, nil

	case tea.KeyShiftTab:
		m.selectFigure(m.active - 1)
		return m, nil

	case tea.KeyRight:
		m.stepYear(1)
		return m, nil

	case tea.KeyLeft:
		m.stepYear(-1)
		return m, nil

	case tea.KeyRunes:
		switch string(msg.Runes) {
		case "q":
			m.quitting = true
			return m, tea.Quit
		case "+", "=":
			m.stepYear(1)
			return m, nil
		case "-", "_":
			m.stepYear(-1)
			return m, nil
		case "m":
			m.toggleMode()
			return m, nil
		}
	}

	// Up/down and paging go to the table.
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *DashboardModel) selectFigure(i int) {
	n := len(m.ids)
	m.active = ((i % n) + n) % n
	m.status, m.err = "", nil
	m.refreshTable()
}

// stepYear moves the target year of the regression figure within its bounds.
func (m *DashboardModel) stepYear(delta int) {
	lo, hi := m.state.YearBounds()
	next := m.year + delta
	if next < lo || next > hi {
		m.status = "target year stays within " + yearRange(lo, hi)
		m.err = nil
		return
	}

	prev := m.year
	m.year = next
	if !m.rebuild(chart.FigureRegression) {
		m.year = prev
		return
	}
	m.status = ""
}

// toggleMode flips the active figure's mode. Figures without a mode selector ignore it.
func (m *DashboardModel) toggleMode() {
	id := m.Active()
	if !id.ModeDriven() {
		m.status = "this figure has no mode selector; use +/- to change the year"
		m.err = nil
		return
	}

	prev := m.modes[id]
	m.modes[id] = prev.Toggle()
	if !m.rebuild(id) {
		m.modes[id] = prev
		return
	}
	m.status = ""
}

// rebuild recomputes one figure. On failure the previous figure is kept, the
// error is shown, and false is returned so the caller can restore its input.
// An empty-state figure (model unavailable) replaces the previous one.
func (m *DashboardModel) rebuild(id chart.ID) bool {
	fig, err := m.state.Figure(m.ctx, m.request(id))
	if err != nil && fig.Error == "" {
		m.err = err
		return false
	}
	m.err = nil
	m.figures[id] = fig
	if id == m.Active() {
		m.refreshTable()
	}
	return true
}

func (m *DashboardModel) request(id chart.ID) chart.Request {
	return chart.Request{ID: id, Mode: m.modes[id], Year: m.year}
}

func (m *DashboardModel) refreshTable() {
	height := m.height - chromeHeight
	if height < minTableRows {
		height = minTableRows
	}
	m.table = NewFigureTable(m.figures[m.Active()], m.precision, height)
}

// Active returns the figure currently shown.
func (m *DashboardModel) Active() chart.ID {
	return m.ids[m.active]
}

// Year returns the regression target year.
func (m *DashboardModel) Year() int {
	return m.year
}

// Mode returns the mode selected for id.
func (m *DashboardModel) Mode(id chart.ID) selector.ViewMode {
	return m.modes[id]
}

// Figure returns the figure last built for id.
func (m *DashboardModel) Figure(id chart.ID) chart.Figure {
	return m.figures[id]
}

// Err returns the error from the last rejected input, if any.
func (m *DashboardModel) Err() error {
	return m.err
}

// Quitting reports whether the user asked to exit.
func (m *DashboardModel) Quitting() bool {
	return m.quitting
}

// Run starts the program on the terminal and blocks until the user quits.
func Run(ctx context.Context, state *dashboard.AppState, opts Options) error {
	p := tea.NewProgram(NewDashboardModel(ctx, state, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
