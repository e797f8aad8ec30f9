package tui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/co2focus/internal/chart"
)

// Layout constants.
const (
	yearColumnWidth = 6
	minColumnWidth  = 10
	maxColumnWidth  = 24
)

// NewFigureTable lays fig out as year rows and one column per trace.
func NewFigureTable(fig chart.Figure, precision, height int) table.Model {
	grid := fig.Grid()

	columns := make([]table.Column, 0, len(grid.Columns)+1)
	columns = append(columns, table.Column{Title: "Year", Width: yearColumnWidth})
	for _, name := range grid.Columns {
		w := min(max(lipgloss.Width(name), minColumnWidth), maxColumnWidth)
		columns = append(columns, table.Column{Title: name, Width: w})
	}

	rows := make([]table.Row, len(grid.Rows))
	for i, r := range grid.Rows {
		row := make(table.Row, 0, len(r.Values)+1)
		row = append(row, strconv.Itoa(r.Year))
		for _, v := range r.Values {
			row = append(row, chart.FormatCell(v, precision))
		}
		rows[i] = row
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = TableHeaderStyle
	s.Selected = TableSelectedStyle
	t.SetStyles(s)

	return t
}

// View implements tea.Model.
func (m *DashboardModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(TitleStyle.Render("Panama & Central America CO₂"))
	sb.WriteString("\n\n")
	sb.WriteString(m.renderTabs())
	sb.WriteString("\n\n")
	sb.WriteString(m.renderControls())
	sb.WriteString("\n\n")

	fig := m.figures[m.Active()]
	switch {
	case fig.ID == "":
		sb.WriteString(MutedStyle.Render("figure unavailable"))
	case fig.Error != "":
		sb.WriteString(ValueStyle.Render(fig.Title))
		sb.WriteString("\n")
		sb.WriteString(ErrorStyle.Render("unavailable: " + fig.Error))
	default:
		sb.WriteString(ValueStyle.Render(fig.Title))
		sb.WriteString("\n")
		sb.WriteString(m.table.View())
		if meta := renderMeta(fig.Meta); meta != "" {
			sb.WriteString("\n")
			sb.WriteString(meta)
		}
	}

	sb.WriteString("\n\n")
	if line := m.renderStatus(); line != "" {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString(RenderHelp())
	return sb.String()
}

func (m *DashboardModel) renderTabs() string {
	tabs := make([]string, len(m.ids))
	for i, id := range m.ids {
		if i == m.active {
			tabs[i] = ActiveTabStyle.Render(string(id))
			continue
		}
		tabs[i] = TabStyle.Render(string(id))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *DashboardModel) renderControls() string {
	id := m.Active()
	if !id.ModeDriven() {
		lo, hi := m.state.YearBounds()
		return LabelStyle.Render("Project to: ") +
			ValueStyle.Render(strconv.Itoa(m.year)) +
			MutedStyle.Render(" "+yearRange(lo, hi))
	}
	return LabelStyle.Render("Mode: ") + ValueStyle.Render(m.modes[id].String())
}

func (m *DashboardModel) renderStatus() string {
	if m.err != nil {
		return ErrorStyle.Render("error: " + m.err.Error())
	}
	if m.status != "" {
		return NoticeStyle.Render(m.status)
	}
	return ""
}

func renderMeta(meta map[string]string) string {
	if len(meta) == 0 {
		return ""
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = LabelStyle.Render(k+": ") + ValueStyle.Render(meta[k])
	}
	return strings.Join(lines, "\n")
}

// RenderHelp renders the keyboard shortcut help text.
func RenderHelp() string {
	shortcuts := []string{
		"tab/shift+tab: Figure",
		"+/- or ←/→: Year",
		"m: Annual/Cumulative",
		"↑/↓: Scroll",
		"q: Quit",
	}
	return MutedStyle.Render(strings.Join(shortcuts, " | "))
}

func yearRange(lo, hi int) string {
	return fmt.Sprintf("[%d-%d]", lo, hi)
}
