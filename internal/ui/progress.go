// Package ui renders build progress in the terminal.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"mirc/internal/buildpipeline"
)

const statusWidth = 12

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyles = map[string]lipgloss.Style{
		"done":        lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"error":       lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		"loading":     lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		"translating": lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	}
	defaultStatusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

type unitItem struct {
	name    string
	status  string
	elapsed time.Duration
	err     error
}

func (u unitItem) finished() bool { return u.status == "done" || u.status == "error" }

type progressModel struct {
	title      string
	events     <-chan buildpipeline.Event
	spinner    spinner.Model
	bar        progress.Model
	items      []unitItem
	byName     map[string]int
	stageLabel string
	width      int
	closed     bool
}

type eventMsg buildpipeline.Event

type closedMsg struct{}

// NewProgressModel returns a Bubble Tea model showing one line per unit. The
// program quits once events is closed.
func NewProgressModel(title string, units []string, events <-chan buildpipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		items:   make([]unitItem, len(units)),
		byName:  make(map[string]int, len(units)),
		width:   80,
	}
	for i, name := range units {
		m.items[i] = unitItem{name: name, status: "queued"}
		m.byName[name] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(buildpipeline.Event(msg)), m.next())
	case closedMsg:
		m.closed = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.closed {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// next waits for the following pipeline event.
func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev buildpipeline.Event) tea.Cmd {
	label := statusLabel(ev.Stage, ev.Status)
	if label == "" {
		return nil
	}
	if ev.Unit == "" {
		m.stageLabel = label
		return nil
	}
	idx, ok := m.byName[ev.Unit]
	if !ok {
		return nil
	}
	item := &m.items[idx]
	item.status = label
	item.elapsed = ev.Elapsed
	if ev.Status == buildpipeline.StatusError {
		item.err = ev.Err
	}
	return m.bar.SetPercent(m.fraction())
}

// fraction is the share of units that finished, successfully or not.
func (m *progressModel) fraction() float64 {
	if len(m.items) == 0 {
		return 0
	}
	return float64(m.count(unitItem.finished)) / float64(len(m.items))
}

func (m *progressModel) count(pred func(unitItem) bool) int {
	n := 0
	for _, item := range m.items {
		if pred(item) {
			n++
		}
	}
	return n
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.header()))
	b.WriteString("\n\n")

	nameWidth := max(m.width-statusWidth-14, 20)
	for _, item := range m.items {
		m.renderUnit(&b, item, nameWidth)
	}

	b.WriteString("\n")
	if m.closed {
		b.WriteString(m.bar.ViewAs(1.0))
	} else {
		b.WriteString(m.bar.View())
	}
	failed := m.count(func(u unitItem) bool { return u.status == "error" })
	fmt.Fprintf(&b, "\n%s\n", dimStyle.Render(fmt.Sprintf("%d/%d units, %d failed", m.count(unitItem.finished), len(m.items), failed)))
	return b.String()
}

func (m *progressModel) header() string {
	header := m.title
	if m.stageLabel != "" {
		header += " (" + m.stageLabel + ")"
	}
	if m.closed {
		return "finished: " + header
	}
	return m.spinner.View() + " " + header
}

func (m *progressModel) renderUnit(b *strings.Builder, item unitItem, nameWidth int) {
	style, ok := statusStyles[item.status]
	if !ok {
		style = defaultStatusStyle
	}
	fmt.Fprintf(b, "  %s %s", style.Render(fmt.Sprintf("%*s", statusWidth, item.status)), truncate(item.name, nameWidth))
	if item.finished() && item.elapsed > 0 {
		b.WriteString(dimStyle.Render(" " + item.elapsed.Round(time.Millisecond).String()))
	}
	b.WriteString("\n")
	if item.err != nil {
		fmt.Fprintf(b, "  %*s %s\n", statusWidth, "", truncate(item.err.Error(), nameWidth))
	}
}

func statusLabel(stage buildpipeline.Stage, status buildpipeline.Status) string {
	switch status {
	case buildpipeline.StatusQueued:
		return "queued"
	case buildpipeline.StatusDone:
		return "done"
	case buildpipeline.StatusError:
		return "error"
	case buildpipeline.StatusWorking:
		switch stage {
		case buildpipeline.StageLoad:
			return "loading"
		case buildpipeline.StageTranslate:
			return "translating"
		}
	}
	return ""
}

// truncate shortens value to width terminal cells, marking the cut with "...".
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
