// Package tui is the interactive terminal viewer. It renders session
// snapshots and turns key presses into selection intents; all state changes
// go through the session.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"modelview/internal/session"
)

// Controller is the part of the session the viewer drives.
type Controller interface {
	Snapshot() session.Snapshot
	Subscribe() (<-chan session.Snapshot, func())
	SelectModel(id int64) error
	SelectAll() error
	ClearSelection() error
}

type snapshotMsg session.Snapshot

// closedMsg reports that the session stopped publishing.
type closedMsg struct{}

func waitForSnapshot(ch <-chan session.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return closedMsg{}
		}
		return snapshotMsg(snap)
	}
}

type optionKind int

const (
	optionNone optionKind = iota
	optionAll
	optionModel
)

type option struct {
	kind  optionKind
	id    int64
	label string
}

// Model is the bubbletea model of the viewer.
type Model struct {
	ctl     Controller
	updates <-chan session.Snapshot
	cancel  func()
	th      theme

	snap   session.Snapshot
	cursor int
	err    error
	closed bool
	width  int
}

// New subscribes to ctl. Call Close to release the subscription.
func New(ctl Controller) *Model {
	ch, cancel := ctl.Subscribe()
	return &Model{
		ctl:     ctl,
		updates: ch,
		cancel:  cancel,
		th:      defaultTheme(),
		snap:    ctl.Snapshot(),
	}
}

// Close releases the snapshot subscription.
func (m *Model) Close() { m.cancel() }

func (m *Model) Init() tea.Cmd { return waitForSnapshot(m.updates) }

func (m *Model) options() []option {
	opts := make([]option, 0, len(m.snap.Models)+2)
	opts = append(opts, option{kind: optionNone, label: "(none)"}, option{kind: optionAll, label: "All Models"})
	for _, s := range m.snap.Models {
		opts = append(opts, option{kind: optionModel, id: s.ID, label: s.Label()})
	}
	return opts
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.snap = session.Snapshot(msg)
		if n := len(m.options()); m.cursor >= n {
			m.cursor = n - 1
		}
		return m, waitForSnapshot(m.updates)
	case closedMsg:
		m.closed = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.options())-1 {
			m.cursor++
		}
	case "enter", " ":
		m.err = m.choose(m.options()[m.cursor])
	case "a":
		m.err = m.ctl.SelectAll()
	case "c", "esc":
		m.cursor = 0
		m.err = m.ctl.ClearSelection()
	}
	return m, nil
}

func (m *Model) choose(o option) error {
	switch o.kind {
	case optionAll:
		return m.ctl.SelectAll()
	case optionModel:
		return m.ctl.SelectModel(o.id)
	default:
		return m.ctl.ClearSelection()
	}
}

func (m *Model) isSelected(o option) bool {
	sel := m.snap.Selection
	switch o.kind {
	case optionAll:
		return sel.Kind == session.SelectAll
	case optionModel:
		return sel.Kind == session.SelectSingle && sel.ID == o.id
	default:
		return sel.Kind == session.SelectNone
	}
}

func (m *Model) View() string {
	var b strings.Builder
	link := m.th.Danger.Render("disconnected")
	if m.snap.Connected {
		link = m.th.Success.Render("connected")
	}
	fmt.Fprintf(&b, "%s  %s %s\n\n", m.th.Header.Render("modelview"), m.th.Muted.Render(m.snap.URL), link)

	var list strings.Builder
	for i, o := range m.options() {
		cur := "  "
		if i == m.cursor {
			cur = m.th.Cursor.Render("> ")
		}
		label := o.label
		if m.isSelected(o) {
			label = m.th.Selected.Render(label + " *")
		}
		list.WriteString(cur + label + "\n")
	}
	if !m.snap.CatalogReceived {
		list.WriteString(m.th.Muted.Render("  waiting for catalog...") + "\n")
	}
	frame := m.th.Frame
	if m.width > 4 {
		frame = frame.Width(m.width - 4)
	}
	b.WriteString(frame.Render(strings.TrimRight(list.String(), "\n")))
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s %d placed", m.th.Accent.Render("scene:"), len(m.snap.Placed))
	if m.snap.Parsing > 0 {
		fmt.Fprintf(&b, ", %d parsing", m.snap.Parsing)
	}
	if len(m.snap.Placed) > 0 {
		c := m.snap.View.Target
		fmt.Fprintf(&b, ", target (%.1f, %.1f, %.1f), distance %.1f", c.X, c.Y, c.Z, m.snap.View.Distance)
	}
	b.WriteString("\n")

	status := m.th.Muted.Render(m.snap.Status)
	if m.snap.LastError != nil {
		status = m.th.Alert.Render(m.snap.Status)
	}
	b.WriteString(status + "\n")
	if m.err != nil {
		b.WriteString(m.th.Danger.Render(m.err.Error()) + "\n")
	}
	b.WriteString(m.th.Muted.Render("up/down move  enter select  a all  c clear  q quit"))
	return b.String()
}

// Run blocks until the user quits, the session stops or ctx is done.
func Run(ctx context.Context, ctl Controller, opts ...tea.ProgramOption) error {
	m := New(ctl)
	defer m.Close()
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(m, opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
