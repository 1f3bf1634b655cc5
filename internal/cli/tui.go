package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/entitydiagram/pkg/diagram"
	"github.com/matzehuels/entitydiagram/pkg/editor"
	"github.com/matzehuels/entitydiagram/pkg/persist"
)

const (
	doubleClickWindow = 400 * time.Millisecond
	statusRefresh     = 250 * time.Millisecond
	panCols           = 4
	panRows           = 2
)

var (
	statusBarStyle  = lipgloss.NewStyle().Foreground(colorGray)
	statusModeStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
)

// snapshotMsg reports that the session changed outside the model.
type snapshotMsg struct{}

// tickMsg refreshes the sync status line.
type tickMsg time.Time

// statusFunc reports the synchronizer state.
type statusFunc func() persist.Status

// EditorModel is the bubbletea model of the diagram editor. It renders the
// editor view on a character canvas where one cell is 10×20 canvas units.
type EditorModel struct {
	ed     *editor.Editor
	d      editor.Dispatcher
	status statusFunc
	vp     viewport

	width, height int

	now       func() time.Time
	lastClick time.Time
	lastCol   int
	lastRow   int
}

// NewEditorModel creates an editor model over d. status may be nil.
func NewEditorModel(d editor.Dispatcher, status statusFunc) EditorModel {
	return EditorModel{
		ed:     editor.New(d),
		d:      d,
		status: status,
		width:  80,
		height: 24,
		now:    time.Now,
	}
}

func (m EditorModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(statusRefresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.MouseMsg:
		m = m.handleMouse(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tickMsg:
		return m, tick()
	case snapshotMsg:
		// Redrawn from the session on return.
	}
	return m, nil
}

func (m EditorModel) handleMouse(msg tea.MouseMsg) EditorModel {
	if msg.Y >= m.canvasHeight() && msg.Action == tea.MouseActionPress {
		return m
	}
	p := m.vp.point(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m
		}
		m.ed.PointerDown(p)
	case tea.MouseActionMotion:
		m.ed.PointerMove(p)
	case tea.MouseActionRelease:
		m.ed.PointerUp(p)
		now := m.now()
		if now.Sub(m.lastClick) <= doubleClickWindow && msg.X == m.lastCol && msg.Y == m.lastRow {
			m.ed.DoubleClick(p)
			m.lastClick = time.Time{}
			return m
		}
		m.lastClick, m.lastCol, m.lastRow = now, msg.X, msg.Y
	}
	return m
}

func (m EditorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	editing := m.ed.Mode() == editor.ModeEditing

	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyRunes:
		if !editing {
			if msg.String() == "q" {
				return m, tea.Quit
			}
			return m, nil
		}
		for _, r := range msg.Runes {
			m.ed.TypeRune(r)
		}
	case tea.KeySpace:
		m.ed.TypeRune(' ')
	case tea.KeyEnter:
		m.ed.Key(editor.KeyEnter)
	case tea.KeyEsc:
		m.ed.Key(editor.KeyEscape)
	case tea.KeyBackspace:
		m.ed.Key(editor.KeyBackspace)
	case tea.KeyDelete:
		m.ed.Key(editor.KeyDelete)
	case tea.KeyTab:
		m.ed.Key(editor.KeyTab)
	case tea.KeyLeft:
		m.vp.pan(-panCols, 0)
	case tea.KeyRight:
		m.vp.pan(panCols, 0)
	case tea.KeyUp:
		m.vp.pan(0, -panRows)
	case tea.KeyDown:
		m.vp.pan(0, panRows)
	}
	return m, nil
}

func (m EditorModel) canvasHeight() int {
	return max(m.height-1, 0)
}

func (m EditorModel) View() string {
	c := newCanvas(m.width, m.canvasHeight())
	drawView(c, m.vp, m.ed.View())
	return c.styled() + "\n" + m.statusLine()
}

func (m EditorModel) statusLine() string {
	snap := m.d.Snapshot()
	if snap == nil {
		snap = diagram.Empty()
	}
	parts := []string{
		statusModeStyle.Render(m.ed.Mode().String()),
		pluralize(len(snap.Entities), "entity", "entities"),
		pluralize(len(snap.Links), "link", "links"),
	}
	if key := m.ed.Selected(); key != "" {
		parts = append(parts, "selected "+key)
	}
	if m.status != nil {
		parts = append(parts, syncLabel(m.status()))
	}
	parts = append(parts, "drag title: link  tab: select  del: remove  arrows: pan  q: quit")
	return statusBarStyle.Render(strings.Join(parts, " · "))
}

func syncLabel(s persist.Status) string {
	switch {
	case s.Pending:
		return StyleWarning.Render("saving")
	case s.LastErr != nil:
		return StyleError.Render(fmt.Sprintf("save failed: %v", s.LastErr))
	case !s.LastWrite.IsZero():
		return StyleSuccess.Render("saved " + s.LastWrite.Format("15:04:05"))
	default:
		return "saved"
	}
}
