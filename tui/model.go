// ABOUTME: Terminal reader model and core state management
// ABOUTME: Bubble Tea model hosting a scrollspy engine over a markdown document

// Package tui provides an interactive terminal reader whose tab strip follows the scroll position.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"

	"scrollspy/content"
	"scrollspy/engine"
)

// Layout constants for UI dimensions
const (
	// UI chrome heights (elements that reduce available viewport space)
	titleHeight     = 1 // Document title
	tabStripHeight  = 1 // Tab strip
	indicatorHeight = 1 // Underline row beneath the tabs
	statusBarHeight = 1 // Bottom status bar
	helpHeight      = 1 // Help text line
	headerRows      = titleHeight + tabStripHeight + indicatorHeight
	totalUIChrome   = headerRows + statusBarHeight + helpHeight

	// Minimum viewport dimensions to ensure usability
	minViewportWidth  = 20
	minViewportHeight = 3

	maxTabTitle = 16 // Tab labels are truncated to this many cells
	tabGap      = 1  // Cells between tabs
)

// Interaction constants
const (
	animStepInterval      = 15 * time.Millisecond // Delay between navigation scroll steps
	statusMessageDuration = 5 * time.Second       // How long to show transient status messages
)

// Options contains configuration for running the reader
type Options struct {
	Title         string
	Source        content.Source
	WatchPath     string // File reloaded on write; empty disables watching
	Engine        engine.Options
	FrameInterval time.Duration
	ScrollStep    int // Lines per mouse wheel notch
}

// frameMsg fires the queued engine frames
type frameMsg struct{ epoch int }

// animMsg advances a navigation scroll by one step
type animMsg struct{ epoch int }

// fileChangeMsg is sent when the watched file changes
type fileChangeMsg struct{}

// reloadCompleteMsg is sent after sections were reloaded
type reloadCompleteMsg struct {
	sections []content.Section
	err      error
}

// session is the engine-facing state shared by every copy of the model.
// A new session is built whenever the sections change.
type session struct {
	eng    *engine.Engine
	frames *engine.ManualFrames
	pane   *Pane
	unsub  func()

	lastCause    engine.Cause
	changes      int
	tickInFlight bool

	navTarget  int  // Viewport offset the navigation scroll is heading to
	navPending bool // ScrollIntoView fired and no animation is scheduled yet
	animating  bool
}

// model holds the TUI state
type model struct {
	opts   Options
	debugf func(string, ...interface{})

	sections []content.Section
	s        *session
	epoch    int // Increments each engine rebuild to drop stale ticks

	watcher *fsnotify.Watcher

	// UI state
	width        int
	height       int
	ready        bool
	quitting     bool
	viewport     viewport.Model
	statusMsg    string
	statusMsgAge time.Time
	lastReload   time.Time
}

// Key bindings
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Prev     key.Binding
	Next     key.Binding
	Jump     key.Binding
	Reload   key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "scroll up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "scroll down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup", "ctrl+u"),
		key.WithHelp("pgup", "half page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown", "ctrl+d"),
		key.WithHelp("pgdn", "half page down"),
	),
	Top: key.NewBinding(
		key.WithKeys("home", "g"),
		key.WithHelp("g", "top"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("end", "G"),
		key.WithHelp("G", "bottom"),
	),
	Prev: key.NewBinding(
		key.WithKeys("left", "h", "shift+tab"),
		key.WithHelp("←/h", "previous section"),
	),
	Next: key.NewBinding(
		key.WithKeys("right", "l", "tab"),
		key.WithHelp("→/l", "next section"),
	),
	Jump: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
		key.WithHelp("1-9", "jump to section"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10"))

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	indicatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("15")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

// Run loads the sections and starts the reader
func Run(opts Options, debugf func(string, ...interface{})) error {
	sections, err := opts.Source.Sections(context.Background())
	if err != nil {
		return err
	}

	m, err := initModel(sections, opts, debugf)
	if err != nil {
		return err
	}

	if opts.WatchPath != "" {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		defer watcher.Close()

		if err := watcher.Add(opts.WatchPath); err != nil {
			return fmt.Errorf("failed to watch %s: %w", opts.WatchPath, err)
		}

		m.watcher = watcher
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	if fm, ok := finalModel.(model); ok {
		fm.s.close()
	}

	return nil
}

// initModel creates the initial model. The viewport is sized on the first WindowSizeMsg.
func initModel(sections []content.Section, opts Options, debugf func(string, ...interface{})) (model, error) {
	if debugf == nil {
		debugf = func(string, ...interface{}) {}
	}

	if opts.FrameInterval <= 0 {
		opts.FrameInterval = engine.DefaultFrameInterval
	}

	if opts.ScrollStep <= 0 {
		opts.ScrollStep = 3
	}

	if opts.Title == "" {
		opts.Title = "scrollspy"
	}

	m := model{
		opts:       opts,
		debugf:     debugf,
		viewport:   viewport.New(0, 0),
		lastReload: time.Now(),
	}

	if err := m.rebuild(sections); err != nil {
		return model{}, err
	}

	return m, nil
}

// newSession builds an engine over sections, laid out on the current pane geometry
func (m *model) newSession(sections []content.Section, initial int) (*session, error) {
	s := &session{
		frames: engine.NewManualFrames(),
		pane:   &Pane{TabRow: titleHeight, Tabs: layoutTabs(sections)},
	}

	opts := m.opts.Engine
	opts.InitialIndex = initial

	probe := DocumentProbe{Pane: s.pane, Mode: opts.Mode}

	eng, err := engine.New(content.Keys(sections), opts, engine.Dependencies{
		Probe:     probe,
		Selectors: probe,
		Frames:    s.frames,
		ScrollIntoView: func(req engine.ScrollRequest) {
			s.scrollIntoView(req)
		},
		Debugf: m.debugf,
	})
	if err != nil {
		return nil, err
	}

	s.eng = eng
	s.unsub = eng.Subscribe(func(ch engine.Change) {
		s.lastCause = ch.Cause
		s.changes++
	})

	return s, nil
}

// rebuild replaces the session for new sections, keeping the active index where possible
func (m *model) rebuild(sections []content.Section) error {
	initial := m.opts.Engine.InitialIndex
	if m.s != nil {
		initial = m.s.eng.ActiveIndex()
	}

	s, err := m.newSession(sections, initial)
	if err != nil {
		return err
	}

	if m.s != nil {
		*s.pane = Pane{
			Top:     m.s.pane.Top,
			Height:  m.s.pane.Height,
			Screen:  m.s.pane.Screen,
			YOffset: m.s.pane.YOffset,
			TabRow:  s.pane.TabRow,
			Tabs:    s.pane.Tabs,
		}
		m.s.close()
	}

	m.s = s
	m.sections = sections
	m.epoch++

	m.debugf("[TUI] Session rebuilt: %d sections, epoch %d", len(sections), m.epoch)

	return nil
}

// close detaches the listener and shuts the engine down
func (s *session) close() {
	if s == nil {
		return
	}

	if s.unsub != nil {
		s.unsub()
	}

	s.eng.Close()
}

// scrollIntoView records where a navigation wants the viewport to go
func (s *session) scrollIntoView(req engine.ScrollRequest) {
	if req.Index < 0 || req.Index >= len(s.pane.Doc.Starts) {
		return
	}

	vm := NewViewportManager(s.pane.Height, s.pane.Doc.Starts[req.Index], s.pane.Doc.Len())
	s.navTarget = vm.CalculateOffset()
	s.navPending = true
}

// layoutTabs positions one tab per section
func layoutTabs(sections []content.Section) []TabSpan {
	tabs := make([]TabSpan, len(sections))

	x := 0
	for i, s := range sections {
		w := lipgloss.Width(tabLabel(i, s.Title))
		tabs[i] = TabSpan{X: x, Width: w}
		x += w + tabGap
	}

	return tabs
}

// tabLabel is the text of one tab
func tabLabel(i int, title string) string {
	return fmt.Sprintf(" %d %s ", i+1, truncate(title, maxTabTitle))
}

// Init initializes the model
func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnterAltScreen}
	if m.watcher != nil {
		cmds = append(cmds, waitForFileChange(m.watcher, m.debugf))
	}

	return tea.Batch(cmds...)
}

// setStatusMsg sets a transient status message with current timestamp
func (m *model) setStatusMsg(msg string) {
	m.statusMsg = msg
	m.statusMsgAge = time.Now()
}

// truncate shortens a string to maxLen runes, adding "..." if truncated
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return string(r[:maxLen])
	}

	return string(r[:maxLen-3]) + "..."
}
