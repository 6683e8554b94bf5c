// ABOUTME: Event handling and state updates for the reader
// ABOUTME: Implements the Bubble Tea Update() function and drives engine frames

package tui

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"scrollspy/content"
	"scrollspy/engine"
)

const reloadTimeout = 10 * time.Second

// Update handles messages and updates the model
//
//nolint:ireturn // Bubble Tea framework requires returning tea.Model interface
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			m.debugf("[PANIC] Update panic: %v", r)
			m.debugf("[PANIC] Stack trace: %s", string(debug.Stack()))
			panic(r) // Re-panic so Bubble Tea can handle it
		}
	}()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		m.layout()
		m.s.eng.NotifyResize()

		return m, m.ensureFrameTick()

	case frameMsg:
		// Ignore ticks scheduled for an engine that was replaced
		if msg.epoch != m.epoch {
			m.debugf("[FRAMES] Ignoring stale tick: epoch %d != current %d", msg.epoch, m.epoch)
			return m, nil
		}

		m.s.tickInFlight = false
		n := m.s.frames.Tick()
		m.debugf("[FRAMES] Tick ran %d frame(s), active=%d", n, m.s.eng.ActiveIndex())

		return m, m.ensureFrameTick()

	case animMsg:
		if msg.epoch != m.epoch || !m.s.animating {
			return m, nil
		}

		cmd := m.stepAnimation()

		return m, cmd

	case fileChangeMsg:
		return m, tea.Batch(
			reloadSections(m.opts.Source),
			waitForFileChange(m.watcher, m.debugf), // Continue watching
		)

	case reloadCompleteMsg:
		if msg.err != nil {
			m.setStatusMsg(fmt.Sprintf("Reload failed: %v", msg.err))
			m.debugf("[TUI] Reload failed: %v", msg.err)

			return m, nil
		}

		if err := m.rebuild(msg.sections); err != nil {
			m.setStatusMsg(fmt.Sprintf("Reload failed: %v", err))
			return m, nil
		}

		m.lastReload = time.Now()
		m.setStatusMsg(fmt.Sprintf("Reloaded %d sections", len(msg.sections)))
		m.layout()
		m.s.eng.NotifyResize()

		return m, m.ensureFrameTick()

	case tea.MouseMsg:
		cmd := m.handleMouse(msg)

		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}

		cmd := m.handleKey(msg)

		return m, cmd
	}

	return m, nil
}

// handleKey dispatches scroll and navigation keys
func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	half := max(1, m.viewport.Height/2)

	switch {
	case key.Matches(msg, keys.Up):
		return m.scrollTo(m.viewport.YOffset - 1)

	case key.Matches(msg, keys.Down):
		return m.scrollTo(m.viewport.YOffset + 1)

	case key.Matches(msg, keys.PageUp):
		return m.scrollTo(m.viewport.YOffset - half)

	case key.Matches(msg, keys.PageDown):
		return m.scrollTo(m.viewport.YOffset + half)

	case key.Matches(msg, keys.Top):
		return m.scrollTo(0)

	case key.Matches(msg, keys.Bottom):
		return m.scrollTo(m.s.pane.MaxOffset())

	case key.Matches(msg, keys.Prev):
		return m.navigate(func(e *engine.Engine) int { return e.HandleKey(engine.KeyBackward) })

	case key.Matches(msg, keys.Next):
		return m.navigate(func(e *engine.Engine) int { return e.HandleKey(engine.KeyForward) })

	case key.Matches(msg, keys.Jump):
		i := int(msg.String()[0] - '1')
		return m.navigate(func(e *engine.Engine) int { return e.Navigate(i) })

	case key.Matches(msg, keys.Reload):
		return reloadSections(m.opts.Source)
	}

	return nil
}

// handleMouse scrolls on wheel events and navigates on tab clicks
func (m *model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return m.scrollTo(m.viewport.YOffset - m.opts.ScrollStep)

	case tea.MouseButtonWheelDown:
		return m.scrollTo(m.viewport.YOffset + m.opts.ScrollStep)

	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress || msg.Y != m.s.pane.TabRow {
			return nil
		}

		i := m.s.pane.tabAt(msg.X + m.tabShift())
		if i < 0 {
			return nil
		}

		return m.navigate(func(e *engine.Engine) int { return e.Navigate(i) })
	}

	return nil
}

// layout sizes the viewport and lays the document out at the current width
func (m *model) layout() {
	if !m.ready {
		return
	}

	width := max(m.width, minViewportWidth)
	height := max(m.height-totalUIChrome, minViewportHeight)

	m.viewport.Width = width
	m.viewport.Height = height

	doc := LayoutDocument(m.sections, width)
	m.viewport.SetContent(doc.Content())

	pane := m.s.pane
	pane.Doc = doc
	pane.Top = headerRows
	pane.Height = height
	pane.Screen = m.height

	m.viewport.SetYOffset(pane.YOffset)
	m.syncPane()
}

// syncPane copies the viewport offset into the pane. Returns true if it moved.
func (m *model) syncPane() bool {
	moved := m.s.pane.YOffset != m.viewport.YOffset
	m.s.pane.YOffset = m.viewport.YOffset

	return moved
}

// scrollTo moves the viewport as a user scroll. A running navigation scroll is abandoned.
func (m *model) scrollTo(offset int) tea.Cmd {
	if m.s.animating {
		m.s.animating = false
		m.s.eng.EndNavigation()
	}

	m.viewport.SetYOffset(offset)
	if m.syncPane() {
		m.s.eng.NotifyScroll()
	}

	return m.ensureFrameTick()
}

// navigate runs a direct navigation and starts the scroll it requested, if any
func (m *model) navigate(move func(*engine.Engine) int) tea.Cmd {
	idx := move(m.s.eng)
	m.debugf("[TUI] Navigate -> %d", idx)

	if !m.s.navPending {
		return m.ensureFrameTick()
	}
	m.s.navPending = false

	if m.s.navTarget == m.viewport.YOffset {
		m.s.animating = false
		m.s.eng.EndNavigation()

		return m.ensureFrameTick()
	}

	// A step already in flight picks up the new target
	if m.s.animating {
		return nil
	}
	m.s.animating = true

	return animTick(m.epoch)
}

// stepAnimation moves a third of the remaining distance toward the navigation target
func (m *model) stepAnimation() tea.Cmd {
	cur := m.viewport.YOffset
	dist := m.s.navTarget - cur

	step := dist / 3
	if step == 0 {
		step = sign(dist)
	}

	m.viewport.SetYOffset(cur + step)
	if m.syncPane() {
		m.s.eng.NotifyScroll()
	}

	if m.viewport.YOffset == m.s.navTarget || m.viewport.YOffset == cur {
		m.s.animating = false
		m.s.eng.EndNavigation()

		return m.ensureFrameTick()
	}

	return tea.Batch(animTick(m.epoch), m.ensureFrameTick())
}

// ensureFrameTick schedules a frame tick if frames are queued and none is in flight
func (m *model) ensureFrameTick() tea.Cmd {
	if m.s.tickInFlight || m.s.frames.Pending() == 0 {
		return nil
	}
	m.s.tickInFlight = true

	epoch := m.epoch

	return tea.Tick(m.opts.FrameInterval, func(time.Time) tea.Msg {
		return frameMsg{epoch: epoch}
	})
}

// tabShift is how far the tab strip is scrolled left to keep the active tab visible
func (m model) tabShift() int {
	ind, ok := m.s.eng.Indicator()
	if !ok || m.width <= 0 {
		return 0
	}

	return max(0, int(ind.Offset+ind.Size)-m.width)
}

func animTick(epoch int) tea.Cmd {
	return tea.Tick(animStepInterval, func(time.Time) tea.Msg {
		return animMsg{epoch: epoch}
	})
}

// reloadSections fetches the sections in the background
func reloadSections(src content.Source) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
		defer cancel()

		sections, err := src.Sections(ctx)

		return reloadCompleteMsg{sections: sections, err: err}
	}
}

// waitForFileChange returns a command that waits for file system events
func waitForFileChange(watcher *fsnotify.Watcher, debugf func(string, ...interface{})) tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}

				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					// Debounce: wait a bit for atomic writes to complete
					time.Sleep(100 * time.Millisecond)
					debugf("[WATCHER] %s changed", event.Name)

					return fileChangeMsg{}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				// Log error but continue watching
				debugf("[WATCHER] Error: %v", err)
			}
		}
	}
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
