// ABOUTME: Rendering functions for the reader
// ABOUTME: Draws the tab strip, indicator underline, document viewport and status bar

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// View renders the reader
func (m model) View() string {
	if m.quitting {
		return ""
	}

	if !m.ready {
		return "Loading..."
	}

	return strings.Join([]string{
		m.renderTitle(),
		m.renderTabs(),
		m.renderIndicator(),
		m.viewport.View(),
		m.renderStatus(),
		m.renderHelp(),
	}, "\n")
}

func (m model) renderTitle() string {
	return titleStyle.Render(truncate(m.opts.Title, max(m.width, minViewportWidth)))
}

// renderTabs renders one tab per section, scrolled so the active tab is visible
func (m model) renderTabs() string {
	active := m.s.eng.ActiveIndex()

	var b strings.Builder
	for i, s := range m.sections {
		if i > 0 {
			b.WriteString(strings.Repeat(" ", tabGap))
		}

		style := tabStyle
		if i == active {
			style = activeTabStyle
		}
		b.WriteString(style.Render(tabLabel(i, s.Title)))
	}

	return clip(b.String(), m.tabShift(), m.width)
}

// renderIndicator draws the underline at the engine's indicator geometry
func (m model) renderIndicator() string {
	ind, ok := m.s.eng.Indicator()
	if !ok {
		return ""
	}

	offset := max(0, int(ind.Offset))
	size := max(1, int(ind.Size))

	line := strings.Repeat(" ", offset) + indicatorStyle.Render(strings.Repeat("━", size))

	return clip(line, m.tabShift(), m.width)
}

// renderStatus renders the status bar
func (m model) renderStatus() string {
	sec := m.s.eng.ActiveSection()
	vm := NewViewportManager(m.viewport.Height, m.viewport.YOffset, m.s.pane.Doc.Len())

	title := sec.ID
	if sec.Index < len(m.sections) {
		title = m.sections[sec.Index].Title
	}

	statusText := fmt.Sprintf("§ %d/%d %s | %s %d%% | %s",
		sec.Index+1, len(m.sections),
		truncate(title, 30),
		vm.GetPhase(), vm.Percent(),
		m.s.eng.State().Mode,
	)

	if m.s.changes > 0 {
		statusText += " | via " + m.s.lastCause.String()
	}

	if m.s.eng.Holding() {
		statusText += " | navigating"
	}

	if m.statusMsg != "" && time.Since(m.statusMsgAge) < statusMessageDuration {
		msg := m.statusMsg
		if strings.HasPrefix(msg, "Reload failed") {
			msg = errorStyle.Render(msg)
		}
		statusText += " | " + msg
	} else {
		statusText += " | Last reload: " + m.lastReload.Format("15:04:05")
	}

	return statusStyle.Width(max(m.width, minViewportWidth)).Render(statusText)
}

// renderHelp renders the help text
func (m model) renderHelp() string {
	bindings := []struct{ keys, desc string }{
		{keys.Up.Help().Key + " " + keys.Down.Help().Key, "scroll"},
		{keys.Prev.Help().Key + " " + keys.Next.Help().Key, "section"},
		{keys.Jump.Help().Key, keys.Jump.Help().Desc},
		{keys.Reload.Help().Key, keys.Reload.Help().Desc},
		{keys.Quit.Help().Key, keys.Quit.Help().Desc},
	}

	parts := make([]string, len(bindings))
	for i, b := range bindings {
		parts[i] = b.keys + ": " + b.desc
	}

	return helpStyle.Render(truncate(strings.Join(parts, " | "), max(m.width, minViewportWidth)))
}

// clip returns the cells [shift, shift+width) of a styled line
func clip(line string, shift, width int) string {
	if width <= 0 {
		return line
	}

	if shift > 0 {
		line = ansi.TruncateLeft(line, shift, "")
	}

	if lipgloss.Width(line) > width {
		line = ansi.Truncate(line, width, "")
	}

	return line
}
