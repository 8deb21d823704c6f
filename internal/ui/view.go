package ui

import (
	"fmt"
	"strings"
	"time"

	uistate "github.com/atomicstack/multiview/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

const (
	panelInlineMaxLines = 12
	panelMinWidth       = 30
	panelFraction       = 0.45
	infoLifetime        = 5 * time.Second
	// status line + filter prompt
	bottomBarRows = 2
)

type styledLine struct {
	text          string
	style         *lipgloss.Style
	prefixStyle   *lipgloss.Style
	highlightFrom int
}

type panelKey struct {
	level      string
	width      int
	generation uint64
}

// panelWidth returns the width of the right-hand menu panel, or 0 when
// the terminal is too narrow to split.
func (m *Model) panelWidth() int {
	if m.width <= 0 || m.menu == nil {
		return 0
	}
	w := int(float64(m.width) * panelFraction)
	if w < panelMinWidth {
		return 0
	}
	return w
}

func (m *Model) treeColumnWidth() int {
	return m.width - m.panelWidth()
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.panelWidth() > 0 {
		return m.viewSideBySide()
	}
	return m.viewVertical()
}

// treeLines renders the header, the visible rows of the current level and
// the info and footer blocks for a column width wide.
func (m *Model) treeLines(width int) []styledLine {
	lines := make([]styledLine, 0, 16)
	if header := m.header(); header != "" {
		lines = append(lines, styledLine{text: header, style: styles.Header})
	}
	if current := m.currentLevel(); current != nil {
		m.syncViewport(current)
		start, visible := visibleWindow(current, m.maxVisibleItems())
		if len(current.Items) == 0 {
			msg := "(no entries)"
			if current.Filter != "" {
				msg = fmt.Sprintf("No matches for %q", current.Filter)
			}
			lines = append(lines, styledLine{text: msg, style: styles.Info})
		}
		for i, item := range visible {
			lines = append(lines, m.buildItemLine(item, start+i, current, width))
		}
	}
	return lines
}

func (m *Model) trailerLines() []styledLine {
	var lines []styledLine
	if info := m.currentInfo(); info != "" {
		lines = append(lines, styledLine{}, styledLine{text: info, style: styles.Info})
	}
	if m.showFooter {
		lines = append(lines, styledLine{})
		lines = append(lines, styledLine{text: m.runningSummary(), style: styles.Busy})
		lines = append(lines, styledLine{text: m.help.ShortHelpView(m.keys.ShortHelp()), style: styles.Footer})
	}
	return lines
}

func visibleWindow(l *level, maxItems int) (int, []uistate.Item) {
	items := l.Items
	if maxItems <= 0 || len(items) <= maxItems {
		return 0, items
	}
	start := min(max(l.ViewportOffset, 0), len(items)-maxItems)
	l.ViewportOffset = start
	return start, items[start : start+maxItems]
}

// viewVertical is the single-column layout used when the terminal is too
// narrow for the side panel: the menu rendering follows the tree rows.
func (m *Model) viewVertical() string {
	lines := m.treeLines(m.width)
	if panel := m.panelLines(m.width); len(panel) > 0 {
		lines = append(lines, styledLine{}, styledLine{text: m.panelTitle(), style: styles.PanelTitle})
		if len(panel) > panelInlineMaxLines {
			panel = panel[:panelInlineMaxLines]
		}
		for _, line := range panel {
			lines = append(lines, styledLine{text: line, style: styles.PanelBody})
		}
	}
	lines = append(lines, m.trailerLines()...)
	lines = limitHeight(lines, m.height-bottomBarRows, m.width)
	lines = applyWidth(lines, m.width)
	lines = append(lines, applyWidth(m.bottomBar(), m.width)...)
	return renderLines(lines)
}

// viewSideBySide renders the tree on the left and the tray menu of the
// current level in a bordered panel on the right.
func (m *Model) viewSideBySide() string {
	leftW := m.treeColumnWidth()
	panelW := m.panelWidth()

	contentLines := append(m.treeLines(leftW), m.trailerLines()...)
	panelH := max(m.height-bottomBarRows, 3)
	if len(contentLines) > panelH {
		contentLines = contentLines[:panelH]
	}
	for len(contentLines) < panelH {
		contentLines = append(contentLines, styledLine{})
	}
	leftRows := strings.Split(renderLines(applyWidth(contentLines, leftW)), "\n")
	for i, row := range leftRows {
		w := lipgloss.Width(row)
		if w > leftW {
			leftRows[i] = truncate.StringWithTail(row, uint(leftW), "…")
		} else if w < leftW {
			leftRows[i] = row + strings.Repeat(" ", leftW-w)
		}
	}
	right := m.renderPanel(panelW, panelH)
	top := lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(leftRows, "\n"), right)
	return top + "\n" + renderLines(applyWidth(m.bottomBar(), m.width))
}

func (m *Model) bottomBar() []styledLine {
	var status styledLine
	if m.errMsg != "" {
		status = styledLine{text: fmt.Sprintf("Error: %s", m.errMsg), style: styles.Error}
	}
	return []styledLine{status, {text: m.filterPrompt()}}
}

func (m *Model) runningSummary() string {
	if m.tracker == nil {
		return ""
	}
	running := m.tracker.Running()
	if len(running) == 0 {
		return fmt.Sprintf("idle · %d done", m.tracker.Finished())
	}
	names := make([]string, 0, len(running))
	for _, r := range running {
		names = append(names, r.Name)
	}
	return "running: " + strings.Join(names, ", ")
}

// buildItemLine draws one row. The cursor row is highlighted across the
// whole column.
func (m *Model) buildItemLine(item uistate.Item, idx int, current *level, width int) styledLine {
	lineStyle := styles.Item
	indicatorStyle := styles.ItemIndicator
	switch {
	case item.Alert:
		lineStyle = styles.AlertItem
	case item.Accented:
		lineStyle = styles.AccentedItem
	}
	mark := ""
	if len(current.Marked) > 0 {
		mark = "  "
		if current.IsMarked(item.ID) {
			mark = "✓ "
		}
	}
	if idx == current.Cursor {
		indicatorStyle = styles.SelectedItemIndicator
		lineStyle = styles.SelectedItem
	}
	text := "▌ " + mark + item.Label
	if width > 0 {
		if pad := width - lipgloss.Width(text); pad > 0 {
			text += strings.Repeat(" ", pad)
		}
	}
	return styledLine{text: text, style: lineStyle, prefixStyle: indicatorStyle, highlightFrom: 1}
}

func (m *Model) panelTitle() string {
	current := m.currentLevel()
	if current == nil || current.Title == "" {
		return "Menu"
	}
	return "Menu: " + current.Title
}

// panelLines renders the current level through the tray-menu backend.
// Renderings are cached per level, width and tree generation.
func (m *Model) panelLines(width int) []string {
	current := m.currentLevel()
	if m.menu == nil || current == nil {
		return nil
	}
	key := panelKey{level: current.ID, width: width, generation: m.generation}
	if lines, ok := m.panels.Get(key); ok {
		return lines
	}
	lines := m.menu.Render(current.Model, width)
	m.panels.Add(key, lines)
	return lines
}

// renderPanel builds the bordered menu box with exactly height rows and
// totalWidth columns.
func (m *Model) renderPanel(totalWidth, height int) string {
	const (
		tlc = "╭"
		trc = "╮"
		blc = "╰"
		brc = "╯"
		hz  = "─"
		vt  = "│"
	)
	innerW := max(totalWidth-2, 1)
	innerH := max(height-2, 1)
	content := m.panelLines(innerW)

	count := ""
	if len(content) > innerH {
		count = fmt.Sprintf(" %d/%d ", innerH, len(content))
		content = content[:innerH]
	}
	titleSeg := " " + m.panelTitle() + " "
	dashes := totalWidth - 4 - lipgloss.Width(titleSeg) - lipgloss.Width(count)
	if dashes < 0 {
		count = ""
		dashes = totalWidth - 4 - lipgloss.Width(titleSeg)
	}
	if dashes < 0 {
		titleSeg = " … "
		dashes = max(totalWidth-4-lipgloss.Width(titleSeg), 0)
	}
	border := styles.PanelBorder.Render
	rows := make([]string, 0, height)
	rows = append(rows, border(tlc+hz)+styles.PanelTitle.Render(titleSeg)+border(strings.Repeat(hz, dashes))+border(count)+border(hz+trc))
	for i := 0; i < innerH; i++ {
		var line string
		if i < len(content) {
			line = content[i]
		}
		w := lipgloss.Width(line)
		if w > innerW {
			line = truncate.StringWithTail(line, uint(innerW), "…")
			w = lipgloss.Width(line)
		}
		if w < innerW {
			line += strings.Repeat(" ", innerW-w)
		}
		rows = append(rows, border(vt)+styles.PanelBody.Render(line)+border(vt))
	}
	rows = append(rows, border(blc+strings.Repeat(hz, innerW)+brc))
	return strings.Join(rows, "\n")
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = resize.Width
	}
	if !m.fixedHeight {
		m.height = resize.Height
	}
	m.help.Width = m.treeColumnWidth()
	m.syncViewport(m.currentLevel())
	return nil
}

func (m *Model) maxVisibleItems() int {
	if m.height <= 0 {
		return -1
	}
	used := bottomBarRows
	if m.header() != "" {
		used++
	}
	if m.currentInfo() != "" {
		used += 2
	}
	if m.showFooter {
		used += 3
	}
	if m.panelWidth() == 0 && m.menu != nil {
		used += 2 + panelInlineMaxLines
	}
	return max(m.height-used, 1)
}

func (m *Model) setInfo(message string) {
	m.infoMsg = message
	m.infoExpire = time.Now().Add(infoLifetime)
}

func (m *Model) forceClearInfo() {
	m.infoMsg = ""
	m.infoExpire = time.Time{}
}

func (m *Model) currentInfo() string {
	if m.infoMsg != "" && !m.infoExpire.IsZero() && time.Now().After(m.infoExpire) {
		m.forceClearInfo()
	}
	return m.infoMsg
}

func limitHeight(lines []styledLine, height, width int) []styledLine {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	if height == 1 {
		return []styledLine{{text: truncateText("…", width)}}
	}
	trimmed := make([]styledLine, 0, height)
	trimmed = append(trimmed, lines[:height-1]...)
	return append(trimmed, styledLine{text: truncateText("…", width)})
}

func applyWidth(lines []styledLine, width int) []styledLine {
	if width <= 0 {
		return lines
	}
	result := make([]styledLine, len(lines))
	for i, line := range lines {
		line.text = truncateText(line.text, width)
		result[i] = line
	}
	return result
}

func renderLines(lines []styledLine) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		text := line.text
		runes := []rune(text)
		if line.highlightFrom > 0 && line.highlightFrom < len(runes) {
			head := string(runes[:line.highlightFrom])
			tail := string(runes[line.highlightFrom:])
			if line.prefixStyle != nil {
				head = line.prefixStyle.Render(head)
			}
			if line.style != nil {
				tail = line.style.Render(tail)
			}
			text = head + tail
		} else if line.style != nil && text != "" {
			text = line.style.Render(text)
		}
		out[i] = text
	}
	return strings.Join(out, "\n")
}

func truncateText(text string, width int) string {
	if width <= 0 || lipgloss.Width(text) <= width {
		return text
	}
	return truncate.StringWithTail(text, uint(width), "…")
}
