package ui

import (
	"reflect"
	"strings"
	"time"

	"github.com/atomicstack/multiview/internal/mv"
	"github.com/atomicstack/multiview/internal/pool"
	"github.com/atomicstack/multiview/internal/render/menu"
	"github.com/atomicstack/multiview/internal/render/tree"
	"github.com/atomicstack/multiview/internal/theme"
	"github.com/atomicstack/multiview/internal/ui/command"
	uistate "github.com/atomicstack/multiview/internal/ui/state"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	lru "github.com/hashicorp/golang-lru/v2"
)

type level = uistate.Level

const (
	headerSeparator = "→"
	panelCacheSize  = 64
)

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// Options wires the program to the rendering backends and the pool.
type Options struct {
	Tree      *tree.Backend
	Menu      *menu.Backend
	Submitter mv.Submitter
	Tracker   *pool.Tracker
	Width     int
	Height    int
	Footer    bool
	// Refresh redraws periodically so pulses fade and the running-task
	// footer stays current. Zero disables the ticker.
	Refresh time.Duration
}

// Model is the Bubble Tea program drawing the window tree with the tray
// menu of the current level beside it.
type Model struct {
	stack       []*level
	errMsg      string
	infoMsg     string
	infoExpire  time.Time
	width       int
	height      int
	fixedWidth  bool
	fixedHeight bool
	showFooter  bool
	refresh     time.Duration

	tree    *tree.Backend
	menu    *menu.Backend
	tracker *pool.Tracker
	bus     *command.Bus

	keys              KeyMap
	help              help.Model
	filterCursor      cursor.Model
	filterCursorDirty bool

	generation uint64
	panels     *lru.Cache[panelKey, []string]

	handlers map[reflect.Type]msgHandler
}

// NewModel builds the program with the root widget as its first level.
func NewModel(opts Options) *Model {
	panels, _ := lru.New[panelKey, []string](panelCacheSize)
	m := &Model{
		tree:       opts.Tree,
		menu:       opts.Menu,
		tracker:    opts.Tracker,
		bus:        command.New(opts.Submitter),
		showFooter: opts.Footer,
		refresh:    opts.Refresh,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		panels:     panels,
	}
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}
	m.stack = []*level{m.rootLevel()}
	c := cursor.New()
	if styles.Cursor != nil {
		c.Style = styles.Cursor.Copy()
	}
	if styles.Filter != nil {
		c.TextStyle = styles.Filter.Copy()
	}
	c.SetChar(" ")
	m.filterCursor = c
	m.registerHandlers()
	m.syncViewport(m.currentLevel())
	return m
}

func (m *Model) rootLevel() *level {
	if m.tree == nil {
		return uistate.NewLevel("", "", nil, nil)
	}
	root := m.tree.Snapshot()
	entries, _ := m.tree.Entries(root.ID)
	return uistate.NewLevel(root.ID, root.Name, root.Model, itemsFromEntries(entries))
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{}
	if m.tree != nil {
		cmds = append(cmds, waitForChanges(m.tree))
	}
	if m.refresh > 0 {
		cmds = append(cmds, tickEvery(m.refresh))
	}
	if cmd := m.filterCursor.Focus(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 4)
	if cmd := m.updateFilterCursorModel(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if handler := m.handlerFor(msg); handler != nil {
		if cmd := handler(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, m.finishUpdate(cmds)
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(changedMsg{}):        m.handleChangedMsg,
		reflect.TypeOf(tickMsg{}):           m.handleTickMsg,
		reflect.TypeOf(command.ResultMsg{}): m.handleResultMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) finishUpdate(cmds []tea.Cmd) tea.Cmd {
	if m.filterCursorDirty {
		m.filterCursorDirty = false
		m.filterCursor.Blink = false
		if cmd := m.filterCursor.BlinkCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (m *Model) currentLevel() *level {
	if len(m.stack) == 0 {
		return nil
	}
	return m.stack[len(m.stack)-1]
}

func (m *Model) header() string {
	titles := make([]string, 0, len(m.stack))
	for _, lvl := range m.stack {
		if title := strings.TrimSpace(lvl.Title); title != "" {
			titles = append(titles, title)
		}
	}
	return strings.Join(titles, headerSeparator)
}
