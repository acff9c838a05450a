package ui

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/homepanel/internal/channel"
	"github.com/desertthunder/homepanel/internal/clock"
	"github.com/desertthunder/homepanel/internal/formatter"
	"github.com/desertthunder/homepanel/internal/models"
	"github.com/desertthunder/homepanel/internal/player"
	"github.com/desertthunder/homepanel/internal/services"
	"github.com/desertthunder/homepanel/internal/tasks"
)

// Tab is one of the panel's top-level views.
type Tab int

const (
	PlayerTab Tab = iota
	PlaylistTab
	BrowserTab
	EventsTab
)

var tabNames = []string{"Player", "Playlist", "Browser", "Events"}

func (t Tab) String() string {
	if t < 0 || int(t) >= len(tabNames) {
		return ""
	}
	return tabNames[t]
}

const (
	volumeStep       = 5
	seekStep         = 10
	defaultMaxEvents = 100
)

// Player is the player controller as seen by the TUI.
type Player interface {
	View() player.View
	Apply(status *models.MusicStatus, track *models.Track)
	Transport(ctx context.Context, action string) error
	AdjustVolume(ctx context.Context, delta int) error
	SeekBy(ctx context.Context, delta int) error
}

// Library browses and plays library entries.
type Library interface {
	Browse(ctx context.Context, uri string) (*services.Listing, error)
	PlayFile(ctx context.Context, resource string) (*models.MusicStatus, error)
}

// Loader fetches everything the panel shows.
type Loader interface {
	Load(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*tasks.PanelData, error)
}

// Deps are the TUI's collaborators. Clock defaults to wall time; MaxEvents to 100.
type Deps struct {
	Player    Player
	Library   Library
	Loader    Loader
	Clock     clock.Clock
	MaxEvents int
}

// Model represents the TUI application state.
type Model struct {
	ctx  context.Context
	deps Deps

	tab    Tab
	width  int
	height int
	now    time.Time

	view   player.View
	conn   channel.State
	uri    string
	queue  []models.Track
	events []list.Item

	queueList   list.Model
	browserList list.Model
	eventList   list.Model
	seek        progress.Model

	status string
	err    error
	help   help.Model
	keys   keyMap
}

// NewModel creates a new TUI model with the provided dependencies. The Player tab is active.
func NewModel(ctx context.Context, deps Deps) *Model {
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	if deps.MaxEvents <= 0 {
		deps.MaxEvents = defaultMaxEvents
	}

	m := &Model{
		ctx:         ctx,
		deps:        deps,
		tab:         PlayerTab,
		now:         deps.Clock.Now(),
		view:        player.View{State: models.StateStop},
		conn:        channel.StateClosed,
		queueList:   newList("Play Queue"),
		browserList: newList("Library"),
		eventList:   newList("Events"),
		seek:        progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(40)),
		help:        help.New(),
		keys:        newKeyMap(),
	}
	if deps.Player != nil {
		m.view = deps.Player.View()
	}
	return m
}

func newList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	return l
}

// Tab returns the active tab.
func (m *Model) Tab() Tab {
	return m.tab
}

// Init loads the panel and starts the header clock.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.tick())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for _, l := range []*list.Model{&m.queueList, &m.browserList, &m.eventList} {
			l.SetSize(max(msg.Width-4, 10), max(msg.Height-8, 5))
		}
		m.seek.Width = max(msg.Width-24, 10)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateActiveList(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPlayerChanged:
		m.view = msg.data.(player.View)
		m.refreshQueue()
		return m, nil

	case MsgConnection:
		m.conn = msg.data.(channel.State)
		return m, nil

	case MsgEvent:
		m.events = append([]list.Item{msg.data.(eventItem)}, m.events...)
		if len(m.events) > m.deps.MaxEvents {
			m.events = m.events[:m.deps.MaxEvents]
		}
		return m, m.eventList.SetItems(m.events)

	case MsgPanelLoaded:
		res := msg.data.(panelLoaded)
		if res.err != nil {
			m.err = res.err
			return m, nil
		}
		m.err = nil
		m.applyPanel(res.data)
		return m, nil

	case MsgListing:
		res := msg.data.(listingResult)
		if res.err != nil {
			m.status = fmt.Sprintf("browse %s: %v", displayURI(res.uri), res.err)
			return m, nil
		}
		m.uri = res.uri
		m.browserList.Title = "Library: " + displayURI(res.uri)
		return m, m.browserList.SetItems(listingItems(res.listing))

	case MsgActionDone:
		res := msg.data.(actionResult)
		if res.err != nil {
			m.status = fmt.Sprintf("%s: %v", res.action, res.err)
		} else {
			m.status = ""
		}
		return m, nil

	case MsgClockTick:
		m.now = msg.data.(time.Time)
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) applyPanel(d *tasks.PanelData) {
	if d == nil {
		return
	}
	if m.deps.Player != nil && (d.Status != nil || d.Track != nil) {
		m.deps.Player.Apply(d.Status, d.Track)
		m.view = m.deps.Player.View()
	}

	m.queue = d.Queue
	m.refreshQueue()

	if d.Listing != nil {
		m.uri = ""
		m.browserList.SetItems(listingItems(d.Listing))
	}

	if !d.OK() {
		failed := make([]string, 0, len(d.Errors))
		for _, e := range d.Errors {
			failed = append(failed, e.Endpoint)
		}
		m.status = "failed to load: " + strings.Join(failed, ", ")
	}
}

// refreshQueue rebuilds the queue items, marking the current track.
func (m *Model) refreshQueue() {
	items := make([]list.Item, len(m.queue))
	for i, t := range m.queue {
		current := m.view.ShowTrack && t.File != "" && t.File == m.view.Track.File
		items[i] = queueItem{track: t, current: current}
	}
	m.queueList.SetItems(items)
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.nextTab):
		m.tab = (m.tab + 1) % Tab(len(tabNames))
		return m, nil
	case key.Matches(msg, m.keys.prevTab):
		m.tab = (m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames))
		return m, nil
	case key.Matches(msg, m.keys.tab1):
		m.tab = PlayerTab
		return m, nil
	case key.Matches(msg, m.keys.tab2):
		m.tab = PlaylistTab
		return m, nil
	case key.Matches(msg, m.keys.tab3):
		m.tab = BrowserTab
		return m, nil
	case key.Matches(msg, m.keys.tab4):
		m.tab = EventsTab
		return m, nil
	case key.Matches(msg, m.keys.playPause):
		if m.view.State == models.StatePlay {
			return m, m.transport("pause")
		}
		return m, m.transport("play")
	case key.Matches(msg, m.keys.stop):
		return m, m.transport("stop")
	case key.Matches(msg, m.keys.next):
		return m, m.transport("next")
	case key.Matches(msg, m.keys.previous):
		return m, m.transport("previous")
	case key.Matches(msg, m.keys.random):
		return m, m.transport("random")
	case key.Matches(msg, m.keys.repeat):
		return m, m.transport("repeat")
	case key.Matches(msg, m.keys.volumeUp):
		return m, m.volume(volumeStep)
	case key.Matches(msg, m.keys.volumeDown):
		return m, m.volume(-volumeStep)
	case key.Matches(msg, m.keys.seekFwd):
		return m, m.seekBy(seekStep)
	case key.Matches(msg, m.keys.seekBack):
		return m, m.seekBy(-seekStep)
	case key.Matches(msg, m.keys.reload):
		return m, m.load()
	case key.Matches(msg, m.keys.enter):
		return m, m.activate()
	case key.Matches(msg, m.keys.back):
		if m.tab == BrowserTab && m.uri != "" {
			return m, m.browse(parentURI(m.uri))
		}
		return m, nil
	}

	return m.updateActiveList(msg)
}

// activate plays or opens the selected entry of the active list.
func (m *Model) activate() tea.Cmd {
	switch m.tab {
	case PlaylistTab:
		if it, ok := m.queueList.SelectedItem().(queueItem); ok {
			return m.playFile(it.track.File)
		}
	case BrowserTab:
		it, ok := m.browserList.SelectedItem().(browserItem)
		if !ok {
			return nil
		}
		switch it.kind {
		case models.DirectoryItem:
			return m.browse(it.name)
		case models.FileItem:
			return m.playFile(it.name)
		case models.PlaylistItem:
			m.status = fmt.Sprintf("%s: export stored playlists with `homepanel music playlists export`", it.name)
		}
	}
	return nil
}

func (m *Model) updateActiveList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.tab {
	case PlaylistTab:
		m.queueList, cmd = m.queueList.Update(msg)
	case BrowserTab:
		m.browserList, cmd = m.browserList.Update(msg)
	case EventsTab:
		m.eventList, cmd = m.eventList.Update(msg)
	}
	return m, cmd
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return clockTickMsg(t)
	})
}

func (m *Model) load() tea.Cmd {
	if m.deps.Loader == nil {
		return nil
	}
	return func() tea.Msg {
		data, err := m.deps.Loader.Load(m.ctx, nil)
		return panelLoadedMsg(data, err)
	}
}

func (m *Model) browse(uri string) tea.Cmd {
	if m.deps.Library == nil {
		return nil
	}
	return func() tea.Msg {
		listing, err := m.deps.Library.Browse(m.ctx, uri)
		return listingMsg(uri, listing, err)
	}
}

func (m *Model) do(action string, f func(ctx context.Context) error) tea.Cmd {
	if m.deps.Player == nil {
		return nil
	}
	return func() tea.Msg {
		return actionDoneMsg(action, f(m.ctx))
	}
}

func (m *Model) transport(action string) tea.Cmd {
	return m.do(action, func(ctx context.Context) error {
		return m.deps.Player.Transport(ctx, action)
	})
}

func (m *Model) volume(delta int) tea.Cmd {
	return m.do("volume", func(ctx context.Context) error {
		return m.deps.Player.AdjustVolume(ctx, delta)
	})
}

func (m *Model) seekBy(delta int) tea.Cmd {
	return m.do("seek", func(ctx context.Context) error {
		return m.deps.Player.SeekBy(ctx, delta)
	})
}

func (m *Model) playFile(resource string) tea.Cmd {
	if m.deps.Library == nil || resource == "" {
		return nil
	}
	return m.do("play", func(ctx context.Context) error {
		status, err := m.deps.Library.PlayFile(ctx, resource)
		if err != nil {
			return err
		}
		m.deps.Player.Apply(status, nil)
		return nil
	})
}

func parentURI(uri string) string {
	parent := path.Dir(uri)
	if parent == "." || parent == "/" {
		return ""
	}
	return parent
}

func displayURI(uri string) string {
	if uri == "" {
		return "/"
	}
	return uri
}

// View renders the header, the active tab, and the footer.
func (m *Model) View() string {
	var body string
	switch m.tab {
	case PlayerTab:
		body = m.renderPlayer()
	case PlaylistTab:
		body = m.queueList.View()
	case BrowserTab:
		body = m.browserList.View()
	case EventsTab:
		if len(m.events) == 0 {
			body = styles.help.Render("No events received yet")
		} else {
			body = m.eventList.View()
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), "", body, "", m.renderFooter())
}

func (m *Model) renderHeader() string {
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if Tab(i) == m.tab {
			tabs[i] = styles.activeTab.Render(label)
		} else {
			tabs[i] = styles.tab.Render(label)
		}
	}

	clockText := fmt.Sprintf("%s  %s", formatter.DateString(m.now), formatter.TimeString(m.now))
	return lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(tabs, " "), "   ", m.renderConnection(), "   ", clockText)
}

func (m *Model) renderConnection() string {
	label := "● " + m.conn.String()
	switch m.conn {
	case channel.StateOpen:
		return styles.ok.Render(label)
	case channel.StateConnecting:
		return styles.warn.Render(label)
	default:
		return styles.err.Render(label)
	}
}

func (m *Model) renderPlayer() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress ctrl+r to reload, q to quit", m.err))
	}

	v := m.view
	var b strings.Builder

	if v.ShowTrack {
		b.WriteString(styles.track.Render(v.Track.DisplayTitle()))
		b.WriteString("\n")
		meta := v.Track.Artist
		if v.Track.Album != "" {
			meta = strings.TrimPrefix(fmt.Sprintf("%s • %s", meta, v.Track.Album), " • ")
		}
		b.WriteString(meta)
	} else {
		b.WriteString(styles.help.Render("No track playing"))
	}
	b.WriteString("\n\n")

	percent := 0.0
	if v.SeekEnabled && v.HasPosition && v.HasLength && v.Length > 0 {
		percent = min(float64(v.Elapsed)/float64(v.Length), 1)
	}
	fmt.Fprintf(&b, "%s %s / %s\n\n", m.seek.ViewAs(percent), v.ElapsedText(), v.LengthText())

	fmt.Fprintf(&b, "%s   vol %d%%   random %s   repeat %s",
		stateLabel(v.State), v.Volume, onOff(v.Random), onOff(v.Repeat))
	return b.String()
}

func stateLabel(s models.PlayerState) string {
	switch s {
	case models.StatePlay:
		return styles.ok.Render("▶ playing")
	case models.StatePause:
		return styles.warn.Render("⏸ paused")
	default:
		return "■ stopped"
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (m *Model) renderFooter() string {
	helpView := m.help.ShortHelpView(m.keys.transportKeys())
	if m.status == "" {
		return helpView
	}
	return fmt.Sprintf("%s\n%s", styles.warn.Render(m.status), helpView)
}
