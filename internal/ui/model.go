package ui

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-faster/errors"

	"github.com/five82/storefront/internal/cart"
	"github.com/five82/storefront/internal/catalog"
	"github.com/five82/storefront/internal/compare"
	"github.com/five82/storefront/internal/obs"
	"github.com/five82/storefront/internal/persist"
	"github.com/five82/storefront/internal/prefs"
	"github.com/five82/storefront/internal/recent"
	"github.com/five82/storefront/internal/saved"
	"github.com/five82/storefront/internal/shop"
)

const lookupTimeout = 5 * time.Second

// View identifies a top-level screen.
type View int

const (
	ViewCatalog View = iota
	ViewCart
	ViewSaved
	ViewCompare
	ViewRecent
)

const viewCount = int(ViewRecent) + 1

var viewOrder = []View{ViewCatalog, ViewCart, ViewSaved, ViewCompare, ViewRecent}

func (v View) String() string {
	switch v {
	case ViewCart:
		return "cart"
	case ViewSaved:
		return "saved"
	case ViewCompare:
		return "compare"
	case ViewRecent:
		return "recent"
	default:
		return "catalog"
	}
}

func parseView(s string) View {
	for _, v := range viewOrder {
		if v.String() == s {
			return v
		}
	}
	return ViewCatalog
}

// Options configure the UI runtime.
type Options struct {
	Context context.Context
	Session *shop.Session
	// Updates delivers catalog poll results. Nil leaves the catalog empty.
	Updates <-chan catalog.Snapshot
	Prefs   prefs.Prefs
	// PrefsStore persists theme and view changes. Nil disables saving.
	PrefsStore   *persist.Adapter
	StorageLabel string
	Logger       *slog.Logger
	// LogFile is tailed by the log panel. Empty disables the panel.
	LogFile string
	// PersistErrors delivers failed saves reported by the session stores.
	PersistErrors <-chan error
}

// storeViews is the UI's read view of every store. Subscriptions replace the
// snapshots after each committed change.
type storeViews struct {
	cart    cart.State
	compare compare.State
	saved   saved.State
	recent  recent.State
}

type noticeLevel int

const (
	noticeInfo noticeLevel = iota
	noticeSuccess
	noticeWarn
	noticeError
)

type notice struct {
	text  string
	level noticeLevel
}

// detailState is the product panel opened with enter.
type detailState struct {
	item    catalog.Item
	related []catalog.Item
}

// Model is the bubbletea model for the storefront shell.
type Model struct {
	ctx        context.Context
	session    *shop.Session
	updates    <-chan catalog.Snapshot
	persistErr <-chan error
	prefsStore *persist.Adapter
	logger     *slog.Logger

	views       *storeViews
	unsubscribe []func()

	snapshot    catalog.Snapshot
	filter      *catalog.Filter
	filterInput textinput.Model
	filtering   bool

	currentView View
	cursors     [viewCount]int
	detail      *detailState
	logFile     string
	logLines    []string // nil when the log panel is closed

	theme    Theme
	keys     keyMap
	help     help.Model
	showHelp bool
	notice   notice

	storageLabel  string
	width, height int
	now           func() time.Time
}

type catalogMsg catalog.Snapshot

type detailMsg struct {
	item    catalog.Item
	related []catalog.Item
	err     error
}

type persistErrMsg struct{ err error }

type logMsg struct {
	lines []string
	err   error
}

// New builds the model and subscribes it to the session's stores. Call Close
// when done to drop the subscriptions.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	input := textinput.New()
	input.Prompt = "filter> "
	input.Placeholder = `category == "toys" && price < 20`
	input.CharLimit = 200

	m := Model{
		ctx:          ctx,
		session:      opts.Session,
		updates:      opts.Updates,
		persistErr:   opts.PersistErrors,
		prefsStore:   opts.PrefsStore,
		logger:       logger,
		filterInput:  input,
		currentView:  parseView(opts.Prefs.View),
		theme:        GetTheme(opts.Prefs.Theme),
		keys:         defaultKeyMap(),
		help:         help.New(),
		storageLabel: opts.StorageLabel,
		logFile:      opts.LogFile,
		now:          time.Now,
	}
	m.keys.syncKeys(m.currentView)

	if src := opts.Prefs.Filter; src != "" {
		if f, err := catalog.CompileFilter(src); err == nil {
			m.filter = f
			m.filterInput.SetValue(src)
		}
	}

	s := opts.Session
	views := &storeViews{
		cart:    s.Cart.State(),
		compare: s.Compare.State(),
		saved:   s.Saved.State(),
		recent:  s.Recent.State(),
	}
	m.views = views
	m.unsubscribe = []func(){
		s.Cart.Subscribe(func(st cart.State) { views.cart = st }),
		s.Compare.Subscribe(func(st compare.State) { views.compare = st }),
		s.Saved.Subscribe(func(st saved.State) { views.saved = st }),
		s.Recent.Subscribe(func(st recent.State) { views.recent = st }),
	}
	return m
}

// Close drops the model's store subscriptions.
func (m Model) Close() {
	for _, unsub := range m.unsubscribe {
		unsub()
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForCatalog(m.updates), waitForPersistError(m.ctx, m.persistErr))
}

func waitForCatalog(ch <-chan catalog.Snapshot) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return catalogMsg(snap)
	}
}

func waitForPersistError(ctx context.Context, ch <-chan error) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case err, ok := <-ch:
			if !ok {
				return nil
			}
			return persistErrMsg{err: err}
		case <-ctx.Done():
			return nil
		}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.filterInput.Width = max(msg.Width-12, 10)
		return m, nil

	case catalogMsg:
		m.applyCatalog(catalog.Snapshot(msg))
		return m, waitForCatalog(m.updates)

	case detailMsg:
		if msg.err != nil {
			m.setNotice(noticeError, msg.err.Error())
			return m, nil
		}
		m.session.RecordView(msg.item)
		m.detail = &detailState{item: msg.item, related: msg.related}
		return m, nil

	case persistErrMsg:
		m.setNotice(noticeError, "save failed: "+firstLine(msg.err.Error()))
		return m, waitForPersistError(m.ctx, m.persistErr)

	case logMsg:
		if msg.err != nil {
			m.setNotice(noticeError, "read log: "+msg.err.Error())
			return m, nil
		}
		m.logLines = msg.lines
		if m.logLines == nil {
			m.logLines = []string{}
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) applyCatalog(snap catalog.Snapshot) {
	m.snapshot = snap
	if snap.LastError != nil {
		m.logger.Warn("catalog poll failed", "error", snap.LastError, "failures", snap.ConsecutiveFailures)
	}
	if changed := m.session.ApplyCatalog(snap); changed > 0 {
		m.setNotice(noticeWarn, pluralize(changed, "cart line")+" updated to current stock")
	}
	m.clampCursors()
}

// lookup fetches a product and its related products off the update loop.
func (m Model) lookup(item catalog.Item) tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
		defer cancel()

		fresh, err := session.Lookup(ctx, item.Slug)
		if errors.Is(err, catalog.ErrNotFound) {
			return detailMsg{err: errors.Errorf("%s is no longer in the catalog", item.Name)}
		}
		if err != nil {
			// Offline catalog: fall back to the snapshot we already hold.
			fresh = item
		}
		related, _ := session.Related(ctx, fresh)
		return detailMsg{item: fresh, related: related}
	}
}

// tailLog reads the end of the diagnostic log off the update loop.
func (m Model) tailLog(rows int) tea.Cmd {
	path := m.logFile
	return func() tea.Msg {
		lines, err := obs.Tail(path, rows)
		return logMsg{lines: lines, err: err}
	}
}

func (m *Model) setNotice(level noticeLevel, text string) {
	m.notice = notice{text: text, level: level}
}

func (m Model) savePrefs() {
	if m.prefsStore == nil {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, View: m.currentView.String()}
	if m.filter != nil {
		p.Filter = m.filter.String()
	}
	if err := prefs.Save(m.prefsStore, p); err != nil {
		m.logger.Warn("prefs save failed", "error", err)
	}
}

// Run starts the program and blocks until the user quits or ctx is cancelled.
func Run(opts Options) error {
	if opts.Session == nil {
		return errors.New("ui: session is required")
	}
	m := New(opts)
	defer m.Close()

	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "run ui")
	}
	return nil
}
