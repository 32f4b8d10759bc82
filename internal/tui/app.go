package tui

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/jask/fintree/internal/config"
	"github.com/jask/fintree/internal/logging"
	"github.com/jask/fintree/internal/prefs"
	"github.com/jask/fintree/internal/service"
	"github.com/jask/fintree/internal/session"
)

type tab int

const (
	tabAccounts tab = iota
	tabAccountCategories
	tabTransactions
	tabTransactionCategories
)

var tabs = []tab{tabAccounts, tabAccountCategories, tabTransactions, tabTransactionCategories}

func (t tab) kind() (service.Kind, bool) {
	switch t {
	case tabAccounts:
		return service.KindAccounts, true
	case tabAccountCategories:
		return service.KindAccountCategories, true
	case tabTransactionCategories:
		return service.KindTransactionCategories, true
	default:
		return "", false
	}
}

func (t tab) title() string {
	if k, ok := t.kind(); ok {
		return k.Title()
	}
	return "Transactions"
}

// App ties together views.
type App struct {
	ctx      context.Context
	cfg      config.Config
	svc      *service.Services
	sessions session.Provider
	prefs    *prefs.Store
	logger   *slog.Logger
	theme    Theme
	keys     keyMap

	userID string
	saved  prefs.Prefs
	snap   service.Snapshot
	loaded bool

	active  int
	trees   map[service.Kind]*treeTab
	txTable table.Model

	form     *form
	reparent *reparentModal
	chooser  *chooser
	confirm  *confirmState

	status string
	isErr  bool
	width  int
	height int
}

// New builds the app. store may be nil, in which case nothing is persisted.
func New(ctx context.Context, cfg config.Config, svc *service.Services, sessions session.Provider, store *prefs.Store, logger *slog.Logger) *App {
	if logger == nil {
		logger = logging.Discard()
	}
	a := &App{
		ctx:      ctx,
		cfg:      cfg,
		svc:      svc,
		sessions: sessions,
		prefs:    store,
		logger:   logger.With("component", logging.CompUI),
		theme:    ThemeByName(cfg.UI.Theme),
		keys:     defaultKeyMap(),
		trees:    make(map[service.Kind]*treeTab),
	}
	for _, k := range service.Kinds() {
		a.trees[k] = a.newTreeTab(k)
	}
	a.txTable = newTransactionTable(a.theme)
	return a
}

func (a *App) pickerLogger() *slog.Logger {
	return a.logger.With("component", logging.CompPicker)
}

func (a *App) Init() tea.Cmd {
	return a.loadSession()
}

func (a *App) loadSession() tea.Cmd {
	return func() tea.Msg {
		s, err := a.sessions.Current(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		var p prefs.Prefs
		if a.prefs != nil {
			p, err = a.prefs.Load()
			if err != nil && !errors.Is(err, prefs.ErrCorrupt) {
				return errMsg{err}
			}
			if err != nil {
				a.logger.Warn("prefs unreadable, using defaults", "err", err)
			}
		}
		return sessionMsg{userID: s.UserID, prefs: p}
	}
}

func (a *App) loadSnapshot() tea.Cmd {
	return func() tea.Msg {
		snap, err := a.svc.LoadSnapshot(a.ctx, a.userID)
		if err != nil {
			return errMsg{err}
		}
		return snapshotMsg{snap: snap}
	}
}

func (a *App) applySnapshot(snap service.Snapshot) {
	a.snap = snap
	for _, k := range service.Kinds() {
		t := a.trees[k]
		t.picker.SetItems(a.entitiesOf(k))
		if !t.restored {
			t.picker.SetExpanded(a.saved.ExpandedFor(string(k)))
			t.restored = true
		}
		if dups := t.picker.Forest().Duplicates(); len(dups) > 0 {
			a.logger.Warn("duplicate ids ignored", "kind", k, "ids", dups)
		}
	}
	a.txTable.SetRows(a.transactionRows())
	a.loaded = true
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.txTable.SetColumns(transactionColumns(m.Width))
		a.txTable.SetWidth(m.Width)
		a.txTable.SetHeight(max(3, a.bodyHeight()))
		return a, nil
	case sessionMsg:
		a.userID = m.userID
		a.saved = m.prefs
		if m.prefs.Theme != "" {
			a.setTheme(m.prefs.Theme)
		}
		return a, a.loadSnapshot()
	case snapshotMsg:
		a.applySnapshot(m.snap)
		return a, nil
	case doneMsg:
		a.setStatus(string(m))
		return a, a.loadSnapshot()
	case statusMsg:
		a.setStatus(string(m))
		return a, nil
	case errMsg:
		a.setError(m.error)
		return a, nil
	case tea.MouseMsg:
		return a.handleMouse(m)
	case tea.KeyMsg:
		return a.handleKey(m)
	}
	return a, nil
}

func (a *App) setStatus(s string) {
	a.status = s
	a.isErr = false
}

func (a *App) setError(err error) {
	if err == nil {
		return
	}
	a.logger.Error("ui error", "err", err)
	a.status = "error: " + err.Error()
	a.isErr = true
}

func (a *App) currentTab() tab {
	return tabs[a.active]
}

func (a *App) currentTree() *treeTab {
	if k, ok := a.currentTab().kind(); ok {
		return a.trees[k]
	}
	return nil
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.String() == "ctrl+c" {
		return a, a.quit()
	}
	switch {
	case a.confirm != nil:
		return a.handleConfirmKey(m)
	case a.chooser != nil:
		return a.handleChooserKey(m)
	case a.reparent != nil:
		return a.handleReparentKey(m)
	case a.form != nil:
		return a.handleFormKey(m)
	}
	if !a.loaded {
		if key.Matches(m, a.keys.Quit) {
			return a, a.quit()
		}
		return a, nil
	}

	switch {
	case key.Matches(m, a.keys.NextTab):
		a.active = (a.active + 1) % len(tabs)
		return a, nil
	case key.Matches(m, a.keys.PrevTab):
		a.active = (a.active + len(tabs) - 1) % len(tabs)
		return a, nil
	}

	t := a.currentTree()
	if t != nil && t.picker.InputFocused() {
		return a.handleTreeKey(t, m)
	}
	switch {
	case key.Matches(m, a.keys.Quit):
		return a, a.quit()
	case key.Matches(m, a.keys.Theme):
		return a, a.toggleTheme()
	}
	if t == nil {
		return a.handleTransactionsKey(m)
	}
	return a.handleTreeKey(t, m)
}

func (a *App) handleFormKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := a.form
	res, cmd := f.update(m)
	switch res {
	case formCancelled:
		a.form = nil
		return a, nil
	case formPickCategory:
		a.openChooser(chooseFormCategory, f.categoryKind, "Choose category", f.category)
		return a, nil
	case formSubmitted:
		save, err := a.submitForm(f)
		if err != nil {
			f.err = err.Error()
			return a, nil
		}
		a.form = nil
		return a, save
	}
	return a, cmd
}

func (a *App) handleMouse(m tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch {
	case a.confirm != nil || a.form != nil && a.chooser == nil:
		return a, nil
	case a.chooser != nil:
		return a.clickPicker(m, chooserZone, len(a.chooser.picker.Rows()), a.chooser.picker.SetFocus, a.chooser.picker.Focus, a.handleChooserKey)
	case a.reparent != nil:
		return a.clickPicker(m, reparentZone, len(a.reparent.picker.Rows()), a.reparent.picker.SetFocus, a.reparent.picker.Focus, a.handleReparentKey)
	}
	if m.Action == tea.MouseActionPress && m.Button == tea.MouseButtonLeft {
		for i := range tabs {
			if zone.Get(tabZone(i)).InBounds(m) {
				a.active = i
				return a, nil
			}
		}
	}
	t := a.currentTree()
	if t == nil {
		var cmd tea.Cmd
		a.txTable, cmd = a.txTable.Update(m)
		return a, cmd
	}
	return a.clickPicker(m, t.zonePrefix(), len(t.picker.Rows()), t.picker.SetFocus, t.picker.Focus, func(k tea.KeyMsg) (tea.Model, tea.Cmd) {
		return a.handleTreeKey(t, k)
	})
}

// clickPicker maps wheel events to up/down and a click on the focused row
// to enter; any other row click moves the focus.
func (a *App) clickPicker(m tea.MouseMsg, prefix string, n int, setFocus func(int), focus func() int, send func(tea.KeyMsg) (tea.Model, tea.Cmd)) (tea.Model, tea.Cmd) {
	switch m.Button {
	case tea.MouseButtonWheelUp:
		return send(tea.KeyMsg{Type: tea.KeyUp})
	case tea.MouseButtonWheelDown:
		return send(tea.KeyMsg{Type: tea.KeyDown})
	case tea.MouseButtonLeft:
		if m.Action != tea.MouseActionPress {
			return a, nil
		}
	default:
		return a, nil
	}
	for i := 0; i < n; i++ {
		if !zone.Get(rowZone(prefix, i)).InBounds(m) {
			continue
		}
		if i == focus() {
			return send(tea.KeyMsg{Type: tea.KeyEnter})
		}
		setFocus(i)
		return a, nil
	}
	return a, nil
}

func (a *App) setTheme(name string) {
	a.theme = ThemeByName(name)
	styleTable(&a.txTable, a.theme)
}

func (a *App) toggleTheme() tea.Cmd {
	next := "latte"
	if a.theme.Name == "latte" {
		next = "mocha"
	}
	a.setTheme(next)
	if a.prefs == nil {
		return nil
	}
	store := a.prefs
	return func() tea.Msg {
		if err := store.Update(func(p *prefs.Prefs) { p.Theme = next }); err != nil {
			return errMsg{err}
		}
		return statusMsg("theme " + next)
	}
}

// saveExpansion writes the expansion of every hierarchy tab to prefs.
func (a *App) saveExpansion() error {
	if a.prefs == nil || !a.loaded {
		return nil
	}
	return a.prefs.Update(func(p *prefs.Prefs) {
		for k, t := range a.trees {
			p.SetExpanded(string(k), t.picker.Expanded())
		}
	})
}

func (a *App) quit() tea.Cmd {
	if err := a.saveExpansion(); err != nil {
		a.logger.Error("save expansion", "err", err)
	}
	return tea.Quit
}

func (a *App) bodyHeight() int {
	if a.height <= 0 {
		return 20
	}
	return max(3, a.height-6)
}

func (a *App) modalWidth() int {
	if a.width <= 0 {
		return 60
	}
	return max(20, min(80, a.width-6))
}

func (a *App) modalHeight() int {
	return max(3, a.bodyHeight()-6)
}

func tabZone(i int) string {
	return "tab-" + tabs[i].title()
}

func (a *App) View() string {
	th := a.theme
	header := th.Title.Render("fintree") + "  " + a.renderTabs()

	var body string
	switch {
	case a.confirm != nil:
		body = a.renderConfirm()
	case a.chooser != nil:
		body = a.renderChooser()
	case a.reparent != nil:
		body = a.renderReparent()
	case a.form != nil:
		body = a.form.view(th)
	case !a.loaded:
		body = th.Muted.Render("Loading...")
	case a.currentTree() != nil:
		body = a.renderTree(a.currentTree())
	default:
		body = a.renderTransactions()
	}

	status := th.Muted.Render(a.status)
	if a.isErr {
		status = th.Error.Render(a.status)
	}
	view := lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", status, th.Muted.Render(a.helpText()))
	return zone.Scan(view)
}

func (a *App) renderTabs() string {
	parts := make([]string, 0, len(tabs))
	for i, t := range tabs {
		style := a.theme.Tab
		if i == a.active {
			style = a.theme.ActiveTab
		}
		parts = append(parts, zone.Mark(tabZone(i), style.Render(t.title())))
	}
	return strings.Join(parts, " ")
}

func (a *App) helpText() string {
	k := a.keys
	if a.currentTree() == nil {
		return helpLine(k.NextTab, k.New, k.Category, k.Delete, k.Theme, k.Quit)
	}
	return helpLine(k.NextTab, k.New, k.AddChild, k.Edit, k.Reparent, k.Delete, k.Theme, k.Quit) + "  [/] search  [space] expand"
}
