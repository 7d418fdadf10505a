// Package tui provides the interactive Bubble Tea dashboard for piggy.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/piggymobile/piggy/internal/cli"
	"github.com/piggymobile/piggy/internal/config"
	"github.com/piggymobile/piggy/internal/model"
	"github.com/piggymobile/piggy/internal/pipeline"
	"github.com/piggymobile/piggy/internal/store"
	"github.com/piggymobile/piggy/internal/tui/components"
	"github.com/piggymobile/piggy/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Store is what the dashboard reads and writes.
type Store interface {
	pipeline.Reader
	RecentExpenses(ctx context.Context, userID string, limit int) ([]model.ExpenseRecord, error)
	AddExpense(ctx context.Context, e model.ExpenseRecord) (int64, error)
	DeleteExpense(ctx context.Context, userID string, id int64) error
	CreateBudget(ctx context.Context, b model.BudgetRecord) (int64, error)
	UpdateBudget(ctx context.Context, b model.BudgetRecord, currentMonth string) error
}

// DataLoadedMsg is sent when a load of the dashboard data finishes.
type DataLoadedMsg struct {
	Overview pipeline.Overview
	Recent   []model.ExpenseRecord
	LoadTime time.Duration
	Err      error
}

// SavedMsg is sent when a write to the store finishes.
type SavedMsg struct {
	Note string
	Err  error
}

type refreshTickMsg struct{}

type formKind int

const (
	formNone formKind = iota
	formExpense
	formBudget
	formSetup
)

const (
	tabStatus = iota
	tabExpenses
	tabHistory
	tabSavings
	tabTips
)

// App is the root Bubble Tea model.
type App struct {
	store Store
	sess  config.Session
	cfg   config.Config
	money *cli.Money
	now   func() time.Time

	// Data
	overview    pipeline.Overview
	recent      []model.ExpenseRecord
	loaded      bool
	loadErr     error
	loadTime    time.Duration
	lastRefresh time.Time
	refreshing  bool
	interval    time.Duration

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	flash     string
	flashBad  bool

	// Embedded huh form; the values live on the heap so copies of App
	// share them with the form.
	form        *huh.Form
	kind        formKind
	expenseVals *ExpenseValues
	budgetVals  *BudgetValues
	budgetID    int64
	setupVals   *SetupValues
	needSetup   bool

	expenses table.Model
	spinner  spinner.Model
}

const (
	minTerminalWidth = 80
	maxContentWidth  = 160
	minContentHeight = 5

	recentLimit = 50
	loadTimeout = 10 * time.Second
)

// NewApp creates a new TUI app model for a logged-in session.
func NewApp(st Store, sess config.Session, cfg config.Config) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	interval := cfg.Daemon.PollInterval.Duration * 15
	if interval < 10*time.Second {
		interval = 30 * time.Second
	}

	return App{
		store:     st,
		sess:      sess,
		cfg:       cfg,
		money:     cli.MustMoney(cfg.General.Currency, cfg.General.Locale),
		now:       time.Now,
		interval:  interval,
		needSetup: !config.Exists(),
		expenses:  newExpenseTable(),
		spinner:   sp,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		a.loadCmd(),
		a.spinner.Tick,
		refreshTick(a.interval),
	)
}

func (a App) loadCmd() tea.Cmd {
	st, sess, today := a.store, a.sess, a.now()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		start := time.Now()
		ov, err := pipeline.LoadOverview(ctx, st, sess, today)
		if err != nil {
			return DataLoadedMsg{Err: err}
		}
		recent, err := st.RecentExpenses(ctx, sess.UserID, recentLimit)
		if err != nil {
			return DataLoadedMsg{Err: fmt.Errorf("loading expenses: %w", err)}
		}
		return DataLoadedMsg{Overview: ov, Recent: recent, LoadTime: time.Since(start)}
	}
}

func refreshTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return refreshTickMsg{} })
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resizeTable()
		if a.form != nil {
			a.form = a.form.WithWidth(min(msg.Width, 80)).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.form != nil {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == tabExpenses {
				a.expenses.MoveUp(1)
			}
		case tea.MouseButtonWheelDown:
			if a.activeTab == tabExpenses {
				a.expenses.MoveDown(1)
			}
		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.form != nil {
			return a.updateForm(msg)
		}
		if !a.loaded {
			return a, nil
		}
		return a.updateKey(msg)

	case DataLoadedMsg:
		a.refreshing = false
		a.loaded = true
		a.lastRefresh = a.now()
		a.loadErr = msg.Err
		if msg.Err == nil {
			a.overview = msg.Overview
			a.recent = msg.Recent
			a.loadTime = msg.LoadTime
			a.expenses.SetRows(expenseRows(a.recent, a.money))
		}
		if a.needSetup && a.form == nil {
			a.needSetup = false
			return a, a.openSetupForm()
		}
		return a, nil

	case SavedMsg:
		if msg.Err != nil {
			a.flash, a.flashBad = msg.Err.Error(), true
			return a, nil
		}
		a.flash, a.flashBad = msg.Note, false
		a.refreshing = true
		return a, a.loadCmd()

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case refreshTickMsg:
		cmds := []tea.Cmd{refreshTick(a.interval)}
		if a.loaded && !a.refreshing && a.form == nil {
			a.refreshing = true
			cmds = append(cmds, a.loadCmd())
		}
		return a, tea.Batch(cmds...)
	}

	// Forward unhandled messages to the form (cursor blinks, etc.)
	if a.form != nil {
		return a.updateForm(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}
	a.flash = ""

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if a.refreshing {
			return a, nil
		}
		a.refreshing = true
		return a, a.loadCmd()
	case "a":
		return a, a.openExpenseForm()
	case "b":
		return a, a.openBudgetForm()
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	if a.activeTab == tabExpenses {
		switch key {
		case "d", "delete":
			return a, a.deleteSelected()
		case "j", "k", "up", "down", "g", "G", "pgup", "pgdown":
			var cmd tea.Cmd
			a.expenses, cmd = a.expenses.Update(msg)
			return a, cmd
		}
	}

	if runes := msg.Runes; len(runes) == 1 {
		if idx := components.TabIdxByKey(runes[0]); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

// ─── Forms ──────────────────────────────────────────────────────

func (a *App) openExpenseForm() tea.Cmd {
	a.expenseVals = &ExpenseValues{
		Date:     model.DateKey(a.now()),
		Category: string(model.Food),
	}
	a.kind = formExpense
	return a.startForm(NewExpenseForm(a.expenseVals, a.money.Symbol()))
}

func (a *App) openBudgetForm() tea.Cmd {
	month := model.MonthKey(a.now())
	rec := model.BudgetRecord{Month: month}
	if a.overview.HasPlan {
		rec = a.overview.Month.Budget
	}
	vals := NewBudgetValues(rec)
	a.budgetVals = &vals
	a.budgetID = rec.ID
	a.kind = formBudget
	return a.startForm(NewBudgetForm(a.budgetVals, a.money.Symbol()))
}

func (a *App) openSetupForm() tea.Cmd {
	vals := NewSetupValues(a.cfg)
	a.setupVals = &vals
	a.kind = formSetup
	return a.startForm(NewSetupForm(a.setupVals))
}

func (a *App) startForm(f *huh.Form) tea.Cmd {
	a.form = f
	if a.width > 0 {
		a.form = a.form.WithWidth(min(a.width, 80)).WithHeight(a.height)
	}
	return a.form.Init()
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		kind := a.kind
		a.form, a.kind = nil, formNone
		return a, a.submit(kind)
	case huh.StateAborted:
		a.form, a.kind = nil, formNone
		return a, nil
	}
	return a, cmd
}

// submit turns a completed form into a store write.
func (a *App) submit(kind formKind) tea.Cmd {
	switch kind {
	case formExpense:
		in, err := a.expenseVals.Input()
		if err != nil {
			return savedErr(err)
		}
		return a.saveExpense(in.Record(a.sess.UserID))
	case formBudget:
		in, err := a.budgetVals.Input()
		if err != nil {
			return savedErr(err)
		}
		rec := in.Record(a.sess.UserID)
		rec.ID = a.budgetID
		return a.saveBudget(rec)
	case formSetup:
		a.setupVals.Apply(&a.cfg)
		theme.SetActive(a.cfg.Appearance.Theme)
		a.money = cli.MustMoney(a.cfg.General.Currency, a.cfg.General.Locale)
		_ = cli.SetLocale(a.cfg.General.Locale)
		a.expenses.SetRows(expenseRows(a.recent, a.money))
		if err := config.Save(a.cfg); err != nil {
			a.flash, a.flashBad = "saving config: "+err.Error(), true
			return nil
		}
		a.flash, a.flashBad = "Settings saved to "+config.Path(), false
	}
	return nil
}

func savedErr(err error) tea.Cmd {
	return func() tea.Msg { return SavedMsg{Err: err} }
}

func (a App) saveExpense(rec model.ExpenseRecord) tea.Cmd {
	st := a.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		if _, err := st.AddExpense(ctx, rec); err != nil {
			return SavedMsg{Err: err}
		}
		return SavedMsg{Note: "Expense saved"}
	}
}

func (a App) saveBudget(rec model.BudgetRecord) tea.Cmd {
	st, current := a.store, model.MonthKey(a.now())
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		var err error
		switch {
		case rec.ID != 0:
			err = st.UpdateBudget(ctx, rec, current)
		case rec.Month < current:
			err = store.ErrPastMonth
		default:
			_, err = st.CreateBudget(ctx, rec)
		}
		switch {
		case errors.Is(err, store.ErrPastMonth):
			return SavedMsg{Err: fmt.Errorf("%s is closed and can no longer be changed", cli.FormatMonth(rec.Month))}
		case errors.Is(err, store.ErrBudgetExists):
			return SavedMsg{Err: fmt.Errorf("%s already has a budget", cli.FormatMonth(rec.Month))}
		case err != nil:
			return SavedMsg{Err: err}
		}
		return SavedMsg{Note: "Budget for " + cli.FormatMonth(rec.Month) + " saved"}
	}
}

func (a App) deleteSelected() tea.Cmd {
	idx := a.expenses.Cursor()
	if idx < 0 || idx >= len(a.recent) {
		return nil
	}
	st, userID, e := a.store, a.sess.UserID, a.recent[idx]
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		if err := st.DeleteExpense(ctx, userID, e.ID); err != nil {
			return SavedMsg{Err: err}
		}
		return SavedMsg{Note: fmt.Sprintf("Deleted expense #%d", e.ID)}
	}
}

// ─── View ───────────────────────────────────────────────────────

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.form != nil {
		return a.viewForm()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  piggy needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewForm() string {
	t := theme.Active
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, a.form.View(),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ piggy"))
	b.WriteString(subtitleStyle.Render(" · Budget & Expenses"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(" Loading " + cli.FormatMonth(model.MonthKey(a.now())) + "..."))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings [][2]string
	}{
		{"Navigation", [][2]string{
			{"s e h v t", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Move in the expense list"},
		}},
		{"Actions", [][2]string{
			{"a", "Log an expense"},
			{"b", "Create or edit this month's budget"},
			{"d", "Delete the selected expense"},
			{"r", "Refresh data"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")
	for _, sec := range sections {
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind[0])),
				descStyle.Render(bind[1]))
		}
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w, h, cw := a.width, a.height, a.contentWidth()

	header := components.RenderTabBar(a.activeTab, w) + "\n" + a.renderFlash(w)

	age := ""
	if !a.lastRefresh.IsZero() {
		age = a.lastRefresh.Format("15:04:05")
	}
	statusBar := components.RenderStatusBar(w, a.sess.Email, age, a.refreshing)

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch {
	case a.loadErr != nil:
		content = components.ContentCard("Error",
			lipgloss.NewStyle().Foreground(t.Red).Render(a.loadErr.Error()), cw)
	case a.activeTab == tabStatus:
		content = a.renderStatusTab(cw)
	case a.activeTab == tabExpenses:
		content = a.renderExpensesTab(cw, contentH)
	case a.activeTab == tabHistory:
		content = a.renderHistoryTab(cw)
	case a.activeTab == tabSavings:
		content = a.renderSavingsTab(cw)
	case a.activeTab == tabTips:
		content = a.renderTipsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) renderFlash(w int) string {
	t := theme.Active
	style := lipgloss.NewStyle().Background(t.Surface).Width(w)
	if a.flash == "" {
		month := cli.FormatMonth(model.MonthKey(a.now()))
		return style.Foreground(t.TextDim).Render(" " + month + " · " + a.sess.Name)
	}
	color := t.Green
	if a.flashBad {
		color = t.Red
	}
	return style.Foreground(color).Bold(true).Render(" " + a.flash)
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator
	}
	return -1
}
