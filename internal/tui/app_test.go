package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/piggymobile/piggy/internal/config"
	"github.com/piggymobile/piggy/internal/model"
	"github.com/piggymobile/piggy/internal/store"
	"github.com/piggymobile/piggy/internal/tui/components"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

// newTestApp opens a temp store with one user and pins the clock to
// 2024-06-15. withBudget adds a June budget with a 3100 planned balance.
func newTestApp(t *testing.T, withBudget bool) (App, *store.Store) {
	t.Helper()
	ctx := context.Background()

	t.Setenv(config.EnvConfigDir, t.TempDir())
	cfg := config.DefaultConfig()
	cfg.General.Currency, cfg.General.Locale = "USD", "en-US"
	require.NoError(t, config.Save(cfg))

	st, err := store.Open(filepath.Join(t.TempDir(), "piggy.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	u, err := st.CreateUser(ctx, model.UserInput{FirstName: "Ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)

	if withBudget {
		_, err = st.CreateBudget(ctx, model.BudgetRecord{
			UserID:   u.ID,
			Month:    "2024-06",
			Income:   dec("7000"),
			Rent:     dec("3900"),
			Modality: model.Balanced,
		})
		require.NoError(t, err)
	}

	a := NewApp(st, config.Session{UserID: u.ID, Email: u.Email, Name: u.FirstName}, cfg)
	a.now = func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) }
	require.False(t, a.needSetup)
	return a, st
}

func addExpense(t *testing.T, st *store.Store, userID, date, amount string) {
	t.Helper()
	_, err := st.AddExpense(context.Background(), model.ExpenseRecord{
		UserID:   userID,
		Date:     date,
		Category: model.Food,
		Amount:   dec(amount),
	})
	require.NoError(t, err)
}

// load runs the app's load command synchronously and feeds the result back.
func load(t *testing.T, a App) App {
	t.Helper()
	msg := a.loadCmd()()
	loaded, ok := msg.(DataLoadedMsg)
	require.True(t, ok)
	require.NoError(t, loaded.Err)
	m, _ := a.Update(loaded)
	return m.(App)
}

func press(a App, key tea.KeyMsg) (App, tea.Cmd) {
	m, cmd := a.Update(key)
	return m.(App), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTabAtXMatchesTabWidths(t *testing.T) {
	for active := range components.Tabs {
		a := App{activeTab: active}
		pos := 0
		for i, tab := range components.Tabs {
			w := components.TabVisualWidth(tab, i == active)
			assert.Equal(t, i, a.tabAtX(pos+w/2), "active=%d tab=%d", active, i)
			pos += w
			assert.Equal(t, -1, a.tabAtX(pos), "separator after tab %d", i)
			pos++
		}
		assert.Equal(t, -1, a.tabAtX(pos+50))
	}
}

func TestLoadPopulatesDashboard(t *testing.T) {
	a, st := newTestApp(t, true)
	addExpense(t, st, a.sess.UserID, "2024-06-15", "170")
	addExpense(t, st, a.sess.UserID, "2024-06-02", "30")

	a = load(t, a)

	require.True(t, a.loaded)
	assert.True(t, a.overview.HasPlan)
	assert.True(t, a.overview.Month.Metrics.SpentThisMonth.Equal(dec("200")))
	assert.Len(t, a.recent, 2)
	assert.Len(t, a.expenses.Rows(), 2)
	assert.Equal(t, "2024-06-15", a.expenses.Rows()[0][1])
}

func TestKeysSwitchTabs(t *testing.T) {
	a, _ := newTestApp(t, true)
	a = load(t, a)

	a, _ = press(a, runes("h"))
	assert.Equal(t, tabHistory, a.activeTab)

	a, _ = press(a, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, tabSavings, a.activeTab)

	a, _ = press(a, tea.KeyMsg{Type: tea.KeyLeft})
	a, _ = press(a, tea.KeyMsg{Type: tea.KeyLeft})
	a, _ = press(a, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, tabStatus, a.activeTab)

	a, _ = press(a, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, tabTips, a.activeTab)

	a, _ = press(a, runes("?"))
	assert.True(t, a.showHelp)
	a, _ = press(a, runes("h"))
	assert.False(t, a.showHelp)
	assert.Equal(t, tabTips, a.activeTab, "closing help swallows the key")

	_, cmd := press(a, runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestKeysIgnoredUntilLoaded(t *testing.T) {
	a, _ := newTestApp(t, true)
	a, cmd := press(a, runes("h"))
	assert.Equal(t, tabStatus, a.activeTab)
	assert.Nil(t, cmd)
}

func TestOpenFormsPrefill(t *testing.T) {
	a, _ := newTestApp(t, true)
	a = load(t, a)

	a, _ = press(a, runes("a"))
	require.NotNil(t, a.form)
	assert.Equal(t, formExpense, a.kind)
	assert.Equal(t, "2024-06-15", a.expenseVals.Date)

	a.form, a.kind = nil, formNone
	a, _ = press(a, runes("b"))
	require.NotNil(t, a.form)
	assert.Equal(t, formBudget, a.kind)
	assert.Equal(t, a.overview.Month.Budget.ID, a.budgetID)
	assert.Equal(t, "7000", a.budgetVals.Income)
}

func TestSubmitExpenseSavesAndReloads(t *testing.T) {
	a, st := newTestApp(t, true)
	a = load(t, a)

	a.expenseVals = &ExpenseValues{Date: "2024-06-15", Category: "TRANSPORT", Amount: "25.50", Description: "bus"}
	cmd := a.submit(formExpense)
	require.NotNil(t, cmd)
	saved, ok := cmd().(SavedMsg)
	require.True(t, ok)
	require.NoError(t, saved.Err)

	m, reload := a.Update(saved)
	a = m.(App)
	assert.Equal(t, "Expense saved", a.flash)
	assert.True(t, a.refreshing)
	require.NotNil(t, reload)

	today, err := st.ExpensesOnDate(context.Background(), a.sess.UserID, "2024-06-15")
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, model.Transport, today[0].Category)
	assert.True(t, today[0].Amount.Equal(dec("25.50")))
}

func TestSubmitRejectsInvalidExpense(t *testing.T) {
	a, _ := newTestApp(t, true)
	a.expenseVals = &ExpenseValues{Date: "2024-06-15", Category: "FOOD", Amount: "-3"}

	saved := a.submit(formExpense)().(SavedMsg)
	require.Error(t, saved.Err)

	m, _ := a.Update(saved)
	assert.True(t, m.(App).flashBad)
}

func TestSaveBudget(t *testing.T) {
	a, st := newTestApp(t, false)
	ctx := context.Background()

	rec := model.BudgetRecord{UserID: a.sess.UserID, Month: "2024-06", Income: dec("5000"), Rent: dec("1000"), Modality: model.Aggressive}
	saved := a.saveBudget(rec)().(SavedMsg)
	require.NoError(t, saved.Err)
	assert.Equal(t, "Budget for Jun 2024 saved", saved.Note)

	b, found, err := st.BudgetForMonth(ctx, a.sess.UserID, "2024-06")
	require.NoError(t, err)
	require.True(t, found)

	saved = a.saveBudget(rec)().(SavedMsg)
	assert.ErrorContains(t, saved.Err, "already has a budget")

	b.Income = dec("5500")
	saved = a.saveBudget(b)().(SavedMsg)
	require.NoError(t, saved.Err)

	past := model.BudgetRecord{UserID: a.sess.UserID, Month: "2024-05", Income: dec("100"), Modality: model.Balanced}
	saved = a.saveBudget(past)().(SavedMsg)
	assert.ErrorContains(t, saved.Err, "closed")
}

func TestDeleteSelectedExpense(t *testing.T) {
	a, st := newTestApp(t, true)
	addExpense(t, st, a.sess.UserID, "2024-06-15", "10")
	addExpense(t, st, a.sess.UserID, "2024-06-14", "20")
	a = load(t, a)

	a, _ = press(a, runes("e"))
	require.Equal(t, tabExpenses, a.activeTab)
	a, _ = press(a, runes("j"))
	require.Equal(t, 1, a.expenses.Cursor())

	_, cmd := press(a, runes("d"))
	require.NotNil(t, cmd)
	saved := cmd().(SavedMsg)
	require.NoError(t, saved.Err)

	left, err := st.RecentExpenses(context.Background(), a.sess.UserID, 10)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "2024-06-15", left[0].Date)
}

func TestViewRendersStatus(t *testing.T) {
	a, st := newTestApp(t, true)
	addExpense(t, st, a.sess.UserID, "2024-06-15", "250")
	a = load(t, a)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 50})
	a = m.(App)

	view := a.View()
	assert.Contains(t, view, "Suggested daily limit")
	assert.Contains(t, view, "over today's suggested limit")
	assert.Contains(t, view, "ana@example.com")
	assert.Equal(t, 50, len(strings.Split(view, "\n")))
}

func TestViewWithoutBudget(t *testing.T) {
	a, _ := newTestApp(t, false)
	a = load(t, a)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	a = m.(App)

	assert.Contains(t, a.View(), "no budget for Jun 2024")

	a.activeTab = tabTips
	assert.Contains(t, a.View(), "Tips appear once")
}

func TestViewTooNarrow(t *testing.T) {
	a, _ := newTestApp(t, true)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	assert.Contains(t, m.(App).View(), "Terminal too narrow")
}

func TestTodayPercent(t *testing.T) {
	assert.InDelta(t, 50.0, todayPercent(dec("50"), dec("100")), 0.001)
	assert.Equal(t, 0.0, todayPercent(decimal.Zero, decimal.Zero))
	assert.Greater(t, todayPercent(dec("1"), decimal.Zero), 100.0)
}
