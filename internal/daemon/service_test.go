package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/piggymobile/piggy/internal/config"
	"github.com/piggymobile/piggy/internal/logging"
	"github.com/piggymobile/piggy/internal/model"
	"github.com/piggymobile/piggy/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

// newTestService opens a temp store with one user and a June 2024 budget
// whose planned balance is 3100, and pins the clock to 2024-06-15.
func newTestService(t *testing.T) (*Service, *store.Store, model.User) {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(filepath.Join(t.TempDir(), "piggy.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	u, err := st.CreateUser(ctx, model.UserInput{FirstName: "Ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = st.CreateBudget(ctx, model.BudgetRecord{
		UserID:   u.ID,
		Month:    "2024-06",
		Income:   dec("7000"),
		Rent:     dec("3900"),
		Modality: model.Balanced,
	})
	require.NoError(t, err)

	s := New(Config{
		Session:      config.Session{UserID: u.ID, Email: u.Email},
		Interval:     10 * time.Second,
		EventsBuffer: 20,
	}, st, logging.Discard())
	s.now = func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) }
	return s, st, u
}

func addExpense(t *testing.T, st *store.Store, userID, amount string) {
	t.Helper()
	_, err := st.AddExpense(context.Background(), model.ExpenseRecord{
		UserID:   userID,
		Date:     "2024-06-15",
		Category: model.Food,
		Amount:   dec(amount),
	})
	require.NoError(t, err)
}

func eventTypes(s *Service) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.Type)
	}
	return out
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		HasBudget:      true,
		Modality:       model.Balanced,
		Income:         dec("7000"),
		PlannedBalance: dec("3100"),
		Spent:          dec("270"),
		SpentToday:     dec("170"),
		ExpenseCount:   3,
	}
	curr := prev
	curr.Spent = dec("370")
	curr.SpentToday = dec("270")
	curr.ExpenseCount = 4

	delta := diffSnapshots(prev, curr)
	assert.True(t, delta.Spent.Equal(dec("100")))
	assert.True(t, delta.SpentToday.Equal(dec("100")))
	assert.Equal(t, 1, delta.ExpenseCount)
	assert.False(t, delta.BudgetChanged)
	assert.False(t, delta.isZero())

	assert.True(t, diffSnapshots(prev, prev).isZero())

	curr = prev
	curr.Income = dec("7500")
	curr.PlannedBalance = dec("3600")
	delta = diffSnapshots(prev, curr)
	assert.True(t, delta.BudgetChanged)
	assert.True(t, delta.PlannedBalance.Equal(dec("500")))
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{Interval: 10 * time.Second, EventsBuffer: 2}, nil, logging.Discard())

	s.mu.Lock()
	for range 3 {
		s.publishLocked(Event{Type: EventDelta})
	}
	s.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()

	require.Len(t, s.events, 2)
	assert.Equal(t, int64(2), s.events[0].ID)
	assert.Equal(t, int64(3), s.events[1].ID)
}

func TestNewAppliesDefaults(t *testing.T) {
	s := New(Config{}, nil, logging.Discard())
	assert.Equal(t, 2*time.Second, s.cfg.Interval)
	assert.Equal(t, 200, s.cfg.EventsBuffer)
	assert.Equal(t, "127.0.0.1:8787", s.cfg.Addr)
	assert.Equal(t, "0 20 * * *", s.cfg.ReminderSchedule)
}

func TestPollOnceEmitsLimitTransitions(t *testing.T) {
	s, st, u := newTestService(t)
	ctx := context.Background()

	s.pollOnce(ctx)
	assert.Equal(t, []string{EventSnapshot}, eventTypes(s))
	status := s.snapshotStatus()
	assert.True(t, status.Summary.HasBudget)
	assert.True(t, status.Summary.PlannedBalance.Equal(dec("3100")))
	// 3100 over the 15 remaining days.
	assert.Equal(t, "206.67", status.Summary.SuggestedDailyLimit.StringFixed(2))

	// Unchanged data publishes nothing.
	s.pollOnce(ctx)
	assert.Len(t, eventTypes(s), 1)

	// Limit becomes 2930/15 = 195.33; 170 is past 80% of it.
	addExpense(t, st, u.ID, "170")
	s.pollOnce(ctx)
	assert.Equal(t, []string{EventSnapshot, EventDelta, EventNearLimit}, eventTypes(s))

	// Limit becomes 2830/15 = 188.67; 270 is over it.
	addExpense(t, st, u.ID, "100")
	s.pollOnce(ctx)
	assert.Equal(t, []string{EventSnapshot, EventDelta, EventNearLimit, EventDelta, EventOverLimit}, eventTypes(s))

	status = s.snapshotStatus()
	assert.True(t, status.Summary.OverLimit)
	assert.Equal(t, 2, status.Summary.ExpenseCount)
	assert.Equal(t, int64(4), status.PollCount)
	assert.Empty(t, status.LastError)
}

func TestPollOnceRecordsErrors(t *testing.T) {
	s, _, _ := newTestService(t)
	s.cfg.Session = config.Session{}

	s.pollOnce(context.Background())
	status := s.snapshotStatus()
	assert.Contains(t, status.LastError, "not logged in")
	assert.Empty(t, eventTypes(s))
}

func TestVersionChangedOnDayRollover(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	s.pollOnce(ctx)
	assert.False(t, s.versionChanged(ctx))

	s.now = func() time.Time { return time.Date(2024, 6, 16, 0, 1, 0, 0, time.UTC) }
	assert.True(t, s.versionChanged(ctx))
}

func TestRemind(t *testing.T) {
	s, st, u := newTestService(t)
	ctx := context.Background()

	assert.True(t, s.remind(ctx))
	types := eventTypes(s)
	require.Len(t, types, 1)
	assert.Equal(t, EventReminder, types[0])
	assert.Equal(t, reminderMessage, s.events[0].Message)

	addExpense(t, st, u.ID, "25")
	assert.False(t, s.remind(ctx))
	assert.Len(t, eventTypes(s), 1)
}

func TestEventIDsStayOrderedUnderConcurrentPublishers(t *testing.T) {
	s, st, u := newTestService(t)
	s.cfg.EventsBuffer = 1000
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.remind(ctx)
		}()
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				_, err := st.AddExpense(ctx, model.ExpenseRecord{
					UserID: u.ID, Date: "2024-06-15", Category: model.Food, Amount: dec("1"),
				})
				assert.NoError(t, err)
			}
			s.pollOnce(ctx)
		}()
	}
	wg.Wait()

	s.mu.RLock()
	defer s.mu.RUnlock()
	require.NotEmpty(t, s.events)
	for i := 1; i < len(s.events); i++ {
		assert.Less(t, s.events[i-1].ID, s.events[i].ID, "event %d out of order", i)
	}
}

func TestReminderNextAdvancesAfterFiring(t *testing.T) {
	s, _, _ := newTestService(t)
	s.now = time.Now
	s.cfg.ReminderSchedule = "@every 1s"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.runReminder(ctx) }()

	require.Eventually(t, func() bool { return !s.snapshotStatus().NextReminder.IsZero() },
		time.Second, 10*time.Millisecond)
	first := s.snapshotStatus().NextReminder

	require.Eventually(t, func() bool { return s.snapshotStatus().NextReminder.After(first) },
		3*time.Second, 20*time.Millisecond)
	assert.WithinDuration(t, time.Now(), s.snapshotStatus().NextReminder, 1500*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestReminderRejectsBadSchedule(t *testing.T) {
	s, _, _ := newTestService(t)
	s.cfg.ReminderSchedule = "every evening"
	assert.ErrorContains(t, s.runReminder(context.Background()), "reminder schedule")
}

func TestHandlers(t *testing.T) {
	s, _, _ := newTestService(t)
	s.cfg.DBPath = "/tmp/piggy.db"
	s.pollOnce(context.Background())

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/v1/status")
	require.NoError(t, err)
	var status Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	_ = resp.Body.Close()
	assert.Equal(t, "ana@example.com", status.UserEmail)
	assert.Equal(t, "/tmp/piggy.db", status.DBPath)
	assert.Equal(t, "2024-06", status.Summary.Month)
	assert.True(t, status.Summary.Income.Equal(dec("7000")))

	resp, err = http.Get(srv.URL + "/v1/events")
	require.NoError(t, err)
	var events []Event
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&events))
	_ = resp.Body.Close()
	require.Len(t, events, 1)
	assert.Equal(t, EventSnapshot, events[0].Type)
}

func TestSubscribeWakesWatcher(t *testing.T) {
	s, st, u := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	unsubscribe := st.Subscribe(func(c store.Change) {
		if c.UserID == u.ID {
			select {
			case s.changed <- struct{}{}:
			default:
			}
		}
	})
	defer unsubscribe()

	done := make(chan error, 1)
	go func() { done <- s.watch(ctx) }()

	require.Eventually(t, func() bool { return len(eventTypes(s)) == 1 }, 2*time.Second, 10*time.Millisecond)
	addExpense(t, st, u.ID, "10")
	require.Eventually(t, func() bool { return len(eventTypes(s)) >= 2 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
