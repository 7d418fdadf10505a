// Package daemon provides the long-running budget watcher service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/piggymobile/piggy/internal/config"
	"github.com/piggymobile/piggy/internal/model"
	"github.com/piggymobile/piggy/internal/pipeline"
	"github.com/piggymobile/piggy/internal/store"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Event types.
const (
	EventSnapshot  = "snapshot"
	EventDelta     = "budget_delta"
	EventNearLimit = "limit_near"
	EventOverLimit = "limit_over"
	EventReminder  = "reminder"
)

// Store is what the daemon needs from the record store.
type Store interface {
	pipeline.Reader
	DataVersion(ctx context.Context) (int64, error)
	Subscribe(fn func(store.Change)) (cancel func())
	CountOnDate(ctx context.Context, userID, date string) (int, error)
}

// Config controls the daemon runtime behavior.
type Config struct {
	Session          config.Session
	DBPath           string
	Interval         time.Duration
	Addr             string
	EventsBuffer     int
	ReminderEnabled  bool
	ReminderSchedule string
}

// Snapshot is a compact budget state for status/event payloads.
type Snapshot struct {
	At                  time.Time          `json:"at"`
	Month               string             `json:"month"`
	HasBudget           bool               `json:"has_budget"`
	Modality            model.Modality     `json:"modality,omitempty"`
	Income              decimal.Decimal    `json:"income"`
	PlannedBalance      decimal.Decimal    `json:"planned_balance"`
	Spent               decimal.Decimal    `json:"spent"`
	ExpenseCount        int                `json:"expense_count"`
	ActualBalance       decimal.Decimal    `json:"actual_balance"`
	PercentageSpent     float64            `json:"percentage_spent"`
	IsOverBudget        bool               `json:"is_over_budget"`
	DaysRemaining       int                `json:"days_remaining"`
	SuggestedDailyLimit decimal.Decimal    `json:"suggested_daily_limit"`
	SpentToday          decimal.Decimal    `json:"spent_today"`
	NearLimit           bool               `json:"near_limit"`
	OverLimit           bool               `json:"over_limit"`
	SavingPercentage    float64            `json:"saving_percentage"`
	SavingStatus        model.SavingStatus `json:"saving_status"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	Spent          decimal.Decimal `json:"spent"`
	SpentToday     decimal.Decimal `json:"spent_today"`
	ExpenseCount   int             `json:"expense_count"`
	PlannedBalance decimal.Decimal `json:"planned_balance"`
	BudgetChanged  bool            `json:"budget_changed"`
}

func (d Delta) isZero() bool {
	return d.Spent.IsZero() &&
		d.SpentToday.IsZero() &&
		d.ExpenseCount == 0 &&
		d.PlannedBalance.IsZero() &&
		!d.BudgetChanged
}

// Event is emitted whenever the budget snapshot changes or a reminder fires.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
	Message   string    `json:"message,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	DBPath          string    `json:"db_path"`
	UserEmail       string    `json:"user_email"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
	NextReminder    time.Time `json:"next_reminder,omitempty"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg   Config
	store Store
	log   *logrus.Entry
	now   func() time.Time

	mu           sync.RWMutex
	startedAt    time.Time
	lastPollAt   time.Time
	pollCount    int64
	lastError    string
	hasSnapshot  bool
	snapshot     Snapshot
	dataVersion  int64
	nextEventID  int64
	events       []Event
	nextReminder time.Time

	nextSubID int
	subs      map[int]chan Event

	changed chan struct{}
}

// New returns a new daemon service with the provided config.
func New(cfg Config, st Store, log logrus.FieldLogger) *Service {
	if cfg.Interval < time.Second {
		cfg.Interval = 2 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.ReminderSchedule == "" {
		cfg.ReminderSchedule = "0 20 * * *"
	}

	return &Service{
		cfg:       cfg,
		store:     st,
		log:       log.WithField("component", "daemon"),
		now:       time.Now,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
		changed:   make(chan struct{}, 1),
	}
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)
	return mux
}

// Run starts the HTTP API, the store watcher and the reminder schedule,
// and blocks until ctx is canceled or one of them fails.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Writes made through this process arrive here; other processes are
	// caught by the data_version poll.
	unsubscribe := s.store.Subscribe(func(c store.Change) {
		if c.UserID != "" && c.UserID != s.cfg.Session.UserID {
			return
		}
		select {
		case s.changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("daemon http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return s.watch(ctx)
	})

	if s.cfg.ReminderEnabled {
		g.Go(func() error {
			return s.runReminder(ctx)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Service) watch(ctx context.Context) error {
	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.changed:
			s.pollOnce(ctx)
		case <-ticker.C:
			if s.versionChanged(ctx) {
				s.pollOnce(ctx)
			}
		}
	}
}

// versionChanged reports whether another connection committed since the
// last check. Day rollover also forces a refresh.
func (s *Service) versionChanged(ctx context.Context) bool {
	v, err := s.store.DataVersion(ctx)
	if err != nil {
		s.log.WithError(err).Warn("reading data_version")
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	changed := v != s.dataVersion
	s.dataVersion = v
	if model.DateKey(s.lastPollAt) != model.DateKey(s.now()) {
		changed = true
	}
	return changed
}

func (s *Service) pollOnce(ctx context.Context) {
	now := s.now()
	if v, err := s.store.DataVersion(ctx); err == nil {
		s.mu.Lock()
		s.dataVersion = v
		s.mu.Unlock()
	}

	ov, err := pipeline.LoadOverview(ctx, s.store, s.cfg.Session, now)
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.log.WithError(err).Error("poll failed")
		return
	}

	snap := snapshotFromOverview(ov, now)

	var pending []Event

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		pending = append(pending, Event{Type: EventSnapshot, Snapshot: snap})
	} else {
		delta := diffSnapshots(prev, snap)
		if !delta.isZero() {
			pending = append(pending, Event{Type: EventDelta, Snapshot: snap, Delta: delta})
		}
		// Limit alerts fire on the transition only.
		if snap.OverLimit && !prev.OverLimit {
			pending = append(pending, Event{Type: EventOverLimit, Snapshot: snap, Delta: delta,
				Message: "Today's spending is over the suggested daily limit"})
		} else if snap.NearLimit && !prev.NearLimit && !snap.OverLimit {
			pending = append(pending, Event{Type: EventNearLimit, Snapshot: snap, Delta: delta,
				Message: "Today's spending is close to the suggested daily limit"})
		}
	}
	for i := range pending {
		pending[i].Timestamp = now
		pending[i] = s.publishLocked(pending[i])
	}
	s.mu.Unlock()

	for _, ev := range pending {
		s.log.WithFields(logrus.Fields{"event": ev.Type, "id": ev.ID}).Debug("published")
	}
}

func snapshotFromOverview(ov pipeline.Overview, at time.Time) Snapshot {
	snap := Snapshot{
		At:               at,
		Month:            model.MonthKey(at),
		HasBudget:        ov.HasPlan,
		SavingPercentage: ov.Savings.SavingPercentage,
		SavingStatus:     ov.Savings.Status,
	}
	if !ov.HasPlan {
		return snap
	}
	m := ov.Month.Metrics
	snap.Modality = m.Modality
	snap.Income = m.Income
	snap.PlannedBalance = m.PlannedBalance
	snap.Spent = m.SpentThisMonth
	snap.ExpenseCount = m.ExpenseCount
	snap.ActualBalance = m.ActualBalance
	snap.PercentageSpent = m.PercentageSpent
	snap.IsOverBudget = m.IsOverBudget
	snap.DaysRemaining = m.DaysRemaining
	snap.SuggestedDailyLimit = m.SuggestedDailyLimit
	snap.SpentToday = ov.Month.SpentToday
	snap.NearLimit = ov.Month.Alert.Near
	snap.OverLimit = ov.Month.Alert.Over
	return snap
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Spent:          curr.Spent.Sub(prev.Spent),
		SpentToday:     curr.SpentToday.Sub(prev.SpentToday),
		ExpenseCount:   curr.ExpenseCount - prev.ExpenseCount,
		PlannedBalance: curr.PlannedBalance.Sub(prev.PlannedBalance),
		BudgetChanged: prev.HasBudget != curr.HasBudget ||
			prev.Modality != curr.Modality ||
			!prev.Income.Equal(curr.Income),
	}
}

// publishLocked numbers ev, appends it to the ring and fans it out.
// Numbering and appending under one lock hold keeps /v1/events ordered
// by ID. The caller must hold s.mu.
func (s *Service) publishLocked(ev Event) Event {
	s.nextEventID++
	ev.ID = s.nextEventID
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	return ev
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		DBPath:          s.cfg.DBPath,
		UserEmail:       s.cfg.Session.Email,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
		NextReminder:    s.nextReminder,
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      EventSnapshot,
		Timestamp: s.now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
