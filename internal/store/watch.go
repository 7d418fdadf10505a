package store

// ChangeKind names the table a write touched.
type ChangeKind string

// Change kinds.
const (
	BudgetChanged  ChangeKind = "budget"
	ExpenseChanged ChangeKind = "expense"
	UserChanged    ChangeKind = "user"
)

// Change describes a committed write.
type Change struct {
	Kind   ChangeKind
	UserID string
	Key    string // month for budgets, date for expenses
}

// Subscribe registers fn to be called after every committed write made
// through this Store. The returned func removes the subscription.
func (s *Store) Subscribe(fn func(Change)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(c Change) {
	s.mu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}
