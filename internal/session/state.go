package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mmynk/mealsplit/internal/calculator"
	"github.com/mmynk/mealsplit/internal/models"
)

// State is the current snapshot of a session. Each mutation replaces the
// snapshot as a whole, so readers never observe a partial update.
type State struct {
	mu    sync.RWMutex
	bill  models.Bill
	newID func() string
}

// Option configures a State.
type Option func(*State)

// WithIDGenerator overrides how item IDs are generated.
func WithIDGenerator(fn func() string) Option {
	return func(s *State) {
		s.newID = fn
	}
}

// New returns an empty session.
func New(opts ...Option) *State {
	s := &State{
		bill:  models.Bill{Participants: []string{}, Items: []models.LineItem{}},
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore returns a session starting from a client-supplied snapshot.
func Restore(bill models.Bill, opts ...Option) (*State, error) {
	clean, err := Normalize(bill)
	if err != nil {
		return nil, err
	}
	s := New(opts...)
	s.bill = clean
	return s, nil
}

// Snapshot returns a copy of the current bill.
func (s *State) Snapshot() models.Bill {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bill.Clone()
}

// Allocation splits the current bill.
func (s *State) Allocation() (calculator.Allocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return calculator.Allocate(s.bill.Participants, s.bill.Items)
}

// AddParticipant adds a trimmed, unique name to the roster.
func (s *State) AddParticipant(name string) (models.Bill, error) {
	return s.apply(func(b models.Bill) (models.Bill, error) { return AddParticipant(b, name) })
}

// RemoveParticipant drops name from the roster and from every item it consumed.
func (s *State) RemoveParticipant(name string) (models.Bill, error) {
	return s.apply(func(b models.Bill) (models.Bill, error) { return RemoveParticipant(b, name) })
}

// AddItem appends one item, or several equal-priced copies when Quantity is set.
func (s *State) AddItem(in NewItem) (models.Bill, error) {
	return s.apply(func(b models.Bill) (models.Bill, error) { return AddItem(b, in, s.newID) })
}

// EditItem renames or reprices the item with the given id.
func (s *State) EditItem(id string, edit ItemEdit) (models.Bill, error) {
	return s.apply(func(b models.Bill) (models.Bill, error) { return EditItem(b, id, edit) })
}

// RemoveItem deletes the item with the given id.
func (s *State) RemoveItem(id string) (models.Bill, error) {
	return s.apply(func(b models.Bill) (models.Bill, error) { return RemoveItem(b, id) })
}

// ToggleConsumer marks name as sharing the item, or clears it when checked is false.
func (s *State) ToggleConsumer(id, name string, checked bool) (models.Bill, error) {
	return s.apply(func(b models.Bill) (models.Bill, error) { return ToggleConsumer(b, id, name, checked) })
}

// apply runs op on the current snapshot and swaps in the result on success.
// On failure the current snapshot is returned unchanged along with the error.
func (s *State) apply(op func(models.Bill) (models.Bill, error)) (models.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := op(s.bill)
	if err != nil {
		return s.bill.Clone(), err
	}
	s.bill = next
	return next.Clone(), nil
}
