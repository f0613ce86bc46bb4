package store

import (
	"io"
	"log/slog"
	"sync"

	"github.com/go-faster/errors"
)

// ErrUnchanged is returned by an update function to signal that the previous
// state stands. Update swallows it: nothing is committed, notified or saved.
var ErrUnchanged = errors.New("store: unchanged")

// Persister hydrates and saves a store's state. persist.Slot satisfies it.
type Persister[T any] interface {
	Load() (T, bool)
	Save(T) error
}

// Listener receives every committed state.
type Listener[T any] func(T)

type subscription[T any] struct {
	id uint64
	fn Listener[T]
}

// Store is a persisted, observable container for one state value.
type Store[T any] struct {
	name      string
	persister Persister[T]
	clone     func(T) T
	normalize func(T) T
	logger    *slog.Logger
	onPersist func(error)

	// writeMu serializes Update end to end (commit, notify, persist).
	writeMu sync.Mutex

	mu          sync.RWMutex
	state       T
	subs        []subscription[T]
	nextID      uint64
	lastPersist error
}

// Option configures a Store.
type Option[T any] func(*Store[T])

// WithClone sets the deep-copy function used for snapshots. Without it values
// are copied shallowly, which is only safe for states without slices or maps.
func WithClone[T any](fn func(T) T) Option[T] {
	return func(s *Store[T]) {
		if fn != nil {
			s.clone = fn
		}
	}
}

// WithNormalize sets a repair function applied to hydrated state, so a
// stored value that breaks the state's rules is fixed before first use.
func WithNormalize[T any](fn func(T) T) Option[T] {
	return func(s *Store[T]) {
		s.normalize = fn
	}
}

// WithLogger sets the logger for persistence failures.
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(s *Store[T]) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPersistErrorHandler is called with every failed save.
func WithPersistErrorHandler[T any](fn func(error)) Option[T] {
	return func(s *Store[T]) {
		s.onPersist = fn
	}
}

// WithInitial sets the state used when nothing was hydrated.
func WithInitial[T any](v T) Option[T] {
	return func(s *Store[T]) {
		s.state = v
	}
}

// New builds a store named name and hydrates it from persister, if any.
func New[T any](name string, persister Persister[T], opts ...Option[T]) *Store[T] {
	s := &Store[T]{
		name:      name,
		persister: persister,
		clone:     func(v T) T { return v },
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if persister != nil {
		if v, ok := persister.Load(); ok {
			if s.normalize != nil {
				v = s.normalize(v)
			}
			s.state = v
		}
	}
	s.state = s.clone(s.state)
	return s
}

// Name returns the store's name.
func (s *Store[T]) Name() string {
	return s.name
}

// State returns a copy of the current state.
func (s *Store[T]) State() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clone(s.state)
}

// Update applies fn to a copy of the current state. When fn returns an error
// other than ErrUnchanged the state is left alone and the error returned.
// Otherwise the result is committed, subscribers are notified in registration
// order, and the state is saved. A failed save is logged and recorded but does
// not undo the commit.
//
// Listeners run while the update is in progress and must not call Update.
func (s *Store[T]) Update(fn func(prev T) (T, error)) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next, err := fn(s.State())
	if errors.Is(err, ErrUnchanged) {
		return nil
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.state = s.clone(next)
	subs := append([]subscription[T](nil), s.subs...)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(s.State())
	}

	s.save(next)
	return nil
}

// Subscribe registers fn for every committed state. The returned function
// removes it and is safe to call more than once.
func (s *Store[T]) Subscribe(fn Listener[T]) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription[T]{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// LastPersistError returns the error from the most recent save, or nil.
func (s *Store[T]) LastPersistError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastPersist
}

func (s *Store[T]) save(v T) {
	if s.persister == nil {
		return
	}
	err := s.persister.Save(v)

	s.mu.Lock()
	s.lastPersist = err
	s.mu.Unlock()

	if err == nil {
		return
	}
	s.logger.Error("state save failed", "store", s.name, "error", err)
	if s.onPersist != nil {
		s.onPersist(errors.Wrapf(err, "save %s", s.name))
	}
}
