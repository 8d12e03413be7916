package termui

import (
	"fmt"
	"log/slog"
	"maps"
	"reflect"
)

// historyCap bounds the dispatch history ring.
const historyCap = 100

// Subscriber receives the old and new value for a key path after a change.
type Subscriber func(old, new any, path string)

// ActionHandler implements one named store action. State is mutated only
// through the context. A returned error (or a panic) fails the dispatch
// without escaping it.
type ActionHandler func(ctx *ActionContext, payload any) error

// DispatchResult reports the outcome of a Dispatch call.
type DispatchResult struct {
	Success bool
	Err     error
}

// HistoryEntry records one successful dispatch with the state before and
// after it.
type HistoryEntry struct {
	Action string
	Prev   map[string]any
	Next   map[string]any
}

// Store is the reactive state container: a flat key-path state map,
// per-path subscribers, named action handlers, and a bounded history of
// successful dispatches. It is created once at startup and mutated only
// through Dispatch; it is not safe for concurrent use and belongs to the
// frame-loop thread.
type Store struct {
	state   map[string]any
	subs    map[string][]subscription
	subPath map[int]string
	nextSub int
	actions map[string]ActionHandler
	history []HistoryEntry
	logger  *slog.Logger
}

type subscription struct {
	id int
	fn Subscriber
}

// NewStore creates an empty store. A nil logger falls back to slog.Default.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		state:   make(map[string]any),
		subs:    make(map[string][]subscription),
		subPath: make(map[int]string),
		actions: make(map[string]ActionHandler),
		logger:  logger,
	}
}

// GetState returns the value at the given key path, or nil if absent.
// An empty path returns a snapshot of the whole state.
func (s *Store) GetState(path string) any {
	if path == "" {
		return maps.Clone(s.state)
	}
	return s.state[path]
}

// Subscribe registers a handler on a key path and synchronously invokes it
// once with the current value, so subscribers never need a separate
// initial read. Returns an id for Unsubscribe.
func (s *Store) Subscribe(path string, fn Subscriber) int {
	s.nextSub++
	id := s.nextSub
	s.subs[path] = append(s.subs[path], subscription{id: id, fn: fn})
	s.subPath[id] = path
	s.invoke(fn, nil, s.state[path], path)
	return id
}

// Unsubscribe removes a handler. Unknown ids are ignored.
func (s *Store) Unsubscribe(id int) {
	path, ok := s.subPath[id]
	if !ok {
		return
	}
	delete(s.subPath, id)
	list := s.subs[path]
	for i, sub := range list {
		if sub.id == id {
			s.subs[path] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// RegisterAction binds a handler to an action name, overwriting any
// previous binding.
func (s *Store) RegisterAction(name string, fn ActionHandler) {
	s.actions[name] = fn
}

// Dispatch invokes the named action. An unknown name fails without
// mutating state. A handler error or panic is contained, logged, and
// returned as a failed result; it never escapes. Successful dispatches are
// appended to the history ring. Handlers may dispatch re-entrantly; nested
// dispatches execute immediately.
func (s *Store) Dispatch(name string, payload any) (result DispatchResult) {
	fn, ok := s.actions[name]
	if !ok {
		return DispatchResult{Success: false, Err: fmt.Errorf("unknown action %q", name)}
	}

	prev := maps.Clone(s.state)

	defer func() {
		if r := recover(); r != nil {
			err := &DispatchError{Action: name, Cause: fmt.Errorf("panic: %v", r)}
			s.logger.Error("action panicked", "action", name, "panic", r)
			result = DispatchResult{Success: false, Err: err}
		}
	}()

	if err := fn(&ActionContext{store: s}, payload); err != nil {
		s.logger.Error("action failed", "action", name, "err", err)
		return DispatchResult{Success: false, Err: &DispatchError{Action: name, Cause: err}}
	}

	s.history = append(s.history, HistoryEntry{
		Action: name,
		Prev:   prev,
		Next:   maps.Clone(s.state),
	})
	if len(s.history) > historyCap {
		s.history = s.history[len(s.history)-historyCap:]
	}
	return DispatchResult{Success: true}
}

// History returns the recorded dispatch entries, oldest first.
func (s *Store) History() []HistoryEntry {
	return s.history
}

// updateState applies a partial update. Each key whose value actually
// changed is stored and its subscribers notified synchronously in
// registration order. A subscriber panic is contained and logged; it never
// aborts the remaining notifications.
func (s *Store) updateState(partial map[string]any) {
	for path, next := range partial {
		old, existed := s.state[path]
		if existed && sameValue(old, next) {
			continue
		}
		s.state[path] = next
		for _, sub := range s.subs[path] {
			s.invoke(sub.fn, old, next, path)
		}
	}
}

// invoke calls a subscriber with panic containment.
func (s *Store) invoke(fn Subscriber, old, next any, path string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("subscriber panicked", "path", path, "panic", r)
		}
	}()
	fn(old, next, path)
}

// sameValue is the shallow inequality test used by updateState.
// Uncomparable values (slices, maps) always count as changed.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// ActionContext is the bound context handed to action handlers. It exposes
// reads, partial updates, and re-entrant dispatch against the same store.
type ActionContext struct {
	store *Store
}

// GetState reads a key path (or the whole state with an empty path).
func (c *ActionContext) GetState(path string) any {
	return c.store.GetState(path)
}

// UpdateState applies a partial state update, notifying subscribers of
// changed keys.
func (c *ActionContext) UpdateState(partial map[string]any) {
	c.store.updateState(partial)
}

// Dispatch re-enters the store with another action. The nested dispatch
// executes immediately rather than being queued.
func (c *ActionContext) Dispatch(name string, payload any) DispatchResult {
	return c.store.Dispatch(name, payload)
}
