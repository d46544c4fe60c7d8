// Package session holds the selection state of one interactive session:
// the active catalog, schema, warehouse, database and model. Handlers
// mutate it only through the command context they are handed, and the
// agent loop runs tools sequentially, so there is no concurrent mutator;
// the mutex exists for the snapshot/commit discipline, not for contention.
package session

import "sync"

// Selection is an immutable snapshot of the session's active selections.
type Selection struct {
	Catalog   string
	Schema    string
	Warehouse string
	Database  string
	Model     string
}

// State is the mutable session state. Multi-field updates go through
// Apply, which stages the whole snapshot and commits it in one step, so
// a cancellation mid-handler can never leave half of a selection applied.
type State struct {
	mu  sync.RWMutex
	sel Selection

	// onCommit, if set, is called with the committed snapshot after every
	// successful Apply. Used to persist selections to the config file.
	onCommit func(Selection)
}

// New creates session state starting from the given selection.
func New(initial Selection) *State {
	return &State{sel: initial}
}

// OnCommit registers a callback invoked after each committed update.
func (s *State) OnCommit(fn func(Selection)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCommit = fn
}

// Snapshot returns a copy of the current selection.
func (s *State) Snapshot() Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sel
}

// Apply stages a copy of the current selection, lets mutate edit it, and
// commits the result atomically.
func (s *State) Apply(mutate func(*Selection)) Selection {
	s.mu.Lock()
	staged := s.sel
	mutate(&staged)
	s.sel = staged
	onCommit := s.onCommit
	s.mu.Unlock()

	if onCommit != nil {
		onCommit(staged)
	}
	return staged
}

// Convenience accessors used by completers and condensed summaries.

func (s *State) Catalog() string   { return s.Snapshot().Catalog }
func (s *State) Schema() string    { return s.Snapshot().Schema }
func (s *State) Warehouse() string { return s.Snapshot().Warehouse }
func (s *State) Database() string  { return s.Snapshot().Database }
func (s *State) Model() string     { return s.Snapshot().Model }
