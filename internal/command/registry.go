// Package command defines the command registry: the process-wide catalog of
// everything the shell can do, shared by slash-command dispatch and the
// agent's tool calling. Each command is described once by a Definition and
// invoked through its Handler, whether the user typed it or the model
// called it.
package command

import (
	"context"
	"fmt"
	"sync"
)

// DisplayMode declares how a command's result is rendered when the agent
// invoked it as a tool. Direct slash invocations always render full and
// ignore this.
type DisplayMode string

const (
	// DisplayFull always renders the detailed view.
	DisplayFull DisplayMode = "full"
	// DisplayConditional renders full only when the result carries the
	// display flag (or the definition's DisplayCondition says so).
	DisplayConditional DisplayMode = "conditional"
	// DisplayNone renders a generic condensed summary.
	DisplayNone DisplayMode = ""
)

// Handler executes one command. Session-scoped state and cloud clients come
// in through cc; args have already been validated against the definition's
// parameter schema by the time a handler runs.
type Handler func(ctx context.Context, cc *Context, args map[string]any) (*Result, error)

// Definition is the immutable descriptor of one command. Registered once at
// startup; after that only the test-scoped Override may swap it.
type Definition struct {
	Name        string
	Description string
	Handler     Handler

	// Parameters maps argument name to its JSON-schema fragment;
	// Required lists the mandatory ones.
	Parameters map[string]any
	Required   []string

	// Positional gives the argument order for slash invocations
	// ("/select-schema silver main" binds silver to schema, main to
	// catalog). Defaults to Required when empty. The last positional
	// argument swallows the rest of the line, so statements with spaces
	// need no quoting.
	Positional []string

	AgentDisplay DisplayMode
	// DisplayCondition, for conditional commands, decides full rendering
	// from the result payload when the display flag is absent.
	DisplayCondition func(data map[string]any) bool
	// CondensedAction is the friendly label used in condensed summaries
	// ("Listing tables" instead of "list-tables").
	CondensedAction string

	// Providers restricts the command to specific data providers;
	// empty means available everywhere.
	Providers []string

	VisibleToUser  bool
	VisibleToAgent bool
	Usage          string
}

// InputSchema returns the full JSON-schema object describing the command's
// arguments, as handed to the LLM provider.
func (d *Definition) InputSchema() map[string]any {
	properties := map[string]any{}
	for name, schema := range d.Parameters {
		properties[name] = schema
	}
	required := d.Required
	if required == nil {
		required = []string{}
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// ForProvider reports whether the command is available under the given
// data provider.
func (d *Definition) ForProvider(provider string) bool {
	if len(d.Providers) == 0 {
		return true
	}
	for _, p := range d.Providers {
		if p == provider {
			return true
		}
	}
	return false
}

// PositionalArgs returns the slash-invocation argument order.
func (d *Definition) PositionalArgs() []string {
	if len(d.Positional) > 0 {
		return d.Positional
	}
	return d.Required
}

// UnknownCommandError is returned when a name does not resolve.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q", e.Name)
}

// DuplicateCommandError is returned when a name is registered twice.
type DuplicateCommandError struct {
	Name string
}

func (e *DuplicateCommandError) Error() string {
	return fmt.Sprintf("command %q already registered", e.Name)
}

// Registry maps command names to definitions. Registration happens once at
// startup before any lookup, but Override exists for tests, so mutation is
// serialized behind an RWMutex anyway.
type Registry struct {
	mu    sync.RWMutex
	defs  map[string]*Definition
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Register adds a definition. It fails with *DuplicateCommandError if the
// name is already taken.
func (r *Registry) Register(def *Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[def.Name]; exists {
		return &DuplicateCommandError{Name: def.Name}
	}
	r.defs[def.Name] = def
	r.order = append(r.order, def.Name)
	return nil
}

// MustRegister registers a definition and panics on duplicates. Startup
// wiring only.
func (r *Registry) MustRegister(def *Definition) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

// Resolve returns the definition for name, or *UnknownCommandError.
func (r *Registry) Resolve(name string) (*Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	if !ok {
		return nil, &UnknownCommandError{Name: name}
	}
	return def, nil
}

// List returns all definitions in registration order.
func (r *Registry) List() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.defs[name])
	}
	return out
}

// UserCommands returns the commands visible to the user under a provider,
// in registration order.
func (r *Registry) UserCommands(provider string) []*Definition {
	var out []*Definition
	for _, def := range r.List() {
		if def.VisibleToUser && def.ForProvider(provider) {
			out = append(out, def)
		}
	}
	return out
}

// AgentCommands returns the commands the agent may call under a provider,
// in registration order.
func (r *Registry) AgentCommands(provider string) []*Definition {
	var out []*Definition
	for _, def := range r.List() {
		if def.VisibleToAgent && def.ForProvider(provider) {
			out = append(out, def)
		}
	}
	return out
}

// Override installs def regardless of an existing registration and returns
// a restore function that puts the previous definition back (or removes the
// name entirely if it was absent). This is the one sanctioned way for tests
// to swap handlers without leaking state across tests.
func (r *Registry) Override(def *Definition) (restore func()) {
	r.mu.Lock()
	prev, existed := r.defs[def.Name]
	r.defs[def.Name] = def
	if !existed {
		r.order = append(r.order, def.Name)
	}
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if existed {
			r.defs[def.Name] = prev
			return
		}
		delete(r.defs, def.Name)
		for i, name := range r.order {
			if name == def.Name {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
}
