package dagger

import (
	"context"
	"io"
	"sort"
	"sync"
)

// CommandFunc is a named command invocable from a session by typing its
// name. Output belongs on out so it lands in the session, not on stdout.
type CommandFunc func(ctx context.Context, out io.Writer) error

// Registry maps command names to functions. Sessions consult their registry
// before falling back to expression evaluation, so a registered name
// shadows a binding of the same name.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]CommandFunc
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]CommandFunc)}
}

// Register adds a command. An existing command with the same name is
// replaced.
func (r *Registry) Register(name string, fn CommandFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.commands[name] = fn
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (CommandFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.commands[name]

	return fn, ok
}

// Names returns the sorted names of all registered commands.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// defaultRegistry backs the package-level Register and is used by sessions
// unless WithRegistry overrides it.
var defaultRegistry = NewRegistry()

// Register adds a command to the default registry shared by all sessions.
func Register(name string, fn CommandFunc) {
	defaultRegistry.Register(name, fn)
}
