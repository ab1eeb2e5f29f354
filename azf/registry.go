package azf

import (
	"sort"
)

// A Handler renders one command.
// Block handlers lay out their own structural element and are never wrapped in an
// automatic paragraph; the renderer runs them in an inline frame.
type Handler interface {
	Render(s *State, cmd Command) error
	Block() bool
}

// HandlerFunc is the signature of the functions adapted by Inline and Block.
type HandlerFunc func(s *State, cmd Command) error

type handler struct {
	fn    HandlerFunc
	block bool
}

func (h handler) Render(s *State, cmd Command) error { return h.fn(s, cmd) }

func (h handler) Block() bool { return h.block }

// Inline adapts fn to a Handler rendered within the current flow.
func Inline(fn HandlerFunc) Handler {
	return handler{fn: fn}
}

// Block adapts fn to a Handler that manages its own structural element.
func Block(fn HandlerFunc) Handler {
	return handler{fn: fn, block: true}
}

// unknown is the designated fallback entry of every registry.
var unknown = Inline(func(s *State, cmd Command) error {
	return &UnknownCommandError{Name: cmd.Name}
})

// Registry maps command names to handlers.
// Behaviour is extended by registering entries, and a Registry is not safe for
// concurrent modification: build it fully before handing it to a Renderer.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds or replaces the handler for name.
func (reg *Registry) Register(name string, h Handler) *Registry {
	reg.handlers[name] = h
	return reg
}

// Lookup returns the handler registered for name.
// It never returns nil: unknown names get a handler failing with UnknownCommandError.
func (reg *Registry) Lookup(name string) Handler {
	if h, ok := reg.handlers[name]; ok {
		return h
	}
	return unknown
}

// Has returns true if name is registered.
func (reg *Registry) Has(name string) bool {
	_, ok := reg.handlers[name]
	return ok
}

// Names returns the registered command names, sorted.
func (reg *Registry) Names() []string {
	names := make([]string, 0, len(reg.handlers))
	for name := range reg.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a copy that can be extended without affecting reg.
func (reg *Registry) Clone() *Registry {
	c := NewRegistry()
	for name, h := range reg.handlers {
		c.handlers[name] = h
	}
	return c
}
