package azf

import (
	"errors"
	"fmt"
)

// ErrUnknownCommand is matched by every UnknownCommandError.
var ErrUnknownCommand = errors.New("unknown command")

// ErrMissingContextKey is returned by the context command when the key is not bound.
var ErrMissingContextKey = errors.New("missing context key")

// GrammarError means the parser reached a state not covered by the grammar.
// It signals a defect in the parser, never bad input.
type GrammarError struct {
	Offset int
	State  string
	Msg    string
}

func (e *GrammarError) Error() string {
	return fmt.Sprintf("grammar defect at offset %d (state %s): %s", e.Offset, e.State, e.Msg)
}

// UnknownCommandError is returned when a command has no entry in the registry.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command: %q", e.Name)
}

func (e *UnknownCommandError) Is(target error) bool {
	return target == ErrUnknownCommand
}

// ArgumentError is returned when a command is written with fewer argument groups than it needs.
type ArgumentError struct {
	Command string
	Want    int
	Got     int
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("command %q needs %d argument(s), got %d", e.Command, e.Want, e.Got)
}

// CommandError wraps an error raised while rendering a command, keeping its name
// so nested failures read like a path: "list: item: context: ...".
type CommandError struct {
	Name string
	Err  error
}

func (e *CommandError) Error() string {
	return e.Name + ": " + e.Err.Error()
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
