package azf

import (
	"encoding/json"
	"strconv"
	"strings"
)

// A TokenType is the type of a Token.
type TokenType uint32

const (
	// ErrorToken is never produced by the parser.
	ErrorToken TokenType = iota
	// TextToken is a run of literal characters without marker or newline.
	TextToken
	// LineBreakToken is a single newline.
	LineBreakToken
	// CommandToken is a named command with its argument groups.
	CommandToken
)

// String returns a string representation of the TokenType.
func (t TokenType) String() string {
	switch t {
	case ErrorToken:
		return "Error"
	case TextToken:
		return "Text"
	case LineBreakToken:
		return "LineBreak"
	case CommandToken:
		return "Command"
	}
	return "Invalid(" + strconv.Itoa(int(t)) + ")"
}

// A Token is one element of the parsed document: Text, LineBreak or Command.
// Token trees are immutable once produced by Parse.
type Token interface {
	Type() TokenType
	String() string
}

// Text is a maximal run of literal characters containing neither the marker nor a newline.
type Text struct {
	Value string
}

func (Text) Type() TokenType { return TextToken }

func (t Text) String() string { return t.Value }

// LineBreak is a single newline boundary.
type LineBreak struct{}

func (LineBreak) Type() TokenType { return LineBreakToken }

func (LineBreak) String() string { return "\n" }

// Command is a named command. Arguments is empty when no argument group was written.
// Each argument group is itself a token sequence parsed with the same grammar.
type Command struct {
	Name      string
	Arguments [][]Token
}

func (Command) Type() TokenType { return CommandToken }

// String renders the command back in markup form, using the default marker.
func (c Command) String() string {
	var sb strings.Builder
	sb.WriteRune(DefaultMarker)
	sb.WriteString(c.Name)
	for _, arg := range c.Arguments {
		sb.WriteByte('{')
		for _, tok := range arg {
			sb.WriteString(tok.String())
		}
		sb.WriteByte('}')
	}
	return sb.String()
}

// Arg returns the argument group at index i, or nil if it was not written.
func (c Command) Arg(i int) []Token {
	if i < 0 || i >= len(c.Arguments) {
		return nil
	}
	return c.Arguments[i]
}

// dung is the JSON shape of a token, as dumped by the "dung" command line tool.
type dung struct {
	Kind      string   `json:"kind"`
	Value     *string  `json:"value,omitempty"`
	Arguments [][]dung `json:"arguments,omitempty"`
}

func toDung(tokens []Token) []dung {
	out := make([]dung, 0, len(tokens))
	for _, tok := range tokens {
		switch t := tok.(type) {
		case Text:
			v := t.Value
			out = append(out, dung{Kind: "text", Value: &v})
		case LineBreak:
			out = append(out, dung{Kind: "eol"})
		case Command:
			name := t.Name
			d := dung{Kind: "command", Value: &name}
			for _, arg := range t.Arguments {
				d.Arguments = append(d.Arguments, toDung(arg))
			}
			out = append(out, d)
		}
	}
	return out
}

// MarshalTokens serializes a token tree to indented JSON.
func MarshalTokens(tokens []Token) ([]byte, error) {
	return json.MarshalIndent(toDung(tokens), "", "    ")
}
