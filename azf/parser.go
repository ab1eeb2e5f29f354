package azf

import (
	"strings"
	"unicode"
)

// DefaultMarker is the character introducing a command when none is configured.
const DefaultMarker = 'ⵣ'

const (
	startArgument = '{'
	endArgument   = '}'
	newline       = '\n'
)

// parser holds nothing but its cursor and the marker, so each call to Parse owns its own state.
type parser struct {
	c      *Cursor
	marker rune
}

// Parse converts markup into an ordered token tree.
// The grammar is total: every input maps to a token sequence, and a non-nil error
// is always a *GrammarError, which indicates a parser defect.
func Parse(src string, marker rune) ([]Token, error) {
	p := &parser{
		c:      NewCursor(src),
		marker: marker,
	}
	return p.parse()
}

// ParseString parses src using DefaultMarker.
func ParseString(src string) ([]Token, error) {
	return Parse(src, DefaultMarker)
}

func (p *parser) parse() ([]Token, error) {
	tokens := []Token{}

	for {

		// Accumulate text until the marker, a newline or the end of input
		text, stop, ok := p.scanUntil(p.marker, newline)
		if len(text) > 0 {
			tokens = append(tokens, Text{Value: text})
		}

		switch {
		case !ok:
			return tokens, nil

		case stop == newline:
			tokens = append(tokens, LineBreak{})

		case stop == p.marker:
			cmd, err := p.parseCommand()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, cmd)

		default:
			return nil, &GrammarError{
				Offset: p.c.Offset(),
				State:  "text",
				Msg:    "scan stopped on " + string(stop),
			}
		}
	}
}

// scanUntil reads characters until one of stops is read or the input ends.
// ok is false at end of input.
func (p *parser) scanUntil(stops ...rune) (text string, stop rune, ok bool) {
	var sb strings.Builder
	for {
		r, more := p.c.Next()
		if !more {
			return sb.String(), 0, false
		}
		for _, s := range stops {
			if r == s {
				return sb.String(), r, true
			}
		}
		sb.WriteRune(r)
	}
}

// parseCommand is called with the marker already consumed.
// The name runs up to a brace, a space, a newline, the marker or the end of input.
// Any terminator other than '{' ends the command and is left for the outer loop to scan again.
func (p *parser) parseCommand() (Command, error) {
	var name strings.Builder

	for {
		r, ok := p.c.Next()
		if !ok {
			return Command{Name: name.String()}, nil
		}

		if !p.endsName(r) {
			name.WriteRune(r)
			continue
		}

		if r == startArgument {
			args, err := p.parseArguments()
			if err != nil {
				return Command{}, err
			}
			return Command{Name: name.String(), Arguments: args}, nil
		}

		// Avoid consuming the first character of what comes next
		p.c.Back()
		return Command{Name: name.String()}, nil
	}
}

// endsName returns true if r cannot be part of a command name.
func (p *parser) endsName(r rune) bool {
	return r == p.marker || r == startArgument || r == endArgument || unicode.IsSpace(r)
}

// parseArguments is called with the first '{' already consumed.
func (p *parser) parseArguments() ([][]Token, error) {
	arguments := [][]Token{}

	for {
		content, closed := p.scanGroup()

		// The content of an argument is markup as well
		arg, err := Parse(content, p.marker)
		if err != nil {
			return nil, err
		}
		arguments = append(arguments, arg)

		if !closed || p.c.AtEOF() {
			return arguments, nil
		}

		if r, _ := p.c.Next(); r == startArgument {
			// There is at least one more argument
			continue
		}

		p.c.Back()
		return arguments, nil
	}
}

// scanGroup reads the content of one argument group up to its balancing '}'.
// Inner braces are kept as data. closed is false if the input ended first.
func (p *parser) scanGroup() (content string, closed bool) {
	var sb strings.Builder
	depth := 1

	for {
		r, ok := p.c.Next()
		if !ok {
			return sb.String(), false
		}

		switch r {
		case startArgument:
			depth++
		case endArgument:
			depth--
			if depth == 0 {
				return sb.String(), true
			}
		}

		sb.WriteRune(r)
	}
}
