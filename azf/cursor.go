package azf

// Cursor is a single-pass reader over the characters of a source string.
// It supports one-level backtracking with Back, which is all the parser needs.
type Cursor struct {
	src      []rune
	position int
}

// NewCursor decodes src into characters and positions the cursor before the first one.
func NewCursor(src string) *Cursor {
	return &Cursor{
		src:      []rune(src),
		position: -1,
	}
}

// Next advances the cursor and returns the character under it.
// ok is false when the input is exhausted; the cursor does not move past the end.
func (c *Cursor) Next() (r rune, ok bool) {
	if c.position+1 >= len(c.src) {
		c.position = len(c.src)
		return 0, false
	}
	c.position++
	return c.src[c.position], true
}

// Back steps back one character, so the next call to Next returns it again.
func (c *Cursor) Back() {
	if c.position >= 0 {
		c.position--
	}
}

// Offset returns the character offset of the last character read.
func (c *Cursor) Offset() int {
	return c.position
}

// AtEOF returns true if there are no more characters to read
func (c *Cursor) AtEOF() bool {
	return c.position+1 >= len(c.src)
}
