package azf

import (
	"fmt"
	"unicode/utf8"
)

// ByteRenderer accumulates rendered output in a byte slice.
// The zero value is ready to use.
type ByteRenderer struct {
	buf []byte
}

// Render appends its arguments to the buffer. Strings, byte slices, bytes and runes
// are written as they are, anything else is formatted with fmt.
func (br *ByteRenderer) Render(elems ...any) {
	for _, e := range elems {
		switch v := e.(type) {
		case string:
			br.buf = append(br.buf, v...)
		case []byte:
			br.buf = append(br.buf, v...)
		case byte:
			br.buf = append(br.buf, v)
		case rune:
			br.buf = utf8.AppendRune(br.buf, v)
		default:
			br.buf = fmt.Append(br.buf, v)
		}
	}
}

// Renderln is like Render but appends a newline at the end.
func (br *ByteRenderer) Renderln(elems ...any) {
	br.Render(elems...)
	br.buf = append(br.buf, '\n')
}

// Len returns the number of bytes rendered so far.
func (br *ByteRenderer) Len() int {
	return len(br.buf)
}

// Bytes returns the underlying byte slice.
func (br *ByteRenderer) Bytes() []byte {
	return br.buf
}

// String returns the rendered content as a string.
func (br *ByteRenderer) String() string {
	return string(br.buf)
}
