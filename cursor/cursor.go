// Package cursor provides the small runtime state that generated lexer
// jump routines drive: a scalar-value buffer read once up front, plus
// the snapshot/accept/revert bookkeeping needed to find the longest
// match and back out of an overlong attempt.
package cursor

import (
	"io"
	"unicode/utf8"

	"github.com/nihei9/lexergen/lexerr"
)

// Token is one scanned result: either a successfully matched span
// (Invalid and EOF both false), the end of input, or a span that no
// terminal's pattern could extend into a match.
type Token struct {
	KindID  int
	Name    string
	Lexeme  []rune
	// Value carries the payload a fill callback computed from Lexeme, if
	// the matched terminal declared one. Terminals with no callback leave
	// it nil.
	Value   any
	Row     int
	Col     int
	EOF     bool
	Invalid bool
}

type position struct {
	ptr int
	row int
	col int
}

// Cursor walks a source buffered once as Unicode scalar values. Jump
// routines call Peek/Bump to drive it forward and SetToken whenever
// they land on an accepting node; Cursor itself tracks which of those
// calls was the longest so a subsequent mismatch can revert to it.
type Cursor struct {
	src            []rune
	pos            position
	lastAccepted   position
	hasAccepted    bool
	acceptedKindID int
	acceptedName   string
}

// New reads all of src into memory and decodes it as a sequence of
// Unicode scalar values.
func New(src io.Reader) (*Cursor, error) {
	b, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	runes := make([]rune, 0, len(b))
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		runes = append(runes, r)
		i += size
	}
	return &Cursor{src: runes}, nil
}

// Peek returns the scalar value at the cursor without consuming it,
// and false once the source is exhausted.
func (c *Cursor) Peek() (rune, bool) {
	return c.PeekAt(0)
}

// PeekAt returns the scalar value n positions ahead of the cursor
// without consuming anything.
func (c *Cursor) PeekAt(n int) (rune, bool) {
	i := c.pos.ptr + n
	if i >= len(c.src) {
		return 0, false
	}
	return c.src[i], true
}

// Bump consumes one scalar value, advancing row/col bookkeeping. It
// must only be called when Peek reported a value.
func (c *Cursor) Bump() {
	if c.pos.ptr >= len(c.src) {
		return
	}
	if c.src[c.pos.ptr] == '\n' {
		c.pos.row++
		c.pos.col = 0
	} else {
		c.pos.col++
	}
	c.pos.ptr++
}

// Slice returns the scalar values consumed between from and the cursor's
// current position.
func (c *Cursor) Slice(from position) []rune {
	return append([]rune{}, c.src[from.ptr:c.pos.ptr]...)
}

// Span reports how many scalar values have been consumed since from.
func (c *Cursor) Span(from position) int {
	return c.pos.ptr - from.ptr
}

// Start returns a snapshot marking the beginning of the current lexeme
// attempt, for use with Slice/Span.
func (c *Cursor) Start() position {
	return c.pos
}

// SetToken records that the node the cursor is now at is an accepting
// state for kindID/name. A later, longer SetToken overrides an earlier
// one within the same lexeme attempt.
func (c *Cursor) SetToken(kindID int, name string) {
	c.lastAccepted = c.pos
	c.hasAccepted = true
	c.acceptedKindID = kindID
	c.acceptedName = name
}

// Accept finalises the lexeme since start using the most recent
// SetToken, reverting the cursor to that point first. It returns
// lexerr.ErrNotMatch if no accepting state was ever reached.
func (c *Cursor) Accept(start position) (Token, error) {
	if !c.hasAccepted {
		return Token{}, lexerr.ErrNotMatch
	}
	lexeme := append([]rune{}, c.src[start.ptr:c.lastAccepted.ptr]...)
	if len(lexeme) == 0 {
		return Token{}, lexerr.ErrEmptyToken
	}
	tok := Token{
		KindID: c.acceptedKindID,
		Name:   c.acceptedName,
		Lexeme: lexeme,
		Row:    start.row,
		Col:    start.col,
	}
	c.pos = c.lastAccepted
	c.hasAccepted = false
	return tok, nil
}

// Skip discards any accepted state and drops the matched span, used
// when the matched terminal is a Skip kind. It advances the cursor to
// the end of that span, or by one scalar value if the span was empty,
// so the next lexing step always makes progress.
func (c *Cursor) Skip(start position) {
	if c.hasAccepted && c.lastAccepted.ptr > start.ptr {
		c.pos = c.lastAccepted
	} else {
		c.pos = start
		c.Bump()
	}
	c.hasAccepted = false
}

// Error produces the Invalid token describing a lexeme the automaton
// could not extend into any accept, spanning from start to the
// cursor's current position.
func (c *Cursor) Error(start position) Token {
	lexeme := append([]rune{}, c.src[start.ptr:c.pos.ptr]...)
	c.hasAccepted = false
	return Token{Lexeme: lexeme, Row: start.row, Col: start.col, Invalid: true}
}

// AtEOF reports whether the cursor has consumed the whole source.
func (c *Cursor) AtEOF() bool {
	return c.pos.ptr >= len(c.src)
}

// EOFToken produces the sentinel token signalling end of input.
func (c *Cursor) EOFToken() Token {
	return Token{Row: c.pos.row, Col: c.pos.col, EOF: true}
}

// Position exposes position so generated code outside the package (which
// only ever stores positions returned by Start) can thread it through
// Slice/Span/Accept/Skip/Error without depending on its internals.
type Position = position
