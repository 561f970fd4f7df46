package regexfrontend

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/nihei9/lexergen/lexerr"
)

type tokenKind string

const (
	tokenKindChar            tokenKind = "char"
	tokenKindAnyChar         tokenKind = "."
	tokenKindRepeat          tokenKind = "*"
	tokenKindRepeatOneOrMore tokenKind = "+"
	tokenKindOption          tokenKind = "?"
	tokenKindCountedRepeat   tokenKind = "{n,m}"
	tokenKindAlt             tokenKind = "|"
	tokenKindGroupOpen       tokenKind = "("
	tokenKindGroupClose      tokenKind = ")"
	tokenKindBExpOpen        tokenKind = "["
	tokenKindInverseBExpOpen tokenKind = "[^"
	tokenKindBExpClose       tokenKind = "]"
	tokenKindCharRange       tokenKind = "-"
	tokenKindCodePointLeader tokenKind = "\\u"
	tokenKindCharPropLeader  tokenKind = "\\p"
	tokenKindFragmentLeader  tokenKind = "\\f"
	tokenKindLBrace          tokenKind = "{"
	tokenKindRBrace          tokenKind = "}"
	tokenKindEqual           tokenKind = "="
	tokenKindCodePoint       tokenKind = "code point"
	tokenKindCharPropSymbol  tokenKind = "character property symbol"
	tokenKindFragmentSymbol  tokenKind = "fragment symbol"
	tokenKindEOF             tokenKind = "eof"
)

type token struct {
	kind           tokenKind
	char           rune
	propSymbol     string
	codePoint      string
	fragmentSymbol string
	countMin       string
	countMax       string
	countHasMax    bool
}

// nullChar marks "no buffered character" in the lookahead slots below.
// It must never equal a character that can appear in real pattern text,
// which rules out any printable rune -- NUL can't appear in a decoded
// pattern string.
const nullChar = '\u0000'

func newToken(kind tokenKind, char rune) *token {
	return &token{
		kind: kind,
		char: char,
	}
}

func newCodePointToken(codePoint string) *token {
	return &token{
		kind:      tokenKindCodePoint,
		codePoint: codePoint,
	}
}

func newCharPropSymbolToken(propSymbol string) *token {
	return &token{
		kind:       tokenKindCharPropSymbol,
		propSymbol: propSymbol,
	}
}

func newFragmentSymbolToken(fragmentSymbol string) *token {
	return &token{
		kind:           tokenKindFragmentSymbol,
		fragmentSymbol: fragmentSymbol,
	}
}

func newCountedRepeatToken(min, max string, hasMax bool) *token {
	return &token{
		kind:        tokenKindCountedRepeat,
		countMin:    min,
		countMax:    max,
		countHasMax: hasMax,
	}
}

type lexerMode string

const (
	lexerModeDefault     lexerMode = "default"
	lexerModeBExp        lexerMode = "bracket expression"
	lexerModeCPExp       lexerMode = "code point expression"
	lexerModeCharPropExp lexerMode = "character property expression"
	lexerModeFragmentExp lexerMode = "fragment expression"
)

type lexerModeStack struct {
	stack []lexerMode
}

func newLexerModeStack() *lexerModeStack {
	return &lexerModeStack{
		stack: []lexerMode{
			lexerModeDefault,
		},
	}
}

func (s *lexerModeStack) top() lexerMode {
	return s.stack[len(s.stack)-1]
}

func (s *lexerModeStack) push(m lexerMode) {
	s.stack = append(s.stack, m)
}

func (s *lexerModeStack) pop() {
	s.stack = s.stack[:len(s.stack)-1]
}

type rangeState string

// [a-z]
// ^^^^
// |||`-- ready
// ||`-- expect range terminator
// |`-- read range initiator
// `-- ready
const (
	rangeStateReady                 rangeState = "ready"
	rangeStateReadRangeInitiator    rangeState = "read range initiator"
	rangeStateExpectRangeTerminator rangeState = "expect range terminator"
)

type lexer struct {
	src        *bufio.Reader
	peekChar2  rune
	peekEOF2   bool
	peekChar1  rune
	peekEOF1   bool
	lastChar   rune
	reachedEOF bool
	prevChar1  rune
	prevEOF1   bool
	prevChar2  rune
	pervEOF2   bool
	modeStack  *lexerModeStack
	rangeState rangeState

	pos       int
	errCause  error
	errDetail string
	errOffset int
}

func newLexer(src io.Reader) *lexer {
	return &lexer{
		src:        bufio.NewReader(src),
		peekChar2:  nullChar,
		peekEOF2:   false,
		peekChar1:  nullChar,
		peekEOF1:   false,
		lastChar:   nullChar,
		reachedEOF: false,
		prevChar1:  nullChar,
		prevEOF1:   false,
		prevChar2:  nullChar,
		pervEOF2:   false,
		modeStack:  newLexerModeStack(),
		rangeState: rangeStateReady,
		pos:        0,
	}
}

func (l *lexer) error() (string, error, int) {
	return l.errDetail, l.errCause, l.errOffset
}

func (l *lexer) next() (*token, error) {
	c, eof, err := l.read()
	if err != nil {
		return nil, err
	}
	if eof {
		return newToken(tokenKindEOF, nullChar), nil
	}

	switch l.modeStack.top() {
	case lexerModeBExp:
		tok, err := l.nextInBExp(c)
		if err != nil {
			return nil, err
		}
		if tok.kind == tokenKindChar || tok.kind == tokenKindCodePointLeader || tok.kind == tokenKindCharPropLeader {
			switch l.rangeState {
			case rangeStateReady:
				l.rangeState = rangeStateReadRangeInitiator
			case rangeStateExpectRangeTerminator:
				l.rangeState = rangeStateReady
			}
		}
		switch tok.kind {
		case tokenKindBExpClose:
			l.modeStack.pop()
		case tokenKindCharRange:
			l.rangeState = rangeStateExpectRangeTerminator
		case tokenKindCodePointLeader:
			l.modeStack.push(lexerModeCPExp)
		case tokenKindCharPropLeader:
			l.modeStack.push(lexerModeCharPropExp)
		}
		return tok, nil
	case lexerModeCPExp:
		tok, err := l.nextInCodePoint(c)
		if err != nil {
			return nil, err
		}
		if tok.kind == tokenKindRBrace {
			l.modeStack.pop()
		}
		return tok, nil
	case lexerModeCharPropExp:
		tok, err := l.nextInCharProp(c)
		if err != nil {
			return nil, err
		}
		if tok.kind == tokenKindRBrace {
			l.modeStack.pop()
		}
		return tok, nil
	case lexerModeFragmentExp:
		tok, err := l.nextInFragment(c)
		if err != nil {
			return nil, err
		}
		if tok.kind == tokenKindRBrace {
			l.modeStack.pop()
		}
		return tok, nil
	default:
		tok, err := l.nextInDefault(c)
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenKindBExpOpen, tokenKindInverseBExpOpen:
			l.modeStack.push(lexerModeBExp)
			l.rangeState = rangeStateReady
		case tokenKindCodePointLeader:
			l.modeStack.push(lexerModeCPExp)
		case tokenKindCharPropLeader:
			l.modeStack.push(lexerModeCharPropExp)
		case tokenKindFragmentLeader:
			l.modeStack.push(lexerModeFragmentExp)
		}
		return tok, nil
	}
}

func (l *lexer) nextInDefault(c rune) (*token, error) {
	switch c {
	case '*':
		return newToken(tokenKindRepeat, nullChar), nil
	case '+':
		return newToken(tokenKindRepeatOneOrMore, nullChar), nil
	case '?':
		return newToken(tokenKindOption, nullChar), nil
	case '.':
		return newToken(tokenKindAnyChar, nullChar), nil
	case '|':
		return newToken(tokenKindAlt, nullChar), nil
	case '(':
		return newToken(tokenKindGroupOpen, nullChar), nil
	case ')':
		return newToken(tokenKindGroupClose, nullChar), nil
	case '{':
		return l.nextCountedRepeat()
	case '[':
		c1, eof, err := l.read()
		if err != nil {
			return nil, err
		}
		if eof {
			if err := l.restore(); err != nil {
				return nil, err
			}
			return newToken(tokenKindBExpOpen, nullChar), nil
		}
		if c1 != '^' {
			if err := l.restore(); err != nil {
				return nil, err
			}
			return newToken(tokenKindBExpOpen, nullChar), nil
		}
		c2, eof, err := l.read()
		if err != nil {
			return nil, err
		}
		if eof {
			if err := l.restore(); err != nil {
				return nil, err
			}
			return newToken(tokenKindInverseBExpOpen, nullChar), nil
		}
		if c2 != ']' {
			if err := l.restore(); err != nil {
				return nil, err
			}
			return newToken(tokenKindInverseBExpOpen, nullChar), nil
		}
		if err := l.restore(); err != nil {
			return nil, err
		}
		if err := l.restore(); err != nil {
			return nil, err
		}
		return newToken(tokenKindBExpOpen, nullChar), nil
	case '\\':
		c, eof, err := l.read()
		if err != nil {
			return nil, err
		}
		if eof {
			l.errCause = lexerr.ErrInvalidEscapeCharacter
			l.errDetail = "incomplete escape sequence"
			l.errOffset = l.pos
			return nil, errParse
		}
		if c == 'u' {
			return newToken(tokenKindCodePointLeader, nullChar), nil
		}
		if c == 'p' {
			return newToken(tokenKindCharPropLeader, nullChar), nil
		}
		if c == 'f' {
			return newToken(tokenKindFragmentLeader, nullChar), nil
		}
		if c == '\\' || c == '.' || c == '*' || c == '+' || c == '?' || c == '|' || c == '(' || c == ')' || c == '[' || c == ']' || c == '{' || c == '}' {
			return newToken(tokenKindChar, c), nil
		}
		l.errCause = lexerr.ErrInvalidEscapeCharacter
		l.errDetail = fmt.Sprintf("\\%v is not a supported escape", string(c))
		l.errOffset = l.pos
		return nil, errParse
	default:
		return newToken(tokenKindChar, c), nil
	}
}

// nextCountedRepeat lexes a `{n}`, `{n,}`, `{,m}`, or `{n,m}` repetition
// count, having already consumed the opening `{`.
func (l *lexer) nextCountedRepeat() (*token, error) {
	var min strings.Builder
	var max strings.Builder
	sawComma := false
	for {
		c, eof, err := l.read()
		if err != nil {
			return nil, err
		}
		if eof {
			l.errCause = lexerr.ErrInvalidRepetitionRange
			l.errDetail = "unclosed repetition count"
			l.errOffset = l.pos
			return nil, errParse
		}
		switch {
		case c == '}':
			if min.Len() == 0 && (!sawComma || max.Len() == 0) {
				l.errCause = lexerr.ErrInvalidRepetitionRange
				l.errDetail = "a repetition count must specify at least one bound"
				l.errOffset = l.pos
				return nil, errParse
			}
			if !sawComma {
				// `{n}` repeats exactly n times: its upper bound is n.
				return newCountedRepeatToken(min.String(), min.String(), true), nil
			}
			return newCountedRepeatToken(min.String(), max.String(), max.Len() > 0), nil
		case c == ',':
			if sawComma {
				l.errCause = lexerr.ErrInvalidRepetitionRange
				l.errDetail = "a repetition count can contain at most one comma"
				l.errOffset = l.pos
				return nil, errParse
			}
			sawComma = true
		case c >= '0' && c <= '9':
			if sawComma {
				max.WriteRune(c)
			} else {
				min.WriteRune(c)
			}
		default:
			l.errCause = lexerr.ErrInvalidRepetitionRange
			l.errDetail = fmt.Sprintf("unexpected character %q in a repetition count", string(c))
			l.errOffset = l.pos
			return nil, errParse
		}
	}
}

func (l *lexer) nextInBExp(c rune) (*token, error) {
	switch c {
	case '-':
		if l.rangeState != rangeStateReadRangeInitiator {
			return newToken(tokenKindChar, c), nil
		}
		c1, eof, err := l.read()
		if err != nil {
			return nil, err
		}
		if eof {
			if err := l.restore(); err != nil {
				return nil, err
			}
			return newToken(tokenKindChar, c), nil
		}
		if c1 != ']' {
			if err := l.restore(); err != nil {
				return nil, err
			}
			return newToken(tokenKindCharRange, nullChar), nil
		}
		if err := l.restore(); err != nil {
			return nil, err
		}
		return newToken(tokenKindChar, c), nil
	case ']':
		return newToken(tokenKindBExpClose, nullChar), nil
	case '\\':
		c, eof, err := l.read()
		if err != nil {
			return nil, err
		}
		if eof {
			l.errCause = lexerr.ErrInvalidEscapeCharacter
			l.errDetail = "incomplete escape sequence"
			l.errOffset = l.pos
			return nil, errParse
		}
		if c == 'u' {
			return newToken(tokenKindCodePointLeader, nullChar), nil
		}
		if c == 'p' {
			return newToken(tokenKindCharPropLeader, nullChar), nil
		}
		if c == '\\' || c == '^' || c == '-' || c == ']' {
			return newToken(tokenKindChar, c), nil
		}
		l.errCause = lexerr.ErrInvalidEscapeCharacter
		l.errDetail = fmt.Sprintf("\\%v is not supported in a character class", string(c))
		l.errOffset = l.pos
		return nil, errParse
	default:
		return newToken(tokenKindChar, c), nil
	}
}

func (l *lexer) nextInCodePoint(c rune) (*token, error) {
	switch c {
	case '{':
		return newToken(tokenKindLBrace, nullChar), nil
	case '}':
		return newToken(tokenKindRBrace, nullChar), nil
	default:
		if !isHexDigit(c) {
			l.errCause = lexerr.ErrInvalidCodePoint
			l.errOffset = l.pos
			return nil, errParse
		}
		var b strings.Builder
		fmt.Fprint(&b, string(c))
		n := 1
		for {
			c, eof, err := l.read()
			if err != nil {
				return nil, err
			}
			if eof {
				if err := l.restore(); err != nil {
					return nil, err
				}
				break
			}
			if c == '}' {
				if err := l.restore(); err != nil {
					return nil, err
				}
				break
			}
			if !isHexDigit(c) || n >= 6 {
				l.errCause = lexerr.ErrInvalidCodePoint
				l.errOffset = l.pos
				return nil, errParse
			}
			fmt.Fprint(&b, string(c))
			n++
		}
		cp := b.String()
		if cpLen := len(cp); !(cpLen == 4 || cpLen == 6) {
			l.errCause = lexerr.ErrInvalidCodePoint
			l.errOffset = l.pos
			return nil, errParse
		}
		return newCodePointToken(b.String()), nil
	}
}

func isHexDigit(c rune) bool {
	return c >= '0' && c <= '9' || c >= 'A' && c <= 'F' || c >= 'a' && c <= 'f'
}

func (l *lexer) nextInCharProp(c rune) (*token, error) {
	switch c {
	case '{':
		return newToken(tokenKindLBrace, nullChar), nil
	case '}':
		return newToken(tokenKindRBrace, nullChar), nil
	case '=':
		return newToken(tokenKindEqual, nullChar), nil
	default:
		var b strings.Builder
		fmt.Fprint(&b, string(c))
		for {
			c, eof, err := l.read()
			if err != nil {
				return nil, err
			}
			if eof {
				if err := l.restore(); err != nil {
					return nil, err
				}
				break
			}
			if c == '}' || c == '=' {
				if err := l.restore(); err != nil {
					return nil, err
				}
				break
			}
			fmt.Fprint(&b, string(c))
		}
		sym := strings.TrimSpace(b.String())
		if len(sym) == 0 {
			l.errCause = lexerr.ErrCharPropertyUnsupported
			l.errOffset = l.pos
			return nil, errParse
		}
		return newCharPropSymbolToken(sym), nil
	}
}

func (l *lexer) nextInFragment(c rune) (*token, error) {
	switch c {
	case '{':
		return newToken(tokenKindLBrace, nullChar), nil
	case '}':
		return newToken(tokenKindRBrace, nullChar), nil
	default:
		var b strings.Builder
		fmt.Fprint(&b, string(c))
		for {
			c, eof, err := l.read()
			if err != nil {
				return nil, err
			}
			if eof {
				if err := l.restore(); err != nil {
					return nil, err
				}
				break
			}
			if c == '}' {
				if err := l.restore(); err != nil {
					return nil, err
				}
				break
			}
			fmt.Fprint(&b, string(c))
		}
		sym := strings.TrimSpace(b.String())
		if len(sym) == 0 {
			l.errCause = lexerr.ErrFragmentUndefined
			l.errDetail = "empty fragment name"
			l.errOffset = l.pos
			return nil, errParse
		}
		return newFragmentSymbolToken(sym), nil
	}
}

func (l *lexer) read() (rune, bool, error) {
	if l.reachedEOF {
		return l.lastChar, l.reachedEOF, nil
	}
	if l.peekChar1 != nullChar || l.peekEOF1 {
		l.prevChar2 = l.prevChar1
		l.pervEOF2 = l.prevEOF1
		l.prevChar1 = l.lastChar
		l.prevEOF1 = l.reachedEOF
		l.lastChar = l.peekChar1
		l.reachedEOF = l.peekEOF1
		l.peekChar1 = l.peekChar2
		l.peekEOF1 = l.peekEOF2
		l.peekChar2 = nullChar
		l.peekEOF2 = false
		if !l.reachedEOF {
			l.pos++
		}
		return l.lastChar, l.reachedEOF, nil
	}
	c, _, err := l.src.ReadRune()
	if err != nil {
		if err == io.EOF {
			l.prevChar2 = l.prevChar1
			l.pervEOF2 = l.prevEOF1
			l.prevChar1 = l.lastChar
			l.prevEOF1 = l.reachedEOF
			l.lastChar = nullChar
			l.reachedEOF = true
			return l.lastChar, l.reachedEOF, nil
		}
		return nullChar, false, err
	}
	l.prevChar2 = l.prevChar1
	l.pervEOF2 = l.prevEOF1
	l.prevChar1 = l.lastChar
	l.prevEOF1 = l.reachedEOF
	l.lastChar = c
	l.reachedEOF = false
	l.pos++
	return l.lastChar, l.reachedEOF, nil
}

func (l *lexer) restore() error {
	if l.lastChar == nullChar && !l.reachedEOF {
		return fmt.Errorf("failed to call restore() because the last character is null")
	}
	l.peekChar2 = l.peekChar1
	l.peekEOF2 = l.peekEOF1
	l.peekChar1 = l.lastChar
	l.peekEOF1 = l.reachedEOF
	l.lastChar = l.prevChar1
	l.reachedEOF = l.prevEOF1
	l.prevChar1 = l.prevChar2
	l.prevEOF1 = l.pervEOF2
	l.prevChar2 = nullChar
	l.pervEOF2 = false
	if !l.reachedEOF {
		l.pos--
	}
	return nil
}
