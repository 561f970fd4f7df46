package regexfrontend

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nihei9/lexergen/lexerr"
)

// Parser parses a single pattern string into an AST. A pattern is an
// anchored regular expression over Unicode scalar values: concatenation,
// alternation, grouping, and bracket expressions. `*`/`+` must carry a
// reluctant (`?`) or possessive (`+`) suffix — bare greedy `*`/`+` is
// rejected. `?`/`{n,m}` have no such requirement: the reluctant/possessive
// suffix is optional and, unlike `*`/`+`, doesn't change how they lower.
type Parser struct {
	lex       *lexer
	peekedTok *token
	lastTok   *token

	errCause  error
	errDetail string
	errOffset int
}

func NewParser(src io.Reader) *Parser {
	return &Parser{
		lex: newLexer(src),
	}
}

func (p *Parser) Error() (string, error, int) {
	return p.errDetail, p.errCause, p.errOffset
}

func (p *Parser) Parse() (root AST, retErr error) {
	defer func() {
		err := recover()
		if err != nil {
			var ok bool
			retErr, ok = err.(error)
			if !ok {
				panic(err)
			}
			return
		}
	}()

	return p.parseRegexp(), nil
}

func (p *Parser) parseRegexp() AST {
	alt := p.parseAlt()
	if alt == nil {
		if p.consume(tokenKindGroupClose) {
			p.raiseParseError(synErrGroupNoInitiator, "")
		}
		p.raiseParseError(synErrNullPattern, "")
	}
	if p.consume(tokenKindGroupClose) {
		p.raiseParseError(synErrGroupNoInitiator, "")
	}
	p.expect(tokenKindEOF)
	return alt
}

func (p *Parser) parseAlt() AST {
	left := p.parseConcat()
	if left == nil {
		if p.consume(tokenKindAlt) {
			p.raiseParseError(synErrAltLackOfOperand, "")
		}
		return nil
	}
	for {
		if !p.consume(tokenKindAlt) {
			break
		}
		right := p.parseConcat()
		if right == nil {
			p.raiseParseError(synErrAltLackOfOperand, "")
		}
		left = newAltNode(left, right)
	}
	return left
}

func (p *Parser) parseConcat() AST {
	left := p.parseRepeat()
	for {
		right := p.parseRepeat()
		if right == nil {
			break
		}
		left = newConcatNode(left, right)
	}
	return left
}

// parseRepeat parses an atom followed by an optional repetition count.
// `*`/`+` must carry a reluctant (`?`) or possessive (`+`) suffix — a bare
// greedy `*`/`+` is rejected. `?`/`{n,m}` carry no such requirement: the
// suffix is accepted but optional, since lowering treats them the same
// either way.
func (p *Parser) parseRepeat() AST {
	group := p.parseGroup()
	if group == nil {
		if p.consume(tokenKindRepeat) {
			p.raiseParseError(synErrRepNoTarget, "* needs an operand")
		}
		if p.consume(tokenKindRepeatOneOrMore) {
			p.raiseParseError(synErrRepNoTarget, "+ needs an operand")
		}
		if p.consume(tokenKindOption) {
			p.raiseParseError(synErrRepNoTarget, "? needs an operand")
		}
		if p.consume(tokenKindCountedRepeat) {
			p.raiseParseError(synErrRepNoTarget, "{n,m} needs an operand")
		}
		return nil
	}

	var min, max int
	var hasMax, suffixRequired bool
	switch {
	case p.consume(tokenKindRepeat):
		min, max, hasMax, suffixRequired = 0, 0, false, true
	case p.consume(tokenKindRepeatOneOrMore):
		min, max, hasMax, suffixRequired = 1, 0, false, true
	case p.consume(tokenKindOption):
		min, max, hasMax = 0, 1, true
	case p.consume(tokenKindCountedRepeat):
		min, max, hasMax = p.parseCountedRepeatBounds()
	default:
		return group
	}

	kind, ok := p.consumeQuantifierSuffix()
	if !ok {
		if suffixRequired {
			p.raiseParseError(lexerr.ErrGreedyMatchingMore, synErrRepMissingSuffix.Error())
		}
		kind = quantBare
	}
	return newQuantifierNode(group, kind, min, max, hasMax)
}

// consumeQuantifierSuffix consumes a trailing `?` (reluctant) or `+`
// (possessive) marker immediately following a repetition count.
func (p *Parser) consumeQuantifierSuffix() (quantKind, bool) {
	if p.consume(tokenKindOption) {
		return quantReluctant, true
	}
	if p.consume(tokenKindRepeatOneOrMore) {
		return quantPossessive, true
	}
	return "", false
}

func (p *Parser) parseCountedRepeatBounds() (int, int, bool) {
	min := 0
	if p.lastTok.countMin != "" {
		n, err := strconv.Atoi(p.lastTok.countMin)
		if err != nil {
			p.raiseParseError(lexerr.ErrInvalidRepetitionRange, err.Error())
		}
		min = n
	}
	if !p.lastTok.countHasMax {
		return min, 0, false
	}
	if p.lastTok.countMax == "" {
		return min, 0, true
	}
	max, err := strconv.Atoi(p.lastTok.countMax)
	if err != nil {
		p.raiseParseError(lexerr.ErrInvalidRepetitionRange, err.Error())
	}
	if max < min {
		p.raiseParseError(lexerr.ErrInvalidRepetitionRange, fmt.Sprintf("{%v,%v}: max is less than min", min, max))
	}
	return min, max, true
}

func (p *Parser) parseGroup() AST {
	if p.consume(tokenKindGroupOpen) {
		alt := p.parseAlt()
		if alt == nil {
			if p.consume(tokenKindEOF) {
				p.raiseParseError(synErrGroupUnclosed, "")
			}
			p.raiseParseError(synErrGroupNoElem, "")
		}
		if p.consume(tokenKindEOF) {
			p.raiseParseError(synErrGroupUnclosed, "")
		}
		if !p.consume(tokenKindGroupClose) {
			p.raiseParseError(synErrGroupInvalidForm, "")
		}
		return alt
	}
	return p.parseSingleChar()
}

func (p *Parser) parseSingleChar() AST {
	if p.consume(tokenKindAnyChar) {
		return newAnyCharNode()
	}
	if p.consume(tokenKindBExpOpen) {
		members, negated := p.parseBExp()
		return newClassNode(members, negated)
	}
	if p.consume(tokenKindInverseBExpOpen) {
		members, _ := p.parseBExp()
		return newClassNode(members, true)
	}
	if p.consume(tokenKindCodePointLeader) {
		return p.parseCodePoint()
	}
	if p.consume(tokenKindCharPropLeader) {
		return p.parseCharProp()
	}
	if p.consume(tokenKindFragmentLeader) {
		return p.parseFragment()
	}
	c := p.parseNormalChar()
	if c == nil {
		if p.consume(tokenKindBExpClose) {
			p.raiseParseError(synErrBExpInvalidForm, "")
		}
		return nil
	}
	return c
}

// parseBExp parses the member list of a bracket expression, having already
// consumed its opening token. The caller supplies the negation flag to use.
func (p *Parser) parseBExp() ([]CPRange, bool) {
	var members []CPRange
	left := p.parseBExpElem()
	if left == nil {
		if p.consume(tokenKindEOF) {
			p.raiseParseError(synErrBExpUnclosed, "")
		}
		p.raiseParseError(synErrBExpNoElem, "")
	}
	members = append(members, left.(*symbolNode).CPRange)
	for {
		right := p.parseBExpElem()
		if right == nil {
			break
		}
		members = append(members, right.(*symbolNode).CPRange)
	}
	if p.consume(tokenKindEOF) {
		p.raiseParseError(synErrBExpUnclosed, "")
	}
	p.expect(tokenKindBExpClose)
	return members, false
}

func (p *Parser) parseBExpElem() AST {
	var left AST
	switch {
	case p.consume(tokenKindCodePointLeader):
		left = p.parseCodePoint()
	case p.consume(tokenKindCharPropLeader):
		p.raiseParseError(lexerr.ErrCharPropertyUnsupported, "")
	default:
		left = p.parseNormalChar()
	}
	if left == nil {
		return nil
	}
	if !p.consume(tokenKindCharRange) {
		return left
	}
	var right AST
	switch {
	case p.consume(tokenKindCodePointLeader):
		right = p.parseCodePoint()
	case p.consume(tokenKindCharPropLeader):
		p.raiseParseError(synErrRangePropIsUnavailable, "")
	default:
		right = p.parseNormalChar()
	}
	if right == nil {
		p.raiseParseError(synErrRangeInvalidForm, "")
	}
	from, _, _ := left.Range()
	_, to, _ := right.Range()
	if from > to {
		p.raiseParseError(lexerr.ErrIncorrectCharRange, fmt.Sprintf("%X..%X", from, to))
	}
	return newRangeSymbolNode(from, to)
}

func (p *Parser) parseCodePoint() AST {
	if !p.consume(tokenKindLBrace) {
		p.raiseParseError(synErrCPExpInvalidForm, "")
	}
	if !p.consume(tokenKindCodePoint) {
		p.raiseParseError(synErrCPExpInvalidForm, "")
	}

	n, err := strconv.ParseInt(p.lastTok.codePoint, 16, 64)
	if err != nil {
		panic(fmt.Errorf("failed to decode a code point (%v) into an int: %w", p.lastTok.codePoint, err))
	}
	if n < 0x0000 || n > 0x10FFFF {
		p.raiseParseError(lexerr.ErrWiderUnicodeThanSupported, "")
	}

	sym := newSymbolNode(rune(n))

	if !p.consume(tokenKindRBrace) {
		p.raiseParseError(synErrCPExpInvalidForm, "")
	}

	return sym
}

// parseCharProp consumes a full `\p{Name}` or `\p{Name=Value}` expression
// and then rejects it: character-property classes are recognised only far
// enough to produce a named error instead of a generic syntax error.
func (p *Parser) parseCharProp() AST {
	if !p.consume(tokenKindLBrace) {
		p.raiseParseError(synErrCharPropExpInvalidForm, "")
	}
	if !p.consume(tokenKindCharPropSymbol) {
		p.raiseParseError(synErrCharPropExpInvalidForm, "")
	}
	if p.consume(tokenKindEqual) {
		if !p.consume(tokenKindCharPropSymbol) {
			p.raiseParseError(synErrCharPropExpInvalidForm, "")
		}
	}
	if !p.consume(tokenKindRBrace) {
		p.raiseParseError(synErrCharPropExpInvalidForm, "")
	}
	p.raiseParseError(lexerr.ErrCharPropertyUnsupported, "")
	return nil
}

func (p *Parser) parseFragment() AST {
	if !p.consume(tokenKindLBrace) {
		p.raiseParseError(synErrFragmentExpInvalidForm, "")
	}
	if !p.consume(tokenKindFragmentSymbol) {
		p.raiseParseError(synErrFragmentExpInvalidForm, "")
	}
	sym := p.lastTok.fragmentSymbol

	if !p.consume(tokenKindRBrace) {
		p.raiseParseError(synErrFragmentExpInvalidForm, "")
	}

	return newFragmentRefNode(sym)
}

func (p *Parser) parseNormalChar() AST {
	if !p.consume(tokenKindChar) {
		return nil
	}
	return newSymbolNode(p.lastTok.char)
}

func (p *Parser) expect(expected tokenKind) {
	if !p.consume(expected) {
		tok := p.peekedTok
		p.raiseParseError(synErrUnexpectedToken, fmt.Sprintf("expected: %v, actual: %v", expected, tok.kind))
	}
}

func (p *Parser) consume(expected tokenKind) bool {
	var tok *token
	var err error
	if p.peekedTok != nil {
		tok = p.peekedTok
		p.peekedTok = nil
	} else {
		tok, err = p.lex.next()
		if err != nil {
			if err == errParse {
				detail, cause, offset := p.lex.error()
				p.errOffset = offset
				p.raiseParseError(cause, detail)
			}
			panic(err)
		}
	}
	p.lastTok = tok
	if tok.kind == expected {
		return true
	}
	p.peekedTok = tok
	p.lastTok = nil

	return false
}

func (p *Parser) raiseParseError(err error, detail string) {
	p.errCause = err
	p.errDetail = detail
	panic(errParse)
}
