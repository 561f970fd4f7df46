package regexfrontend

import "fmt"

// errParse is the sentinel returned by the lexer and parser whenever a
// pattern string cannot be scanned or parsed. The actual cause is carried
// separately on the lexer/parser (errCause, errDetail, errOffset) and
// read back by the caller through Parser.Error; errParse itself is only
// a control-flow signal.
var errParse = fmt.Errorf("parse error")

// Syntax errors raised by the parser. Lowering errors (invalid escapes,
// unsupported atoms, out-of-range code points, greedy quantifiers, ...)
// live in lexerr so that graph- and runtime-level errors share the same
// taxonomy; these stay local because they describe a malformed token
// stream, not a semantically-rejected pattern.
var (
	synErrUnexpectedToken        = fmt.Errorf("unexpected token")
	synErrNullPattern            = fmt.Errorf("a pattern must be a non-empty sequence")
	synErrAltLackOfOperand       = fmt.Errorf("an alternation expression must have operands")
	synErrRepNoTarget            = fmt.Errorf("a repeat expression must have an operand")
	synErrRepMissingSuffix       = fmt.Errorf("a repeat expression must be marked reluctant (?) or possessive (+)")
	synErrGroupNoElem            = fmt.Errorf("a grouping expression must include at least one character")
	synErrGroupUnclosed          = fmt.Errorf("unclosed grouping expression")
	synErrGroupNoInitiator       = fmt.Errorf(") needs preceding (")
	synErrGroupInvalidForm       = fmt.Errorf("invalid grouping expression")
	synErrBExpNoElem             = fmt.Errorf("a bracket expression must include at least one character")
	synErrBExpUnclosed           = fmt.Errorf("unclosed bracket expression")
	synErrBExpInvalidForm        = fmt.Errorf("invalid bracket expression")
	synErrRangePropIsUnavailable = fmt.Errorf("a property expression is unavailable in a range expression")
	synErrRangeInvalidForm       = fmt.Errorf("invalid range expression")
	synErrCPExpInvalidForm       = fmt.Errorf("invalid code point expression")
	synErrCharPropExpInvalidForm = fmt.Errorf("invalid character property expression")
	synErrFragmentExpInvalidForm = fmt.Errorf("invalid fragment expression")
)
