package parser

import "github.com/udonc/udonc/internal/lexer"

// Error codes used by ParseError.Code, mirroring the coarse taxonomy the
// rest of the pipeline needs to distinguish recoverable syntax problems.
const (
	ErrUnexpectedToken  = "unexpected-token"
	ErrNoPrefixParse    = "no-prefix-parse"
	ErrInvalidType      = "invalid-type"
	ErrInvalidStatement = "invalid-statement"
)

// ParseError reports one recoverable syntax problem.
type ParseError struct {
	Pos     lexer.Position
	Message string
	Code    string
}

func (e *ParseError) Error() string { return e.Pos.String() + ": " + e.Message }
