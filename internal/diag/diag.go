// Package diag formats the fatal diagnostics emitted by the lexer, parser,
// and evaluator. Every cvm error is fatal: the first one aborts the
// program, so unlike the teacher's internal/errors package (which renders
// multi-line source context with carets for a batch of simultaneous
// compiler diagnostics) diag renders a single line, since there is never
// more than one diagnostic to show.
package diag

import (
	"fmt"

	"github.com/cvm-lang/cvm/internal/token"
)

// Kind classifies which stage of the pipeline raised the error.
type Kind string

const (
	Lexer    Kind = "Lexer"
	Parser   Kind = "Parser"
	Runtime  Kind = "Runtime"
	Internal Kind = "Internal"
)

// Error is a fatal cvm diagnostic. It implements the error interface.
type Error struct {
	Kind Kind
	Pos  *token.Position // nil when no source location is known
	Msg  string
}

func (e *Error) Error() string {
	if e.Pos != nil {
		return fmt.Sprintf("[%s Error] %s (%s)", e.Kind, e.Msg, *e.Pos)
	}
	return fmt.Sprintf("[%s Error] %s", e.Kind, e.Msg)
}

func newf(kind Kind, pos *token.Position, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Lexf builds a lexer error at the given position.
func Lexf(pos token.Position, format string, args ...any) *Error {
	return newf(Lexer, &pos, format, args...)
}

// Parsef builds a parser error at the given position.
func Parsef(pos token.Position, format string, args ...any) *Error {
	return newf(Parser, &pos, format, args...)
}

// ParsefNoPos builds a parser error with no known position (e.g. an empty
// token stream).
func ParsefNoPos(format string, args ...any) *Error {
	return newf(Parser, nil, format, args...)
}

// Runtimef builds a runtime error at the given position.
func Runtimef(pos token.Position, format string, args ...any) *Error {
	return newf(Runtime, &pos, format, args...)
}

// Internalf builds an internal invariant-violation error.
func Internalf(format string, args ...any) *Error {
	return newf(Internal, nil, format, args...)
}
