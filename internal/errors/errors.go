// Package errors implements the taxonomy and context-chain rendering used
// throughout the front-end, adapted from the teacher's SentraError and
// from `add_context_to_all`/`anyhow::Context` in
// `_examples/original_source/rosy/src/transpile.rs`. Context chaining is
// built directly on `github.com/pkg/errors`' Wrap/WithMessage/Cause, the
// same mechanism the driver uses for its own I/O errors, so a diagnostic
// raised deep in the front-end and one raised by the driver unwrap and
// render identically.
package errors

import (
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies a front-end error per spec.md §7.
type Kind string

const (
	Syntax   Kind = "SyntaxError"   // source does not conform to the grammar
	AST      Kind = "ASTError"      // parse tree shape unexpected for a rule (defensive)
	Type     Kind = "TypeError"     // registry lookup failed, bad unit, under-rank index, ...
	Scope    Kind = "ScopeError"    // redeclaration, break outside loop, use-before-declare
	Internal Kind = "InternalError" // impossible variant reached (defensive)
)

// Location pinpoints a diagnostic in the source file.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	if l.File == "" && l.Line == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// RosyError is a leaf diagnostic: a kind, a message, an optional source
// location, and an optional source-line snippet, mirroring the teacher's
// SentraError.
type RosyError struct {
	Kind     Kind
	Message  string
	Location Location
	Source   string
}

func (e *RosyError) Error() string {
	loc := e.Location.String()
	if loc == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s\n  at %s", e.Kind, e.Message, loc)
	if e.Source != "" {
		fmt.Fprintf(&sb, "\n  %d | %s", e.Location.Line, e.Source)
	}
	return sb.String()
}

// WithSource attaches the offending source line to the error.
func (e *RosyError) WithSource(src string) *RosyError {
	e.Source = src
	return e
}

func New(kind Kind, message string, loc Location) *RosyError {
	return &RosyError{Kind: kind, Message: message, Location: loc}
}

func NewSyntax(message string, loc Location) *RosyError { return New(Syntax, message, loc) }
func NewAST(message string, loc Location) *RosyError    { return New(AST, message, loc) }
func NewType(message string, loc Location) *RosyError   { return New(Type, message, loc) }
func NewScope(message string, loc Location) *RosyError  { return New(Scope, message, loc) }
func NewInternal(message string) *RosyError             { return New(Internal, message, Location{}) }

// Context wraps err with one more "...while doing X" context-chain frame,
// the Go analogue of `err.context("...while transpiling expression")` in
// `transpile.rs`, implemented with `pkgerrors.WithMessage` so the result
// exposes the standard `Cause() error` that this package's FormatChain
// walks. A nil err returns
// nil, so call sites can write `errors.Context(err, "...")` unconditionally
// inside an `if err != nil` guard without double-checking.
func Context(err error, message string) error {
	if err == nil {
		return nil
	}
	return pkgerrors.WithMessage(err, message)
}

// Contextf is Context with Printf-style formatting.
func Contextf(err error, format string, args ...interface{}) error {
	return Context(err, fmt.Sprintf(format, args...))
}

// causer is pkg/errors' unexported interface, reproduced here so
// FormatChain can walk a chain built from Context/pkgerrors.Wrap without
// importing pkg/errors' internals.
type causer interface {
	Cause() error
}

// FormatChain renders err as a root-cause message followed by its reverse
// context chain, one line per frame, each prefixed with its index — the
// user-visible failure format required by spec.md §7. Each context frame
// added by Context/Contextf/Wrap contributes its own message; pkg/errors
// prefixes the wrapped error's message with the cause's message
// (`"message: cause"`), so splitting on that boundary recovers each
// frame's own text without re-rendering the whole cause repeatedly.
// pkg/errors.Wrap additionally inserts a transparent stack-trace-only
// layer whose Error() delegates verbatim to its cause; such a layer adds
// no text of its own, so it is skipped rather than emitted as a
// duplicate, indistinguishable frame.
func FormatChain(err error) string {
	if err == nil {
		return ""
	}
	var frames []string
	cur := err
	for {
		c, ok := cur.(causer)
		if !ok {
			frames = append(frames, cur.Error())
			break
		}
		cause := c.Cause()
		full, causeMsg := cur.Error(), cause.Error()
		if prefix := strings.TrimSuffix(full, ": "+causeMsg); prefix != full {
			frames = append(frames, prefix)
		}
		cur = cause
	}
	// frames is currently outermost-context-first; reverse so the root
	// cause comes first, each following line one layer further out.
	for i, j := 0, len(frames)-1; i < j; i, j = i+1, j-1 {
		frames[i], frames[j] = frames[j], frames[i]
	}
	var sb strings.Builder
	for i, f := range frames {
		fmt.Fprintf(&sb, "%d: %s\n", i, f)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// List accumulates multiple independent errors — the emitter never aborts
// on the first; sibling expressions/statements are evaluated independently
// so a single bad node cannot mask its neighbours' errors.
type List struct {
	Errors []error
}

func (l *List) Add(err error) {
	if err != nil {
		l.Errors = append(l.Errors, err)
	}
}

func (l *List) AddAll(errs []error) {
	l.Errors = append(l.Errors, errs...)
}

func (l *List) HasErrors() bool { return len(l.Errors) > 0 }

func (l *List) Error() string {
	var sb strings.Builder
	for i, e := range l.Errors {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(FormatChain(e))
	}
	return sb.String()
}
