// Package emitctx implements the emitter context (C5): the scope stack the
// emitter consults and mutates while walking the AST. It is a direct Go
// translation of `TranspilationInputContext` and its nested
// `ScopedVariableData`/`VariableScope` in
// `_examples/original_source/rosy/src/transpile.rs`, reshaped into the
// teacher's parent-pointer compiler-context pattern
// (`internal/compiler/stmt_compiler.go`'s `StmtCompiler.parent`).
package emitctx

import (
	"fmt"
	"sort"

	"github.com/hiibolt/rosyc/internal/errors"
	"github.com/hiibolt/rosyc/internal/types"
)

// Scope classifies where a variable's value comes from relative to the
// procedure/function body currently being emitted.
type Scope string

const (
	Local    Scope = "Local"    // declared with VARIABLE inside this body
	Arg      Scope = "Arg"      // a formal parameter of this body
	Captured Scope = "Captured" // resolved from an enclosing scope
)

// VariableData pairs a name with its resolved type.
type VariableData struct {
	Name string
	Type types.Type
}

// ScopedVariableData is a VariableData tagged with where it lives.
type ScopedVariableData struct {
	Scope Scope
	Data  VariableData
}

// FunctionSig is what the emitter needs to know about a declared function
// to type-check and emit calls to it. Captured is filled in after the body
// has been walked once (the emitter's signature-discovery pass): the sorted
// name/type pairs of outer variables the body reads, which the emitted Rust
// signature must carry as extra by-reference parameters — the type travels
// with the name so that signature carries `&mut String`/`&mut Vec<f64>`/etc.
// for a non-RE capture instead of assuming every capture is an `f64`.
type FunctionSig struct {
	ReturnType types.Type
	Args       []VariableData
	Captured   []VariableData
}

// ProcedureSig is the procedure analogue of FunctionSig (no return type).
type ProcedureSig struct {
	Args     []VariableData
	Captured []VariableData
}

// Context is one lexical scope: the global program scope, or the body of a
// single procedure/function. Name lookups that miss locally fall through to
// Parent; a hit there is copied down as a Captured entry and the name is
// added to Requested, mirroring `requested_variables` in the original
// Rust context — this is how the emitter discovers, per procedure/function,
// which outer variables must become extra by-reference arguments on the
// emitted host-language signature.
type Context struct {
	Variables  map[string]ScopedVariableData
	Functions  map[string]FunctionSig
	Procedures map[string]ProcedureSig
	InLoop     bool

	Requested map[string]bool
	Parent    *Context
}

// New creates the root (whole-program) context.
func New() *Context {
	return &Context{
		Variables:  make(map[string]ScopedVariableData),
		Functions:  make(map[string]FunctionSig),
		Procedures: make(map[string]ProcedureSig),
		Requested:  make(map[string]bool),
	}
}

// NewChild opens a procedure/function body scope under parent, seeding it
// with that body's formal arguments. Functions/Procedures maps are shared
// by reference with the root so recursive and mutually-recursive calls
// resolve regardless of declaration order.
func NewChild(parent *Context, args []VariableData) *Context {
	c := &Context{
		Variables:  make(map[string]ScopedVariableData),
		Functions:  parent.Functions,
		Procedures: parent.Procedures,
		Requested:  make(map[string]bool),
		Parent:     parent,
	}
	for _, a := range args {
		c.Variables[a.Name] = ScopedVariableData{Scope: Arg, Data: a}
	}
	return c
}

// Declare introduces a new local variable, or reports a redeclaration.
func (c *Context) Declare(name string, typ types.Type) error {
	if _, exists := c.Variables[name]; exists {
		return errors.NewScope(fmt.Sprintf("variable '%s' is already declared in this scope", name), errors.Location{})
	}
	c.Variables[name] = ScopedVariableData{Scope: Local, Data: VariableData{Name: name, Type: typ}}
	return nil
}

// Lookup resolves name against this scope, then each enclosing scope in
// turn. A hit in an ancestor is memoised into c as Captured and recorded in
// c.Requested, so the emitter can read back exactly which names this body
// must receive as extra arguments.
func (c *Context) Lookup(name string) (ScopedVariableData, bool) {
	if v, ok := c.Variables[name]; ok {
		return v, true
	}
	if c.Parent == nil {
		return ScopedVariableData{}, false
	}
	v, ok := c.Parent.Lookup(name)
	if !ok {
		return ScopedVariableData{}, false
	}
	captured := ScopedVariableData{Scope: Captured, Data: v.Data}
	c.Variables[name] = captured
	c.Requested[name] = true
	return captured, true
}

// RequestedVariables returns the name/type pairs captured from an enclosing
// scope, sorted by name — sorted because the emitted host-language signature
// must be deterministic across runs, the same property `BTreeSet<String>`
// gave the original. Each entry's type comes from the memoised Captured
// lookup in c.Variables, so callers can emit the correct host type for
// every capture instead of assuming f64.
func (c *Context) RequestedVariables() []VariableData {
	names := make([]string, 0, len(c.Requested))
	for n := range c.Requested {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]VariableData, 0, len(names))
	for _, n := range names {
		out = append(out, c.Variables[n].Data)
	}
	return out
}
