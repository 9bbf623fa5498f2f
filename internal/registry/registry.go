// Package registry holds the declarative operator/intrinsic type tables
// (C2): for every operator and intrinsic of the source DSL, a table mapping
// operand-type tuples to a result type. Tables are built once at package
// initialisation into O(1) lookup maps, mirroring
// `rosy_lib::operators::build_type_registry` in the original implementation.
package registry

import "github.com/hiibolt/rosyc/internal/types"

// Rule is one row of a declarative registry table: a left type, an
// optional right type (absent for unary intrinsics), the resulting type,
// and optional example operands/comment used purely for documentation —
// reproducing `TypeRule` from `rosy_lib/operators/registry.rs`.
type Rule struct {
	LHS        types.Base
	RHS        types.Base // zero value ("") means this rule has no right operand
	Result     types.Base
	ExampleLHS string
	ExampleRHS string
	Comment    string
}

// Binary builds a row with no example/comment metadata.
func Binary(lhs, rhs, result types.Base) Rule {
	return Rule{LHS: lhs, RHS: rhs, Result: result}
}

// BinaryC builds a row with a documentation comment attached.
func BinaryC(lhs, rhs, result types.Base, comment string) Rule {
	return Rule{LHS: lhs, RHS: rhs, Result: result, Comment: comment}
}

// Unary builds a row for a unary intrinsic (no right operand).
func Unary(lhs, result types.Base) Rule {
	return Rule{LHS: lhs, Result: result}
}

type pairKey struct {
	lhs types.Base
	rhs types.Base
}

// Table is a built registry: O(1) lookup from an operand-type pair (or a
// single operand type, for unary rows) to a result type.
type Table struct {
	rows map[pairKey]types.Base
}

// Build turns a declarative rule list into a lookup table, the Go
// equivalent of `build_type_registry`.
func Build(rules []Rule) *Table {
	m := make(map[pairKey]types.Base, len(rules))
	for _, r := range rules {
		m[pairKey{r.LHS, r.RHS}] = r.Result
	}
	return &Table{rows: m}
}

// Lookup returns the result type for a (lhs, rhs) pair, or false if no rule
// matches — callers turn a false into a precise "cannot <op> types X and Y
// together" error; missing entries are never silently treated as
// undefined behaviour.
func (t *Table) Lookup(lhs, rhs types.Base) (types.Base, bool) {
	b, ok := t.rows[pairKey{lhs, rhs}]
	return b, ok
}

// LookupUnary returns the result type for a single operand type, used by
// unary intrinsics and conversions.
func (t *Table) LookupUnary(operand types.Base) (types.Base, bool) {
	b, ok := t.rows[pairKey{operand, ""}]
	return b, ok
}
