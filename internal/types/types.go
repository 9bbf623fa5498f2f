// Package types implements the type lattice (C1): the closed set of COSY
// INFINITY base types and the compound array types built on top of them.
package types

import "fmt"

// Base is one of the seven base types of the source DSL. The set is closed;
// no caller may construct a Base outside this list.
type Base string

const (
	RE Base = "RE" // real, 64-bit float
	ST Base = "ST" // string
	LO Base = "LO" // boolean
	CM Base = "CM" // complex, pair of RE
	VE Base = "VE" // dynamic array of RE
	DA Base = "DA" // real truncated multivariate polynomial
	CD Base = "CD" // complex truncated multivariate polynomial
)

// names gives the human-readable long form used in diagnostics, e.g.
// "RE (real)".
var names = map[Base]string{
	RE: "real",
	ST: "string",
	LO: "boolean",
	CM: "complex",
	VE: "vector",
	DA: "differential algebra",
	CD: "complex differential algebra",
}

// Type is a compound type: a base type plus an array-nesting rank. A
// variable declared `RE a(10,10)` has Base == RE, Rank == 2. Two types are
// equal iff both Base and Rank match.
type Type struct {
	Base Base
	Rank int
}

// New constructs a Type with the given base and rank.
func New(base Base, rank int) Type {
	return Type{Base: base, Rank: rank}
}

// Rank-0 constructors, one per base type. Registries never produce a Type
// with Rank != 0 — only declarations and indexing do.
func RERank0() Type { return Type{Base: RE} }
func STRank0() Type { return Type{Base: ST} }
func LORank0() Type { return Type{Base: LO} }
func CMRank0() Type { return Type{Base: CM} }
func VERank0() Type { return Type{Base: VE} }
func DARank0() Type { return Type{Base: DA} }
func CDRank0() Type { return Type{Base: CD} }

// Equal reports structural equality: same base, same rank.
func (t Type) Equal(other Type) bool {
	return t.Base == other.Base && t.Rank == other.Rank
}

// Indexed returns the type obtained by supplying n index expressions to a
// value of this type, i.e. rank reduced by n. The caller must check the
// returned ok before using the result; a negative resulting rank is not a
// valid type.
func (t Type) Indexed(n int) (Type, bool) {
	if t.Rank-n < 0 {
		return Type{}, false
	}
	return Type{Base: t.Base, Rank: t.Rank - n}, true
}

// Display renders the debug form used throughout diagnostics, e.g.
// "RE (real)" or "VE[2] (vector)" for a rank-2 array of VE.
func (t Type) Display() string {
	long, ok := names[t.Base]
	if !ok {
		long = "unknown"
	}
	if t.Rank == 0 {
		return fmt.Sprintf("%s (%s)", t.Base, long)
	}
	return fmt.Sprintf("%s[%d] (%s)", t.Base, t.Rank, long)
}

func (t Type) String() string { return t.Display() }

// AsHostType maps a Type to its concrete Rust spelling in the emitted
// program. It is used only by the emitter, never by the type-inference
// pass: registries and type_of only ever reason in terms of Type, not host
// syntax.
func AsHostType(t Type) (string, error) {
	var base string
	switch t.Base {
	case RE:
		base = "f64"
	case ST:
		base = "String"
	case LO:
		base = "bool"
	case CM:
		base = "RosyCM"
	case VE:
		base = "Vec<f64>"
	case DA:
		base = "DA"
	case CD:
		base = "CD"
	default:
		return "", fmt.Errorf("no host type mapping for base type %q", t.Base)
	}
	for i := 0; i < t.Rank; i++ {
		base = "Vec<" + base + ">"
	}
	return base, nil
}

// DefaultValue returns the Rust literal used to zero-initialise a freshly
// declared variable of this type, mirroring the per-type default table the
// original implementation's var_decl transpile step consults before
// emitting `let mut name: T = <default>;`.
func DefaultValue(t Type) (string, error) {
	if t.Rank > 0 {
		return "Vec::new()", nil
	}
	switch t.Base {
	case RE:
		return "0.0", nil
	case ST:
		return "String::new()", nil
	case LO:
		return "false", nil
	case CM:
		return "RosyCM::default()", nil
	case VE:
		return "Vec::new()", nil
	case DA:
		return "DA::default()", nil
	case CD:
		return "CD::default()", nil
	default:
		return "", fmt.Errorf("no default value for base type %q", t.Base)
	}
}
