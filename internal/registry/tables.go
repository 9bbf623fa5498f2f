package registry

import "github.com/hiibolt/rosyc/internal/types"

// Package-level registries, built once at init like the original's
// per-module `get_return_type` helpers — one table per operator or
// intrinsic, each the single source of truth for its type compatibility.

var (
	Add      = Build(addRules)
	Sub      = Build(subRules)
	Mul      = Build(mulRules)
	Div      = Build(divRules)
	Concat   = Build(concatRules)
	Extract  = Build(extractRules)
	Derive   = Build(deriveRules)
	Exponent = Build(exponentRules)
	Eq       = Build(eqRules)
	Neq      = Build(neqRules)
	Lt       = Build(ltRules)
	Gt       = Build(gtRules)
	Lte      = Build(lteRules)
	Gte      = Build(gteRules)

	Not = Build(notRules)
	Neg = Build(negRules)

	ConvertCM = Build(convertCMRules)
	ConvertST = Build(convertSTRules)
	ConvertLO = Build(convertLORules)
	ConvertDA = Build(convertDARules)
	ConvertCD = Build(convertCDRules)

	Length = Build(lengthRules)
	VMAX   = Build(vmaxRules)
	SQR    = Build(sqrRules)
	Sin    = Build(sinRules)

	// LST, LCM, LCD are COSY-compatibility memory-size estimators: they
	// accept an operand of any type and always return RE, per
	// `rosy/src/program/expressions/{lst,lcm,lcd}.rs` — modelled as a
	// registry row per base type purely to keep the "registry as data"
	// discipline uniform, even though every row maps to the same result.
	LST = Build(allToRE)
	LCM = Build(allToRE)
	LCD = Build(allToRE)
)

var allBases = []types.Base{types.RE, types.ST, types.LO, types.CM, types.VE, types.DA, types.CD}

func unaryToAll(result types.Base) []Rule {
	rules := make([]Rule, 0, len(allBases))
	for _, b := range allBases {
		rules = append(rules, Unary(b, result))
	}
	return rules
}

var allToRE = unaryToAll(types.RE)

// ADD: reference table from spec.md §4.2, extended with CD per the
// original's complex-DA ring operations.
var addRules = []Rule{
	BinaryC(types.RE, types.RE, types.RE, "3.14159 + 2.71828"),
	BinaryC(types.RE, types.CM, types.CM, "real plus complex"),
	BinaryC(types.RE, types.VE, types.VE, "real broadcast onto vector"),
	BinaryC(types.CM, types.RE, types.CM, ""),
	BinaryC(types.CM, types.CM, types.CM, ""),
	BinaryC(types.VE, types.RE, types.VE, ""),
	BinaryC(types.VE, types.VE, types.VE, ""),
	BinaryC(types.DA, types.DA, types.DA, "Taylor-series addition"),
	BinaryC(types.DA, types.RE, types.DA, ""),
	BinaryC(types.RE, types.DA, types.DA, ""),
	BinaryC(types.CD, types.CD, types.CD, ""),
	BinaryC(types.CD, types.CM, types.CD, ""),
	BinaryC(types.CM, types.CD, types.CD, ""),
	BinaryC(types.CD, types.RE, types.CD, ""),
	BinaryC(types.RE, types.CD, types.CD, ""),
}

// SUB mirrors ADD's type algebra; COSY subtraction is defined on exactly
// the same operand pairs as addition.
var subRules = addRules

// MUL mirrors ADD for the ring types, but VE has no elementwise product in
// the registry (only scalar broadcast), matching the original's absence of
// a VE*VE rule.
var mulRules = []Rule{
	Binary(types.RE, types.RE, types.RE),
	Binary(types.RE, types.CM, types.CM),
	Binary(types.CM, types.RE, types.CM),
	Binary(types.CM, types.CM, types.CM),
	Binary(types.RE, types.VE, types.VE),
	Binary(types.VE, types.RE, types.VE),
	Binary(types.DA, types.DA, types.DA),
	Binary(types.DA, types.RE, types.DA),
	Binary(types.RE, types.DA, types.DA),
	Binary(types.CD, types.CD, types.CD),
	Binary(types.CD, types.CM, types.CD),
	Binary(types.CM, types.CD, types.CD),
	Binary(types.CD, types.RE, types.CD),
	Binary(types.RE, types.CD, types.CD),
}

// DIV: same operand pairs as MUL (division by a VE or by zero is a
// runtime, not a type, concern).
var divRules = mulRules

// CONCAT (`&`): reproduced from `rosy/src/rosy_lib/operators/concat.rs`.
var concatRules = []Rule{
	BinaryC(types.RE, types.RE, types.VE, "concatenate two reals into a vector"),
	BinaryC(types.RE, types.VE, types.VE, "prepend a real to a vector"),
	BinaryC(types.ST, types.ST, types.ST, "string concatenation"),
	BinaryC(types.VE, types.RE, types.VE, "append a real to a vector"),
	BinaryC(types.VE, types.VE, types.VE, "concatenate two vectors"),
	BinaryC(types.DA, types.DA, types.CD, "pack real/imaginary DA parts into a CD"),
}

// EXTRACT (`|`): lhs is the extracted-from container, rhs is always a real
// index; result depends only on lhs.
var extractRules = []Rule{
	Binary(types.ST, types.RE, types.ST), // one-character substring
	Binary(types.VE, types.RE, types.RE),
	Binary(types.CM, types.RE, types.RE), // component 1 or 2
}

// DERIVE (`%`): only DA/CD support partial derivative/integration; rhs is
// the signed variable-index encoding described in spec.md §4.2.
var deriveRules = []Rule{
	Binary(types.DA, types.RE, types.DA),
	Binary(types.CD, types.RE, types.CD),
}

// EXPONENT (`^`): real exponent of a real, complex, vector (elementwise),
// or DA/CD base.
var exponentRules = []Rule{
	Binary(types.RE, types.RE, types.RE),
	Binary(types.CM, types.RE, types.CM),
	Binary(types.VE, types.RE, types.VE),
	Binary(types.DA, types.RE, types.DA),
	Binary(types.CD, types.RE, types.CD),
}

var eqRules = []Rule{
	BinaryC(types.RE, types.RE, types.LO, "equality with epsilon tolerance"),
	BinaryC(types.ST, types.ST, types.LO, "string equality"),
	BinaryC(types.LO, types.LO, types.LO, "logical equality"),
}
var neqRules = eqRules
var ltRules = []Rule{
	BinaryC(types.RE, types.RE, types.LO, "numeric less-than"),
	BinaryC(types.ST, types.ST, types.LO, "lexicographic ordering"),
}
var gtRules = ltRules
var lteRules = ltRules
var gteRules = ltRules

var notRules = []Rule{
	Unary(types.LO, types.LO),
}
var negRules = []Rule{
	Unary(types.RE, types.RE),
	Unary(types.CM, types.CM),
	Unary(types.VE, types.VE),
	Unary(types.DA, types.DA),
	Unary(types.CD, types.CD),
}

// CM conversion: RE -> CM, CM -> CM, VE -> CM (caller must check len==2 at
// emission/runtime, not at the type level), CD -> CM (constant part).
var convertCMRules = []Rule{
	Unary(types.RE, types.CM),
	Unary(types.CM, types.CM),
	Unary(types.VE, types.CM),
	Unary(types.CD, types.CM),
}

// ST conversion: every base type has a display form.
var convertSTRules = unaryToAll(types.ST)

// LO conversion: only RE and LO convert to logical.
var convertLORules = []Rule{
	Unary(types.RE, types.LO),
	Unary(types.LO, types.LO),
}

// DA conversion: promote a real constant (or identity on DA) to a
// differential algebra object.
var convertDARules = []Rule{
	Unary(types.RE, types.DA),
	Unary(types.DA, types.DA),
}

// CD conversion: promote RE/CM/DA (or identity on CD).
var convertCDRules = []Rule{
	Unary(types.RE, types.CD),
	Unary(types.CM, types.CD),
	Unary(types.DA, types.CD),
	Unary(types.CD, types.CD),
}

var lengthRules = []Rule{
	Unary(types.ST, types.RE),
	Unary(types.VE, types.RE),
}
var vmaxRules = []Rule{
	Unary(types.VE, types.RE),
}
var sqrRules = []Rule{
	Unary(types.RE, types.RE),
	Unary(types.CM, types.CM),
	Unary(types.VE, types.VE),
	Unary(types.DA, types.DA),
	Unary(types.CD, types.CD),
}
var sinRules = []Rule{
	Unary(types.RE, types.RE),
	Unary(types.CM, types.CM),
	Unary(types.DA, types.DA),
	Unary(types.CD, types.CD),
}
