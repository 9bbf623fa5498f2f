// Package parser implements the grammar-driven parser (C3) and the AST
// builder (C4): tokens in, typed IR out. Node shapes follow the teacher's
// tagged-interface-plus-visitor style (`internal/parser/ast.go`,
// `internal/parser/stmt.go`), generalised to the statement/expression
// variants spec.md §3 enumerates for COSY INFINITY.
package parser

// Expr is any IR expression node.
type Expr interface{ exprNode() }

// RealLit is a real-number literal, e.g. `3.14159`.
type RealLit struct{ Value float64 }

// StringLit is a single-quoted string literal with quotes already stripped.
type StringLit struct{ Value string }

// BoolLit is TRUE/FALSE.
type BoolLit struct{ Value bool }

// VarRef is a variable reference, optionally indexed: `name` or
// `name(i, j, ...)`.
type VarRef struct {
	Name    string
	Indices []Expr
}

// BinaryExpr covers every infix operator: ADD, SUB, MUL, DIV, CONCAT (&),
// EQ (=), NEQ (#), LT, GT, LTE, GTE, EXTRACT (|), DERIVE (%), EXPONENT (^).
type BinaryExpr struct {
	Op          string
	Left, Right Expr
}

// UnaryExpr covers unary NOT (!/NOT) and unary minus.
type UnaryExpr struct {
	Op      string
	Operand Expr
}

// ConvertExpr is a type-conversion intrinsic: ST(x), CM(x), LO(x), DA(x),
// CD(x). To is one of those five type codes.
type ConvertExpr struct {
	To  string
	Arg Expr
}

// IntrospectExpr is an introspection intrinsic that is not a type
// conversion: LENGTH, VMAX, SQR, SIN, LST, LCM, LCD.
type IntrospectExpr struct {
	Name string
	Args []Expr
}

// CallExpr is a call to a user-defined function.
type CallExpr struct {
	Name string
	Args []Expr
}

func (*RealLit) exprNode()        {}
func (*StringLit) exprNode()      {}
func (*BoolLit) exprNode()        {}
func (*VarRef) exprNode()         {}
func (*BinaryExpr) exprNode()     {}
func (*UnaryExpr) exprNode()      {}
func (*ConvertExpr) exprNode()    {}
func (*IntrospectExpr) exprNode() {}
func (*CallExpr) exprNode()       {}

// conversionNames and introspectionNames classify the built-in
// function-call-syntax forms so the
// statement/expression parser can decide, at the call site, whether an
// identifier followed by `(` is a conversion, an introspection intrinsic,
// or a plain user call.
var conversionNames = map[string]bool{
	"ST": true, "CM": true, "LO": true, "DA": true, "CD": true,
}

var introspectionNames = map[string]bool{
	"LENGTH": true, "VMAX": true, "SQR": true, "SIN": true,
	"LST": true, "LCM": true, "LCD": true,
}
