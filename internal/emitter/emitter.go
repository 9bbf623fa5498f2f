// Package emitter implements C7: per-node serialisation of the IR into
// Rust source fragments that compile against the external rosy_lib runtime
// crate. Grounded on the teacher's visitor-style compiler
// (`internal/compiler/compiler.go`, `internal/compiler/stmt_compiler.go`)
// and on the emission shapes pinned down in SPEC_FULL.md §4 from
// `_examples/original_source/rosy*/src/**`.
package emitter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hiibolt/rosyc/internal/emitctx"
	"github.com/hiibolt/rosyc/internal/errors"
	"github.com/hiibolt/rosyc/internal/parser"
	"github.com/hiibolt/rosyc/internal/typecheck"
	"github.com/hiibolt/rosyc/internal/types"
)

// Emitter walks a parsed program and produces one Rust source fragment.
// Errors are accumulated, never raised early — a bad sibling never hides
// its neighbours' failures (spec.md §7).
type Emitter struct {
	Errors *errors.List
	// SawDaini records whether the program contained an explicit DAINI
	// statement, so the driver knows whether it must inject the default
	// order-10/variable-6 initialisation call per spec.md §6.3.1.
	SawDaini bool
}

func New() *Emitter {
	return &Emitter{Errors: &errors.List{}}
}

// Emit compiles program in three passes: the first registers every
// top-level procedure/function signature; the second discovers, per
// procedure/function, which outer names its body captures, by walking it
// once against a scratch error list and a scratch root that replays the
// top-level VARIABLE declarations in source order; the third re-walks
// everything for real, now able to append captured names to both the
// emitted signature and every call site (see DESIGN.md, "Procedure calls
// with arguments, and typed captures").
func (e *Emitter) Emit(program []parser.Stmt) (string, error) {
	root := emitctx.New()

	for _, stmt := range program {
		switch s := stmt.(type) {
		case *parser.ProcDef:
			root.Procedures[s.Name] = emitctx.ProcedureSig{Args: argDataOf(s.Args)}
		case *parser.FuncDef:
			root.Functions[s.Name] = emitctx.FunctionSig{
				ReturnType: baseType(s.ReturnType),
				Args:       argDataOf(s.Args),
			}
		}
	}

	scratch := &errors.List{}
	discovery := emitctx.New()
	discovery.Functions = root.Functions
	discovery.Procedures = root.Procedures
	for _, stmt := range program {
		switch s := stmt.(type) {
		case *parser.VarDecl:
			e.emitStmt(s, discovery, scratch)
		case *parser.ProcDef:
			child := emitctx.NewChild(discovery, argDataOf(s.Args))
			e.emitBlock(s.Body, child, scratch)
			sig := root.Procedures[s.Name]
			sig.Captured = child.RequestedVariables()
			root.Procedures[s.Name] = sig
		case *parser.FuncDef:
			child := emitctx.NewChild(discovery, argDataOf(s.Args))
			e.emitBlock(s.Body, child, scratch)
			sig := root.Functions[s.Name]
			sig.Captured = child.RequestedVariables()
			root.Functions[s.Name] = sig
		}
	}

	var fragments []string
	for _, stmt := range program {
		if _, ok := stmt.(*parser.Daini); ok {
			e.SawDaini = true
		}
		if frag, ok := e.emitStmt(stmt, root, e.Errors); ok {
			fragments = append(fragments, frag)
		}
	}

	if e.Errors.HasErrors() {
		return "", e.Errors
	}
	return strings.Join(fragments, "\n"), nil
}

func argDataOf(args []parser.ArgDecl) []emitctx.VariableData {
	out := make([]emitctx.VariableData, 0, len(args))
	for _, a := range args {
		out = append(out, emitctx.VariableData{Name: a.Name, Type: declaredType(a.Type, a.Dims)})
	}
	return out
}

func baseType(code string) types.Type {
	return types.New(types.Base(code), 0)
}

// declaredType maps a VARIABLE/argument declaration's type code and
// dimension-expression list to a lattice Type. VE is already, by itself,
// "dynamic array of RE" (types.go), so its first dimension expression
// names the vector's own length rather than an added array-nesting level;
// `VARIABLE V VE 3;` is therefore rank 0, while `VARIABLE M VE 3 3;` is a
// rank-1 array of VE. Every other base type has no such built-in array
// nature, so each of its dimension expressions adds one nesting level, per
// `total_dimensions: self.data.dimension_exprs.len()` in
// `_examples/original_source/rosy/src/transpile/statements/var_decl.rs`.
func declaredType(code string, dims []parser.Expr) types.Type {
	rank := len(dims)
	if types.Base(code) == types.VE && rank > 0 {
		rank--
	}
	return types.New(types.Base(code), rank)
}

// --- statements ---

// emitStmt emits one statement. ok is false when the statement (or any of
// its children) failed to type-check or emit; per spec.md §7 a statement
// with any child error produces no fragment, but its siblings are still
// attempted.
func (e *Emitter) emitStmt(stmt parser.Stmt, ctx *emitctx.Context, errs *errors.List) (string, bool) {
	switch s := stmt.(type) {
	case *parser.VarDecl:
		return e.emitVarDecl(s, ctx, errs)
	case *parser.Assign:
		return e.emitAssign(s, ctx, errs)
	case *parser.Read:
		return e.emitRead(s, ctx, errs)
	case *parser.Write:
		return e.emitWrite(s, ctx, errs)
	case *parser.ProcDef:
		return e.emitProcDef(s, ctx, errs)
	case *parser.FuncDef:
		return e.emitFuncDef(s, ctx, errs)
	case *parser.ProcCall:
		return e.emitProcCall(s.Name, s.Args, ctx, errs)
	case *parser.CallStmt:
		// The parser cannot tell a procedure call with arguments from a
		// function call with arguments apart — both parse as CallStmt. A
		// miss in ctx.Functions means s.Call.Name is a procedure instead,
		// which emitProcCall handles (including arity/type validation and
		// captures); see DESIGN.md.
		if _, isFunc := ctx.Functions[s.Call.Name]; !isFunc {
			if _, isProc := ctx.Procedures[s.Call.Name]; isProc {
				return e.emitProcCall(s.Call.Name, s.Call.Args, ctx, errs)
			}
		}
		if _, err := typecheck.TypeOf(s.Call, ctx); err != nil {
			errs.Add(errors.Context(err, "while type-checking a function call statement"))
			return "", false
		}
		frag, err := e.emitExpr(s.Call, ctx)
		if err != nil {
			errs.Add(errors.Context(err, "while emitting a function call statement"))
			return "", false
		}
		return frag + ";", true
	case *parser.Loop:
		return e.emitLoop(s, ctx, errs)
	case *parser.While:
		return e.emitWhile(s, ctx, errs)
	case *parser.If:
		return e.emitIf(s, ctx, errs)
	case *parser.Break:
		if !ctx.InLoop {
			errs.Add(errors.NewScope("BREAK used outside of a LOOP/WHILE body", errors.Location{}))
			return "", false
		}
		return "break;", true
	case *parser.Daini:
		return e.emitDaini(s, ctx, errs)
	default:
		errs.Add(errors.NewInternal(fmt.Sprintf("unhandled statement variant %T", stmt)))
		return "", false
	}
}

func (e *Emitter) emitBlock(stmts []parser.Stmt, ctx *emitctx.Context, errs *errors.List) string {
	var lines []string
	for _, s := range stmts {
		if frag, ok := e.emitStmt(s, ctx, errs); ok {
			lines = append(lines, frag)
		}
	}
	return strings.Join(lines, "\n")
}

func (e *Emitter) emitVarDecl(s *parser.VarDecl, ctx *emitctx.Context, errs *errors.List) (string, bool) {
	typ := declaredType(s.Type, s.Dims)
	if err := ctx.Declare(s.Name, typ); err != nil {
		errs.Add(err)
		return "", false
	}
	hostType, err := types.AsHostType(typ)
	if err != nil {
		errs.Add(errors.Context(err, fmt.Sprintf("while emitting the declaration of '%s'", s.Name)))
		return "", false
	}
	def, err := types.DefaultValue(typ)
	if err != nil {
		errs.Add(errors.Context(err, fmt.Sprintf("while emitting the declaration of '%s'", s.Name)))
		return "", false
	}
	return fmt.Sprintf("let mut %s: %s = %s;", s.Name, hostType, def), true
}

func (e *Emitter) emitAssign(s *parser.Assign, ctx *emitctx.Context, errs *errors.List) (string, bool) {
	scoped, ok := ctx.Lookup(s.Name)
	if !ok {
		errs.Add(errors.NewScope(fmt.Sprintf("assignment to undeclared variable '%s'", s.Name), errors.Location{}))
		return "", false
	}

	valueFrag, valueType, ok := e.typeAndEmit(s.Value, ctx, errs)
	ok2 := true
	var indexFrags []string
	for _, idx := range s.Indices {
		idxType, err := typecheck.TypeOf(idx, ctx)
		if err != nil {
			errs.Add(errors.Context(err, fmt.Sprintf("while type-checking an index into '%s'", s.Name)))
			ok2 = false
			continue
		}
		if idxType.Base != types.RE || idxType.Rank != 0 {
			errs.Add(errors.NewType(fmt.Sprintf("index expressions must have type RE, got %s", idxType.Display()), errors.Location{}))
			ok2 = false
			continue
		}
		frag, err := e.emitExpr(idx, ctx)
		if err != nil {
			errs.Add(err)
			ok2 = false
			continue
		}
		indexFrags = append(indexFrags, frag)
	}
	if !ok || !ok2 {
		return "", false
	}

	targetType := scoped.Data.Type
	if len(s.Indices) > 0 {
		indexed, ok3 := targetType.Indexed(len(s.Indices))
		if !ok3 {
			errs.Add(errors.NewType(fmt.Sprintf("'%s' has rank %d but is indexed with %d subscripts", s.Name, targetType.Rank, len(s.Indices)), errors.Location{}))
			return "", false
		}
		targetType = indexed
	}
	if !targetType.Equal(valueType) {
		errs.Add(errors.NewType(fmt.Sprintf("cannot assign %s to '%s' of type %s", valueType.Display(), s.Name, targetType.Display()), errors.Location{}))
		return "", false
	}

	lhs := s.Name
	for _, f := range indexFrags {
		lhs += fmt.Sprintf("[(%s) as usize]", f)
	}
	return fmt.Sprintf("%s = %s;", lhs, valueFrag), true
}

// typeAndEmit type-checks and emits expr in one call, reporting at most one
// error for the pair.
func (e *Emitter) typeAndEmit(expr parser.Expr, ctx *emitctx.Context, errs *errors.List) (string, types.Type, bool) {
	typ, err := typecheck.TypeOf(expr, ctx)
	if err != nil {
		errs.Add(err)
		return "", types.Type{}, false
	}
	frag, err := e.emitExpr(expr, ctx)
	if err != nil {
		errs.Add(err)
		return "", types.Type{}, false
	}
	return frag, typ, true
}

func (e *Emitter) emitRead(s *parser.Read, ctx *emitctx.Context, errs *errors.List) (string, bool) {
	if s.Unit != 5 {
		errs.Add(errors.NewType(fmt.Sprintf("READ unit must be 5 (stdin), got %d", s.Unit), errors.Location{}))
		return "", false
	}
	scoped, ok := ctx.Lookup(s.Target)
	if !ok {
		errs.Add(errors.NewScope(fmt.Sprintf("READ into undeclared variable '%s'", s.Target), errors.Location{}))
		return "", false
	}
	typ := scoped.Data.Type
	if typ.Rank != 0 || (typ.Base != types.RE && typ.Base != types.ST && typ.Base != types.LO) {
		errs.Add(errors.NewType(fmt.Sprintf("READ target must be RE, ST, or LO, got %s", typ.Display()), errors.Location{}))
		return "", false
	}
	hostType, err := types.AsHostType(typ)
	if err != nil {
		errs.Add(err)
		return "", false
	}
	return fmt.Sprintf(
		`%s = rosy_lib::intrinsics::from_st::from_stdin::<%s>().context("Failed to READ into %s")?;`,
		s.Target, hostType, s.Target), true
}

func (e *Emitter) emitWrite(s *parser.Write, ctx *emitctx.Context, errs *errors.List) (string, bool) {
	if s.Unit != 6 {
		errs.Add(errors.NewType(fmt.Sprintf("WRITE unit must be 6 (stdout), got %d", s.Unit), errors.Location{}))
		return "", false
	}
	var pieces []string
	ok := true
	for _, expr := range s.Exprs {
		frag, err := e.emitExpr(expr, ctx)
		if err != nil {
			errs.Add(errors.Context(err, "while type-checking a WRITE argument"))
			ok = false
			continue
		}
		if _, err := typecheck.TypeOf(expr, ctx); err != nil {
			errs.Add(err)
			ok = false
			continue
		}
		pieces = append(pieces, fmt.Sprintf("RosyST::rosy_to_string(%s)", frag))
	}
	if !ok {
		return "", false
	}
	fmtSpec := strings.Repeat("{}", len(pieces))
	args := strings.Join(pieces, ", ")
	return fmt.Sprintf(`println!("%s", %s);`, fmtSpec, args), true
}

func (e *Emitter) emitDaini(s *parser.Daini, ctx *emitctx.Context, errs *errors.List) (string, bool) {
	orderFrag, orderType, ok1 := e.typeAndEmit(s.Order, ctx, errs)
	nvarsFrag, nvarsType, ok2 := e.typeAndEmit(s.NumVars, ctx, errs)
	if !ok1 || !ok2 {
		return "", false
	}
	if orderType.Base != types.RE || nvarsType.Base != types.RE {
		errs.Add(errors.NewType("DAINI order and variable count must both be RE", errors.Location{}))
		return "", false
	}
	return fmt.Sprintf("DA::init((%s).to_owned() as u32, (%s).to_owned() as u32);", orderFrag, nvarsFrag), true
}

// emitProcCall emits a procedure invocation for its side effects — both the
// bare `NAME;` form (ProcCall, no user arguments) and the `NAME(args);` form
// (routed here from emitStmt's CallStmt case on a Functions-table miss) go
// through this one path, which validates arity/types against the
// declaration (per spec.md §4.7) and emits user arguments ahead of the
// captured-variable arguments, mirroring emitCall's function-call shape.
func (e *Emitter) emitProcCall(name string, callArgs []parser.Expr, ctx *emitctx.Context, errs *errors.List) (string, bool) {
	sig, ok := ctx.Procedures[name]
	if !ok {
		errs.Add(errors.NewScope(fmt.Sprintf("call to undeclared procedure '%s'", name), errors.Location{}))
		return "", false
	}
	if len(callArgs) != len(sig.Args) {
		errs.Add(errors.NewType(
			fmt.Sprintf("procedure '%s' expects %d argument(s), got %d", name, len(sig.Args), len(callArgs)),
			errors.Location{}))
		return "", false
	}
	args := make([]string, 0, len(callArgs)+len(sig.Captured))
	for i, a := range callArgs {
		frag, argType, ok := e.typeAndEmit(a, ctx, errs)
		if !ok {
			return "", false
		}
		if !argType.Equal(sig.Args[i].Type) {
			errs.Add(errors.NewType(
				fmt.Sprintf("argument %d of '%s' expects %s, got %s", i+1, name, sig.Args[i].Type.Display(), argType.Display()),
				errors.Location{}))
			return "", false
		}
		args = append(args, frag)
	}
	for _, c := range sig.Captured {
		scoped, ok := ctx.Lookup(c.Name)
		if !ok {
			errs.Add(errors.NewScope(fmt.Sprintf("procedure '%s' requires captured variable '%s' not visible here", name, c.Name), errors.Location{}))
			return "", false
		}
		args = append(args, scopedRef(scoped))
	}
	return fmt.Sprintf("%s(%s)?;", name, strings.Join(args, ", ")), true
}

func (e *Emitter) emitProcDef(s *parser.ProcDef, ctx *emitctx.Context, errs *errors.List) (string, bool) {
	sig := ctx.Procedures[s.Name]
	child := emitctx.NewChild(ctx, argDataOf(s.Args))
	body := e.emitBlock(s.Body, child, errs)

	params := paramList(s.Args, sig.Captured)
	return fmt.Sprintf("fn %s(%s) -> Result<()> {\n%s\n\tOk(())\n}", s.Name, params, indentBlock(body)), true
}

func (e *Emitter) emitFuncDef(s *parser.FuncDef, ctx *emitctx.Context, errs *errors.List) (string, bool) {
	sig := ctx.Functions[s.Name]
	child := emitctx.NewChild(ctx, argDataOf(s.Args))
	// the return variable is implicitly the function's own name, assigned
	// somewhere in Body, per COSY's FUNCTION convention.
	retType := baseType(s.ReturnType)
	child.Variables[s.Name] = emitctx.ScopedVariableData{Scope: emitctx.Local, Data: emitctx.VariableData{Name: s.Name, Type: retType}}

	hostRetType, err := types.AsHostType(retType)
	if err != nil {
		errs.Add(err)
		return "", false
	}
	defaultVal, err := types.DefaultValue(retType)
	if err != nil {
		errs.Add(err)
		return "", false
	}

	body := e.emitBlock(s.Body, child, errs)
	params := paramList(s.Args, sig.Captured)
	preamble := fmt.Sprintf("let mut %s: %s = %s;", s.Name, hostRetType, defaultVal)
	return fmt.Sprintf("fn %s(%s) -> Result<%s> {\n%s\n%s\n\tOk(%s)\n}",
		s.Name, params, hostRetType, indentBlock(preamble), indentBlock(body), s.Name), true
}

func paramList(args []parser.ArgDecl, captured []emitctx.VariableData) string {
	parts := make([]string, 0, len(args)+len(captured))
	for _, a := range args {
		typ := declaredType(a.Type, a.Dims)
		hostType, err := types.AsHostType(typ)
		if err != nil {
			hostType = "()"
		}
		parts = append(parts, fmt.Sprintf("%s: &mut %s", a.Name, hostType))
	}
	for _, c := range captured {
		hostType, err := types.AsHostType(c.Type)
		if err != nil {
			hostType = "()"
		}
		parts = append(parts, fmt.Sprintf("%s: &mut %s", c.Name, hostType))
	}
	return strings.Join(parts, ", ")
}

func indentBlock(s string) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "\t" + l
	}
	return strings.Join(lines, "\n")
}

func (e *Emitter) emitLoop(s *parser.Loop, ctx *emitctx.Context, errs *errors.List) (string, bool) {
	startFrag, startType, ok1 := e.typeAndEmit(s.Start, ctx, errs)
	endFrag, endType, ok2 := e.typeAndEmit(s.End, ctx, errs)
	var stepFrag string
	ok3 := true
	if s.Step != nil {
		var stepType types.Type
		stepFrag, stepType, ok3 = e.typeAndEmit(s.Step, ctx, errs)
		if ok3 && stepType.Base != types.RE {
			errs.Add(errors.NewType("LOOP step must be RE", errors.Location{}))
			ok3 = false
		}
	}
	if !ok1 || !ok2 || !ok3 {
		return "", false
	}
	if startType.Base != types.RE || endType.Base != types.RE {
		errs.Add(errors.NewType("LOOP bounds must be RE", errors.Location{}))
		return "", false
	}

	child := emitctx.NewChild(ctx, nil)
	child.Variables[s.Iterator] = emitctx.ScopedVariableData{Scope: emitctx.Local, Data: emitctx.VariableData{Name: s.Iterator, Type: types.RERank0()}}
	child.InLoop = true
	body := e.emitBlock(s.Body, child, errs)

	rangeExpr := fmt.Sprintf("(%s) as i64..=(%s) as i64", startFrag, endFrag)
	if stepFrag != "" {
		return fmt.Sprintf("let mut %s: f64 = (%s) as f64;\nwhile %s <= (%s) as f64 {\n%s\n\t%s += (%s) as f64;\n}",
			s.Iterator, startFrag, s.Iterator, endFrag, indentBlock(body), s.Iterator, stepFrag), true
	}
	return fmt.Sprintf("for %s_i in %s {\n\tlet mut %s: f64 = %s_i as f64;\n%s\n}",
		s.Iterator, rangeExpr, s.Iterator, s.Iterator, indentBlock(body)), true
}

func (e *Emitter) emitWhile(s *parser.While, ctx *emitctx.Context, errs *errors.List) (string, bool) {
	condFrag, condType, ok := e.typeAndEmit(s.Cond, ctx, errs)
	if !ok {
		return "", false
	}
	if condType.Base != types.LO {
		errs.Add(errors.NewType(fmt.Sprintf("WHILE condition must be LO, got %s", condType.Display()), errors.Location{}))
		return "", false
	}
	child := emitctx.NewChild(ctx, nil)
	child.InLoop = true
	body := e.emitBlock(s.Body, child, errs)
	return fmt.Sprintf("while %s {\n%s\n}", condFrag, indentBlock(body)), true
}

func (e *Emitter) emitIf(s *parser.If, ctx *emitctx.Context, errs *errors.List) (string, bool) {
	condFrag, condType, ok := e.typeAndEmit(s.Cond, ctx, errs)
	if !ok {
		return "", false
	}
	if condType.Base != types.LO {
		errs.Add(errors.NewType(fmt.Sprintf("IF condition must be LO, got %s", condType.Display()), errors.Location{}))
		return "", false
	}
	thenCtx := emitctx.NewChild(ctx, nil)
	thenCtx.InLoop = ctx.InLoop
	thenBody := e.emitBlock(s.Then, thenCtx, errs)
	var sb strings.Builder
	fmt.Fprintf(&sb, "if %s {\n%s\n}", condFrag, indentBlock(thenBody))
	for _, clause := range s.ElseIfs {
		cFrag, cType, ok := e.typeAndEmit(clause.Cond, ctx, errs)
		if !ok {
			return "", false
		}
		if cType.Base != types.LO {
			errs.Add(errors.NewType(fmt.Sprintf("ELSEIF condition must be LO, got %s", cType.Display()), errors.Location{}))
			return "", false
		}
		clauseCtx := emitctx.NewChild(ctx, nil)
		clauseCtx.InLoop = ctx.InLoop
		body := e.emitBlock(clause.Body, clauseCtx, errs)
		fmt.Fprintf(&sb, " else if %s {\n%s\n}", cFrag, indentBlock(body))
	}
	if s.Else != nil {
		elseCtx := emitctx.NewChild(ctx, nil)
		elseCtx.InLoop = ctx.InLoop
		body := e.emitBlock(s.Else, elseCtx, errs)
		fmt.Fprintf(&sb, " else {\n%s\n}", indentBlock(body))
	}
	return sb.String(), true
}

// --- expressions ---

func scopedRef(s emitctx.ScopedVariableData) string {
	if s.Scope == emitctx.Local {
		return "&mut " + s.Data.Name
	}
	return s.Data.Name
}

var binaryTrait = map[string]string{
	"ADD": "RosyAdd::rosy_add", "SUB": "RosySub::rosy_sub",
	"MUL": "RosyMul::rosy_mul", "DIV": "RosyDiv::rosy_div",
	"CONCAT": "RosyConcat::rosy_concat",
	"EQ":     "RosyEq::rosy_eq", "NEQ": "RosyNeq::rosy_neq",
	"LT": "RosyLt::rosy_lt", "GT": "RosyGt::rosy_gt",
	"LTE": "RosyLte::rosy_lte", "GTE": "RosyGte::rosy_gte",
	"EXPONENT": "RosyExponent::rosy_exponent",
}

var introspectTrait = map[string]string{
	"LENGTH": "RosyLength::rosy_length", "VMAX": "RosyVMAX::rosy_vmax",
	"SQR": "RosySQR::rosy_sqr", "SIN": "RosySin::rosy_sin",
	"LST": "RosyLST::rosy_lst", "LCM": "RosyLCM::rosy_lcm", "LCD": "RosyLCD::rosy_lcd",
}

func (e *Emitter) emitExpr(expr parser.Expr, ctx *emitctx.Context) (string, error) {
	switch ex := expr.(type) {
	case *parser.RealLit:
		return formatRealLiteral(ex.Value), nil
	case *parser.StringLit:
		return fmt.Sprintf("%q.to_string()", ex.Value), nil
	case *parser.BoolLit:
		return strconv.FormatBool(ex.Value), nil

	case *parser.VarRef:
		scoped, ok := ctx.Lookup(ex.Name)
		if !ok {
			return "", errors.NewScope(fmt.Sprintf("undeclared variable '%s'", ex.Name), errors.Location{})
		}
		if len(ex.Indices) == 0 {
			return scopedRef(scoped), nil
		}
		var sb strings.Builder
		sb.WriteString(ex.Name)
		for _, idx := range ex.Indices {
			frag, err := e.emitExpr(idx, ctx)
			if err != nil {
				return "", errors.Context(err, fmt.Sprintf("while emitting an index into '%s'", ex.Name))
			}
			fmt.Fprintf(&sb, "[(%s) as usize]", frag)
		}
		if scoped.Scope == emitctx.Local {
			return "&mut " + sb.String(), nil
		}
		return sb.String(), nil

	case *parser.BinaryExpr:
		return e.emitBinary(ex, ctx)

	case *parser.UnaryExpr:
		operand, err := e.emitExpr(ex.Operand, ctx)
		if err != nil {
			return "", err
		}
		if ex.Op == "NOT" {
			return fmt.Sprintf("RosyNot::rosy_not(%s)", operand), nil
		}
		return fmt.Sprintf("RosyNeg::rosy_neg(%s)", operand), nil

	case *parser.ConvertExpr:
		operand, err := e.emitExpr(ex.Arg, ctx)
		if err != nil {
			return "", err
		}
		switch ex.To {
		case "ST":
			return fmt.Sprintf("RosyST::rosy_to_string(%s)", operand), nil
		case "CM":
			return fmt.Sprintf("RosyCM::rosy_to_cm(%s)", operand), nil
		case "LO":
			return fmt.Sprintf("RosyLO::rosy_to_lo(%s)", operand), nil
		case "DA":
			return fmt.Sprintf("DA::from(%s)", operand), nil
		case "CD":
			return fmt.Sprintf("CD::from(%s)", operand), nil
		default:
			return "", errors.NewInternal(fmt.Sprintf("unknown conversion target %s", ex.To))
		}

	case *parser.IntrospectExpr:
		if len(ex.Args) != 1 {
			return "", errors.NewType(fmt.Sprintf("%s takes exactly one argument", ex.Name), errors.Location{})
		}
		operand, err := e.emitExpr(ex.Args[0], ctx)
		if err != nil {
			return "", err
		}
		trait, ok := introspectTrait[ex.Name]
		if !ok {
			return "", errors.NewInternal(fmt.Sprintf("unknown introspection intrinsic %s", ex.Name))
		}
		return fmt.Sprintf("%s(%s)", trait, operand), nil

	case *parser.CallExpr:
		return e.emitCall(ex, ctx)

	default:
		return "", errors.NewInternal(fmt.Sprintf("unhandled expression variant %T", expr))
	}
}

// emitBinary special-cases EXTRACT and DERIVE, whose emission shape
// (`&*`-reborrow, explicit `.context()`/`.clone() as i64`) is distinct from
// the uniform `Trait::method(lhs, rhs)` form every other binary op uses.
// Both operands are emitted even when one fails; when both fail, both
// errors are returned together in an errors.List.
func (e *Emitter) emitBinary(ex *parser.BinaryExpr, ctx *emitctx.Context) (string, error) {
	left, lerr := e.emitExpr(ex.Left, ctx)
	right, rerr := e.emitExpr(ex.Right, ctx)
	if lerr != nil {
		lerr = errors.Context(lerr, fmt.Sprintf("while emitting the left operand of %s", ex.Op))
	}
	if rerr != nil {
		rerr = errors.Context(rerr, fmt.Sprintf("while emitting the right operand of %s", ex.Op))
	}
	if lerr != nil && rerr != nil {
		return "", &errors.List{Errors: []error{lerr, rerr}}
	}
	if lerr != nil {
		return "", lerr
	}
	if rerr != nil {
		return "", rerr
	}

	switch ex.Op {
	case "EXTRACT":
		return fmt.Sprintf(
			`&mut RosyExtract::rosy_extract(&*(%s), &*(%s)).context("while trying to extract an element")?`,
			left, right), nil
	case "DERIVE":
		return fmt.Sprintf(`&mut RosyDerive::rosy_derive(&*(%s), (%s).clone() as i64)?`, left, right), nil
	}

	trait, ok := binaryTrait[ex.Op]
	if !ok {
		return "", errors.NewInternal(fmt.Sprintf("unknown binary operator %s", ex.Op))
	}
	return fmt.Sprintf("%s(%s, %s)", trait, left, right), nil
}

func (e *Emitter) emitCall(ex *parser.CallExpr, ctx *emitctx.Context) (string, error) {
	sig, ok := ctx.Functions[ex.Name]
	if !ok {
		return "", errors.NewScope(fmt.Sprintf("call to undeclared function '%s'", ex.Name), errors.Location{})
	}
	args := make([]string, 0, len(ex.Args)+len(sig.Captured))
	for _, a := range ex.Args {
		frag, err := e.emitExpr(a, ctx)
		if err != nil {
			return "", err
		}
		args = append(args, frag)
	}
	for _, c := range sig.Captured {
		scoped, ok := ctx.Lookup(c.Name)
		if !ok {
			return "", errors.NewScope(fmt.Sprintf("function '%s' requires captured variable '%s' not visible here", ex.Name, c.Name), errors.Location{})
		}
		args = append(args, scopedRef(scoped))
	}
	return fmt.Sprintf("%s(%s)?", ex.Name, strings.Join(args, ", ")), nil
}

// formatRealLiteral renders a REAL literal as a Rust f64 literal, always
// with a decimal point or an exponent so it cannot be mistaken for an
// integer literal.
func formatRealLiteral(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
