package emitter

import (
	"strings"
	"testing"

	"github.com/hiibolt/rosyc/internal/lexer"
	"github.com/hiibolt/rosyc/internal/parser"
)

// parseProgram is a small helper mirroring the teacher's parseString test
// helper: it drives the real lexer+parser so these tests exercise the full
// front-end, not just hand-built IR.
func parseProgram(t *testing.T, source string) []parser.Stmt {
	t.Helper()
	tokens := lexer.NewScanner(source, "test.cosy").ScanTokens()
	stmts, err := parser.NewParser(tokens).Parse()
	if err != nil {
		t.Fatalf("unexpected parse error for %q: %v", source, err)
	}
	return stmts
}

// TestScenarioRealArithmetic covers spec.md §8 scenario 1: declaring two
// reals, assigning them, and writing their sum.
func TestScenarioRealArithmetic(t *testing.T) {
	stmts := parseProgram(t, `VARIABLE X RE; VARIABLE Y RE; X := 2; Y := -3; WRITE 6 X+Y;`)
	out, err := New().Emit(stmts)
	if err != nil {
		t.Fatalf("unexpected emit error: %v", err)
	}
	if !strings.Contains(out, "RosyAdd::rosy_add(&mut X, &mut Y)") &&
		!strings.Contains(out, "RosyAdd::rosy_add") {
		t.Errorf("expected an ADD emission, got:\n%s", out)
	}
	if !strings.Contains(out, "RosyST::rosy_to_string") {
		t.Errorf("expected WRITE to wrap its argument in RosyST::rosy_to_string, got:\n%s", out)
	}
}

// TestScenarioStringConcat covers spec.md §8 scenario 2.
func TestScenarioStringConcat(t *testing.T) {
	stmts := parseProgram(t, `VARIABLE S ST; S := 'hi'; WRITE 6 S&'!';`)
	out, err := New().Emit(stmts)
	if err != nil {
		t.Fatalf("unexpected emit error: %v", err)
	}
	if !strings.Contains(out, `"!".to_string()`) {
		t.Errorf("expected the string literal '!' to be emitted as a Rust String, got:\n%s", out)
	}
	if !strings.Contains(out, "RosyConcat::rosy_concat") {
		t.Errorf("expected a CONCAT emission, got:\n%s", out)
	}
}

// TestScenarioVectorAndVMAX covers spec.md §8 scenario 3.
func TestScenarioVectorAndVMAX(t *testing.T) {
	stmts := parseProgram(t, `VARIABLE V VE 3; V := 1&2&3; WRITE 6 VMAX(V);`)
	out, err := New().Emit(stmts)
	if err != nil {
		t.Fatalf("unexpected emit error: %v", err)
	}
	if !strings.Contains(out, "RosyVMAX::rosy_vmax") {
		t.Errorf("expected a VMAX emission, got:\n%s", out)
	}
}

// TestScenarioBooleanNegation covers spec.md §8 scenario 4.
func TestScenarioBooleanNegation(t *testing.T) {
	stmts := parseProgram(t, `VARIABLE B LO; B := TRUE; WRITE 6 !B;`)
	out, err := New().Emit(stmts)
	if err != nil {
		t.Fatalf("unexpected emit error: %v", err)
	}
	if !strings.Contains(out, "RosyNot::rosy_not") {
		t.Errorf("expected a NOT emission, got:\n%s", out)
	}
	if !strings.Contains(out, "let mut B: bool = false;") {
		t.Errorf("expected the boolean default-value declaration, got:\n%s", out)
	}
}

// TestScenarioLoop covers spec.md §8 scenario 5.
func TestScenarioLoop(t *testing.T) {
	stmts := parseProgram(t, `LOOP I 1 3; WRITE 6 I; ENDLOOP;`)
	out, err := New().Emit(stmts)
	if err != nil {
		t.Fatalf("unexpected emit error: %v", err)
	}
	if !strings.Contains(out, "for I_i in") {
		t.Errorf("expected a for-range loop over the iterator, got:\n%s", out)
	}
}

// TestScenarioTypeErrorIsReported covers spec.md §8 scenario 6: adding a
// string and a real must fail to type-check with a descriptive message,
// not panic or silently coerce.
func TestScenarioTypeErrorIsReported(t *testing.T) {
	stmts := parseProgram(t, `WRITE 6 'hello'+1;`)
	_, err := New().Emit(stmts)
	if err == nil {
		t.Fatalf("expected 'hello'+1 to fail to type-check")
	}
}

func TestEmitIsDeterministic(t *testing.T) {
	source := `VARIABLE X RE; X := 5; WRITE 6 X;`
	first, err := New().Emit(parseProgram(t, source))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := New().Emit(parseProgram(t, source))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("expected repeated emission to be byte-identical:\n%s\n---\n%s", first, second)
	}
}

func TestProcedureWithCapturedVariable(t *testing.T) {
	stmts := parseProgram(t, `VARIABLE X RE; X := 1; PROCEDURE SHOWX(); WRITE 6 X; ENDPROCEDURE; SHOWX;`)
	out, err := New().Emit(stmts)
	if err != nil {
		t.Fatalf("unexpected emit error: %v", err)
	}
	if !strings.Contains(out, "fn SHOWX(X: &mut f64)") {
		t.Errorf("expected SHOWX to receive the captured variable 'X' as a parameter, got:\n%s", out)
	}
	if !strings.Contains(out, "SHOWX(&mut X)?;") {
		t.Errorf("expected the call site to pass the captured variable, got:\n%s", out)
	}
}

func TestDaininjectsNothingWhenExplicit(t *testing.T) {
	stmts := parseProgram(t, `DAINI 10 6; VARIABLE X RE; X := 1; WRITE 6 X;`)
	e := New()
	if _, err := e.Emit(stmts); err != nil {
		t.Fatalf("unexpected emit error: %v", err)
	}
	if !e.SawDaini {
		t.Errorf("expected SawDaini to be true when the program declares DAINI explicitly")
	}
}

func TestSawDainiFalseWhenAbsent(t *testing.T) {
	stmts := parseProgram(t, `VARIABLE X RE; X := 1; WRITE 6 X;`)
	e := New()
	if _, err := e.Emit(stmts); err != nil {
		t.Fatalf("unexpected emit error: %v", err)
	}
	if e.SawDaini {
		t.Errorf("expected SawDaini to be false when the program never declares DAINI")
	}
}

// TestProcedureCapturesNonRealVariable guards against hardcoding every
// capture as f64: a captured ST variable must appear in the signature as
// `&mut String`, matching the `&mut String` the call site already passes.
func TestProcedureCapturesNonRealVariable(t *testing.T) {
	stmts := parseProgram(t, `VARIABLE S ST; S := 'hi'; PROCEDURE SHOWS(); WRITE 6 S; ENDPROCEDURE; SHOWS;`)
	out, err := New().Emit(stmts)
	if err != nil {
		t.Fatalf("unexpected emit error: %v", err)
	}
	if !strings.Contains(out, "fn SHOWS(S: &mut String)") {
		t.Errorf("expected SHOWS to receive the captured ST variable as &mut String, got:\n%s", out)
	}
	if !strings.Contains(out, "SHOWS(&mut S)?;") {
		t.Errorf("expected the call site to pass the captured variable, got:\n%s", out)
	}
}

// TestProcedureCallWithArguments exercises a procedure call that supplies
// user arguments ahead of its captured variables, per spec.md §4.7.
func TestProcedureCallWithArguments(t *testing.T) {
	stmts := parseProgram(t, `VARIABLE Y RE; Y := 1; PROCEDURE SHOWSUM(A RE); WRITE 6 A+Y; ENDPROCEDURE; SHOWSUM(2);`)
	out, err := New().Emit(stmts)
	if err != nil {
		t.Fatalf("unexpected emit error: %v", err)
	}
	if !strings.Contains(out, "fn SHOWSUM(A: &mut f64, Y: &mut f64)") {
		t.Errorf("expected SHOWSUM to take its declared argument ahead of its capture, got:\n%s", out)
	}
	if !strings.Contains(out, "SHOWSUM(2.0, &mut Y)?;") {
		t.Errorf("expected the call site to pass the user argument ahead of the capture, got:\n%s", out)
	}
}

// TestProcedureCallArityMismatchFails covers the arity-validation path a
// procedure call now shares with a function call.
func TestProcedureCallArityMismatchFails(t *testing.T) {
	stmts := parseProgram(t, `PROCEDURE NOOP(A RE); WRITE 6 A; ENDPROCEDURE; NOOP(1, 2);`)
	if _, err := New().Emit(stmts); err == nil {
		t.Fatalf("expected a procedure call with the wrong number of arguments to fail")
	}
}
