package parser

import (
	"testing"

	"github.com/hiibolt/rosyc/internal/lexer"
)

func parseString(input string) (stmts []Stmt, err error) {
	scanner := lexer.NewScanner(input, "test.cosy")
	tokens := scanner.ScanTokens()
	p := NewParserWithSource(tokens, input, "test.cosy")
	return p.Parse()
}

func assertParseSuccess(t *testing.T, input, description string) []Stmt {
	t.Helper()
	stmts, err := parseString(input)
	if err != nil {
		t.Errorf("%s: parsing failed: %v", description, err)
		return nil
	}
	return stmts
}

func assertParseError(t *testing.T, input, description string) {
	t.Helper()
	_, err := parseString(input)
	if err == nil {
		t.Errorf("%s: expected parsing to fail but it succeeded", description)
	}
}

func TestVariableDeclarations(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		shouldPass bool
	}{
		{"scalar real", "VARIABLE X RE;", true},
		{"scalar string", "VARIABLE S ST;", true},
		{"vector with dim", "VARIABLE V VE 3;", true},
		{"array with two dims", "VARIABLE M RE 3 3;", true},
		{"missing semicolon", "VARIABLE X RE", false},
		{"missing type", "VARIABLE X;", false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.shouldPass {
				assertParseSuccess(t, test.input, test.name)
			} else {
				assertParseError(t, test.input, test.name)
			}
		})
	}
}

func TestAssignments(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		shouldPass bool
	}{
		{"simple assignment", "X := 1;", true},
		{"indexed assignment", "V(1) := 2;", true},
		{"expression rhs", "X := Y + 1*2;", true},
		{"missing value", "X := ;", false},
		{"missing semicolon", "X := 1", false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.shouldPass {
				assertParseSuccess(t, test.input, test.name)
			} else {
				assertParseError(t, test.input, test.name)
			}
		})
	}
}

func TestExpressionPrecedence(t *testing.T) {
	stmts := assertParseSuccess(t, "X := 2 + 3*4^2|1;", "mixed precedence")
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	assign, ok := stmts[0].(*Assign)
	if !ok {
		t.Fatalf("expected *Assign, got %T", stmts[0])
	}
	// top-level operator must be the lowest-precedence one reached last:
	// EXTRACT (|) binds tighter than everything else here except EXPONENT,
	// so the outermost node is ADD.
	add, ok := assign.Value.(*BinaryExpr)
	if !ok || add.Op != "ADD" {
		t.Fatalf("expected top-level ADD, got %#v", assign.Value)
	}
}

func TestExponentRightAssociative(t *testing.T) {
	stmts := assertParseSuccess(t, "X := 2^3^2;", "right-assoc exponent")
	assign := stmts[0].(*Assign)
	top, ok := assign.Value.(*BinaryExpr)
	if !ok || top.Op != "EXPONENT" {
		t.Fatalf("expected EXPONENT at top, got %#v", assign.Value)
	}
	// 2^3^2 must parse as 2^(3^2), so the right child is itself EXPONENT.
	right, ok := top.Right.(*BinaryExpr)
	if !ok || right.Op != "EXPONENT" {
		t.Fatalf("expected right-associative nesting, got %#v", top.Right)
	}
}

func TestProcedureAndFunctionDefs(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		shouldPass bool
	}{
		{"empty procedure", "PROCEDURE FOO();\nENDPROCEDURE;", true},
		{"procedure with args", "PROCEDURE FOO(X RE, Y RE);\nENDPROCEDURE;", true},
		{"function with return type", "FUNCTION SQ(X RE) RE;\nSQ := X*X;\nENDFUNCTION;", true},
		{"unterminated procedure", "PROCEDURE FOO();\n", false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.shouldPass {
				assertParseSuccess(t, test.input, test.name)
			} else {
				assertParseError(t, test.input, test.name)
			}
		})
	}
}

func TestControlFlow(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		shouldPass bool
	}{
		{"loop", "LOOP I 1 10;\nENDLOOP;", true},
		{"loop with step", "LOOP I 1 10 2;\nENDLOOP;", true},
		{"while", "WHILE X<10;\nX := X+1;\nENDWHILE;", true},
		{"if only", "IF X>0;\nENDIF;", true},
		{"if else", "IF X>0;\nELSE;\nENDIF;", true},
		{"if elseif else", "IF X>0;\nELSEIF X<0;\nELSE;\nENDIF;", true},
		{"break in loop", "LOOP I 1 10;\nBREAK;\nENDLOOP;", true},
		{"missing endloop", "LOOP I 1 10;\n", false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.shouldPass {
				assertParseSuccess(t, test.input, test.name)
			} else {
				assertParseError(t, test.input, test.name)
			}
		})
	}
}

func TestWriteReadDaini(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		shouldPass bool
	}{
		{"write one expr", "WRITE 6 X;", true},
		{"write multiple exprs", "WRITE 6 X+Y X-Y;", true},
		{"read scalar", "READ 5 X;", true},
		{"read indexed", "READ 5 V(1);", true},
		{"daini", "DAINI 2 3;", true},
		{"write missing semicolon", "WRITE 6 X", false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.shouldPass {
				assertParseSuccess(t, test.input, test.name)
			} else {
				assertParseError(t, test.input, test.name)
			}
		})
	}
}

func TestIntrinsicsAndConversions(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		shouldPass bool
	}{
		{"conversion call", "X := ST(Y);", true},
		{"introspection call", "X := VMAX(V);", true},
		{"user function call", "X := SQ(Y);", true},
		{"conversion wrong arity", "X := ST(Y, Z);", false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.shouldPass {
				assertParseSuccess(t, test.input, test.name)
			} else {
				assertParseError(t, test.input, test.name)
			}
		})
	}
}

func TestEdgeCases(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		shouldPass bool
	}{
		{"empty program", "", true},
		{"only whitespace", "   \n\t  ", true},
		{"parenthesized expression", "X := (1+2)*3;", true},
		{"unary not", "X := NOT Y;", true},
		{"unary minus", "X := -Y;", true},
		{"string concat", "S := 'a' & 'b';", true},
		{"unexpected token", "X := ;", false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.shouldPass {
				assertParseSuccess(t, test.input, test.name)
			} else {
				assertParseError(t, test.input, test.name)
			}
		})
	}
}

func BenchmarkParseSimpleProgram(b *testing.B) {
	input := "VARIABLE X RE;\nX := 1;\nX := X+1;\n"
	for i := 0; i < b.N; i++ {
		parseString(input)
	}
}

func BenchmarkParseLoopProgram(b *testing.B) {
	input := `VARIABLE X RE;
X := 0;
LOOP I 1 100;
X := X+I;
ENDLOOP;
WRITE 6 X;
`
	for i := 0; i < b.N; i++ {
		parseString(input)
	}
}
