package lexer

import "testing"

func TestScanTokensProducesExpectedTypes(t *testing.T) {
	tokens := NewScanner("VARIABLE X RE; X := 2;", "test.cosy").ScanTokens()
	want := []TokenType{
		TokenVariable, TokenIdent, TokenIdent, TokenSemicolon,
		TokenIdent, TokenAssign, TokenNumber, TokenSemicolon, TokenEOF,
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(want), tokens)
	}
	for i, tok := range tokens {
		if tok.Type != want[i] {
			t.Errorf("token %d: type = %s, want %s", i, tok.Type, want[i])
		}
	}
}

// TestLoneColonIsReportedAsAnError guards against a stray ':' (anything
// but ':=') silently vanishing from the token stream with no diagnostic.
func TestLoneColonIsReportedAsAnError(t *testing.T) {
	s := NewScanner("X : Y", "test.cosy")
	s.ScanTokens()
	errs := s.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected exactly one scan error for a lone ':', got %d: %v", len(errs), errs)
	}
}

// TestUnknownCharacterIsReportedAsAnError covers the same fix applied to
// any character the scanner has no rule for, not just ':'.
func TestUnknownCharacterIsReportedAsAnError(t *testing.T) {
	s := NewScanner("X := 1 @ 2;", "test.cosy")
	s.ScanTokens()
	if len(s.Errors()) != 1 {
		t.Fatalf("expected exactly one scan error for '@', got %d: %v", len(s.Errors()), s.Errors())
	}
}

func TestWellFormedSourceHasNoScanErrors(t *testing.T) {
	s := NewScanner("VARIABLE X RE; X := 2; WRITE 6 X;", "test.cosy")
	s.ScanTokens()
	if errs := s.Errors(); len(errs) != 0 {
		t.Errorf("expected no scan errors, got %v", errs)
	}
}
