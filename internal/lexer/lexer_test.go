package lexer

import "testing"

func TestNextTokenBasics(t *testing.T) {
	input := `@UdonBehaviour
class Demo {
  Start(): void {
    let x: number = 1;
    x = x + 1;
  }
}`

	expected := []TokenType{
		DECORATOR, KW_CLASS, IDENT, LBRACE,
		IDENT, LPAREN, RPAREN, COLON, KW_VOID, LBRACE,
		KW_LET, IDENT, COLON, IDENT, ASSIGN, NUMBER, SEMICOLON,
		IDENT, ASSIGN, IDENT, PLUS, NUMBER, SEMICOLON,
		RBRACE,
		RBRACE,
		EOF,
	}

	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("token %d: want %v, got %v (%q) at %s", i, want, tok.Type, tok.Literal, tok.Pos)
		}
	}
}

func TestNextTokenOperators(t *testing.T) {
	input := `=== !== ?? ?. => ** ++ -- <= >= && ||`
	expected := []TokenType{
		STRICT_EQ, STRICT_NOT_EQ, QUESTION_QUESTION, QUESTION_DOT, ARROW,
		STAR_STAR, INCR, DECR, LT_EQ, GT_EQ, AND_AND, OR_OR, EOF,
	}
	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("token %d: want %v, got %v (%q)", i, want, tok.Type, tok.Literal)
		}
	}
}

func TestReadStringEscapes(t *testing.T) {
	l := New(`"a\nb"`)
	tok := l.NextToken()
	if tok.Type != STRING || tok.Literal != "a\nb" {
		t.Fatalf("got %v %q", tok.Type, tok.Literal)
	}
}

func TestTemplateLiteralPreservesPlaceholders(t *testing.T) {
	l := New("`hi ${name}!`")
	tok := l.NextToken()
	if tok.Type != TEMPLATE_STRING {
		t.Fatalf("want TEMPLATE_STRING, got %v", tok.Type)
	}
	if tok.Literal != "hi ${name}!" {
		t.Fatalf("got %q", tok.Literal)
	}
}

func TestDecoratorToken(t *testing.T) {
	l := New("@RecursiveMethod")
	tok := l.NextToken()
	if tok.Type != DECORATOR || tok.Literal != "RecursiveMethod" {
		t.Fatalf("got %v %q", tok.Type, tok.Literal)
	}
}

func TestPositionsTrackLinesAndColumns(t *testing.T) {
	l := New("let x\n= 1;")
	l.NextToken() // let
	tok := l.NextToken() // x
	if tok.Pos.Line != 1 {
		t.Fatalf("expected line 1, got %d", tok.Pos.Line)
	}
	l.NextToken() // =
	tok = l.NextToken() // 1
	if tok.Pos.Line != 2 {
		t.Fatalf("expected line 2, got %d", tok.Pos.Line)
	}
}
