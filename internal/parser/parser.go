// Package parser implements a recursive-descent, Pratt-style parser that
// turns a token stream from internal/lexer into the reduced internal/ast
// tree. Parse errors are collected rather than panicked on, so a single
// source file can report every syntax problem it contains in one pass.
package parser

import (
	"fmt"

	"github.com/udonc/udonc/internal/ast"
	"github.com/udonc/udonc/internal/lexer"
)

// Precedence levels, lowest to highest.
const (
	_ int = iota
	LOWEST
	ASSIGN      // = += -= *= /=
	TERNARY     // ?:
	COALESCE    // ??
	OR          // ||
	AND         // &&
	EQUALS      // == != === !==
	RELATIONAL  // < > <= >= in instanceof
	SUM         // + -
	PRODUCT     // * / %
	POWER       // **
	PREFIX      // -x !x typeof x delete x ++x --x
	CALL        // f(args)
	INDEX       // a[i]
	MEMBER      // a.b a?.b
)

var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN:            ASSIGN,
	lexer.PLUS_ASSIGN:       ASSIGN,
	lexer.MINUS_ASSIGN:      ASSIGN,
	lexer.STAR_ASSIGN:       ASSIGN,
	lexer.SLASH_ASSIGN:      ASSIGN,
	lexer.QUESTION:          TERNARY,
	lexer.QUESTION_QUESTION: COALESCE,
	lexer.OR_OR:             OR,
	lexer.AND_AND:           AND,
	lexer.EQ:                EQUALS,
	lexer.NOT_EQ:            EQUALS,
	lexer.STRICT_EQ:         EQUALS,
	lexer.STRICT_NOT_EQ:     EQUALS,
	lexer.LT:                RELATIONAL,
	lexer.GT:                RELATIONAL,
	lexer.LT_EQ:             RELATIONAL,
	lexer.GT_EQ:             RELATIONAL,
	lexer.KW_IN:             RELATIONAL,
	lexer.KW_INSTANCEOF:     RELATIONAL,
	lexer.PLUS:              SUM,
	lexer.MINUS:             SUM,
	lexer.STAR:              PRODUCT,
	lexer.SLASH:             PRODUCT,
	lexer.PERCENT:           PRODUCT,
	lexer.STAR_STAR:         POWER,
	lexer.LPAREN:            CALL,
	lexer.LBRACKET:          INDEX,
	lexer.DOT:               MEMBER,
	lexer.QUESTION_DOT:      MEMBER,
}

type prefixParseFn func() ast.Expression
type infixParseFn func(ast.Expression) ast.Expression

// Parser consumes a token stream and produces an *ast.Program.
type Parser struct {
	l *lexer.Lexer

	curToken  lexer.Token
	peekToken lexer.Token

	errors []*ParseError

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn

	file string
}

// New creates a Parser reading tokens from l. file is attached to every
// top-level declaration for per-file diagnostics and registry bookkeeping.
func New(l *lexer.Lexer, file string) *Parser {
	p := &Parser{l: l, file: file}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.TEMPLATE_STRING, p.parseTemplateLiteral)
	p.registerPrefix(lexer.KW_TRUE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.KW_FALSE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.KW_NULL, p.parseNullLiteral)
	p.registerPrefix(lexer.BANG, p.parsePrefixExpression)
	p.registerPrefix(lexer.MINUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.PLUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.TILDE, p.parsePrefixExpression)
	p.registerPrefix(lexer.INCR, p.parsePrefixExpression)
	p.registerPrefix(lexer.DECR, p.parsePrefixExpression)
	p.registerPrefix(lexer.KW_TYPEOF, p.parseTypeOfExpression)
	p.registerPrefix(lexer.KW_DELETE, p.parseDeleteExpression)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(lexer.LBRACKET, p.parseArrayLiteral)
	p.registerPrefix(lexer.LBRACE, p.parseObjectLiteral)
	p.registerPrefix(lexer.KW_NEW, p.parseNewExpression)
	p.registerPrefix(lexer.KW_THIS, p.parseThisExpression)
	p.registerPrefix(lexer.KW_SUPER, p.parseSuperExpression)

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	for _, t := range []lexer.TokenType{
		lexer.PLUS, lexer.MINUS, lexer.STAR, lexer.SLASH, lexer.PERCENT, lexer.STAR_STAR,
		lexer.EQ, lexer.NOT_EQ, lexer.STRICT_EQ, lexer.STRICT_NOT_EQ,
		lexer.LT, lexer.GT, lexer.LT_EQ, lexer.GT_EQ,
	} {
		p.registerInfix(t, p.parseBinaryExpression)
	}
	p.registerInfix(lexer.AND_AND, p.parseLogicalExpression)
	p.registerInfix(lexer.OR_OR, p.parseLogicalExpression)
	p.registerInfix(lexer.QUESTION_QUESTION, p.parseNullCoalesceExpression)
	p.registerInfix(lexer.QUESTION, p.parseTernaryExpression)
	p.registerInfix(lexer.KW_IN, p.parseInExpression)
	p.registerInfix(lexer.KW_INSTANCEOF, p.parseInstanceOfExpression)
	p.registerInfix(lexer.LPAREN, p.parseCallExpression)
	p.registerInfix(lexer.LBRACKET, p.parseIndexExpression)
	p.registerInfix(lexer.DOT, p.parseMemberExpression)
	p.registerInfix(lexer.QUESTION_DOT, p.parseMemberExpression)

	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns every syntax error accumulated during parsing.
func (p *Parser) Errors() []*ParseError { return p.errors }

func (p *Parser) registerPrefix(t lexer.TokenType, fn prefixParseFn) { p.prefixParseFns[t] = fn }
func (p *Parser) registerInfix(t lexer.TokenType, fn infixParseFn)   { p.infixParseFns[t] = fn }

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t lexer.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return LOWEST
}

// expectPeek advances past peekToken if it matches t, else records an error.
func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t lexer.TokenType) {
	p.errorf(p.peekToken.Pos, ErrUnexpectedToken, "expected next token to be %v, got %v instead", t, p.peekToken.Type)
}

func (p *Parser) errorf(pos lexer.Position, code, format string, args ...interface{}) {
	p.errors = append(p.errors, &ParseError{Pos: pos, Code: code, Message: fmt.Sprintf(format, args...)})
}

// ParseProgram parses the whole token stream into a Program node.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{File: p.file}
	for !p.curTokenIs(lexer.EOF) {
		stmt := p.parseTopLevelStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}
	return program
}

// synchronize skips tokens until a likely statement boundary, so one
// syntax error doesn't cascade into a wall of follow-on errors.
func (p *Parser) synchronize() {
	for !p.curTokenIs(lexer.EOF) {
		if p.curTokenIs(lexer.SEMICOLON) {
			return
		}
		switch p.peekToken.Type {
		case lexer.KW_CLASS, lexer.KW_INTERFACE, lexer.KW_ENUM, lexer.KW_CONST, lexer.KW_LET,
			lexer.KW_FUNCTION, lexer.KW_IF, lexer.KW_FOR, lexer.KW_WHILE, lexer.KW_RETURN:
			return
		}
		p.nextToken()
	}
}
