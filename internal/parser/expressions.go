package parser

import (
	"strconv"
	"strings"

	"github.com/udonc/udonc/internal/ast"
	"github.com/udonc/udonc/internal/lexer"
)

// parseExpression is the Pratt-parsing entry point: it resolves a prefix
// parser for curToken, then repeatedly folds in infix operators whose
// precedence exceeds the caller's minimum.
func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.errorf(p.curToken.Pos, ErrNoPrefixParse, "no prefix parse function for %v found", p.curToken.Type)
		return nil
	}
	left := prefix()

	for !p.peekTokenIs(lexer.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	lit := p.curToken.Literal
	kind := ast.LitNumber
	if strings.HasSuffix(lit, "n") {
		kind = ast.LitBigInt
	}
	return &ast.Literal{Token: p.curToken, Kind: kind, Value: lit}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.Literal{Token: p.curToken, Kind: ast.LitString, Value: p.curToken.Literal}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.Literal{Token: p.curToken, Kind: ast.LitBoolean, Value: p.curToken.Literal}
}

func (p *Parser) parseNullLiteral() ast.Expression {
	return &ast.Literal{Token: p.curToken, Kind: ast.LitNull, Value: "null"}
}

// parseTemplateLiteral re-lexes each `${...}` splice out of the raw
// TEMPLATE_STRING literal the lexer handed back verbatim.
func (p *Parser) parseTemplateLiteral() ast.Expression {
	tok := p.curToken
	raw := tok.Literal
	tl := &ast.TemplateLiteral{Token: tok}

	var text strings.Builder
	i := 0
	for i < len(raw) {
		if raw[i] == '$' && i+1 < len(raw) && raw[i+1] == '{' {
			if text.Len() > 0 {
				tl.Parts = append(tl.Parts, ast.TemplatePart{Text: text.String()})
				text.Reset()
			}
			depth := 1
			j := i + 2
			for j < len(raw) && depth > 0 {
				switch raw[j] {
				case '{':
					depth++
				case '}':
					depth--
				}
				if depth == 0 {
					break
				}
				j++
			}
			exprSrc := raw[i+2 : j]
			sub := New(lexer.New(exprSrc), p.file)
			expr := sub.parseExpression(LOWEST)
			for _, e := range sub.Errors() {
				p.errors = append(p.errors, e)
			}
			if expr != nil {
				tl.Parts = append(tl.Parts, ast.TemplatePart{Expr: expr})
			}
			i = j + 1
			continue
		}
		text.WriteByte(raw[i])
		i++
	}
	if text.Len() > 0 {
		tl.Parts = append(tl.Parts, ast.TemplatePart{Text: text.String()})
	}
	return tl
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	tok := p.curToken
	op := tok.Literal
	p.nextToken()
	operand := p.parseExpression(PREFIX)
	return &ast.UnaryExpr{Token: tok, Op: op, Operand: operand}
}

func (p *Parser) parseTypeOfExpression() ast.Expression {
	tok := p.curToken
	p.nextToken()
	operand := p.parseExpression(PREFIX)
	return &ast.TypeOfExpr{Token: tok, Operand: operand}
}

func (p *Parser) parseDeleteExpression() ast.Expression {
	tok := p.curToken
	p.nextToken()
	target := p.parseExpression(PREFIX)
	return &ast.DeleteExpr{Token: tok, Target: target}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return expr
	}
	return expr
}

func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	op := tok.Literal
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	return &ast.BinaryExpr{Token: tok, Left: left, Op: op, Right: right}
}

func (p *Parser) parseLogicalExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	op := tok.Literal
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	return &ast.LogicalExpr{Token: tok, Left: left, Op: op, Right: right}
}

func (p *Parser) parseNullCoalesceExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	return &ast.NullCoalesceExpr{Token: tok, Left: left, Right: right}
}

func (p *Parser) parseTernaryExpression(cond ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	then := p.parseExpression(ASSIGN)
	if !p.expectPeek(lexer.COLON) {
		return &ast.TernaryExpr{Token: tok, Condition: cond, Then: then}
	}
	p.nextToken()
	alt := p.parseExpression(ASSIGN)
	return &ast.TernaryExpr{Token: tok, Condition: cond, Then: then, Else: alt}
}

func (p *Parser) parseInExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	return &ast.InExpr{Token: tok, Key: left, Dict: right}
}

func (p *Parser) parseInstanceOfExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	if !p.expectPeek(lexer.IDENT) {
		return left
	}
	return &ast.InstanceOfExpr{Token: tok, Operand: left, TypeName: p.curToken.Literal}
}

func (p *Parser) parseCallExpression(callee ast.Expression) ast.Expression {
	tok := p.curToken
	args := p.parseExpressionList(lexer.RPAREN)
	return &ast.CallExpr{Token: tok, Callee: callee, Args: args}
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	index := p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RBRACKET) {
		return &ast.IndexExpr{Token: tok, Array: left, Index: index}
	}
	return &ast.IndexExpr{Token: tok, Array: left, Index: index}
}

func (p *Parser) parseMemberExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	optional := tok.Type == lexer.QUESTION_DOT
	if !p.expectPeek(lexer.IDENT) {
		return left
	}
	return &ast.MemberExpr{Token: tok, Receiver: left, Property: p.curToken.Literal, Optional: optional}
}

func (p *Parser) parseNewExpression() ast.Expression {
	tok := p.curToken
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	name := p.curToken.Literal
	// Skip an optional generic argument list, e.g. `new List<number>()`.
	if p.peekTokenIs(lexer.LT) {
		p.nextToken()
		depth := 1
		for depth > 0 && !p.curTokenIs(lexer.EOF) {
			p.nextToken()
			switch p.curToken.Type {
			case lexer.LT:
				depth++
			case lexer.GT:
				depth--
			}
		}
	}
	if !p.expectPeek(lexer.LPAREN) {
		return &ast.NewExpr{Token: tok, ClassName: name}
	}
	args := p.parseExpressionList(lexer.RPAREN)
	return &ast.NewExpr{Token: tok, ClassName: name, Args: args}
}

func (p *Parser) parseThisExpression() ast.Expression {
	return &ast.ThisExpr{Token: p.curToken}
}

func (p *Parser) parseSuperExpression() ast.Expression {
	return &ast.SuperExpr{Token: p.curToken}
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	tok := p.curToken
	lit := &ast.ArrayLiteral{Token: tok}
	if p.peekTokenIs(lexer.RBRACKET) {
		p.nextToken()
		return lit
	}
	p.nextToken()
	lit.Elements = append(lit.Elements, p.parseArrayElement())
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		if p.curTokenIs(lexer.RBRACKET) {
			break
		}
		lit.Elements = append(lit.Elements, p.parseArrayElement())
	}
	if !p.expectPeek(lexer.RBRACKET) {
		return lit
	}
	return lit
}

func (p *Parser) parseArrayElement() ast.ArrayLiteralElement {
	if p.curTokenIs(lexer.SPREAD) {
		p.nextToken()
		return ast.ArrayLiteralElement{Expr: p.parseExpression(ASSIGN), IsSpread: true}
	}
	return ast.ArrayLiteralElement{Expr: p.parseExpression(ASSIGN)}
}

func (p *Parser) parseObjectLiteral() ast.Expression {
	tok := p.curToken
	lit := &ast.ObjectLiteral{Token: tok}
	if p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()
		return lit
	}
	p.nextToken()
	lit.Properties = append(lit.Properties, p.parseObjectProperty())
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		if p.curTokenIs(lexer.RBRACE) {
			break
		}
		lit.Properties = append(lit.Properties, p.parseObjectProperty())
	}
	if !p.expectPeek(lexer.RBRACE) {
		return lit
	}
	return lit
}

func (p *Parser) parseObjectProperty() ast.ObjectProperty {
	if p.curTokenIs(lexer.SPREAD) {
		p.nextToken()
		return ast.ObjectProperty{IsSpread: true, Spread: p.parseExpression(ASSIGN)}
	}
	key := p.curToken.Literal
	if !p.expectPeek(lexer.COLON) {
		return ast.ObjectProperty{Key: key}
	}
	p.nextToken()
	return ast.ObjectProperty{Key: key, Value: p.parseExpression(ASSIGN)}
}

// parseExpressionList parses a comma-separated expression list up to and
// including end. Entry: curToken is the opening delimiter.
func (p *Parser) parseExpressionList(end lexer.TokenType) []ast.Expression {
	var list []ast.Expression
	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}
	p.nextToken()
	list = append(list, p.parseExpression(ASSIGN))
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(ASSIGN))
	}
	if !p.expectPeek(end) {
		return list
	}
	return list
}

// parseNumberValue is a convenience used by enum/const folding elsewhere;
// kept here since it's purely lexical interpretation of a NUMBER literal.
func parseNumberValue(lit string) (float64, error) {
	lit = strings.TrimSuffix(lit, "n")
	if strings.HasPrefix(lit, "0x") || strings.HasPrefix(lit, "0X") {
		n, err := strconv.ParseInt(lit[2:], 16, 64)
		return float64(n), err
	}
	return strconv.ParseFloat(lit, 64)
}
