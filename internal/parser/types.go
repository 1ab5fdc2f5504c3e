package parser

import (
	"github.com/udonc/udonc/internal/ast"
	"github.com/udonc/udonc/internal/lexer"
)

// parseTypeExpression parses a type annotation: a name, optional generic
// argument list (`Array<number>`, `Dictionary<string, number>`), and any
// number of trailing `[]` array-dimension suffixes. Entry: curToken is the
// first token of the type. Exit: curToken is the last token consumed.
func (p *Parser) parseTypeExpression() *ast.TypeExpression {
	tok := p.curToken
	if !p.isIdentifierLike(p.curToken.Type) {
		p.errorf(p.curToken.Pos, ErrInvalidType, "expected type name, got %v", p.curToken.Type)
		return &ast.TypeExpression{Token: tok, Name: "any"}
	}
	name := p.curToken.Literal
	te := &ast.TypeExpression{Token: tok, Name: name}

	if p.peekTokenIs(lexer.LT) {
		p.nextToken() // consume '<'
		p.nextToken()
		te.TypeArgs = append(te.TypeArgs, p.parseTypeExpression())
		for p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
			te.TypeArgs = append(te.TypeArgs, p.parseTypeExpression())
		}
		if !p.expectPeek(lexer.GT) {
			return te
		}
		if len(te.TypeArgs) > 0 {
			te.ElemType = te.TypeArgs[0]
		}
	}

	for p.peekTokenIs(lexer.LBRACKET) {
		p.nextToken()
		if !p.expectPeek(lexer.RBRACKET) {
			break
		}
		te.ArrayDims++
	}

	return te
}

func (p *Parser) isIdentifierLike(t lexer.TokenType) bool {
	switch t {
	case lexer.IDENT, lexer.KW_VOID:
		return true
	default:
		return false
	}
}
