package parser

import (
	"strings"

	"github.com/udonc/udonc/internal/ast"
	"github.com/udonc/udonc/internal/lexer"
)

// parseClassDecl parses `class Name [extends Base] [implements I1, I2] { ... }`.
// decorators were already consumed by the caller.
func (p *Parser) parseClassDecl(decorators []*ast.Decorator) ast.Statement {
	tok := p.curToken
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	class := &ast.ClassDecl{Token: tok, Name: p.curToken.Literal, Decorators: decorators, File: p.file}

	if p.peekTokenIs(lexer.KW_EXTENDS) {
		p.nextToken()
		if !p.expectPeek(lexer.IDENT) {
			return class
		}
		class.BaseClass = p.curToken.Literal
	}
	if p.peekTokenIs(lexer.KW_IMPLEMENTS) {
		p.nextToken()
		if !p.expectPeek(lexer.IDENT) {
			return class
		}
		class.Interfaces = append(class.Interfaces, p.curToken.Literal)
		for p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			if !p.expectPeek(lexer.IDENT) {
				return class
			}
			class.Interfaces = append(class.Interfaces, p.curToken.Literal)
		}
	}
	if !p.expectPeek(lexer.LBRACE) {
		return class
	}
	p.nextToken()

	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		p.parseClassMember(class)
		p.nextToken()
	}
	return class
}

// parseClassMember parses one field, property, or method and appends it to
// class. Entry: curToken is the first token of the member (a decorator, a
// modifier, or the member name). Exit: curToken is the member's last token.
func (p *Parser) parseClassMember(class *ast.ClassDecl) {
	decorators := p.parseDecorators()
	isStatic, isPublic, isPrivate, isProtected, isReadonly := p.parseModifiers()

	if !p.curTokenIs(lexer.IDENT) {
		p.errorf(p.curToken.Pos, ErrInvalidStatement, "expected class member, got %v", p.curToken.Type)
		p.synchronize()
		return
	}
	name := p.curToken.Literal

	if p.peekTokenIs(lexer.LPAREN) {
		method := p.parseMethodBody(name, decorators, isStatic, isPublic, isPrivate, isProtected)
		if name == "constructor" {
			class.Constructor = method
		} else {
			class.Methods = append(class.Methods, method)
		}
		return
	}

	field := &ast.FieldDecl{Token: p.curToken, Name: name, Decorators: decorators, IsStatic: isStatic, IsReadonly: isReadonly}
	if p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		p.nextToken()
		field.Type = p.parseTypeExpression()
	}
	if p.peekTokenIs(lexer.ASSIGN) {
		p.nextToken()
		p.nextToken()
		field.Init = p.parseExpression(ASSIGN)
	}
	p.skipOptionalSemicolon()

	if hasSyncDecorator(decorators) {
		class.Properties = append(class.Properties, fieldToProperty(field, decorators))
	} else {
		class.Fields = append(class.Fields, field)
	}
}

func hasSyncDecorator(decorators []*ast.Decorator) bool {
	for _, d := range decorators {
		if strings.EqualFold(d.Name, "UdonSynced") {
			return true
		}
	}
	return false
}

// fieldToProperty promotes a decorated field into a PropertyDecl, reading
// the sync mode from @UdonSynced's argument and any @FieldChangeCallback.
func fieldToProperty(field *ast.FieldDecl, decorators []*ast.Decorator) *ast.PropertyDecl {
	prop := &ast.PropertyDecl{Token: field.Token, Name: field.Name, Type: field.Type, SyncMode: "None"}
	for _, d := range decorators {
		switch {
		case strings.EqualFold(d.Name, "UdonSynced"):
			if len(d.Args) > 0 {
				if lit, ok := d.Args[0].(*ast.Literal); ok {
					prop.SyncMode = lit.Value
				}
			} else {
				prop.SyncMode = "None"
			}
		case strings.EqualFold(d.Name, "FieldChangeCallback"):
			if len(d.Args) > 0 {
				if lit, ok := d.Args[0].(*ast.Literal); ok {
					prop.FieldChangeCallback = lit.Value
				}
			}
		case strings.EqualFold(d.Name, "SerializeField"):
			prop.IsSerializeField = true
		}
	}
	return prop
}

// parseMethodBody parses `name(params): returnType { body }`. Entry:
// curToken is the method name.
func (p *Parser) parseMethodBody(name string, decorators []*ast.Decorator, isStatic, isPublic, isPrivate, isProtected bool) *ast.FunctionDecl {
	tok := p.curToken
	fn := &ast.FunctionDecl{
		Token: tok, Name: name, Decorators: decorators,
		IsStatic: isStatic, IsPublic: isPublic, IsPrivate: isPrivate, IsProtected: isProtected,
	}
	if !p.expectPeek(lexer.LPAREN) {
		return fn
	}
	fn.Params = p.parseParamList()
	if p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		p.nextToken()
		fn.ReturnType = p.parseTypeExpression()
	} else {
		fn.ReturnType = &ast.TypeExpression{Token: tok, Name: "void"}
	}
	if !p.expectPeek(lexer.LBRACE) {
		return fn
	}
	fn.Body = p.parseBlockStatement()
	return fn
}

// parseFunctionDecl parses a free (non-method) function declaration.
func (p *Parser) parseFunctionDecl(decorators []*ast.Decorator, isStatic, isPublic, isPrivate, isProtected bool) ast.Statement {
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	return p.parseMethodBody(p.curToken.Literal, decorators, isStatic, isPublic, isPrivate, isProtected)
}

// parseParamList parses a parenthesized parameter list. Entry: curToken is
// '('. Exit: curToken is ')'.
func (p *Parser) parseParamList() []*ast.ParamDecl {
	var params []*ast.ParamDecl
	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return params
	}
	p.nextToken()
	params = append(params, p.parseOneParam())
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		params = append(params, p.parseOneParam())
	}
	if !p.expectPeek(lexer.RPAREN) {
		return params
	}
	return params
}

func (p *Parser) parseOneParam() *ast.ParamDecl {
	tok := p.curToken
	param := &ast.ParamDecl{Token: tok, Name: p.curToken.Literal}
	if p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		p.nextToken()
		param.Type = p.parseTypeExpression()
	}
	if p.peekTokenIs(lexer.ASSIGN) {
		p.nextToken()
		p.nextToken()
		param.Default = p.parseExpression(ASSIGN)
	}
	return param
}

// parseInterfaceDecl parses `interface Name { methodSig(...): T; prop: T; }`.
func (p *Parser) parseInterfaceDecl() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	iface := &ast.InterfaceDecl{Token: tok, Name: p.curToken.Literal, File: p.file}
	if !p.expectPeek(lexer.LBRACE) {
		return iface
	}
	p.nextToken()
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		if !p.curTokenIs(lexer.IDENT) {
			p.errorf(p.curToken.Pos, ErrInvalidStatement, "expected interface member, got %v", p.curToken.Type)
			p.synchronize()
			p.nextToken()
			continue
		}
		name := p.curToken.Literal
		if p.peekTokenIs(lexer.LPAREN) {
			mtok := p.curToken
			p.nextToken()
			params := p.parseParamList()
			sig := &ast.FunctionDecl{Token: mtok, Name: name, Params: params}
			if p.peekTokenIs(lexer.COLON) {
				p.nextToken()
				p.nextToken()
				sig.ReturnType = p.parseTypeExpression()
			} else {
				sig.ReturnType = &ast.TypeExpression{Token: mtok, Name: "void"}
			}
			p.skipOptionalSemicolon()
			iface.Methods = append(iface.Methods, sig)
		} else {
			ptok := p.curToken
			prop := &ast.PropertyDecl{Token: ptok, Name: name}
			if p.peekTokenIs(lexer.COLON) {
				p.nextToken()
				p.nextToken()
				prop.Type = p.parseTypeExpression()
			}
			p.skipOptionalSemicolon()
			iface.Properties = append(iface.Properties, prop)
		}
		p.nextToken()
	}
	return iface
}

// parseEnumDecl parses `enum Name { A, B = 2, C }` (numeric) or an
// all-string enum `enum Name { A = "a", B = "b" }`.
func (p *Parser) parseEnumDecl() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	enum := &ast.EnumDecl{Token: tok, Name: p.curToken.Literal, File: p.file}
	if !p.expectPeek(lexer.LBRACE) {
		return enum
	}
	p.nextToken()
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		if !p.curTokenIs(lexer.IDENT) {
			p.errorf(p.curToken.Pos, ErrInvalidStatement, "expected enum member, got %v", p.curToken.Type)
			break
		}
		member := ast.EnumMember{Name: p.curToken.Literal}
		if p.peekTokenIs(lexer.ASSIGN) {
			p.nextToken()
			p.nextToken()
			member.Value = p.parseExpression(ASSIGN)
		}
		enum.Members = append(enum.Members, member)
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	if p.curTokenIs(lexer.RBRACE) {
		return enum // a trailing comma already advanced onto the closing brace
	}
	if !p.expectPeek(lexer.RBRACE) {
		return enum
	}
	return enum
}
