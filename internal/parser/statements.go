package parser

import (
	"github.com/udonc/udonc/internal/ast"
	"github.com/udonc/udonc/internal/lexer"
)

// parseTopLevelStatement parses one file-scope declaration: a decorated or
// bare class, an interface, an enum, a top-level const, or (rare, but legal
// in the surface grammar) a free function.
func (p *Parser) parseTopLevelStatement() ast.Statement {
	decorators := p.parseDecorators()

	switch p.curToken.Type {
	case lexer.KW_CLASS:
		return p.parseClassDecl(decorators)
	case lexer.KW_INTERFACE:
		return p.parseInterfaceDecl()
	case lexer.KW_ENUM:
		return p.parseEnumDecl()
	case lexer.KW_CONST:
		return p.parseConstDecl()
	case lexer.KW_FUNCTION:
		return p.parseFunctionDecl(decorators, false, false, false, false)
	case lexer.SEMICOLON:
		return nil
	default:
		stmt := p.parseStatement()
		if stmt == nil {
			p.synchronize()
		}
		return stmt
	}
}

// parseDecorators consumes zero or more `@Name(args...)` annotations,
// leaving curToken on the token that follows the last one.
func (p *Parser) parseDecorators() []*ast.Decorator {
	var decorators []*ast.Decorator
	for p.curTokenIs(lexer.DECORATOR) {
		d := &ast.Decorator{Token: p.curToken, Name: p.curToken.Literal}
		if p.peekTokenIs(lexer.LPAREN) {
			p.nextToken()
			d.Args = p.parseExpressionList(lexer.RPAREN)
		}
		decorators = append(decorators, d)
		p.nextToken()
	}
	return decorators
}

// parseModifiers consumes any of public/private/protected/static/readonly
// in any order, returning once a non-modifier token is reached.
func (p *Parser) parseModifiers() (isStatic, isPublic, isPrivate, isProtected, isReadonly bool) {
	for {
		switch p.curToken.Type {
		case lexer.KW_STATIC:
			isStatic = true
		case lexer.KW_PUBLIC:
			isPublic = true
		case lexer.KW_PRIVATE:
			isPrivate = true
		case lexer.KW_PROTECTED:
			isProtected = true
		case lexer.KW_READONLY:
			isReadonly = true
		default:
			return
		}
		p.nextToken()
	}
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case lexer.LBRACE:
		return p.parseBlockStatement()
	case lexer.KW_LET:
		return p.parseVarDeclStatement()
	case lexer.KW_CONST:
		return p.parseConstDecl()
	case lexer.KW_IF:
		return p.parseIfStatement()
	case lexer.KW_WHILE:
		return p.parseWhileStatement()
	case lexer.KW_DO:
		return p.parseDoWhileStatement()
	case lexer.KW_FOR:
		return p.parseForStatement()
	case lexer.KW_SWITCH:
		return p.parseSwitchStatement()
	case lexer.KW_BREAK:
		stmt := &ast.BreakStatement{Token: p.curToken}
		p.skipOptionalSemicolon()
		return stmt
	case lexer.KW_CONTINUE:
		stmt := &ast.ContinueStatement{Token: p.curToken}
		p.skipOptionalSemicolon()
		return stmt
	case lexer.KW_RETURN:
		return p.parseReturnStatement()
	case lexer.KW_TRY:
		return p.parseTryStatement()
	case lexer.KW_THROW:
		return p.parseThrowStatement()
	default:
		return p.parseExpressionOrAssignmentStatement()
	}
}

func (p *Parser) skipOptionalSemicolon() {
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	p.nextToken()
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}
	return block
}

func (p *Parser) parseVarDeclStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	name := p.curToken.Literal
	v := &ast.VarDecl{Token: tok, Name: name}
	if p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		p.nextToken()
		v.Type = p.parseTypeExpression()
	}
	if p.peekTokenIs(lexer.ASSIGN) {
		p.nextToken()
		p.nextToken()
		v.Value = p.parseExpression(ASSIGN)
	}
	p.skipOptionalSemicolon()
	return v
}

func (p *Parser) parseConstDecl() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	name := p.curToken.Literal
	c := &ast.ConstDecl{Token: tok, Name: name, File: p.file}
	if p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		p.nextToken()
		c.Type = p.parseTypeExpression()
	}
	if !p.expectPeek(lexer.ASSIGN) {
		return c
	}
	p.nextToken()
	c.Value = p.parseExpression(ASSIGN)
	p.skipOptionalSemicolon()
	return c
}

func (p *Parser) parseIfStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	then := p.parseBlockStatement()
	stmt := &ast.IfStatement{Token: tok, Condition: cond, Then: then}

	if p.peekTokenIs(lexer.KW_ELSE) {
		p.nextToken()
		if p.peekTokenIs(lexer.KW_IF) {
			p.nextToken()
			stmt.Else = p.parseIfStatement()
		} else if p.expectPeek(lexer.LBRACE) {
			stmt.Else = p.parseBlockStatement()
		}
	}
	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlockStatement()
	return &ast.WhileStatement{Token: tok, Condition: cond, Body: body}
}

func (p *Parser) parseDoWhileStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlockStatement()
	if !p.expectPeek(lexer.KW_WHILE) {
		return nil
	}
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	p.skipOptionalSemicolon()
	return &ast.DoWhileStatement{Token: tok, Body: body, Condition: cond}
}

// parseForStatement handles both the classic C-style for and for-of,
// disambiguating on whether `of` follows the loop variable.
func (p *Parser) parseForStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}

	if p.peekTokenIs(lexer.KW_LET) {
		save := p.curToken
		p.nextToken() // consume '('
		p.nextToken() // consume 'let'
		name := p.curToken.Literal
		var varType *ast.TypeExpression
		if p.peekTokenIs(lexer.COLON) {
			p.nextToken()
			p.nextToken()
			varType = p.parseTypeExpression()
		}
		if p.peekTokenIs(lexer.KW_OF) {
			p.nextToken() // consume 'of'
			p.nextToken()
			iterable := p.parseExpression(LOWEST)
			if !p.expectPeek(lexer.RPAREN) {
				return nil
			}
			if !p.expectPeek(lexer.LBRACE) {
				return nil
			}
			body := p.parseBlockStatement()
			return &ast.ForOfStatement{Token: tok, VarName: name, VarType: varType, Iterable: iterable, Body: body}
		}
		// Not a for-of: fall through to classic for, re-synthesizing the
		// VarDecl init clause we already partially consumed.
		init := &ast.VarDecl{Token: save, Name: name, Type: varType}
		if p.peekTokenIs(lexer.ASSIGN) {
			p.nextToken()
			p.nextToken()
			init.Value = p.parseExpression(ASSIGN)
		}
		return p.finishClassicForStatement(tok, init)
	}

	p.nextToken() // consume '('
	var init ast.Statement
	if !p.curTokenIs(lexer.SEMICOLON) {
		init = p.parseExpressionOrAssignmentStatement()
	}
	return p.finishClassicForStatement(tok, init)
}

// finishClassicForStatement parses the `; cond; post) body` tail of a
// C-style for loop. Entry: curToken is the last token of init (or ';').
func (p *Parser) finishClassicForStatement(tok lexer.Token, init ast.Statement) ast.Statement {
	if !p.curTokenIs(lexer.SEMICOLON) {
		if !p.expectPeek(lexer.SEMICOLON) {
			return nil
		}
	}
	var cond ast.Expression
	if !p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
		cond = p.parseExpression(LOWEST)
	}
	if !p.expectPeek(lexer.SEMICOLON) {
		return nil
	}
	var post ast.Statement
	if !p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		post = p.parseExpressionOrAssignmentStatement()
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlockStatement()
	return &ast.ForStatement{Token: tok, Init: init, Condition: cond, Post: post, Body: body}
}

func (p *Parser) parseSwitchStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	scrutinee := p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	stmt := &ast.SwitchStatement{Token: tok, Scrutinee: scrutinee}
	p.nextToken()
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		c := ast.SwitchCase{}
		if p.curTokenIs(lexer.KW_DEFAULT) {
			c.IsDefault = true
			if !p.expectPeek(lexer.COLON) {
				return stmt
			}
		} else if p.curTokenIs(lexer.KW_CASE) {
			p.nextToken()
			c.Values = append(c.Values, p.parseExpression(LOWEST))
			if !p.expectPeek(lexer.COLON) {
				return stmt
			}
		} else {
			p.errorf(p.curToken.Pos, ErrInvalidStatement, "expected case or default, got %v", p.curToken.Type)
			return stmt
		}
		p.nextToken()
		for !p.curTokenIs(lexer.KW_CASE) && !p.curTokenIs(lexer.KW_DEFAULT) &&
			!p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
			s := p.parseStatement()
			if s != nil {
				c.Body = append(c.Body, s)
			}
			p.nextToken()
		}
		stmt.Cases = append(stmt.Cases, c)
	}
	return stmt
}

func (p *Parser) parseReturnStatement() ast.Statement {
	tok := p.curToken
	stmt := &ast.ReturnStatement{Token: tok}
	if !p.peekTokenIs(lexer.SEMICOLON) && !p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()
		stmt.Value = p.parseExpression(LOWEST)
	}
	p.skipOptionalSemicolon()
	return stmt
}

func (p *Parser) parseThrowStatement() ast.Statement {
	tok := p.curToken
	p.nextToken()
	value := p.parseExpression(LOWEST)
	p.skipOptionalSemicolon()
	return &ast.ThrowStatement{Token: tok, Value: value}
}

func (p *Parser) parseTryStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlockStatement()
	stmt := &ast.TryStatement{Token: tok, Body: body}

	if p.peekTokenIs(lexer.KW_CATCH) {
		p.nextToken()
		cc := &ast.CatchClause{}
		if p.peekTokenIs(lexer.LPAREN) {
			p.nextToken()
			if !p.expectPeek(lexer.IDENT) {
				return stmt
			}
			cc.VarName = p.curToken.Literal
			if p.peekTokenIs(lexer.COLON) {
				p.nextToken()
				p.nextToken()
				cc.VarType = p.parseTypeExpression()
			}
			if !p.expectPeek(lexer.RPAREN) {
				return stmt
			}
		}
		if !p.expectPeek(lexer.LBRACE) {
			return stmt
		}
		cc.Body = p.parseBlockStatement()
		stmt.Catch = cc
	}
	if p.peekTokenIs(lexer.KW_FINALLY) {
		p.nextToken()
		if !p.expectPeek(lexer.LBRACE) {
			return stmt
		}
		stmt.Finally = p.parseBlockStatement()
	}
	return stmt
}

// parseExpressionOrAssignmentStatement parses one expression and, if an
// assignment operator follows, folds it into an AssignmentStatement.
func (p *Parser) parseExpressionOrAssignmentStatement() ast.Statement {
	tok := p.curToken
	expr := p.parseExpression(LOWEST)

	if op, ok := assignOps[p.peekToken.Type]; ok {
		p.nextToken()
		p.nextToken()
		value := p.parseExpression(ASSIGN)
		p.skipOptionalSemicolon()
		return &ast.AssignmentStatement{Token: tok, Target: expr, Op: op, Value: value}
	}

	p.skipOptionalSemicolon()
	return &ast.ExpressionStatement{Token: tok, Expr: expr}
}

var assignOps = map[lexer.TokenType]string{
	lexer.ASSIGN:       "",
	lexer.PLUS_ASSIGN:  "+",
	lexer.MINUS_ASSIGN: "-",
	lexer.STAR_ASSIGN:  "*",
	lexer.SLASH_ASSIGN: "/",
}
