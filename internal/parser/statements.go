package parser

import (
	"github.com/funvibe/tot/internal/ast"
	"github.com/funvibe/tot/internal/token"
)

// parseTopStatement parses a statement outside of any block. The
// terminating semicolon is optional at the end of input and after
// block-like expressions.
func (p *Parser) parseTopStatement() ast.Statement {
	start := p.curToken
	stmt := p.parseStatementBody()
	if stmt == nil {
		return nil
	}
	switch {
	case p.curTokenIs(token.SEMICOLON):
		p.nextToken()
	case p.curTokenIs(token.EOF):
	case isBlockLike(stmt):
	default:
		p.errorf(p.curToken, "expected ';', found %s", p.curToken)
		return nil
	}
	return withSpan(stmt, p.span(start))
}

// parseStatementBody parses a statement up to, not including, its
// terminator.
func (p *Parser) parseStatementBody() ast.Statement {
	switch p.curToken.Type {
	case token.LET:
		return p.parseLetStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	}

	start := p.curToken
	expr := p.parseExpression()
	if expr == nil {
		return nil
	}
	if p.curTokenIs(token.ASSIGN) {
		return p.parseAssignStatement(start, expr)
	}
	return &ast.ExpressionStatement{Token: start, Expression: expr, Loc: p.span(start)}
}

func (p *Parser) parseLetStatement() ast.Statement {
	stmt := &ast.LetStatement{Token: p.curToken}
	p.nextToken()

	if !p.curTokenIs(token.IDENT) {
		p.errorf(p.curToken, "expected variable name after 'let', found %s", p.curToken)
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	p.nextToken()

	if !p.expect(token.COLON, "':' and a type after the variable name") {
		return nil
	}
	if stmt.Type = p.parseTypePath(); stmt.Type == nil {
		return nil
	}
	if !p.expect(token.ASSIGN, "'='") {
		return nil
	}
	if stmt.Value = p.parseExpression(); stmt.Value == nil {
		return nil
	}
	stmt.Loc = p.span(stmt.Token)
	return stmt
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}
	p.nextToken()
	if stmt.Value = p.parseExpression(); stmt.Value == nil {
		return nil
	}
	stmt.Loc = p.span(stmt.Token)
	return stmt
}

func (p *Parser) parseAssignStatement(start token.Token, target ast.Expression) ast.Statement {
	ref, ok := target.(*ast.Reference)
	if !ok {
		p.errorf(p.curToken, "left side of '=' must be a variable, field or index")
		return nil
	}
	stmt := &ast.AssignStatement{Token: p.curToken, Target: ref}
	p.nextToken()
	if stmt.Value = p.parseExpression(); stmt.Value == nil {
		return nil
	}
	stmt.Loc = p.span(start)
	return stmt
}

// parseBlockExpression parses { statement* expression? }.
func (p *Parser) parseBlockExpression() *ast.BlockExpression {
	block := &ast.BlockExpression{Token: p.curToken}
	if !p.expect(token.LBRACE, "'{'") {
		return nil
	}

	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.errorf(p.curToken, "expected '}', found %s", p.curToken)
			return nil
		}

		start := p.curToken
		stmt := p.parseStatementBody()
		if stmt == nil {
			return nil
		}

		if es, ok := stmt.(*ast.ExpressionStatement); ok && p.curTokenIs(token.RBRACE) {
			block.Value = es.Expression
			break
		}
		switch {
		case p.curTokenIs(token.SEMICOLON):
			p.nextToken()
		case p.curTokenIs(token.RBRACE), isBlockLike(stmt):
		default:
			p.errorf(p.curToken, "expected ';' or '}', found %s", p.curToken)
			return nil
		}
		block.Statements = append(block.Statements, withSpan(stmt, p.span(start)))
	}

	p.nextToken() // '}'
	block.Loc = p.span(block.Token)
	return block
}

func (p *Parser) parseFuncDef() *ast.FuncDef {
	fn := &ast.FuncDef{Token: p.curToken}
	if fn.Signature = p.parseFuncSignature(); fn.Signature == nil {
		return nil
	}
	if fn.Body = p.parseBlockExpression(); fn.Body == nil {
		return nil
	}
	fn.Loc = p.span(fn.Token)
	return fn
}

func (p *Parser) parseFuncSignature() *ast.FuncSignature {
	sig := &ast.FuncSignature{Token: p.curToken}
	p.nextToken() // 'fn'

	if !p.curTokenIs(token.IDENT) {
		p.errorf(p.curToken, "expected function name, found %s", p.curToken)
		return nil
	}
	sig.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	p.nextToken()

	if !p.expect(token.LPAREN, "'('") {
		return nil
	}
	for !p.curTokenIs(token.RPAREN) {
		param := p.parseFuncParam()
		if param == nil {
			return nil
		}
		sig.Params = append(sig.Params, param)
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if !p.curTokenIs(token.RPAREN) {
			p.errorf(p.curToken, "expected ',' or ')', found %s", p.curToken)
			return nil
		}
	}
	p.nextToken() // ')'

	if p.curTokenIs(token.ARROW) {
		p.nextToken()
		if sig.ReturnType = p.parseTypePath(); sig.ReturnType == nil {
			return nil
		}
	}
	sig.Loc = p.span(sig.Token)
	return sig
}

func (p *Parser) parseFuncParam() *ast.FuncParam {
	if !p.curTokenIs(token.IDENT) {
		p.errorf(p.curToken, "expected parameter name, found %s", p.curToken)
		return nil
	}
	param := &ast.FuncParam{Token: p.curToken}
	param.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	p.nextToken()
	if !p.expect(token.COLON, "':' after parameter name") {
		return nil
	}
	if param.Type = p.parseTypePath(); param.Type == nil {
		return nil
	}
	param.Loc = p.span(param.Token)
	return param
}

// isBlockLike reports whether stmt is an expression ending in a block, which
// may stand as a statement without a semicolon.
func isBlockLike(stmt ast.Statement) bool {
	es, ok := stmt.(*ast.ExpressionStatement)
	if !ok {
		return false
	}
	switch es.Expression.(type) {
	case *ast.BlockExpression, *ast.IfExpression, *ast.ForExpression, *ast.WhileExpression:
		return true
	}
	return false
}

// withSpan extends the span of stmt to include its terminator.
func withSpan(stmt ast.Statement, span token.Span) ast.Statement {
	switch s := stmt.(type) {
	case *ast.LetStatement:
		s.Loc = span
	case *ast.AssignStatement:
		s.Loc = span
	case *ast.ReturnStatement:
		s.Loc = span
	case *ast.ExpressionStatement:
		s.Loc = span
	}
	return stmt
}
