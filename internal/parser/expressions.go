package parser

import (
	"strconv"

	"github.com/funvibe/tot/internal/ast"
	"github.com/funvibe/tot/internal/config"
	"github.com/funvibe/tot/internal/token"
	"github.com/funvibe/tot/internal/value"
)

// parseExpression parses a primary expression followed by any number of
// "as Type" conversions.
func (p *Parser) parseExpression() ast.Expression {
	start := p.curToken
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	left := prefix()
	if left == nil {
		return nil
	}

	for p.curTokenIs(token.AS) {
		conv := &ast.ConvertExpression{Token: p.curToken, Source: left}
		p.nextToken()
		if conv.Target = p.parseTypePath(); conv.Target == nil {
			return nil
		}
		conv.Loc = p.span(start)
		left = conv
	}
	return left
}

func (p *Parser) noPrefixParseFnError(tok token.Token) {
	switch tok.Type {
	case token.ILLEGAL:
		if len(tok.Lexeme) > 0 && tok.Lexeme[0] == '"' {
			p.errorf(tok, "unterminated string literal")
			return
		}
		p.errorf(tok, "unexpected character %s", tok)
	case token.EOF:
		p.errorf(tok, "expected expression, found end of input")
	default:
		p.errorf(tok, "expected expression, found %s", tok)
	}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	tok := p.curToken
	s, err := strconv.Unquote(tok.Lexeme)
	if err != nil {
		p.errorf(tok, "invalid string literal %s", tok.Lexeme)
		return nil
	}
	p.nextToken()
	return &ast.Literal{Token: tok, Value: &value.String{Value: s}, Loc: tok.Span}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	return p.numberLiteral(p.curToken, p.curToken.Lexeme)
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	return p.numberLiteral(p.curToken, p.curToken.Lexeme)
}

// parseNegativeLiteral handles a minus sign directly before a number.
func (p *Parser) parseNegativeLiteral() ast.Expression {
	minus := p.curToken
	if !p.peekTokenIs(token.INT) && !p.peekTokenIs(token.FLOAT) {
		p.errorf(p.peekToken, "expected number after '-', found %s", p.peekToken)
		return nil
	}
	p.nextToken()
	return p.numberLiteral(minus, "-"+p.curToken.Lexeme)
}

func (p *Parser) numberLiteral(start token.Token, text string) ast.Expression {
	tok := p.curToken
	lit := &ast.Literal{Token: start}
	if tok.Type == token.INT {
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			p.errorf(tok, "integer literal %s out of range", text)
			return nil
		}
		lit.Value = &value.Int{Value: i}
	} else {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			p.errorf(tok, "invalid float literal %s", text)
			return nil
		}
		lit.Value = &value.Float{Value: f}
	}
	p.nextToken()
	lit.Loc = p.span(start)
	return lit
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	tok := p.curToken
	p.nextToken()
	return &ast.Literal{Token: tok, Value: value.NativeBool(tok.Type == token.TRUE), Loc: tok.Span}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken() // '('
	expr := p.parseExpression()
	if expr == nil {
		return nil
	}
	if !p.expect(token.RPAREN, "')'") {
		return nil
	}
	return expr
}

// parseIdentifierExpression parses a call when the name is followed by '('
// or '::', and a reference otherwise.
func (p *Parser) parseIdentifierExpression() ast.Expression {
	if p.peekTokenIs(token.LPAREN) || p.peekTokenIs(token.DCOLON) {
		return p.parseCallExpression()
	}
	return p.parseReference()
}

func (p *Parser) parseReference() ast.Expression {
	ref := &ast.Reference{Token: p.curToken, Path: value.NewPath(p.curToken.Lexeme)}
	p.nextToken()

	for {
		switch {
		case p.curTokenIs(token.DOT):
			p.nextToken()
			if !p.curTokenIs(token.IDENT) {
				p.errorf(p.curToken, "expected field name after '.', found %s", p.curToken)
				return nil
			}
			ref.Path = append(ref.Path, value.Key(p.curToken.Lexeme))
			p.nextToken()
		case p.curTokenIs(token.LBRACKET):
			p.nextToken()
			if !p.curTokenIs(token.INT) {
				p.errorf(p.curToken, "expected index, found %s", p.curToken)
				return nil
			}
			idx, err := strconv.Atoi(p.curToken.Lexeme)
			if err != nil {
				p.errorf(p.curToken, "index %s out of range", p.curToken.Lexeme)
				return nil
			}
			ref.Path = append(ref.Path, value.Index(idx))
			p.nextToken()
			if !p.expect(token.RBRACKET, "']'") {
				return nil
			}
		default:
			ref.Loc = p.span(ref.Token)
			return ref
		}
	}
}

func (p *Parser) parseCallExpression() ast.Expression {
	call := &ast.CallExpression{Token: p.curToken}
	if call.Function = p.parseNamePath(); call.Function == nil {
		return nil
	}
	if !p.expect(token.LPAREN, "'(' after function name") {
		return nil
	}
	for !p.curTokenIs(token.RPAREN) {
		arg := p.parseExpression()
		if arg == nil {
			return nil
		}
		call.Arguments = append(call.Arguments, arg)
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
	call.Loc = p.span(call.Token)
	return call
}

// parseNamePath parses ident (:: ident)*.
func (p *Parser) parseNamePath() *ast.Path {
	path := &ast.Path{Token: p.curToken}
	if !p.curTokenIs(token.IDENT) {
		p.errorf(p.curToken, "expected name, found %s", p.curToken)
		return nil
	}
	path.Value = p.curToken.Lexeme
	p.nextToken()
	for p.curTokenIs(token.DCOLON) {
		p.nextToken()
		if !p.curTokenIs(token.IDENT) {
			p.errorf(p.curToken, "expected name after '::', found %s", p.curToken)
			return nil
		}
		path.Value += config.NamespaceSeparator + p.curToken.Lexeme
		p.nextToken()
	}
	path.Loc = p.span(path.Token)
	return path
}

// parseTypePath parses a type: a name path, or list[T] / map[T].
func (p *Parser) parseTypePath() *ast.Path {
	if p.curTokenIs(token.IDENT) && p.peekTokenIs(token.LBRACKET) &&
		(p.curToken.Lexeme == config.ListTypeName || p.curToken.Lexeme == config.MapTypeName) {
		path := &ast.Path{Token: p.curToken}
		name := p.curToken.Lexeme
		p.nextToken() // name
		p.nextToken() // '['
		inner := p.parseTypePath()
		if inner == nil {
			return nil
		}
		if !p.expect(token.RBRACKET, "']'") {
			return nil
		}
		path.Value = name + "[" + inner.Value + "]"
		path.Loc = p.span(path.Token)
		return path
	}
	return p.parseNamePath()
}

func (p *Parser) parseBlockExpressionFn() ast.Expression {
	block := p.parseBlockExpression()
	if block == nil {
		return nil
	}
	return block
}

func (p *Parser) parseIfExpressionFn() ast.Expression {
	ie := p.parseIfExpression()
	if ie == nil {
		return nil
	}
	return ie
}

func (p *Parser) parseIfExpression() *ast.IfExpression {
	ie := &ast.IfExpression{Token: p.curToken}
	p.nextToken() // 'if'

	if ie.Condition = p.parseExpression(); ie.Condition == nil {
		return nil
	}
	if ie.Consequence = p.parseBlockExpression(); ie.Consequence == nil {
		return nil
	}

	if p.curTokenIs(token.ELSE) {
		p.nextToken()
		if p.curTokenIs(token.IF) {
			alt := p.parseIfExpression()
			if alt == nil {
				return nil
			}
			ie.Alternative = alt
		} else {
			alt := p.parseBlockExpression()
			if alt == nil {
				return nil
			}
			ie.Alternative = alt
		}
	}
	ie.Loc = p.span(ie.Token)
	return ie
}

func (p *Parser) parseForExpression() ast.Expression {
	fe := &ast.ForExpression{Token: p.curToken}
	p.nextToken() // 'for'

	if !p.curTokenIs(token.IDENT) {
		p.errorf(p.curToken, "expected loop variable, found %s", p.curToken)
		return nil
	}
	fe.Item = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	p.nextToken()

	if !p.expect(token.IN, "'in'") {
		return nil
	}
	if fe.Iterable = p.parseExpression(); fe.Iterable == nil {
		return nil
	}
	if fe.Body = p.parseBlockExpression(); fe.Body == nil {
		return nil
	}
	fe.Loc = p.span(fe.Token)
	return fe
}

func (p *Parser) parseWhileExpression() ast.Expression {
	we := &ast.WhileExpression{Token: p.curToken}
	p.nextToken() // 'while'

	if we.Condition = p.parseExpression(); we.Condition == nil {
		return nil
	}
	if we.Body = p.parseBlockExpression(); we.Body == nil {
		return nil
	}
	we.Loc = p.span(we.Token)
	return we
}
