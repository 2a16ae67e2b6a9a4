// Package parser builds the syntax tree of the language. It performs no
// semantic checks; names and types are resolved during lowering.
package parser

import (
	"github.com/funvibe/tot/internal/ast"
	"github.com/funvibe/tot/internal/diagnostics"
	"github.com/funvibe/tot/internal/lexer"
	"github.com/funvibe/tot/internal/pipeline"
	"github.com/funvibe/tot/internal/token"
)

type (
	prefixParseFn func() ast.Expression
)

type Parser struct {
	tokens []token.Token
	pos    int

	curToken  token.Token
	peekToken token.Token
	prevToken token.Token

	ctx    *pipeline.PipelineContext
	failed bool

	prefixParseFns map[token.TokenType]prefixParseFn
}

// New creates a parser over a token stream ending in EOF. Errors are
// appended to ctx.
func New(tokens []token.Token, ctx *pipeline.PipelineContext) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		tokens = append(tokens, token.Token{Type: token.EOF})
	}
	p := &Parser{tokens: tokens, ctx: ctx}

	p.prefixParseFns = map[token.TokenType]prefixParseFn{
		token.STRING: p.parseStringLiteral,
		token.INT:    p.parseIntegerLiteral,
		token.FLOAT:  p.parseFloatLiteral,
		token.MINUS:  p.parseNegativeLiteral,
		token.TRUE:   p.parseBooleanLiteral,
		token.FALSE:  p.parseBooleanLiteral,
		token.IDENT:  p.parseIdentifierExpression,
		token.LBRACE: p.parseBlockExpressionFn,
		token.LPAREN: p.parseGroupedExpression,
		token.IF:     p.parseIfExpressionFn,
		token.FOR:    p.parseForExpression,
		token.WHILE:  p.parseWhileExpression,
	}

	p.curToken = p.tokens[0]
	p.peekToken = p.at(1)
	return p
}

func (p *Parser) at(i int) token.Token {
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) nextToken() {
	p.prevToken = p.curToken
	p.pos++
	p.curToken = p.at(p.pos)
	p.peekToken = p.at(p.pos + 1)
}

func (p *Parser) curTokenIs(t token.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.TokenType) bool { return p.peekToken.Type == t }

// expect consumes the current token if it has type t.
func (p *Parser) expect(t token.TokenType, what string) bool {
	if p.curTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errorf(p.curToken, "expected %s, found %s", what, p.curToken)
	return false
}

func (p *Parser) errorf(tok token.Token, format string, args ...any) {
	if p.failed {
		return
	}
	p.failed = true
	p.ctx.AddError(diagnostics.NewAt(diagnostics.KindSyntax, tok.Span, format, args...))
}

// span covers from start to the last consumed token.
func (p *Parser) span(start token.Token) token.Span {
	return start.Span.Cover(p.prevToken.Span)
}

// ParseStatementOnly parses exactly one statement. The final semicolon may
// be omitted at the end of input.
func (p *Parser) ParseStatementOnly() ast.Statement {
	stmt := p.parseTopStatement()
	if stmt == nil {
		return nil
	}
	if !p.curTokenIs(token.EOF) {
		p.errorf(p.curToken, "expected end of input after statement, found %s", p.curToken)
		return nil
	}
	return stmt
}

// ParseProgram parses statements until the end of input.
func (p *Parser) ParseProgram() *ast.Program {
	start := p.curToken
	program := &ast.Program{File: p.ctx.FilePath}
	for !p.curTokenIs(token.EOF) {
		stmt := p.parseTopStatement()
		if stmt == nil {
			return nil
		}
		program.Statements = append(program.Statements, stmt)
	}
	program.Loc = p.span(start)
	return program
}

// ParseFile parses function definitions until the end of input.
func (p *Parser) ParseFile() *ast.File {
	start := p.curToken
	file := &ast.File{Name: p.ctx.FilePath}
	for !p.curTokenIs(token.EOF) {
		if !p.curTokenIs(token.FN) {
			p.errorf(p.curToken, "expected function definition, found %s", p.curToken)
			return nil
		}
		fn := p.parseFuncDef()
		if fn == nil {
			return nil
		}
		file.Functions = append(file.Functions, fn)
	}
	file.Loc = p.span(start)
	return file
}

func parse(source string, mode pipeline.Mode) *pipeline.PipelineContext {
	ctx := pipeline.NewPipelineContext(source, mode)
	return pipeline.New(&lexer.LexerProcessor{}, &ParserProcessor{}).Run(ctx)
}

// ParseStatement parses source holding exactly one statement.
func ParseStatement(source string) (ast.Statement, error) {
	ctx := parse(source, pipeline.ModeStatement)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ctx.AstRoot.(ast.Statement), nil
}

// ParseStatements parses a sequence of statements.
func ParseStatements(source string) (*ast.Program, error) {
	ctx := parse(source, pipeline.ModeStatements)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ctx.AstRoot.(*ast.Program), nil
}

// ParseFile parses a source file of function definitions.
func ParseFile(source string) (*ast.File, error) {
	ctx := parse(source, pipeline.ModeFile)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ctx.AstRoot.(*ast.File), nil
}
