package ast

import (
	"github.com/funvibe/tot/internal/token"
	"github.com/funvibe/tot/internal/value"
)

// Literal is a string, integer, float or boolean constant.
type Literal struct {
	Token token.Token
	Value value.Value
	Loc   token.Span
}

func (l *Literal) Accept(v Visitor)      { v.VisitLiteral(l) }
func (l *Literal) Kind() NodeKind        { return KindLiteral }
func (l *Literal) Span() token.Span      { return l.Loc }
func (l *Literal) expressionNode()       {}
func (l *Literal) TokenLiteral() string  { return l.Token.Lexeme }
func (l *Literal) GetToken() token.Token { return l.Token }

// Reference names a variable, optionally followed by fields and indices:
// x, x.field, x.list[0].name.
type Reference struct {
	Token token.Token
	Path  value.Path
	Loc   token.Span
}

func (r *Reference) Accept(v Visitor)      { v.VisitReference(r) }
func (r *Reference) Kind() NodeKind        { return KindReference }
func (r *Reference) Span() token.Span      { return r.Loc }
func (r *Reference) expressionNode()       {}
func (r *Reference) TokenLiteral() string  { return r.Token.Lexeme }
func (r *Reference) GetToken() token.Token { return r.Token }
func (r *Reference) String() string        { return r.Path.String() }

// BlockExpression is { statements; trailing }. Value is the trailing
// expression without a semicolon, or nil.
type BlockExpression struct {
	Token      token.Token // The '{' token
	Statements []Statement
	Value      Expression
	Loc        token.Span
}

func (b *BlockExpression) Accept(v Visitor)      { v.VisitBlockExpression(b) }
func (b *BlockExpression) Kind() NodeKind        { return KindBlock }
func (b *BlockExpression) Span() token.Span      { return b.Loc }
func (b *BlockExpression) expressionNode()       {}
func (b *BlockExpression) TokenLiteral() string  { return b.Token.Lexeme }
func (b *BlockExpression) GetToken() token.Token { return b.Token }

// IfExpression is if cond { } else { }. Alternative is a *BlockExpression,
// an *IfExpression for else-if chains, or nil.
type IfExpression struct {
	Token       token.Token // The 'if' token
	Condition   Expression
	Consequence *BlockExpression
	Alternative Expression
	Loc         token.Span
}

func (ie *IfExpression) Accept(v Visitor)      { v.VisitIfExpression(ie) }
func (ie *IfExpression) Kind() NodeKind        { return KindIf }
func (ie *IfExpression) Span() token.Span      { return ie.Loc }
func (ie *IfExpression) expressionNode()       {}
func (ie *IfExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *IfExpression) GetToken() token.Token { return ie.Token }

// ForExpression is for item in iterable { }.
type ForExpression struct {
	Token    token.Token // The 'for' token
	Item     *Identifier
	Iterable Expression
	Body     *BlockExpression
	Loc      token.Span
}

func (fe *ForExpression) Accept(v Visitor)      { v.VisitForExpression(fe) }
func (fe *ForExpression) Kind() NodeKind        { return KindFor }
func (fe *ForExpression) Span() token.Span      { return fe.Loc }
func (fe *ForExpression) expressionNode()       {}
func (fe *ForExpression) TokenLiteral() string  { return fe.Token.Lexeme }
func (fe *ForExpression) GetToken() token.Token { return fe.Token }

type WhileExpression struct {
	Token     token.Token // The 'while' token
	Condition Expression
	Body      *BlockExpression
	Loc       token.Span
}

func (we *WhileExpression) Accept(v Visitor)      { v.VisitWhileExpression(we) }
func (we *WhileExpression) Kind() NodeKind        { return KindWhile }
func (we *WhileExpression) Span() token.Span      { return we.Loc }
func (we *WhileExpression) expressionNode()       {}
func (we *WhileExpression) TokenLiteral() string  { return we.Token.Lexeme }
func (we *WhileExpression) GetToken() token.Token { return we.Token }

// CallExpression invokes a host function by path: json(s), ns::f(a, b).
type CallExpression struct {
	Token     token.Token
	Function  *Path
	Arguments []Expression
	Loc       token.Span
}

func (ce *CallExpression) Accept(v Visitor)      { v.VisitCallExpression(ce) }
func (ce *CallExpression) Kind() NodeKind        { return KindCall }
func (ce *CallExpression) Span() token.Span      { return ce.Loc }
func (ce *CallExpression) expressionNode()       {}
func (ce *CallExpression) TokenLiteral() string  { return ce.Token.Lexeme }
func (ce *CallExpression) GetToken() token.Token { return ce.Token }

// ConvertExpression is expr as Type.
type ConvertExpression struct {
	Token  token.Token // The 'as' token
	Source Expression
	Target *Path
	Loc    token.Span
}

func (ce *ConvertExpression) Accept(v Visitor)      { v.VisitConvertExpression(ce) }
func (ce *ConvertExpression) Kind() NodeKind        { return KindConvert }
func (ce *ConvertExpression) Span() token.Span      { return ce.Loc }
func (ce *ConvertExpression) expressionNode()       {}
func (ce *ConvertExpression) TokenLiteral() string  { return ce.Token.Lexeme }
func (ce *ConvertExpression) GetToken() token.Token { return ce.Token }
