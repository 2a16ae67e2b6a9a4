package ast

import (
	"github.com/funvibe/tot/internal/token"
)

// LetStatement is let name: Type = value;
type LetStatement struct {
	Token token.Token // The 'let' token
	Name  *Identifier
	Type  *Path
	Value Expression
	Loc   token.Span
}

func (ls *LetStatement) Accept(v Visitor)      { v.VisitLetStatement(ls) }
func (ls *LetStatement) Kind() NodeKind        { return KindLet }
func (ls *LetStatement) Span() token.Span      { return ls.Loc }
func (ls *LetStatement) statementNode()        {}
func (ls *LetStatement) TokenLiteral() string  { return ls.Token.Lexeme }
func (ls *LetStatement) GetToken() token.Token { return ls.Token }

// AssignStatement is target = value; where target may reach into fields
// and indices of an existing variable.
type AssignStatement struct {
	Token  token.Token // The '=' token
	Target *Reference
	Value  Expression
	Loc    token.Span
}

func (as *AssignStatement) Accept(v Visitor)      { v.VisitAssignStatement(as) }
func (as *AssignStatement) Kind() NodeKind        { return KindAssign }
func (as *AssignStatement) Span() token.Span      { return as.Loc }
func (as *AssignStatement) statementNode()        {}
func (as *AssignStatement) TokenLiteral() string  { return as.Token.Lexeme }
func (as *AssignStatement) GetToken() token.Token { return as.Token }

type ReturnStatement struct {
	Token token.Token // The 'return' token
	Value Expression
	Loc   token.Span
}

func (rs *ReturnStatement) Accept(v Visitor)      { v.VisitReturnStatement(rs) }
func (rs *ReturnStatement) Kind() NodeKind        { return KindReturn }
func (rs *ReturnStatement) Span() token.Span      { return rs.Loc }
func (rs *ReturnStatement) statementNode()        {}
func (rs *ReturnStatement) TokenLiteral() string  { return rs.Token.Lexeme }
func (rs *ReturnStatement) GetToken() token.Token { return rs.Token }

// ExpressionStatement is an expression followed by a semicolon.
type ExpressionStatement struct {
	Token      token.Token // the first token of the expression
	Expression Expression
	Loc        token.Span
}

func (es *ExpressionStatement) Accept(v Visitor)      { v.VisitExpressionStatement(es) }
func (es *ExpressionStatement) Kind() NodeKind        { return KindExprStmt }
func (es *ExpressionStatement) Span() token.Span      { return es.Loc }
func (es *ExpressionStatement) statementNode()        {}
func (es *ExpressionStatement) TokenLiteral() string  { return es.Token.Lexeme }
func (es *ExpressionStatement) GetToken() token.Token { return es.Token }

// FuncDef is fn name(params) -> Type { body }.
type FuncDef struct {
	Token     token.Token // The 'fn' token
	Signature *FuncSignature
	Body      *BlockExpression
	Loc       token.Span
}

func (fd *FuncDef) Accept(v Visitor)      { v.VisitFuncDef(fd) }
func (fd *FuncDef) Kind() NodeKind        { return KindFuncDef }
func (fd *FuncDef) Span() token.Span      { return fd.Loc }
func (fd *FuncDef) statementNode()        {}
func (fd *FuncDef) TokenLiteral() string  { return fd.Token.Lexeme }
func (fd *FuncDef) GetToken() token.Token { return fd.Token }

type FuncSignature struct {
	Token      token.Token
	Name       *Identifier
	Params     []*FuncParam
	ReturnType *Path // nil when the function returns nothing
	Loc        token.Span
}

func (fs *FuncSignature) Accept(v Visitor)     { v.VisitFuncSignature(fs) }
func (fs *FuncSignature) Kind() NodeKind       { return KindFuncSignature }
func (fs *FuncSignature) Span() token.Span     { return fs.Loc }
func (fs *FuncSignature) TokenLiteral() string { return fs.Token.Lexeme }

type FuncParam struct {
	Token token.Token
	Name  *Identifier
	Type  *Path
	Loc   token.Span
}

func (fp *FuncParam) Accept(v Visitor)     { v.VisitFuncParam(fp) }
func (fp *FuncParam) Kind() NodeKind       { return KindFuncParam }
func (fp *FuncParam) Span() token.Span     { return fp.Loc }
func (fp *FuncParam) TokenLiteral() string { return fp.Token.Lexeme }
