package ast

import (
	"github.com/funvibe/tot/internal/token"
)

type NodeKind int

const (
	KindIdent NodeKind = iota
	KindPath
	KindLiteral
	KindReference
	KindBlock
	KindLet
	KindAssign
	KindReturn
	KindExprStmt
	KindProgram
	KindFile
	KindFuncDef
	KindFuncSignature
	KindFuncParam
	KindIf
	KindFor
	KindWhile
	KindCall
	KindConvert
)

var nodeKindNames = [...]string{
	KindIdent:         "Ident",
	KindPath:          "Path",
	KindLiteral:       "Literal",
	KindReference:     "Reference",
	KindBlock:         "Block",
	KindLet:           "Let",
	KindAssign:        "Assign",
	KindReturn:        "Return",
	KindExprStmt:      "ExprStmt",
	KindProgram:       "Program",
	KindFile:          "File",
	KindFuncDef:       "FuncDef",
	KindFuncSignature: "FuncSignature",
	KindFuncParam:     "FuncParam",
	KindIf:            "If",
	KindFor:           "For",
	KindWhile:         "While",
	KindCall:          "Call",
	KindConvert:       "Convert",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return "Unknown"
}

// Node is the base interface for all AST nodes. Nodes own their children
// and are never modified after parsing.
type Node interface {
	TokenLiteral() string
	Accept(v Visitor)
	Kind() NodeKind
	Span() token.Span
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
	GetToken() token.Token
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
	GetToken() token.Token
}

// Visitor walks the tree. Each node calls the method for its own type.
type Visitor interface {
	VisitIdentifier(n *Identifier)
	VisitPath(n *Path)
	VisitLiteral(n *Literal)
	VisitReference(n *Reference)
	VisitBlockExpression(n *BlockExpression)
	VisitLetStatement(n *LetStatement)
	VisitAssignStatement(n *AssignStatement)
	VisitReturnStatement(n *ReturnStatement)
	VisitExpressionStatement(n *ExpressionStatement)
	VisitProgram(n *Program)
	VisitFile(n *File)
	VisitFuncDef(n *FuncDef)
	VisitFuncSignature(n *FuncSignature)
	VisitFuncParam(n *FuncParam)
	VisitIfExpression(n *IfExpression)
	VisitForExpression(n *ForExpression)
	VisitWhileExpression(n *WhileExpression)
	VisitCallExpression(n *CallExpression)
	VisitConvertExpression(n *ConvertExpression)
}

// Program is the root of a sequence of statements.
type Program struct {
	File       string // Source file path
	Statements []Statement
	Loc        token.Span
}

func (p *Program) Accept(v Visitor) { v.VisitProgram(p) }
func (p *Program) Kind() NodeKind   { return KindProgram }
func (p *Program) Span() token.Span { return p.Loc }
func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

// File is the root of a source file of function definitions.
type File struct {
	Name      string // Source file path
	Functions []*FuncDef
	Loc       token.Span
}

func (f *File) Accept(v Visitor) { v.VisitFile(f) }
func (f *File) Kind() NodeKind   { return KindFile }
func (f *File) Span() token.Span { return f.Loc }
func (f *File) TokenLiteral() string {
	if len(f.Functions) > 0 {
		return f.Functions[0].TokenLiteral()
	}
	return ""
}

// Identifier is a bare name.
type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) Accept(v Visitor)      { v.VisitIdentifier(i) }
func (i *Identifier) Kind() NodeKind        { return KindIdent }
func (i *Identifier) Span() token.Span      { return i.Token.Span }
func (i *Identifier) TokenLiteral() string  { return i.Token.Lexeme }
func (i *Identifier) GetToken() token.Token { return i.Token }

// Path is a namespace-qualified name (a::b::C) or a type such as list[i32].
type Path struct {
	Token token.Token // first token
	Value string
	Loc   token.Span
}

func (p *Path) Accept(v Visitor)      { v.VisitPath(p) }
func (p *Path) Kind() NodeKind        { return KindPath }
func (p *Path) Span() token.Span      { return p.Loc }
func (p *Path) TokenLiteral() string  { return p.Token.Lexeme }
func (p *Path) GetToken() token.Token { return p.Token }
func (p *Path) String() string        { return p.Value }
