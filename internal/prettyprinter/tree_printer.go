package prettyprinter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/funvibe/tot/internal/ast"
)

// --- Tree Printer (Output shows the node structure) ---

// TreePrinter dumps one node per line, indented by depth:
//
//	Let x: i32 @1:1
//	  Literal 1 @1:14
type TreePrinter struct {
	buf   bytes.Buffer
	depth int
	spans bool
}

func NewTreePrinter() *TreePrinter {
	return &TreePrinter{spans: true}
}

// WithoutSpans disables the trailing @line:column of each node.
func (p *TreePrinter) WithoutSpans() *TreePrinter {
	p.spans = false
	return p
}

// Dump returns the tree of node without spans.
func Dump(node ast.Node) string {
	p := NewTreePrinter().WithoutSpans()
	node.Accept(p)
	return p.String()
}

func (p *TreePrinter) String() string {
	return p.buf.String()
}

func (p *TreePrinter) line(n ast.Node, format string, args ...any) {
	p.buf.WriteString(strings.Repeat("  ", p.depth))
	p.buf.WriteString(n.Kind().String())
	if format != "" {
		p.buf.WriteString(" ")
		fmt.Fprintf(&p.buf, format, args...)
	}
	if p.spans {
		fmt.Fprintf(&p.buf, " @%s", n.Span())
	}
	p.buf.WriteString("\n")
}

func (p *TreePrinter) children(nodes ...ast.Node) {
	p.depth++
	for _, n := range nodes {
		if n != nil {
			n.Accept(p)
		}
	}
	p.depth--
}

func (p *TreePrinter) VisitIdentifier(n *ast.Identifier) { p.line(n, "%s", n.Value) }
func (p *TreePrinter) VisitPath(n *ast.Path)             { p.line(n, "%s", n.Value) }
func (p *TreePrinter) VisitLiteral(n *ast.Literal)       { p.line(n, "%s", FormatLiteral(n.Value)) }
func (p *TreePrinter) VisitReference(n *ast.Reference)   { p.line(n, "%s", n.Path) }

func (p *TreePrinter) VisitBlockExpression(n *ast.BlockExpression) {
	p.line(n, "")
	p.depth++
	for _, stmt := range n.Statements {
		stmt.Accept(p)
	}
	if n.Value != nil {
		n.Value.Accept(p)
	}
	p.depth--
}

func (p *TreePrinter) VisitLetStatement(n *ast.LetStatement) {
	p.line(n, "%s: %s", n.Name.Value, n.Type.Value)
	p.children(n.Value)
}

func (p *TreePrinter) VisitAssignStatement(n *ast.AssignStatement) {
	p.line(n, "%s", n.Target.Path)
	p.children(n.Value)
}

func (p *TreePrinter) VisitReturnStatement(n *ast.ReturnStatement) {
	p.line(n, "")
	p.children(n.Value)
}

func (p *TreePrinter) VisitExpressionStatement(n *ast.ExpressionStatement) {
	p.line(n, "")
	p.children(n.Expression)
}

func (p *TreePrinter) VisitProgram(n *ast.Program) {
	p.line(n, "")
	p.depth++
	for _, stmt := range n.Statements {
		stmt.Accept(p)
	}
	p.depth--
}

func (p *TreePrinter) VisitFile(n *ast.File) {
	p.line(n, "%s", n.Name)
	p.depth++
	for _, fn := range n.Functions {
		fn.Accept(p)
	}
	p.depth--
}

func (p *TreePrinter) VisitFuncDef(n *ast.FuncDef) {
	p.line(n, "")
	p.children(n.Signature, n.Body)
}

func (p *TreePrinter) VisitFuncSignature(n *ast.FuncSignature) {
	if n.ReturnType != nil {
		p.line(n, "%s -> %s", n.Name.Value, n.ReturnType.Value)
	} else {
		p.line(n, "%s", n.Name.Value)
	}
	p.depth++
	for _, param := range n.Params {
		param.Accept(p)
	}
	p.depth--
}

func (p *TreePrinter) VisitFuncParam(n *ast.FuncParam) {
	p.line(n, "%s: %s", n.Name.Value, n.Type.Value)
}

func (p *TreePrinter) VisitIfExpression(n *ast.IfExpression) {
	p.line(n, "")
	p.children(n.Condition, n.Consequence)
	if n.Alternative != nil {
		p.children(n.Alternative)
	}
}

func (p *TreePrinter) VisitForExpression(n *ast.ForExpression) {
	p.line(n, "%s", n.Item.Value)
	p.children(n.Iterable, n.Body)
}

func (p *TreePrinter) VisitWhileExpression(n *ast.WhileExpression) {
	p.line(n, "")
	p.children(n.Condition, n.Body)
}

func (p *TreePrinter) VisitCallExpression(n *ast.CallExpression) {
	p.line(n, "%s", n.Function.Value)
	p.depth++
	for _, arg := range n.Arguments {
		arg.Accept(p)
	}
	p.depth--
}

func (p *TreePrinter) VisitConvertExpression(n *ast.ConvertExpression) {
	p.line(n, "%s", n.Target.Value)
	p.children(n.Source)
}
