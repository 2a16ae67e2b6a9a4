package prettyprinter

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/funvibe/tot/internal/ast"
	"github.com/funvibe/tot/internal/value"
)

// --- Code Printer (Output looks like source code) ---

type CodePrinter struct {
	buf    bytes.Buffer
	indent int
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{}
}

// Format renders node as canonical source.
func Format(node ast.Node) string {
	p := NewCodePrinter()
	node.Accept(p)
	return p.String()
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

func (p *CodePrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("    ")
	}
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
}

func (p *CodePrinter) writeln() {
	p.buf.WriteString("\n")
}

func (p *CodePrinter) accept(n ast.Node) {
	if n == nil {
		p.write("<???>")
		return
	}
	n.Accept(p)
}

// statement prints stmt followed by its terminator.
func (p *CodePrinter) statement(stmt ast.Statement) {
	p.accept(stmt)
	if es, ok := stmt.(*ast.ExpressionStatement); ok && endsInBlock(es.Expression) {
		return
	}
	p.write(";")
}

func endsInBlock(expr ast.Expression) bool {
	switch expr.(type) {
	case *ast.BlockExpression, *ast.IfExpression, *ast.ForExpression, *ast.WhileExpression:
		return true
	}
	return false
}

func (p *CodePrinter) VisitProgram(n *ast.Program) {
	for _, stmt := range n.Statements {
		p.statement(stmt)
		p.writeln()
	}
}

func (p *CodePrinter) VisitFile(n *ast.File) {
	for i, fn := range n.Functions {
		if i > 0 {
			p.writeln()
		}
		p.accept(fn)
		p.writeln()
	}
}

func (p *CodePrinter) VisitFuncDef(n *ast.FuncDef) {
	p.accept(n.Signature)
	p.write(" ")
	p.accept(n.Body)
}

func (p *CodePrinter) VisitFuncSignature(n *ast.FuncSignature) {
	p.write("fn ")
	p.accept(n.Name)
	p.write("(")
	for i, param := range n.Params {
		if i > 0 {
			p.write(", ")
		}
		p.accept(param)
	}
	p.write(")")
	if n.ReturnType != nil {
		p.write(" -> ")
		p.accept(n.ReturnType)
	}
}

func (p *CodePrinter) VisitFuncParam(n *ast.FuncParam) {
	p.accept(n.Name)
	p.write(": ")
	p.accept(n.Type)
}

func (p *CodePrinter) VisitIdentifier(n *ast.Identifier) {
	p.write(n.Value)
}

func (p *CodePrinter) VisitPath(n *ast.Path) {
	p.write(n.Value)
}

func (p *CodePrinter) VisitLiteral(n *ast.Literal) {
	p.write(FormatLiteral(n.Value))
}

// FormatLiteral renders a literal value the way the lexer reads it back.
func FormatLiteral(v value.Value) string {
	switch v := v.(type) {
	case *value.Float:
		s := strconv.FormatFloat(v.Value, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	case nil:
		return "<???>"
	default:
		return v.Inspect()
	}
}

func (p *CodePrinter) VisitReference(n *ast.Reference) {
	p.write(n.Path.String())
}

func (p *CodePrinter) VisitBlockExpression(n *ast.BlockExpression) {
	if len(n.Statements) == 0 && n.Value == nil {
		p.write("{}")
		return
	}
	p.write("{")
	p.writeln()
	p.indent++
	for _, stmt := range n.Statements {
		p.writeIndent()
		p.statement(stmt)
		p.writeln()
	}
	if n.Value != nil {
		p.writeIndent()
		p.accept(n.Value)
		p.writeln()
	}
	p.indent--
	p.writeIndent()
	p.write("}")
}

func (p *CodePrinter) VisitLetStatement(n *ast.LetStatement) {
	p.write("let ")
	p.accept(n.Name)
	p.write(": ")
	p.accept(n.Type)
	p.write(" = ")
	p.accept(n.Value)
}

func (p *CodePrinter) VisitAssignStatement(n *ast.AssignStatement) {
	p.accept(n.Target)
	p.write(" = ")
	p.accept(n.Value)
}

func (p *CodePrinter) VisitReturnStatement(n *ast.ReturnStatement) {
	p.write("return ")
	p.accept(n.Value)
}

func (p *CodePrinter) VisitExpressionStatement(n *ast.ExpressionStatement) {
	p.accept(n.Expression)
}

func (p *CodePrinter) VisitIfExpression(n *ast.IfExpression) {
	p.write("if ")
	p.accept(n.Condition)
	p.write(" ")
	p.accept(n.Consequence)
	if n.Alternative != nil {
		p.write(" else ")
		p.accept(n.Alternative)
	}
}

func (p *CodePrinter) VisitForExpression(n *ast.ForExpression) {
	p.write("for ")
	p.accept(n.Item)
	p.write(" in ")
	p.accept(n.Iterable)
	p.write(" ")
	p.accept(n.Body)
}

func (p *CodePrinter) VisitWhileExpression(n *ast.WhileExpression) {
	p.write("while ")
	p.accept(n.Condition)
	p.write(" ")
	p.accept(n.Body)
}

func (p *CodePrinter) VisitCallExpression(n *ast.CallExpression) {
	p.accept(n.Function)
	p.write("(")
	for i, arg := range n.Arguments {
		if i > 0 {
			p.write(", ")
		}
		p.accept(arg)
	}
	p.write(")")
}

func (p *CodePrinter) VisitConvertExpression(n *ast.ConvertExpression) {
	if endsInBlock(n.Source) {
		p.write("(")
		p.accept(n.Source)
		p.write(")")
	} else {
		p.accept(n.Source)
	}
	p.write(" as ")
	p.accept(n.Target)
}
