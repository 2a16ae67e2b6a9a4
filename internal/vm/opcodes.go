// Package vm lowers syntax trees into linear instruction sequences and
// executes them against a stack of scopes.
package vm

import (
	"strconv"
	"strings"

	"github.com/funvibe/tot/internal/convert"
	"github.com/funvibe/tot/internal/token"
	"github.com/funvibe/tot/internal/value"
)

// Opcode represents a single VM instruction
type Opcode byte

const (
	// Variables
	OP_DECLARE Opcode = iota // No effect at run time
	OP_STORE                 // Bind the register in the innermost scope and clear it
	OP_LOAD                  // Set the register from a value or a reference
	OP_ASSIGN                // Write the register through a reference path and clear it

	// Scopes
	OP_ENTER_SCOPE
	OP_EXIT_SCOPE

	// External calls and conversion
	OP_CALL    // Call(path, args); the only suspension point
	OP_CONVERT // Convert the register to a type

	// Control flow
	OP_RETURN
	OP_JUMP_IF_FALSE // Skip Offset instructions if the register is false
	OP_JUMP          // Skip Offset instructions
	OP_LOOP          // Jump back Offset instructions, counted from the next one

	// Iteration
	OP_ITER      // Replace a list in the register by an iterator over it
	OP_ITER_NEXT // Load the next item of the iterator bound to Name, or skip Offset when done
)

// OpcodeNames maps opcodes to their names for disassembly and errors
var OpcodeNames = map[Opcode]string{
	OP_DECLARE:       "Declare",
	OP_STORE:         "Store",
	OP_LOAD:          "Load",
	OP_ASSIGN:        "Assign",
	OP_ENTER_SCOPE:   "EnterScope",
	OP_EXIT_SCOPE:    "ExitScope",
	OP_CALL:          "Call",
	OP_CONVERT:       "Convert",
	OP_RETURN:        "Return",
	OP_JUMP_IF_FALSE: "JumpIfFalse",
	OP_JUMP:          "Jump",
	OP_LOOP:          "Loop",
	OP_ITER:          "Iter",
	OP_ITER_NEXT:     "IterNext",
}

func (op Opcode) String() string {
	if name, ok := OpcodeNames[op]; ok {
		return name
	}
	return "Unknown"
}

// Operand is what Load puts in the register: either a literal value or the
// value found at a reference path.
type Operand struct {
	Value value.Value
	Ref   value.Path
}

func (o Operand) IsRef() bool { return o.Ref != nil }

func (o Operand) String() string {
	if o.IsRef() {
		return "Reference(" + o.Ref.String() + ")"
	}
	if o.Value == nil {
		return "Value(<nil>)"
	}
	return "Value(" + o.Value.Inspect() + ")"
}

// Instruction is one step of a program. Which fields are set depends on Op.
type Instruction struct {
	Op Opcode

	Name    string       // Declare, Store, IterNext: variable; Call: function path
	Type    string       // Declare: declared type; Convert: target type
	From    string       // Convert: source type as inferred during lowering
	Operand Operand      // Load
	Target  value.Path   // Assign
	Args    []value.Path // Call: argument references
	Offset  int          // Jumps and loops

	// Plan is the conversion decided during lowering. It is nil when the
	// program was lowered without a registry; the machine then plans the
	// conversion when it runs.
	Plan *convert.Plan

	Span token.Span
}

func Declare(name, typePath string) Instruction {
	return Instruction{Op: OP_DECLARE, Name: name, Type: typePath}
}

func Store(name string) Instruction {
	return Instruction{Op: OP_STORE, Name: name}
}

func LoadValue(v value.Value) Instruction {
	return Instruction{Op: OP_LOAD, Operand: Operand{Value: v}}
}

func LoadRef(p value.Path) Instruction {
	return Instruction{Op: OP_LOAD, Operand: Operand{Ref: p}}
}

func Assign(p value.Path) Instruction {
	return Instruction{Op: OP_ASSIGN, Target: p}
}

func EnterScope() Instruction {
	return Instruction{Op: OP_ENTER_SCOPE}
}

func ExitScope() Instruction {
	return Instruction{Op: OP_EXIT_SCOPE}
}

func Call(path string, args ...value.Path) Instruction {
	return Instruction{Op: OP_CALL, Name: path, Args: args}
}

func Convert(from, to string) Instruction {
	return Instruction{Op: OP_CONVERT, From: from, Type: to}
}

func Return() Instruction {
	return Instruction{Op: OP_RETURN}
}

func JumpIfFalse(n int) Instruction {
	return Instruction{Op: OP_JUMP_IF_FALSE, Offset: n}
}

func Jump(n int) Instruction {
	return Instruction{Op: OP_JUMP, Offset: n}
}

func Loop(n int) Instruction {
	return Instruction{Op: OP_LOOP, Offset: n}
}

func Iter() Instruction {
	return Instruction{Op: OP_ITER}
}

func IterNext(name string, n int) Instruction {
	return Instruction{Op: OP_ITER_NEXT, Name: name, Offset: n}
}

// String renders the instruction the way the disassembler prints it.
func (ins Instruction) String() string {
	var sb strings.Builder
	sb.WriteString(ins.Op.String())
	switch ins.Op {
	case OP_DECLARE:
		sb.WriteString("(" + ins.Name + ", " + ins.Type + ")")
	case OP_STORE:
		sb.WriteString("(" + ins.Name + ")")
	case OP_LOAD:
		sb.WriteString("(" + ins.Operand.String() + ")")
	case OP_ASSIGN:
		sb.WriteString("(" + ins.Target.String() + ")")
	case OP_CALL:
		args := make([]string, len(ins.Args))
		for i, a := range ins.Args {
			args[i] = a.String()
		}
		sb.WriteString("(" + ins.Name + ", [" + strings.Join(args, ", ") + "])")
	case OP_CONVERT:
		sb.WriteString("(" + ins.From + " -> " + ins.Type + ")")
	case OP_JUMP_IF_FALSE, OP_JUMP, OP_LOOP:
		sb.WriteString("(" + strconv.Itoa(ins.Offset) + ")")
	case OP_ITER_NEXT:
		sb.WriteString("(" + ins.Name + ", " + strconv.Itoa(ins.Offset) + ")")
	}
	return sb.String()
}
