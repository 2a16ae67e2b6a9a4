package vm

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable listing of the program, one
// instruction per line with its index and source line.
func Disassemble(prog *Program, name string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("== %s ==\n", name))

	for i, ins := range prog.Instructions {
		sb.WriteString(fmt.Sprintf("%04d ", i))
		if i > 0 && ins.Span.Line == prog.Instructions[i-1].Span.Line {
			sb.WriteString("   | ")
		} else {
			sb.WriteString(fmt.Sprintf("%4d ", ins.Span.Line))
		}
		sb.WriteString(ins.String())
		if target, ok := jumpTarget(i, ins); ok {
			sb.WriteString(fmt.Sprintf(" -> %04d", target))
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}

// jumpTarget is the index control moves to when the jump is taken.
func jumpTarget(i int, ins Instruction) (int, bool) {
	switch ins.Op {
	case OP_JUMP, OP_JUMP_IF_FALSE, OP_ITER_NEXT:
		return i + 1 + ins.Offset, true
	case OP_LOOP:
		return i + 1 - ins.Offset, true
	}
	return 0, false
}
