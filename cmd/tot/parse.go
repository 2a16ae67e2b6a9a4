package main

import (
	"fmt"

	"github.com/funvibe/tot/internal/ast"
	"github.com/funvibe/tot/internal/parser"
	"github.com/funvibe/tot/internal/prettyprinter"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:     "parse <file>",
	Short:   "Print the syntax tree of a source file",
	GroupID: "source",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defs, _ := cmd.Flags().GetBool("defs")
		node, err := parseSource(args[0], defs)
		if err != nil {
			return err
		}
		printer := prettyprinter.NewTreePrinter()
		if noSpans, _ := cmd.Flags().GetBool("no-spans"); noSpans {
			printer = printer.WithoutSpans()
		}
		node.Accept(printer)
		fmt.Fprint(cmd.OutOrStdout(), printer.String())
		return nil
	},
}

var fmtCmd = &cobra.Command{
	Use:     "fmt <file>",
	Short:   "Print a source file in canonical form",
	GroupID: "source",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defs, _ := cmd.Flags().GetBool("defs")
		node, err := parseSource(args[0], defs)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), prettyprinter.Format(node))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{parseCmd, fmtCmd} {
		c.Flags().Bool("defs", false, "parse function definitions instead of statements")
	}
	parseCmd.Flags().Bool("no-spans", false, "omit source locations")
}

// parseSource parses a file of statements, or of function definitions when
// defs is set.
func parseSource(path string, defs bool) (ast.Node, error) {
	src, err := readSource(path)
	if err != nil {
		return nil, err
	}
	if defs {
		file, err := parser.ParseFile(src)
		if err != nil {
			return nil, located(err, path)
		}
		file.Name = path
		return file, nil
	}
	prog, err := parser.ParseStatements(src)
	if err != nil {
		return nil, located(err, path)
	}
	prog.File = path
	return prog, nil
}
