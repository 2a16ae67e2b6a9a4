package main

import (
	"fmt"

	"github.com/funvibe/tot/internal/host"
	"github.com/funvibe/tot/internal/parser"
	"github.com/funvibe/tot/internal/vm"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:     "run <file>",
	Short:   "Execute a script of statements",
	GroupID: "source",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := readSource(args[0])
		if err != nil {
			return err
		}
		reg, err := loadRegistry(cmd.Context())
		if err != nil {
			return err
		}

		machine := vm.New(host.Builtins(cmd.OutOrStdout()), vm.WithRegistry(reg), vm.WithLogger(logger))
		logger.Debug("running script", "file", args[0], "vm", machine.ID())
		result, err := machine.EvalScript(cmd.Context(), src)
		if err != nil {
			return located(err, args[0])
		}
		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet && printable(result) {
			fmt.Fprintln(cmd.OutOrStdout(), host.Display(result))
		}
		return nil
	},
}

var lowerCmd = &cobra.Command{
	Use:     "lower <file>",
	Short:   "Print the instructions a script lowers to",
	GroupID: "source",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := readSource(args[0])
		if err != nil {
			return err
		}
		reg, err := loadRegistry(cmd.Context())
		if err != nil {
			return err
		}
		prog, err := parser.ParseStatements(src)
		if err != nil {
			return located(err, args[0])
		}
		code, err := vm.NewCompiler(reg, nil).Compile(prog)
		if err != nil {
			return located(err, args[0])
		}
		fmt.Fprint(cmd.OutOrStdout(), vm.Disassemble(code, args[0]))
		return nil
	},
}

func init() {
	runCmd.Flags().BoolP("quiet", "q", false, "do not print the value of the last statement")
}
