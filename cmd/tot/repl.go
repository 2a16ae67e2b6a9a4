package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/funvibe/tot/internal/diagnostics"
	"github.com/funvibe/tot/internal/host"
	"github.com/funvibe/tot/internal/parser"
	"github.com/funvibe/tot/internal/vm"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

const (
	historyFile = ".tot_history"
	promptMain  = "tot> "
	promptCont  = "...  "
)

var replCmd = &cobra.Command{
	Use:     "repl",
	Short:   "Evaluate statements interactively",
	GroupID: "source",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		machine := vm.New(host.Builtins(out), vm.WithRegistry(reg), vm.WithLogger(logger))

		ln := liner.NewLiner()
		defer ln.Close()
		ln.SetCtrlCAborts(true)

		home, _ := os.UserHomeDir()
		histPath := filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()

		fmt.Fprintln(out, dim("Type :help for commands, :quit to exit."))
		for {
			code, ok := readStatement(ln)
			if !ok {
				fmt.Fprintln(out)
				return nil
			}
			code = strings.TrimSpace(code)
			if code == "" {
				continue
			}
			ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))

			if strings.HasPrefix(code, ":") {
				if quit := replCommand(out, machine, code); quit {
					return nil
				}
				continue
			}

			v, err := machine.Eval(cmd.Context(), code)
			if err != nil {
				fmt.Fprintln(os.Stderr, red(err.Error()))
				continue
			}
			if printable(v) {
				fmt.Fprintln(out, host.Display(v))
			}
		}
	},
}

// readStatement reads lines until they form a statement, or until parsing
// fails for a reason other than reaching the end of input.
func readStatement(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, err := parser.ParseStatement(src); err != nil && incomplete(err) {
			continue
		}
		return src, true
	}
}

func incomplete(err error) bool {
	return errors.Is(err, diagnostics.ErrSyntax) && strings.Contains(err.Error(), "end of input")
}

func replCommand(w io.Writer, machine *vm.VM, cmd string) (quit bool) {
	switch cmd {
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Fprintln(w, ":scopes  list the variables of every scope")
		fmt.Fprintln(w, ":quit    leave the session")
	case ":scopes":
		for i, s := range machine.Frame().Scopes() {
			fmt.Fprintf(w, "%d %s\n", i, s.Kind)
			for _, b := range s.Bindings {
				fmt.Fprintf(w, "  %s = %s\n", b.Name, b.Value.Inspect())
			}
		}
	default:
		fmt.Fprintf(w, "unknown command %s. Type :help for commands.\n", cmd)
	}
	return false
}
