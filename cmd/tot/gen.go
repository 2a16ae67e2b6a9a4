package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/funvibe/tot/internal/backend"
	"github.com/funvibe/tot/internal/codegen"
	"github.com/funvibe/tot/internal/config"
	"github.com/spf13/cobra"
)

var genCmd = &cobra.Command{
	Use:     "gen <file>",
	Short:   "Generate target source from a file of function definitions",
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

		name := cfg.Backend
		if flag, _ := cmd.Flags().GetString("backend"); flag != "" {
			name = flag
		}
		b, err := backend.New(name, reg, backend.OptionsFromConfig(cfg))
		if err != nil {
			return err
		}

		code, err := codegen.New(b, reg, logger).Generate(src, args[0])
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			fmt.Fprint(cmd.OutOrStdout(), code)
			return nil
		}
		if info, err := os.Stat(out); err == nil && info.IsDir() {
			base := strings.TrimSuffix(filepath.Base(args[0]), config.SourceFileExt)
			out = filepath.Join(out, base+b.FileExt())
		}
		if err := os.WriteFile(out, []byte(code), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}
		logger.Info("generated", "source", args[0], "output", out, "backend", b.Name())
		return nil
	},
}

func init() {
	genCmd.Flags().StringP("out", "o", "", "output file or directory (default: standard output)")
	genCmd.Flags().String("backend", "", "backend to use (available: "+strings.Join(backend.Names(), ", ")+")")
}
