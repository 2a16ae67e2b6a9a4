package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/funvibe/tot/internal/config"
	"github.com/funvibe/tot/internal/logging"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	configPath string
	specRoot   string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
	colors bool
)

var rootCmd = &cobra.Command{
	Use:           "tot <command>",
	Short:         "Run and compile scripts over schema-defined models",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to "+config.ConfigFileName+" (default: search from the working directory)")
	rootCmd.PersistentFlags().StringVar(&specRoot, "spec-root", "", "folder holding schema files")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	rootCmd.AddGroup(
		&cobra.Group{ID: "source", Title: "Source:"},
		&cobra.Group{ID: "schema", Title: "Schema:"},
	)
	cobra.EnableCommandSorting = false

	// Source
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(lowerCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(fmtCmd)

	// Schema
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(resolveCmd)
}

func setup() error {
	path := configPath
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		if path, err = config.Find(wd); err != nil {
			return err
		}
	}
	c, err := config.Load(path)
	if err != nil {
		return err
	}
	if specRoot != "" {
		c.SpecRoot = specRoot
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}

	l, err := logging.New(c.LogLevel, c.LogFormat, os.Stderr)
	if err != nil {
		return err
	}
	cfg, logger = c, l
	colors = useColor(c.Color, os.Stderr)
	logger.Debug("configuration loaded", "path", path, "spec_root", c.SpecRoot, "backend", c.Backend)
	return nil
}

func useColor(mode string, f *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		os.Exit(1)
	}
}
