package main

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/funvibe/tot/internal/diagnostics"
	"github.com/funvibe/tot/internal/registry"
	"github.com/funvibe/tot/internal/value"
)

func red(s string) string {
	if !colors {
		return s
	}
	return "\x1b[31m" + s + "\x1b[0m"
}

func dim(s string) string {
	if !colors {
		return s
	}
	return "\x1b[2m" + s + "\x1b[0m"
}

// readSource reads a source file, or standard input for "-".
func readSource(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// located labels a diagnostic with the file it was reported for.
func located(err error, file string) error {
	var de *diagnostics.Error
	if file == "-" || !errors.As(err, &de) || de.File != "" {
		return err
	}
	cp := *de
	cp.File = file
	return &cp
}

func loadRegistry(ctx context.Context) (*registry.Registry, error) {
	return registry.LoadDir(ctx, cfg.SpecRoot, logger)
}

// printable reports whether an evaluation result is worth echoing.
func printable(v value.Value) bool {
	_, isNull := v.(*value.Null)
	return v != nil && !isNull
}
