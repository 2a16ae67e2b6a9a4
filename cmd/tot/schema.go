package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/funvibe/tot/internal/registry"
	"github.com/funvibe/tot/internal/typesystem"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var modelsCmd = &cobra.Command{
	Use:     "models",
	Short:   "List every model of the schema folder",
	GroupID: "schema",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry(cmd.Context())
		if err != nil {
			return err
		}
		entries := reg.Models()
		if len(entries) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No models found under %s.\n", cfg.SpecRoot)
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TYPE PATH\tKIND\tFILE")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.TypePath, e.Model.Type.Kind, e.File)
		}
		return w.Flush()
	},
}

// resolved is the YAML document printed by resolve.
type resolved struct {
	TypePath string                `yaml:"type_path"`
	File     string                `yaml:"file,omitempty"`
	Model    *typesystem.ModelDef  `yaml:"model,omitempty"`
	Fields   []typesystem.FieldDef `yaml:"effective_fields,omitempty"`
}

var resolveCmd = &cobra.Command{
	Use:     "resolve <type-path>",
	Short:   "Print the model a type path resolves to",
	GroupID: "schema",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry(cmd.Context())
		if err != nil {
			return err
		}
		res, err := reg.Resolve(args[0])
		if err != nil {
			return err
		}

		doc := resolved{TypePath: res.TypePath(), Model: res.Model}
		if res.IsModel() {
			doc.File = res.File
			if doc.Fields, err = effectiveFields(reg, res); err != nil {
				return err
			}
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	},
}

// effectiveFields lists the fields of struct models that extend a virtual
// model. Other models print their own fields only.
func effectiveFields(reg *registry.Registry, res registry.Resolved) ([]typesystem.FieldDef, error) {
	if res.Model.Type.Kind != typesystem.KindStruct || res.Model.Type.Extend == "" {
		return nil, nil
	}
	fields, err := reg.EffectiveFields(res)
	if err != nil {
		return nil, err
	}
	out := make([]typesystem.FieldDef, len(fields))
	for i, f := range fields {
		out[i] = f.FieldDef
	}
	return out, nil
}
