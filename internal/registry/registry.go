// Package registry holds every schema definition found under a root folder
// and resolves type paths against them. A Registry is immutable once loaded
// and safe to share between goroutines.
package registry

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/funvibe/tot/internal/config"
	"github.com/funvibe/tot/internal/diagnostics"
	"github.com/funvibe/tot/internal/typesystem"
	"github.com/funvibe/tot/internal/utils"
	"golang.org/x/sync/errgroup"
)

type Registry struct {
	root  string
	files []string // sorted relative paths
	defs  map[string]*typesystem.Definition
}

// Resolved is the outcome of resolving a type. Exactly one of Type and Model
// is set. File is the schema file owning Model, or the file a list or map
// type was written in so that its element types resolve from there.
type Resolved struct {
	Type  typesystem.Type
	Model *typesystem.ModelDef
	File  string
}

// IsModel reports whether the resolution produced a named model.
func (r Resolved) IsModel() bool { return r.Model != nil }

// TypePath returns the fully qualified path of the resolved type.
func (r Resolved) TypePath() string {
	if r.Model == nil {
		return r.Type.String()
	}
	return utils.TypePathPrefix(r.File) + config.NamespaceSeparator + r.Model.Name
}

// Same reports whether two resolutions denote the same type.
func (r Resolved) Same(other Resolved) bool {
	if r.IsModel() || other.IsModel() {
		return r.Model == other.Model && r.File == other.File
	}
	return typesystem.Equal(r.Type, other.Type)
}

// Entry is one model listed with its qualified path.
type Entry struct {
	TypePath string
	File     string
	Model    *typesystem.ModelDef
}

// New builds a registry from already decoded definitions keyed by relative path.
func New(defs map[string]*typesystem.Definition) *Registry {
	r := &Registry{defs: make(map[string]*typesystem.Definition, len(defs))}
	for rel, def := range defs {
		key := utils.NormalizeRelPath(rel)
		r.defs[key] = def
		r.files = append(r.files, key)
	}
	sort.Strings(r.files)
	return r
}

// LoadDir scans root recursively for schema files and loads them.
func LoadDir(ctx context.Context, root string, logger *slog.Logger) (*Registry, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("spec root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("spec root %s is not a directory", root)
	}
	r, err := Load(ctx, os.DirFS(root), logger)
	if err != nil {
		return nil, err
	}
	r.root = root
	return r, nil
}

// Load reads every schema file of fsys. Files are decoded concurrently; the
// registry orders them by path regardless of completion order.
func Load(ctx context.Context, fsys fs.FS, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var files []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if config.HasSchemaExt(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning spec root: %w", err)
	}
	sort.Strings(files)

	defs := make([]*typesystem.Definition, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := fs.ReadFile(fsys, file)
			if err != nil {
				return fmt.Errorf("reading %s: %w", file, err)
			}
			def, err := typesystem.ParseDefinition(data)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", file, err)
			}
			defs[i] = def
			logger.Debug("loaded definition", "file", file, "models", len(def.Models), "includes", len(def.Includes))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r := &Registry{files: files, defs: make(map[string]*typesystem.Definition, len(files))}
	for i, file := range files {
		r.defs[file] = defs[i]
	}
	logger.Info("registry loaded", "files", len(files))
	return r, nil
}

// Root returns the folder the registry was loaded from, if any.
func (r *Registry) Root() string { return r.root }

// Files returns the relative paths of all loaded definitions in order.
func (r *Registry) Files() []string {
	out := make([]string, len(r.files))
	copy(out, r.files)
	return out
}

// Definition returns the definition loaded from rel.
func (r *Registry) Definition(rel string) (*typesystem.Definition, bool) {
	def, ok := r.defs[utils.NormalizeRelPath(rel)]
	return def, ok
}

// Models lists every model by qualified type path.
func (r *Registry) Models() []Entry {
	var out []Entry
	for _, file := range r.files {
		def := r.defs[file]
		prefix := utils.TypePathPrefix(file)
		for i := range def.Models {
			m := &def.Models[i]
			out = append(out, Entry{
				TypePath: prefix + config.NamespaceSeparator + m.Name,
				File:     file,
				Model:    m,
			})
		}
	}
	return out
}

// Resolve resolves a type path without an owning file. A path with no
// namespace must be a builtin; a namespaced path names a schema file by its
// relative location (a::b::C is model C of a/b.yaml).
func (r *Registry) Resolve(typePath string) (Resolved, error) {
	return r.ResolveIn("", typePath)
}

// ResolveIn resolves a type path as written inside the schema file owner.
// Include aliases and same-file model names of owner take precedence over
// root-relative paths.
func (r *Registry) ResolveIn(owner, typePath string) (Resolved, error) {
	t, err := typesystem.ParseType(typePath)
	if err != nil {
		return Resolved{}, diagnostics.Wrap(diagnostics.KindUnresolvedType, err, "%s", typePath)
	}
	return r.ResolveType(owner, t)
}

// ResolveType resolves a decoded type. Only references need a lookup.
func (r *Registry) ResolveType(owner string, t typesystem.Type) (Resolved, error) {
	ref, ok := t.(typesystem.TRef)
	if !ok {
		return Resolved{Type: t, File: utils.NormalizeRelPath(owner)}, nil
	}
	return r.ResolveReference(owner, ref)
}

// ResolveReference resolves ref as written inside owner.
func (r *Registry) ResolveReference(owner string, ref typesystem.TRef) (Resolved, error) {
	if ref.Namespace == "" {
		if owner != "" {
			if def, ok := r.Definition(owner); ok {
				if m, ok := def.GetModel(ref.Target); ok {
					return Resolved{Model: m, File: utils.NormalizeRelPath(owner)}, nil
				}
			}
		}
		return Resolved{}, diagnostics.New(diagnostics.KindUnresolvedType, "%s is not a builtin type", ref.Target)
	}

	file := utils.NamespaceFilePath(ref.Namespace)
	if owner != "" {
		if def, ok := r.Definition(owner); ok {
			if inc, ok := def.GetInclude(ref.Namespace); ok {
				resolved, ok := utils.ResolveIncludePath(owner, inc.Path)
				if !ok {
					return Resolved{}, diagnostics.New(diagnostics.KindUnresolvedType,
						"include %s of %s points outside the spec root", inc.Namespace, owner)
				}
				file = resolved
			}
		}
	}

	def, ok := r.defs[file]
	if !ok {
		return Resolved{}, diagnostics.New(diagnostics.KindUnresolvedType, "%s: no definition %s", ref, file)
	}
	m, ok := def.GetModel(ref.Target)
	if !ok {
		return Resolved{}, diagnostics.New(diagnostics.KindUnresolvedType, "%s: %s has no model %s", ref, file, ref.Target)
	}
	return Resolved{Model: m, File: file}, nil
}

// Field is a struct field together with the file its type is written in.
type Field struct {
	typesystem.FieldDef
	File string
}

// EffectiveFields returns the fields of a struct or virtual model: those of
// the extended virtual model first, then the model's own.
func (r *Registry) EffectiveFields(res Resolved) ([]Field, error) {
	if !res.IsModel() {
		return nil, diagnostics.New(diagnostics.KindUnsupportedConversion, "%s has no fields", res.TypePath())
	}
	m := res.Model
	switch m.Type.Kind {
	case typesystem.KindStruct, typesystem.KindVirtual:
	default:
		return nil, diagnostics.New(diagnostics.KindUnsupportedConversion, "%s is a %s, not a struct", res.TypePath(), m.Type.Kind)
	}

	var fields []Field
	if m.Type.Extend != "" {
		base, err := r.ResolveIn(res.File, m.Type.Extend)
		if err != nil {
			return nil, err
		}
		if !base.IsModel() || base.Model.Type.Kind != typesystem.KindVirtual {
			return nil, diagnostics.New(diagnostics.KindUnresolvedType,
				"%s extends %s, which is not virtual", res.TypePath(), base.TypePath())
		}
		for _, f := range base.Model.Type.Fields {
			fields = append(fields, Field{FieldDef: f, File: base.File})
		}
	}
	for _, f := range m.Type.Fields {
		fields = append(fields, Field{FieldDef: f, File: res.File})
	}
	return fields, nil
}

// FieldType resolves the type of the named field of a struct model.
func (r *Registry) FieldType(res Resolved, name string) (Resolved, error) {
	fields, err := r.EffectiveFields(res)
	if err != nil {
		return Resolved{}, err
	}
	for _, f := range fields {
		if f.Name == name {
			return r.ResolveType(f.File, f.Type)
		}
	}
	return Resolved{}, diagnostics.New(diagnostics.KindUnresolvedReference, "%s has no field %s", res.TypePath(), name)
}
