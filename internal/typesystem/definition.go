package typesystem

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Include binds a namespace alias to another schema file, relative to the
// including file's directory.
type Include struct {
	Namespace  string            `yaml:"namespace"`
	Path       string            `yaml:"path"`
	Attributes map[string]string `yaml:"attributes,omitempty"`
}

// Definition is the parsed content of one schema file.
type Definition struct {
	Includes []Include                    `yaml:"includes,omitempty"`
	Meta     map[string]map[string]string `yaml:"meta,omitempty"`
	Models   []ModelDef                   `yaml:"models"`
}

// GetModel returns the model with the given name.
func (d *Definition) GetModel(name string) (*ModelDef, bool) {
	for i := range d.Models {
		if d.Models[i].Name == name {
			return &d.Models[i], true
		}
	}
	return nil, false
}

// GetInclude returns the include aliased as namespace.
func (d *Definition) GetInclude(namespace string) (*Include, bool) {
	for i := range d.Includes {
		if d.Includes[i].Namespace == namespace {
			return &d.Includes[i], true
		}
	}
	return nil, false
}

// GetMeta returns the meta section for key (usually a target language).
func (d *Definition) GetMeta(key string) map[string]string {
	return d.Meta[key]
}

// ParseDefinition decodes a schema file. References between models are not
// checked here; they fail when resolved.
func ParseDefinition(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, err
	}
	if err := def.validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// LoadDefinition reads and decodes a schema file.
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	def, err := ParseDefinition(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return def, nil
}

func (d *Definition) validate() error {
	namespaces := make(map[string]bool)
	for _, inc := range d.Includes {
		if inc.Namespace == "" || inc.Path == "" {
			return fmt.Errorf("include needs both namespace and path")
		}
		if namespaces[inc.Namespace] {
			return fmt.Errorf("duplicate include namespace %q", inc.Namespace)
		}
		namespaces[inc.Namespace] = true
	}

	names := make(map[string]bool)
	for i := range d.Models {
		m := &d.Models[i]
		if names[m.Name] {
			return fmt.Errorf("duplicate model %q", m.Name)
		}
		names[m.Name] = true

		switch m.Type.Kind {
		case KindStruct, KindVirtual:
			if err := checkFieldNames(m.Name, m.Type.Fields); err != nil {
				return err
			}
		case KindEnum:
			seen := make(map[string]bool)
			for _, v := range m.Type.Variants {
				if seen[v.Name] {
					return fmt.Errorf("%s: duplicate variant %q", m.Name, v.Name)
				}
				seen[v.Name] = true
				if err := checkFieldNames(m.Name+"::"+v.Name, v.PayloadFields); err != nil {
					return err
				}
			}
		case KindConst:
			seen := make(map[ConstValue]bool)
			for _, v := range m.Type.Values {
				if seen[v.Value] {
					return fmt.Errorf("%s: duplicate const value %s", m.Name, v.Value)
				}
				seen[v.Value] = true
			}
		}
	}
	return nil
}

func checkFieldNames(owner string, fields []FieldDef) error {
	seen := make(map[string]bool)
	for _, f := range fields {
		if seen[f.Name] {
			return fmt.Errorf("%s: duplicate field %q", owner, f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}
