package treefile

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// Document is the top level of a declaration-tree file. A document either
// lists several files under `files` or describes a single file inline.
type Document struct {
	Files    []FileNode `yaml:"files"`
	FileNode `yaml:",inline"`
}

// FileNode is one source file of the tree.
type FileNode struct {
	Path    string     `yaml:"path"`
	Package Scalar     `yaml:"package"`
	Imports []Scalar   `yaml:"imports"`
	Decls   []DeclNode `yaml:"decls"`
}

func (f *FileNode) empty() bool {
	return f.Path == "" && f.Package.Text == "" && len(f.Imports) == 0 && len(f.Decls) == 0
}

// Scalar is a YAML string together with the position it was read from.
type Scalar struct {
	Text string
	Line int
	Col  int
}

func (s *Scalar) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar", n.Line)
	}
	s.Text, s.Line, s.Col = n.Value, n.Line, n.Column
	if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
		s.Col++
	}
	return nil
}

// Set reports whether the scalar was present in the document.
func (s Scalar) Set() bool { return s.Line != 0 }

// DeclNode is a declaration. Exactly one kind key names it, for example
// `class: Foo` or `fun: bar`; `constructor:` takes no name.
type DeclNode struct {
	Mods        []Scalar   `yaml:"mods"`
	Annotations []Scalar   `yaml:"annotations"`
	TypeParams  []Scalar   `yaml:"type_params"`
	Primary     *[]Scalar  `yaml:"primary"`
	Supers      []Scalar   `yaml:"supers"`
	Params      []Scalar   `yaml:"params"`
	Returns     Scalar     `yaml:"returns"`
	Type        Scalar     `yaml:"type"`
	Init        Scalar     `yaml:"init"`
	Body        Scalar     `yaml:"body"`
	Delegates   []Scalar   `yaml:"delegates"`
	Decls       []DeclNode `yaml:"decls"`

	Kind string `yaml:"-"`
	Name Scalar `yaml:"-"`
	Line int    `yaml:"-"`
	Col  int    `yaml:"-"`
}

var declKeys = map[string][]string{
	"class":       {"mods", "annotations", "type_params", "primary", "supers", "decls"},
	"trait":       {"mods", "annotations", "type_params", "supers", "decls"},
	"enum":        {"mods", "annotations", "type_params", "primary", "supers", "decls"},
	"entry":       {"annotations", "supers", "decls"},
	"object":      {"mods", "annotations", "supers", "decls"},
	"fun":         {"mods", "annotations", "type_params", "params", "returns", "body"},
	"val":         {"mods", "annotations", "type", "init"},
	"var":         {"mods", "annotations", "type", "init"},
	"constructor": {"mods", "annotations", "params", "delegates", "body"},
	"namespace":   {"decls"},
}

func (d *DeclNode) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: a declaration must be a mapping", n.Line)
	}
	type plain DeclNode
	if err := n.Decode((*plain)(d)); err != nil {
		return err
	}
	d.Line, d.Col = n.Line, n.Column

	var keys []string
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		if _, ok := declKeys[key.Value]; !ok {
			keys = append(keys, key.Value)
			continue
		}
		if d.Kind != "" {
			return fmt.Errorf("line %d: declaration is both %s and %s", key.Line, d.Kind, key.Value)
		}
		d.Kind = key.Value
		if value.Kind == yaml.ScalarNode && value.ShortTag() != "!!null" {
			if err := d.Name.UnmarshalYAML(value); err != nil {
				return err
			}
		}
	}
	if d.Kind == "" {
		return fmt.Errorf("line %d: declaration has no kind key", n.Line)
	}
	if d.Kind != "constructor" && d.Name.Text == "" {
		return fmt.Errorf("line %d: %s needs a name", n.Line, d.Kind)
	}
	allowed := declKeys[d.Kind]
	for _, k := range keys {
		if !slices.Contains(allowed, k) {
			return fmt.Errorf("line %d: key %q is not valid for %s", n.Line, k, d.Kind)
		}
	}
	return nil
}
