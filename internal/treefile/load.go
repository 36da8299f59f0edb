// Package treefile reads declaration trees written as YAML documents. Type
// references, parameters and expressions inside the document use a compact
// textual syntax:
//
//	files:
//	  - path: shapes.lm
//	    package: geo
//	    imports: ["std.*", "util.Math as M"]
//	    decls:
//	      - class: Box
//	        type_params: ["T : Comparable<T>"]
//	        primary: ["val item: T"]
//	        supers: ["Shape(1)"]
//	        decls:
//	          - fun: get
//	            returns: T
//	            body: "item"
//
// A document without `files` describes a single file inline.
package treefile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"fortio.org/safecast"
	"gopkg.in/yaml.v3"

	"lumen/internal/ast"
	"lumen/internal/source"
)

// ErrInvalidTree marks documents that are valid YAML but do not describe a
// well-formed declaration tree.
var ErrInvalidTree = errors.New("invalid declaration tree")

var classKinds = map[string]ast.ClassKind{
	"class":  ast.ClassPlain,
	"trait":  ast.ClassTrait,
	"enum":   ast.ClassEnum,
	"entry":  ast.ClassEnumEntry,
	"object": ast.ClassObject,
}

// Load reads the documents at paths into one tree.
func Load(fset *source.FileSet, paths ...string) (*ast.Tree, error) {
	b := ast.NewBuilder(ast.Hints{}, nil)
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading tree %s: %w", path, err)
		}
		if _, err := Parse(data, path, b, fset); err != nil {
			return nil, err
		}
	}
	return b.Tree, nil
}

// ParseString builds a fresh tree from an in-memory document.
func ParseString(src string) (*ast.Tree, *source.FileSet, error) {
	fset := source.NewFileSet()
	b := ast.NewBuilder(ast.Hints{}, nil)
	if _, err := Parse([]byte(src), "input.yaml", b, fset); err != nil {
		return nil, nil, err
	}
	return b.Tree, fset, nil
}

// Parse decodes data and appends its files to b. name labels the document in
// errors and is the path of an inline single-file document.
func Parse(data []byte, name string, b *ast.Builder, fset *source.FileSet) ([]ast.FileID, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w: %w", name, ErrInvalidTree, err)
	}
	files := doc.Files
	if !doc.FileNode.empty() {
		if len(files) > 0 {
			return nil, fmt.Errorf("%s: %w: top-level declarations next to a files list", name, ErrInvalidTree)
		}
		files = []FileNode{doc.FileNode}
	}

	l := &loader{b: b, fset: fset, name: name}
	out := make([]ast.FileID, 0, len(files))
	for i := range files {
		f := &files[i]
		path := f.Path
		if path == "" {
			if len(files) > 1 {
				return nil, l.errorf(0, "files[%d]: path is required", i)
			}
			path = name
		}
		id, err := l.file(path, f)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

type loader struct {
	b      *ast.Builder
	fset   *source.FileSet
	name   string
	fileID source.FileID
}

func (l *loader) errorf(line int, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if line > 0 {
		return fmt.Errorf("%s:%d: %w: %s", l.name, line, ErrInvalidTree, msg)
	}
	return fmt.Errorf("%s: %w: %s", l.name, ErrInvalidTree, msg)
}

func spanAt(file source.FileID, line, col int) source.Span {
	ln, errLine := safecast.Conv[uint32](line)
	cl, errCol := safecast.Conv[uint32](col)
	if errLine != nil || errCol != nil {
		return source.Span{File: file}
	}
	return source.Span{File: file, Line: ln, Col: cl}
}

func (l *loader) span(line, col int) source.Span { return spanAt(l.fileID, line, col) }

func (l *loader) path(s Scalar) ([]source.StringID, error) {
	if s.Text == "" {
		return nil, nil
	}
	segs := strings.Split(s.Text, ".")
	for _, seg := range segs {
		if !validIdent(seg) {
			return nil, l.errorf(s.Line, "malformed name %q", s.Text)
		}
	}
	return l.b.Tree.Strings.InternPath(segs), nil
}

func validIdent(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentContinue(s[i]) {
			return false
		}
	}
	return true
}

func (l *loader) file(path string, f *FileNode) (ast.FileID, error) {
	l.fileID = l.fset.Add(path)
	ns, err := l.path(f.Package)
	if err != nil {
		return ast.NoFileID, err
	}
	id := l.b.NewFile(path, l.span(1, 1), ns)
	for _, imp := range f.Imports {
		node, err := l.importDirective(imp)
		if err != nil {
			return ast.NoFileID, err
		}
		l.b.AddImport(id, node)
	}
	for i := range f.Decls {
		decl, err := l.decl(&f.Decls[i])
		if err != nil {
			return ast.NoFileID, err
		}
		l.b.PushDecl(id, decl)
	}
	return id, nil
}

// importDirective reads `a.b.C`, `a.b.*` or `a.b.C as D`.
func (l *loader) importDirective(s Scalar) (ast.Import, error) {
	fields := strings.Fields(s.Text)
	imp := ast.Import{Span: l.span(s.Line, s.Col)}
	switch {
	case len(fields) == 3 && fields[1] == "as":
		if !validIdent(fields[2]) {
			return imp, l.errorf(s.Line, "malformed alias in import %q", s.Text)
		}
		imp.Alias = l.b.Intern(fields[2])
	case len(fields) != 1:
		return imp, l.errorf(s.Line, "malformed import %q", s.Text)
	}
	target := fields[0]
	if rest, ok := strings.CutSuffix(target, ".*"); ok {
		imp.All = true
		target = rest
	}
	path, err := l.path(Scalar{Text: target, Line: s.Line, Col: s.Col})
	if err != nil {
		return imp, err
	}
	if len(path) == 0 {
		return imp, l.errorf(s.Line, "empty import")
	}
	imp.Path = path
	return imp, nil
}

func (l *loader) header(d *DeclNode) (ast.Header, error) {
	h := ast.Header{Span: l.span(d.Line, d.Col)}
	if d.Name.Text != "" && d.Kind != "namespace" {
		if !validIdent(d.Name.Text) {
			return h, l.errorf(d.Name.Line, "malformed name %q", d.Name.Text)
		}
		h.Name = l.b.Intern(d.Name.Text)
	}
	for _, m := range d.Mods {
		mod, ok := modifierNames[m.Text]
		if !ok {
			return h, l.errorf(m.Line, "unknown modifier %q", m.Text)
		}
		h.Mods |= mod
	}
	for _, a := range d.Annotations {
		if !validIdent(a.Text) {
			return h, l.errorf(a.Line, "malformed annotation %q", a.Text)
		}
		h.Annotations = append(h.Annotations, l.b.Intern(a.Text))
	}
	return h, nil
}

func (l *loader) decl(d *DeclNode) (ast.DeclID, error) {
	h, err := l.header(d)
	if err != nil {
		return ast.NoDeclID, err
	}
	switch d.Kind {
	case "namespace":
		path, err := l.path(d.Name)
		if err != nil {
			return ast.NoDeclID, err
		}
		members, err := l.decls(d.Decls)
		if err != nil {
			return ast.NoDeclID, err
		}
		return l.b.NewNamespace(h, ast.NamespaceDecl{Path: path, Members: members}), nil
	case "fun":
		return l.function(h, d)
	case "val", "var":
		return l.property(h, d)
	case "constructor":
		return l.constructor(h, d)
	}
	return l.class(h, d)
}

func (l *loader) decls(nodes []DeclNode) ([]ast.DeclID, error) {
	out := make([]ast.DeclID, 0, len(nodes))
	for i := range nodes {
		id, err := l.decl(&nodes[i])
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func (l *loader) class(h ast.Header, d *DeclNode) (ast.DeclID, error) {
	cls := ast.ClassDecl{Kind: classKinds[d.Kind], HasPrimary: d.Primary != nil}
	var err error
	if cls.TypeParams, err = l.typeParams(d.TypeParams); err != nil {
		return ast.NoDeclID, err
	}
	if d.Primary != nil {
		if cls.PrimaryParams, err = l.params(*d.Primary, true); err != nil {
			return ast.NoDeclID, err
		}
	}
	if cls.Supertypes, err = l.supers(d.Supers); err != nil {
		return ast.NoDeclID, err
	}
	if cls.Members, err = l.decls(d.Decls); err != nil {
		return ast.NoDeclID, err
	}
	return l.b.NewClass(h, cls), nil
}

func (l *loader) function(h ast.Header, d *DeclNode) (ast.DeclID, error) {
	var fn ast.FunctionDecl
	var err error
	if fn.TypeParams, err = l.typeParams(d.TypeParams); err != nil {
		return ast.NoDeclID, err
	}
	if fn.Params, err = l.params(d.Params, false); err != nil {
		return ast.NoDeclID, err
	}
	if fn.Result, err = l.typeRef(d.Returns); err != nil {
		return ast.NoDeclID, err
	}
	if fn.Body, err = l.expr(d.Body); err != nil {
		return ast.NoDeclID, err
	}
	return l.b.NewFunction(h, fn), nil
}

func (l *loader) property(h ast.Header, d *DeclNode) (ast.DeclID, error) {
	prop := ast.PropertyDecl{Mutable: d.Kind == "var"}
	var err error
	if prop.Type, err = l.typeRef(d.Type); err != nil {
		return ast.NoDeclID, err
	}
	if prop.Init, err = l.expr(d.Init); err != nil {
		return ast.NoDeclID, err
	}
	return l.b.NewProperty(h, prop), nil
}

func (l *loader) constructor(h ast.Header, d *DeclNode) (ast.DeclID, error) {
	var ctor ast.ConstructorDecl
	var err error
	if ctor.Params, err = l.params(d.Params, false); err != nil {
		return ast.NoDeclID, err
	}
	if ctor.Delegations, err = l.supers(d.Delegates); err != nil {
		return ast.NoDeclID, err
	}
	if ctor.Body, err = l.expr(d.Body); err != nil {
		return ast.NoDeclID, err
	}
	return l.b.NewConstructor(h, ctor), nil
}

func (l *loader) parser(s Scalar) (*parser, error) {
	p, err := newParser(l.b, l.fileID, s)
	if err != nil {
		return nil, l.errorf(s.Line, "%q: %v", s.Text, err)
	}
	return p, nil
}

func (l *loader) wrap(s Scalar, err error) error {
	if err == nil {
		return nil
	}
	return l.errorf(s.Line, "%q: %v", s.Text, err)
}

func (l *loader) typeRef(s Scalar) (ast.TypeRefID, error) {
	if !s.Set() {
		return ast.NoTypeRefID, nil
	}
	p, err := l.parser(s)
	if err != nil {
		return ast.NoTypeRefID, err
	}
	id, err := p.typeSnippet()
	return id, l.wrap(s, err)
}

func (l *loader) expr(s Scalar) (ast.ExprID, error) {
	if !s.Set() {
		return ast.NoExprID, nil
	}
	p, err := l.parser(s)
	if err != nil {
		return ast.NoExprID, err
	}
	id, err := p.exprSnippet()
	return id, l.wrap(s, err)
}

func (l *loader) typeParams(list []Scalar) ([]ast.TypeParamID, error) {
	var out []ast.TypeParamID
	for _, s := range list {
		p, err := l.parser(s)
		if err != nil {
			return nil, err
		}
		id, err := p.typeParam()
		if err != nil {
			return nil, l.wrap(s, err)
		}
		out = append(out, id)
	}
	return out, nil
}

func (l *loader) params(list []Scalar, primary bool) ([]ast.ParamID, error) {
	var out []ast.ParamID
	for _, s := range list {
		p, err := l.parser(s)
		if err != nil {
			return nil, err
		}
		id, err := p.param(primary)
		if err != nil {
			return nil, l.wrap(s, err)
		}
		out = append(out, id)
	}
	return out, nil
}

func (l *loader) supers(list []Scalar) ([]ast.SuperEntry, error) {
	var out []ast.SuperEntry
	for _, s := range list {
		p, err := l.parser(s)
		if err != nil {
			return nil, err
		}
		entry, err := p.superEntry()
		if err != nil {
			return nil, l.wrap(s, err)
		}
		out = append(out, entry)
	}
	return out, nil
}
