package ast

import (
	"lumen/internal/source"
)

// Header carries the fields shared by every declaration kind.
type Header struct {
	Span        source.Span
	Name        source.StringID
	Mods        Modifiers
	Annotations []source.StringID
}

// Builder assembles a Tree bottom-up: children are created first and passed
// to their parent's constructor.
type Builder struct {
	Tree *Tree
}

func NewBuilder(hints Hints, strings *source.Interner) *Builder {
	return &Builder{Tree: NewTree(hints, strings)}
}

func (b *Builder) Intern(s string) source.StringID {
	return b.Tree.Strings.Intern(s)
}

func (b *Builder) NewFile(path string, span source.Span, namespace []source.StringID) FileID {
	return FileID(b.Tree.Files.Allocate(File{Span: span, Path: path, Namespace: namespace}))
}

// AddImport attaches an import directive to file.
func (b *Builder) AddImport(file FileID, imp Import) ImportID {
	id := ImportID(b.Tree.Imports.Allocate(imp))
	if f := b.Tree.File(file); f != nil {
		f.Imports = append(f.Imports, id)
	}
	return id
}

// PushDecl attaches a top-level declaration to file.
func (b *Builder) PushDecl(file FileID, decl DeclID) {
	if f := b.Tree.File(file); f != nil {
		f.Decls = append(f.Decls, decl)
	}
}

func (b *Builder) newDecl(kind DeclKind, h Header, payload uint32) DeclID {
	return DeclID(b.Tree.Decls.Allocate(Decl{
		Kind:        kind,
		Span:        h.Span,
		Name:        h.Name,
		Mods:        h.Mods,
		Annotations: h.Annotations,
		Payload:     PayloadID(payload),
	}))
}

func (b *Builder) NewNamespace(h Header, ns NamespaceDecl) DeclID {
	if len(ns.Path) > 0 && h.Name == source.NoStringID {
		h.Name = ns.Path[len(ns.Path)-1]
	}
	return b.newDecl(DeclNamespace, h, b.Tree.Namespaces.Allocate(ns))
}

func (b *Builder) NewClass(h Header, cls ClassDecl) DeclID {
	return b.newDecl(DeclClass, h, b.Tree.Classes.Allocate(cls))
}

func (b *Builder) NewFunction(h Header, fn FunctionDecl) DeclID {
	return b.newDecl(DeclFunction, h, b.Tree.Functions.Allocate(fn))
}

func (b *Builder) NewProperty(h Header, prop PropertyDecl) DeclID {
	return b.newDecl(DeclProperty, h, b.Tree.Properties.Allocate(prop))
}

func (b *Builder) NewConstructor(h Header, ctor ConstructorDecl) DeclID {
	return b.newDecl(DeclConstructor, h, b.Tree.Ctors.Allocate(ctor))
}

func (b *Builder) NewParam(p Param) ParamID {
	return ParamID(b.Tree.Params.Allocate(p))
}

func (b *Builder) NewTypeParam(tp TypeParam) TypeParamID {
	return TypeParamID(b.Tree.TypeParams.Allocate(tp))
}

func (b *Builder) NewTypeRef(tr TypeRef) TypeRefID {
	return TypeRefID(b.Tree.TypeRefs.Allocate(tr))
}

func (b *Builder) NewExpr(e Expr) ExprID {
	return ExprID(b.Tree.Exprs.Allocate(e))
}

// NamedType is a shortcut for a simple named type reference.
func (b *Builder) NamedType(span source.Span, path string, args ...TypeRefID) TypeRefID {
	segs := splitDotted(path)
	ids := make([]source.StringID, len(segs))
	for i, s := range segs {
		ids[i] = b.Intern(s)
	}
	return b.NewTypeRef(TypeRef{Kind: TypeRefNamed, Span: span, Path: ids, Args: args})
}

func splitDotted(path string) []string {
	var out []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			out = append(out, path[start:i])
			start = i + 1
		}
	}
	return append(out, path[start:])
}
