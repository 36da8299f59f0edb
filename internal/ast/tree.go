package ast

import (
	"lumen/internal/source"
)

type Hints struct{ Files, Decls, Exprs uint }

// Tree is the immutable declaration tree handed over by the parser. The
// resolver only reads it; all analysis results live in the attribute store.
type Tree struct {
	Strings    *source.Interner
	Files      *Arena[File]
	Imports    *Arena[Import]
	Decls      *Arena[Decl]
	Namespaces *Arena[NamespaceDecl]
	Classes    *Arena[ClassDecl]
	Functions  *Arena[FunctionDecl]
	Properties *Arena[PropertyDecl]
	Ctors      *Arena[ConstructorDecl]
	Params     *Arena[Param]
	TypeParams *Arena[TypeParam]
	TypeRefs   *Arena[TypeRef]
	Exprs      *Arena[Expr]
}

// NewTree allocates an empty tree. If strings is nil a fresh interner is used.
func NewTree(hints Hints, strings *source.Interner) *Tree {
	if hints.Files == 0 {
		hints.Files = 1 << 4
	}
	if hints.Decls == 0 {
		hints.Decls = 1 << 7
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Tree{
		Strings:    strings,
		Files:      NewArena[File](hints.Files),
		Imports:    NewArena[Import](hints.Files * 4),
		Decls:      NewArena[Decl](hints.Decls),
		Namespaces: NewArena[NamespaceDecl](hints.Files),
		Classes:    NewArena[ClassDecl](hints.Decls / 4),
		Functions:  NewArena[FunctionDecl](hints.Decls / 2),
		Properties: NewArena[PropertyDecl](hints.Decls / 2),
		Ctors:      NewArena[ConstructorDecl](hints.Decls / 8),
		Params:     NewArena[Param](hints.Decls),
		TypeParams: NewArena[TypeParam](hints.Decls / 8),
		TypeRefs:   NewArena[TypeRef](hints.Decls * 2),
		Exprs:      NewArena[Expr](hints.Exprs),
	}
}

func (t *Tree) File(id FileID) *File                { return t.Files.Get(uint32(id)) }
func (t *Tree) Import(id ImportID) *Import          { return t.Imports.Get(uint32(id)) }
func (t *Tree) Decl(id DeclID) *Decl                { return t.Decls.Get(uint32(id)) }
func (t *Tree) Param(id ParamID) *Param             { return t.Params.Get(uint32(id)) }
func (t *Tree) TypeParam(id TypeParamID) *TypeParam { return t.TypeParams.Get(uint32(id)) }
func (t *Tree) TypeRef(id TypeRefID) *TypeRef       { return t.TypeRefs.Get(uint32(id)) }
func (t *Tree) Expr(id ExprID) *Expr                { return t.Exprs.Get(uint32(id)) }

// FileIDs lists every file in load order.
func (t *Tree) FileIDs() []FileID {
	n := t.Files.Len()
	out := make([]FileID, 0, n)
	for i := uint32(1); i <= n; i++ {
		out = append(out, FileID(i))
	}
	return out
}

func (t *Tree) Namespace(id DeclID) *NamespaceDecl {
	d := t.Decl(id)
	if d == nil || d.Kind != DeclNamespace {
		return nil
	}
	return t.Namespaces.Get(uint32(d.Payload))
}

func (t *Tree) Class(id DeclID) *ClassDecl {
	d := t.Decl(id)
	if d == nil || d.Kind != DeclClass {
		return nil
	}
	return t.Classes.Get(uint32(d.Payload))
}

func (t *Tree) Function(id DeclID) *FunctionDecl {
	d := t.Decl(id)
	if d == nil || d.Kind != DeclFunction {
		return nil
	}
	return t.Functions.Get(uint32(d.Payload))
}

func (t *Tree) Property(id DeclID) *PropertyDecl {
	d := t.Decl(id)
	if d == nil || d.Kind != DeclProperty {
		return nil
	}
	return t.Properties.Get(uint32(d.Payload))
}

func (t *Tree) Constructor(id DeclID) *ConstructorDecl {
	d := t.Decl(id)
	if d == nil || d.Kind != DeclConstructor {
		return nil
	}
	return t.Ctors.Get(uint32(d.Payload))
}

// Name returns the spelling of an interned identifier.
func (t *Tree) Name(id source.StringID) string {
	s, _ := t.Strings.Lookup(id)
	return s
}

// Span returns the span of any node.
func (t *Tree) Span(ref NodeRef) source.Span {
	switch ref.Kind {
	case NodeFile:
		if f := t.File(FileID(ref.ID)); f != nil {
			return f.Span
		}
	case NodeDecl:
		if d := t.Decl(DeclID(ref.ID)); d != nil {
			return d.Span
		}
	case NodeTypeRef:
		if tr := t.TypeRef(TypeRefID(ref.ID)); tr != nil {
			return tr.Span
		}
	case NodeExpr:
		if e := t.Expr(ExprID(ref.ID)); e != nil {
			return e.Span
		}
	case NodeImport:
		if im := t.Import(ImportID(ref.ID)); im != nil {
			return im.Span
		}
	case NodeParam:
		if p := t.Param(ParamID(ref.ID)); p != nil {
			return p.Span
		}
	case NodeTypeParam:
		if tp := t.TypeParam(TypeParamID(ref.ID)); tp != nil {
			return tp.Span
		}
	}
	return source.Span{}
}
