package sema

import (
	"lumen/internal/ast"
	"lumen/internal/attrs"
	"lumen/internal/bindings"
	"lumen/internal/source"
	"lumen/internal/symbols"
)

type containerKind uint8

const (
	containerFile containerKind = iota
	containerNamespace
	containerClass
)

// container is a declaration container visited by the collect queue.
// scope receives the container's declarations; for classes it is the static
// scope and members go to the class scopes.
type container struct {
	kind    containerKind
	file    ast.FileID
	decl    ast.DeclID
	owner   symbols.SymbolID
	scope   symbols.ScopeID
	members []ast.DeclID
}

type fileInfo struct {
	id    ast.FileID
	pkg   symbols.SymbolID
	scope symbols.ScopeID
}

// collect walks the tree breadth-first and creates descriptors for packages,
// classes, objects and enum entries. A container's scope is unlocked before
// any of its children are dequeued.
func (r *resolver) collect() {
	queue := make([]*container, 0, len(r.tree.FileIDs()))
	for _, fileID := range r.tree.FileIDs() {
		file := r.tree.File(fileID)
		pkg := r.ns.Ensure(file.Namespace, file.Span)
		scope := r.table.Scopes.New(symbols.ScopeFile, r.defaultScope, pkg)
		r.table.SetWriteThrough(scope, r.sym(pkg).MemberScope)
		attrs.Set(r.store, bindings.FilePackage, fileID, pkg)
		attrs.Set(r.store, bindings.FileScope, fileID, scope)
		r.files = append(r.files, &fileInfo{id: fileID, pkg: pkg, scope: scope})
		queue = append(queue, &container{
			kind:    containerFile,
			file:    fileID,
			owner:   pkg,
			scope:   scope,
			members: file.Decls,
		})
	}

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		r.containers = append(r.containers, c)

		var children []*container
		for _, declID := range c.members {
			decl := r.tree.Decl(declID)
			switch decl.Kind {
			case ast.DeclNamespace:
				children = append(children, r.collectNamespace(c, declID))
			case ast.DeclClass:
				children = append(children, r.collectClass(c, declID))
			}
		}
		r.table.SetLock(c.scope, symbols.LockBoth)
		if c.kind == containerClass {
			cs := r.sym(c.owner).ClassScopes
			r.table.SetLock(cs.Members, symbols.LockBoth)
			r.table.SetLock(cs.Init, symbols.LockBoth)
		}
		queue = append(queue, children...)
	}
}

func (r *resolver) collectNamespace(parent *container, declID ast.DeclID) *container {
	ns := r.tree.Namespace(declID)
	base := r.sym(parent.owner).Path
	path := make([]source.StringID, 0, len(base)+len(ns.Path))
	path = append(path, base...)
	path = append(path, ns.Path...)
	pkg := r.ns.Ensure(path, r.tree.Decl(declID).Span)
	attrs.Set(r.store, bindings.NamespaceDescriptor, ast.DeclRef(declID), pkg)

	scope := r.table.Scopes.New(symbols.ScopeFile, parent.scope, pkg)
	r.table.SetWriteThrough(scope, r.sym(pkg).MemberScope)
	return &container{
		kind:    containerNamespace,
		file:    parent.file,
		decl:    declID,
		owner:   pkg,
		scope:   scope,
		members: ns.Members,
	}
}

func (r *resolver) collectClass(parent *container, declID ast.DeclID) *container {
	decl := r.tree.Decl(declID)
	cls := r.tree.Class(declID)
	t := r.table

	modality := symbols.ModalityFinal
	switch {
	case cls.Kind == ast.ClassTrait || decl.Mods.Has(ast.ModAbstract):
		modality = symbols.ModalityAbstract
	case decl.Mods.Has(ast.ModOpen):
		modality = symbols.ModalityOpen
	}
	var flags symbols.SymbolFlags
	if decl.Mods.Has(ast.ModNative) {
		flags |= symbols.FlagNative
	}

	id := r.newSymbol(symbols.Symbol{
		Name:        decl.Name,
		Kind:        symbols.SymbolClass,
		Owner:       parent.owner,
		Span:        decl.Span,
		Decl:        ast.DeclRef(declID),
		Visibility:  visibilityOf(decl.Mods),
		Modality:    modality,
		Flags:       flags,
		Annotations: annotationsOf(decl),
		ClassKind:   cls.Kind,
	})
	static := t.Scopes.New(symbols.ScopeClassStatic, parent.scope, id)
	tps := t.Scopes.New(symbols.ScopeTypeParams, static, id)
	members := t.Scopes.New(symbols.ScopeClassMembers, tps, id)
	init := t.Scopes.New(symbols.ScopeInit, members, id)
	r.edit(id).ClassScopes = symbols.ClassScopes{TypeParams: tps, Members: members, Static: static, Init: init}

	t.Declare(parent.scope, id)
	attrs.Set(r.store, bindings.ClassDescriptor, ast.DeclRef(declID), id)

	switch cls.Kind {
	case ast.ClassObject:
		r.instanceValue(id, parent.scope, parent.owner, symbols.FlagObjectInstance)
	case ast.ClassEnumEntry:
		r.instanceValue(id, parent.scope, parent.owner, symbols.FlagEnumValue)
	}

	c := &container{
		kind:    containerClass,
		file:    parent.file,
		decl:    declID,
		owner:   id,
		scope:   static,
		members: cls.Members,
	}
	r.classes = append(r.classes, id)
	r.classInfo[id] = &classInfo{decl: declID, container: c}
	r.point("class", r.table.FQName(id))
	return c
}

// instanceValue declares the value an object or enum entry denotes, next to
// its class. Its type is filled in once the class type exists.
func (r *resolver) instanceValue(cls symbols.SymbolID, scope symbols.ScopeID, owner symbols.SymbolID, flag symbols.SymbolFlags) {
	c := r.sym(cls)
	v := r.newSymbol(symbols.Symbol{
		Name:       c.Name,
		Kind:       symbols.SymbolVariable,
		Owner:      owner,
		Span:       c.Span,
		Decl:       c.Decl,
		Visibility: c.Visibility,
		Flags:      flag | symbols.FlagStatic | symbols.FlagSynthetic,
	})
	r.table.Declare(scope, v)
	attrs.Set(r.store, bindings.ObjectInstance, cls, v)
}
