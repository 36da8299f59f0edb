package ast

import "lumen/internal/source"

// File is one parsed source file: an optional namespace header, import
// directives and top-level declarations.
type File struct {
	Span      source.Span
	Path      string
	Namespace []source.StringID
	Imports   []ImportID
	Decls     []DeclID
}

// Import is a single import directive: `import a.b.C`, `import a.b.*` or
// `import a.b.C as D`.
type Import struct {
	Span  source.Span
	Path  []source.StringID
	All   bool
	Alias source.StringID
}
