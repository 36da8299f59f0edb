package fuzztests

import (
	"errors"
	"testing"

	"lumen/internal/treefile"
)

func FuzzTreefileParse(f *testing.F) {
	addTreeSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampSeed(input)
		tree, _, err := treefile.ParseString(string(input))
		if err != nil {
			if !errors.Is(err, treefile.ErrInvalidTree) {
				t.Fatalf("parse error does not wrap ErrInvalidTree: %v", err)
			}
			return
		}
		if tree == nil {
			t.Fatalf("nil tree without an error")
		}
	})
}

// FuzzExpressionSnippet feeds arbitrary text through the expression parser
// by placing it in a property initializer.
func FuzzExpressionSnippet(f *testing.F) {
	for _, s := range []string{
		"1 + 2 * 3",
		"a.b.c(1, \"x\")",
		"{ val x = 1; return x }",
		"f<Int>(g())",
		"$field",
		"((((",
		"this.area() == other",
	} {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, expr string) {
		if len(expr) > maxSeedBytes {
			expr = expr[:maxSeedBytes]
		}
		doc := "decls:\n  - val: sample\n    init: " + quoteYAML(expr) + "\n"
		if _, _, err := treefile.ParseString(doc); err != nil && !errors.Is(err, treefile.ErrInvalidTree) {
			t.Fatalf("unexpected error kind for %q: %v", expr, err)
		}
	})
}

// quoteYAML renders s as a double-quoted YAML scalar.
func quoteYAML(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			out = append(out, '\\', byte(r))
		case r == '\n':
			out = append(out, '\\', 'n')
		case r < 0x20 || r == 0x7f:
			out = append(out, []byte("\\x")...)
			out = append(out, "0123456789abcdef"[r>>4], "0123456789abcdef"[r&0xf])
		default:
			out = append(out, string(r)...)
		}
	}
	return string(append(out, '"'))
}
