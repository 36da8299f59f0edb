package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const maxSeedBytes = 64 << 10

var treeSeeds = []string{
	"",
	"decls: []\n",
	`
package: shapes
decls:
  - trait: Shape
    decls:
      - fun: area
        mods: [abstract]
        returns: Double
  - class: Square
    primary: ["val side: Double"]
    supers: [Shape]
    decls:
      - fun: area
        mods: [override]
        returns: Double
        body: "side * side"
  - fun: total
    params: ["a: Shape", "b: Shape"]
    returns: Double
    body: "a.area() + b.area()"
  - val: unit
    init: "Square(1.0)"
`,
	`
package: p
decls:
  - class: Counter
    decls:
      - var: count
        type: Int
        init: "0"
      - fun: read
        returns: Int
        body: $count
      - fun: other
        returns: Int
        body: $missing
`,
	`
package: p
decls:
  - class: Base
    mods: [open]
    primary: ["x: Int"]
  - trait: T
  - class: Good
    supers: ["Base(1)", T]
  - class: WrongArgs
    supers: ['Base("s")']
  - class: Secondary
    supers: [Base]
    decls:
      - constructor:
        params: ["y: Int"]
        delegates: ["Base(y)"]
`,
	`
files:
  - path: lib.lm
    package: lib
    decls:
      - class: Tool
  - path: app.lm
    package: app
    imports: [lib.Tool, lib.Missing, "std.*", "lib.* as L"]
    decls:
      - val: t
        type: Tool
`,
	`
package: cyc
decls:
  - class: A
    mods: [open]
    supers: [B]
  - class: B
    mods: [open]
    supers: [A]
  - val: loop
    init: loop
`,
	"decls:\n  - val: a\n    type: 'List<'\n",
	"decls:\n  - class: [oops]\n",
}

func addTreeSeeds(f *testing.F) {
	for _, s := range treeSeeds {
		f.Add([]byte(s))
	}
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		if ext := filepath.Ext(path); ext != ".yaml" && ext != ".yml" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
