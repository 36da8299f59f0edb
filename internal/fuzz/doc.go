// Package fuzztests houses Go fuzz harnesses for the front half of the
// pipeline: declaration-tree parsing and semantic analysis. They guard
// against panics, hangs and inconsistent resolution facts on arbitrary
// input.
package fuzztests
