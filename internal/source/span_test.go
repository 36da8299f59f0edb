package source

import "testing"

func TestSpanBefore(t *testing.T) {
	tests := []struct {
		name string
		a, b Span
		want bool
	}{
		{"earlier file", Span{File: 1, Line: 9}, Span{File: 2, Line: 1}, true},
		{"same file earlier line", Span{File: 1, Line: 2}, Span{File: 1, Line: 3}, true},
		{"same line later column", Span{File: 1, Line: 2, Col: 5}, Span{File: 1, Line: 2, Col: 1}, false},
		{"equal", Span{File: 1, Line: 2, Col: 1}, Span{File: 1, Line: 2, Col: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Before(tt.b); got != tt.want {
				t.Fatalf("Before() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFileSetFormat(t *testing.T) {
	fs := NewFileSet()
	id := fs.Add("main.yaml")
	if fs.Add("main.yaml") != id {
		t.Fatalf("Add must be idempotent")
	}
	if got := fs.Format(Span{File: id, Line: 3, Col: 7}); got != "main.yaml:3:7" {
		t.Fatalf("Format = %q", got)
	}
	if got := fs.Format(Span{}); got != "<synthetic>" {
		t.Fatalf("Format synthetic = %q", got)
	}
}
