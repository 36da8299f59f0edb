package types

import "strings"

// Namer renders constructor handles for diagnostics.
type Namer func(CtorRef) string

// Format renders id in source-like syntax.
func (in *Interner) Format(id TypeID, name Namer) string {
	var sb strings.Builder
	in.format(&sb, id, name)
	return sb.String()
}

func (in *Interner) format(sb *strings.Builder, id TypeID, name Namer) {
	t, ok := in.Lookup(id)
	if !ok {
		sb.WriteString("<none>")
		return
	}
	switch t.Kind {
	case KindError:
		sb.WriteString("<error>")
		return
	case KindClass, KindTypeParam:
		sb.WriteString(name(t.Ctor))
		if len(t.Args) > 0 {
			sb.WriteByte('<')
			for i, a := range t.Args {
				if i > 0 {
					sb.WriteString(", ")
				}
				in.format(sb, a, name)
			}
			sb.WriteByte('>')
		}
	case KindSelf:
		sb.WriteString("This")
	case KindFunction:
		if t.Nullable {
			sb.WriteByte('(')
		}
		sb.WriteByte('(')
		for i, p := range t.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			in.format(sb, p, name)
		}
		sb.WriteString(") -> ")
		in.format(sb, t.Result, name)
		if t.Nullable {
			sb.WriteByte(')')
		}
	default:
		sb.WriteString("<invalid>")
		return
	}
	if t.Nullable {
		sb.WriteByte('?')
	}
}
