package trace

import "context"

type ctxKey struct{}

// binding is what a context carries: the tracer and the frame that new
// events are placed in.
type binding struct {
	tracer Tracer
	frame  Frame
}

func bindingOf(ctx context.Context) binding {
	if ctx != nil {
		if b, ok := ctx.Value(ctxKey{}).(binding); ok {
			return b
		}
	}
	return binding{tracer: Nop}
}

// WithTracer attaches t to ctx, keeping any frame already there.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	b := bindingOf(ctx)
	b.tracer = t
	if b.tracer == nil {
		b.tracer = Nop
	}
	return context.WithValue(ctx, ctxKey{}, b)
}

// WithFrame places later events of ctx inside f.
func WithFrame(ctx context.Context, f Frame) context.Context {
	b := bindingOf(ctx)
	b.frame = f
	return context.WithValue(ctx, ctxKey{}, b)
}

// FromContext returns the tracer of ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	return bindingOf(ctx).tracer
}

// FrameOf returns the frame of ctx; the zero frame is the top level.
func FrameOf(ctx context.Context) Frame {
	return bindingOf(ctx).frame
}
