package logging

import "context"

type contextKey struct{}

// ContextWith stores key/value pairs on ctx. Every *Context call made with the
// returned context (or one derived from it) logs them, whichever Logger is used.
func ContextWith(ctx context.Context, args ...any) context.Context {
	if len(args) == 0 {
		return ctx
	}
	parent := contextArgs(ctx)
	merged := make([]any, 0, len(parent)+len(args))
	merged = append(merged, parent...)
	merged = append(merged, args...)
	return context.WithValue(ctx, contextKey{}, merged)
}

func contextArgs(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	args, _ := ctx.Value(contextKey{}).([]any)
	return args
}
