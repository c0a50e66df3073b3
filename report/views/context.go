package views

import "context"

type HandlerOptions struct {
	// PathPrefix where the report handler is mounted, empty at the root
	PathPrefix string
	// TruncateAfter is the number of operations and log records listed
	TruncateAfter uint64
	// HasLogs is set when a log collector is attached
	HasLogs bool
}

type handlerOptionsKey struct{}

func WithHandlerOptions(ctx context.Context, opts HandlerOptions) context.Context {
	return context.WithValue(ctx, handlerOptionsKey{}, opts)
}

func handlerOptionsFrom(ctx context.Context) HandlerOptions {
	opts, _ := ctx.Value(handlerOptionsKey{}).(HandlerOptions)
	return opts
}

func link(ctx context.Context, path string) string {
	return handlerOptionsFrom(ctx).PathPrefix + path
}
