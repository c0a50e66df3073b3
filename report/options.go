package report

import "github.com/networkteam/keplrflow/collector"

// DefaultTruncateAfter is the number of operations and log records listed by default
const DefaultTruncateAfter = 100

// handlerOptions holds configuration for a report Handler.
// Use HandlerOption functions to configure.
type handlerOptions struct {
	// PathPrefix is where the handler is mounted (e.g. "/_keplr").
	PathPrefix string
	// TruncateAfter limits the number of operations and log records shown.
	TruncateAfter uint64
	// LogCollector provides the records of the logs page.
	LogCollector *collector.LogCollector
}

// HandlerOption configures a report Handler.
type HandlerOption func(*handlerOptions)

// WithPathPrefix sets the path prefix where the handler is mounted.
// This is used for generating correct links in the report.
func WithPathPrefix(prefix string) HandlerOption {
	return func(o *handlerOptions) {
		o.PathPrefix = prefix
	}
}

// WithTruncateAfter limits the number of operations and log records shown.
// Default is DefaultTruncateAfter.
func WithTruncateAfter(limit uint64) HandlerOption {
	return func(o *handlerOptions) {
		o.TruncateAfter = limit
	}
}

// WithLogCollector enables the logs page.
func WithLogCollector(logs *collector.LogCollector) HandlerOption {
	return func(o *handlerOptions) {
		o.LogCollector = logs
	}
}
