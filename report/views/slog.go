package views

import (
	"iter"
	"log/slog"
)

func iterSlogAttrs(record slog.Record) iter.Seq[slog.Attr] {
	return func(yield func(attr slog.Attr) bool) {
		record.Attrs(yield)
	}
}

func levelVariant(level slog.Level) BadgeVariant {
	switch {
	case level >= slog.LevelError:
		return BadgeVariantError
	case level >= slog.LevelWarn:
		return BadgeVariantWarning
	case level >= slog.LevelInfo:
		return BadgeVariantSecondary
	default:
		return BadgeVariantOutline
	}
}
