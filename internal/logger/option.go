package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// leveledCore overrides the threshold of the core it wraps.
type leveledCore struct {
	zapcore.Core

	level zapcore.Level
}

// Enabled reports whether lvl passes the override threshold.
func (c *leveledCore) Enabled(lvl zapcore.Level) bool {
	return c.level.Enabled(lvl)
}

// Check registers the core on the entry when its level passes the threshold.
//
//nolint:gocritic // AddCore requires ent to be passed by value.
func (c *leveledCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(ent.Level) {
		return ce
	}

	return ce.AddCore(ent, c)
}

// With keeps the override on derived cores.
//
//nolint:ireturn,nolintlint // zap.WrapCore works with the interface.
func (c *leveledCore) With(fields []zapcore.Field) zapcore.Core {
	return &leveledCore{
		Core:  c.Core.With(fields),
		level: c.level,
	}
}

// WithLevel derives a logger whose threshold is lvl regardless of the parent.
//
//nolint:ireturn,nolintlint // zap.Option is the zap integration point.
func WithLevel(lvl zapcore.Level) zap.Option {
	return zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return &leveledCore{Core: core, level: lvl}
	})
}
