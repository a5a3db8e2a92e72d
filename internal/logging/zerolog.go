package logging

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type zlogger struct {
	l zerolog.Logger
}

func newZerolog(cfg Config, out io.Writer) Logger {
	if !strings.EqualFold(cfg.Format, "json") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: true}
	}
	ctx := zerolog.New(out).Level(zerologLevel(cfg.Level)).With().Timestamp()
	if cfg.AddSource {
		ctx = ctx.Caller()
	}
	return &zlogger{l: ctx.Logger()}
}

func (z *zlogger) With(fields ...Field) Logger {
	ctx := z.l.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, f.Value)
	}
	return &zlogger{l: ctx.Logger()}
}

func (z *zlogger) Debug(ctx context.Context, msg string, fields ...Field) {
	z.emit(z.l.Debug(), msg, fields)
}

func (z *zlogger) Info(ctx context.Context, msg string, fields ...Field) {
	z.emit(z.l.Info(), msg, fields)
}

func (z *zlogger) Warn(ctx context.Context, msg string, fields ...Field) {
	z.emit(z.l.Warn(), msg, fields)
}

func (z *zlogger) Error(ctx context.Context, msg string, fields ...Field) {
	z.emit(z.l.Error(), msg, fields)
}

func (z *zlogger) emit(ev *zerolog.Event, msg string, fields []Field) {
	if ev == nil {
		return
	}
	for _, f := range fields {
		ev = ev.Interface(f.Key, f.Value)
	}
	ev.Msg(msg)
}

func zerologLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
