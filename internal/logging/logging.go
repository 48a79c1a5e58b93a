// Package logging builds the slog loggers used by the preprocessor and CLI.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// scope is the document position carried in a context: the file being
// processed and, inside it, the component being extracted.
type scope struct {
	file      string
	component string
}

type scopeKey struct{}

func scopeFrom(ctx context.Context) scope {
	if ctx == nil {
		return scope{}
	}
	sc, _ := ctx.Value(scopeKey{}).(scope)
	return sc
}

// WithFile stores the path of the file being processed in ctx. It clears
// any component set for a previous file.
func WithFile(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope{file: path})
}

// WithComponent stores the id of the component being extracted in ctx.
func WithComponent(ctx context.Context, id string) context.Context {
	sc := scopeFrom(ctx)
	sc.component = id
	return context.WithValue(ctx, scopeKey{}, sc)
}

// File returns the path stored by WithFile.
func File(ctx context.Context) string {
	return scopeFrom(ctx).file
}

// scopeHandler stamps records with the file and component held in their context.
type scopeHandler struct {
	slog.Handler
}

// Handle adds "file" and "component" when present and delegates.
func (h scopeHandler) Handle(ctx context.Context, rec slog.Record) error {
	sc := scopeFrom(ctx)
	if sc.file != "" {
		rec.AddAttrs(slog.String("file", sc.file))
	}
	if sc.component != "" {
		rec.AddAttrs(slog.String("component", sc.component))
	}
	return h.Handler.Handle(ctx, rec)
}

func (h scopeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return scopeHandler{h.Handler.WithAttrs(attrs)}
}

func (h scopeHandler) WithGroup(name string) slog.Handler {
	return scopeHandler{h.Handler.WithGroup(name)}
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// New creates a text or JSON logger writing to w, stamped with the scope in context.
func New(w io.Writer, level slog.Level, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if json {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(scopeHandler{h})
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
