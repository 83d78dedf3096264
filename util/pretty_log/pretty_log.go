package prettylog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"sync"

	"github.com/fatih/color"
)

type PrettyHandlerOptions struct {
	SlogOpts slog.HandlerOptions
	// ContextAttrs extracts request-scoped attributes, e.g. a request id.
	ContextAttrs func(ctx context.Context) []slog.Attr
}

// PrettyHandler writes one coloured line per record:
// [15:04:05.000] LEVEL: message {"attr":"value"}
type PrettyHandler struct {
	slog.Handler
	l      *log.Logger
	opts   PrettyHandlerOptions
	attrs  []slog.Attr
	groups []string
	mtx    *sync.Mutex
}

func (h *PrettyHandler) Handle(ctx context.Context, r slog.Record) error {
	level := r.Level.String() + ":"

	switch {
	case r.Level >= slog.LevelError:
		level = color.RedString(level)
	case r.Level >= slog.LevelWarn:
		level = color.YellowString(level)
	case r.Level >= slog.LevelInfo:
		level = color.BlueString(level)
	default:
		level = color.MagentaString(level)
	}

	fields := map[string]any{}

	if h.opts.ContextAttrs != nil {
		for _, a := range h.opts.ContextAttrs(ctx) {
			fields[a.Key] = a.Value.Resolve().Any()
		}
	}

	for _, a := range h.attrs {
		put(fields, nil, a)
	}

	r.Attrs(func(a slog.Attr) bool {
		put(fields, h.groups, a)
		return true
	})

	bs, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	timeStr := r.Time.Format("[15:04:05.000]")
	msg := color.CyanString(r.Message)

	h.mtx.Lock()
	defer h.mtx.Unlock()

	h.l.Println(timeStr, level, msg, color.WhiteString(string(bs)))

	return nil
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cpy := h.clone()
	for _, a := range attrs {
		cpy.attrs = append(cpy.attrs, qualify(h.groups, a))
	}
	cpy.Handler = h.Handler.WithAttrs(attrs)
	return cpy
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if len(name) == 0 {
		return h
	}
	cpy := h.clone()
	cpy.groups = append(cpy.groups, name)
	cpy.Handler = h.Handler.WithGroup(name)
	return cpy
}

func (h *PrettyHandler) clone() *PrettyHandler {
	return &PrettyHandler{
		Handler: h.Handler,
		l:       h.l,
		opts:    h.opts,
		attrs:   append([]slog.Attr(nil), h.attrs...),
		groups:  append([]string(nil), h.groups...),
		mtx:     h.mtx,
	}
}

// qualify prefixes the key of an attr added under groups so it is not
// regrouped by later WithGroup calls.
func qualify(groups []string, a slog.Attr) slog.Attr {
	for i := len(groups) - 1; i >= 0; i-- {
		a = slog.Attr{Key: groups[i], Value: slog.GroupValue(a)}
	}
	return a
}

func put(fields map[string]any, groups []string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	target := fields
	for _, g := range groups {
		next, ok := target[g].(map[string]any)
		if !ok {
			next = map[string]any{}
			target[g] = next
		}
		target = next
	}

	set(target, a)
}

func set(target map[string]any, a slog.Attr) {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() != slog.KindGroup {
		v := a.Value.Any()
		if err, ok := v.(error); ok {
			v = err.Error()
		} else if s, ok := v.(fmt.Stringer); ok && a.Value.Kind() == slog.KindAny {
			v = s.String()
		}
		target[a.Key] = v
		return
	}

	group := target
	if len(a.Key) > 0 {
		next, ok := target[a.Key].(map[string]any)
		if !ok {
			next = map[string]any{}
			target[a.Key] = next
		}
		group = next
	}

	for _, ga := range a.Value.Group() {
		set(group, ga)
	}
}

func NewPrettyHandler(out io.Writer, opts PrettyHandlerOptions) *PrettyHandler {
	h := &PrettyHandler{
		Handler: slog.NewJSONHandler(out, &opts.SlogOpts),
		l:       log.New(out, "", 0),
		opts:    opts,
		mtx:     &sync.Mutex{},
	}

	return h
}
