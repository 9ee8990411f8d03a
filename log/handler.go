package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// palette styles the parts of a pretty log message.
type palette struct {
	key, str, num, yes, no, time, null lipgloss.Style
	trace, debug, info, warn, error    lipgloss.Style
}

func makePalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return palette{
		key:   fg("8"),
		str:   fg("6"),
		num:   fg("3"),
		yes:   fg("2"),
		no:    fg("1"),
		time:  fg("4"),
		null:  fg("8"),
		trace: fg("5"),
		debug: fg("4"),
		info:  fg("2"),
		warn:  fg("3").Bold(true),
		error: fg("1").Bold(true),
	}
}

func (p palette) level(level slog.Level) lipgloss.Style {
	switch {
	case level >= slog.LevelError:
		return p.error
	case level >= slog.LevelWarn:
		return p.warn
	case level >= slog.LevelInfo:
		return p.info
	case level >= slog.LevelDebug:
		return p.debug
	default:
		return p.trace
	}
}

type field struct {
	key   string
	value string
}

// prettyHandler writes colorized messages, either as key=value text on one
// line or as indented JSON.
type prettyHandler struct {
	opts       slog.HandlerOptions
	formatTime FormatTime
	palette    palette
	mu         *sync.Mutex
	w          io.Writer
	attrs      []field
	prefix     string
	json       bool
}

func newPrettyHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime FormatTime,
	format Format,
) *prettyHandler {
	return &prettyHandler{
		opts:       *opts,
		formatTime: formatTime,
		palette:    makePalette(w),
		mu:         &sync.Mutex{},
		w:          w,
		json:       format == FormatJSON,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]field, 0, 4+len(h.attrs)+r.NumAttrs())

	if !r.Time.IsZero() {
		if ts := h.formatTime(r.Time); ts != "" {
			fields = append(fields, h.field(slog.TimeKey, h.palette.time, ts))
		}
	}

	fields = append(fields,
		h.field(slog.LevelKey, h.palette.level(r.Level), levelName(r.Level)))

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			loc := fmt.Sprintf("%s:%d", src.File, src.Line)
			fields = append(fields, h.field(slog.SourceKey, h.palette.str, loc))
		}
	}

	fields = append(fields, h.field(slog.MessageKey, h.palette.str, r.Message))
	fields = append(fields, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		fields = h.appendAttr(fields, h.prefix, a)

		return true
	})

	var buf bytes.Buffer

	if h.json {
		buf.WriteString("{\n")

		for i, f := range fields {
			if i > 0 {
				buf.WriteString(",\n")
			}

			buf.WriteString("  ")
			buf.WriteString(h.palette.key.Render(strconv.Quote(f.key)))
			buf.WriteString(": ")
			buf.WriteString(f.value)
		}

		buf.WriteString("\n}\n")
	} else {
		for i, f := range fields {
			if i > 0 {
				buf.WriteByte(' ')
			}

			buf.WriteString(h.palette.key.Render(f.key))
			buf.WriteByte('=')
			buf.WriteString(f.value)
		}

		buf.WriteByte('\n')
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = slices.Clip(h.attrs)

	for _, a := range attrs {
		c.attrs = h.appendAttr(c.attrs, h.prefix, a)
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

// appendAttr appends a, flattening groups into dotted keys.
func (h *prettyHandler) appendAttr(fields []field, prefix string, a slog.Attr) []field {
	a.Value = a.Value.Resolve()

	if a.Equal(slog.Attr{}) {
		return fields
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}

		for _, ga := range a.Value.Group() {
			fields = h.appendAttr(fields, prefix, ga)
		}

		return fields
	}

	return append(fields, field{key: prefix + a.Key, value: h.value(a.Value)})
}

func (h *prettyHandler) field(key string, style lipgloss.Style, s string) field {
	if h.json {
		s = strconv.Quote(s)
	}

	return field{key: key, value: style.Render(s)}
}

func (h *prettyHandler) value(v slog.Value) string {
	p := h.palette

	switch v.Kind() {
	case slog.KindString:
		return h.field("", p.str, v.String()).value

	case slog.KindInt64:
		return p.num.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return p.num.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return p.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return p.yes.Render("true")
		}

		return p.no.Render("false")

	case slog.KindDuration:
		return h.field("", p.num, v.Duration().String()).value

	case slog.KindTime:
		return h.field("", p.time, h.formatTime(v.Time())).value

	default:
		if v.Any() == nil {
			return p.null.Render("null")
		}

		s := fmt.Sprint(v.Any())
		if !h.json {
			s = strings.TrimSpace(s)
		}

		return h.field("", p.str, s).value
	}
}
