package tmpl

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/ardnew/jstmpl/interp"
	"github.com/ardnew/jstmpl/js"
	"github.com/ardnew/jstmpl/log"
)

// Template is a scanned template. It is immutable and safe for concurrent
// use by multiple goroutines.
type Template struct {
	source string
	chunks []interp.Chunk
	check  js.Mode
	logger log.Logger
}

// Render scans source and writes each chunk to the result as it is
// produced: literals verbatim, placeholders evaluated by eval and rendered
// with [js.Render].
//
// Scanning and evaluation are interleaved, so a malformed expression is
// reported only after every placeholder before it has been evaluated.
func Render(
	ctx context.Context,
	source string,
	eval Evaluator,
	opts ...Option,
) (string, error) {
	cfg := makeConfig(opts...)
	r := renderer{eval: eval, logger: cfg.logger}

	cfg.logger.TraceContext(
		ctx,
		"render",
		slog.Int("source_bytes", len(source)),
	)

	for chunk, err := range interp.NewScanner(cfg.parser).Chunks(source) {
		if err != nil {
			return "", err
		}

		err = r.write(ctx, chunk)
		if err != nil {
			return "", err
		}
	}

	return r.finish(ctx, cfg.opts.check)
}

// Compile scans source to completion. Every malformed expression is
// reported here rather than during [Template.Execute].
func Compile(
	ctx context.Context,
	source string,
	opts ...Option,
) (*Template, error) {
	cfg := makeConfig(opts...)

	chunks, err := interp.NewScanner(cfg.parser).All(source)
	if err != nil {
		return nil, err
	}

	cfg.logger.TraceContext(
		ctx,
		"compile",
		slog.Int("source_bytes", len(source)),
		slog.Int("chunks", len(chunks)),
	)

	return &Template{
		source: source,
		chunks: chunks,
		check:  cfg.opts.check,
		logger: cfg.logger,
	}, nil
}

// Execute renders t with placeholder values from eval.
func (t *Template) Execute(ctx context.Context, eval Evaluator) (string, error) {
	r := renderer{eval: eval, logger: t.logger}

	for _, chunk := range t.chunks {
		err := r.write(ctx, chunk)
		if err != nil {
			return "", err
		}
	}

	return r.finish(ctx, t.check)
}

// Source returns the text t was compiled from.
func (t *Template) Source() string { return t.source }

// Chunks returns a copy of the chunks of t in source order.
func (t *Template) Chunks() []interp.Chunk { return slices.Clone(t.chunks) }

// Placeholders returns the expression text of each placeholder in t.
func (t *Template) Placeholders() []string {
	var exprs []string

	for _, chunk := range t.chunks {
		if chunk.IsPlaceholder() {
			exprs = append(exprs, chunk.Text)
		}
	}

	return exprs
}

// renderer accumulates the output of one rendering.
type renderer struct {
	b      strings.Builder
	eval   Evaluator
	logger log.Logger
	slot   int
}

func (r *renderer) write(ctx context.Context, chunk interp.Chunk) error {
	if chunk.IsLiteral() {
		r.b.WriteString(chunk.Text)

		return nil
	}

	err := ctx.Err()
	if err != nil {
		return err
	}

	if r.eval == nil {
		return ErrEvaluate.With(slog.String("issue", "nil evaluator"))
	}

	index := r.slot
	r.slot++

	attrs := []slog.Attr{
		slog.String("placeholder", chunk.Text),
		slog.Int("offset", chunk.Pos),
		slog.Int("index", index),
	}

	value, err := r.eval.Evaluate(withIndex(ctx, index), chunk.Text)
	if err != nil {
		return ErrEvaluate.Wrap(err).With(attrs...)
	}

	code, err := js.Render(value)
	if err != nil {
		return ErrRender.Wrap(err).With(attrs...)
	}

	r.logger.TraceContext(ctx, "placeholder", append(attrs,
		slog.String("code", code),
	)...)

	r.b.WriteString(code)

	return nil
}

func (r *renderer) finish(ctx context.Context, mode js.Mode) (string, error) {
	out := r.b.String()

	err := js.Check(out, mode)
	if err != nil {
		return "", ErrCheck.Wrap(err).With(slog.String("mode", mode.String()))
	}

	r.logger.TraceContext(
		ctx,
		"rendered",
		slog.Int("placeholders", r.slot),
		slog.Int("output_bytes", len(out)),
	)

	return out, nil
}
