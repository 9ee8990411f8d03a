package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/jstmpl/js"
	"github.com/ardnew/jstmpl/log"
	"github.com/ardnew/jstmpl/tmpl"
)

// Render renders a template, substituting each placeholder with the
// JavaScript source of its value.
type Render struct {
	Template string   `arg:"" help:"Template text; read from --file or stdin when omitted" optional:""`
	File     string   `       help:"Template file or '-' for stdin"                                   placeholder:"FILE" short:"f"`
	Vars     Vars     `embed:""`
	Slot     []string `       help:"Fill placeholders in order with the given values instead of evaluating them" placeholder:"VALUE"`
	Check    js.Mode  `       help:"Verify the output parses as JavaScript (none, program, expression)" default:"none"`
	Newline  bool     `       help:"Terminate output with a newline"                                   default:"true" negatable:""`
}

// Run executes the render command.
func (r *Render) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src, err := readSource(r.Template, r.File)
	if err != nil {
		return err
	}

	eval, err := r.evaluator()
	if err != nil {
		return err
	}

	out, err := tmpl.Render(ctx, src, eval,
		tmpl.WithCheck(r.Check),
		tmpl.WithLogger(log.Default()),
	)
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "rendered template",
		slog.Int("source_bytes", len(src)),
		slog.Int("output_bytes", len(out)),
		slog.String("check", r.Check.String()),
	)

	if r.Newline {
		out += "\n"
	}

	_, err = io.WriteString(stdout(ctx), out)
	if err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

// evaluator returns the slot values when given, otherwise the expression
// environment.
func (r *Render) evaluator() (tmpl.Evaluator, error) {
	if len(r.Slot) == 0 {
		env, err := r.Vars.Environment()
		if err != nil {
			return nil, err
		}

		return env, nil
	}

	if len(r.Vars.Env) > 0 || len(r.Vars.Define) > 0 {
		log.Warn("slot values given; ignoring environment",
			slog.Int("slots", len(r.Slot)),
		)
	}

	values := make([]any, len(r.Slot))
	for i, s := range r.Slot {
		values[i] = decodeScalar(s)
	}

	return tmpl.Slots(values...), nil
}
