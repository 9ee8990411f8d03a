package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/jstmpl/js"
	"github.com/ardnew/jstmpl/log"
)

// Check verifies that JavaScript source parses, typically the output of a
// previous render.
type Check struct {
	File string  `arg:"" help:"JavaScript file or '-' for stdin" default:"-" optional:""`
	Mode js.Mode `       help:"Parse as a whole program or a single expression (program, expression)" default:"program" short:"m"`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) error {
	src, err := readSource("", c.File)
	if err != nil {
		return err
	}

	err = js.Check(src, c.Mode)
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "syntax ok",
		slog.String("file", c.File),
		slog.String("mode", c.Mode.String()),
		slog.Int("bytes", len(src)),
	)

	return nil
}
