package cmd

import (
	"context"

	"github.com/ardnew/jstmpl/cli/cmd/repl"
	"github.com/ardnew/jstmpl/js"
	"github.com/ardnew/jstmpl/log"
)

// Repl starts the interactive template console.
type Repl struct {
	File  string  `help:"Load a template into the edit buffer" placeholder:"FILE" short:"f" type:"existingfile"`
	Vars  Vars    `embed:""`
	Check js.Mode `help:"Verify rendered output parses as JavaScript (none, program, expression)" default:"none"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	env, err := r.Vars.Environment()
	if err != nil {
		return err
	}

	var src string

	if r.File != "" {
		src, err = readSource("", r.File)
		if err != nil {
			return err
		}
	}

	var cacheDir string
	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	return repl.Run(ctx, env, src, r.Check, cacheDir, log.Default())
}
