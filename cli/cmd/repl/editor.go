package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/jstmpl/log"
	"github.com/ardnew/jstmpl/tmpl"
)

const defaultEditor = "vi"

// editTemplateCommand implements [tea.ExecCommand] for the template
// edit-scan-retry loop. It writes the current template to a temp file, opens
// the user's editor, and scans the result. On a malformed placeholder the
// user is prompted to re-edit; declining exits the program.
type editTemplateCommand struct {
	source  string
	ctxFunc func() context.Context
	result  *tmpl.Template
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editTemplateCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editTemplateCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editTemplateCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-scan-retry loop. If the user declines to re-edit, it
// returns [ErrEditDeclined].
func (c *editTemplateCommand) Run() error {
	ctx := c.ctxFunc()
	content := c.source

	f, err := os.CreateTemp(os.TempDir(), "jstmpl-repl-*.js")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	if err := f.Chmod(0o600); err != nil {
		f.Close()

		return err
	}

	f.Close()

	for {
		if err := os.WriteFile(tmpPath, []byte(content), 0o600); err != nil {
			return err
		}

		r, err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath)
		if err != nil {
			return err
		}

		src, err := tmpl.ReadAll(r)
		if err != nil {
			return err
		}

		// An empty file cancels the edit.
		if strings.TrimSpace(src) == "" {
			return nil
		}

		t, scanErr := tmpl.Compile(ctx, src, tmpl.WithLogger(c.logger))
		c.logger.TraceContext(
			ctx,
			"editor scan attempt",
			slog.Int("content_length", len(src)),
			slog.Bool("success", scanErr == nil),
		)

		if scanErr == nil {
			c.result = t

			return nil
		}

		fmt.Fprintf(c.stderr, "\nScan error: %s\n", scanErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		response := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if response == "n" || response == "no" {
			return ErrEditDeclined
		}

		content = src
	}
}

// runEditor launches the user's editor on the given file path and returns a
// reader over the edited file content.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) (io.Reader, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return strings.NewReader(string(data)), nil
}
