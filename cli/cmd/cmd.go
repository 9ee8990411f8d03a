package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/jstmpl/tmpl"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdout returns the writer command output is printed to.
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// stdin is replaced in tests.
var stdin io.Reader = os.Stdin

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// readSource returns the template text given on the command line, the
// content of file, or standard input when neither is given.
func readSource(text, file string) (string, error) {
	switch {
	case file == "" && text != "":
		return text, nil

	case file == "" || file == stdinSource:
		src, err := tmpl.ReadAll(stdin)
		if err != nil {
			return "", ErrReadSource.Wrap(err).With(slog.String("file", stdinSource))
		}

		return src, nil
	}

	f, err := os.Open(file)
	if err != nil {
		return "", ErrReadSource.Wrap(err).With(slog.String("file", file))
	}
	defer f.Close()

	src, err := tmpl.ReadAll(f)
	if err != nil {
		return "", ErrReadSource.Wrap(err).With(slog.String("file", file))
	}

	return src, nil
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// uniqueFiles returns paths with duplicate references to the same file
// removed, keeping the first occurrence of each. Paths that cannot be
// resolved are kept so that opening them reports the error.
func uniqueFiles(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}

	seen := make(map[fileKey]struct{}, len(paths))
	out := make([]string, 0, len(paths))

	for _, path := range paths {
		key, ok := resolveFileKey(path)
		if ok {
			if _, dup := seen[key]; dup {
				continue
			}

			seen[key] = struct{}{}
		}

		out = append(out, path)
	}

	return out
}

// resolveFileKey resolves symlinks in path and returns the device/inode
// pair of its target.
func resolveFileKey(path string) (fileKey, bool) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fileKey{}, false
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return fileKey{}, false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return fileKey{}, false
	}

	return makeFileKey(info)
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}
