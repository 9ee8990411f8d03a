package tmpl

// The builtin environment is built once per process and cloned into every
// Environment, so variables may shadow builtins without affecting the
// shared copy.

import (
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/ardnew/mung"
)

//nolint:gochecknoglobals
var (
	builtinsOnce sync.Once
	builtins     map[string]any
)

func makeBuiltins() map[string]any {
	builtinsOnce.Do(func() {
		builtins = map[string]any{
			"platform": platform{OS: runtime.GOOS, Arch: runtime.GOARCH},
			"hostname": getHostname(),

			"env":  os.Getenv,
			"cwd":  getCwd,
			"raw":  rawFunc,
			"json": jsonFunc,

			"file": map[string]any{
				"exists": fileExists,
				"isDir":  fileIsDir,
			},

			"path": map[string]any{
				"abs":  pathAbs,
				"cat":  filepath.Join,
				"rel":  pathRel,
				"base": filepath.Base,
				"dir":  filepath.Dir,
			},

			"mung": map[string]any{
				"prefix":   mungPrefix,
				"prefixif": mungPrefixIf,
			},
		}
	})

	return maps.Clone(builtins)
}

// Builtins returns the sorted top-level names of the builtin environment.
func Builtins() []string {
	return Env(nil).Names("")
}

type platform struct {
	OS   string `json:"os"   expr:"os"`
	Arch string `json:"arch" expr:"arch"`
}

func getHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return ""
	}

	return hostname
}

func getCwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return pathAbs(".")
	}

	return cwd
}

func fileExists(path string) bool {
	_, err := os.Stat(path)

	return !os.IsNotExist(err)
}

func fileIsDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.IsDir()
}

func pathAbs(path string) string {
	p, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	return p
}

func pathRel(from, to string) string {
	p, err := filepath.Rel(pathAbs(from), pathAbs(to))
	if err != nil {
		return filepath.Join(from, to)
	}

	return p
}

// mungPrefix prepends prefix to the path list subject.
func mungPrefix(key string, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(key),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
	).String()
}

func mungPrefixIf(
	key string,
	predicate func(string) bool,
	prefix ...string,
) string {
	return mung.Make(
		mung.WithSubjectItems(key),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
		mung.WithFilter(predicate),
	).String()
}
