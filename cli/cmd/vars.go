package cmd

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/tidwall/jsonc"

	"github.com/ardnew/jstmpl/log"
	"github.com/ardnew/jstmpl/tmpl"
)

// Vars are the flags shared by commands that evaluate placeholders against
// an expression environment.
type Vars struct {
	Env    []string `help:"Load variables from a .yaml, .yml, .json, .jsonc or .env file" placeholder:"FILE" short:"e" type:"existingfile"`
	Define []string `help:"Define a variable; dotted keys create nested maps"              placeholder:"KEY=VALUE" short:"D"`
}

// Environment loads every env file in order, then applies the definitions.
// Later sources override earlier ones; nested maps are merged.
func (v *Vars) Environment() (*tmpl.Environment, error) {
	vars, err := v.load()
	if err != nil {
		return nil, err
	}

	return tmpl.Env(vars), nil
}

func (v *Vars) load() (map[string]any, error) {
	vars := make(map[string]any)

	for _, path := range uniqueFiles(v.Env) {
		m, err := loadEnvFile(path)
		if err != nil {
			return nil, err
		}

		log.Debug("loaded environment file",
			slog.String("file", path),
			slog.Int("vars", len(m)),
		)

		merge(vars, m)
	}

	for _, def := range v.Define {
		key, val, ok := strings.Cut(def, "=")
		if !ok || key == "" {
			return nil, ErrDefine.With(slog.String("define", def))
		}

		set(vars, strings.Split(key, "."), decodeScalar(val))
	}

	return vars, nil
}

// loadEnvFile decodes the file at path according to its extension.
func loadEnvFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrReadEnv.Wrap(err).With(slog.String("file", path))
	}

	ext := strings.ToLower(filepath.Ext(path))

	var m map[string]any

	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &m)

	case ".json", ".jsonc":
		err = json.Unmarshal(jsonc.ToJSON(data), &m)

	case ".env":
		var env map[string]string

		env, err = godotenv.Parse(bytes.NewReader(data))
		if err == nil {
			m = make(map[string]any, len(env))
			for k, s := range env {
				m[k] = s
			}
		}

	default:
		return nil, ErrEnvFormat.With(
			slog.String("file", path),
			slog.String("ext", ext),
		)
	}

	if err != nil {
		return nil, ErrReadEnv.Wrap(err).With(slog.String("file", path))
	}

	if m == nil {
		m = make(map[string]any)
	}

	return m, nil
}

// decodeScalar interprets a command-line value as a YAML scalar, so that
// numbers and booleans keep their type. Values that fail to decode are
// kept as strings.
func decodeScalar(s string) any {
	if s == "" {
		return ""
	}

	var v any

	err := yaml.Unmarshal([]byte(s), &v)
	if err != nil || v == nil {
		return s
	}

	return v
}

// merge copies src into dst, merging nested maps recursively.
func merge(dst, src map[string]any) {
	for k, v := range src {
		sm, ok := v.(map[string]any)
		if !ok {
			dst[k] = v

			continue
		}

		dm, ok := dst[k].(map[string]any)
		if !ok {
			dst[k] = maps.Clone(sm)

			continue
		}

		merge(dm, sm)
	}
}

// set assigns value at the nested key path, replacing any non-map value
// along the way.
func set(m map[string]any, path []string, value any) {
	for _, seg := range path[:len(path)-1] {
		next, ok := m[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[seg] = next
		}

		m = next
	}

	m[path[len(path)-1]] = value
}
