// Package cli contains the command line interface for jstmpl.
//
// # Usage
//
// Rendering is the default command, so a template can be given directly:
//
//	jstmpl -D name=app 'const name = $name;'
//	jstmpl render -f app.js.tmpl -e vars.yaml -e .env
//	jstmpl scan -o yaml -f app.js.tmpl
//	jstmpl render -f app.js.tmpl -e vars.yaml | jstmpl check
//	jstmpl repl -e vars.yaml
//
// # Configuration
//
// Flag defaults are read from config.yaml (and config.json) in the user
// configuration directory. Run "jstmpl init" to write the current flag
// values there:
//
//	jstmpl --log-level=debug --no-log-pretty init
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize text output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o jstmpl .
//
//   - --pprof-mode: Enable profiling (see [profile.Modes])
//   - --pprof-dir: Set profile output directory
package cli
