// Package log provides a concurrency-safe structured logger based on
// [log/slog], with a trace level below debug.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
//	logger.Info("rendered", slog.Int("placeholders", 3))
//
// Options are applied when a [Logger] is made; [Logger.Wrap] derives a
// logger with some options changed and [Logger.With] one that adds
// attributes to every message. The zero Logger discards everything, so
// libraries can accept a Logger without requiring one.
//
// Pretty output ([WithPretty], on by default) colorizes messages when the
// destination is a terminal. Otherwise it is plain key=value text, or
// indented JSON.
//
// The package-level functions log through a default logger writing to
// standard error, replaced with [SetDefault] or reconfigured with [Config].
package log
