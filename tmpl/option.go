package tmpl

import (
	"bytes"
	"encoding/gob"

	"github.com/zeebo/xxh3"

	"github.com/ardnew/jstmpl/interp"
	"github.com/ardnew/jstmpl/js"
	"github.com/ardnew/jstmpl/log"
)

// optionsKey holds the options that change what a template compiles to.
// It is gob-encoded when hashing cache keys.
type optionsKey struct {
	check js.Mode
}

type config struct {
	opts   optionsKey
	parser interp.Parser // nil selects interp.AtomParser
	logger log.Logger    // outside optionsKey, doesn't affect cache
}

// Option configures template compilation and execution.
type Option func(*config)

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithParser sets the parser used to extract placeholder expressions.
// Templates compiled with a custom parser bypass the template cache.
func WithParser(parser interp.Parser) Option {
	return func(c *config) {
		c.parser = parser
	}
}

// WithCheck syntax-checks rendered output in the given mode.
func WithCheck(mode js.Mode) Option {
	return func(c *config) {
		c.opts.check = mode
	}
}

func makeConfig(opts ...Option) config {
	var c config

	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// hashOptions encodes options using gob and hashes with xxh3.
func hashOptions(opts optionsKey) uint64 {
	var buf bytes.Buffer

	_ = gob.NewEncoder(&buf).Encode(int(opts.check))

	return xxh3.Hash(buf.Bytes())
}
