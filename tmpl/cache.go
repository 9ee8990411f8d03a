package tmpl

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/jstmpl/interp"
)

// globalCache stores scanned chunks keyed by source and options hash.
//
//nolint:gochecknoglobals
var globalCache sync.Map

// state tracks the scan of one cached source.
type state struct {
	once   sync.Once
	source string
	chunks []interp.Chunk
	err    error
}

// Parse is like [Compile] but caches the scanned chunks. Parsing the same
// source with the same options again returns a template sharing the
// cached chunks. Templates using a custom parser are never cached.
func Parse(ctx context.Context, source string, opts ...Option) (*Template, error) {
	cfg := makeConfig(opts...)

	if cfg.parser != nil {
		cfg.logger.TraceContext(ctx, "cache bypass",
			slog.Bool("custom_parser", true),
		)

		return Compile(ctx, source, opts...)
	}

	sourceHash := xxh3.HashString(source)
	optsHash := hashOptions(cfg.opts)
	key := strconv.FormatUint(sourceHash^optsHash, 36)

	value, hit := globalCache.LoadOrStore(key, &state{source: source})

	entry, ok := value.(*state)
	if !ok || entry.source != source {
		// Hash collision.
		return Compile(ctx, source, opts...)
	}

	cfg.logger.TraceContext(
		ctx,
		"cache lookup",
		slog.String("source_hash", strconv.FormatUint(sourceHash, 16)),
		slog.String("opts_hash", strconv.FormatUint(optsHash, 16)),
		slog.Bool("cache_hit", hit),
	)

	entry.once.Do(func() {
		entry.chunks, entry.err = interp.All(source)
	})

	if entry.err != nil {
		return nil, entry.err
	}

	return &Template{
		source: source,
		chunks: entry.chunks,
		check:  cfg.opts.check,
		logger: cfg.logger,
	}, nil
}

// ParseReader reads all of r and parses it with [Parse].
func ParseReader(ctx context.Context, r io.Reader, opts ...Option) (*Template, error) {
	source, err := ReadAll(r)
	if err != nil {
		return nil, err
	}

	return Parse(ctx, source, opts...)
}

// ReadAll reads r to completion through an asynchronous read-ahead buffer.
func ReadAll(r io.Reader) (string, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return "", ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	return string(data), nil
}

// ClearCache removes all cached templates.
func ClearCache() {
	globalCache.Clear()
}
