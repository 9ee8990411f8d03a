package interp

import (
	"iter"
	"log/slog"
	"strings"
	"unicode/utf8"
)

const (
	// Marker introduces a placeholder unless escaped.
	Marker = '$'
	// Escape makes the following character literal.
	Escape = '\\'
)

// Scanner partitions template text into [Chunk]s.
//
// A Scanner holds no per-scan state. All iteration state lives in the
// [Cursor] values passed to and returned from [Scanner.Scan], so a single
// Scanner may be shared by any number of concurrent scans.
type Scanner struct {
	parser Parser
}

// NewScanner returns a Scanner that extracts placeholder expressions with
// the given parser. A nil parser selects [AtomParser].
func NewScanner(p Parser) *Scanner {
	if p == nil {
		p = AtomParser{}
	}

	return &Scanner{parser: p}
}

//nolint:gochecknoglobals
var defaultScanner = NewScanner(nil)

// Scan performs one scan step over src from at using [AtomParser].
// See [Scanner.Scan].
func Scan(src string, at Cursor) (Chunk, Cursor, bool, error) {
	return defaultScanner.Scan(src, at)
}

// Chunks returns an iterator over the chunks of src using [AtomParser].
// See [Scanner.Chunks].
func Chunks(src string) iter.Seq2[Chunk, error] {
	return defaultScanner.Chunks(src)
}

// All scans src to completion using [AtomParser]. See [Scanner.All].
func All(src string) ([]Chunk, error) {
	return defaultScanner.All(src)
}

// Parser returns the expression parser used by s.
func (s *Scanner) Parser() Parser {
	if s == nil || s.parser == nil {
		return AtomParser{}
	}

	return s.parser
}

// Scan produces the chunk starting at cursor at and the cursor of the
// following chunk. It returns ok == false once at has reached the end of
// src.
//
// If the character at the cursor is an unescaped [Marker], the chunk is a
// [Placeholder] whose text is the single expression following the marker.
// Otherwise the chunk is a [Literal] run extending to the next unescaped
// marker (the returned cursor rests on that marker) or to the end of src.
//
// Within a literal run, a backslash is removed and the character after it is
// kept verbatim. This covers an escaped marker and, as a separate case, a
// backslash before a double quote: the host literal syntax has already
// reduced the author's \\\" to \", so the scanner strips the remaining layer
// and continues right after the quote. A backslash at the very end of src
// has nothing to escape and is kept.
func (s *Scanner) Scan(src string, at Cursor) (Chunk, Cursor, bool, error) {
	pos := int(at)

	if pos < 0 {
		return Chunk{}, at, false, ErrInvalidCursor.
			With(slog.Int("offset", pos))
	}

	if pos >= len(src) {
		return Chunk{}, at, false, nil
	}

	if src[pos] == Marker {
		return s.placeholder(src, pos)
	}

	var lit strings.Builder

	i := pos
	for i < len(src) {
		r, size := utf8.DecodeRuneInString(src[i:])

		switch r {
		case Marker:
			return Chunk{Kind: Literal, Text: lit.String(), Pos: pos},
				Cursor(i), true, nil

		case Escape:
			if i+size >= len(src) {
				lit.WriteString(src[i:])

				i = len(src)

				continue
			}

			_, n := utf8.DecodeRuneInString(src[i+size:])

			// Escaped markers and quotes are both kept without their
			// backslash, and the run continues so a later unescaped
			// marker still ends it.
			lit.WriteString(src[i+size : i+size+n])

			i += size + n

		default:
			lit.WriteString(src[i : i+size])

			i += size
		}
	}

	return Chunk{Kind: Literal, Text: lit.String(), Pos: pos},
		Cursor(len(src)), true, nil
}

// placeholder extracts the expression following the marker at pos.
func (s *Scanner) placeholder(src string, pos int) (Chunk, Cursor, bool, error) {
	span, end, err := s.Parser().ParseExpr(src, pos+1)
	if err != nil {
		return Chunk{}, Cursor(pos), false, ErrMalformedExpression.Wrap(err).
			With(slog.Int("offset", pos))
	}

	return Chunk{Kind: Placeholder, Text: span, Pos: pos}, Cursor(end), true, nil
}

// Chunks returns an iterator over the chunks of src.
//
// Chunks are produced lazily, one scan step per iteration. If a step fails,
// the iterator yields a zero Chunk with the error and stops. Breaking out
// of the loop early requires no cleanup.
func (s *Scanner) Chunks(src string) iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		at := Start

		for {
			chunk, next, ok, err := s.Scan(src, at)
			if err != nil {
				yield(Chunk{}, err)

				return
			}

			if !ok || !yield(chunk, nil) {
				return
			}

			at = next
		}
	}
}

// All scans src to completion and returns its chunks in order.
func (s *Scanner) All(src string) ([]Chunk, error) {
	var chunks []Chunk

	for chunk, err := range s.Chunks(src) {
		if err != nil {
			return nil, err
		}

		chunks = append(chunks, chunk)
	}

	return chunks, nil
}
