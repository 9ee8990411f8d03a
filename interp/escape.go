package interp

import (
	"strings"
	"unicode/utf8"
)

// Unescape resolves every backslash escape in s the way a literal run is
// scanned: the backslash is dropped and the following character is kept. A
// trailing backslash is kept. Markers are left in place, escaped or not,
// so the result is the text the scanner's chunks describe.
//
// Unescape does not know where placeholder expressions begin and end. For
// text whose expressions contain no backslash,
//
//	Reassemble(chunks) == Unescape(src)
//
// holds for the chunks of src.
func Unescape(s string) string {
	if !strings.ContainsRune(s, Escape) {
		return s
	}

	var b strings.Builder

	b.Grow(len(s))

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == Escape && i+size < len(s) {
			_, n := utf8.DecodeRuneInString(s[i+size:])
			b.WriteString(s[i+size : i+size+n])

			i += size + n

			continue
		}

		b.WriteString(s[i : i+size])

		i += size
	}

	return b.String()
}

// Reassemble concatenates chunks back into marked-up text: literals
// verbatim and placeholders prefixed with [Marker].
func Reassemble(chunks []Chunk) string {
	var b strings.Builder

	for _, c := range chunks {
		if c.Kind == Placeholder {
			b.WriteRune(Marker)
		}

		b.WriteString(c.Text)
	}

	return b.String()
}

// EscapeText returns s with every [Marker] and [Escape] character escaped, so
// that scanning the result yields s as a single literal chunk.
func EscapeText(s string) string {
	if !strings.ContainsAny(s, string([]rune{Marker, Escape})) {
		return s
	}

	var b strings.Builder

	b.Grow(len(s) + 8)

	for i := 0; i < len(s); i++ {
		if s[i] == Marker || s[i] == Escape {
			b.WriteByte(Escape)
		}

		b.WriteByte(s[i])
	}

	return b.String()
}
