package interp

//go:generate go tool stringer --linecomment --type Kind --output kind_string.go

// Kind identifies the variant of a [Chunk].
type Kind int

const (
	Literal     Kind = iota // literal
	Placeholder             // placeholder
)

// Chunk is one unit of scan output.
//
// For [Literal] chunks, Text is emitted verbatim. For [Placeholder] chunks,
// Text is the unparsed source of an embedded expression, to be resolved by
// the caller.
type Chunk struct {
	Kind Kind
	Text string
	// Pos is the byte offset of the first source character covered by the
	// chunk. For placeholders this is the offset of the '$' marker.
	Pos int
}

// IsLiteral reports whether c is a [Literal] chunk.
func (c Chunk) IsLiteral() bool { return c.Kind == Literal }

// IsPlaceholder reports whether c is a [Placeholder] chunk.
func (c Chunk) IsPlaceholder() bool { return c.Kind == Placeholder }

// String returns the chunk as it would appear in marked-up template text:
// literals verbatim, placeholders prefixed with the marker.
func (c Chunk) String() string {
	if c.Kind == Placeholder {
		return string(Marker) + c.Text
	}

	return c.Text
}

// Cursor is an opaque position in source text. It is a byte offset and
// always lands on the boundary of a decoded rune.
//
// The zero Cursor is the start of the text.
type Cursor int

// Start is the cursor positioned before the first character.
const Start Cursor = 0

// Offset returns the byte offset of c.
func (c Cursor) Offset() int { return int(c) }
