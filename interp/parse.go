package interp

import (
	"log/slog"
	"unicode"
	"unicode/utf8"

	"github.com/expr-lang/expr/parser"
)

// ErrSyntax reports an atom that the expression language rejects.
var ErrSyntax = NewError("syntax error")

// Parser extracts a single expression from source text.
//
// ParseExpr parses exactly one expression beginning at byte offset at of src
// and stops without consuming anything that follows it. It returns the
// source text of the expression and the offset immediately after it.
type Parser interface {
	ParseExpr(src string, at int) (span string, end int, err error)
}

// ParserFunc adapts an ordinary function to the [Parser] interface.
type ParserFunc func(src string, at int) (string, int, error)

// ParseExpr calls f(src, at).
func (f ParserFunc) ParseExpr(src string, at int) (string, int, error) {
	return f(src, at)
}

// AtomParser is the default [Parser]. It reads one atom of the expr-lang
// expression language:
//
//   - an identifier: name, _tmp, café
//   - a number: 42, 1_000, 0x2A, 3.14, 6.02e23
//   - a string: "a\"b", 'c', `raw`
//   - a bracketed group: (a + b), [1, 2], {key: value}
//
// Operators, calls and member access are only part of the expression when
// they are inside a group, so "$a.b" yields the atom a. The atom is checked
// with the expr-lang parser before it is returned.
type AtomParser struct{}

// ParseExpr implements [Parser].
func (AtomParser) ParseExpr(src string, at int) (string, int, error) {
	if at < 0 || at >= len(src) {
		return "", at, ErrUnexpectedEOF.With(slog.Int("offset", at))
	}

	r, _ := utf8.DecodeRuneInString(src[at:])

	var (
		end int
		err error
	)

	switch {
	case isIdentifierStart(r):
		end = scanIdentifier(src, at)

	case isDigit(r):
		end = scanNumber(src, at)

	case r == '"' || r == '\'' || r == '`':
		end, err = scanString(src, at)

	case closerOf(r) != 0:
		end, err = scanGroup(src, at)

	default:
		return "", at, ErrNotExpression.With(
			slog.Int("offset", at),
			slog.String("found", string(r)),
		)
	}

	if err != nil {
		return "", at, err
	}

	span := src[at:end]

	if _, err := parser.Parse(span); err != nil {
		return "", at, ErrSyntax.Wrap(err).With(
			slog.Int("offset", at),
			slog.String("source", span),
		)
	}

	return span, end, nil
}

func scanIdentifier(src string, at int) int {
	_, size := utf8.DecodeRuneInString(src[at:])

	i := at + size
	for i < len(src) {
		r, size := utf8.DecodeRuneInString(src[i:])
		if !isIdentifierContinue(r) {
			break
		}

		i += size
	}

	return i
}

func scanNumber(src string, at int) int {
	i := at

	// Radix prefixes take any alphanumeric digits; the expr-lang parser
	// rejects the ones that are out of range.
	if src[i] == '0' && i+1 < len(src) && isRadix(src[i+1]) {
		i += 2
		for i < len(src) && (isAlnum(src[i]) || src[i] == '_') {
			i++
		}

		return i
	}

	i = skipDigits(src, i)

	if i+1 < len(src) && src[i] == '.' && isDigit(rune(src[i+1])) {
		i = skipDigits(src, i+1)
	}

	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}

		if j < len(src) && isDigit(rune(src[j])) {
			i = skipDigits(src, j)
		}
	}

	return i
}

func skipDigits(src string, i int) int {
	for i < len(src) && (isDigit(rune(src[i])) || src[i] == '_') {
		i++
	}

	return i
}

// scanString returns the offset just past the closing quote of the string
// literal opening at src[at]. Backquoted strings are raw.
func scanString(src string, at int) (int, error) {
	q := src[at]

	for i := at + 1; i < len(src); i++ {
		switch src[i] {
		case '\\':
			if q != '`' {
				i++ // skip escaped byte
			}
		case q:
			return i + 1, nil
		}
	}

	return at, ErrUnterminatedString.With(slog.Int("offset", at))
}

// scanGroup returns the offset just past the bracket that closes the one
// opening at src[at]. Nested brackets of every kind must balance.
func scanGroup(src string, at int) (int, error) {
	var want []byte

	for i := at; i < len(src); {
		c := src[i]

		switch {
		case c == '"' || c == '\'' || c == '`':
			end, err := scanString(src, i)
			if err != nil {
				return at, err
			}

			i = end

			continue

		case closerOf(rune(c)) != 0:
			want = append(want, byte(closerOf(rune(c))))

		case c == ')' || c == ']' || c == '}':
			if len(want) == 0 || want[len(want)-1] != c {
				return at, ErrUnbalanced.With(
					slog.Int("offset", i),
					slog.String("found", string(c)),
				)
			}

			want = want[:len(want)-1]
			if len(want) == 0 {
				return i + 1, nil
			}
		}

		i++
	}

	return at, ErrUnbalanced.With(
		slog.Int("offset", at),
		slog.String("expected", string(want[len(want)-1])),
	)
}

func closerOf(r rune) rune {
	switch r {
	case '(':
		return ')'
	case '[':
		return ']'
	case '{':
		return '}'
	default:
		return 0
	}
}

// Character classification

func isIdentifierStart(r rune) bool {
	return unicode.In(r,
		unicode.L,  // Letter
		unicode.Nl, // Letter, Number
		unicode.Other_ID_Start,
	) || r == '_'
}

func isIdentifierContinue(r rune) bool {
	return unicode.In(r,
		unicode.L,  // Letter
		unicode.Nl, // Letter, Number
		unicode.Other_ID_Start,
		unicode.Mn, // Mark, Nonspacing
		unicode.Mc, // Mark, Spacing Combining
		unicode.Nd, // Number, Decimal Digit
		unicode.Pc, // Punctuation, Connector
		unicode.Other_ID_Continue,
	)
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isAlnum(c byte) bool {
	return isDigit(rune(c)) || (c|0x20 >= 'a' && c|0x20 <= 'z')
}

func isRadix(c byte) bool {
	switch c {
	case 'x', 'X', 'o', 'O', 'b', 'B':
		return true
	default:
		return false
	}
}
