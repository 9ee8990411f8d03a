package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomParser_ParseExpr(t *testing.T) {
	tests := []struct {
		name string
		src  string
		at   int
		want string
	}{
		{"identifier", "$name rest", 1, "name"},
		{"identifier with digits", "$x1_y2!", 1, "x1_y2"},
		{"unicode identifier", "$café!", 1, "café"},
		{"integer", "$42px", 1, "42"},
		{"underscore separated", "$1_000;", 1, "1_000"},
		{"hexadecimal", "$0x2A,", 1, "0x2A"},
		{"float", "$3.14x", 1, "3.14"},
		{"exponent", "$6.02e23 ", 1, "6.02e23"},
		{"signed exponent", "$1e-3]", 1, "1e-3"},
		{"trailing dot is not a fraction", "$1.", 1, "1"},
		{"double quoted string", `$"a\"b" tail`, 1, `"a\"b"`},
		{"single quoted string", "$'c'd", 1, "'c'"},
		{"raw string", "$`a\\`b", 1, "`a\\`"},
		{"parenthesized", "$(a + b) * c", 1, "(a + b)"},
		{"nested groups", "$(f([1, {k: 2}]))!", 1, "(f([1, {k: 2}]))"},
		{"array", "$[1, 2, 3].length", 1, "[1, 2, 3]"},
		{"map", "${a: 1};", 1, "{a: 1}"},
		{"brackets inside strings", `$(")" + "]")x`, 1, `(")" + "]")`},
		{"mid-text offset", "abc $def ghi", 5, "def"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			span, end, err := AtomParser{}.ParseExpr(tt.src, tt.at)
			require.NoError(t, err)
			assert.Equal(t, tt.want, span)
			assert.Equal(t, tt.at+len(tt.want), end)
		})
	}
}

func TestAtomParser_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		at   int
		want error
	}{
		{"end of input", "$", 1, ErrUnexpectedEOF},
		{"negative offset", "$x", -1, ErrUnexpectedEOF},
		{"whitespace", "$ x", 1, ErrNotExpression},
		{"closing bracket", "$)", 1, ErrNotExpression},
		{"unterminated double quote", `$"abc\"`, 1, ErrUnterminatedString},
		{"unterminated raw string", "$`abc", 1, ErrUnterminatedString},
		{"unterminated string in group", `$(f("x)`, 1, ErrUnterminatedString},
		{"unclosed group", "$(a", 1, ErrUnbalanced},
		{"crossed brackets", "$([)]", 1, ErrUnbalanced},
		{"bad operator", "$(a +* b)", 1, ErrSyntax},
		{"empty group", "$()", 1, ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, end, err := AtomParser{}.ParseExpr(tt.src, tt.at)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.at, end)
		})
	}
}

func TestError_Format(t *testing.T) {
	err := ErrMalformedExpression.Wrap(ErrUnbalanced)
	assert.Equal(t, "malformed expression: unbalanced brackets", err.Error())
	assert.Equal(t, "unbalanced brackets", WrapError(ErrUnbalanced).Error())
	assert.Empty(t, (&Error{}).Error())

	withAttrs := ErrSyntax.With()
	assert.Empty(t, withAttrs.Attrs())
	assert.ErrorIs(t, withAttrs, ErrSyntax)
	assert.NotErrorIs(t, withAttrs, ErrUnbalanced)
}
