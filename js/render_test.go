package js

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	X int    `json:"x"`
	Y int    `json:"y"`
	L string `json:"label,omitempty"`
}

type celsius float64

type sourceFunc func() (string, error)

func (f sourceFunc) JSSource() (string, error) { return f() }

type level int

func (l level) MarshalText() ([]byte, error) {
	return []byte([]string{"low", "high"}[l]), nil
}

func TestRender(t *testing.T) {
	t.Parallel()

	var nilMap map[string]int

	var nilSlice []int

	var nilPtr *point

	n := 7

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "null"},
		{"string", "hi", `"hi"`},
		{"string quotes", `say "hi"`, `"say \"hi\""`},
		{"string html", "</script>", `"\u003c/script\u003e"`},
		{"string separators", "a\u2028b", `"a\u2028b"`},
		{"true", true, "true"},
		{"false", false, "false"},
		{"int", 42, "42"},
		{"negative int64", int64(-3), "-3"},
		{"uint64", uint64(1) << 63, "9223372036854775808n"},
		{"max safe int64", int64(MaxSafeInteger), "9007199254740991"},
		{"min safe int", -MaxSafeInteger, "-9007199254740991"},
		{"int64 above safe range", int64(9007199254740993), "9007199254740993n"},
		{"int64 below safe range", int64(-1) << 62, "-4611686018427387904n"},
		{"uint above safe range", uint(1) << 54, "18014398509481984n"},
		{"uint8", uint8(255), "255"},
		{"float", 1.5, "1.5"},
		{"float integral", 2.0, "2"},
		{"float small", 1e-7, "1e-7"},
		{"float large", 1e21, "1e+21"},
		{"float below cutoff", 1e20, "100000000000000000000"},
		{"float32", float32(0.1), "0.1"},
		{"nan", math.NaN(), "NaN"},
		{"inf", math.Inf(1), "Infinity"},
		{"neg inf", math.Inf(-1), "-Infinity"},
		{"named float", celsius(21.5), "21.5"},
		{"raw", Raw("x => x + 1"), "x => x + 1"},
		{"bytes", []byte{1, 2, 255}, "new Uint8Array([1,2,255])"},
		{"nil bytes", []byte(nil), "null"},
		{"slice", []int{1, 2, 3}, "[1,2,3]"},
		{"empty slice", []string{}, "[]"},
		{"nil slice", nilSlice, "null"},
		{"array", [2]bool{true, false}, "[true,false]"},
		{"nested", []any{"a", []any{1, nil}}, `["a",[1,null]]`},
		{"map sorted", map[string]int{"b": 2, "a": 1}, `{"a":1,"b":2}`},
		{
			"map proto key",
			map[string]any{"__proto__": map[string]any{"polluted": true}, "a": 1},
			`{["__proto__"]:{"polluted":true},"a":1}`,
		},
		{"map proto lookalike", map[string]int{"__proto": 1}, `{"__proto":1}`},
		{"map int keys", map[int]string{10: "x", 2: "y"}, `{"10":"x","2":"y"}`},
		{"map text keys", map[level]int{1: 2, 0: 1}, `{"high":2,"low":1}`},
		{"nil map", nilMap, "null"},
		{"struct", point{X: 1, Y: 2}, `{"x":1,"y":2}`},
		{"struct pointer", &point{X: 1, Y: 2, L: "<"}, `{"x":1,"y":2,"label":"\u003c"}`},
		{"nil pointer", nilPtr, "null"},
		{"int pointer", &n, "7"},
		{
			"date",
			time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
			`new Date("2024-01-02T03:04:05Z")`,
		},
		{
			"source in map",
			map[string]any{"f": Raw("() => 1")},
			`{"f":() => 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Render(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderErrors(t *testing.T) {
	t.Parallel()

	t.Run("unsupported", func(t *testing.T) {
		t.Parallel()

		_, err := Render(make(chan int))
		require.ErrorIs(t, err, ErrUnsupported)

		var e *Error
		require.ErrorAs(t, err, &e)

		typ, ok := e.Attr("type")
		require.True(t, ok)
		assert.Equal(t, "chan int", typ.String())
	})

	t.Run("unsupported element", func(t *testing.T) {
		t.Parallel()

		_, err := Render([]any{1, func() {}})
		require.ErrorIs(t, err, ErrUnsupported)
	})

	t.Run("source error", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("boom")

		_, err := Render(sourceFunc(func() (string, error) { return "", cause }))
		require.ErrorIs(t, err, ErrEncode)
		require.ErrorIs(t, err, cause)
	})

	t.Run("cycle", func(t *testing.T) {
		t.Parallel()

		cycle := []any{nil}
		cycle[0] = cycle

		_, err := Render(cycle)
		require.ErrorIs(t, err, ErrDepth)
	})
}

func TestMustRender(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `"x"`, MustRender("x"))
	assert.Panics(t, func() { MustRender(make(chan int)) })
}

func TestQuote(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `""`, Quote(""))
	assert.Equal(t, `"a\\b"`, Quote(`a\b`))
	assert.Equal(t, `"line\nbreak"`, Quote("line\nbreak"))
	assert.Equal(t, `"\u0026amp;"`, Quote("&amp;"))
	assert.Equal(t, `"\u2029"`, Quote("\u2029"))
}
