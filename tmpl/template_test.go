package tmpl

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/jstmpl/interp"
	"github.com/ardnew/jstmpl/js"
)

func TestRenderEnv(t *testing.T) {
	t.Parallel()

	env := Env(map[string]any{
		"v":    `a"b`,
		"a":    1,
		"b":    2,
		"f":    js.Raw("() => 1"),
		"list": []any{1, "two", nil},
		"cfg":  map[string]any{"debug": true, "name": "app"},
	})

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"quoted string", `var x = $v;`, `var x = "a\"b";`},
		{"raw value", `const f = $f;`, `const f = () => 1;`},
		{"group expression", `let n = $(a + b);`, `let n = 3;`},
		{"list", `const xs = $list;`, `const xs = [1,"two",null];`},
		{"map", `init($cfg)`, `init({"debug":true,"name":"app"})`},
		{"member access needs group", `$(cfg.name)`, `"app"`},
		{"atom stops at member", `$cfg.name`, `{"debug":true,"name":"app"}.name`},
		{"escaped marker", `price: \$5 $a`, `price: $5 1`},
		{"escaped quote", `s = \"$a\"`, `s = "1"`},
		{"no placeholders", `plain text`, `plain text`},
		{"empty", ``, ``},
		{"raw builtin", `const g = $(raw("x => x * 2"));`, `const g = x => x * 2;`},
		{"json builtin", `$(json({k: [1, 2]}))`, `{"k":[1,2]}`},
		{"path builtin", `$(path.base("/srv/app/main.js"))`, `"main.js"`},
		{"path cat", `$(path.dir(path.cat("a", "b", "c")))`, `"a/b"`},
		{"string atom", `$"lit"`, `"lit"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Render(t.Context(), tt.src, env)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderEnvVariable(t *testing.T) {
	t.Setenv("JSTMPL_TEST_VALUE", "from env")

	got, err := Render(t.Context(), `$(env("JSTMPL_TEST_VALUE"))`, Env(nil))
	require.NoError(t, err)
	assert.Equal(t, `"from env"`, got)
}

func TestRenderMung(t *testing.T) {
	t.Parallel()

	got, err := Render(t.Context(), `$(mung.prefix("/usr/bin", "/opt/bin"))`, Env(nil))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, `"/opt/bin`), got)
}

func TestRenderErrors(t *testing.T) {
	t.Parallel()

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()

		_, err := Render(t.Context(), `x = $`, Slots(1))
		require.ErrorIs(t, err, interp.ErrMalformedExpression)
	})

	t.Run("malformed after evaluation", func(t *testing.T) {
		t.Parallel()

		var calls int

		eval := EvaluatorFunc(func(context.Context, string) (any, error) {
			calls++

			return 1, nil
		})

		_, err := Render(t.Context(), `$a $(b`, eval)
		require.ErrorIs(t, err, interp.ErrMalformedExpression)
		assert.Equal(t, 1, calls)
	})

	t.Run("undefined variable", func(t *testing.T) {
		t.Parallel()

		_, err := Render(t.Context(), `$missing`, Env(nil))
		require.ErrorIs(t, err, ErrEvaluate)
		require.ErrorIs(t, err, ErrCompile)
	})

	t.Run("runtime error", func(t *testing.T) {
		t.Parallel()

		env := Env(map[string]any{"xs": []int{1}})

		_, err := Render(t.Context(), `$(xs[5])`, env)
		require.ErrorIs(t, err, ErrEvaluate)
	})

	t.Run("unrepresentable", func(t *testing.T) {
		t.Parallel()

		_, err := RenderSlots(t.Context(), `$c`, make(chan int))
		require.ErrorIs(t, err, ErrRender)
		require.ErrorIs(t, err, js.ErrUnsupported)
	})

	t.Run("nil evaluator", func(t *testing.T) {
		t.Parallel()

		_, err := Render(t.Context(), `$a`, nil)
		require.ErrorIs(t, err, ErrEvaluate)

		out, err := Render(t.Context(), `no placeholders`, nil)
		require.NoError(t, err)
		assert.Equal(t, `no placeholders`, out)
	})

	t.Run("canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		_, err := RenderSlots(ctx, `$a`, 1)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestRenderCheck(t *testing.T) {
	t.Parallel()

	out, err := renderCheck(t, `let x = $v;`, js.ModeProgram, 1)
	require.NoError(t, err)
	assert.Equal(t, `let x = 1;`, out)

	_, err = renderCheck(t, `let = $v;`, js.ModeProgram, 1)
	require.ErrorIs(t, err, ErrCheck)
	require.ErrorIs(t, err, js.ErrSyntax)

	out, err = renderCheck(t, `$a + $b`, js.ModeExpression, 1, "x")
	require.NoError(t, err)
	assert.Equal(t, `1 + "x"`, out)

	_, err = renderCheck(t, `$a +`, js.ModeExpression, 1)
	require.ErrorIs(t, err, ErrCheck)
}

func renderCheck(t *testing.T, src string, mode js.Mode, values ...any) (string, error) {
	t.Helper()

	return Render(t.Context(), src, Slots(values...), WithCheck(mode))
}

func TestSlots(t *testing.T) {
	t.Parallel()

	got, err := RenderSlots(t.Context(), `f($a, $b)`, 1, "x")
	require.NoError(t, err)
	assert.Equal(t, `f(1, "x")`, got)

	got, err = RenderSlots(t.Context(), `$a`, 1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, `1`, got)

	_, err = RenderSlots(t.Context(), `$a $b`, 1)
	require.ErrorIs(t, err, ErrSlotCount)
	require.ErrorIs(t, err, ErrEvaluate)

	_, err = Slots(1).Evaluate(t.Context(), "a")
	require.ErrorIs(t, err, ErrSlotCount)

	_, ok := PlaceholderIndex(t.Context())
	assert.False(t, ok)
}

func TestCompile(t *testing.T) {
	t.Parallel()

	src := `fn($a, $(b + 1), "\$c")`

	tpl, err := Compile(t.Context(), src)
	require.NoError(t, err)

	assert.Equal(t, src, tpl.Source())
	assert.Equal(t, []string{"a", "(b + 1)"}, tpl.Placeholders())

	chunks := tpl.Chunks()
	require.Len(t, chunks, 5)
	assert.Equal(t, interp.Chunk{Kind: interp.Literal, Text: "fn(", Pos: 0}, chunks[0])
	assert.Equal(t, `, "$c")`, chunks[4].Text)

	chunks[0].Text = "mutated"
	assert.Equal(t, "fn(", tpl.Chunks()[0].Text)

	got, err := tpl.Execute(t.Context(), Slots(1, 2))
	require.NoError(t, err)
	assert.Equal(t, `fn(1, 2, "$c")`, got)

	got, err = tpl.Execute(t.Context(), Env(map[string]any{"a": "x", "b": 2}))
	require.NoError(t, err)
	assert.Equal(t, `fn("x", 3, "$c")`, got)

	_, err = Compile(t.Context(), `ok $a then $(`)
	require.ErrorIs(t, err, interp.ErrMalformedExpression)
}

func TestCompileParser(t *testing.T) {
	t.Parallel()

	// Consumes everything up to the next space.
	word := interp.ParserFunc(func(src string, at int) (string, int, error) {
		end := strings.IndexByte(src[at:], ' ')
		if end < 0 {
			end = len(src) - at
		}

		return src[at : at+end], at + end, nil
	})

	tpl, err := Compile(t.Context(), `x = $a.b.c;`, WithParser(word))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.b.c;"}, tpl.Placeholders())
}

func TestExecuteConcurrent(t *testing.T) {
	t.Parallel()

	tpl, err := Compile(t.Context(), `[$(n), $(n * n)]`)
	require.NoError(t, err)

	var wg sync.WaitGroup

	for n := range 32 {
		wg.Go(func() {
			got, err := tpl.Execute(t.Context(), Env(map[string]any{"n": n}))
			assert.NoError(t, err)
			assert.Equal(t, "["+itoa(n)+", "+itoa(n*n)+"]", got)
		})
	}

	wg.Wait()
}

func itoa(n int) string { return js.MustRender(n) }
