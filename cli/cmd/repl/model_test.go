package repl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/jstmpl/js"
	"github.com/ardnew/jstmpl/log"
	"github.com/ardnew/jstmpl/tmpl"
)

func newTestModel(t *testing.T, env *tmpl.Environment) model {
	t.Helper()

	history := NewHistory(filepath.Join(t.TempDir(), baseHistory))

	return newModel(t.Context(), env, "", js.ModeNone, history, log.Logger{})
}

func press(t *testing.T, m model, msgs ...tea.Msg) model {
	t.Helper()

	for _, msg := range msgs {
		next, _ := m.Update(msg)

		var ok bool

		m, ok = next.(model)
		require.True(t, ok)
	}

	return m
}

func typed(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func TestModelPreview(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, tmpl.Env(map[string]any{"n": 1, "s": `a"b`}))

	m = press(t, m, typed("var x = [$n, $s];"))
	require.NoError(t, m.previewErr)
	assert.Equal(t, `var x = [1, "a\"b"];`, m.preview)
	assert.Contains(t, m.View(), `= var x = [1, "a\"b"];`)

	m = press(t, m, typed(" $missing"))
	require.Error(t, m.previewErr)
	assert.ErrorIs(t, m.previewErr, tmpl.ErrEvaluate)
	assert.Contains(t, m.View(), "✗")
}

func TestModelPreviewCheck(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, tmpl.Env(map[string]any{"n": 1}))
	m.check = js.ModeProgram

	m = press(t, m, typed("var = $n"))
	assert.ErrorIs(t, m.previewErr, tmpl.ErrCheck)
}

func TestModelExecuteInput(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, tmpl.Env(map[string]any{"n": 1}))

	m = press(t, m, typed("f($n)"), key(tea.KeyEnter))

	assert.Empty(t, m.input.Value())
	assert.Empty(t, m.preview)
	require.Equal(t, 1, m.history.Len())

	entry, err := m.history.GetEntry(0)
	require.NoError(t, err)
	assert.Equal(t, HistoryEntry{Line: "f($n)", Mode: modeEval}, entry)

	data, err := os.ReadFile(m.history.path)
	require.NoError(t, err)
	assert.Equal(t, "E:f($n)\n", string(data))
}

func TestModelToggleMode(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, tmpl.Env(nil))

	m = press(t, m, typed("$x"), key(tea.KeyEsc))
	assert.Equal(t, modeCtrl, m.mode)
	assert.Empty(t, m.input.Value())

	m = press(t, m, typed("vars"), key(tea.KeyEsc))
	assert.Equal(t, modeEval, m.mode)
	assert.Equal(t, "$x", m.input.Value())

	m = press(t, m, key(tea.KeyEsc))
	assert.Equal(t, "vars", m.input.Value())
}

func TestModelTabCycle(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, tmpl.Env(map[string]any{
		"cfg": map[string]any{"host": "h", "port": 1},
	}))

	m = press(t, m, typed("$(cfg."))
	require.Len(t, m.matches, 2)

	m = press(t, m, key(tea.KeyTab))
	assert.Equal(t, "$(cfg.host", m.input.Value())

	m = press(t, m, key(tea.KeyTab))
	assert.Equal(t, "$(cfg.port", m.input.Value())

	m = press(t, m, key(tea.KeyShiftTab))
	assert.Equal(t, "$(cfg.host", m.input.Value())

	m = press(t, m, key(tea.KeyEsc))
	assert.Equal(t, "$(cfg.", m.input.Value())
	assert.Equal(t, modeEval, m.mode)
}

func TestModelHistoryNavigation(t *testing.T) {
	t.Parallel()

	history := NewHistory(filepath.Join(t.TempDir(), baseHistory))
	_, err := history.WriteWithMode("$a", modeEval)
	require.NoError(t, err)
	_, err = history.WriteWithMode("vars", modeCtrl)
	require.NoError(t, err)

	m := newModel(t.Context(), tmpl.Env(map[string]any{"a": 1}), "",
		js.ModeNone, history, log.Logger{})

	m = press(t, m, key(tea.KeyUp))
	assert.Equal(t, modeCtrl, m.mode)
	assert.Equal(t, "vars", m.input.Value())
	assert.Contains(t, m.View(), "2/2")

	m = press(t, m, key(tea.KeyUp))
	assert.Equal(t, modeEval, m.mode)
	assert.Equal(t, "$a", m.input.Value())
	assert.Equal(t, "1", m.preview)

	m = press(t, m, key(tea.KeyDown), key(tea.KeyDown))
	assert.Empty(t, m.input.Value())
	assert.Equal(t, 2, m.historyIdx)

	m = press(t, m, key(tea.KeyShiftUp))
	assert.Equal(t, "vars", m.input.Value(), "mode follows the last entry")
}

func TestModelCommands(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, tmpl.Env(map[string]any{"n": 1}))

	m, out := m.setVar("greet upper('hi')")
	assert.Contains(t, out, `greet = "HI"`)

	got, err := tmpl.Render(t.Context(), "$greet", m.env)
	require.NoError(t, err)
	assert.Equal(t, `"HI"`, got)

	_, out = m.setVar("greet")
	assert.Contains(t, out, "usage")

	_, out = m.setVar("bad nope(")
	assert.Contains(t, out, "error")

	m, out = m.setCheck("program")
	assert.Equal(t, js.ModeProgram, m.check)
	assert.Contains(t, out, "program")

	_, out = m.setCheck("")
	assert.Contains(t, out, "check: program")

	_, out = m.setCheck("bogus")
	assert.Contains(t, out, "none|program|expression")

	vars := m.listVars("")
	assert.Contains(t, vars, "greet")
	assert.Contains(t, vars, "path")

	assert.Contains(t, m.listVars("path"), "cat(...string)")
	assert.Contains(t, m.listVars("nope"), "no variables")
}

func TestModelQuit(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, tmpl.Env(nil))

	m = press(t, m, typed("abc"), key(tea.KeyCtrlC))
	assert.False(t, m.quitting)
	assert.Empty(t, m.input.Value())

	m = press(t, m, key(tea.KeyCtrlD))
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}

func TestFormatPreview(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1", formatPreview(1))
	assert.Equal(t, `"s"`, formatPreview("s"))
	assert.Equal(t, "null", formatPreview(nil))
	assert.Equal(t, "{ 2 items }", formatPreview(map[string]any{"a": 1, "b": 2}))
	assert.Equal(t, "func", formatPreview(strings.ToUpper))

	long := formatPreview(strings.Repeat("x", 100))
	assert.Equal(t, previewLimit, len([]rune(long)))
	assert.True(t, strings.HasSuffix(long, "…"))
}

func TestScanView(t *testing.T) {
	t.Parallel()

	out := scanView(`let a = $b;`)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], `literal`)
	assert.Contains(t, lines[0], `"let a = "`)
	assert.Contains(t, lines[1], `placeholder`)
	assert.Contains(t, lines[1], `"b"`)
	assert.Contains(t, lines[2], `";"`)

	assert.Contains(t, scanView(`x = $(`), "error")
	assert.Contains(t, scanView(""), "no template")
}

func TestEllipsize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", ellipsize("abc", 3))
	assert.Equal(t, "ab…", ellipsize("abcd", 3))
	assert.Equal(t, "abcd", ellipsize("abcd", 0))
}
