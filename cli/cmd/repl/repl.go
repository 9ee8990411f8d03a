package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/jstmpl/js"
	"github.com/ardnew/jstmpl/log"
	"github.com/ardnew/jstmpl/tmpl"
)

// editTemplateMsg is sent when template editing completes successfully.
type editTemplateMsg struct{ source string }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a scan
// error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process encounters a non-scan error.
type editErrorMsg struct{ err error }

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help               Print this cruft
  vars [path]        List variables and builtins (at path)
  set NAME EXPR      Bind NAME to the value of expression EXPR
  check [MODE]       Show or set the output check (none, program, expression)
  scan               Show the chunks of the current template
  render             Render the template buffer
  edit               Edit the template buffer in external $EDITOR
  clear              Clear screen
  quit               Exit REPL

Usage:
  Type a template line; the rendered output is previewed as you type
  Placeholders start with $, e.g. const port = $(cfg.port + 1);
  Completions appear inside placeholders as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Press Esc to toggle between eval and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Use Alt+Up/Alt+Down to switch to command mode and navigate command history
    (restores original mode when reaching end of history)
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc          func() context.Context
	input            textinput.Model
	env              *tmpl.Environment
	logger           log.Logger
	history          *History
	buffer           string        // template loaded from file or editor
	preview          string        // rendered input line
	previewErr       error         // error rendering the input line
	matches          fuzzy.Matches // current fuzzy match results
	candidates       []string      // backing candidate list
	check            js.Mode       // syntax check applied to rendered output
	historyIdx       int
	wordStart        int       // byte offset of current word start
	wordEnd          int       // byte offset of current word end
	suggIdx          int       // selected candidate index
	preTabCursor     int       // cursor position before tab-cycling began
	altNavOrigCursor int       // original cursor position before Alt navigation
	width            int       // terminal width for ellipsization
	evalCursor       int       // saved cursor of the inactive eval input
	ctrlCursor       int       // saved cursor of the inactive ctrl input
	altNavOrigMode   inputMode // original mode before Alt navigation
	mode             inputMode
	preTabText       string // input text before tab-cycling began
	altNavOrigText   string // original text before Alt navigation
	evalText         string
	ctrlText         string
	tabActive        bool // whether user is tab-cycling
	altNavActive     bool // whether user is in Alt+Up/Down navigation
	quitting         bool
}

// Run starts the REPL over env. If source is non-empty it is loaded into the
// template buffer.
func Run(
	ctx context.Context,
	env *tmpl.Environment,
	source string,
	check js.Mode,
	cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger.TraceContext(
		ctx,
		"repl start",
		slog.String("cache_dir", cacheDir),
		slog.Int("source_bytes", len(source)),
		slog.String("check", check.String()),
	)

	if source != "" {
		_, err = tmpl.Compile(ctx, source, tmpl.WithLogger(logger))
		if err != nil {
			return err
		}
	}

	var historyPath string
	if cacheDir != "" {
		historyPath = filepath.Join(cacheDir, baseHistory)
	}

	history := NewHistory(historyPath)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history",
			slog.String("path", historyPath),
			slog.Any("error", err),
		)
	}

	logger.TraceContext(
		ctx,
		"repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	m := newModel(ctx, env, source, check, history, logger)

	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	env *tmpl.Environment,
	source string,
	check js.Mode,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		env:        env,
		logger:     logger,
		history:    history,
		buffer:     source,
		check:      check,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - lipgloss.Width(evalPrompt) - 2

		return m, nil

	case editTemplateMsg:
		m.buffer = msg.source
		m.logger.TraceContext(
			m.ctxFunc(),
			"repl edit complete",
			slog.Int("source_bytes", len(m.buffer)),
		)

		return m, tea.Sequence(
			tea.Println(resultStyle.Render("✔ template updated")),
			m.renderBuffer(),
		)

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("✗ edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("✗ error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	b.WriteString(m.hintView())
	b.WriteString("\n")

	if m.mode == modeEval && strings.TrimSpace(m.input.Value()) != "" {
		b.WriteString(m.previewView())
		b.WriteString("\n")
	}

	return b.String()
}

// hintView renders the line below the input: the history position,
// a usage hint, a signature hint or the completion bar.
func (m model) hintView() string {
	input := m.input.Value()

	if m.historyIdx < m.history.Len() {
		return hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len()))
	}

	if strings.TrimSpace(input) == "" {
		if m.mode == modeEval {
			return hintStyle.Render("Type a template or press Esc for commands")
		}

		return hintStyle.Render(
			"Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)")
	}

	parent := parentPath(input, m.wordStart)

	if m.mode == modeEval && !m.tabActive {
		cursor := m.input.Position()
		if start, ok := placeholderAt(input, cursor); ok {
			call := detectFunctionCall(input[start:cursor], cursor-start)
			if call.inCall {
				signature, params := getSignature(m.env, call.name)
				if signature != "" {
					return renderSignatureHint(signature, params, call.argIndex)
				}
			}
		}
	}

	return renderCandidateBar(m.env, parent, m.matches, m.suggIdx, m.tabActive, m.width)
}

// previewView renders the result of the current input line.
func (m model) previewView() string {
	if m.previewErr != nil {
		return errorStyle.Render(ellipsize("✗ "+m.previewErr.Error(), m.width))
	}

	return resultStyle.Render(ellipsize("= "+m.preview, m.width))
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.tabActive = false
		m.altNavActive = false

		return m.endHistory("", 0), nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			m.altNavActive = false

			return m.executeInput()
		}
		// Lock in the current tab candidate without executing.
		m.tabActive = false
		m.altNavActive = false
		m.refresh(true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1)

	case tea.KeyShiftTab:
		return m.cycle(-1)

	case tea.KeyUp:
		if msg.Alt {
			return m.historyCtrl(-1)
		}

		return m.historyPrev()

	case tea.KeyDown:
		if msg.Alt {
			return m.historyCtrl(1)
		}

		return m.historyNext()

	case tea.KeyShiftUp:
		return m.historyPrevInMode()

	case tea.KeyShiftDown:
		return m.historyNextInMode()

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.setInput(m.preTabText, m.preTabCursor)

			return m, nil
		}

		m.altNavActive = false

		return m.toggleMode()

	case tea.KeyRunes, tea.KeySpace:
		// Space breaks out of tab-cycling, accepting the candidate.
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		m.refresh(true)

		return m, cmd
	}

	// Any other key (backspace, delete, arrows, etc.) edits without
	// auto-confirming a completion.
	var cmd tea.Cmd

	m.tabActive = false
	m.altNavActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refresh(false)

	return m, cmd
}

// cycle moves the tab selection by step, wrapping around the candidates.
// A single candidate is completed and confirmed immediately.
func (m model) cycle(step int) (model, tea.Cmd) {
	if len(m.matches) == 0 {
		return m, nil
	}

	if len(m.matches) == 1 {
		m.replaceCurrentWord(m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m, nil
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + step + len(m.matches)) % len(m.matches)
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = len(m.matches) - 1
		}
	}

	m.replaceCurrentWord(m.matches[m.suggIdx].Str)

	return m, nil
}

// replaceCurrentWord replaces the current word boundaries in the input with
// the given replacement text and repositions the cursor.
func (m *model) replaceCurrentWord(replacement string) {
	input := m.input.Value()
	newCursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(newCursor)

	m.wordEnd = newCursor
	m.refreshPreview()
}

// setInput replaces the input text and recomputes matches and preview.
func (m *model) setInput(text string, cursor int) {
	m.input.SetValue(text)
	m.input.SetCursor(cursor)
	m.refresh(false)
}

// refresh recomputes fuzzy matches and the preview for the current input.
// When autoConfirm is true it also auto-confirms the completion when exactly
// one candidate remains and the typed word already equals that candidate.
// autoConfirm should be false for deletions and cursor navigation so that
// the user can freely edit without unexpected completions.
func (m *model) refresh(autoConfirm bool) {
	m.refreshPreview()

	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

// refreshPreview renders the input line in eval mode.
func (m *model) refreshPreview() {
	m.preview, m.previewErr = "", nil

	input := m.input.Value()
	if m.mode != modeEval || strings.TrimSpace(input) == "" {
		return
	}

	m.preview, m.previewErr = m.render(input)
}

func (m model) render(source string) (string, error) {
	return tmpl.Render(m.ctxFunc(), source, m.env,
		tmpl.WithCheck(m.check),
		tmpl.WithLogger(m.logger),
	)
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	mode := m.mode

	m.evalText, m.evalCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0

	_, err := m.history.WriteWithMode(input, mode)
	if err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not write history",
			slog.Any("error", err))
	}

	m = m.endHistory("", 0)

	if mode == modeCtrl {
		m.logger.TraceContext(
			m.ctxFunc(),
			"repl command",
			slog.String("input", input),
		)

		return m.executeCommand(input)
	}

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl eval",
		slog.String("input", input),
	)

	echoCmd := tea.Println(formatCommand(input))

	out, err := m.render(input)
	if err != nil {
		m.logger.TraceContext(
			m.ctxFunc(),
			"repl eval result",
			slog.Any("error", err),
		)

		return m, tea.Sequence(
			echoCmd,
			tea.Println(errorStyle.Render("error: "+err.Error())),
		)
	}

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl eval result",
		slog.Int("output_bytes", len(out)),
	)

	return m, tea.Sequence(echoCmd, tea.Println(resultStyle.Render(out)))
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	cmd, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	echoCmd := tea.Println(formatCtrlCommand(input))

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl exec command",
		slog.String("command", cmd),
		slog.String("args", rest),
	)

	switch cmd {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echoCmd, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echoCmd, tea.Println(helpMessage()))

	case "v", "vars", "l", "list":
		return m, tea.Sequence(echoCmd, tea.Println(m.listVars(rest)))

	case "set":
		var out string

		m, out = m.setVar(rest)

		return m, tea.Sequence(echoCmd, tea.Println(out))

	case "check":
		var out string

		m, out = m.setCheck(rest)

		return m, tea.Sequence(echoCmd, tea.Println(out))

	case "s", "scan":
		return m, tea.Sequence(echoCmd, tea.Println(scanView(m.current())))

	case "r", "render":
		return m, tea.Sequence(echoCmd, m.renderBuffer())

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echoCmd, m.handleEdit())

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + cmd + " (try 'help')"),
		)
	}
}

// current returns the template the scan command inspects: the pending eval
// input if any, otherwise the template buffer.
func (m model) current() string {
	if strings.TrimSpace(m.evalText) != "" {
		return m.evalText
	}

	return m.buffer
}

// setVar evaluates "NAME EXPR" and binds the result in the environment.
func (m model) setVar(args string) (model, string) {
	name, src, _ := strings.Cut(args, " ")
	src = strings.TrimSpace(src)

	if name == "" || src == "" {
		return m, errorStyle.Render(fmt.Sprintf("%v: set NAME EXPR", ErrUsage))
	}

	v, err := m.env.Evaluate(m.ctxFunc(), src)
	if err != nil {
		return m, errorStyle.Render("error: " + err.Error())
	}

	m.env = m.env.With(name, v)

	return m, resultStyle.Render(name + " = " + formatPreview(v))
}

// setCheck reports the output check mode, or sets it from args.
func (m model) setCheck(args string) (model, string) {
	if args == "" {
		return m, hintStyle.Render("check: " + m.check.String())
	}

	mode, err := js.ParseMode(args)
	if err != nil {
		return m, errorStyle.Render(fmt.Sprintf(
			"%v: check [%s]", ErrUsage, strings.Join(js.Modes(), "|")))
	}

	m.check = mode

	return m, resultStyle.Render("check: " + mode.String())
}

// renderBuffer prints the rendered template buffer.
func (m model) renderBuffer() tea.Cmd {
	if m.buffer == "" {
		return tea.Println(hintStyle.Render("template buffer is empty (try 'edit')"))
	}

	out, err := m.render(m.buffer)
	if err != nil {
		return tea.Println(errorStyle.Render("error: " + err.Error()))
	}

	return tea.Println(resultStyle.Render(strings.TrimRight(out, "\n")))
}

func (m model) handleEdit() tea.Cmd {
	cmd := &editTemplateCommand{
		source:  m.current(),
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		if errors.Is(err, ErrEditDeclined) {
			return editDeclinedMsg{}
		}

		if err != nil {
			return editErrorMsg{err: err}
		}

		if cmd.result == nil {
			return editCancelledMsg{}
		}

		return editTemplateMsg{source: cmd.result.Source()}
	})
}
