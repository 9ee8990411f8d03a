package repl

import tea "github.com/charmbracelet/bubbletea"

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

func anyEntry(HistoryEntry) bool { return true }

func inMode(mode inputMode) func(HistoryEntry) bool {
	return func(e HistoryEntry) bool { return e.Mode == mode }
}

// seek moves the history index by step to the nearest entry accepted by keep
// and loads it into the input, switching modes if needed. It reports false
// if there is no such entry.
func (m model) seek(step int, keep func(HistoryEntry) bool) (model, bool) {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		entry, err := m.history.GetEntry(i)
		if err != nil || !keep(entry) {
			continue
		}

		m.historyIdx = i

		if m.mode != entry.Mode {
			m, _ = m.switchToMode(entry.Mode)
		}

		m.setInput(entry.Line, len(entry.Line))

		return m, true
	}

	return m, false
}

// endHistory moves the history index past the newest entry and replaces the
// input with text.
func (m model) endHistory(text string, cursor int) model {
	m.historyIdx = m.history.Len()
	m.setInput(text, cursor)

	return m
}

func (m model) historyPrev() (model, tea.Cmd) {
	m, _ = m.seek(-1, anyEntry)

	return m, nil
}

func (m model) historyNext() (model, tea.Cmd) {
	m, ok := m.seek(1, anyEntry)
	if !ok {
		m = m.endHistory("", 0)
	}

	return m, nil
}

func (m model) historyPrevInMode() (model, tea.Cmd) {
	m, _ = m.seek(-1, inMode(m.mode))

	return m, nil
}

func (m model) historyNextInMode() (model, tea.Cmd) {
	m, ok := m.seek(1, inMode(m.mode))
	if !ok && m.historyIdx < m.history.Len() {
		m = m.endHistory("", 0)
	}

	return m, nil
}

// historyCtrl navigates command history only, switching to command mode on
// the first step. Running off either end restores the mode and input that
// were active before navigation began.
func (m model) historyCtrl(step int) (model, tea.Cmd) {
	if !m.altNavActive {
		m.altNavActive = true
		m.altNavOrigMode = m.mode
		m.altNavOrigText = m.input.Value()
		m.altNavOrigCursor = m.input.Position()

		if m.mode != modeCtrl {
			m, _ = m.switchToMode(modeCtrl)
		}
	}

	m, ok := m.seek(step, inMode(modeCtrl))
	if ok {
		return m, nil
	}

	m.altNavActive = false
	if m.altNavOrigMode != m.mode {
		m, _ = m.switchToMode(m.altNavOrigMode)
	}

	return m.endHistory(m.altNavOrigText, m.altNavOrigCursor), nil
}

// toggleMode switches between eval and control modes, preserving input state.
func (m model) toggleMode() (model, tea.Cmd) {
	if m.mode == modeEval {
		return m.switchToMode(modeCtrl)
	}

	return m.switchToMode(modeEval)
}

// switchToMode switches to the specified mode, preserving input state.
func (m model) switchToMode(mode inputMode) (model, tea.Cmd) {
	if m.mode == modeEval {
		m.evalText = m.input.Value()
		m.evalCursor = m.input.Position()
	} else {
		m.ctrlText = m.input.Value()
		m.ctrlCursor = m.input.Position()
	}

	m.mode = mode
	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
		m.setInput(m.evalText, m.evalCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.setInput(m.ctrlText, m.ctrlCursor)
	}

	return m, nil
}
