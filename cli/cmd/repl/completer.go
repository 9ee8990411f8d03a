package repl

import (
	"reflect"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/expr-lang/expr/builtin"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/jstmpl/interp"
	"github.com/ardnew/jstmpl/tmpl"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{
	"help", "vars", "set", "check", "scan", "render", "edit", "clear", "quit",
}

// isWordBoundary returns true if the rune is a word delimiter for completion
// purposes. This includes whitespace, the member-access dot, the placeholder
// marker, and expr-lang operator/punctuation characters.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t', interp.Marker,
		'(', ')', '[', ']', '{', '}',
		'+', '-', '*', '/', '%',
		'<', '>', '=', '!',
		'&', '|', ',', '?', ':', ';':
		return true
	}

	return false
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input.
// Returns an empty word when the cursor sits on a boundary (after a space,
// between dots, start of line, etc.).
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the dot-separated prefix path leading up to the current
// word, considering only the contiguous member-access chain. For input
// "$(x + server.http.ho" with the word "ho", the parent path is
// "server.http". Returns "" for top-level words.
func parentPath(input string, wordStart int) string {
	prefix := strings.TrimRight(input[:wordStart], ".")
	if prefix == "" || len(prefix) == wordStart {
		return ""
	}

	end := len(prefix)
	pos := end

	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return strings.TrimSpace(prefix[pos:end])
}

// placeholderAt reports whether cursor lies within the expression of a
// placeholder in input, including one still being typed. It returns the
// offset of the first byte of that expression.
func placeholderAt(input string, cursor int) (start int, ok bool) {
	at := interp.Start

	for {
		chunk, next, more, err := interp.Scan(input, at)
		if err != nil {
			// The expression beginning at the failed marker is incomplete;
			// everything after it belongs to the placeholder being edited.
			return next.Offset() + 1, cursor > next.Offset()
		}

		if !more {
			return 0, false
		}

		if chunk.IsPlaceholder() {
			start = chunk.Pos + 1
			if cursor >= start && cursor <= next.Offset() {
				return start, true
			}
		}

		if next.Offset() >= cursor && chunk.IsLiteral() {
			return 0, false
		}

		at = next
	}
}

// childCandidates returns the names that are valid completions for the given
// parent path. For an empty parent, returns all top-level variable and
// builtin names plus the expr-lang builtin functions.
func childCandidates(env *tmpl.Environment, parent string) []string {
	if parent == "" {
		return slices.Concat(env.Names(""), ExprLangBuiltinNames())
	}

	return env.Names(parent)
}

// computeMatches calculates the fuzzy match results for the word at the cursor.
// It returns the matches (ranked best-first), the candidate list, and the word
// boundaries. In eval mode only words inside a placeholder are completed.
// When the word is empty after a dot (member access), it returns all
// children as matches.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	cursor := m.input.Position()

	word, ws, we := wordBounds(input, cursor)
	wordStart, wordEnd = ws, we

	if m.mode == modeCtrl {
		if word == "" || strings.ContainsAny(input[:wordStart], " \t") {
			return nil, nil, wordStart, wordEnd
		}

		candidates = ctrlCommands
	} else {
		exprStart, ok := placeholderAt(input, cursor)
		if !ok || wordStart < exprStart {
			return nil, nil, wordStart, wordEnd
		}

		parent := parentPath(input, wordStart)
		candidates = childCandidates(m.env, parent)

		// At the top level an empty word shows nothing, leaving room for the
		// preview. After a dot, show all children so the user can browse.
		if word == "" {
			if parent == "" || len(candidates) == 0 {
				return nil, nil, wordStart, wordEnd
			}

			matches = make(fuzzy.Matches, len(candidates))
			for i, c := range candidates {
				matches[i] = fuzzy.Match{Str: c, Index: i}
			}

			return matches, candidates, wordStart, wordEnd
		}
	}

	if len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	matches = fuzzy.Find(word, candidates)

	return matches, candidates, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. Each candidate is rendered with its matched
// characters highlighted. The selected candidate (when tabbing) uses the
// selected style.
func renderCandidateBar(
	env *tmpl.Environment,
	parent string,
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		selected := tabActive && i == suggIdx
		rendered := renderCandidate(match, selected, isFunction(env, parent, match.Str))
		candidateWidth := lipgloss.Width(rendered)

		entryWidth := candidateWidth
		if i > 0 {
			entryWidth += sepWidth
		}

		if used+entryWidth+ellipsisWidth > width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted. Functions are displayed with a "()" suffix.
func renderCandidate(match fuzzy.Match, selected, function bool) string {
	baseStyle := suggestionStyle
	highlightStyle := matchStyle

	if selected {
		baseStyle = selectedStyle
		highlightStyle = selectedMatchStyle
	}

	matchSet := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matchSet[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		ch := string(r)
		if matchSet[i] {
			b.WriteString(highlightStyle.Render(ch))
		} else {
			b.WriteString(baseStyle.Render(ch))
		}
	}

	if function {
		b.WriteString(baseStyle.Render("()"))
	}

	return b.String()
}

// isFunction reports whether name, a child of parent, is callable: either an
// expr-lang builtin or a function value in the environment.
func isFunction(env *tmpl.Environment, parent, name string) bool {
	path := name
	if parent != "" {
		path = parent + "." + name
	} else if _, ok := builtin.Index[name]; ok {
		return true
	}

	v, ok := env.Lookup(path)

	return ok && v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}
