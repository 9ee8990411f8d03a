package js

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
)

// Mode selects how [Check] interprets its input.
type Mode int

const (
	// ModeNone disables checking.
	ModeNone Mode = iota
	// ModeProgram checks a complete script: statements and declarations.
	ModeProgram
	// ModeExpression checks a single expression.
	ModeExpression
)

// String returns the name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeProgram:
		return "program"
	case ModeExpression:
		return "expression"
	default:
		return "Mode(" + fmt.Sprint(int(m)) + ")"
	}
}

// Modes returns the names of all modes.
func Modes() []string {
	return []string{
		ModeNone.String(),
		ModeProgram.String(),
		ModeExpression.String(),
	}
}

// ParseMode parses the name of a mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "off":
		return ModeNone, nil
	case "program", "script":
		return ModeProgram, nil
	case "expression", "expr":
		return ModeExpression, nil
	default:
		return ModeNone, ErrUnsupported.With(slog.String("mode", s))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}

	*m = mode

	return nil
}

//nolint:gochecknoglobals
var language = sitter.NewLanguage(tree_sitter_javascript.Language())

// parserPool is a pool of reusable JavaScript parsers.
//
//nolint:gochecknoglobals
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(language); err != nil {
			panic(fmt.Sprintf("failed to set JS language: %v", err))
		}

		return parser
	},
}

// Check parses src as JavaScript and returns an [ErrSyntax] error locating
// the first syntax error, or nil if src parses cleanly. The error carries
// "line" and "column" attributes, both 1-based, relative to src.
func Check(src string, mode Mode) error {
	if mode == ModeNone {
		return nil
	}

	text := src
	if mode == ModeExpression {
		// The newline keeps a trailing line comment from swallowing the
		// closing parenthesis.
		text = "(" + src + "\n)"
	}

	parser, _ := parserPool.Get().(*sitter.Parser)
	defer func() {
		parser.Reset()
		parserPool.Put(parser)
	}()

	content := []byte(text)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return ErrParser
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil
	}

	node := firstError(root)
	if node == nil {
		node = root
	}

	pos := node.StartPosition()
	line, column := int(pos.Row)+1, int(pos.Column)+1

	if mode == ModeExpression {
		if line == 1 {
			column--
		}

		// Errors on the synthetic closing line belong at the end of src.
		if lines := strings.Count(src, "\n") + 1; line > lines {
			line = lines
			column = len(src) - strings.LastIndexByte(src, '\n')
		}

		column = max(column, 1)
	}

	var reason string

	switch {
	case node.IsMissing():
		reason = fmt.Sprintf("missing %s", node.Kind())
	default:
		near := string(content[node.StartByte():node.EndByte()])
		if len(near) > 32 {
			near = strings.ToValidUTF8(near[:32], "") + "…"
		}

		reason = fmt.Sprintf("unexpected %q", near)
	}

	return ErrSyntax.
		Wrap(fmt.Errorf("line %d, column %d: %s", line, column, reason)).
		With(
			slog.Int("line", line),
			slog.Int("column", column),
			slog.String("node", node.Kind()),
		)
}

// firstError returns the first error or missing node in document order.
func firstError(node *sitter.Node) *sitter.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}

	for i := range node.ChildCount() {
		child := node.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}

		if found := firstError(child); found != nil {
			return found
		}
	}

	return nil
}
