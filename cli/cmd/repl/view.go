package repl

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ardnew/jstmpl/interp"
	"github.com/ardnew/jstmpl/js"
)

const previewLimit = 40

// listVars lists the names at path with a preview of each value.
func (m model) listVars(path string) string {
	names := m.env.Names(path)
	if len(names) == 0 {
		return hintStyle.Render("  no variables at " + strconv.Quote(path))
	}

	var b strings.Builder

	for _, name := range names {
		full := name
		if path != "" {
			full = path + "." + name
		}

		v, _ := m.env.Lookup(full)

		preview := formatPreview(v)
		if sig, _, ok := envSignature(m.env, full); ok {
			preview = sig
		}

		fmt.Fprintf(&b, "  %s %s\n", name, hintStyle.Render(preview))
	}

	return strings.TrimRight(b.String(), "\n")
}

// formatPreview generates a short preview of a value as it would render in
// a template.
func formatPreview(v any) string {
	if v != nil {
		switch reflect.TypeOf(v).Kind() {
		case reflect.Func:
			return "func"

		case reflect.Map:
			return fmt.Sprintf("{ %d items }", reflect.ValueOf(v).Len())
		}
	}

	src, err := js.Render(v)
	if err != nil {
		return fmt.Sprintf("<%T>", v)
	}

	return ellipsize(src, previewLimit)
}

// scanView lists the chunks of src, one per line, stopping at the first
// malformed placeholder.
func scanView(src string) string {
	if src == "" {
		return hintStyle.Render("  no template (type one, or try 'edit')")
	}

	var b strings.Builder

	for chunk, err := range interp.Chunks(src) {
		if err != nil {
			b.WriteString(errorStyle.Render("  error: " + err.Error()))

			break
		}

		style := literalStyle
		if chunk.IsPlaceholder() {
			style = placeholderStyle
		}

		fmt.Fprintf(&b, "  %s %s %s\n",
			hintStyle.Render(fmt.Sprintf("%4d", chunk.Pos)),
			style.Render(fmt.Sprintf("%-11s", chunk.Kind)),
			strconv.Quote(chunk.Text),
		)
	}

	return strings.TrimRight(b.String(), "\n")
}

// ellipsize truncates s to at most width runes, marking the cut with "…".
func ellipsize(s string, width int) string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}

	var b strings.Builder

	n := 0
	for _, r := range s {
		if n == width-1 {
			break
		}

		b.WriteRune(r)

		n++
	}

	b.WriteString("…")

	return b.String()
}
