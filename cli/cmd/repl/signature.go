package repl

import (
	"maps"
	"reflect"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/expr-lang/expr/builtin"

	"github.com/ardnew/jstmpl/tmpl"
)

// builtinShapes groups the expr-lang builtins offered in placeholders by
// the names of their parameters.
var builtinShapes = []struct {
	params []string
	names  []string
}{
	{[]string{"v"}, []string{"len", "int", "float", "string", "type", "keys", "values", "toJSON", "fromJSON"}},
	{[]string{"array"}, []string{"sum", "min", "max", "first", "last", "reverse"}},
	{[]string{"array", "predicate"}, []string{"all", "any", "none", "filter", "find", "count"}},
	{[]string{"array", "mapper"}, []string{"map", "groupBy", "sortBy"}},
	{[]string{"array", "separator"}, []string{"join"}},
	{[]string{"string"}, []string{"trim", "upper", "lower"}},
	{[]string{"string", "separator"}, []string{"split"}},
	{[]string{"string", "old", "new"}, []string{"replace"}},
}

// exprBuiltins maps each name in builtinShapes that the expr-lang version
// in use defines to its parameters.
var exprBuiltins = sync.OnceValue(func() map[string][]string {
	m := make(map[string][]string)

	for _, shape := range builtinShapes {
		for _, name := range shape.names {
			if _, ok := builtin.Index[name]; ok {
				m[name] = shape.params
			}
		}
	}

	return m
})

// ExprLangBuiltinNames returns the sorted names of the expr-lang builtin
// functions with known signatures.
func ExprLangBuiltinNames() []string {
	return slices.Sorted(maps.Keys(exprBuiltins()))
}

// functionCall represents a detected function call in the input.
type functionCall struct {
	name     string // fully qualified function name (e.g., "path.cat")
	argIndex int    // current argument index (0-based)
	inCall   bool   // true if cursor is inside parameter list
}

// detectFunctionCall analyzes the input to determine if the cursor is inside
// a function call's parameter list. It returns the function name, current
// argument index, and whether we're inside a call.
func detectFunctionCall(input string, cursor int) functionCall {
	if cursor > len(input) {
		cursor = len(input)
	}

	openParenPos := openParen(input, cursor)
	if openParenPos == -1 {
		return functionCall{inCall: false}
	}

	// Walk backward from '(' collecting identifier characters and dots.
	nameStart := openParenPos

	for nameStart > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:nameStart])
		if r != '.' && r != '_' &&
			(r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			break
		}

		nameStart -= size
	}

	funcName := strings.TrimSpace(input[nameStart:openParenPos])
	if funcName == "" {
		return functionCall{inCall: false}
	}

	// Count commas at depth 0 in the parameter list.
	argIndex := 0
	depth := 0

	for _, ch := range input[openParenPos+1 : cursor] {
		switch ch {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				argIndex++
			}
		}
	}

	return functionCall{
		name:     funcName,
		argIndex: argIndex,
		inCall:   true,
	}
}

// openParen returns the offset of the unclosed '(' nearest before cursor,
// or -1 if there is none.
func openParen(input string, cursor int) int {
	depth := 0

	for i := cursor - 1; i >= 0; i-- {
		switch input[i] {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				return i
			}

			depth--
		}
	}

	return -1
}

// getSignature retrieves the function signature for a given function name.
// It looks in the expr-lang builtins and then in the environment.
// Returns empty string if the function is not found.
func getSignature(
	env *tmpl.Environment,
	funcName string,
) (signature string, params []string) {
	if params, ok := exprBuiltins()[funcName]; ok {
		return funcName + "(" + strings.Join(params, ", ") + ")", params
	}

	if sig, params, ok := envSignature(env, funcName); ok {
		return sig, params
	}

	return "", nil
}

// envSignature uses reflection to extract the signature of a function value
// in the environment. Returns (signature, params, true) if found,
// ("", nil, false) otherwise.
func envSignature(env *tmpl.Environment, funcName string) (string, []string, bool) {
	fn, ok := env.Lookup(funcName)
	if !ok || fn == nil {
		return "", nil, false
	}

	t := reflect.TypeOf(fn)
	if t.Kind() != reflect.Func {
		return "", nil, false
	}

	numParams := t.NumIn()
	params := make([]string, 0, numParams)

	for i := range numParams {
		paramType := t.In(i)

		if t.IsVariadic() && i == numParams-1 {
			params = append(params, "..."+formatTypeName(paramType.Elem()))
		} else {
			params = append(params, formatTypeName(paramType))
		}
	}

	return funcName + "(" + strings.Join(params, ", ") + ")", params, true
}

// formatTypeName converts a reflect.Type to a readable parameter name.
// Examples: "string", "int", "bool", "func".
func formatTypeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Func:
		return "func"
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "int"
	case reflect.Uint,
		reflect.Uint8,
		reflect.Uint16,
		reflect.Uint32,
		reflect.Uint64:
		return "uint"
	case reflect.Float32, reflect.Float64:
		return "float"
	case reflect.Bool:
		return "bool"
	case reflect.Slice:
		return "slice"
	case reflect.Map:
		return "map"
	case reflect.Ptr:
		return formatTypeName(t.Elem())
	default:
		// Fallback to the type's name if available
		if t.Name() != "" {
			return t.Name()
		}

		return "arg"
	}
}

// renderSignatureHint renders the function signature with the current
// parameter highlighted.
func renderSignatureHint(
	signature string,
	params []string,
	currentArgIdx int,
) string {
	if signature == "" {
		return ""
	}

	// Parse signature: "funcName(param1, param2, ...)"
	lp := strings.Index(signature, "(")
	if lp == -1 || !strings.HasSuffix(signature, ")") {
		return signatureStyle.Render(signature)
	}

	funcName := signature[:lp]

	// If no parameters, just render the signature
	if len(params) == 0 {
		return signatureNameStyle.Render(funcName) +
			signatureStyle.Render("()")
	}

	// Build the signature with highlighted current parameter
	var b strings.Builder
	b.WriteString(signatureNameStyle.Render(funcName))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureSeparatorStyle.Render(", "))
		}

		// Check if this is a variadic parameter
		isVariadic := strings.HasPrefix(param, "...")

		// Highlight the current parameter
		// For variadic parameters, highlight if we're at or beyond that index
		if (isVariadic && currentArgIdx >= i) ||
			(!isVariadic && currentArgIdx == i) {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
