// Package js renders Go values as JavaScript source text.
//
// [Render] converts a value to an expression that evaluates to an
// equivalent JavaScript value:
//
//	Render("a\"b")                      // "a\"b"
//	Render([]any{1, true, nil})         // [1,true,null]
//	Render(map[string]int{"b": 2})      // {"b":2}
//	Render(Raw("x => x * 2"))           // x => x * 2
//	Render(uint64(1) << 60)             // 1152921504606846976n
//
// Values that already know their JavaScript form implement [Source]; [Raw]
// is the trivial implementation for text that is already valid code.
//
// [Check] parses JavaScript with tree-sitter and reports the first syntax
// error, which is useful for validating rendered templates.
package js
