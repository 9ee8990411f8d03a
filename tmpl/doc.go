// Package tmpl renders interpolation templates into JavaScript source.
//
// A template is text in which each unescaped $ introduces a placeholder
// (see package interp). Rendering copies literal text verbatim and replaces
// each placeholder with the JavaScript source of its value:
//
//	out, err := tmpl.Render(ctx, `var x = $v;`, tmpl.Env(map[string]any{
//		"v": `a"b`,
//	}))
//	// out == `var x = "a\"b";`
//
// Values are converted by [js.Render], so values implementing [js.Source],
// such as [js.Raw], are written verbatim.
//
// # Evaluators
//
// An [Evaluator] produces the value of each placeholder. [Env] evaluates
// placeholders as expr-lang expressions over a set of variables and the
// builtins listed by [Builtins]. [Slots] ignores the expressions and hands
// out pre-resolved values in order.
//
// # Templates
//
// [Compile] scans a template once for repeated execution. [Parse] and
// [ParseReader] additionally cache the scan, keyed by a hash of the source
// and options.
package tmpl
