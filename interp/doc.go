// Package interp scans template text into literal and placeholder chunks.
//
// A template is JavaScript source in which '$' marks an embedded host
// expression:
//
//	var user = $name, roles = $(roles[1:]);
//
// scans as
//
//	Literal("var user = ")
//	Placeholder("name")
//	Literal(", roles = ")
//	Placeholder("(roles[1:])")
//	Literal(";")
//
// # Escapes
//
// Inside literal text a backslash makes the next character literal and is
// itself dropped: "\$" is a literal dollar sign and "\\" a single backslash.
// A backslash before a double quote is dropped the same way; the text
// reaching the scanner has already passed through the host literal syntax,
// which reduces \\\" to \", so one remaining layer is removed. A backslash
// at the very end of the text is kept.
//
// # Placeholders
//
// The expression after a marker is read by a [Parser]. The default,
// [AtomParser], reads one atom of the expr-lang language and never
// continues past it, so "$a.b" is the placeholder a followed by the literal
// ".b". Wrap anything longer in parentheses.
//
// # Iteration
//
// [Scanner.Scan] is a pure function of its text and [Cursor]; the cursor is
// a value, so scans can be paused, restarted from any earlier cursor, or run
// concurrently without coordination. [Scanner.Chunks] wraps it in an
// [iter.Seq2].
package interp
