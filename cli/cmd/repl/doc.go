// Package repl implements an interactive template console.
//
// Each line typed in eval mode is rendered as a template against the
// session's expression environment, with the result previewed on every
// keystroke. Command mode (toggled with Esc) manages variables, the output
// check and a multi-line template buffer edited in $EDITOR.
package repl
