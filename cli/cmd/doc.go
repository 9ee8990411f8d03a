// Package cmd implements the jstmpl subcommands.
//
// Each command is a kong command struct whose Run method receives the
// context built by the cli package. The [kong.Context] that parsed the
// command line is available to commands through [WithContext].
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the YAML configuration file.
	ConfigIdentifier = "config"
)
