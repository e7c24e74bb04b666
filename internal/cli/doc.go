// Package cli builds the neurogrid command tree. It merges defaults, the
// YAML config file and command-line flags into the application's
// configuration and maps bad input to exit codes.
package cli
