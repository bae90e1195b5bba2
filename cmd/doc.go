// Package cmd implements the command-line interface of tsched.
//
// The package is organized into several subpackages:
//
//   - check: Validate an input file locally and write verdicts and audit trails
//   - serve: Start a tsched server that validates input documents over RPC
//   - remote: Send an input file to a tsched server (check, ping)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// Every flag can also be set with an environment variable TSCHED_<FLAG>
// (dashes replaced by underscores) or in the file given with --config.
//
// See tsched -help for a list of all commands.
package cmd
