// Package cli implements the drishti command-line interface.
//
// Each command is a cobra.Command registered on rootCmd from its file's
// init function. RunE functions stay thin: they read flags, then hand off to
// a plain function that takes its inputs explicitly so tests can call it
// without cobra.
//
// # Commands
//
//	drishti dashboard         - full-screen live view (alias: monitor)
//	drishti snapshot [--json] - one fetch, printed as tables or JSON
//	drishti init              - write .drishti.yaml
//	drishti config show|path|set
//	drishti fixture           - serve canned payloads for demos
//	drishti version
//
// # Configuration
//
// loadConfig resolves .drishti.yaml (see the config package for the search
// order), applies --log-level and the endpoint flags, then validates. An
// --interval override pulls the fetch timeout down with it so the two stay
// consistent.
//
// # Errors
//
// Commands return *errors.Error values; Execute prints them once and exits
// with status 1. In --json mode the error is written as an envelope on
// stdout and errReported tells Execute not to print it again.
package cli
