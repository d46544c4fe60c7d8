// Package cmd implements the lake CLI: the cobra root command, the
// interactive REPL, slash-command dispatch and the login flow.
package cmd
