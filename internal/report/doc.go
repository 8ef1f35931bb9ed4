// Package report prints validation diagnostics for a terminal.
package report
