// Package stats counts what a synchronization did per module (updated and
// skipped rows, row errors) and renders the summary printed at the end of a
// sync command.
package stats
