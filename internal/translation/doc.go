// Package translation synchronizes translation attributes edited in a
// spreadsheet with the platform. Rows whose action is "update" are sent in a
// single bulk call and marked as done in the workbook; every other row is
// counted as skipped.
package translation
