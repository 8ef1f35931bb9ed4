// Package validation checks an extension project before it is deployed.
//
// Validation is a fixed, ordered list of checks. Each check looks at the
// project directory and at what earlier checks discovered (the loaded
// extension classes, the descriptor) and returns diagnostic items. A check
// may stop the run when later checks could not work on what it found.
package validation
