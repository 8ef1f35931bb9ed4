// Package cli defines the Cobra command tree for the ccli CLI. Each file
// registers one command with the root command. Commands delegate to internal
// packages for the work and only handle flags, collaborators and output.
package cli
