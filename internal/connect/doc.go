// Package connect is a small client for the platform's public REST API. It
// covers the two endpoints the CLI needs: the catalogue of event definitions
// used to validate extension event handlers, and the bulk update of
// translation attributes.
package connect
