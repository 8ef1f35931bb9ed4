// Package pypi resolves the latest stable release of the extension runner
// from the Python Package Index. The answer is cached on disk for a day so
// repeated validations do not hit the network.
package pypi
