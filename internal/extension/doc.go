// Package extension models the classes an extension project registers with the
// platform. A project declares up to three kinds of extension (extension,
// webapp, anvil) as "package.module:Class" references; the Loader turns each
// reference into a Class describing its base families, decorators, methods and
// the events, schedulables and variables declared through decorators.
//
// The package also reads the extension.json descriptor that sits next to the
// extension source and checks it against an embedded JSON schema.
package extension
