// Package rowdelta holds module-level metadata shared by the library and
// the lens CLI.
package rowdelta

// Version is the module version reported by "lens version".
const Version = "0.1.0"
