// Package types defines the value model, entity types, collaborator
// interfaces, and standard error types for the rowdelta result-consistency
// layer. Every other package in the module builds on these definitions;
// the package itself depends only on the standard library.
package types
