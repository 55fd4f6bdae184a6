// Package naming derives component-safe names from origin paths, $ref
// strings, and pre-existing component names.
//
// The single transform, SanitizeComponentName, is the name-derivation
// algorithm the hoist engine applies whenever it registers a schema: strip
// the directory and extension, replace any character outside
// [A-Za-z0-9_.-] with an underscore, trim leading/trailing separators, and
// guard against empty or digit-leading results.
package naming
