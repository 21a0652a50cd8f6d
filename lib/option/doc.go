// Package option models the typed build-time switches of a board configuration.
//
// An Option is a named value (boolean, integer, string or symbol) together with
// the layer it came from. Names are namespaced by subsystem, for example
// "filesystem.fat" or "security.backend"; the namespace is the segment before
// the first dot.
//
// A Layer is an immutable set of options declared by one source: either the
// shared baseline that every board includes, or a board-specific override.
// Layers are built once with NewLayer and only read afterwards, so a single
// baseline can be shared by any number of concurrent resolutions.
package option
