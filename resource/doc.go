// Package resource implements generic handle tables.
//
// A table issues small opaque integer handles for values and guarantees
// exactly-once removal: the first Remove wins, later ones are no-ops, and
// values implementing Dropper are released when they leave the table.
// Engines use tables to represent compiled models as opaque tokens.
package resource
