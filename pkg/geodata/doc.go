// Package geodata defines the in-memory spatial data model shared by the
// geokit engines: coordinate reference frames, attribute tables, geometry
// collections, and the key-equality attribute join.
//
// All entities are immutable snapshots; every transform produces a new entity
// so intermediate states stay inspectable. Geometries are represented with
// github.com/twpayne/go-geom types.
package geodata
