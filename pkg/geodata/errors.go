package geodata

import "github.com/rotisserie/eris"

// Sentinel errors for the spatial data model. Callers match them with eris.Is;
// the functions that return them wrap with operation context first.
var (
	// ErrFrameMismatch is returned when two spatial inputs are compared under
	// different coordinate reference frames. Geometric predicates across
	// frames are numerically meaningless, so this is never coerced or
	// defaulted away.
	ErrFrameMismatch = eris.New("geodata: coordinate reference frame mismatch")

	// ErrDuplicateKey is returned when a join key must be unique on the right
	// side but is not, and fan-out was not requested.
	ErrDuplicateKey = eris.New("geodata: duplicate join key")

	// ErrKeyNotFound is returned when a join key column is absent from a table.
	ErrKeyNotFound = eris.New("geodata: join key column not found")

	// ErrEmptyReduction is returned when a reduction function is applied to an
	// empty value set and does not define that case.
	ErrEmptyReduction = eris.New("geodata: reduction undefined on empty set")
)
