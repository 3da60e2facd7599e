// Package ids generates the opaque 128-bit identifiers used for every
// record in the cognitive core (knowledge entries, memory entries,
// experiences, strategies).
package ids

import "github.com/google/uuid"

// ID is an opaque 128-bit identifier. Callers must not assume any
// internal structure beyond string equality and non-emptiness.
type ID string

// New returns a fresh random identifier.
func New() ID {
	return ID(uuid.NewString())
}

// Empty reports whether id is the zero value.
func (id ID) Empty() bool {
	return id == ""
}

func (id ID) String() string {
	return string(id)
}
