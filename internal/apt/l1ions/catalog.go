package l1ions

import "fmt"

// SpeciesCatalog maps species ids to names. Ids are dense: 0..Len()-1, in
// the order the source declared them.
type SpeciesCatalog struct {
	names []string
}

// NewSpeciesCatalog builds a catalog from names in id order.
func NewSpeciesCatalog(names ...string) SpeciesCatalog {
	return SpeciesCatalog{names: append([]string(nil), names...)}
}

// Len returns the number of species.
func (c SpeciesCatalog) Len() int { return len(c.names) }

// Name returns the display name for id.
func (c SpeciesCatalog) Name(id SpeciesID) string {
	if !id.Ranged() {
		return "unranged"
	}
	if int(id) >= len(c.names) {
		return fmt.Sprintf("species-%d", id)
	}
	return c.names[id]
}

// Names returns a copy of the names in id order.
func (c SpeciesCatalog) Names() []string {
	return append([]string(nil), c.names...)
}

// Contains reports whether id is a catalog species.
func (c SpeciesCatalog) Contains(id SpeciesID) bool {
	return id.Ranged() && int(id) < len(c.names)
}
