package l1ions

import (
	"strconv"
	"strings"

	"github.com/banshee-data/composition.report/internal/apt"
)

const opResolveSelection = "resolve selection"

// ResolveSelection turns user tokens holding 1-based catalog indices into
// 0-based species ids. Tokens may themselves hold several space-separated
// indices. The result keeps first-seen order with duplicates removed.
func ResolveSelection(tokens []string, catalogSize int) ([]SpeciesID, error) {
	var ids []SpeciesID
	seen := make(map[SpeciesID]bool)

	for _, token := range tokens {
		for _, field := range strings.Fields(token) {
			n, err := strconv.Atoi(field)
			if err != nil {
				return nil, apt.InvalidInput(opResolveSelection, "range token %q is not a number", field)
			}
			if n < 1 || n > catalogSize {
				return nil, apt.InvalidInput(opResolveSelection, "range token %d outside [1, %d]", n, catalogSize)
			}
			id := SpeciesID(n - 1)
			if seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}

	if len(ids) == 0 {
		return nil, apt.InvalidInput(opResolveSelection, "no species selected")
	}
	return ids, nil
}

// SelectionMask returns a lookup table indexed by species id.
func SelectionMask(ids []SpeciesID, catalogSize int) []bool {
	mask := make([]bool, catalogSize)
	for _, id := range ids {
		if int(id) < catalogSize {
			mask[id] = true
		}
	}
	return mask
}
