package posfile

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/banshee-data/composition.report/internal/apt"
	"github.com/banshee-data/composition.report/internal/apt/l1ions"
)

const opParseRRNG = "parse range file"

// Range assigns mass-to-charge ratios in [Low, High] to Species.
type Range struct {
	Low, High float64
	Species   l1ions.SpeciesID
}

// RangeTable is a parsed range file: the species catalog plus
// non-overlapping ranges sorted by Low.
type RangeTable struct {
	Catalog l1ions.SpeciesCatalog
	Ranges  []Range
}

// Lookup returns the species for a mass-to-charge ratio, or
// l1ions.Unranged when no range covers it.
func (t *RangeTable) Lookup(mz float64) l1ions.SpeciesID {
	// first range whose High is >= mz
	i := sort.Search(len(t.Ranges), func(i int) bool { return t.Ranges[i].High >= mz })
	if i < len(t.Ranges) && t.Ranges[i].Low <= mz {
		return t.Ranges[i].Species
	}
	return l1ions.Unranged
}

// ParseRRNG reads an RRNG range file.
//
// The [Ions] section declares species names as IonN=Name. Each [Ranges]
// entry is RangeN=low high followed by Key:Value tokens; Vol and Color are
// ignored and the remaining Element:count tokens name the species. A range
// whose composition has several elements (a molecular ion) gets a combined
// name such as "FeO2", appended to the catalog after the declared ions.
func ParseRRNG(r io.Reader) (*RangeTable, error) {
	var (
		section string
		names   []string
		index   = map[string]l1ions.SpeciesID{}
		ranges  []Range
		lineNo  int
	)
	addName := func(name string) l1ions.SpeciesID {
		if id, ok := index[name]; ok {
			return id
		}
		id := l1ions.SpeciesID(len(names))
		names = append(names, name)
		index[name] = id
		return id
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToLower(strings.Trim(line, "[]"))
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, apt.InvalidInput(opParseRRNG, "line %d: expected key=value, got %q", lineNo, line)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if key == "number" {
			continue
		}

		switch section {
		case "ions":
			if !strings.HasPrefix(key, "ion") {
				continue
			}
			if value == "" {
				return nil, apt.InvalidInput(opParseRRNG, "line %d: empty ion name", lineNo)
			}
			addName(value)
		case "ranges":
			if !strings.HasPrefix(key, "range") {
				continue
			}
			rg, name, err := parseRangeLine(value)
			if err != nil {
				return nil, apt.InvalidInput(opParseRRNG, "line %d: %v", lineNo, err)
			}
			rg.Species = addName(name)
			ranges = append(ranges, rg)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(ranges) == 0 {
		return nil, apt.InvalidInput(opParseRRNG, "no ranges defined")
	}
	if len(names) >= int(l1ions.Unranged) {
		return nil, apt.InvalidInput(opParseRRNG, "too many species: %d", len(names))
	}

	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Low < ranges[j].Low })
	for i := 1; i < len(ranges); i++ {
		if ranges[i].Low <= ranges[i-1].High {
			return nil, apt.InvalidInput(opParseRRNG, "ranges [%g, %g] and [%g, %g] overlap",
				ranges[i-1].Low, ranges[i-1].High, ranges[i].Low, ranges[i].High)
		}
	}

	return &RangeTable{
		Catalog: l1ions.NewSpeciesCatalog(names...),
		Ranges:  ranges,
	}, nil
}

type elementCount struct {
	name  string
	count int
}

func parseRangeLine(value string) (Range, string, error) {
	fields := strings.Fields(value)
	if len(fields) < 3 {
		return Range{}, "", fmt.Errorf("range needs low, high and a composition: %q", value)
	}
	low, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Range{}, "", fmt.Errorf("bad low bound %q", fields[0])
	}
	high, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Range{}, "", fmt.Errorf("bad high bound %q", fields[1])
	}
	if !(low < high) {
		return Range{}, "", fmt.Errorf("low bound %g not below high bound %g", low, high)
	}

	var parts []elementCount
	for _, tok := range fields[2:] {
		name, cnt, ok := strings.Cut(tok, ":")
		if !ok {
			return Range{}, "", fmt.Errorf("bad composition token %q", tok)
		}
		switch strings.ToLower(name) {
		case "vol", "color", "name":
			continue
		}
		n, err := strconv.Atoi(cnt)
		if err != nil || n < 0 {
			return Range{}, "", fmt.Errorf("bad element count %q", tok)
		}
		if n > 0 {
			parts = append(parts, elementCount{name: name, count: n})
		}
	}
	if len(parts) == 0 {
		return Range{}, "", fmt.Errorf("range %g-%g has no element", low, high)
	}

	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(p.name)
		if p.count > 1 {
			sb.WriteString(strconv.Itoa(p.count))
		}
	}
	return Range{Low: low, High: high}, sb.String(), nil
}
