package sink

import (
	"fmt"
	"strconv"
)

// ColumnKind is the declared type of a table column.
type ColumnKind int

const (
	String ColumnKind = iota + 1
	Number
)

func (k ColumnKind) String() string {
	switch k {
	case String:
		return "string"
	case Number:
		return "number"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Column declares one table column.
type Column struct {
	Name string
	Kind ColumnKind
}

// StrCol declares a string column.
func StrCol(name string) Column { return Column{Name: name, Kind: String} }

// NumCol declares a number column.
func NumCol(name string) Column { return Column{Name: name, Kind: Number} }

// Cell is one typed table value.
type Cell struct {
	kind ColumnKind
	str  string
	num  float64
}

// Str wraps a string value.
func Str(s string) Cell { return Cell{kind: String, str: s} }

// Num wraps a number value. NaN marks a value that could not be computed.
func Num(f float64) Cell { return Cell{kind: Number, num: f} }

// Int wraps an integer as a number value.
func Int(n int) Cell { return Cell{kind: Number, num: float64(n)} }

// Kind returns the cell's type.
func (c Cell) Kind() ColumnKind { return c.kind }

// Text returns the string value of a String cell.
func (c Cell) Text() string { return c.str }

// Value returns the numeric value of a Number cell.
func (c Cell) Value() float64 { return c.num }

// Format renders the cell for text output.
func (c Cell) Format() string {
	if c.kind == String {
		return c.str
	}
	return strconv.FormatFloat(c.num, 'g', 6, 64)
}

// Table is a named set of rows conforming to a fixed column schema.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]Cell
}

// NewTable declares a table. Columns cannot change afterwards.
func NewTable(name string, columns ...Column) *Table {
	return &Table{Name: name, Columns: columns}
}

// Append adds a row after checking it against the schema.
func (t *Table) Append(cells ...Cell) error {
	if len(cells) != len(t.Columns) {
		return fmt.Errorf("table %q: row has %d cells, schema has %d columns", t.Name, len(cells), len(t.Columns))
	}
	for i, c := range cells {
		if c.kind != t.Columns[i].Kind {
			return fmt.Errorf("table %q: column %q wants %s, got %s", t.Name, t.Columns[i].Name, t.Columns[i].Kind, c.kind)
		}
	}
	t.Rows = append(t.Rows, cells)
	return nil
}
