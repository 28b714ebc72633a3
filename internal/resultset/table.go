package resultset

import "figimapper/internal/figi"

// Table is the fixed-column projection of a ResultSet, one row per identifier
type Table struct {
	Columns []string
	Index   []string
	Rows    [][]string
	// Missing marks rows whose identifier was not matched; all their cells are empty
	Missing []bool
}

// Table projects the result set onto figi.Columns in submission order
func (rs *ResultSet) Table() Table {
	t := Table{
		Columns: append([]string(nil), figi.Columns...),
		Index:   rs.Keys(),
		Rows:    make([][]string, 0, rs.Len()),
		Missing: make([]bool, 0, rs.Len()),
	}

	for _, id := range t.Index {
		e := rs.entries[id]
		if !e.OK() {
			t.Rows = append(t.Rows, make([]string, len(t.Columns)))
			t.Missing = append(t.Missing, true)
			continue
		}
		t.Rows = append(t.Rows, e.Record.Values())
		t.Missing = append(t.Missing, false)
	}
	return t
}
