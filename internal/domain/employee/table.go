package employee

// Table is the immutable historical dataset. It is built once and shared by
// every request without locking.
type Table struct {
	records []Record
}

// NewTable copies records into a Table.
func NewTable(records []Record) *Table {
	owned := make([]Record, len(records))
	copy(owned, records)
	return &Table{records: owned}
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.records) }

// At returns the i-th record by value.
func (t *Table) At(i int) Record { return t.records[i] }

// Where returns the records whose Left field equals left exactly, in table
// order. The result is a fresh slice.
func (t *Table) Where(left int) []Record {
	var out []Record
	for _, r := range t.records {
		if r.Left == left {
			out = append(out, r)
		}
	}
	return out
}

// Outcomes counts records per Left value.
func (t *Table) Outcomes() (retained, churned int) {
	for _, r := range t.records {
		switch r.Left {
		case 0:
			retained++
		case 1:
			churned++
		}
	}
	return retained, churned
}
