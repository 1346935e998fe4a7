package domain

// Column titles shown to learners.
const (
	ColumnEnglish = "English Sentence"
	ColumnDirect  = "Direct Marathi Meaning"
	ColumnSimple  = "Simple Marathi Meaning"
)

// Table is the ordered set of records of one run, shaped for display.
type Table struct {
	records []SentenceRecord
}

// NewTable keeps records in the order given. The slice is copied.
func NewTable(records []SentenceRecord) Table {
	cp := make([]SentenceRecord, len(records))
	copy(cp, records)
	return Table{records: cp}
}

func (t Table) Columns() []string {
	return []string{ColumnEnglish, ColumnDirect, ColumnSimple}
}

func (t Table) Rows() [][]string {
	rows := make([][]string, 0, len(t.records))
	for _, r := range t.records {
		rows = append(rows, []string{r.English, r.DirectTranslation, r.SimpleExplanation})
	}
	return rows
}

func (t Table) Len() int {
	return len(t.records)
}
