package airtable

// Fields maps Airtable column names to cell values.
type Fields map[string]interface{}

// Record is a single row in an Airtable table.
type Record struct {
	ID          string `json:"id"`
	Fields      Fields `json:"fields"`
	CreatedTime string `json:"createdTime,omitempty"`
}

// recordsEnvelope is the wire shape for create/update/list calls.
type recordsEnvelope struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

// SortField describes one sort clause for List.
type SortField struct {
	Field     string
	Direction string // "asc" or "desc"
}

// ListOptions narrows a List call.
type ListOptions struct {
	Fields          []string
	FilterByFormula string
	Sort            []SortField
	MaxRecords      int
}
