package source

// RawExpense is one line of a JSONL expense file.
type RawExpense struct {
	Ref         string `json:"ref,omitempty"` // optional dedup key; the last line per ref wins
	Date        string `json:"date"`
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
}

// Format is the encoding of an import file.
type Format string

// Supported import formats.
const (
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
)

// DiscoveredFile represents an expense file found during scanning.
type DiscoveredFile struct {
	Path   string
	Format Format
}
