package tablebase

import (
	"time"
)

// Fields is the dynamic field bag of a record: a mapping from field name to
// an opaque JSON value (string, number, bool, list, nested mapping, or nil).
type Fields map[string]interface{}

// Record represents one row in a table. ID is assigned by the service at
// creation and never changes; Fields is replaced wholesale on every
// successful round trip.
type Record struct {
	ID          string    `json:"id"                    yaml:"id"`
	Fields      Fields    `json:"fields"                yaml:"fields"`
	CreatedTime time.Time `json:"createdTime,omitempty" yaml:"createdTime,omitempty"`
}

// Get returns the value of a single named field, or nil if absent.
func (r *Record) Get(name string) interface{} {
	return r.Fields[name]
}

// Set sets a single named field on the in-memory snapshot. It does not issue
// a network call; use RecordsClient.Update to persist changes.
func (r *Record) Set(name string, value interface{}) {
	if r.Fields == nil {
		r.Fields = Fields{}
	}

	r.Fields[name] = value
}

// RecordPage is one bounded batch of records returned by a single list call.
// Offset is the opaque continuation token for the next page; it is empty when
// the collection is exhausted.
type RecordPage struct {
	Records []Record `json:"records"          yaml:"records"`
	Offset  string   `json:"offset,omitempty" yaml:"offset,omitempty"`
}

// DeletedRecord is the acknowledgement returned by a destroy call.
type DeletedRecord struct {
	ID      string `json:"id"      yaml:"id"`
	Deleted bool   `json:"deleted" yaml:"deleted"`
}

// WriteOptions is an open options bag merged into the request body of write
// operations. It is passed through to the service, not interpreted locally.
type WriteOptions struct {
	// Typecast requests lenient type coercion of field values on write.
	Typecast bool `json:"typecast,omitempty" yaml:"typecast,omitempty"`
}

// SortDirection is the direction of a single sort field.
type SortDirection string

const (
	// SortAsc sorts ascending.
	SortAsc SortDirection = "asc"

	// SortDesc sorts descending.
	SortDesc SortDirection = "desc"
)

// SortField is one field/direction pair of a list sort specification.
type SortField struct {
	Field     string        `json:"field"               yaml:"field"`
	Direction SortDirection `json:"direction,omitempty" yaml:"direction,omitempty"`
}

// CellFormat selects the representation of cell values in list responses.
type CellFormat string

const (
	// CellFormatJSON returns cell values as JSON values.
	CellFormatJSON CellFormat = "json"

	// CellFormatString returns cell values as user-facing strings.
	CellFormatString CellFormat = "string"
)
