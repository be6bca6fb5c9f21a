package tablebase

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// ListParams represents the query parameters accepted by record listing.
type ListParams struct {
	// Fields restricts the returned field set of each record.
	Fields []string

	// FilterByFormula filters records with a formula evaluated per record.
	FilterByFormula string

	// MaxRecords caps the total number of records returned across all pages.
	MaxRecords int

	// PageSize is the number of records per page (service maximum 100).
	PageSize int

	// Sort orders the records by one or more field/direction pairs.
	Sort []SortField

	// View scopes the listing to the records and order of a named view.
	View string

	// CellFormat selects the cell value representation.
	CellFormat CellFormat

	// TimeZone and UserLocale apply to string cell formatting.
	TimeZone   string
	UserLocale string

	// Offset is the opaque page cursor. Empty means the start of the
	// collection; it is distinct from a server response carrying no offset,
	// which means the collection is exhausted.
	Offset string

	// ReturnFieldsByFieldID keys the field bag by field id instead of name.
	ReturnFieldsByFieldID bool
}

// NewListParams creates an empty ListParams.
func NewListParams() *ListParams {
	return &ListParams{}
}

// WithFields restricts the returned fields, replacing any prior selection.
func (p *ListParams) WithFields(fields ...string) *ListParams {
	p.Fields = fields

	return p
}

// WithFilterByFormula sets the filter formula.
func (p *ListParams) WithFilterByFormula(formula string) *ListParams {
	p.FilterByFormula = formula

	return p
}

// WithMaxRecords caps the total number of records returned.
func (p *ListParams) WithMaxRecords(max int) *ListParams {
	p.MaxRecords = max

	return p
}

// WithPageSize sets the page size.
func (p *ListParams) WithPageSize(size int) *ListParams {
	p.PageSize = size

	return p
}

// WithSort appends a sort field.
func (p *ListParams) WithSort(field string, direction SortDirection) *ListParams {
	p.Sort = append(p.Sort, SortField{Field: field, Direction: direction})

	return p
}

// WithView scopes the listing to a view.
func (p *ListParams) WithView(view string) *ListParams {
	p.View = view

	return p
}

// WithCellFormat sets the cell value representation.
func (p *ListParams) WithCellFormat(format CellFormat) *ListParams {
	p.CellFormat = format

	return p
}

// WithOffset resumes the listing at the given page cursor.
func (p *ListParams) WithOffset(offset string) *ListParams {
	p.Offset = offset

	return p
}

// Clone returns a copy of the parameters with an independent sort slice, so a
// traversal can advance its cursor without mutating the caller's parameters.
func (p *ListParams) Clone() *ListParams {
	if p == nil {
		return &ListParams{}
	}

	clone := *p
	clone.Fields = append([]string(nil), p.Fields...)
	clone.Sort = append([]SortField(nil), p.Sort...)

	return &clone
}

// Validate checks the parameters locally, before any network call.
func (p *ListParams) Validate() error {
	if p == nil {
		return nil
	}

	if p.MaxRecords < 0 {
		return fmt.Errorf("%w: maxRecords must not be negative", ErrInvalidListParam)
	}

	if p.PageSize < 0 || p.PageSize > maxPageSize {
		return fmt.Errorf("%w: pageSize must be between 0 and %d", ErrInvalidListParam, maxPageSize)
	}

	for _, s := range p.Sort {
		if s.Field == "" {
			return fmt.Errorf("%w: sort entries require a field", ErrInvalidListParam)
		}

		if s.Direction != "" && s.Direction != SortAsc && s.Direction != SortDesc {
			return fmt.Errorf("%w: sort direction must be %q or %q", ErrInvalidListParam, SortAsc, SortDesc)
		}
	}

	if p.CellFormat != "" && p.CellFormat != CellFormatJSON && p.CellFormat != CellFormatString {
		return fmt.Errorf("%w: cellFormat must be %q or %q", ErrInvalidListParam, CellFormatJSON, CellFormatString)
	}

	return nil
}

const maxPageSize = 100

// ToValues converts the parameters to URL query values.
func (p *ListParams) ToValues() url.Values {
	values := url.Values{}

	if p == nil {
		return values
	}

	for _, field := range p.Fields {
		values.Add("fields[]", field)
	}

	if p.FilterByFormula != "" {
		values.Set("filterByFormula", p.FilterByFormula)
	}

	if p.MaxRecords > 0 {
		values.Set("maxRecords", strconv.Itoa(p.MaxRecords))
	}

	if p.PageSize > 0 {
		values.Set("pageSize", strconv.Itoa(p.PageSize))
	}

	for i, s := range p.Sort {
		values.Set(fmt.Sprintf("sort[%d][field]", i), s.Field)

		if s.Direction != "" {
			values.Set(fmt.Sprintf("sort[%d][direction]", i), string(s.Direction))
		}
	}

	if p.View != "" {
		values.Set("view", p.View)
	}

	if p.CellFormat != "" {
		values.Set("cellFormat", string(p.CellFormat))
	}

	if p.TimeZone != "" {
		values.Set("timeZone", p.TimeZone)
	}

	if p.UserLocale != "" {
		values.Set("userLocale", p.UserLocale)
	}

	if p.Offset != "" {
		values.Set("offset", p.Offset)
	}

	if p.ReturnFieldsByFieldID {
		values.Set("returnFieldsByFieldId", "true")
	}

	return values
}

// ListParamsFromMap builds ListParams from a dynamically assembled parameter
// map. Unknown keys are rejected locally with an error enumerating every
// offender, and type mismatches are rejected likewise; nothing reaches the
// network on failure.
//
//nolint:cyclop,funlen // one case per accepted parameter keeps this flat
func ListParamsFromMap(raw map[string]interface{}) (*ListParams, error) {
	params := NewListParams()

	var unknown []string

	for key, value := range raw {
		switch key {
		case "fields":
			fields, err := toStringSlice(value)
			if err != nil {
				return nil, fmt.Errorf("%w: fields: %w", ErrInvalidListParam, err)
			}

			params.Fields = fields
		case "filterByFormula":
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: filterByFormula must be a string", ErrInvalidListParam)
			}

			params.FilterByFormula = s
		case "maxRecords":
			n, err := toInt(value)
			if err != nil {
				return nil, fmt.Errorf("%w: maxRecords: %w", ErrInvalidListParam, err)
			}

			params.MaxRecords = n
		case "pageSize":
			n, err := toInt(value)
			if err != nil {
				return nil, fmt.Errorf("%w: pageSize: %w", ErrInvalidListParam, err)
			}

			params.PageSize = n
		case "sort":
			sortFields, err := toSortFields(value)
			if err != nil {
				return nil, fmt.Errorf("%w: sort: %w", ErrInvalidListParam, err)
			}

			params.Sort = sortFields
		case "view":
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: view must be a string", ErrInvalidListParam)
			}

			params.View = s
		case "cellFormat":
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: cellFormat must be a string", ErrInvalidListParam)
			}

			params.CellFormat = CellFormat(s)
		case "timeZone":
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: timeZone must be a string", ErrInvalidListParam)
			}

			params.TimeZone = s
		case "userLocale":
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: userLocale must be a string", ErrInvalidListParam)
			}

			params.UserLocale = s
		case "offset":
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: offset must be a string", ErrInvalidListParam)
			}

			params.Offset = s
		case "returnFieldsByFieldId":
			b, ok := value.(bool)
			if !ok {
				return nil, fmt.Errorf("%w: returnFieldsByFieldId must be a boolean", ErrInvalidListParam)
			}

			params.ReturnFieldsByFieldID = b
		default:
			unknown = append(unknown, key)
		}
	}

	if len(unknown) > 0 {
		sort.Strings(unknown)

		return nil, fmt.Errorf("%w: %s", ErrUnknownListParams, strings.Join(unknown, ", "))
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	return params, nil
}

func toStringSlice(value interface{}) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return append([]string(nil), v...), nil
	case []interface{}:
		out := make([]string, 0, len(v))

		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected a list of strings, got %T element", item)
			}

			out = append(out, s)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("expected a list of strings, got %T", value)
	}
}

func toInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("expected an integer, got %v", v)
		}

		return int(v), nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", value)
	}
}

func toSortFields(value interface{}) ([]SortField, error) {
	switch v := value.(type) {
	case []SortField:
		return append([]SortField(nil), v...), nil
	case []interface{}:
		out := make([]SortField, 0, len(v))

		for _, item := range v {
			entry, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("expected a list of field/direction pairs, got %T element", item)
			}

			field, _ := entry["field"].(string)
			if field == "" {
				return nil, fmt.Errorf("sort entries require a field")
			}

			direction, _ := entry["direction"].(string)
			out = append(out, SortField{Field: field, Direction: SortDirection(direction)})
		}

		return out, nil
	default:
		return nil, fmt.Errorf("expected a list of field/direction pairs, got %T", value)
	}
}
