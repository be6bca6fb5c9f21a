package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/tablebase-io/tablebase/internal/http"
	"github.com/tablebase-io/tablebase/pkg/tablebase"
)

// RecordsClient implements tablebase.RecordsClient for one table in one base.
type RecordsClient struct {
	httpClient *http.Client
	basePath   string
	scopeErr   error
}

// NewRecordsClient creates a records client scoped to a table. The table may
// be addressed by name or id; the name is URL-escaped into the path. A missing
// base or table is reported by the first operation, not here, so that Records
// stays chainable.
func NewRecordsClient(httpClient *http.Client, apiVersion, baseID, tableNameOrID string) *RecordsClient {
	client := &RecordsClient{
		httpClient: httpClient,
		basePath:   "/" + apiVersion + "/" + baseID + "/" + url.PathEscape(tableNameOrID),
	}

	if baseID == "" {
		client.scopeErr = tablebase.ErrBaseIDRequired
	} else if tableNameOrID == "" {
		client.scopeErr = tablebase.ErrTableRequired
	}

	return client
}

// writeBody is the request body shape of record writes: the field values plus
// any passthrough write options flattened alongside them.
type writeBody struct {
	Fields   tablebase.Fields `json:"fields"`
	Typecast bool             `json:"typecast,omitempty"`
}

func newWriteBody(fields tablebase.Fields, opts *tablebase.WriteOptions) writeBody {
	body := writeBody{Fields: fields}
	if opts != nil {
		body.Typecast = opts.Typecast
	}

	return body
}

// Find implements tablebase.RecordsClient.Find.
func (c *RecordsClient) Find(ctx context.Context, recordID string) (*tablebase.Record, error) {
	if c.scopeErr != nil {
		return nil, c.scopeErr
	}

	if recordID == "" {
		return nil, tablebase.ErrRecordIDRequired
	}

	resp, err := c.httpClient.Get(ctx, c.basePath+"/"+recordID, nil)
	if err != nil {
		return nil, fmt.Errorf("finding record: %w", err)
	}

	return decodeRecord(resp.Body)
}

// Create implements tablebase.RecordsClient.Create.
func (c *RecordsClient) Create(ctx context.Context, fields tablebase.Fields, opts *tablebase.WriteOptions) (*tablebase.Record, error) {
	if c.scopeErr != nil {
		return nil, c.scopeErr
	}

	if fields == nil {
		return nil, tablebase.ErrFieldsRequired
	}

	resp, err := c.httpClient.Post(ctx, c.basePath, newWriteBody(fields, opts))
	if err != nil {
		return nil, fmt.Errorf("creating record: %w", err)
	}

	return decodeRecord(resp.Body)
}

// Update implements tablebase.RecordsClient.Update. Fields not named in the
// change set are left untouched server-side.
func (c *RecordsClient) Update(ctx context.Context, recordID string, fields tablebase.Fields, opts *tablebase.WriteOptions) (*tablebase.Record, error) {
	if c.scopeErr != nil {
		return nil, c.scopeErr
	}

	if recordID == "" {
		return nil, tablebase.ErrRecordIDRequired
	}

	resp, err := c.httpClient.Patch(ctx, c.basePath+"/"+recordID, newWriteBody(fields, opts))
	if err != nil {
		return nil, fmt.Errorf("updating record: %w", err)
	}

	return decodeRecord(resp.Body)
}

// Replace implements tablebase.RecordsClient.Replace. Fields not named in the
// change set are cleared server-side.
func (c *RecordsClient) Replace(ctx context.Context, recordID string, fields tablebase.Fields, opts *tablebase.WriteOptions) (*tablebase.Record, error) {
	if c.scopeErr != nil {
		return nil, c.scopeErr
	}

	if recordID == "" {
		return nil, tablebase.ErrRecordIDRequired
	}

	resp, err := c.httpClient.Put(ctx, c.basePath+"/"+recordID, newWriteBody(fields, opts))
	if err != nil {
		return nil, fmt.Errorf("replacing record: %w", err)
	}

	return decodeRecord(resp.Body)
}

// Destroy implements tablebase.RecordsClient.Destroy.
func (c *RecordsClient) Destroy(ctx context.Context, recordID string) (*tablebase.DeletedRecord, error) {
	if c.scopeErr != nil {
		return nil, c.scopeErr
	}

	if recordID == "" {
		return nil, tablebase.ErrRecordIDRequired
	}

	resp, err := c.httpClient.Delete(ctx, c.basePath+"/"+recordID)
	if err != nil {
		return nil, fmt.Errorf("destroying record: %w", err)
	}

	var deleted tablebase.DeletedRecord

	err = json.Unmarshal(resp.Body, &deleted)
	if err != nil {
		return nil, fmt.Errorf("parsing delete response: %w", err)
	}

	return &deleted, nil
}

// ListPage implements tablebase.RecordsClient.ListPage. Parameters are
// validated locally; nothing reaches the network on a validation failure.
// Record order in the returned page matches server response order exactly.
func (c *RecordsClient) ListPage(ctx context.Context, params *tablebase.ListParams) (*tablebase.RecordPage, error) {
	if c.scopeErr != nil {
		return nil, c.scopeErr
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, c.basePath, query)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}

	var page tablebase.RecordPage

	err = json.Unmarshal(resp.Body, &page)
	if err != nil {
		return nil, fmt.Errorf("parsing record page: %w", err)
	}

	return &page, nil
}

// decodeRecord replaces an in-memory snapshot wholesale from a response body.
func decodeRecord(body []byte) (*tablebase.Record, error) {
	var record tablebase.Record

	err := json.Unmarshal(body, &record)
	if err != nil {
		return nil, fmt.Errorf("parsing record: %w", err)
	}

	return &record, nil
}
