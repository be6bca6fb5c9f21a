// Package tablebase provides types, interfaces, and helpers for working with
// the Tablebase record API.
//
// # Overview
//
// The tablebase package defines the domain types (Record, Fields, RecordPage)
// and the interfaces for the record-oriented client (RecordsClient). A concrete
// implementation is provided by the tbclient package, which wires
// configuration, transport, authentication, and retry behavior. Most consumers
// should import tbclient to construct a client and then interact with the
// interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/tablebase-io/tablebase/pkg/tablebase"
//	  "github.com/tablebase-io/tablebase/pkg/tbclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := tbclient.New(&tablebase.Config{APIKey: "key..."})
//	  if err != nil { log.Fatal(err) }
//
//	  records := cli.Records("appExampleBase", "Tasks")
//	  page, err := records.ListPage(ctx, tablebase.NewListParams().WithPageSize(50))
//	  if err != nil { log.Fatal(err) }
//	  _ = page
//	}
//
// # Queries and pagination
//
// Use ListParams to express list options (fields, filterByFormula, sort, view,
// pageSize, maxRecords). The package also provides helpers for iterating or
// collecting paginated results:
//
//	it := tablebase.NewRecordIterator(ctx, records, tablebase.NewListParams())
//	for it.HasNext() {
//	  rec, err := it.Next()
//	  if err != nil { break }
//	  _ = rec
//	}
//
// or fetch every record at once:
//
//	all, err := tablebase.FetchAllRecords(ctx, records, nil)
//	if err != nil { /* handle error */ }
//	_ = all
//
// Page-at-a-time traversal with a callback:
//
//	err = tablebase.EachPage(ctx, records, nil, func(page *tablebase.RecordPage) error {
//	  for _, rec := range page.Records { _ = rec }
//	  return nil
//	})
//
// # Errors
//
// API errors are represented by APIError. Helpers such as IsNotFound,
// IsRateLimited, IsUnauthorized, and IsInvalidRequest make it easy to branch
// on common error cases. Rate-limited requests (HTTP 429) are retried
// transparently with backoff unless Config.NoRetryIfRateLimited is set.
package tablebase
