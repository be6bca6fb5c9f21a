package tablebase

import (
	"context"
)

// PageLister fetches one page of records. RecordsClient satisfies it; tests
// can substitute their own implementation.
type PageLister interface {
	ListPage(ctx context.Context, params *ListParams) (*RecordPage, error)
}

// EachPage drives a page-at-a-time traversal. Pages are fetched strictly
// sequentially: page k+1 is never requested before page k's response and its
// callback invocation have completed, and no page is fetched twice on the
// success path. The callback receives each page's records in server order.
//
// Traversal ends with nil when the service returns a page without an offset.
// A fetch failure or a callback error stops the traversal permanently and is
// returned; pages already delivered to the callback are not retracted.
func EachPage(ctx context.Context, lister PageLister, params *ListParams, pageFn func(page *RecordPage) error) error {
	if lister == nil {
		return ErrPageListerRequired
	}

	if pageFn == nil {
		return ErrPageCallbackRequired
	}

	cursor := params.Clone()

	for {
		page, err := lister.ListPage(ctx, cursor)
		if err != nil {
			return err
		}

		if err := pageFn(page); err != nil {
			return err
		}

		if page.Offset == "" {
			return nil
		}

		cursor.Offset = page.Offset
	}
}

// FetchAllRecords materializes the whole listing into one slice, preserving
// page order and within-page order.
func FetchAllRecords(ctx context.Context, lister PageLister, params *ListParams) ([]Record, error) {
	var all []Record

	err := EachPage(ctx, lister, params, func(page *RecordPage) error {
		all = append(all, page.Records...)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return all, nil
}

// PageResult carries one page or the error that ended a streamed traversal.
type PageResult struct {
	Records []Record
	Err     error
}

// StreamPages runs a sequential traversal in a goroutine and delivers each
// page on the returned channel. The channel is closed after the final page or
// after the single error result. Cancelling the context ends the stream.
func StreamPages(ctx context.Context, lister PageLister, params *ListParams) <-chan PageResult {
	results := make(chan PageResult)

	go func() {
		defer close(results)

		err := EachPage(ctx, lister, params, func(page *RecordPage) error {
			select {
			case results <- PageResult{Records: page.Records}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			select {
			case results <- PageResult{Err: err}:
			case <-ctx.Done():
			}
		}
	}()

	return results
}

// RecordIterator provides record-level iteration over a paginated listing,
// fetching pages lazily as the caller advances.
type RecordIterator struct {
	ctx     context.Context
	lister  PageLister
	cursor  *ListParams
	current []Record
	index   int
	done    bool
	err     error
}

// NewRecordIterator creates an iterator over the listing described by params.
func NewRecordIterator(ctx context.Context, lister PageLister, params *ListParams) *RecordIterator {
	return &RecordIterator{
		ctx:    ctx,
		lister: lister,
		cursor: params.Clone(),
	}
}

// HasNext reports whether another record is available. It fetches the next
// page when the current one is consumed.
func (it *RecordIterator) HasNext() bool {
	if it.err != nil {
		return false
	}

	if it.index < len(it.current) {
		return true
	}

	if it.done {
		return false
	}

	it.fetchNextPage()

	return it.err == nil && it.index < len(it.current)
}

// Next returns the next record. It returns ErrIterationExhausted once the
// listing is consumed, or the fetch error that ended the iteration.
func (it *RecordIterator) Next() (*Record, error) {
	if !it.HasNext() {
		if it.err != nil {
			return nil, it.err
		}

		return nil, ErrIterationExhausted
	}

	record := it.current[it.index]
	it.index++

	return &record, nil
}

// All consumes the remainder of the iteration into one ordered slice.
func (it *RecordIterator) All() ([]Record, error) {
	var all []Record

	for it.HasNext() {
		record, err := it.Next()
		if err != nil {
			return nil, err
		}

		all = append(all, *record)
	}

	if it.err != nil {
		return nil, it.err
	}

	return all, nil
}

func (it *RecordIterator) fetchNextPage() {
	page, err := it.lister.ListPage(it.ctx, it.cursor)
	if err != nil {
		it.err = err
		it.done = true

		return
	}

	it.current = page.Records
	it.index = 0

	if page.Offset == "" {
		// A response without an offset is the exhaustion signal; an empty
		// cursor on the next request would restart from the beginning.
		it.done = true

		return
	}

	it.cursor.Offset = page.Offset
}
