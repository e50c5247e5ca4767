// Package batch holds per-item outcomes for bulk catalog writes.
package batch

// ItemStatus is the processing outcome of a single item in a bulk write.
type ItemStatus string

// Item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome for one property in a bulk upsert or delete.
// A failed item never aborts the rest of the batch.
type Result struct {
	id     string
	status ItemStatus
	err    error
}

// NewOK creates a successful result for the given property ID.
func NewOK(id string) Result { return Result{id: id, status: StatusOK} }

// NewError creates a failed result carrying the per-item error.
func NewError(id string, err error) Result { return Result{id: id, status: StatusError, err: err} }

// ID returns the property identifier.
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// OK reports whether the item was processed successfully.
func (r Result) OK() bool { return r.status == StatusOK }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Tally counts successful and failed items in one pass.
func Tally(results []Result) (ok, failed int) {
	for _, r := range results {
		if r.OK() {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}
