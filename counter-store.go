package plate

import (
	"context"
	"strconv"
)

// CounterKey identifies the single counter record in every backend.
const CounterKey = "total"

type Total uint32

func (t Total) String() string {
	return strconv.FormatUint(uint64(t), 10)
}

// CounterStore holds the running total. Implementations must be safe for
// concurrent use.
type CounterStore interface {
	// Total returns the current value without mutating it.
	Total(ctx context.Context) (Total, error)
	// Add increases the total by delta and returns the result. A delta below
	// MinDelta behaves like Total.
	Add(ctx context.Context, delta Delta) (Total, error)
}
