package netdesign

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// Reporter serializes the per problem report blocks written to one sink.
type Reporter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Report writes the banner delimited block of one problem. The lock is held
// for the whole block.
func (r *Reporter) Report(out Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.w, "========== Problem %d: %s ==========\n", int(out.Problem), out.Problem)
	switch {
	case errors.Is(out.Err, ErrInfeasible):
		fmt.Fprintln(r.w, "infeasible input")
	case out.Err != nil:
		fmt.Fprintf(r.w, "failed: %v\n", out.Err)
	default:
		out.Result.Describe(r.w)
		fmt.Fprintf(r.w, "Status %s after %s\n", out.Status, out.Elapsed)
	}
	fmt.Fprintf(r.w, "========== End of problem %d ==========\n", int(out.Problem))
}
