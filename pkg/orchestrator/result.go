package orchestrator

// Result aggregates the outcome of one run for the trigger surface and
// the run ledger.
type Result struct {
	Processed     int      `json:"processed"`
	Replied       int      `json:"replied"`
	Skipped       int      `json:"skipped"`
	Failed        int      `json:"failed"`
	TotalComments int      `json:"totalComments"`
	Errors        []string `json:"errors"`

	// Message is set when the run short-circuited without processing
	// (e.g. global pause).
	Message string `json:"message,omitempty"`
}

func newResult() *Result {
	return &Result{Errors: []string{}}
}
