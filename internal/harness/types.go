package harness

// Trace event types.
const (
	EventSubmit = "submit"
	EventPoll   = "poll"
	EventAnswer = "answer"
	EventError  = "error"
)

// TraceEvent is one step of a scenario run.
type TraceEvent struct {
	Type string `json:"type"`

	// submit
	Backend    string `json:"backend,omitempty"`
	Shots      int    `json:"shots,omitempty"`
	Qubits     int    `json:"qubits,omitempty"`
	Iterations *int   `json:"iterations,omitempty"`

	// poll
	JobID  string `json:"job_id,omitempty"`
	Poll   *int   `json:"poll,omitempty"`
	Status string `json:"status,omitempty"`

	// answer
	Value     *int   `json:"value,omitempty"`
	Bitstring string `json:"bitstring,omitempty"`
	Count     int    `json:"count,omitempty"`

	// error
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expectation held.
	Pass bool `json:"pass"`

	// Trace holds the lifecycle events in order.
	Trace []TraceEvent `json:"trace"`

	// Errors lists failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result with an empty trace.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Polls returns the poll events of the trace.
func (r *Result) Polls() []TraceEvent {
	var polls []TraceEvent
	for _, ev := range r.Trace {
		if ev.Type == EventPoll {
			polls = append(polls, ev)
		}
	}
	return polls
}

func intPtr(v int) *int { return &v }
