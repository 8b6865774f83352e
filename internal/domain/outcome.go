package domain

// OutcomeStatus is the terminal state recorded for a task.
type OutcomeStatus string

const (
	StatusSkipped   OutcomeStatus = "skipped"
	StatusSucceeded OutcomeStatus = "succeeded"
	StatusFailed    OutcomeStatus = "failed"
)

// Outcome records how a single task finished. Exactly one outcome exists
// per task in a run.
type Outcome struct {
	Task     Task
	Status   OutcomeStatus
	Attempts int
	Err      string
}

// Summary collects the outcomes of a run, in input order.
type Summary struct {
	Outcomes []Outcome
}

// Counts returns the number of skipped, succeeded and failed outcomes.
func (s Summary) Counts() (skipped, succeeded, failed int) {
	for _, o := range s.Outcomes {
		switch o.Status {
		case StatusSkipped:
			skipped++
		case StatusSucceeded:
			succeeded++
		case StatusFailed:
			failed++
		}
	}
	return
}

// Failed returns the outcomes that ended in failure.
func (s Summary) Failed() []Outcome {
	var failed []Outcome
	for _, o := range s.Outcomes {
		if o.Status == StatusFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

// OK reports whether no task failed.
func (s Summary) OK() bool {
	_, _, failed := s.Counts()
	return failed == 0
}

// RunStatus is a point-in-time snapshot of a run, served by the status
// endpoint while a batch is in flight.
type RunStatus struct {
	Total     int  `json:"total"`
	Pending   int  `json:"pending"`
	Skipped   int  `json:"skipped"`
	Succeeded int  `json:"succeeded"`
	Failed    int  `json:"failed"`
	Done      bool `json:"done"`
}
