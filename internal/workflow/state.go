// Package workflow runs the ticket-resolution state machine: classify,
// retrieve, draft, review, and either finalize, retry with refined
// context, or escalate to a human.
package workflow

// Stage identifies a step of the ticket pipeline, used for logging and
// progress reporting.
type Stage string

const (
	StageInput        Stage = "INPUT"
	StageClassify     Stage = "CLASSIFY"
	StageRetrieve     Stage = "RETRIEVE"
	StageDraft        Stage = "DRAFT"
	StageReview       Stage = "REVIEW"
	StageRetryQuery   Stage = "RETRY_QUERY"
	StageRetryContext Stage = "RETRY_CONTEXT"
	StageRedraft      Stage = "REDRAFT"
	StageEscalate     Stage = "ESCALATE"
	StageFinalize     Stage = "FINALIZE"
)

// decision is the outcome of review routing.
type decision int

const (
	decisionRetry decision = iota
	decisionEscalate
	decisionFinalize
)

func (d decision) String() string {
	switch d {
	case decisionRetry:
		return "retry"
	case decisionEscalate:
		return "escalate"
	case decisionFinalize:
		return "finalize"
	default:
		return "unknown"
	}
}
