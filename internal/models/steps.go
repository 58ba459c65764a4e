package models

const (
	// StepCount is the number of steps in the hunting methodology.
	StepCount = 10
	// PendingNote is the note of a step the model did not comment on.
	PendingNote = "Pending"
)

// stepNames is indexed by step number minus one.
var stepNames = [StepCount]string{
	"Define opportunity",
	"Scan universe",
	"Prioritise & score",
	"Insight & hypothesis",
	"PepsiCo value proposition",
	"Internal/bottler alignment",
	"Approach plan",
	"Discovery & qualification",
	"Proposal & negotiation",
	"Pilot & learn",
}

// StepNames returns the canonical step names in methodology order.
func StepNames() [StepCount]string {
	return stepNames
}

// StepName returns the canonical name of step n, counted from 1. The second return value is false when n is out of
// range.
func StepName(n int) (string, bool) {
	if n < 1 || n > StepCount {
		return "", false
	}
	return stepNames[n-1], true
}
