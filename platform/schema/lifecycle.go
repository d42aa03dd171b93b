package schema

// Plan statuses.
const (
	PdiActive       = "Active"
	PdiInactive     = "Inactive"
	PdiCompleted    = "Completed"
	PdiNotCompleted = "Not-completed"
	PdiBlocked      = "Blocked"
)

// Plan evaluation outcomes.
const (
	EvalNotStarted              = "Not-started"
	EvalUnsatisfactory          = "Unsatisfactory"
	EvalPartiallyUnsatisfactory = "Partially-unsatisfactory"
	EvalSatisfactory            = "Satisfactory"
	EvalExcellent               = "Excellent"
)

func ValidPdiStatus(status string) bool {
	switch status {
	case PdiActive, PdiInactive, PdiCompleted, PdiNotCompleted, PdiBlocked:
		return true
	}
	return false
}

func ValidPdiEvaluation(evaluation string) bool {
	switch evaluation {
	case EvalNotStarted, EvalUnsatisfactory, EvalPartiallyUnsatisfactory, EvalSatisfactory, EvalExcellent:
		return true
	}
	return false
}

// PdiStatusTerminal reports whether a plan status permits no further
// transitions.
func PdiStatusTerminal(status string) bool {
	return status == PdiCompleted || status == PdiNotCompleted
}

// CanTransitionPdiStatus reports whether a plan may move from one status to
// another. Writing the current status back is always allowed; any move between
// non-terminal statuses is allowed; terminal statuses do not transition.
func CanTransitionPdiStatus(from, to string) bool {
	if from == to {
		return true
	}
	return !PdiStatusTerminal(from)
}
