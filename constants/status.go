package constants

// RunStatus is the canonical status for a pipeline run and its document record.
type RunStatus string

// Stable values (store these exact strings in DB).
const (
	RunStatusPending    RunStatus = "PENDING"    // created, not yet picked up
	RunStatusProcessing RunStatus = "PROCESSING" // in progress
	RunStatusCompleted  RunStatus = "COMPLETED"  // terminal: decided, action recorded
	RunStatusFlagged    RunStatus = "FLAGGED"    // terminal: decided flag_for_review
	RunStatusFailed     RunStatus = "FAILED"     // terminal failure, no action
)

// Terminal reports whether s is a terminal run status.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFlagged, RunStatusFailed:
		return true
	}
	return false
}

// StepStatus is the status of a single step record in the audit log.
type StepStatus string

const (
	StepStarted   StepStatus = "started"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
)

// WorkflowAction is the closed set of dispositions the decision engine can emit.
type WorkflowAction string

const (
	ActionApprove       WorkflowAction = "approve"
	ActionReject        WorkflowAction = "reject"
	ActionFlagForReview WorkflowAction = "flag_for_review"
	// ActionRequestMoreInfo and ActionReject are declared states with no
	// producing rule in the current decision table; kept for forward
	// compatibility with richer rule sets.
	ActionRequestMoreInfo WorkflowAction = "request_more_info"
	ActionSendEmail       WorkflowAction = "send_email"
)

// StatusForAction maps a decided action to the run's terminal status.
// Only flag_for_review gets a distinct terminal state; every other decided
// action records as COMPLETED with the action on the run.
func StatusForAction(a WorkflowAction) RunStatus {
	if a == ActionFlagForReview {
		return RunStatusFlagged
	}
	return RunStatusCompleted
}
