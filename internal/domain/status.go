package domain

// StatusCategory is the user-facing vocabulary for an attempt.
type StatusCategory string

const (
	StatusIdle              StatusCategory = "idle"
	StatusChecking          StatusCategory = "checking"
	StatusDenied            StatusCategory = "denied"
	StatusAlreadyDone       StatusCategory = "already_done"
	StatusAwaitingSignature StatusCategory = "awaiting_signature"
	StatusPending           StatusCategory = "pending"
	StatusConfirmed         StatusCategory = "confirmed"
	StatusFailed            StatusCategory = "failed"
)

type Status struct {
	Category StatusCategory
	Reason   string
}
