package access

import "github.com/fernwood-lab/studyflow-backend/internal/domain"

// Decision is the outcome of a module or path access check. Accessible false
// carries the denial reason; NextModule points at the first incomplete
// prerequisite when the sequence chain broke. ReviewOnly marks a path whose
// backing module is COMPLETED: the content stays readable but every mutation
// against it is rejected.
type Decision struct {
	Accessible bool
	ReviewOnly bool
	Reason     domain.DenialReason
	NextModule *domain.Module
}
