package progress

import "github.com/fernwood-lab/studyflow-backend/internal/domain"

// CompleteResult is returned by Complete: the frozen record plus the next
// module the user may move to. NextModule is nil when the study plan is
// finished, and also when the recompute fails after the completion already
// committed (the completion stands; the pointer is advisory).
type CompleteResult struct {
	Record     *domain.ProgressRecord
	NextModule *domain.Module
}
