package consent

import (
	"time"

	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

// ConsentStatus is returned by Status: the currently ACTIVE version and
// whether the user has accepted that exact version.
type ConsentStatus struct {
	ActiveVersion domain.ConsentVersion
	Consented     bool
	AcceptedAt    *time.Time // nil unless Consented
}
