package consent

import (
	"github.com/google/uuid"

	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

const (
	maxVersionLen = 64
	maxContentLen = 100_000
)

// RecordConsentInput holds parameters for recording a user's acceptance.
// Content is the agreement text the user was shown, snapshotted verbatim
// into the record.
type RecordConsentInput struct {
	UserID  uuid.UUID
	Version string
	Content string
}

// Validate validates the record consent input.
func (i RecordConsentInput) Validate() error {
	var errs []domain.FieldError

	if i.UserID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "required"})
	}

	if i.Version == "" {
		errs = append(errs, domain.FieldError{Field: "version", Message: "required"})
	} else if len(i.Version) > maxVersionLen {
		errs = append(errs, domain.FieldError{Field: "version", Message: "too long"})
	}

	if i.Content == "" {
		errs = append(errs, domain.FieldError{Field: "content", Message: "required"})
	} else if len(i.Content) > maxContentLen {
		errs = append(errs, domain.FieldError{Field: "content", Message: "too long"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// CreateVersionInput holds parameters for creating a consent version draft.
type CreateVersionInput struct {
	Version string
	Content string
}

// Validate validates the create version input.
func (i CreateVersionInput) Validate() error {
	var errs []domain.FieldError

	if i.Version == "" {
		errs = append(errs, domain.FieldError{Field: "version", Message: "required"})
	} else if len(i.Version) > maxVersionLen {
		errs = append(errs, domain.FieldError{Field: "version", Message: "too long"})
	}

	if i.Content == "" {
		errs = append(errs, domain.FieldError{Field: "content", Message: "required"})
	} else if len(i.Content) > maxContentLen {
		errs = append(errs, domain.FieldError{Field: "content", Message: "too long"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
