package progress

import (
	"github.com/google/uuid"

	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

const maxModuleNameLen = 128

// StartInput holds parameters for the start transition.
type StartInput struct {
	UserID     uuid.UUID
	ModuleName string
}

// Validate validates the start input.
func (i StartInput) Validate() error {
	var errs []domain.FieldError

	if i.UserID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "required"})
	}
	errs = appendModuleNameErrs(errs, i.ModuleName)

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// SaveInput holds parameters for a partial save.
type SaveInput struct {
	UserID     uuid.UUID
	ModuleName string
	Responses  map[string]any
}

// Validate validates the save input.
func (i SaveInput) Validate() error {
	var errs []domain.FieldError

	if i.UserID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "required"})
	}
	errs = appendModuleNameErrs(errs, i.ModuleName)
	if len(i.Responses) == 0 {
		errs = append(errs, domain.FieldError{Field: "responses", Message: "required"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// CompleteInput holds parameters for the terminal transition. Responses and
// Metadata are optional: both merge over whatever partial saves stored.
type CompleteInput struct {
	UserID     uuid.UUID
	ModuleName string
	Responses  map[string]any
	Metadata   map[string]any
}

// Validate validates the complete input.
func (i CompleteInput) Validate() error {
	var errs []domain.FieldError

	if i.UserID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "required"})
	}
	errs = appendModuleNameErrs(errs, i.ModuleName)

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func appendModuleNameErrs(errs []domain.FieldError, name string) []domain.FieldError {
	if name == "" {
		return append(errs, domain.FieldError{Field: "module_name", Message: "required"})
	}
	if len(name) > maxModuleNameLen {
		return append(errs, domain.FieldError{Field: "module_name", Message: "too long"})
	}
	return errs
}
