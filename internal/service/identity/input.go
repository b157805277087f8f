package identity

import (
	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// AuthenticateInput holds login credentials.
type AuthenticateInput struct {
	Alias    string
	Password string
}

// Validate validates the authenticate input.
func (i AuthenticateInput) Validate() error {
	var errs []domain.FieldError

	if i.Alias == "" {
		errs = append(errs, domain.FieldError{Field: "alias", Message: "required"})
	}
	if i.Password == "" {
		errs = append(errs, domain.FieldError{Field: "password", Message: "required"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ListInput holds pagination for identity listings.
type ListInput struct {
	Limit  int
	Offset int
}

// withDefaults clamps pagination to sane bounds.
func (i ListInput) withDefaults() ListInput {
	if i.Limit <= 0 {
		i.Limit = defaultListLimit
	}
	if i.Limit > maxListLimit {
		i.Limit = maxListLimit
	}
	if i.Offset < 0 {
		i.Offset = 0
	}
	return i
}
