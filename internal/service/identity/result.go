package identity

import "github.com/fernwood-lab/studyflow-backend/internal/domain"

// Enrollment is returned by Enroll. Passphrase is the plaintext credential,
// shown to the participant exactly once; only its hash is stored, so it is
// not recoverable later.
type Enrollment struct {
	Identity   domain.Identity
	Passphrase string
}

// Session is returned by Authenticate.
type Session struct {
	Token    string
	Identity domain.Identity
}
