package domain

// ProgressStatus represents the state of a per-user module progress record.
type ProgressStatus string

const (
	ProgressStatusNotStarted ProgressStatus = "NOT_STARTED"
	ProgressStatusInProgress ProgressStatus = "IN_PROGRESS"
	ProgressStatusCompleted  ProgressStatus = "COMPLETED"
)

func (s ProgressStatus) String() string { return string(s) }

func (s ProgressStatus) IsValid() bool {
	switch s {
	case ProgressStatusNotStarted, ProgressStatusInProgress, ProgressStatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether the status rejects further writes.
func (s ProgressStatus) IsTerminal() bool {
	return s == ProgressStatusCompleted
}

// ConsentVersionStatus represents the lifecycle state of a consent version.
type ConsentVersionStatus string

const (
	ConsentVersionStatusDraft   ConsentVersionStatus = "DRAFT"
	ConsentVersionStatusActive  ConsentVersionStatus = "ACTIVE"
	ConsentVersionStatusRetired ConsentVersionStatus = "RETIRED"
)

func (s ConsentVersionStatus) String() string { return string(s) }

func (s ConsentVersionStatus) IsValid() bool {
	switch s {
	case ConsentVersionStatusDraft, ConsentVersionStatusActive, ConsentVersionStatusRetired:
		return true
	}
	return false
}

// IdentityRole represents the authorization level of an identity.
type IdentityRole string

const (
	RoleParticipant IdentityRole = "PARTICIPANT"
	RoleAdmin       IdentityRole = "ADMIN"
)

func (r IdentityRole) String() string { return string(r) }

func (r IdentityRole) IsValid() bool {
	switch r {
	case RoleParticipant, RoleAdmin:
		return true
	}
	return false
}

func (r IdentityRole) IsAdmin() bool {
	return r == RoleAdmin
}

// AuditEventType identifies the kind of event recorded in the audit trail.
type AuditEventType string

const (
	EventAccessGranted     AuditEventType = "ACCESS_GRANTED"
	EventAccessDenied      AuditEventType = "ACCESS_DENIED"
	EventPathAccessGranted AuditEventType = "PATH_ACCESS_GRANTED"
	EventPathAccessDenied  AuditEventType = "PATH_ACCESS_DENIED"
	EventModuleStarted     AuditEventType = "MODULE_STARTED"
	EventProgressSaved     AuditEventType = "PROGRESS_SAVED"
	EventModuleCompleted   AuditEventType = "MODULE_COMPLETED"
	EventConsentRecorded   AuditEventType = "CONSENT_RECORDED"
	EventIdentityEnrolled  AuditEventType = "IDENTITY_ENROLLED"
)

func (e AuditEventType) String() string { return string(e) }

func (e AuditEventType) IsValid() bool {
	switch e {
	case EventAccessGranted, EventAccessDenied, EventPathAccessGranted,
		EventPathAccessDenied, EventModuleStarted, EventProgressSaved,
		EventModuleCompleted, EventConsentRecorded, EventIdentityEnrolled:
		return true
	}
	return false
}

// DenialReason explains why an access check denied the caller. The values
// are wire-stable: they cross the HTTP boundary verbatim in the `reason`
// field of a 403 response.
type DenialReason string

const (
	ReasonConsentRequired      DenialReason = "consent_required"
	ReasonPriorIncomplete      DenialReason = "prior_modules_incomplete"
	ReasonBranchingUnsatisfied DenialReason = "branching_rule_not_satisfied"
	ReasonPathReadOnly         DenialReason = "path_read_only"
)

func (r DenialReason) String() string { return string(r) }
