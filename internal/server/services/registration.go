package services

// RegistrationState is a step of the registration saga.
type RegistrationState int

const (
	StateStart RegistrationState = iota
	StateIdentityReserved
	StateProfileProvisioned
	StateComplete
	// StateRolledBack: provisioning failed and the identity was removed.
	StateRolledBack
	// StateReconciliationRequired: provisioning failed and so did the
	// removal. The identity is orphaned until an operator steps in.
	StateReconciliationRequired
)

func (s RegistrationState) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateIdentityReserved:
		return "identity_reserved"
	case StateProfileProvisioned:
		return "profile_provisioned"
	case StateComplete:
		return "complete"
	case StateRolledBack:
		return "rolled_back"
	case StateReconciliationRequired:
		return "reconciliation_required"
	default:
		return "unknown"
	}
}

// Registration is the outcome of a registration attempt.
type Registration struct {
	IdentityID string
	State      RegistrationState
	// Tokens is set only in StateComplete.
	Tokens *TokenPair
}
