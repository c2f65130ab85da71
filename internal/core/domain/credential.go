package domain

// CredentialState tracks who set the current password.
type CredentialState string

const (
	// CredentialNormal: password chosen by the user at registration or by a
	// voluntary change.
	CredentialNormal CredentialState = "normal"
	// CredentialTemporary: password generated by the forgot-password flow;
	// the user must rotate it.
	CredentialTemporary CredentialState = "temporary"
)

// CredentialEvent is something that replaces the stored password.
type CredentialEvent string

const (
	EventForcedReset     CredentialEvent = "forced_reset"
	EventVoluntaryChange CredentialEvent = "voluntary_change"
)

// Apply returns the state that follows ev. A voluntary change is the only
// event that leads back to CredentialNormal.
func (s CredentialState) Apply(ev CredentialEvent) CredentialState {
	switch ev {
	case EventForcedReset:
		return CredentialTemporary
	case EventVoluntaryChange:
		return CredentialNormal
	default:
		return s
	}
}

// CredentialStateFromFlag maps the persisted isTemporaryPassword flag.
func CredentialStateFromFlag(temporary bool) CredentialState {
	if temporary {
		return CredentialTemporary
	}
	return CredentialNormal
}
