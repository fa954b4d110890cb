package resourceboard

import "github.com/google/uuid"

// AccessTier is the domain type for caller access levels. It is a closed
// set: every request is classified into exactly one tier before it reaches
// the service, and unknown or malformed credentials classify as anonymous.
type AccessTier string

// Access tier constants (typed).
const (
	TierAnonymous     AccessTier = "anonymous"
	TierAuthenticated AccessTier = "authenticated"
	TierSuperuser     AccessTier = "superuser"
)

// Principal identifies the caller of an operation together with its tier.
// An anonymous principal has a zero ID and empty login.
type Principal struct {
	ID    uuid.UUID
	Login string
	Tier  AccessTier
}

// Anonymous returns the principal used for unauthenticated callers.
func Anonymous() Principal {
	return Principal{Tier: TierAnonymous}
}

// CanSubmit reports whether the principal may create resources.
func (p Principal) CanSubmit() bool {
	return p.Tier == TierAuthenticated || p.Tier == TierSuperuser
}

// CanModerate reports whether the principal may see drafts and publish.
func (p Principal) CanModerate() bool {
	return p.Tier == TierSuperuser
}
