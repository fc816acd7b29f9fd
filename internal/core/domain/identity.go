package domain

import "time"

// Identity is the authenticated caller of a request as established from a
// verified bearer token. A nil *Identity means the request is anonymous.
type Identity struct {
	Username string
	Role     string
}

// IsAdmin reports whether the identity carries the admin role claim.
func (i *Identity) IsAdmin() bool {
	return i != nil && HasRole(i.Role, RoleAdmin)
}

// AccessDecision is the outcome of an authorization check.
type AccessDecision string

const (
	DecisionGranted AccessDecision = "granted"
	DecisionDenied  AccessDecision = "denied"
)

// AccessEvent is one entry of the access audit trail.
type AccessEvent struct {
	ID       string         `json:"id" bson:"_id"`
	Username string         `json:"username,omitempty" bson:"username,omitempty"`
	Role     string         `json:"role,omitempty" bson:"role,omitempty"`
	Action   string         `json:"action" bson:"action"`
	Resource string         `json:"resource" bson:"resource"`
	Decision AccessDecision `json:"decision" bson:"decision"`
	Reason   string         `json:"reason,omitempty" bson:"reason,omitempty"`
	At       time.Time      `json:"at" bson:"at"`
}
