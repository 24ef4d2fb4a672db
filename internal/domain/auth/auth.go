package auth

// Package auth contains domain-level types for portal authentication and
// sessions. It is pure and free of transport/storage concerns.

import (
	"encoding/json"
	"strings"
)

// rolePrefix is the spelling some identity-service endpoints prepend to an
// authority token. Both "ADMIN" and "ROLE_ADMIN" name the same authority.
const rolePrefix = "ROLE_"

// Authority is a permission token as received from the identity service.
// The raw spelling is preserved; membership tests normalize the prefix away.
// Comparison is case-sensitive on the bare token.
type Authority string

// Bare authority tokens used by the portal route table.
const (
	RoleAdmin   = "ADMIN"
	RoleHR      = "HR"
	RolePayroll = "PAYROLL"
	RoleFinance = "FINANCE"
	RoleSales   = "SALES"
	RoleIT      = "IT"
	RoleUser    = "USER"
	RoleGeneral = "GENERAL"
)

// Normalized returns the bare token with the ROLE_ prefix stripped.
func (a Authority) Normalized() string {
	return strings.TrimPrefix(string(a), rolePrefix)
}

// Matches reports whether this authority names the required bare token,
// regardless of which spelling the service used.
func (a Authority) Matches(required string) bool {
	return a.Normalized() == Authority(required).Normalized()
}

// UnmarshalJSON accepts both wire shapes the identity service emits: a bare
// string ("ADMIN") and a wrapped object ({"authority": "ROLE_ADMIN"}).
func (a *Authority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Authority(s)
		return nil
	}
	var wrapped struct {
		Authority string `json:"authority"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	*a = Authority(wrapped.Authority)
	return nil
}

// MarshalJSON writes the raw spelling as a bare string. This is the durable
// storage form; round-tripping preserves whatever the service sent.
func (a Authority) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(a))
}

// Identity is the authenticated subject. Immutable once constructed; a
// re-login produces a new Identity, never a mutation of the old one.
type Identity struct {
	Username   string      `json:"username"`
	Email      string      `json:"email,omitempty"`
	Department string      `json:"departmentName,omitempty"`
	Roles      []Authority `json:"roles"`
}

// HasRole reports whether the identity holds the required bare authority
// token under either spelling.
func (id Identity) HasRole(required string) bool {
	for _, r := range id.Roles {
		if r.Matches(required) {
			return true
		}
	}
	return false
}

// RoleNames returns the normalized authority tokens, in wire order.
func (id Identity) RoleNames() []string {
	if len(id.Roles) == 0 {
		return nil
	}
	names := make([]string, len(id.Roles))
	for i, r := range id.Roles {
		names[i] = r.Normalized()
	}
	return names
}

// Session pairs an Identity with its opaque bearer credential. The zero
// value is the absent session.
type Session struct {
	Identity   Identity `json:"identity"`
	Credential string   `json:"credential"`
}

// Present reports whether this is an established session. A session without
// a credential or without a username is treated as absent.
func (s Session) Present() bool {
	return s.Credential != "" && s.Identity.Username != ""
}

// AccountStatus is the approval state of a portal account. Registration
// creates pending accounts; an external workflow activates or rejects them.
type AccountStatus string

const (
	StatusActive   AccountStatus = "ACTIVE"
	StatusPending  AccountStatus = "PENDING"
	StatusRejected AccountStatus = "REJECTED"
)
