package domain

import (
	"encoding/json"
	"fmt"
)

// Role is the closed set of account roles. The zero value is RoleUnset.
// Any string received from the backend that is not one of the known roles
// decodes to RoleUnknown so callers can route it explicitly.
type Role uint8

const (
	RoleUnset Role = iota
	RoleCustomer
	RoleFreelanceFixer
	RoleEmployeeFixer
	RoleCompany
	RoleUnknown
)

var roleNames = map[Role]string{
	RoleCustomer:       "customer",
	RoleFreelanceFixer: "freelance_fixer",
	RoleEmployeeFixer:  "employee_fixer",
	RoleCompany:        "company",
}

// ParseRole maps a wire value to a Role. Empty input is RoleUnset.
func ParseRole(s string) Role {
	if s == "" {
		return RoleUnset
	}
	for r, name := range roleNames {
		if name == s {
			return r
		}
	}
	return RoleUnknown
}

func (r Role) String() string {
	switch r {
	case RoleUnset:
		return ""
	case RoleUnknown:
		return "unknown"
	default:
		return roleNames[r]
	}
}

// IsFixer reports whether the role is served by the freelancer dashboard.
func (r Role) IsFixer() bool {
	return r == RoleFreelanceFixer || r == RoleEmployeeFixer
}

// SelfSelectable reports whether a user may pick this role while completing
// a profile. Employee fixers are only ever assigned by a company.
func (r Role) SelfSelectable() bool {
	return r == RoleCustomer || r == RoleFreelanceFixer || r == RoleCompany
}

func (r Role) MarshalJSON() ([]byte, error) {
	switch r {
	case RoleUnset:
		return []byte("null"), nil
	case RoleUnknown:
		return nil, fmt.Errorf("domain: cannot encode unknown role")
	default:
		return json.Marshal(roleNames[r])
	}
}

func (r *Role) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = RoleUnset
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("domain: decode role: %w", err)
	}
	*r = ParseRole(s)
	return nil
}
