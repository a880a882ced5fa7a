package domain

import (
	"slices"
	"strings"
)

// Role is the authorization level carried by an account.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleManager   Role = "manager"
	RoleCashier   Role = "cashier"
	RoleInventory Role = "inventory"
	RoleUser      Role = "user"
)

// roleOwnerAlias is accepted on input and stored as RoleAdmin.
const roleOwnerAlias = "owner"

// roleImplies lists, for each role, the roles it directly includes.
var roleImplies = map[Role][]Role{
	RoleAdmin:     {RoleManager},
	RoleManager:   {RoleCashier, RoleInventory},
	RoleCashier:   {RoleUser},
	RoleInventory: {RoleUser},
}

// ParseRole normalises s into a known role.
func ParseRole(s string) (Role, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == roleOwnerAlias {
		return RoleAdmin, nil
	}
	r := Role(v)
	if !r.Valid() {
		return "", Invalid("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleCashier, RoleInventory, RoleUser:
		return true
	}
	return false
}

// Satisfies reports whether r grants at least the privileges of required.
// Admin satisfies every role.
func (r Role) Satisfies(required Role) bool {
	if r == required {
		return true
	}
	for _, included := range roleImplies[r] {
		if included.Satisfies(required) {
			return true
		}
	}
	return false
}

// IsStaff reports whether r sees documents created by other accounts.
func (r Role) IsStaff() bool {
	return r.Satisfies(RoleCashier) || r.Satisfies(RoleInventory)
}

// AllowedExact reports whether r is one of allowed, without hierarchy.
func AllowedExact(r Role, allowed ...Role) bool {
	return slices.Contains(allowed, r)
}
