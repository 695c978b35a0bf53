package domain

import "fmt"

// Role is the closed set of staff roles. Deletion authorization treats the
// hierarchy as totally ordered: admin > manager > receptionist.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleManager      Role = "manager"
	RoleReceptionist Role = "receptionist"
)

// roleOrder defines the ordering of roles for authorization comparisons.
// Higher numbers outrank lower ones. Unknown roles have no entry and lose
// every comparison.
var roleOrder = map[Role]int{
	RoleAdmin:        3,
	RoleManager:      2,
	RoleReceptionist: 1,
}

// ParseRole validates and returns a Role. Unknown strings are rejected at
// the boundary so services never see an out-of-set role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := roleOrder[r]; !ok {
		return "", fmt.Errorf("unknown role: %q", s)
	}
	return r, nil
}

func (r Role) String() string { return string(r) }

// IsValid reports whether the role belongs to the closed set.
func (r Role) IsValid() bool {
	_, ok := roleOrder[r]
	return ok
}

// Outranks reports whether r is strictly above other in the hierarchy.
// Either side being unknown yields false.
func (r Role) Outranks(other Role) bool {
	ro, ok := roleOrder[r]
	if !ok {
		return false
	}
	oo, ok := roleOrder[other]
	if !ok {
		return false
	}
	return ro > oo
}
