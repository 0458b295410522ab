package role

// Role is one of the roles the identity endpoint may grant.
type Role uint8

const (
	// Admin grants administrative access.
	Admin Role = iota
	// Manager grants management access.
	Manager
	// User is the baseline role.
	User
	roleCount
)

var wireNames = [roleCount]string{
	Admin:   "ADMIN",
	Manager: "MANAGER",
	User:    "USER",
}

// All returns every known role in bit order.
func All() []Role {
	return []Role{Admin, Manager, User}
}

// Valid reports whether r belongs to the enumeration.
func (r Role) Valid() bool {
	return r < roleCount
}

// String returns the wire name of r, or "UNKNOWN" for values outside the enumeration.
func (r Role) String() string {
	if !r.Valid() {
		return "UNKNOWN"
	}
	return wireNames[r]
}

// Parse maps a wire name to a Role. Matching is exact: the endpoint emits upper-case
// names and anything else is not a role.
func Parse(name string) (Role, bool) {
	for i, wire := range wireNames {
		if name == wire {
			return Role(i), true
		}
	}
	return 0, false
}

// ParseSet converts wire names into a Set. Names that are not part of the enumeration
// are returned in dropped, in input order, so callers can log them.
func ParseSet(names []string) (set Set, dropped []string) {
	for _, name := range names {
		r, ok := Parse(name)
		if !ok {
			dropped = append(dropped, name)
			continue
		}
		set = set.With(r)
	}
	return set, dropped
}
