package role

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrUnknownRole is returned when a Set is decoded from a name outside the enumeration.
var ErrUnknownRole = errors.New("unknown role")

// Set is a bitmask of roles. The zero value is the empty set.
type Set uint8

const allBits = Set(1<<roleCount - 1)

// Of builds a Set from typed roles; invalid roles are ignored.
func Of(roles ...Role) Set {
	var s Set
	for _, r := range roles {
		s = s.With(r)
	}
	return s
}

// FromRaw rebuilds a Set from its persisted bit representation, discarding bits that do
// not map to a known role.
func FromRaw(raw uint8) Set {
	return Set(raw) & allBits
}

// Raw returns the bit representation used by session encoders.
func (s Set) Raw() uint8 {
	return uint8(s & allBits)
}

// With returns s plus r.
func (s Set) With(r Role) Set {
	if !r.Valid() {
		return s
	}
	return s | 1<<r
}

// Has reports whether r is in s.
func (s Set) Has(r Role) bool {
	return r.Valid() && s&(1<<r) != 0
}

// Len returns the number of roles in s.
func (s Set) Len() int {
	n := 0
	for _, r := range All() {
		if s.Has(r) {
			n++
		}
	}
	return n
}

// Empty reports whether s holds no role.
func (s Set) Empty() bool {
	return s&allBits == 0
}

// Roles returns the members of s in bit order.
func (s Set) Roles() []Role {
	out := make([]Role, 0, roleCount)
	for _, r := range All() {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

// Strings returns the wire names of the members of s in bit order.
func (s Set) Strings() []string {
	roles := s.Roles()
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = r.String()
	}
	return out
}

func (s Set) String() string {
	return "{" + strings.Join(s.Strings(), ",") + "}"
}

// MarshalJSON encodes s as an array of wire names.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

// UnmarshalJSON decodes an array of wire names. Unlike ParseSet it is strict: a persisted
// set never contains unknown names, so one showing up means the data is corrupt.
func (s *Set) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	var out Set
	for _, name := range names {
		r, ok := Parse(name)
		if !ok {
			return errors.Join(ErrUnknownRole, errors.New(name))
		}
		out = out.With(r)
	}
	*s = out
	return nil
}
