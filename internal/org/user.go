package org

import "time"

// Role is a user profile recognized by the authorization rules.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleGestor   Role = "GESTOR"
	RoleChefe    Role = "CHEFE"
	RoleServidor Role = "SERVIDOR"
)

// RoleAssignment binds a role to a user within one unit. Temporary
// assignments grant the role only inside their validity window.
type RoleAssignment struct {
	Role      Role
	Unit      *Unit
	Temporary bool
	// Validity window, meaningful only when Temporary is true.
	ValidFrom  time.Time
	ValidUntil time.Time
}

// ValidAt reports whether the assignment grants its role at the given instant.
func (a RoleAssignment) ValidAt(now time.Time) bool {
	if !a.Temporary {
		return true
	}
	return !now.Before(a.ValidFrom) && !now.After(a.ValidUntil)
}

// User identifies a person by electoral title and carries their role
// assignments across units.
type User struct {
	TituloEleitoral string
	Name            string
	Assignments     []RoleAssignment
}

// EffectiveAssignments returns the union of permanent assignments and
// temporary assignments whose validity window contains now. Expired
// temporary assignments grant nothing.
func (u *User) EffectiveAssignments(now time.Time) []RoleAssignment {
	if u == nil {
		return nil
	}
	out := make([]RoleAssignment, 0, len(u.Assignments))
	for _, a := range u.Assignments {
		if a.ValidAt(now) {
			out = append(out, a)
		}
	}
	return out
}

// HasRole reports whether the user effectively holds any of the given roles.
func (u *User) HasRole(now time.Time, roles ...Role) bool {
	for _, a := range u.EffectiveAssignments(now) {
		for _, r := range roles {
			if a.Role == r {
				return true
			}
		}
	}
	return false
}

// UnitsWithRole returns the units where the user effectively holds any of
// the given roles.
func (u *User) UnitsWithRole(now time.Time, roles ...Role) []*Unit {
	var units []*Unit
	for _, a := range u.EffectiveAssignments(now) {
		if a.Unit == nil {
			continue
		}
		for _, r := range roles {
			if a.Role == r {
				units = append(units, a.Unit)
				break
			}
		}
	}
	return units
}
