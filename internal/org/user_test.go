package org

import (
	"testing"
	"time"
)

func TestEffectiveAssignmentsExpiredTemporary(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	unit := &Unit{Code: 7, Sigla: "SESEL"}

	user := &User{
		TituloEleitoral: "111",
		Assignments: []RoleAssignment{
			{Role: RoleServidor, Unit: unit},
			{
				Role: RoleChefe, Unit: unit, Temporary: true,
				ValidFrom:  now.AddDate(0, -2, 0),
				ValidUntil: now.AddDate(0, -1, 0),
			},
		},
	}

	eff := user.EffectiveAssignments(now)
	if len(eff) != 1 || eff[0].Role != RoleServidor {
		t.Fatalf("expired temporary assignment must not appear: %+v", eff)
	}
	if user.HasRole(now, RoleChefe) {
		t.Fatal("expired temporary CHEFE must grant nothing")
	}
	if !user.HasRole(now, RoleServidor) {
		t.Fatal("permanent SERVIDOR should hold")
	}
}

func TestEffectiveAssignmentsActiveTemporary(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	unit := &Unit{Code: 7, Sigla: "SESEL"}

	user := &User{
		TituloEleitoral: "222",
		Assignments: []RoleAssignment{
			{
				Role: RoleChefe, Unit: unit, Temporary: true,
				ValidFrom:  now.AddDate(0, 0, -1),
				ValidUntil: now.AddDate(0, 0, 1),
			},
		},
	}

	if !user.HasRole(now, RoleChefe) {
		t.Fatal("temporary CHEFE inside its window should hold")
	}
	units := user.UnitsWithRole(now, RoleChefe)
	if len(units) != 1 || units[0].Code != 7 {
		t.Fatalf("unexpected units: %+v", units)
	}
}

func TestNilUser(t *testing.T) {
	var u *User
	if got := u.EffectiveAssignments(time.Now()); got != nil {
		t.Fatalf("nil user must have no assignments, got %+v", got)
	}
}
