package org

import "context"

// UnitType classifies an organizational unit within the tree.
type UnitType string

const (
	UnitOperational      UnitType = "OPERACIONAL"
	UnitIntermediate     UnitType = "INTERMEDIARIA"
	UnitInteroperational UnitType = "INTEROPERACIONAL"
	UnitRoot             UnitType = "RAIZ"
	UnitNoTeam           UnitType = "SEM_EQUIPE"
)

// Unit is a node of the organizational tree. Superior back-references form
// the hierarchy; the tree is assumed acyclic by construction.
type Unit struct {
	Code     int64
	Sigla    string
	Name     string
	Type     UnitType
	Superior *Unit
	// Titular is the electoral title of the unit's formally designated holder.
	Titular string
	Active  bool
}

// Mappable reports whether the unit receives its own competency map in a
// mapping process.
func (u *Unit) Mappable() bool {
	if u == nil {
		return false
	}
	return u.Type == UnitOperational || u.Type == UnitInteroperational
}

// Directory is the unit/user directory collaborator. Implementations live
// outside the core (the pg store provides one).
type Directory interface {
	// RolesOf returns every role assignment of the user, valid or not.
	RolesOf(ctx context.Context, tituloEleitoral string) ([]RoleAssignment, error)
	Unit(ctx context.Context, code int64) (*Unit, error)
	UnitBySigla(ctx context.Context, sigla string) (*Unit, error)
	// TitularOf returns the electoral title of the unit's holder.
	TitularOf(ctx context.Context, unitCode int64) (string, error)
}
