// Package authz is the authorization gate. All functions are pure predicates
// over an explicitly passed actor and fail closed on unknown roles.
package authz

import (
	"github.com/erazemk/arsenal/internal/apperr"
	"github.com/erazemk/arsenal/internal/model"
)

// creators lists the roles allowed to create each record kind.
var creators = map[string][]string{
	model.KindPurchase:    {model.RoleAdmin, model.RoleLogisticsOfficer},
	model.KindTransfer:    {model.RoleAdmin, model.RoleBaseCommander, model.RoleLogisticsOfficer},
	model.KindAssignment:  {model.RoleAdmin, model.RoleBaseCommander},
	model.KindExpenditure: {model.RoleAdmin, model.RoleBaseCommander},
}

// CanCreate reports whether actor may create a record of the given kind.
func CanCreate(kind string, actor model.Actor) bool {
	for _, r := range creators[kind] {
		if r == actor.Role {
			return true
		}
	}
	return false
}

// CanTransition reports whether actor may change a transfer's status.
func CanTransition(actor model.Actor) bool {
	return actor.Role == model.RoleAdmin
}

// CanManageCatalog reports whether actor may add bases and equipment types.
func CanManageCatalog(actor model.Actor) bool {
	return actor.Role == model.RoleAdmin
}

// CanManageUsers reports whether actor may administer user accounts.
func CanManageUsers(actor model.Actor) bool {
	return actor.Role == model.RoleAdmin
}

// CanRead reports whether actor may run queries at all.
func CanRead(actor model.Actor) bool {
	return model.ValidRole(actor.Role)
}

// RequireCreate returns an AuthorizationError unless actor may create kind.
func RequireCreate(kind string, actor model.Actor) error {
	if !CanCreate(kind, actor) {
		return apperr.Unauthorized("role %q may not create %s records", actor.Role, kind)
	}
	return nil
}

// RequireTransition returns an AuthorizationError unless actor may change
// transfer status.
func RequireTransition(actor model.Actor) error {
	if !CanTransition(actor) {
		return apperr.Unauthorized("only admins may change transfer status")
	}
	return nil
}

// commanderBase returns the base a base_commander is bound to.
func commanderBase(actor model.Actor) (int64, error) {
	if actor.BaseID == nil || *actor.BaseID <= 0 {
		return 0, apperr.Unauthorized("base commander %q has no assigned base", actor.Username)
	}
	return *actor.BaseID, nil
}

// Scope applies the mandatory role-based restriction to a query filter.
// A base_commander is always limited to their own base; asking for another
// base is an error rather than being silently rewritten.
func Scope(actor model.Actor, f model.Filter) (model.Filter, error) {
	if !CanRead(actor) {
		return model.Filter{}, apperr.Unauthorized("role %q may not query", actor.Role)
	}
	if actor.Role != model.RoleBaseCommander {
		return f, nil
	}

	base, err := commanderBase(actor)
	if err != nil {
		return model.Filter{}, err
	}
	if f.BaseID != 0 && f.BaseID != base {
		return model.Filter{}, apperr.Unauthorized("base commanders may only query their own base")
	}
	f.BaseID = base
	return f, nil
}

// CheckBases verifies that a base_commander's mutation touches their own
// base. For transfers either endpoint counts. Other roles are not base-bound.
func CheckBases(actor model.Actor, baseIDs ...int64) error {
	if actor.Role != model.RoleBaseCommander {
		return nil
	}
	base, err := commanderBase(actor)
	if err != nil {
		return err
	}
	for _, id := range baseIDs {
		if id == base {
			return nil
		}
	}
	return apperr.Unauthorized("base commanders may only record movements for their own base")
}
