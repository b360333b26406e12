// Package authz implements the role-hierarchy authorization checks applied to
// program-scoped management operations.
package authz

import (
	"errors"

	"github.com/qsights/program-admin-api/internal/models"
)

var (
	// ErrUnauthorized is returned when the actor's role or program scope does
	// not permit the action.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSelfDeletion is returned when an actor attempts to delete their own
	// account through program-user management.
	ErrSelfDeletion = errors.New("you cannot delete your own account")
)

// Action identifies an operation gated by the authorization engine.
type Action string

const (
	ActionViewRoles          Action = "roles:view"
	ActionManageRoles        Action = "roles:manage"
	ActionManageProgramUsers Action = "program-users:manage"
)

// requiresAdmin lists actions restricted to super-admin and program-admin.
var requiresAdmin = map[Action]bool{
	ActionManageRoles:        true,
	ActionManageProgramUsers: true,
}

// Authorize validates the actor against the target program. Rules are
// evaluated in order:
//
//  1. super-admin is always allowed.
//  2. Actions requiring admin privilege deny any role outside
//     {super-admin, program-admin}.
//  3. A program-admin is scoped to their own program.
//
// Read actions (ActionViewRoles) pass rule 2 for every authenticated role but
// still apply rule 3.
func Authorize(actor *models.User, action Action, programID string) error {
	if actor.Role == models.RoleSuperAdmin {
		return nil
	}

	if requiresAdmin[action] && actor.Role != models.RoleProgramAdmin {
		return ErrUnauthorized
	}

	if actor.Role == models.RoleProgramAdmin && !actor.BelongsToProgram(programID) {
		return ErrUnauthorized
	}

	return nil
}

// GuardSelfDeletion rejects deletion of the actor's own account. It applies
// regardless of role, super-admin included.
func GuardSelfDeletion(actor *models.User, targetUserID string) error {
	if actor.ID == targetUserID {
		return ErrSelfDeletion
	}
	return nil
}
