package authz

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/qsights/program-admin-api/internal/models"
)

func actorWithRole(role models.UserRole, programID string) *models.User {
	u := &models.User{ID: "actor-1", Role: role}
	if programID != "" {
		u.ProgramID = &programID
	}
	return u
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name      string
		actor     *models.User
		action    Action
		programID string
		wantErr   error
	}{
		{
			name:      "super admin always allowed",
			actor:     actorWithRole(models.RoleSuperAdmin, ""),
			action:    ActionManageRoles,
			programID: "prog-a",
		},
		{
			name:      "program admin allowed in own program",
			actor:     actorWithRole(models.RoleProgramAdmin, "prog-a"),
			action:    ActionManageRoles,
			programID: "prog-a",
		},
		{
			name:      "program admin denied outside own program",
			actor:     actorWithRole(models.RoleProgramAdmin, "prog-a"),
			action:    ActionManageRoles,
			programID: "prog-b",
			wantErr:   ErrUnauthorized,
		},
		{
			name:      "program manager denied role management",
			actor:     actorWithRole(models.RoleProgramManager, "prog-a"),
			action:    ActionManageRoles,
			programID: "prog-a",
			wantErr:   ErrUnauthorized,
		},
		{
			name:      "admin denied program user management",
			actor:     actorWithRole(models.RoleAdmin, ""),
			action:    ActionManageProgramUsers,
			programID: "prog-a",
			wantErr:   ErrUnauthorized,
		},
		{
			name:      "program moderator allowed to view roles",
			actor:     actorWithRole(models.RoleProgramModerator, "prog-a"),
			action:    ActionViewRoles,
			programID: "prog-a",
		},
		{
			name:      "program admin view scoped to own program",
			actor:     actorWithRole(models.RoleProgramAdmin, "prog-a"),
			action:    ActionViewRoles,
			programID: "prog-b",
			wantErr:   ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.actor, tt.action, tt.programID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestGuardSelfDeletion(t *testing.T) {
	actor := actorWithRole(models.RoleSuperAdmin, "")

	require.ErrorIs(t, GuardSelfDeletion(actor, actor.ID), ErrSelfDeletion)
	require.NoError(t, GuardSelfDeletion(actor, "someone-else"))
}
