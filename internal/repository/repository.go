package repository

import (
	"time"

	"github.com/qsights/program-admin-api/internal/models"
)

// ProgramFilter holds filtering options for listing programs
type ProgramFilter struct {
	OrganizationID *string
	GroupHeadID    *string
	Search         string
	Status         *models.ProgramStatus
	StartDateFrom  *time.Time
	EndDateTo      *time.Time
	WithTrashed    bool
	Page           int
	PerPage        int
}

// ProgramCounts carries per-program aggregates shown in listings. Progress is
// the share of completed activities as a percentage, rounded to two decimals.
type ProgramCounts struct {
	Activities                int64   `json:"activities_count"`
	Participants              int64   `json:"participants_count"`
	ActiveParticipants        int64   `json:"active_participants_count"`
	InactiveParticipants      int64   `json:"inactive_participants_count"`
	AuthenticatedParticipants int64   `json:"authenticated_participants_count"`
	GuestParticipants         int64   `json:"guest_participants_count"`
	Progress                  float64 `json:"progress"`
}

// ProgramRepository defines the interface for program data access
type ProgramRepository interface {
	// Create creates a new program
	Create(program *models.Program) error

	// FindByID finds a program by ID with optional preloading
	FindByID(id string, withTrashed bool, preload ...string) (*models.Program, error)

	// List retrieves programs with filtering and pagination
	List(filter ProgramFilter) ([]models.Program, int64, error)

	// Update updates a program
	Update(program *models.Program) error

	// UpdateStatus sets only the program status
	UpdateStatus(id string, status models.ProgramStatus) error

	// Delete soft deletes a program
	Delete(id string) error

	// Restore restores a soft-deleted program and its program users
	Restore(id string) error

	// ForceDelete hard-deletes a program together with its users and roles
	ForceDelete(id string) error

	// ExpireOverdue transitions every non-expired program whose end date has
	// passed in a single update
	ExpireOverdue(now time.Time) error

	// CodeExists reports whether a program code is taken, excluding one id
	CodeExists(code, excludeID string) (bool, error)

	// OrganizationExists reports whether the owning organization exists
	OrganizationExists(id string) (bool, error)

	// CountsFor returns activity/participant counts for a program
	CountsFor(programID string) (ProgramCounts, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// EmailExists reports whether a user email is taken
	EmailExists(email string) (bool, error)

	// ListProgramUsers lists the program-scoped service accounts of a program
	ListProgramUsers(programID string) ([]models.User, error)

	// FindProgramUser finds one program-scoped service account
	FindProgramUser(programID, userID string) (*models.User, error)

	// Update updates a user
	Update(user *models.User) error

	// Delete soft deletes a user
	Delete(id string) error
}

// ProgramRoleRepository defines the interface for program role data access
type ProgramRoleRepository interface {
	// Create persists a role together with its event associations
	Create(role *models.ProgramRole) error

	// FindByID finds a role scoped to a program, optionally including trashed
	FindByID(programID, roleID string, withTrashed bool, preload ...string) (*models.ProgramRole, error)

	// ListByProgram lists roles of a program, newest first
	ListByProgram(programID string) ([]models.ProgramRole, error)

	// Update updates a role's fields
	Update(role *models.ProgramRole) error

	// ReplaceEvents replaces the role's event associations (set semantics)
	ReplaceEvents(role *models.ProgramRole, events []models.Activity) error

	// Delete soft deletes a role
	Delete(id string) error

	// Restore restores a soft-deleted role
	Restore(id string) error

	// RoleNameExists reports whether role_name is taken within the program
	RoleNameExists(programID, roleName, excludeID string) (bool, error)

	// UsernameExists reports whether a role username is taken globally
	UsernameExists(username, excludeID string) (bool, error)

	// EmailExists reports whether a role email is taken globally
	EmailExists(email, excludeID string) (bool, error)

	// CountByProgram counts non-deleted roles of a program
	CountByProgram(programID string) (int64, error)

	// ActivitiesInProgram resolves ids to existing, non-deleted activities of
	// the program; unresolved ids are dropped
	ActivitiesInProgram(programID string, ids []string) ([]models.Activity, error)

	// ListActivities lists the program's activities ordered by name
	ListActivities(programID string) ([]models.Activity, error)
}
