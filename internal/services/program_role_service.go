package services

import (
	"errors"
	"fmt"

	"github.com/qsights/program-admin-api/internal/authz"
	"github.com/qsights/program-admin-api/internal/constants"
	"github.com/qsights/program-admin-api/internal/mailer"
	"github.com/qsights/program-admin-api/internal/models"
	"github.com/qsights/program-admin-api/internal/permissions"
	"github.com/qsights/program-admin-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrRoleNotFound = errors.New("program role not found")

// ProgramRoleService provides business logic for custom program roles.
type ProgramRoleService struct {
	roles       repository.ProgramRoleRepository
	programs    repository.ProgramRepository
	mail        mailer.Sender
	logger      *zap.Logger
	frontendURL string
}

// NewProgramRoleService creates a new ProgramRoleService.
func NewProgramRoleService(roles repository.ProgramRoleRepository, programs repository.ProgramRepository, mail mailer.Sender, logger *zap.Logger, frontendURL string) *ProgramRoleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgramRoleService{
		roles:       roles,
		programs:    programs,
		mail:        mail,
		logger:      logger,
		frontendURL: frontendURL,
	}
}

func (s *ProgramRoleService) findProgram(programID string) (*models.Program, error) {
	program, err := s.programs.FindByID(programID, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, fmt.Errorf("failed to find program: %w", err)
	}
	return program, nil
}

// RoleListing is the result of ListRoles: the roles of a program, newest
// first, with the owning program and the active role count.
type RoleListing struct {
	Roles   []models.ProgramRole
	Program *models.Program
	Total   int64
}

// ListRoles returns all roles of a program.
func (s *ProgramRoleService) ListRoles(actor *models.User, programID string) (*RoleListing, error) {
	if err := authz.Authorize(actor, authz.ActionViewRoles, programID); err != nil {
		return nil, err
	}

	program, err := s.findProgram(programID)
	if err != nil {
		return nil, err
	}

	roles, err := s.roles.ListByProgram(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	total, err := s.roles.CountByProgram(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to count roles: %w", err)
	}
	return &RoleListing{Roles: roles, Program: program, Total: total}, nil
}

// GetRole returns a single role scoped to the program.
func (s *ProgramRoleService) GetRole(actor *models.User, programID, roleID string) (*models.ProgramRole, error) {
	if err := authz.Authorize(actor, authz.ActionViewRoles, programID); err != nil {
		return nil, err
	}

	role, err := s.roles.FindByID(programID, roleID, false, "Program", "Events")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to find role: %w", err)
	}
	return role, nil
}

// CreateRoleInput represents parameters to create a program role.
type CreateRoleInput struct {
	RoleName    string
	Username    string
	Email       string
	Password    string
	Description string
	// ServiceIDs are UI capability flags. They are validated against the
	// shared catalog and never persisted.
	ServiceIDs []string
	// EventIDs reference activities; unresolvable ids are silently dropped.
	EventIDs []string
}

// CreateRole validates, persists and announces a new program role. The
// notification email carries the plaintext password and is shown exactly
// once; a delivery failure is logged and never fails the creation.
func (s *ProgramRoleService) CreateRole(actor *models.User, programID string, input CreateRoleInput) (*models.ProgramRole, error) {
	if err := authz.Authorize(actor, authz.ActionManageRoles, programID); err != nil {
		return nil, err
	}

	program, err := s.findProgram(programID)
	if err != nil {
		return nil, err
	}

	ve := &ValidationError{}
	if input.RoleName == "" {
		ve.Add("role_name", "The role name field is required")
	}
	if input.Username == "" {
		ve.Add("username", "The username field is required")
	} else {
		taken, err := s.roles.UsernameExists(input.Username, "")
		if err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if taken {
			ve.Add("username", "The username has already been taken")
		}
	}
	if input.Email == "" {
		ve.Add("email", "The email field is required")
	} else {
		taken, err := s.roles.EmailExists(input.Email, "")
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			ve.Add("email", "The email has already been taken")
		}
	}
	if len(input.Password) < constants.MinPasswordLength {
		ve.Add("password", fmt.Sprintf("The password must be at least %d characters", constants.MinPasswordLength))
	}
	if ve.HasErrors() {
		return nil, ve
	}

	// role_name uniqueness is per program and reported against the role_name
	// field specifically.
	taken, err := s.roles.RoleNameExists(programID, input.RoleName, "")
	if err != nil {
		return nil, fmt.Errorf("failed to check role name: %w", err)
	}
	if taken {
		return nil, NewFieldError("role_name", "A role with this name already exists in this program")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	events, err := s.roles.ActivitiesInProgram(programID, input.EventIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve events: %w", err)
	}

	role := &models.ProgramRole{
		ProgramID:    programID,
		RoleName:     input.RoleName,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		Description:  input.Description,
		Status:       models.ProgramRoleActive,
		Events:       events,
	}

	if err := s.roles.Create(role); err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}
	role.ServiceIDs = permissions.FilterKnown(input.ServiceIDs)

	s.sendRoleCreationEmail(role, input.Password, program, actor)

	return role, nil
}

func (s *ProgramRoleService) sendRoleCreationEmail(role *models.ProgramRole, plainPassword string, program *models.Program, creator *models.User) {
	orgName := "QSights"
	if program.Organization != nil {
		orgName = program.Organization.Name
	}

	msg := mailer.Message{
		To:       role.Email,
		Subject:  "Your Role Access Has Been Created - " + program.Name,
		Template: "role-created",
		Data: map[string]string{
			"role_name":         role.RoleName,
			"username":          role.Username,
			"password":          plainPassword,
			"email":             role.Email,
			"program_name":      program.Name,
			"organization_name": orgName,
			"login_url":         s.frontendURL,
			"created_by":        creator.Name,
		},
	}

	if err := s.mail.Send(msg); err != nil {
		s.logger.Error("failed to send role creation email",
			zap.String("role_id", role.ID),
			zap.String("to", role.Email),
			zap.Error(err),
		)
	}
}

// UpdateRoleInput represents a partial role update. Nil fields are left
// untouched; non-nil ServiceIDs/EventIDs fully replace prior values.
type UpdateRoleInput struct {
	RoleName    *string
	Username    *string
	Email       *string
	Password    *string
	Description *string
	Status      *models.ProgramRoleStatus
	ServiceIDs  *[]string
	EventIDs    *[]string
}

// UpdateRole applies a partial update to a role.
func (s *ProgramRoleService) UpdateRole(actor *models.User, programID, roleID string, input UpdateRoleInput) (*models.ProgramRole, error) {
	if err := authz.Authorize(actor, authz.ActionManageRoles, programID); err != nil {
		return nil, err
	}

	role, err := s.roles.FindByID(programID, roleID, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to find role: %w", err)
	}

	ve := &ValidationError{}
	if input.Username != nil && *input.Username != role.Username {
		taken, err := s.roles.UsernameExists(*input.Username, role.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if taken {
			ve.Add("username", "The username has already been taken")
		}
	}
	if input.Email != nil && *input.Email != role.Email {
		taken, err := s.roles.EmailExists(*input.Email, role.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			ve.Add("email", "The email has already been taken")
		}
	}
	if input.Password != nil && len(*input.Password) < constants.MinPasswordLength {
		ve.Add("password", fmt.Sprintf("The password must be at least %d characters", constants.MinPasswordLength))
	}
	if ve.HasErrors() {
		return nil, ve
	}

	if input.RoleName != nil && *input.RoleName != role.RoleName {
		taken, err := s.roles.RoleNameExists(programID, *input.RoleName, role.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check role name: %w", err)
		}
		if taken {
			return nil, NewFieldError("role_name", "A role with this name already exists in this program")
		}
		role.RoleName = *input.RoleName
	}

	if input.Username != nil {
		role.Username = *input.Username
	}
	if input.Email != nil {
		role.Email = *input.Email
	}
	if input.Description != nil {
		role.Description = *input.Description
	}
	if input.Status != nil {
		role.Status = *input.Status
	}
	if input.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, ErrFailedToHashPassword
		}
		role.PasswordHash = string(hash)
	}

	if err := s.roles.Update(role); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	if input.EventIDs != nil {
		events, err := s.roles.ActivitiesInProgram(programID, *input.EventIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve events: %w", err)
		}
		if err := s.roles.ReplaceEvents(role, events); err != nil {
			return nil, fmt.Errorf("failed to replace events: %w", err)
		}
	}

	updated, err := s.roles.FindByID(programID, roleID, false, "Program", "Events")
	if err != nil {
		return nil, fmt.Errorf("failed to reload role: %w", err)
	}
	if input.ServiceIDs != nil {
		updated.ServiceIDs = permissions.FilterKnown(*input.ServiceIDs)
	}
	return updated, nil
}

// DeleteRole soft deletes a role.
func (s *ProgramRoleService) DeleteRole(actor *models.User, programID, roleID string) error {
	if err := authz.Authorize(actor, authz.ActionManageRoles, programID); err != nil {
		return err
	}

	role, err := s.roles.FindByID(programID, roleID, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("failed to find role: %w", err)
	}

	if err := s.roles.Delete(role.ID); err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}
	return nil
}

// RestoreRole restores a soft-deleted role. Uniqueness is re-validated
// against currently active roles so a restore cannot reintroduce duplicates.
func (s *ProgramRoleService) RestoreRole(actor *models.User, programID, roleID string) (*models.ProgramRole, error) {
	if err := authz.Authorize(actor, authz.ActionManageRoles, programID); err != nil {
		return nil, err
	}

	role, err := s.roles.FindByID(programID, roleID, true)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to find role: %w", err)
	}

	ve := &ValidationError{}
	if taken, err := s.roles.RoleNameExists(programID, role.RoleName, role.ID); err != nil {
		return nil, fmt.Errorf("failed to check role name: %w", err)
	} else if taken {
		ve.Add("role_name", "A role with this name already exists in this program")
	}
	if taken, err := s.roles.UsernameExists(role.Username, role.ID); err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	} else if taken {
		ve.Add("username", "The username has already been taken")
	}
	if taken, err := s.roles.EmailExists(role.Email, role.ID); err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	} else if taken {
		ve.Add("email", "The email has already been taken")
	}
	if ve.HasErrors() {
		return nil, ve
	}

	if err := s.roles.Restore(role.ID); err != nil {
		return nil, fmt.Errorf("failed to restore role: %w", err)
	}

	return s.roles.FindByID(programID, roleID, false, "Program")
}

// AvailableActivities is the payload of the available-activities endpoint:
// the fixed permission catalog plus the program's activities.
type AvailableActivities struct {
	Services []permissions.Service `json:"services"`
	Events   []models.Activity     `json:"events"`
}

// ListAvailableActivities returns the permission catalog and the program's
// activities.
func (s *ProgramRoleService) ListAvailableActivities(actor *models.User, programID string) (*AvailableActivities, error) {
	if err := authz.Authorize(actor, authz.ActionViewRoles, programID); err != nil {
		return nil, err
	}

	if _, err := s.findProgram(programID); err != nil {
		return nil, err
	}

	events, err := s.roles.ListActivities(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	return &AvailableActivities{
		Services: permissions.Catalog(),
		Events:   events,
	}, nil
}
