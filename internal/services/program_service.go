package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/qsights/program-admin-api/internal/authz"
	"github.com/qsights/program-admin-api/internal/constants"
	"github.com/qsights/program-admin-api/internal/models"
	"github.com/qsights/program-admin-api/internal/repository"
	"github.com/qsights/program-admin-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrProgramNotFound      = errors.New("program not found")
	ErrProgramExpired       = errors.New("cannot activate expired program")
	ErrProgramUserNotFound  = errors.New("program user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// ProgramService provides program lifecycle, CRUD and program-user logic.
type ProgramService struct {
	programs  repository.ProgramRepository
	users     repository.UserRepository
	clock     Clock
	emailHost string
}

// NewProgramService creates a new ProgramService. The email host is used when
// deriving generated program-user addresses.
func NewProgramService(programs repository.ProgramRepository, users repository.UserRepository, clock Clock, emailHost string) *ProgramService {
	return &ProgramService{
		programs:  programs,
		users:     users,
		clock:     clock,
		emailHost: emailHost,
	}
}

// GeneratedCredentials is the one-time credential payload for a generated or
// reset program user. The password is never retrievable again.
type GeneratedCredentials struct {
	UserID   string `json:"user_id,omitempty"`
	Role     string `json:"role"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProgramSummary combines a program with its listing counts.
type ProgramSummary struct {
	models.Program
	repository.ProgramCounts
}

// CreateProgramInput represents parameters to create a new program.
type CreateProgramInput struct {
	OrganizationID string
	GroupHeadID    *string
	Name           string
	Code           string
	Description    string
	Logo           string
	StartDate      *time.Time
	EndDate        *time.Time
	IsMultilingual bool
	Languages      []string
	Status         *models.ProgramStatus

	GenerateAdmin     *bool
	GenerateManager   *bool
	GenerateModerator *bool
}

// CreateProgram creates a program and auto-generates the requested program
// users. Generated plaintext credentials are returned exactly once.
func (s *ProgramService) CreateProgram(input CreateProgramInput) (*models.Program, map[string]GeneratedCredentials, error) {
	if err := s.validateProgramInput(input.Code, "", input.StartDate, input.EndDate); err != nil {
		return nil, nil, err
	}

	exists, err := s.programs.OrganizationExists(input.OrganizationID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check organization: %w", err)
	}
	if !exists {
		return nil, nil, NewFieldError("organization_id", "The selected organization does not exist")
	}

	status := models.ProgramActive
	if input.Status != nil {
		status = *input.Status
	}

	program := &models.Program{
		OrganizationID: input.OrganizationID,
		GroupHeadID:    input.GroupHeadID,
		Name:           input.Name,
		Code:           input.Code,
		Description:    input.Description,
		Logo:           input.Logo,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		Status:         status,
		IsMultilingual: input.IsMultilingual,
		Languages:      input.Languages,
	}

	if err := s.programs.Create(program); err != nil {
		return nil, nil, fmt.Errorf("failed to create program: %w", err)
	}

	generated := make(map[string]GeneratedCredentials)
	kinds := []struct {
		key  string
		role models.UserRole
		flag *bool
	}{
		{"admin", models.RoleProgramAdmin, input.GenerateAdmin},
		{"manager", models.RoleProgramManager, input.GenerateManager},
		{"moderator", models.RoleProgramModerator, input.GenerateModerator},
	}
	for _, k := range kinds {
		if k.flag != nil && !*k.flag {
			continue
		}
		creds, err := s.generateProgramUser(program, k.role)
		if err != nil {
			return nil, nil, err
		}
		generated[k.key] = creds
	}

	return program, generated, nil
}

var roleLabels = map[models.UserRole]string{
	models.RoleProgramAdmin:     "Admin",
	models.RoleProgramManager:   "Manager",
	models.RoleProgramModerator: "Moderator",
}

// generateProgramUser synthesizes one program user with a random password and
// a derived email, disambiguating collisions with a counter before the "@".
func (s *ProgramService) generateProgramUser(program *models.Program, role models.UserRole) (GeneratedCredentials, error) {
	label := roleLabels[role]

	password, err := utils.GeneratePassword(constants.GeneratedPasswordLength)
	if err != nil {
		return GeneratedCredentials{}, err
	}

	local := strings.ToLower(strings.ReplaceAll(program.Name, " ", "."))
	email := fmt.Sprintf("%s.%s@%s", local, label, s.emailHost)
	original := email
	for counter := 1; ; counter++ {
		taken, err := s.users.EmailExists(email)
		if err != nil {
			return GeneratedCredentials{}, fmt.Errorf("failed to check email: %w", err)
		}
		if !taken {
			break
		}
		email = strings.Replace(original, "@", fmt.Sprintf("%d@", counter), 1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return GeneratedCredentials{}, ErrFailedToHashPassword
	}

	user := &models.User{
		Name:         program.Name + " " + label,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		ProgramID:    &program.ID,
	}
	if err := s.users.Create(user); err != nil {
		return GeneratedCredentials{}, fmt.Errorf("failed to create program user: %w", err)
	}

	return GeneratedCredentials{
		UserID:   user.ID,
		Role:     string(role),
		Name:     user.Name,
		Email:    user.Email,
		Password: password,
	}, nil
}

// ListPrograms sweeps overdue programs into the expired state, then lists
// programs with their counts.
func (s *ProgramService) ListPrograms(filter repository.ProgramFilter) ([]ProgramSummary, int64, error) {
	if err := s.programs.ExpireOverdue(s.clock.Now()); err != nil {
		return nil, 0, fmt.Errorf("failed to expire overdue programs: %w", err)
	}

	programs, total, err := s.programs.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list programs: %w", err)
	}

	summaries := make([]ProgramSummary, len(programs))
	for i, p := range programs {
		counts, err := s.programs.CountsFor(p.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to count program relations: %w", err)
		}
		summaries[i] = ProgramSummary{Program: p, ProgramCounts: counts}
	}

	return summaries, total, nil
}

// GetProgram fetches a program and applies the lazy expiry transition.
func (s *ProgramService) GetProgram(id string) (*models.Program, error) {
	program, err := s.programs.FindByID(id, false, "Organization", "Activities", "Participants")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, fmt.Errorf("failed to find program: %w", err)
	}

	if err := s.refreshExpiry(program); err != nil {
		return nil, err
	}

	return program, nil
}

// refreshExpiry persists the expired transition when the program's end date
// has passed. Writes only when a transition actually occurs.
func (s *ProgramService) refreshExpiry(program *models.Program) error {
	if !program.IsOverdue(s.clock.Now()) || program.Status == models.ProgramExpired {
		return nil
	}
	if err := s.programs.UpdateStatus(program.ID, models.ProgramExpired); err != nil {
		return fmt.Errorf("failed to expire program: %w", err)
	}
	program.Status = models.ProgramExpired
	return nil
}

// UpdateProgramInput represents a partial program update.
type UpdateProgramInput struct {
	OrganizationID *string
	GroupHeadID    *string
	Name           *string
	Code           *string
	Description    *string
	Logo           *string
	StartDate      *time.Time
	EndDate        *time.Time
	IsMultilingual *bool
	Languages      []string
	Status         *models.ProgramStatus
}

// UpdateProgram applies a partial update and refreshes expiry afterwards.
func (s *ProgramService) UpdateProgram(id string, input UpdateProgramInput) (*models.Program, error) {
	program, err := s.programs.FindByID(id, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, fmt.Errorf("failed to find program: %w", err)
	}

	if input.OrganizationID != nil {
		exists, err := s.programs.OrganizationExists(*input.OrganizationID)
		if err != nil {
			return nil, fmt.Errorf("failed to check organization: %w", err)
		}
		if !exists {
			return nil, NewFieldError("organization_id", "The selected organization does not exist")
		}
		program.OrganizationID = *input.OrganizationID
	}
	if input.GroupHeadID != nil {
		program.GroupHeadID = input.GroupHeadID
	}
	if input.Name != nil {
		program.Name = *input.Name
	}
	if input.Code != nil {
		program.Code = *input.Code
	}
	if input.Description != nil {
		program.Description = *input.Description
	}
	if input.Logo != nil {
		program.Logo = *input.Logo
	}
	if input.StartDate != nil {
		program.StartDate = input.StartDate
	}
	if input.EndDate != nil {
		program.EndDate = input.EndDate
	}
	if input.IsMultilingual != nil {
		program.IsMultilingual = *input.IsMultilingual
	}
	if input.Languages != nil {
		program.Languages = input.Languages
	}
	if input.Status != nil {
		program.Status = *input.Status
	}

	if err := s.validateProgramInput(program.Code, program.ID, program.StartDate, program.EndDate); err != nil {
		return nil, err
	}

	if err := s.programs.Update(program); err != nil {
		return nil, fmt.Errorf("failed to update program: %w", err)
	}

	if err := s.refreshExpiry(program); err != nil {
		return nil, err
	}

	return program, nil
}

func (s *ProgramService) validateProgramInput(code, excludeID string, start, end *time.Time) error {
	ve := &ValidationError{}

	if code != "" {
		taken, err := s.programs.CodeExists(code, excludeID)
		if err != nil {
			return fmt.Errorf("failed to check program code: %w", err)
		}
		if taken {
			ve.Add("code", "The code has already been taken")
		}
	}
	if start != nil && end != nil && end.Before(*start) {
		ve.Add("end_date", "The end date must be on or after the start date")
	}

	if ve.HasErrors() {
		return ve
	}
	return nil
}

// DeleteProgram soft deletes a program.
func (s *ProgramService) DeleteProgram(id string) error {
	if _, err := s.programs.FindByID(id, false); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProgramNotFound
		}
		return fmt.Errorf("failed to find program: %w", err)
	}
	if err := s.programs.Delete(id); err != nil {
		return fmt.Errorf("failed to delete program: %w", err)
	}
	return nil
}

// RestoreProgram restores a soft-deleted program and its program users.
func (s *ProgramService) RestoreProgram(id string) (*models.Program, error) {
	if _, err := s.programs.FindByID(id, true); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, fmt.Errorf("failed to find program: %w", err)
	}
	if err := s.programs.Restore(id); err != nil {
		return nil, fmt.Errorf("failed to restore program: %w", err)
	}
	return s.programs.FindByID(id, false, "Organization")
}

// ForceDeleteProgram permanently removes a program, its users and its roles.
func (s *ProgramService) ForceDeleteProgram(id string) error {
	if _, err := s.programs.FindByID(id, true); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProgramNotFound
		}
		return fmt.Errorf("failed to find program: %w", err)
	}
	if err := s.programs.ForceDelete(id); err != nil {
		return fmt.Errorf("failed to force delete program: %w", err)
	}
	return nil
}

// ActivateProgram sets the program active unless its end date has passed.
func (s *ProgramService) ActivateProgram(id string) (*models.Program, error) {
	program, err := s.programs.FindByID(id, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, fmt.Errorf("failed to find program: %w", err)
	}

	if program.IsOverdue(s.clock.Now()) {
		return nil, ErrProgramExpired
	}

	if err := s.programs.UpdateStatus(id, models.ProgramActive); err != nil {
		return nil, fmt.Errorf("failed to activate program: %w", err)
	}
	program.Status = models.ProgramActive
	return program, nil
}

// DeactivateProgram unconditionally sets the program inactive.
func (s *ProgramService) DeactivateProgram(id string) (*models.Program, error) {
	program, err := s.programs.FindByID(id, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, fmt.Errorf("failed to find program: %w", err)
	}

	if err := s.programs.UpdateStatus(id, models.ProgramInactive); err != nil {
		return nil, fmt.Errorf("failed to deactivate program: %w", err)
	}
	program.Status = models.ProgramInactive
	return program, nil
}

// ProgramStatistics summarizes a program for the statistics endpoint.
type ProgramStatistics struct {
	TotalActivities   int64                `json:"total_activities"`
	TotalParticipants int64                `json:"total_participants"`
	IsMultilingual    bool                 `json:"is_multilingual"`
	Languages         []string             `json:"languages"`
	Status            models.ProgramStatus `json:"status"`
	DaysRemaining     *int                 `json:"days_remaining"`
}

// GetStatistics returns aggregate statistics for a program.
func (s *ProgramService) GetStatistics(id string) (*models.Program, *ProgramStatistics, error) {
	program, err := s.programs.FindByID(id, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrProgramNotFound
		}
		return nil, nil, fmt.Errorf("failed to find program: %w", err)
	}

	counts, err := s.programs.CountsFor(id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count program relations: %w", err)
	}

	stats := &ProgramStatistics{
		TotalActivities:   counts.Activities,
		TotalParticipants: counts.Participants,
		IsMultilingual:    program.IsMultilingual,
		Languages:         program.Languages,
		Status:            program.Status,
	}
	if program.EndDate != nil {
		days := int(program.EndDate.Sub(s.clock.Now()).Hours() / 24)
		stats.DaysRemaining = &days
	}

	return program, stats, nil
}

// ListProgramUsers lists a program's service accounts.
func (s *ProgramService) ListProgramUsers(actor *models.User, programID string) ([]models.User, error) {
	if err := authz.Authorize(actor, authz.ActionViewRoles, programID); err != nil {
		return nil, err
	}
	if _, err := s.programs.FindByID(programID, false); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, fmt.Errorf("failed to find program: %w", err)
	}
	users, err := s.users.ListProgramUsers(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to list program users: %w", err)
	}
	return users, nil
}

// UpdateProgramUserInput represents a partial program-user update.
type UpdateProgramUserInput struct {
	Name     *string
	Email    *string
	Password *string
}

// UpdateProgramUser updates a program user's profile fields.
func (s *ProgramService) UpdateProgramUser(actor *models.User, programID, userID string, input UpdateProgramUserInput) (*models.User, error) {
	if err := authz.Authorize(actor, authz.ActionManageProgramUsers, programID); err != nil {
		return nil, err
	}

	user, err := s.users.FindProgramUser(programID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramUserNotFound
		}
		return nil, fmt.Errorf("failed to find program user: %w", err)
	}

	if input.Email != nil && *input.Email != user.Email {
		taken, err := s.users.EmailExists(*input.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			return nil, NewFieldError("email", "The email has already been taken")
		}
		user.Email = *input.Email
	}
	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Password != nil {
		if len(*input.Password) < constants.MinPasswordLength {
			return nil, NewFieldError("password", fmt.Sprintf("The password must be at least %d characters", constants.MinPasswordLength))
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, ErrFailedToHashPassword
		}
		user.PasswordHash = string(hash)
	}

	if err := s.users.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update program user: %w", err)
	}
	return user, nil
}

// DeleteProgramUser soft deletes a program user. Actors can never delete
// their own account.
func (s *ProgramService) DeleteProgramUser(actor *models.User, programID, userID string) error {
	if err := authz.Authorize(actor, authz.ActionManageProgramUsers, programID); err != nil {
		return err
	}

	user, err := s.users.FindProgramUser(programID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProgramUserNotFound
		}
		return fmt.Errorf("failed to find program user: %w", err)
	}

	if err := authz.GuardSelfDeletion(actor, user.ID); err != nil {
		return err
	}

	if err := s.users.Delete(user.ID); err != nil {
		return fmt.Errorf("failed to delete program user: %w", err)
	}
	return nil
}

// ResetProgramUserPassword generates a fresh random password for a program
// user and returns it exactly once.
func (s *ProgramService) ResetProgramUserPassword(actor *models.User, programID, userID string) (*GeneratedCredentials, error) {
	if err := authz.Authorize(actor, authz.ActionManageProgramUsers, programID); err != nil {
		return nil, err
	}

	user, err := s.users.FindProgramUser(programID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramUserNotFound
		}
		return nil, fmt.Errorf("failed to find program user: %w", err)
	}

	password, err := utils.GeneratePassword(constants.GeneratedPasswordLength)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}
	user.PasswordHash = string(hash)

	if err := s.users.Update(user); err != nil {
		return nil, fmt.Errorf("failed to reset password: %w", err)
	}

	return &GeneratedCredentials{
		UserID:   user.ID,
		Role:     string(user.Role),
		Name:     user.Name,
		Email:    user.Email,
		Password: password,
	}, nil
}
