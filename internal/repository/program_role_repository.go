package repository

import (
	"github.com/qsights/program-admin-api/internal/models"
	"gorm.io/gorm"
)

// GormProgramRoleRepository is a GORM implementation of ProgramRoleRepository
type GormProgramRoleRepository struct {
	db *gorm.DB
}

// NewProgramRoleRepository creates a new ProgramRoleRepository
func NewProgramRoleRepository(db *gorm.DB) ProgramRoleRepository {
	return &GormProgramRoleRepository{db: db}
}

// Create persists a role together with its event associations
func (r *GormProgramRoleRepository) Create(role *models.ProgramRole) error {
	return r.db.Create(role).Error
}

// FindByID finds a role scoped to a program, optionally including trashed
func (r *GormProgramRoleRepository) FindByID(programID, roleID string, withTrashed bool, preload ...string) (*models.ProgramRole, error) {
	var role models.ProgramRole
	query := r.db
	if withTrashed {
		query = query.Unscoped()
	}

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.
		Where("program_roles.id = ? AND program_roles.program_id = ?", roleID, programID).
		First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// ListByProgram lists roles of a program, newest first
func (r *GormProgramRoleRepository) ListByProgram(programID string) ([]models.ProgramRole, error) {
	var roles []models.ProgramRole
	if err := r.db.
		Preload("Events").
		Where("program_id = ?", programID).
		Order("created_at DESC").
		Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// Update updates a role's fields
func (r *GormProgramRoleRepository) Update(role *models.ProgramRole) error {
	return r.db.Omit("Events").Save(role).Error
}

// ReplaceEvents replaces the role's event associations (set semantics)
func (r *GormProgramRoleRepository) ReplaceEvents(role *models.ProgramRole, events []models.Activity) error {
	return r.db.Model(role).Association("Events").Replace(events)
}

// Delete soft deletes a role
func (r *GormProgramRoleRepository) Delete(id string) error {
	return r.db.Delete(&models.ProgramRole{}, "id = ?", id).Error
}

// Restore restores a soft-deleted role
func (r *GormProgramRoleRepository) Restore(id string) error {
	return r.db.Unscoped().Model(&models.ProgramRole{}).Where("id = ?", id).
		Update("deleted_at", nil).Error
}

// RoleNameExists reports whether role_name is taken within the program
func (r *GormProgramRoleRepository) RoleNameExists(programID, roleName, excludeID string) (bool, error) {
	query := r.db.Model(&models.ProgramRole{}).
		Where("program_id = ? AND role_name = ?", programID, roleName)
	return r.exists(query, excludeID)
}

// UsernameExists reports whether a role username is taken globally
func (r *GormProgramRoleRepository) UsernameExists(username, excludeID string) (bool, error) {
	query := r.db.Model(&models.ProgramRole{}).Where("username = ?", username)
	return r.exists(query, excludeID)
}

// EmailExists reports whether a role email is taken globally
func (r *GormProgramRoleRepository) EmailExists(email, excludeID string) (bool, error) {
	query := r.db.Model(&models.ProgramRole{}).Where("email = ?", email)
	return r.exists(query, excludeID)
}

func (r *GormProgramRoleRepository) exists(query *gorm.DB, excludeID string) (bool, error) {
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByProgram counts non-deleted roles of a program
func (r *GormProgramRoleRepository) CountByProgram(programID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.ProgramRole{}).
		Where("program_id = ?", programID).
		Count(&count).Error
	return count, err
}

// ActivitiesInProgram resolves ids to existing, non-deleted activities of the
// program; unresolved ids are dropped
func (r *GormProgramRoleRepository) ActivitiesInProgram(programID string, ids []string) ([]models.Activity, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var activities []models.Activity
	if err := r.db.
		Where("program_id = ? AND id IN ?", programID, ids).
		Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

// ListActivities lists the program's activities ordered by name
func (r *GormProgramRoleRepository) ListActivities(programID string) ([]models.Activity, error) {
	var activities []models.Activity
	if err := r.db.
		Where("program_id = ?", programID).
		Order("name ASC").
		Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}
