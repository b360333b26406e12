package repository

import (
	"math"
	"time"

	"github.com/qsights/program-admin-api/internal/database"
	"github.com/qsights/program-admin-api/internal/models"
	"github.com/qsights/program-admin-api/internal/utils"
	"gorm.io/gorm"
)

// GormProgramRepository is a GORM implementation of ProgramRepository
type GormProgramRepository struct {
	db *gorm.DB
}

// NewProgramRepository creates a new ProgramRepository
func NewProgramRepository(db *gorm.DB) ProgramRepository {
	return &GormProgramRepository{db: db}
}

// Create creates a new program
func (r *GormProgramRepository) Create(program *models.Program) error {
	return r.db.Create(program).Error
}

// FindByID finds a program by ID with optional preloading
func (r *GormProgramRepository) FindByID(id string, withTrashed bool, preload ...string) (*models.Program, error) {
	var program models.Program
	query := r.db
	if withTrashed {
		query = query.Unscoped()
	}

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&program, "programs.id = ?", id).Error; err != nil {
		return nil, err
	}

	return &program, nil
}

// List retrieves programs with filtering and pagination
func (r *GormProgramRepository) List(filter ProgramFilter) ([]models.Program, int64, error) {
	var programs []models.Program

	query := r.db.Model(&models.Program{})
	if filter.WithTrashed {
		query = query.Unscoped()
	} else if filter.Status == nil {
		// Default listing scope shows active programs only.
		query = query.Where("programs.status = ?", models.ProgramActive)
	}

	if filter.OrganizationID != nil {
		query = query.Where("programs.organization_id = ?", *filter.OrganizationID)
	}
	if filter.GroupHeadID != nil {
		query = query.Where("programs.group_head_id = ?", *filter.GroupHeadID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(
			"LOWER(programs.name) LIKE LOWER(?) OR LOWER(programs.code) LIKE LOWER(?) OR LOWER(programs.description) LIKE LOWER(?)",
			pattern, pattern, pattern,
		)
	}
	if filter.Status != nil {
		query = query.Where("programs.status = ?", *filter.Status)
	}
	if filter.StartDateFrom != nil {
		query = query.Where("programs.start_date >= ?", *filter.StartDateFrom)
	}
	if filter.EndDateTo != nil {
		query = query.Where("programs.end_date <= ?", *filter.EndDateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("programs.created_at DESC")
	if filter.Page > 0 && filter.PerPage > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			PerPage: filter.PerPage,
			Offset:  (filter.Page - 1) * filter.PerPage,
		}))
	}

	if err := listQuery.Preload("Organization").Find(&programs).Error; err != nil {
		return nil, 0, err
	}

	return programs, total, nil
}

// Update updates a program
func (r *GormProgramRepository) Update(program *models.Program) error {
	return r.db.Save(program).Error
}

// UpdateStatus sets only the program status
func (r *GormProgramRepository) UpdateStatus(id string, status models.ProgramStatus) error {
	return r.db.Model(&models.Program{}).Where("id = ?", id).
		Update("status", status).Error
}

// Delete soft deletes a program together with its program users
func (r *GormProgramRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("program_id = ?", id).
			Delete(&models.User{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Program{}, "id = ?", id).Error
	})
}

// Restore restores a soft-deleted program together with its program users
func (r *GormProgramRepository) Restore(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Model(&models.Program{}).Where("id = ?", id).
			Update("deleted_at", nil).Error; err != nil {
			return err
		}

		return tx.Unscoped().Model(&models.User{}).Where("program_id = ?", id).
			Update("deleted_at", nil).Error
	})
}

// ForceDelete hard-deletes a program with its users, roles and role events
func (r *GormProgramRepository) ForceDelete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("program_id = ?", id).
			Delete(&models.User{}).Error; err != nil {
			return err
		}

		var roleIDs []string
		if err := tx.Unscoped().Model(&models.ProgramRole{}).
			Where("program_id = ?", id).Pluck("id", &roleIDs).Error; err != nil {
			return err
		}
		if len(roleIDs) > 0 {
			if err := tx.Exec("DELETE FROM program_role_events WHERE program_role_id IN ?", roleIDs).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("program_id = ?", id).
				Delete(&models.ProgramRole{}).Error; err != nil {
				return err
			}
		}

		return tx.Unscoped().Delete(&models.Program{}, "id = ?", id).Error
	})
}

// ExpireOverdue transitions every non-expired program with a passed end date
func (r *GormProgramRepository) ExpireOverdue(now time.Time) error {
	return r.db.Model(&models.Program{}).
		Where("status <> ? AND end_date IS NOT NULL AND end_date < ?", models.ProgramExpired, now).
		Update("status", models.ProgramExpired).Error
}

// CodeExists reports whether a program code is taken, excluding one id
func (r *GormProgramRepository) CodeExists(code, excludeID string) (bool, error) {
	var count int64
	query := r.db.Model(&models.Program{}).Where("code = ?", code)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// OrganizationExists reports whether the organization exists
func (r *GormProgramRepository) OrganizationExists(id string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Organization{}).Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountsFor returns activity/participant counts and progress for a program
func (r *GormProgramRepository) CountsFor(programID string) (ProgramCounts, error) {
	var counts ProgramCounts

	if err := r.db.Model(&models.Activity{}).
		Where("program_id = ?", programID).
		Count(&counts.Activities).Error; err != nil {
		return counts, err
	}

	var completed int64
	if err := r.db.Model(&models.Activity{}).
		Where("program_id = ? AND status = ?", programID, "completed").
		Count(&completed).Error; err != nil {
		return counts, err
	}
	if counts.Activities > 0 {
		counts.Progress = math.Round(float64(completed)/float64(counts.Activities)*100*100) / 100
	}

	participants := func(q *gorm.DB) *gorm.DB {
		return q.Model(&models.Participant{}).Where("program_id = ?", programID)
	}

	if err := participants(r.db).Count(&counts.Participants).Error; err != nil {
		return counts, err
	}
	if err := participants(r.db).Where("status = ? AND is_guest = ?", "active", false).
		Count(&counts.ActiveParticipants).Error; err != nil {
		return counts, err
	}
	if err := participants(r.db).Where("status = ? AND is_guest = ?", "inactive", false).
		Count(&counts.InactiveParticipants).Error; err != nil {
		return counts, err
	}
	if err := participants(r.db).Where("is_guest = ?", false).
		Count(&counts.AuthenticatedParticipants).Error; err != nil {
		return counts, err
	}
	if err := participants(r.db).Where("is_guest = ?", true).
		Count(&counts.GuestParticipants).Error; err != nil {
		return counts, err
	}

	return counts, nil
}
