package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/qsights/program-admin-api/internal/database"
	"github.com/qsights/program-admin-api/internal/dto"
	"github.com/qsights/program-admin-api/internal/models"
	"github.com/qsights/program-admin-api/internal/repository"
	"github.com/qsights/program-admin-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type programUserTestEnv struct {
	db      *gorm.DB
	handler *ProgramUserHandler
	program *models.Program
	admin   *models.User
	manager *models.User
}

func setupProgramUserTestEnv(t *testing.T) programUserTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Organization{},
		&models.Program{},
		&models.User{},
		&models.ProgramRole{},
		&models.Activity{},
		&models.Participant{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	org := &models.Organization{Name: "Acme Health"}
	require.NoError(t, db.Create(org).Error)
	program := &models.Program{OrganizationID: org.ID, Name: "Wellness", Code: "WEL-1"}
	require.NoError(t, db.Create(program).Error)

	admin := &models.User{
		Name:         "Wellness Admin",
		Email:        "wellness.Admin@qsights.com",
		PasswordHash: "hashed",
		Role:         models.RoleProgramAdmin,
		ProgramID:    &program.ID,
	}
	require.NoError(t, db.Create(admin).Error)
	manager := &models.User{
		Name:         "Wellness Manager",
		Email:        "wellness.Manager@qsights.com",
		PasswordHash: "hashed",
		Role:         models.RoleProgramManager,
		ProgramID:    &program.ID,
	}
	require.NoError(t, db.Create(manager).Error)

	programRepo := repository.NewProgramRepository(db)
	userRepo := repository.NewUserRepository(db)
	programService := services.NewProgramService(programRepo, userRepo, services.SystemClock, "qsights.com")
	handler := NewProgramUserHandler(programService)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return programUserTestEnv{
		db:      db,
		handler: handler,
		program: program,
		admin:   admin,
		manager: manager,
	}
}

func TestProgramUserHandler_ListUsers(t *testing.T) {
	env := setupProgramUserTestEnv(t)

	c, w := roleTestContext(http.MethodGet, "/api/programs/"+env.program.ID+"/users", nil, env.admin,
		gin.Params{{Key: "id", Value: env.program.ID}})

	env.handler.ListUsers(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data []dto.UserDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Data, 2)
}

func TestProgramUserHandler_UpdateUser(t *testing.T) {
	env := setupProgramUserTestEnv(t)

	body, err := json.Marshal(map[string]string{
		"name":  "Renamed Manager",
		"email": "renamed.manager@qsights.com",
	})
	require.NoError(t, err)

	c, w := roleTestContext(http.MethodPut, "/api/programs/"+env.program.ID+"/users/"+env.manager.ID, body, env.admin,
		gin.Params{{Key: "id", Value: env.program.ID}, {Key: "userId", Value: env.manager.ID}})

	env.handler.UpdateUser(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data dto.UserDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, env.manager.ID, response.Data.ID)
	require.Equal(t, "Renamed Manager", response.Data.Name)
	require.Equal(t, "renamed.manager@qsights.com", response.Data.Email)
}

func TestProgramUserHandler_UpdateUser_DuplicateEmail(t *testing.T) {
	env := setupProgramUserTestEnv(t)

	body, err := json.Marshal(map[string]string{"email": env.admin.Email})
	require.NoError(t, err)

	c, w := roleTestContext(http.MethodPut, "/api/programs/"+env.program.ID+"/users/"+env.manager.ID, body, env.admin,
		gin.Params{{Key: "id", Value: env.program.ID}, {Key: "userId", Value: env.manager.ID}})

	env.handler.UpdateUser(c)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var response struct {
		Errors map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotEmpty(t, response.Errors["email"])
}

func TestProgramUserHandler_DeleteUser_Self(t *testing.T) {
	env := setupProgramUserTestEnv(t)

	c, w := roleTestContext(http.MethodDelete, "/api/programs/"+env.program.ID+"/users/"+env.admin.ID, nil, env.admin,
		gin.Params{{Key: "id", Value: env.program.ID}, {Key: "userId", Value: env.admin.ID}})

	env.handler.DeleteUser(c)

	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "your own account")
}

func TestProgramUserHandler_DeleteUser(t *testing.T) {
	env := setupProgramUserTestEnv(t)

	c, w := roleTestContext(http.MethodDelete, "/api/programs/"+env.program.ID+"/users/"+env.manager.ID, nil, env.admin,
		gin.Params{{Key: "id", Value: env.program.ID}, {Key: "userId", Value: env.manager.ID}})

	env.handler.DeleteUser(c)

	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Where("program_id = ?", env.program.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestProgramUserHandler_ResetPassword(t *testing.T) {
	env := setupProgramUserTestEnv(t)

	before := env.manager.PasswordHash

	c, w := roleTestContext(http.MethodPost, "/api/programs/"+env.program.ID+"/users/"+env.manager.ID+"/reset-password", nil, env.admin,
		gin.Params{{Key: "id", Value: env.program.ID}, {Key: "userId", Value: env.manager.ID}})

	env.handler.ResetPassword(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data services.GeneratedCredentials `json:"data"`
		Note string                        `json:"note"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Data.Password, 12)
	require.NotEmpty(t, response.Note)

	var stored models.User
	require.NoError(t, env.db.First(&stored, "id = ?", env.manager.ID).Error)
	require.NotEqual(t, before, stored.PasswordHash)
}
