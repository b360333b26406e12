package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/qsights/program-admin-api/internal/database"
	"github.com/qsights/program-admin-api/internal/models"
	"github.com/qsights/program-admin-api/internal/repository"
	"github.com/qsights/program-admin-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type programTestEnv struct {
	db             *gorm.DB
	handler        *ProgramHandler
	programService *services.ProgramService
	org            *models.Organization
}

func setupProgramTestEnv(t *testing.T) programTestEnv {
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

	programRepo := repository.NewProgramRepository(db)
	userRepo := repository.NewUserRepository(db)
	programService := services.NewProgramService(programRepo, userRepo, services.SystemClock, "qsights.com")
	handler := NewProgramHandler(programService)

	org := &models.Organization{Name: "Acme Health"}
	require.NoError(t, db.Create(org).Error)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return programTestEnv{
		db:             db,
		handler:        handler,
		programService: programService,
		org:            org,
	}
}

func programTestContext(method, url string, body []byte, params gin.Params) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = params

	return c, w
}

func TestProgramHandler_CreateProgram_GeneratesUsers(t *testing.T) {
	env := setupProgramTestEnv(t)

	genFalse := false
	payload := map[string]interface{}{
		"organization_id":    env.org.ID,
		"name":               "Test Program",
		"code":               "TP-001",
		"generate_manager":   genFalse,
		"generate_moderator": genFalse,
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	c, w := programTestContext(http.MethodPost, "/api/programs", body, nil)

	env.handler.CreateProgram(c)

	require.Equal(t, http.StatusCreated, w.Code)

	var response struct {
		Data           models.Program                          `json:"data"`
		GeneratedUsers map[string]services.GeneratedCredentials `json:"generated_users"`
		Note           string                                  `json:"note"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "TP-001", response.Data.Code)
	require.Len(t, response.GeneratedUsers, 1)

	admin := response.GeneratedUsers["admin"]
	require.Equal(t, "test.program.Admin@qsights.com", admin.Email)
	require.Len(t, admin.Password, 12)
	require.Contains(t, response.Note, "Passwords will not be shown again")

	// The credentials are one-time; the detail view carries no password.
	c, w = programTestContext(http.MethodGet, "/api/programs/"+response.Data.ID, nil,
		gin.Params{{Key: "id", Value: response.Data.ID}})
	env.handler.GetProgram(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), admin.Password)
	require.NotContains(t, w.Body.String(), "password_hash")
}

func TestProgramHandler_CreateProgram_DuplicateCode(t *testing.T) {
	env := setupProgramTestEnv(t)

	require.NoError(t, env.db.Create(&models.Program{
		OrganizationID: env.org.ID,
		Name:           "Existing",
		Code:           "DUP-1",
	}).Error)

	payload := map[string]interface{}{
		"organization_id": env.org.ID,
		"name":            "Another",
		"code":            "DUP-1",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	c, w := programTestContext(http.MethodPost, "/api/programs", body, nil)

	env.handler.CreateProgram(c)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var response struct {
		Errors map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotEmpty(t, response.Errors["code"])
}

func TestProgramHandler_ListPrograms_SweepsOverdue(t *testing.T) {
	env := setupProgramTestEnv(t)

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, env.db.Create(&models.Program{
		OrganizationID: env.org.ID,
		Name:           "Finished Study",
		Code:           "FIN-1",
		Status:         models.ProgramActive,
		EndDate:        &past,
	}).Error)

	// No status filter: defaults to active only, which the swept program no
	// longer matches.
	c, w := programTestContext(http.MethodGet, "/api/programs", nil, nil)
	env.handler.ListPrograms(c)
	require.Equal(t, http.StatusOK, w.Code)

	var listResponse struct {
		Data []services.ProgramSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResponse))
	require.Empty(t, listResponse.Data)

	c, w = programTestContext(http.MethodGet, "/api/programs?status=expired", nil, nil)
	env.handler.ListPrograms(c)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResponse))
	require.Len(t, listResponse.Data, 1)
	require.Equal(t, models.ProgramExpired, listResponse.Data[0].Status)
}

func TestProgramHandler_GetProgram_NotFound(t *testing.T) {
	env := setupProgramTestEnv(t)

	c, w := programTestContext(http.MethodGet, "/api/programs/missing", nil,
		gin.Params{{Key: "id", Value: "00000000-0000-0000-0000-000000000000"}})

	env.handler.GetProgram(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestProgramHandler_ActivateProgram_Expired(t *testing.T) {
	env := setupProgramTestEnv(t)

	past := time.Now().Add(-24 * time.Hour)
	program := &models.Program{
		OrganizationID: env.org.ID,
		Name:           "Closed Program",
		Code:           "CLS-1",
		Status:         models.ProgramInactive,
		EndDate:        &past,
	}
	require.NoError(t, env.db.Create(program).Error)

	c, w := programTestContext(http.MethodPost, "/api/programs/"+program.ID+"/activate", nil,
		gin.Params{{Key: "id", Value: program.ID}})

	env.handler.ActivateProgram(c)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Contains(t, w.Body.String(), "expired")
}

func TestProgramHandler_RestoreProgram(t *testing.T) {
	env := setupProgramTestEnv(t)

	program := &models.Program{
		OrganizationID: env.org.ID,
		Name:           "Recoverable",
		Code:           "REC-1",
	}
	require.NoError(t, env.db.Create(program).Error)
	require.NoError(t, env.programService.DeleteProgram(program.ID))

	var count int64
	require.NoError(t, env.db.Model(&models.Program{}).Where("id = ?", program.ID).Count(&count).Error)
	require.Zero(t, count)

	c, w := programTestContext(http.MethodPost, "/api/programs/"+program.ID+"/restore", nil,
		gin.Params{{Key: "id", Value: program.ID}})

	env.handler.RestoreProgram(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, env.db.Model(&models.Program{}).Where("id = ?", program.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestProgramHandler_GetStatistics(t *testing.T) {
	env := setupProgramTestEnv(t)

	future := time.Now().Add(72 * time.Hour)
	program := &models.Program{
		OrganizationID: env.org.ID,
		Name:           "Running Study",
		Code:           "RUN-1",
		EndDate:        &future,
	}
	require.NoError(t, env.db.Create(program).Error)
	require.NoError(t, env.db.Create(&models.Activity{ProgramID: program.ID, Name: "Baseline Survey"}).Error)
	require.NoError(t, env.db.Create(&models.Participant{ProgramID: program.ID, Name: "P1"}).Error)

	c, w := programTestContext(http.MethodGet, "/api/programs/"+program.ID+"/statistics", nil,
		gin.Params{{Key: "id", Value: program.ID}})

	env.handler.GetStatistics(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Statistics services.ProgramStatistics `json:"statistics"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.EqualValues(t, 1, response.Statistics.TotalActivities)
	require.EqualValues(t, 1, response.Statistics.TotalParticipants)
	require.NotNil(t, response.Statistics.DaysRemaining)
}
