package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/qsights/program-admin-api/internal/authz"
	"github.com/qsights/program-admin-api/internal/mailer"
	"github.com/qsights/program-admin-api/internal/models"
	"github.com/qsights/program-admin-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type recordingSender struct {
	sent []mailer.Message
	err  error
}

func (s *recordingSender) Send(msg mailer.Message) error {
	s.sent = append(s.sent, msg)
	return s.err
}

type roleServiceEnv struct {
	db      *gorm.DB
	service *ProgramRoleService
	sender  *recordingSender
	program *models.Program
	actor   *models.User
}

func setupRoleService(t *testing.T) roleServiceEnv {
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

	org := &models.Organization{Name: "Acme Health"}
	require.NoError(t, db.Create(org).Error)
	program := &models.Program{OrganizationID: org.ID, Name: "Wellness", Code: "WEL-1"}
	require.NoError(t, db.Create(program).Error)

	actor := &models.User{
		Name:         "Wellness Admin",
		Email:        "wellness.Admin@qsights.com",
		PasswordHash: "hashed",
		Role:         models.RoleProgramAdmin,
		ProgramID:    &program.ID,
	}
	require.NoError(t, db.Create(actor).Error)

	sender := &recordingSender{}
	service := NewProgramRoleService(
		repository.NewProgramRoleRepository(db),
		repository.NewProgramRepository(db),
		sender,
		zap.NewNop(),
		"https://prod.qsights.com",
	)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return roleServiceEnv{db: db, service: service, sender: sender, program: program, actor: actor}
}

func TestProgramRoleService_CreateRole_SendsCredentials(t *testing.T) {
	env := setupRoleService(t)

	role, err := env.service.CreateRole(env.actor, env.program.ID, CreateRoleInput{
		RoleName: "Site Coordinator",
		Username: "site.coordinator",
		Email:    "coordinator@qsights.com",
		Password: "secret-pass-1",
	})
	require.NoError(t, err)

	require.Len(t, env.sender.sent, 1)
	msg := env.sender.sent[0]
	require.Equal(t, role.Email, msg.To)
	require.Equal(t, "Your Role Access Has Been Created - Wellness", msg.Subject)
	require.Equal(t, "secret-pass-1", msg.Data["password"])
	require.Equal(t, "https://prod.qsights.com", msg.Data["login_url"])
	require.Equal(t, env.actor.Name, msg.Data["created_by"])
}

func TestProgramRoleService_CreateRole_MailFailureDoesNotFail(t *testing.T) {
	env := setupRoleService(t)
	env.sender.err = errors.New("smtp unreachable")

	role, err := env.service.CreateRole(env.actor, env.program.ID, CreateRoleInput{
		RoleName: "Site Coordinator",
		Username: "site.coordinator",
		Email:    "coordinator@qsights.com",
		Password: "secret-pass-1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, role.ID)

	var count int64
	require.NoError(t, env.db.Model(&models.ProgramRole{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestProgramRoleService_CreateRole_AccumulatesFieldErrors(t *testing.T) {
	env := setupRoleService(t)

	_, err := env.service.CreateRole(env.actor, env.program.ID, CreateRoleInput{
		Password: "short",
	})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.NotEmpty(t, ve.Fields["role_name"])
	require.NotEmpty(t, ve.Fields["username"])
	require.NotEmpty(t, ve.Fields["email"])
	require.NotEmpty(t, ve.Fields["password"])
}

func TestProgramRoleService_RoleNamesScopedPerProgram(t *testing.T) {
	env := setupRoleService(t)

	other := &models.Program{OrganizationID: env.program.OrganizationID, Name: "Nutrition", Code: "NUT-1"}
	require.NoError(t, env.db.Create(other).Error)

	superAdmin := &models.User{
		Name:         "Root",
		Email:        "root@qsights.com",
		PasswordHash: "hashed",
		Role:         models.RoleSuperAdmin,
	}
	require.NoError(t, env.db.Create(superAdmin).Error)

	_, err := env.service.CreateRole(superAdmin, env.program.ID, CreateRoleInput{
		RoleName: "Site Coordinator",
		Username: "coordinator.one",
		Email:    "one@qsights.com",
		Password: "secret-pass-1",
	})
	require.NoError(t, err)

	// Same role name in a different program is allowed.
	_, err = env.service.CreateRole(superAdmin, other.ID, CreateRoleInput{
		RoleName: "Site Coordinator",
		Username: "coordinator.two",
		Email:    "two@qsights.com",
		Password: "secret-pass-1",
	})
	require.NoError(t, err)
}

func TestProgramRoleService_RestoreRole_RejectsReintroducedDuplicate(t *testing.T) {
	env := setupRoleService(t)

	first, err := env.service.CreateRole(env.actor, env.program.ID, CreateRoleInput{
		RoleName: "Site Coordinator",
		Username: "coordinator.one",
		Email:    "one@qsights.com",
		Password: "secret-pass-1",
	})
	require.NoError(t, err)

	require.NoError(t, env.service.DeleteRole(env.actor, env.program.ID, first.ID))

	_, err = env.service.CreateRole(env.actor, env.program.ID, CreateRoleInput{
		RoleName: "Site Coordinator",
		Username: "coordinator.two",
		Email:    "two@qsights.com",
		Password: "secret-pass-1",
	})
	require.NoError(t, err)

	_, err = env.service.RestoreRole(env.actor, env.program.ID, first.ID)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.NotEmpty(t, ve.Fields["role_name"])
}

func TestProgramRoleService_UpdateRole_KeepsEventsWhenNil(t *testing.T) {
	env := setupRoleService(t)

	activity := &models.Activity{ProgramID: env.program.ID, Name: "Intake Survey"}
	require.NoError(t, env.db.Create(activity).Error)

	role, err := env.service.CreateRole(env.actor, env.program.ID, CreateRoleInput{
		RoleName: "Site Coordinator",
		Username: "site.coordinator",
		Email:    "coordinator@qsights.com",
		Password: "secret-pass-1",
		EventIDs: []string{activity.ID},
	})
	require.NoError(t, err)

	newName := "Lead Coordinator"
	updated, err := env.service.UpdateRole(env.actor, env.program.ID, role.ID, UpdateRoleInput{
		RoleName: &newName,
	})
	require.NoError(t, err)
	require.Equal(t, newName, updated.RoleName)
	require.Len(t, updated.Events, 1)
}

func TestProgramRoleService_GetRole_CrossProgramDenied(t *testing.T) {
	env := setupRoleService(t)

	other := &models.Program{OrganizationID: env.program.OrganizationID, Name: "Nutrition", Code: "NUT-1"}
	require.NoError(t, env.db.Create(other).Error)

	_, err := env.service.ListRoles(env.actor, other.ID)
	require.ErrorIs(t, err, authz.ErrUnauthorized)
}
