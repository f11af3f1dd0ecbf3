package authz

import (
	"testing"

	"github.com/partflow/parts-tracking-api/internal/models"
	"github.com/partflow/parts-tracking-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestCapabilityPredicates(t *testing.T) {
	cases := []struct {
		role               models.RoleID
		orgAdminOrOwner    bool
		projAdminOrOwner   bool
		manageOrgUsers     bool
		manageProjectUsers bool
	}{
		{0, false, false, false, false},
		{models.RoleOrgOwner, true, false, true, false},
		{models.RoleOrgAdmin, true, false, true, false},
		{models.RoleOrgUser, false, false, false, false},
		{models.RoleProjectOwner, false, true, false, true},
		{models.RoleProjectAdmin, false, true, false, true},
		{models.RoleEngineer, false, false, false, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.orgAdminOrOwner, IsOrgAdminOrOwner(tc.role), "IsOrgAdminOrOwner(%d)", tc.role)
		assert.Equal(t, tc.projAdminOrOwner, IsProjectAdminOrOwner(tc.role), "IsProjectAdminOrOwner(%d)", tc.role)
		assert.Equal(t, tc.manageOrgUsers, CanManageOrgUsers(tc.role), "CanManageOrgUsers(%d)", tc.role)
		assert.Equal(t, tc.manageProjectUsers, CanManageProjectUsers(tc.role), "CanManageProjectUsers(%d)", tc.role)
	}
}

func setupResolver(t *testing.T) (*gorm.DB, *Resolver) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.OrgMembership{},
		&models.OrgRole{},
		&models.Project{},
		&models.ProjectRole{},
	)
	require.NoError(t, err)

	orgRepo := repository.NewOrganizationRepository(db)
	projectRepo := repository.NewProjectRepository(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db, NewResolver(orgRepo, projectRepo)
}

func TestResolver_CanViewProject(t *testing.T) {
	db, resolver := setupResolver(t)

	org := &models.Organization{Name: "Acme", OwnerID: 1}
	require.NoError(t, db.Create(org).Error)
	project := &models.Project{Name: "Line A", OrganizationID: org.ID}
	require.NoError(t, db.Create(project).Error)

	// user 1: org admin, no project role
	require.NoError(t, db.Create(&models.OrgRole{OrganizationID: org.ID, UserID: 1, RoleID: models.RoleOrgAdmin}).Error)
	// user 2: org user with a project role
	require.NoError(t, db.Create(&models.OrgRole{OrganizationID: org.ID, UserID: 2, RoleID: models.RoleOrgUser}).Error)
	require.NoError(t, db.Create(&models.ProjectRole{ProjectID: project.ID, UserID: 2, RoleID: models.RoleEngineer}).Error)
	// user 3: org user with no project role
	require.NoError(t, db.Create(&models.OrgRole{OrganizationID: org.ID, UserID: 3, RoleID: models.RoleOrgUser}).Error)

	cases := []struct {
		userID  uint64
		canView bool
	}{
		{1, true},
		{2, true},
		{3, false},
		{4, false}, // complete outsider
	}
	for _, tc := range cases {
		canView, err := resolver.CanViewProject(tc.userID, project)
		require.NoError(t, err)
		assert.Equal(t, tc.canView, canView, "user %d", tc.userID)
	}
}

func TestResolver_CanDeleteProject(t *testing.T) {
	db, resolver := setupResolver(t)

	org := &models.Organization{Name: "Acme", OwnerID: 1}
	require.NoError(t, db.Create(org).Error)
	project := &models.Project{Name: "Line A", OrganizationID: org.ID}
	require.NoError(t, db.Create(project).Error)

	require.NoError(t, db.Create(&models.OrgRole{OrganizationID: org.ID, UserID: 1, RoleID: models.RoleOrgOwner}).Error)
	require.NoError(t, db.Create(&models.OrgRole{OrganizationID: org.ID, UserID: 2, RoleID: models.RoleOrgUser}).Error)
	require.NoError(t, db.Create(&models.ProjectRole{ProjectID: project.ID, UserID: 2, RoleID: models.RoleProjectOwner}).Error)
	require.NoError(t, db.Create(&models.OrgRole{OrganizationID: org.ID, UserID: 3, RoleID: models.RoleOrgUser}).Error)
	require.NoError(t, db.Create(&models.ProjectRole{ProjectID: project.ID, UserID: 3, RoleID: models.RoleProjectAdmin}).Error)

	cases := []struct {
		userID    uint64
		canDelete bool
	}{
		{1, true},  // org owner override
		{2, true},  // project owner
		{3, false}, // project admin may manage but not delete
	}
	for _, tc := range cases {
		canDelete, err := resolver.CanDeleteProject(tc.userID, project)
		require.NoError(t, err)
		assert.Equal(t, tc.canDelete, canDelete, "user %d", tc.userID)
	}
}

func TestResolver_IsOrgMember(t *testing.T) {
	db, resolver := setupResolver(t)

	org := &models.Organization{Name: "Acme", OwnerID: 1}
	require.NoError(t, db.Create(org).Error)
	require.NoError(t, db.Create(&models.OrgMembership{OrganizationID: org.ID, UserID: 1}).Error)

	isMember, err := resolver.IsOrgMember(1, org.ID)
	require.NoError(t, err)
	assert.True(t, isMember)

	isMember, err = resolver.IsOrgMember(2, org.ID)
	require.NoError(t, err)
	assert.False(t, isMember)
}
