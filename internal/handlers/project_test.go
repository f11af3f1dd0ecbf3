package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/partflow/parts-tracking-api/internal/authz"
	"github.com/partflow/parts-tracking-api/internal/models"
	"github.com/partflow/parts-tracking-api/internal/repository"
	"github.com/partflow/parts-tracking-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ProjectHandlerTestSuite defines the test suite for ProjectHandler
type ProjectHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *ProjectHandler
}

// SetupTest runs before each test
func (suite *ProjectHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.OrgMembership{},
		&models.OrgRole{},
		&models.Project{},
		&models.ProjectRole{},
		&models.ProjectDetail{},
		&models.AuditLog{},
	)
	suite.Require().NoError(err)

	orgRepo := repository.NewOrganizationRepository(suite.db)
	projectRepo := repository.NewProjectRepository(suite.db)
	resolver := authz.NewResolver(orgRepo, projectRepo)
	projectService := services.NewProjectService(projectRepo, resolver)
	suite.handler = NewProjectHandler(projectService)

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *ProjectHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *ProjectHandlerTestSuite) createTestUser(email string) *models.User {
	user := &models.User{
		Email:        email,
		PasswordHash: "hashedpassword",
		FirstName:    "Test",
		LastName:     "User",
		IsActive:     true,
	}
	suite.db.Create(user)
	return user
}

func (suite *ProjectHandlerTestSuite) createTestOrganization(name string, ownerID uint64) *models.Organization {
	org := &models.Organization{Name: name, OwnerID: ownerID}
	suite.db.Create(org)
	suite.grantOrgRole(org.ID, ownerID, models.RoleOrgOwner)
	return org
}

func (suite *ProjectHandlerTestSuite) grantOrgRole(orgID, userID uint64, roleID models.RoleID) {
	suite.db.Create(&models.OrgMembership{OrganizationID: orgID, UserID: userID, JoinedAt: time.Now()})
	suite.db.Create(&models.OrgRole{OrganizationID: orgID, UserID: userID, RoleID: roleID})
}

func (suite *ProjectHandlerTestSuite) createTestProject(name string, orgID, ownerID uint64) *models.Project {
	project := &models.Project{Name: name, OrganizationID: orgID, Status: models.ProjectStatusActive}
	suite.db.Create(project)
	suite.db.Create(&models.ProjectRole{ProjectID: project.ID, UserID: ownerID, RoleID: models.RoleProjectOwner})
	return project
}

func (suite *ProjectHandlerTestSuite) grantProjectRole(projectID, userID uint64, roleID models.RoleID) {
	suite.db.Create(&models.ProjectRole{ProjectID: projectID, UserID: userID, RoleID: roleID})
}

// TestCreateProject_OrgAdmin tests that an org admin can create a project and
// becomes its Project Owner
func (suite *ProjectHandlerTestSuite) TestCreateProject_OrgAdmin() {
	owner := suite.createTestUser("owner@example.com")
	admin := suite.createTestUser("admin@example.com")
	org := suite.createTestOrganization("Acme", owner.ID)
	suite.grantOrgRole(org.ID, admin.ID, models.RoleOrgAdmin)

	c, w := authedContext("POST", "/api/projects",
		map[string]any{"name": "Line A", "organization_id": org.ID}, admin.ID, "")
	suite.handler.CreateProject(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var role models.ProjectRole
	err := suite.db.Where("user_id = ?", admin.ID).First(&role).Error
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.RoleProjectOwner, role.RoleID)
}

// TestCreateProject_OrgUserForbidden tests that a plain org member cannot
// create projects
func (suite *ProjectHandlerTestSuite) TestCreateProject_OrgUserForbidden() {
	owner := suite.createTestUser("owner@example.com")
	member := suite.createTestUser("member@example.com")
	org := suite.createTestOrganization("Acme", owner.ID)
	suite.grantOrgRole(org.ID, member.ID, models.RoleOrgUser)

	c, w := authedContext("POST", "/api/projects",
		map[string]any{"name": "Line A", "organization_id": org.ID}, member.ID, "")
	suite.handler.CreateProject(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestGetProject_OrgAdminOverride tests that an org admin sees projects they
// hold no project role on
func (suite *ProjectHandlerTestSuite) TestGetProject_OrgAdminOverride() {
	owner := suite.createTestUser("owner@example.com")
	admin := suite.createTestUser("admin@example.com")
	org := suite.createTestOrganization("Acme", owner.ID)
	suite.grantOrgRole(org.ID, admin.ID, models.RoleOrgAdmin)
	project := suite.createTestProject("Line A", org.ID, owner.ID)

	c, w := authedContext("GET", "/api/projects/1", nil, admin.ID, "1")
	suite.handler.GetProject(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]any
	assert.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &response))
	assert.EqualValues(suite.T(), models.RoleOrgAdmin, response["org_role"])
	assert.NotContains(suite.T(), response, "project_role")

	projectBody := response["project"].(map[string]any)
	assert.Equal(suite.T(), project.Name, projectBody["name"])
}

// TestGetProject_NoProjectRoleForbidden tests that a plain org member without
// a project role cannot see the project
func (suite *ProjectHandlerTestSuite) TestGetProject_NoProjectRoleForbidden() {
	owner := suite.createTestUser("owner@example.com")
	member := suite.createTestUser("member@example.com")
	org := suite.createTestOrganization("Acme", owner.ID)
	suite.grantOrgRole(org.ID, member.ID, models.RoleOrgUser)
	suite.createTestProject("Line A", org.ID, owner.ID)

	c, w := authedContext("GET", "/api/projects/1", nil, member.ID, "1")
	suite.handler.GetProject(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestGetProject_Engineer tests that an engineer with a project role can read
// the project
func (suite *ProjectHandlerTestSuite) TestGetProject_Engineer() {
	owner := suite.createTestUser("owner@example.com")
	engineer := suite.createTestUser("engineer@example.com")
	org := suite.createTestOrganization("Acme", owner.ID)
	suite.grantOrgRole(org.ID, engineer.ID, models.RoleOrgUser)
	project := suite.createTestProject("Line A", org.ID, owner.ID)
	suite.grantProjectRole(project.ID, engineer.ID, models.RoleEngineer)

	c, w := authedContext("GET", "/api/projects/1", nil, engineer.ID, "1")
	suite.handler.GetProject(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

// TestListProjects_NotMemberForbidden tests that outsiders cannot list an
// organization's projects
func (suite *ProjectHandlerTestSuite) TestListProjects_NotMemberForbidden() {
	owner := suite.createTestUser("owner@example.com")
	outsider := suite.createTestUser("outsider@example.com")
	org := suite.createTestOrganization("Acme", owner.ID)
	suite.createTestProject("Line A", org.ID, owner.ID)

	c, w := authedContext("GET", "/api/projects", nil, outsider.ID, "")
	c.Request.URL.RawQuery = "organization_id=1"
	suite.handler.ListProjects(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestAddMember_DefaultsToEngineer tests the default project role
func (suite *ProjectHandlerTestSuite) TestAddMember_DefaultsToEngineer() {
	owner := suite.createTestUser("owner@example.com")
	member := suite.createTestUser("member@example.com")
	org := suite.createTestOrganization("Acme", owner.ID)
	suite.grantOrgRole(org.ID, member.ID, models.RoleOrgUser)
	project := suite.createTestProject("Line A", org.ID, owner.ID)

	c, w := authedContext("POST", "/api/projects/1/users",
		map[string]any{"user_id": member.ID}, owner.ID, "1")
	suite.handler.AddMember(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var role models.ProjectRole
	err := suite.db.Where("project_id = ? AND user_id = ?", project.ID, member.ID).First(&role).Error
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.RoleEngineer, role.RoleID)
}

// TestAddMember_NotOrgMemberRejected tests that only existing org members can
// be added to projects
func (suite *ProjectHandlerTestSuite) TestAddMember_NotOrgMemberRejected() {
	owner := suite.createTestUser("owner@example.com")
	outsider := suite.createTestUser("outsider@example.com")
	org := suite.createTestOrganization("Acme", owner.ID)
	suite.createTestProject("Line A", org.ID, owner.ID)

	c, w := authedContext("POST", "/api/projects/1/users",
		map[string]any{"user_id": outsider.ID}, owner.ID, "1")
	suite.handler.AddMember(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestAddMember_OrgAdminFloor tests that org admins can only be added with
// the Project Admin role
func (suite *ProjectHandlerTestSuite) TestAddMember_OrgAdminFloor() {
	owner := suite.createTestUser("owner@example.com")
	admin := suite.createTestUser("admin@example.com")
	org := suite.createTestOrganization("Acme", owner.ID)
	suite.grantOrgRole(org.ID, admin.ID, models.RoleOrgAdmin)
	suite.createTestProject("Line A", org.ID, owner.ID)

	c, w := authedContext("POST", "/api/projects/1/users",
		map[string]any{"user_id": admin.ID, "role_id": models.RoleEngineer}, owner.ID, "1")
	suite.handler.AddMember(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	c, w = authedContext("POST", "/api/projects/1/users",
		map[string]any{"user_id": admin.ID, "role_id": models.RoleProjectAdmin}, owner.ID, "1")
	suite.handler.AddMember(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

// TestUpdateMemberRole_OrgAdminDemotionRejected tests that org admins keep
// the Project Admin role
func (suite *ProjectHandlerTestSuite) TestUpdateMemberRole_OrgAdminDemotionRejected() {
	owner := suite.createTestUser("owner@example.com")
	admin := suite.createTestUser("admin@example.com")
	org := suite.createTestOrganization("Acme", owner.ID)
	suite.grantOrgRole(org.ID, admin.ID, models.RoleOrgAdmin)
	project := suite.createTestProject("Line A", org.ID, owner.ID)
	suite.grantProjectRole(project.ID, admin.ID, models.RoleProjectAdmin)

	c, w := authedContext("PUT", "/api/projects/1/users",
		map[string]any{"user_id": admin.ID, "role_id": models.RoleEngineer}, owner.ID, "1")
	suite.handler.UpdateMemberRole(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestRemoveMember_OrgAdminRejected tests that org admins cannot be removed
// from projects
func (suite *ProjectHandlerTestSuite) TestRemoveMember_OrgAdminRejected() {
	owner := suite.createTestUser("owner@example.com")
	admin := suite.createTestUser("admin@example.com")
	org := suite.createTestOrganization("Acme", owner.ID)
	suite.grantOrgRole(org.ID, admin.ID, models.RoleOrgAdmin)
	project := suite.createTestProject("Line A", org.ID, owner.ID)
	suite.grantProjectRole(project.ID, admin.ID, models.RoleProjectAdmin)

	c, w := authedContext("DELETE", "/api/projects/1/users",
		map[string]any{"user_id": admin.ID}, owner.ID, "1")
	suite.handler.RemoveMember(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestRemoveMember_Engineer tests removing a regular project member
func (suite *ProjectHandlerTestSuite) TestRemoveMember_Engineer() {
	owner := suite.createTestUser("owner@example.com")
	engineer := suite.createTestUser("engineer@example.com")
	org := suite.createTestOrganization("Acme", owner.ID)
	suite.grantOrgRole(org.ID, engineer.ID, models.RoleOrgUser)
	project := suite.createTestProject("Line A", org.ID, owner.ID)
	suite.grantProjectRole(project.ID, engineer.ID, models.RoleEngineer)

	c, w := authedContext("DELETE", "/api/projects/1/users",
		map[string]any{"user_id": engineer.ID}, owner.ID, "1")
	suite.handler.RemoveMember(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var count int64
	suite.db.Model(&models.ProjectRole{}).
		Where("project_id = ? AND user_id = ?", project.ID, engineer.ID).
		Count(&count)
	assert.Zero(suite.T(), count)
}

// TestUpdateProject_OrgAdminOverride tests that an org admin can rename a
// project without holding a project role
func (suite *ProjectHandlerTestSuite) TestUpdateProject_OrgAdminOverride() {
	owner := suite.createTestUser("owner@example.com")
	admin := suite.createTestUser("admin@example.com")
	org := suite.createTestOrganization("Acme", owner.ID)
	suite.grantOrgRole(org.ID, admin.ID, models.RoleOrgAdmin)
	project := suite.createTestProject("Line A", org.ID, owner.ID)

	c, w := authedContext("PUT", "/api/projects/1",
		map[string]string{"name": "Line B"}, admin.ID, "1")
	suite.handler.UpdateProject(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var reloaded models.Project
	suite.db.First(&reloaded, project.ID)
	assert.Equal(suite.T(), "Line B", reloaded.Name)
}

// TestDeleteProject_EngineerForbidden tests that engineers cannot delete
// projects
func (suite *ProjectHandlerTestSuite) TestDeleteProject_EngineerForbidden() {
	owner := suite.createTestUser("owner@example.com")
	engineer := suite.createTestUser("engineer@example.com")
	org := suite.createTestOrganization("Acme", owner.ID)
	suite.grantOrgRole(org.ID, engineer.ID, models.RoleOrgUser)
	project := suite.createTestProject("Line A", org.ID, owner.ID)
	suite.grantProjectRole(project.ID, engineer.ID, models.RoleEngineer)

	c, w := authedContext("DELETE", "/api/projects/1", nil, engineer.ID, "1")
	suite.handler.DeleteProject(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestDeleteProject_Cascades tests that details, roles and logs go with the
// project
func (suite *ProjectHandlerTestSuite) TestDeleteProject_Cascades() {
	owner := suite.createTestUser("owner@example.com")
	org := suite.createTestOrganization("Acme", owner.ID)
	project := suite.createTestProject("Line A", org.ID, owner.ID)

	detail := &models.ProjectDetail{ProjectID: project.ID, Name: "Gearbox", Status: models.DetailStatusReady}
	suite.db.Create(detail)
	suite.db.Create(&models.AuditLog{
		OrganizationID: org.ID, ProjectID: project.ID, DetailID: detail.ID,
		OldStatus: models.DetailStatusReady, NewStatus: models.DetailStatusDelayed,
	})

	c, w := authedContext("DELETE", "/api/projects/1", nil, owner.ID, "1")
	suite.handler.DeleteProject(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	for _, model := range []any{&models.Project{}, &models.ProjectRole{}, &models.ProjectDetail{}, &models.AuditLog{}} {
		var count int64
		suite.db.Model(model).Count(&count)
		assert.Zero(suite.T(), count)
	}
}

// TestProjectHandlerTestSuite runs the test suite
func TestProjectHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ProjectHandlerTestSuite))
}
