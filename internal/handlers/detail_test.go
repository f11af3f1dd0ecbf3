package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/partflow/parts-tracking-api/internal/authz"
	"github.com/partflow/parts-tracking-api/internal/constants"
	"github.com/partflow/parts-tracking-api/internal/models"
	"github.com/partflow/parts-tracking-api/internal/repository"
	"github.com/partflow/parts-tracking-api/internal/services"
	"github.com/partflow/parts-tracking-api/internal/utils"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type detailTestEnv struct {
	db      *gorm.DB
	handler *DetailHandler
	owner   *models.User
	org     *models.Organization
	project *models.Project
}

// setupDetailTestEnv builds one organization with an owner and a project the
// owner holds the ProjectOwner role on.
func setupDetailTestEnv(t *testing.T) detailTestEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.OrgMembership{},
		&models.OrgRole{},
		&models.Project{},
		&models.ProjectRole{},
		&models.ProjectDetail{},
		&models.AuditLog{},
	)
	require.NoError(t, err)

	orgRepo := repository.NewOrganizationRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	detailRepo := repository.NewDetailRepository(db)
	resolver := authz.NewResolver(orgRepo, projectRepo)
	detailService := services.NewDetailService(detailRepo, projectRepo, resolver)
	handler := NewDetailHandler(detailService)

	owner := &models.User{
		Email:        "owner@example.com",
		PasswordHash: "hashedpassword",
		FirstName:    "Test",
		LastName:     "Owner",
		IsActive:     true,
	}
	require.NoError(t, db.Create(owner).Error)

	org := &models.Organization{Name: "Acme", OwnerID: owner.ID}
	require.NoError(t, db.Create(org).Error)
	require.NoError(t, db.Create(&models.OrgMembership{
		OrganizationID: org.ID, UserID: owner.ID, JoinedAt: time.Now(),
	}).Error)
	require.NoError(t, db.Create(&models.OrgRole{
		OrganizationID: org.ID, UserID: owner.ID, RoleID: models.RoleOrgOwner,
	}).Error)

	project := &models.Project{Name: "Line A", OrganizationID: org.ID, Status: models.ProjectStatusActive}
	require.NoError(t, db.Create(project).Error)
	require.NoError(t, db.Create(&models.ProjectRole{
		ProjectID: project.ID, UserID: owner.ID, RoleID: models.RoleProjectOwner,
	}).Error)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return detailTestEnv{
		db:      db,
		handler: handler,
		owner:   owner,
		org:     org,
		project: project,
	}
}

func (env detailTestEnv) createDetail(t *testing.T, name string, status models.DetailStatus) *models.ProjectDetail {
	t.Helper()

	detail := &models.ProjectDetail{
		ProjectID: env.project.ID,
		Name:      name,
		Status:    status,
		Location:  "Warehouse 1",
	}
	require.NoError(t, env.db.Create(detail).Error)
	return detail
}

func (env detailTestEnv) auditCount(t *testing.T, detailID uint64) int64 {
	t.Helper()

	var count int64
	require.NoError(t, env.db.Model(&models.AuditLog{}).Where("detail_id = ?", detailID).Count(&count).Error)
	return count
}

func TestDetailHandler_Create_DefaultsToReady(t *testing.T) {
	env := setupDetailTestEnv(t)

	c, w := authedContext("POST", "/api/details",
		map[string]any{"project_id": env.project.ID, "name": "Gearbox"}, env.owner.ID, "")
	env.handler.CreateDetail(c)

	require.Equal(t, http.StatusCreated, w.Code)

	var detail models.ProjectDetail
	require.NoError(t, env.db.Where("name = ?", "Gearbox").First(&detail).Error)
	require.Equal(t, models.DetailStatusReady, detail.Status)
}

func TestDetailHandler_Create_InvalidStatus(t *testing.T) {
	env := setupDetailTestEnv(t)

	c, w := authedContext("POST", "/api/details",
		map[string]any{"project_id": env.project.ID, "name": "Gearbox", "status": "lost"}, env.owner.ID, "")
	env.handler.CreateDetail(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDetailHandler_Update_StatusChangeAppendsOneAuditEntry(t *testing.T) {
	env := setupDetailTestEnv(t)
	detail := env.createDetail(t, "Gearbox", models.DetailStatusReady)

	c, w := authedContext("PATCH", "/api/details/1",
		map[string]any{"status": models.DetailStatusInTransit}, env.owner.ID, "1")
	env.handler.UpdateDetail(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 1, env.auditCount(t, detail.ID))

	var entry models.AuditLog
	require.NoError(t, env.db.Where("detail_id = ?", detail.ID).First(&entry).Error)
	require.Equal(t, models.DetailStatusReady, entry.OldStatus)
	require.Equal(t, models.DetailStatusInTransit, entry.NewStatus)
	require.Equal(t, env.org.ID, entry.OrganizationID)
	require.Equal(t, env.project.ID, entry.ProjectID)
}

func TestDetailHandler_Update_SameStatusAppendsNothing(t *testing.T) {
	env := setupDetailTestEnv(t)
	detail := env.createDetail(t, "Gearbox", models.DetailStatusReady)

	c, w := authedContext("PATCH", "/api/details/1",
		map[string]any{"status": models.DetailStatusReady}, env.owner.ID, "1")
	env.handler.UpdateDetail(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Zero(t, env.auditCount(t, detail.ID))
}

func TestDetailHandler_Update_NameOnlyAppendsNothing(t *testing.T) {
	env := setupDetailTestEnv(t)
	detail := env.createDetail(t, "Gearbox", models.DetailStatusReady)

	c, w := authedContext("PATCH", "/api/details/1",
		map[string]any{"name": "Gearbox v2", "location": "Warehouse 2"}, env.owner.ID, "1")
	env.handler.UpdateDetail(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Zero(t, env.auditCount(t, detail.ID))

	var reloaded models.ProjectDetail
	require.NoError(t, env.db.First(&reloaded, detail.ID).Error)
	require.Equal(t, "Gearbox v2", reloaded.Name)
	require.Equal(t, "Warehouse 2", reloaded.Location)
}

func TestDetailHandler_Update_EmptyPatch(t *testing.T) {
	env := setupDetailTestEnv(t)
	detail := env.createDetail(t, "Gearbox", models.DetailStatusReady)

	c, w := authedContext("PATCH", "/api/details/1", map[string]any{}, env.owner.ID, "1")
	env.handler.UpdateDetail(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Zero(t, env.auditCount(t, detail.ID))

	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "No changes", response["message"])
}

func TestDetailHandler_Update_NonMemberForbidden(t *testing.T) {
	env := setupDetailTestEnv(t)
	env.createDetail(t, "Gearbox", models.DetailStatusReady)

	outsider := &models.User{
		Email: "outsider@example.com", PasswordHash: "x",
		FirstName: "Out", LastName: "Sider", IsActive: true,
	}
	require.NoError(t, env.db.Create(outsider).Error)

	c, w := authedContext("PATCH", "/api/details/1",
		map[string]any{"status": models.DetailStatusDelayed}, outsider.ID, "1")
	env.handler.UpdateDetail(c)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestDetailHandler_Delete(t *testing.T) {
	env := setupDetailTestEnv(t)
	detail := env.createDetail(t, "Gearbox", models.DetailStatusReady)

	c, w := authedContext("DELETE", "/api/details/1", nil, env.owner.ID, "1")
	env.handler.DeleteDetail(c)

	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	env.db.Model(&models.ProjectDetail{}).Where("id = ?", detail.ID).Count(&count)
	require.Zero(t, count)
}

func TestDetailHandler_List_ByProjectWithStatusFilter(t *testing.T) {
	env := setupDetailTestEnv(t)
	env.createDetail(t, "Gearbox", models.DetailStatusReady)
	env.createDetail(t, "Axle", models.DetailStatusDelayed)
	env.createDetail(t, "Bearing", models.DetailStatusDelayed)

	c, w := authedContext("GET", "/api/details", nil, env.owner.ID, "")
	c.Request.URL.RawQuery = fmt.Sprintf("project_id=%d&status=delayed", env.project.ID)
	env.handler.ListDetails(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Details    []map[string]any         `json:"details"`
		Pagination utils.PaginationResponse `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Details, 2)
	require.EqualValues(t, 2, response.Pagination.Total)
}

func TestDetailHandler_List_ByOrganizationPaginated(t *testing.T) {
	env := setupDetailTestEnv(t)
	for i := 0; i < 25; i++ {
		env.createDetail(t, fmt.Sprintf("Part %02d", i), models.DetailStatusReady)
	}

	c, w := authedContext("GET", "/api/details", nil, env.owner.ID, "")
	c.Request.URL.RawQuery = fmt.Sprintf("organization_id=%d&page=2&limit=10", env.org.ID)
	env.handler.ListDetails(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Details    []map[string]any         `json:"details"`
		Pagination utils.PaginationResponse `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Details, 10)
	require.Equal(t, 2, response.Pagination.Page)
	require.Equal(t, 10, response.Pagination.Limit)
	require.EqualValues(t, 25, response.Pagination.Total)
}

func TestDetailHandler_List_MissingScope(t *testing.T) {
	env := setupDetailTestEnv(t)

	c, w := authedContext("GET", "/api/details", nil, env.owner.ID, "")
	env.handler.ListDetails(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDetailHandler_AuditLogs_CappedAndNewestFirst(t *testing.T) {
	env := setupDetailTestEnv(t)
	detail := env.createDetail(t, "Gearbox", models.DetailStatusReady)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < constants.AuditLogLimit+5; i++ {
		require.NoError(t, env.db.Create(&models.AuditLog{
			OrganizationID: env.org.ID,
			ProjectID:      env.project.ID,
			DetailID:       detail.ID,
			OldStatus:      models.DetailStatusReady,
			NewStatus:      models.DetailStatusInTransit,
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	c, w := authedContext("GET", "/api/logs", nil, env.owner.ID, "")
	c.Request.URL.RawQuery = fmt.Sprintf("project_id=%d", env.project.ID)
	env.handler.GetAuditLogs(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Logs []struct {
			ID        uint64    `json:"id"`
			PartName  string    `json:"part_name"`
			CreatedAt time.Time `json:"created_at"`
		} `json:"logs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Logs, constants.AuditLogLimit)
	require.Equal(t, "Gearbox", response.Logs[0].PartName)
	for i := 1; i < len(response.Logs); i++ {
		require.False(t, response.Logs[i].CreatedAt.After(response.Logs[i-1].CreatedAt))
	}
}

func TestDetailHandler_AuditLogs_RequiresProjectAccess(t *testing.T) {
	env := setupDetailTestEnv(t)

	outsider := &models.User{
		Email: "outsider@example.com", PasswordHash: "x",
		FirstName: "Out", LastName: "Sider", IsActive: true,
	}
	require.NoError(t, env.db.Create(outsider).Error)

	c, w := authedContext("GET", "/api/logs", nil, outsider.ID, "")
	c.Request.URL.RawQuery = fmt.Sprintf("project_id=%d", env.project.ID)
	env.handler.GetAuditLogs(c)

	require.Equal(t, http.StatusForbidden, w.Code)
}
