package repository

import (
	"time"

	"github.com/partflow/parts-tracking-api/internal/models"
	"gorm.io/gorm"
)

// GormOrganizationRepository is a GORM implementation of OrganizationRepository
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates a new OrganizationRepository
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// CreateWithOwner creates the organization together with the owner's
// membership and Owner role row. The owner-is-always-a-member invariant is
// established here and guarded by the role-mutation paths afterwards.
func (r *GormOrganizationRepository) CreateWithOwner(org *models.Organization, ownerID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		org.OwnerID = ownerID
		if err := tx.Create(org).Error; err != nil {
			return err
		}

		membership := &models.OrgMembership{
			OrganizationID: org.ID,
			UserID:         ownerID,
			JoinedAt:       time.Now(),
		}
		if err := tx.Create(membership).Error; err != nil {
			return err
		}

		role := &models.OrgRole{
			OrganizationID: org.ID,
			UserID:         ownerID,
			RoleID:         models.RoleOrgOwner,
		}
		return tx.Create(role).Error
	})
}

// FindByID finds an organization by ID
func (r *GormOrganizationRepository) FindByID(id uint64) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.First(&org, id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// Update updates an organization
func (r *GormOrganizationRepository) Update(org *models.Organization) error {
	return r.db.Save(org).Error
}

// Delete deletes an organization and all related data in a transaction:
// audit logs, details and roles of its projects, the projects themselves,
// invitations, org roles and memberships, then the organization row.
func (r *GormOrganizationRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		projectIDs := tx.Model(&models.Project{}).Select("id").Where("organization_id = ?", id)

		if err := tx.Where("organization_id = ?", id).Delete(&models.AuditLog{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id IN (?)", projectIDs).Delete(&models.ProjectDetail{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id IN (?)", projectIDs).Delete(&models.ProjectRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("organization_id = ?", id).Delete(&models.Project{}).Error; err != nil {
			return err
		}
		if err := tx.Where("organization_id = ?", id).Delete(&models.Invitation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("organization_id = ?", id).Delete(&models.OrgRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("organization_id = ?", id).Delete(&models.OrgMembership{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Organization{}, id).Error
	})
}

// AddMemberWithRole inserts the membership and role rows atomically so that
// every OrgRole has a matching OrgMembership.
func (r *GormOrganizationRepository) AddMemberWithRole(member *models.OrgMembership, role *models.OrgRole) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(member).Error; err != nil {
			return err
		}
		return tx.Create(role).Error
	})
}

// RemoveMember deletes the role and membership rows atomically
func (r *GormOrganizationRepository) RemoveMember(organizationID, userID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("organization_id = ? AND user_id = ?", organizationID, userID).
			Delete(&models.OrgRole{}).Error; err != nil {
			return err
		}
		return tx.Where("organization_id = ? AND user_id = ?", organizationID, userID).
			Delete(&models.OrgMembership{}).Error
	})
}

// UpdateMemberRole replaces the role id for an existing (user, org) pair
func (r *GormOrganizationRepository) UpdateMemberRole(organizationID, userID uint64, roleID models.RoleID) error {
	return r.db.Model(&models.OrgRole{}).
		Where("organization_id = ? AND user_id = ?", organizationID, userID).
		Update("role_id", roleID).Error
}

// FindMembership finds a bare membership row
func (r *GormOrganizationRepository) FindMembership(organizationID, userID uint64) (*models.OrgMembership, error) {
	var membership models.OrgMembership
	if err := r.db.Where("organization_id = ? AND user_id = ?", organizationID, userID).
		First(&membership).Error; err != nil {
		return nil, err
	}
	return &membership, nil
}

// FindRole finds the role row for a (user, org) pair
func (r *GormOrganizationRepository) FindRole(organizationID, userID uint64) (*models.OrgRole, error) {
	var role models.OrgRole
	if err := r.db.Where("organization_id = ? AND user_id = ?", organizationID, userID).
		First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// ListRolesByUserID lists a user's org roles with organizations preloaded
func (r *GormOrganizationRepository) ListRolesByUserID(userID uint64) ([]models.OrgRole, error) {
	var roles []models.OrgRole
	if err := r.db.Preload("Organization").
		Where("user_id = ?", userID).
		Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// ListMemberRoles lists all role rows of an organization with users preloaded
func (r *GormOrganizationRepository) ListMemberRoles(organizationID uint64) ([]models.OrgRole, error) {
	var roles []models.OrgRole
	if err := r.db.Preload("User").
		Where("organization_id = ?", organizationID).
		Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// CreateInvitation persists a pending invitation
func (r *GormOrganizationRepository) CreateInvitation(invite *models.Invitation) error {
	return r.db.Create(invite).Error
}

// FindLiveInvitation finds an unexpired invitation for (email, org)
func (r *GormOrganizationRepository) FindLiveInvitation(email string, organizationID uint64, now time.Time) (*models.Invitation, error) {
	var invite models.Invitation
	if err := r.db.Where("email = ? AND organization_id = ? AND expires_at > ?", email, organizationID, now).
		First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

// FindLiveInvitationByEmail finds any unexpired invitation for the email
func (r *GormOrganizationRepository) FindLiveInvitationByEmail(email string, now time.Time) (*models.Invitation, error) {
	var invite models.Invitation
	if err := r.db.Where("email = ? AND expires_at > ?", email, now).
		First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}
