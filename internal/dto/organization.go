package dto

import (
	"github.com/partflow/parts-tracking-api/internal/models"
)

// OrganizationDTO represents an organization in API responses
type OrganizationDTO struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	OwnerID uint64 `json:"owner_id"`
}

// OrganizationWithRoleDTO represents an organization with the caller's role
type OrganizationWithRoleDTO struct {
	OrganizationDTO
	RoleID   models.RoleID `json:"role_id"`
	RoleName string        `json:"role_name"`
}

// OrganizationMemberDTO represents a member with their org role
type OrganizationMemberDTO struct {
	User     UserDTO       `json:"user"`
	RoleID   models.RoleID `json:"role_id"`
	RoleName string        `json:"role_name"`
}

// OrganizationDetailDTO represents detailed organization information
type OrganizationDetailDTO struct {
	OrganizationDTO
	Members  []OrganizationMemberDTO `json:"members"`
	YourRole models.RoleID           `json:"your_role"`
}

// ToOrganizationDTO converts an Organization model to OrganizationDTO
func ToOrganizationDTO(org models.Organization) OrganizationDTO {
	return OrganizationDTO{
		ID:      org.ID,
		Name:    org.Name,
		OwnerID: org.OwnerID,
	}
}

// ToOrganizationWithRoleDTO converts an org role row to DTO with the
// organization preloaded
func ToOrganizationWithRoleDTO(role models.OrgRole) OrganizationWithRoleDTO {
	return OrganizationWithRoleDTO{
		OrganizationDTO: ToOrganizationDTO(role.Organization),
		RoleID:          role.RoleID,
		RoleName:        role.RoleID.Name(),
	}
}

// ToOrganizationMemberDTO converts a role row with its user to DTO
func ToOrganizationMemberDTO(role models.OrgRole) OrganizationMemberDTO {
	return OrganizationMemberDTO{
		User:     ToUserDTO(role.User),
		RoleID:   role.RoleID,
		RoleName: role.RoleID.Name(),
	}
}

// ToOrganizationDetailDTO converts an organization with members to a detailed DTO
func ToOrganizationDetailDTO(org models.Organization, members []models.OrgRole, yourRole models.RoleID) OrganizationDetailDTO {
	memberDTOs := make([]OrganizationMemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = ToOrganizationMemberDTO(member)
	}

	return OrganizationDetailDTO{
		OrganizationDTO: ToOrganizationDTO(org),
		Members:         memberDTOs,
		YourRole:        yourRole,
	}
}
