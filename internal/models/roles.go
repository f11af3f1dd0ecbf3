package models

// RoleID identifies a permission level. Organization and project roles share
// one id space.
type RoleID int

const (
	RoleOrgOwner RoleID = 1
	RoleOrgAdmin RoleID = 2
	RoleOrgUser  RoleID = 3

	RoleProjectOwner RoleID = 4
	RoleProjectAdmin RoleID = 5
	RoleEngineer     RoleID = 6
)

var roleNames = map[RoleID]string{
	RoleOrgOwner:     "Owner",
	RoleOrgAdmin:     "Admin",
	RoleOrgUser:      "User",
	RoleProjectOwner: "Project Owner",
	RoleProjectAdmin: "Project Admin",
	RoleEngineer:     "Engineer",
}

// Name returns the display name for the role id.
func (r RoleID) Name() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "Unknown"
}

// IsOrgRole reports whether the id is valid at organization scope.
func (r RoleID) IsOrgRole() bool {
	return r == RoleOrgOwner || r == RoleOrgAdmin || r == RoleOrgUser
}

// IsProjectRole reports whether the id is valid at project scope.
func (r RoleID) IsProjectRole() bool {
	return r == RoleProjectOwner || r == RoleProjectAdmin || r == RoleEngineer
}
