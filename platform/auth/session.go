package auth

import (
	"fmt"

	"mentorhub/platform/schema"

	"gorm.io/gorm"
)

// SessionUser is the uniform principal view returned by login and check.
// Admins and collaborators project into the same shape so downstream
// consumers never branch on principal kind.
type SessionUser struct {
	ID         uint   `json:"id"`
	NationalID string `json:"national_id,omitempty"`
	Name       string `json:"name"`
	UserKind   string `json:"user_kind"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Photo      string `json:"photo"`

	RoleID   *uint  `json:"role_id,omitempty"`
	RoleName string `json:"role_name"`

	DepartmentID   *uint  `json:"department_id,omitempty"`
	DepartmentName string `json:"department_name"`

	Status int `json:"status"`

	CompanyID   uint   `json:"company_id"`
	CompanyName string `json:"company_name"`
}

const (
	adminUserKind = "Admin"
	adminRoleName = "Administrator"
)

// CurrentUser re-fetches the principal row for the identity and assembles the
// session view. Admin principals carry no role or department rows, so those
// fields are filled with fixed defaults.
func CurrentUser(db *gorm.DB, identity Identity) (SessionUser, error) {
	switch identity.Kind {
	case KindAdmin:
		admin, err := schema.GetAdmin(identity.ID, db)
		if err != nil {
			return SessionUser{}, err
		}
		return AdminSessionUser(admin), nil
	case KindCollaborator:
		collaborator, err := schema.GetCollaborator(identity.ID, db)
		if err != nil {
			return SessionUser{}, err
		}
		return CollaboratorSessionUser(collaborator), nil
	}
	return SessionUser{}, fmt.Errorf("unknown principal kind %d", identity.Kind)
}

// AdminSessionUser projects an admin row into the uniform session view.
func AdminSessionUser(admin schema.Admin) SessionUser {
	user := SessionUser{
		ID:             admin.ID,
		Name:           admin.Name,
		UserKind:       adminUserKind,
		Email:          admin.Email,
		Phone:          admin.Phone,
		Photo:          admin.Photo,
		RoleName:       adminRoleName,
		DepartmentName: adminRoleName,
		Status:         1,
		CompanyID:      admin.CompanyID,
	}
	if admin.Company != nil {
		user.CompanyName = admin.Company.LegalName
	}
	return user
}

// CollaboratorSessionUser projects a collaborator row into the uniform
// session view.
func CollaboratorSessionUser(collaborator schema.Collaborator) SessionUser {
	user := SessionUser{
		ID:           collaborator.ID,
		NationalID:   collaborator.NationalID,
		Name:         collaborator.Name,
		UserKind:     collaborator.UserKind,
		Email:        collaborator.Email,
		Phone:        collaborator.Phone,
		Photo:        collaborator.Photo,
		RoleID:       &collaborator.RoleID,
		DepartmentID: &collaborator.DepartmentID,
		Status:       collaborator.Status,
		CompanyID:    collaborator.CompanyID,
	}
	if collaborator.Role != nil {
		user.RoleName = collaborator.Role.Name
	}
	if collaborator.Department != nil {
		user.DepartmentName = collaborator.Department.Name
	}
	if collaborator.Company != nil {
		user.CompanyName = collaborator.Company.LegalName
	}
	return user
}
