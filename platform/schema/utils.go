package schema

import (
	"errors"
	"log/slog"

	"gorm.io/gorm"
)

var (
	ErrAdminNotFound        = errors.New("admin not found")
	ErrCollaboratorNotFound = errors.New("collaborator not found")
	ErrCompanyNotFound      = errors.New("company not found")
	ErrRoleNotFound         = errors.New("role not found")
	ErrDepartmentNotFound   = errors.New("department not found")
	ErrTrackNotFound        = errors.New("track not found")
	ErrTrackTypeNotFound    = errors.New("track type not found")
	ErrDeadlineNotFound     = errors.New("deadline not found")
	ErrPdiNotFound          = errors.New("development plan not found")
	ErrDbAccessFailed       = errors.New("db access failed")
)

func GetAdmin(adminId uint, db *gorm.DB) (Admin, error) {
	var admin Admin

	result := db.Preload("Company").First(&admin, "id = ?", adminId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return admin, ErrAdminNotFound
		}
		slog.Error("sql error in get admin", "admin_id", adminId, "error", result.Error)
		return admin, ErrDbAccessFailed
	}

	return admin, nil
}

func GetCollaborator(collaboratorId uint, db *gorm.DB) (Collaborator, error) {
	var collaborator Collaborator

	result := db.Preload("Company").Preload("Role").Preload("Department").
		First(&collaborator, "id = ?", collaboratorId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return collaborator, ErrCollaboratorNotFound
		}
		slog.Error("sql error in get collaborator", "collaborator_id", collaboratorId, "error", result.Error)
		return collaborator, ErrDbAccessFailed
	}

	return collaborator, nil
}

func GetCompany(companyId uint, db *gorm.DB) (Company, error) {
	var company Company

	result := db.First(&company, "id = ?", companyId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return company, ErrCompanyNotFound
		}
		slog.Error("sql error in get company", "company_id", companyId, "error", result.Error)
		return company, ErrDbAccessFailed
	}

	return company, nil
}

func GetRole(roleId uint, db *gorm.DB) (Role, error) {
	var role Role

	result := db.First(&role, "id = ?", roleId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return role, ErrRoleNotFound
		}
		slog.Error("sql error in get role", "role_id", roleId, "error", result.Error)
		return role, ErrDbAccessFailed
	}

	return role, nil
}

func GetDepartment(departmentId uint, db *gorm.DB) (Department, error) {
	var department Department

	result := db.First(&department, "id = ?", departmentId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return department, ErrDepartmentNotFound
		}
		slog.Error("sql error in get department", "department_id", departmentId, "error", result.Error)
		return department, ErrDbAccessFailed
	}

	return department, nil
}

func GetTrack(trackId uint, db *gorm.DB, loadRefs bool) (Track, error) {
	var track Track

	query := db
	if loadRefs {
		query = query.Preload("TrackType").Preload("Deadline")
	}
	result := query.First(&track, "id = ?", trackId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return track, ErrTrackNotFound
		}
		slog.Error("sql error in get track", "track_id", trackId, "error", result.Error)
		return track, ErrDbAccessFailed
	}

	return track, nil
}

func GetDeadline(deadlineId uint, db *gorm.DB) (Deadline, error) {
	var deadline Deadline

	result := db.First(&deadline, "id = ?", deadlineId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return deadline, ErrDeadlineNotFound
		}
		slog.Error("sql error in get deadline", "deadline_id", deadlineId, "error", result.Error)
		return deadline, ErrDbAccessFailed
	}

	return deadline, nil
}

func GetPdi(pdiId uint, db *gorm.DB) (Pdi, error) {
	var pdi Pdi

	result := db.First(&pdi, "id = ?", pdiId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return pdi, ErrPdiNotFound
		}
		slog.Error("sql error in get pdi", "pdi_id", pdiId, "error", result.Error)
		return pdi, ErrDbAccessFailed
	}

	return pdi, nil
}
