package services

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"mentorhub/platform/auth"
	"mentorhub/platform/schema"
	"mentorhub/platform/storage"
	"mentorhub/utils"

	"github.com/go-chi/chi/v5"
	"github.com/klassmann/cpfcnpj"
	"github.com/samber/lo"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type CollaboratorService struct {
	db       *gorm.DB
	userAuth *auth.IdentityProvider
	storage  storage.Storage
}

func (s *CollaboratorService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.userAuth.Middleware()...)

	r.Get("/", s.List)
	r.Get("/mentors", s.ListMentors)
	r.Get("/mentees", s.ListMentees)
	r.Get("/{collaborator_id}", s.GetCollaborator)
	r.Get("/mentor/{mentor_id}/mentees", s.MenteesOfMentor)

	r.Put("/password", s.UpdatePassword)
	r.Post("/photo", s.UploadPhoto)

	r.With(auth.CollaboratorOnly()).Put("/", s.UpdateProfile)

	r.Group(func(r chi.Router) {
		r.Use(auth.AdminOnly())

		r.Post("/", s.Create)
		r.Put("/admin", s.AdminUpdate)
	})

	return r
}

// roleKindCheck enforces the coupling between mentee-only roles and the
// mentee kind, in both directions.
func roleKindCheck(role schema.Role, userKind string) error {
	if role.MenteeOnly && userKind != schema.KindMentee {
		return CodedError(
			errors.New("role "+role.Name+" may only be assigned to mentees"),
			http.StatusBadRequest, KindRoleKindMismatch)
	}
	if userKind == schema.KindMentee && !role.MenteeOnly {
		return CodedError(
			errors.New("mentees must hold a mentee role"),
			http.StatusBadRequest, KindRoleKindMismatch)
	}
	return nil
}

type createCollaboratorRequest struct {
	NationalID   string    `json:"national_id" validate:"required"`
	Name         string    `json:"name" validate:"required"`
	BirthDate    time.Time `json:"birth_date"`
	Email        string    `json:"email" validate:"required,email"`
	Password     string    `json:"password" validate:"required,min=8"`
	Phone        string    `json:"phone"`
	UserKind     string    `json:"user_kind" validate:"required"`
	DepartmentID uint      `json:"department_id" validate:"required"`
	CompanyID    uint      `json:"company_id" validate:"required"`
	RoleID       uint      `json:"role_id" validate:"required"`
}

func (s *CollaboratorService) Create(w http.ResponseWriter, r *http.Request) {
	var params createCollaboratorRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if err := checkRequest(params); err != nil {
		writeError(w, err)
		return
	}

	if !schema.ValidUserKind(params.UserKind) {
		writeError(w, validationError(errors.New("invalid user kind "+params.UserKind)))
		return
	}

	nationalId := cpfcnpj.NewCPF(params.NationalID)
	if !nationalId.IsValid() {
		writeError(w, validationError(errors.New("invalid national id")))
		return
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(params.Password), 10)
	if err != nil {
		writeError(w, CodedError(errors.New("error encrypting password"), http.StatusInternalServerError, KindInternal))
		return
	}

	collaborator := schema.Collaborator{
		NationalID:   string(nationalId),
		Name:         params.Name,
		BirthDate:    params.BirthDate,
		Email:        params.Email,
		Password:     hashedPwd,
		Phone:        params.Phone,
		UserKind:     params.UserKind,
		Status:       1,
		DepartmentID: params.DepartmentID,
		CompanyID:    params.CompanyID,
		RoleID:       params.RoleID,
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if err := checkCompanyExists(txn, params.CompanyID); err != nil {
			return err
		}
		if err := checkDepartmentExists(txn, params.DepartmentID); err != nil {
			return err
		}

		role, err := schema.GetRole(params.RoleID, txn)
		if err != nil {
			if errors.Is(err, schema.ErrRoleNotFound) {
				return CodedError(err, http.StatusBadRequest, KindInvalidReference)
			}
			return dbError()
		}
		if err := roleKindCheck(role, params.UserKind); err != nil {
			return err
		}

		var existing schema.Collaborator
		result := txn.Limit(1).Find(&existing, "national_id = ? or email = ?", string(nationalId), params.Email)
		if result.Error != nil {
			slog.Error("sql error checking for existing collaborator", "error", result.Error)
			return dbError()
		}
		if result.RowsAffected != 0 {
			if existing.NationalID == string(nationalId) {
				return CodedError(errors.New("national id is already registered"), http.StatusConflict, KindDuplicateValue)
			}
			return CodedError(errors.New("email is already in use"), http.StatusConflict, KindDuplicateValue)
		}

		if result := txn.Create(&collaborator); result.Error != nil {
			return translateStoreError(result.Error)
		}
		return nil
	})

	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("collaborator created", "collaborator_id", collaborator.ID, "user_kind", collaborator.UserKind)

	created, err := schema.GetCollaborator(collaborator.ID, s.db)
	if err != nil {
		writeError(w, dbError())
		return
	}

	utils.WriteJsonCreated(w, auth.CollaboratorSessionUser(created))
}

func (s *CollaboratorService) listByKind(w http.ResponseWriter, r *http.Request, kinds ...string) {
	companyId, err := utils.QueryParamUint(r, "company_id")
	if err != nil {
		writeError(w, validationError(err))
		return
	}

	query := s.db.Preload("Company").Preload("Role").Preload("Department").
		Where("company_id = ?", companyId)
	if len(kinds) > 0 {
		query = query.Where("user_kind IN ?", kinds)
	}

	var collaborators []schema.Collaborator
	result := query.Find(&collaborators)
	if result.Error != nil {
		slog.Error("sql error listing collaborators", "company_id", companyId, "error", result.Error)
		writeError(w, dbError())
		return
	}

	utils.WriteJsonResponse(w, lo.Map(collaborators, func(c schema.Collaborator, _ int) auth.SessionUser {
		return auth.CollaboratorSessionUser(c)
	}))
}

func (s *CollaboratorService) List(w http.ResponseWriter, r *http.Request) {
	s.listByKind(w, r)
}

func (s *CollaboratorService) ListMentors(w http.ResponseWriter, r *http.Request) {
	s.listByKind(w, r, schema.KindMentor)
}

func (s *CollaboratorService) ListMentees(w http.ResponseWriter, r *http.Request) {
	s.listByKind(w, r, schema.KindMentee)
}

func (s *CollaboratorService) GetCollaborator(w http.ResponseWriter, r *http.Request) {
	collaboratorId, err := utils.URLParamUint(r, "collaborator_id")
	if err != nil {
		writeError(w, validationError(err))
		return
	}

	collaborator, err := schema.GetCollaborator(collaboratorId, s.db)
	if err != nil {
		if errors.Is(err, schema.ErrCollaboratorNotFound) {
			writeError(w, CodedError(err, http.StatusNotFound, KindInvalidReference))
			return
		}
		writeError(w, dbError())
		return
	}

	utils.WriteJsonResponse(w, auth.CollaboratorSessionUser(collaborator))
}

// MenteesOfMentor lists the mentees currently paired with a mentor through
// any of the mentor's plans.
func (s *CollaboratorService) MenteesOfMentor(w http.ResponseWriter, r *http.Request) {
	mentorId, err := utils.URLParamUint(r, "mentor_id")
	if err != nil {
		writeError(w, validationError(err))
		return
	}

	var mentees []schema.Collaborator
	result := s.db.Preload("Company").Preload("Role").Preload("Department").
		Joins("JOIN pdis ON pdis.mentee_id = collaborators.id").
		Where("pdis.mentor_id = ?", mentorId).
		Distinct().
		Find(&mentees)
	if result.Error != nil {
		slog.Error("sql error listing mentees for mentor", "mentor_id", mentorId, "error", result.Error)
		writeError(w, dbError())
		return
	}

	utils.WriteJsonResponse(w, lo.Map(mentees, func(c schema.Collaborator, _ int) auth.SessionUser {
		return auth.CollaboratorSessionUser(c)
	}))
}

type updateCollaboratorRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone"`
}

// UpdateProfile lets a collaborator edit their own contact fields. Kind,
// role and department changes go through the admin edit.
func (s *CollaboratorService) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.IdentityFromRequest(r)
	if err != nil {
		writeError(w, CodedError(err, http.StatusInternalServerError, KindInternal))
		return
	}

	var params updateCollaboratorRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if err := checkRequest(params); err != nil {
		writeError(w, err)
		return
	}

	updates := map[string]interface{}{"name": params.Name, "email": params.Email, "phone": params.Phone}
	result := s.db.Model(&schema.Collaborator{ID: identity.ID}).Updates(updates)
	if result.Error != nil {
		slog.Error("sql error updating collaborator profile", "collaborator_id", identity.ID, "error", result.Error)
		writeError(w, dbError())
		return
	}

	utils.WriteMessage(w, "profile updated")
}

type adminUpdateCollaboratorRequest struct {
	CollaboratorID uint   `json:"collaborator_id" validate:"required"`
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone"`
	UserKind       string `json:"user_kind" validate:"required"`
	DepartmentID   uint   `json:"department_id" validate:"required"`
	RoleID         uint   `json:"role_id" validate:"required"`
	Status         int    `json:"status"`
}

func (s *CollaboratorService) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	var params adminUpdateCollaboratorRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if err := checkRequest(params); err != nil {
		writeError(w, err)
		return
	}

	if !schema.ValidUserKind(params.UserKind) {
		writeError(w, validationError(errors.New("invalid user kind "+params.UserKind)))
		return
	}

	err := s.db.Transaction(func(txn *gorm.DB) error {
		if _, err := schema.GetCollaborator(params.CollaboratorID, txn); err != nil {
			if errors.Is(err, schema.ErrCollaboratorNotFound) {
				return CodedError(err, http.StatusNotFound, KindInvalidReference)
			}
			return dbError()
		}

		if err := checkDepartmentExists(txn, params.DepartmentID); err != nil {
			return err
		}

		role, err := schema.GetRole(params.RoleID, txn)
		if err != nil {
			if errors.Is(err, schema.ErrRoleNotFound) {
				return CodedError(err, http.StatusBadRequest, KindInvalidReference)
			}
			return dbError()
		}
		if err := roleKindCheck(role, params.UserKind); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"name": params.Name, "email": params.Email, "phone": params.Phone,
			"user_kind": params.UserKind, "department_id": params.DepartmentID,
			"role_id": params.RoleID, "status": params.Status,
		}
		result := txn.Model(&schema.Collaborator{ID: params.CollaboratorID}).Updates(updates)
		if result.Error != nil {
			slog.Error("sql error updating collaborator", "collaborator_id", params.CollaboratorID, "error", result.Error)
			return dbError()
		}
		return nil
	})

	if err != nil {
		writeError(w, err)
		return
	}

	utils.WriteMessage(w, "collaborator updated")
}

func (s *CollaboratorService) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.IdentityFromRequest(r)
	if err != nil {
		writeError(w, CodedError(err, http.StatusInternalServerError, KindInternal))
		return
	}

	if identity.Kind != auth.KindCollaborator {
		writeError(w, CodedError(errors.New("only collaborators may use this endpoint"), http.StatusForbidden, KindIneligiblePrincipal))
		return
	}

	var params updatePasswordRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if err := checkRequest(params); err != nil {
		writeError(w, err)
		return
	}

	if params.NewPassword == params.OldPassword {
		writeError(w, validationError(errors.New("new password must differ from the current password")))
		return
	}

	collaborator, err := schema.GetCollaborator(identity.ID, s.db)
	if err != nil {
		writeError(w, dbError())
		return
	}

	if bcrypt.CompareHashAndPassword(collaborator.Password, []byte(params.OldPassword)) != nil {
		writeError(w, CodedError(errors.New("invalid login credentials"), http.StatusBadRequest, KindInvalidCredentials))
		return
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(params.NewPassword), 10)
	if err != nil {
		writeError(w, CodedError(errors.New("error encrypting password"), http.StatusInternalServerError, KindInternal))
		return
	}

	result := s.db.Model(&schema.Collaborator{ID: identity.ID}).Update("password", hashedPwd)
	if result.Error != nil {
		slog.Error("sql error updating collaborator password", "collaborator_id", identity.ID, "error", result.Error)
		writeError(w, dbError())
		return
	}

	utils.WriteMessage(w, "password updated")
}

func (s *CollaboratorService) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.IdentityFromRequest(r)
	if err != nil {
		writeError(w, CodedError(err, http.StatusInternalServerError, KindInternal))
		return
	}

	if identity.Kind != auth.KindCollaborator {
		writeError(w, CodedError(errors.New("only collaborators may use this endpoint"), http.StatusForbidden, KindIneligiblePrincipal))
		return
	}

	collaborator, err := schema.GetCollaborator(identity.ID, s.db)
	if err != nil {
		writeError(w, dbError())
		return
	}

	photoPath, err := savePhoto(r, s.storage, collaborator.CompanyID, collaborator.Photo)
	if err != nil {
		writeError(w, err)
		return
	}

	result := s.db.Model(&schema.Collaborator{ID: identity.ID}).Update("photo", photoPath)
	if result.Error != nil {
		slog.Error("sql error updating collaborator photo", "collaborator_id", identity.ID, "error", result.Error)
		writeError(w, dbError())
		return
	}

	utils.WriteJsonResponse(w, map[string]string{"photo": photoPath})
}
