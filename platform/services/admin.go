package services

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"

	"mentorhub/platform/auth"
	"mentorhub/platform/schema"
	"mentorhub/platform/storage"
	"mentorhub/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/klassmann/cpfcnpj"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AdminService struct {
	db       *gorm.DB
	userAuth *auth.IdentityProvider
	storage  storage.Storage
}

func (s *AdminService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.userAuth.Middleware()...)

	r.Get("/", s.List)
	r.Get("/{admin_id}", s.GetAdmin)

	r.Group(func(r chi.Router) {
		r.Use(auth.AdminOnly())

		r.Put("/", s.UpdateProfile)
		r.Put("/password", s.UpdatePassword)
		r.Post("/photo", s.UploadPhoto)
	})

	return r
}

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Company  string `json:"company" validate:"required"`
	TaxID    string `json:"tax_id" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type signupResponse struct {
	Admin   auth.SessionUser `json:"admin"`
	Company schema.Company   `json:"company"`
}

// Signup registers a company along with its first admin. This is the only
// path that creates admin principals.
func (s *AdminService) Signup(w http.ResponseWriter, r *http.Request) {
	var params signupRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if err := checkRequest(params); err != nil {
		writeError(w, err)
		return
	}

	taxId := cpfcnpj.NewCNPJ(params.TaxID)
	if !taxId.IsValid() {
		writeError(w, validationError(errors.New("invalid company tax id")))
		return
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(params.Password), 10)
	if err != nil {
		writeError(w, CodedError(errors.New("error encrypting password"), http.StatusInternalServerError, KindInternal))
		return
	}

	company := schema.Company{LegalName: params.Company, TaxID: string(taxId)}
	admin := schema.Admin{
		Name:     params.Name,
		Title:    "Administrator",
		Email:    params.Email,
		Password: hashedPwd,
		Phone:    params.Phone,
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		var existingAdmin schema.Admin
		result := txn.Limit(1).Find(&existingAdmin, "email = ?", params.Email)
		if result.Error != nil {
			slog.Error("sql error checking for existing admin email", "error", result.Error)
			return dbError()
		}
		if result.RowsAffected != 0 {
			return CodedError(errors.New("email is already in use"), http.StatusConflict, KindDuplicateValue)
		}

		var existingCompany schema.Company
		result = txn.Limit(1).Find(&existingCompany, "tax_id = ?", string(taxId))
		if result.Error != nil {
			slog.Error("sql error checking for existing company tax id", "error", result.Error)
			return dbError()
		}
		if result.RowsAffected != 0 {
			return CodedError(errors.New("company tax id is already registered"), http.StatusConflict, KindDuplicateValue)
		}

		if result := txn.Create(&company); result.Error != nil {
			return translateStoreError(result.Error)
		}

		admin.CompanyID = company.ID
		if result := txn.Create(&admin); result.Error != nil {
			return translateStoreError(result.Error)
		}

		request := schema.SignupRequest{AdminID: admin.ID, CompanyID: company.ID, Status: 1}
		if result := txn.Create(&request); result.Error != nil {
			return translateStoreError(result.Error)
		}

		return nil
	})

	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("company signup complete", "company_id", company.ID, "admin_id", admin.ID)

	admin.Company = &company
	utils.WriteJsonCreated(w, signupResponse{Admin: auth.AdminSessionUser(admin), Company: company})
}

func (s *AdminService) List(w http.ResponseWriter, r *http.Request) {
	var admins []schema.Admin
	result := s.db.Preload("Company").Find(&admins)
	if result.Error != nil {
		slog.Error("sql error listing admins", "error", result.Error)
		writeError(w, dbError())
		return
	}

	utils.WriteJsonResponse(w, admins)
}

func (s *AdminService) GetAdmin(w http.ResponseWriter, r *http.Request) {
	adminId, err := utils.URLParamUint(r, "admin_id")
	if err != nil {
		writeError(w, validationError(err))
		return
	}

	admin, err := schema.GetAdmin(adminId, s.db)
	if err != nil {
		if errors.Is(err, schema.ErrAdminNotFound) {
			writeError(w, CodedError(err, http.StatusNotFound, KindInvalidReference))
			return
		}
		writeError(w, dbError())
		return
	}

	utils.WriteJsonResponse(w, admin)
}

type updateAdminRequest struct {
	Name  string `json:"name" validate:"required"`
	Title string `json:"title"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone"`
}

func (s *AdminService) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.IdentityFromRequest(r)
	if err != nil {
		writeError(w, CodedError(err, http.StatusInternalServerError, KindInternal))
		return
	}

	var params updateAdminRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if err := checkRequest(params); err != nil {
		writeError(w, err)
		return
	}

	updates := map[string]interface{}{
		"name": params.Name, "title": params.Title, "email": params.Email, "phone": params.Phone,
	}
	result := s.db.Model(&schema.Admin{ID: identity.ID}).Updates(updates)
	if result.Error != nil {
		slog.Error("sql error updating admin profile", "admin_id", identity.ID, "error", result.Error)
		writeError(w, dbError())
		return
	}

	utils.WriteMessage(w, "profile updated")
}

type updatePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

func (s *AdminService) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.IdentityFromRequest(r)
	if err != nil {
		writeError(w, CodedError(err, http.StatusInternalServerError, KindInternal))
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

	admin, err := schema.GetAdmin(identity.ID, s.db)
	if err != nil {
		writeError(w, dbError())
		return
	}

	if bcrypt.CompareHashAndPassword(admin.Password, []byte(params.OldPassword)) != nil {
		writeError(w, CodedError(errors.New("invalid login credentials"), http.StatusBadRequest, KindInvalidCredentials))
		return
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(params.NewPassword), 10)
	if err != nil {
		writeError(w, CodedError(errors.New("error encrypting password"), http.StatusInternalServerError, KindInternal))
		return
	}

	result := s.db.Model(&schema.Admin{ID: identity.ID}).Update("password", hashedPwd)
	if result.Error != nil {
		slog.Error("sql error updating admin password", "admin_id", identity.ID, "error", result.Error)
		writeError(w, dbError())
		return
	}

	utils.WriteMessage(w, "password updated")
}

func (s *AdminService) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.IdentityFromRequest(r)
	if err != nil {
		writeError(w, CodedError(err, http.StatusInternalServerError, KindInternal))
		return
	}

	admin, err := schema.GetAdmin(identity.ID, s.db)
	if err != nil {
		writeError(w, dbError())
		return
	}

	photoPath, err := savePhoto(r, s.storage, admin.CompanyID, admin.Photo)
	if err != nil {
		writeError(w, err)
		return
	}

	result := s.db.Model(&schema.Admin{ID: identity.ID}).Update("photo", photoPath)
	if result.Error != nil {
		slog.Error("sql error updating admin photo", "admin_id", identity.ID, "error", result.Error)
		writeError(w, dbError())
		return
	}

	utils.WriteJsonResponse(w, map[string]string{"photo": photoPath})
}

const maxPhotoSize = 10 << 20

// savePhoto stores the uploaded "photo" multipart field under an opaque name
// and returns the storage path. A previously stored photo is removed once the
// replacement is written.
func savePhoto(r *http.Request, store storage.Storage, companyId uint, previous string) (string, error) {
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		return "", validationError(fmt.Errorf("error parsing multipart form: %w", err))
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		return "", validationError(errors.New("missing 'photo' form field"))
	}
	defer file.Close()

	filename := uuid.New().String() + filepath.Ext(header.Filename)
	photoPath := storage.PhotoPath(companyId, filename)

	if err := store.Write(photoPath, file); err != nil {
		return "", CodedError(errors.New("error saving photo"), http.StatusInternalServerError, KindInternal)
	}

	if previous != "" && previous != photoPath {
		if err := store.Delete(previous); err != nil {
			slog.Warn("error removing replaced photo", "path", previous, "error", err)
		}
	}

	return photoPath, nil
}

// ServePhoto streams a stored profile picture. Photo paths are public once
// issued, the same way the original upload directory was served statically.
func (s *AdminService) ServePhoto(w http.ResponseWriter, r *http.Request) {
	companyId, err := utils.URLParamUint(r, "company_id")
	if err != nil {
		writeError(w, validationError(err))
		return
	}

	filename, err := utils.URLParam(r, "filename")
	if err != nil {
		writeError(w, validationError(err))
		return
	}
	if filename != filepath.Base(filename) {
		writeError(w, validationError(errors.New("invalid photo name")))
		return
	}

	photoPath := storage.PhotoPath(companyId, filename)

	exists, err := s.storage.Exists(photoPath)
	if err != nil {
		writeError(w, CodedError(errors.New("error locating photo"), http.StatusInternalServerError, KindInternal))
		return
	}
	if !exists {
		writeError(w, CodedError(errors.New("photo not found"), http.StatusNotFound, KindInvalidReference))
		return
	}

	file, err := s.storage.Read(photoPath)
	if err != nil {
		writeError(w, CodedError(errors.New("error reading photo"), http.StatusInternalServerError, KindInternal))
		return
	}
	defer file.Close()

	if contentType := mime.TypeByExtension(filepath.Ext(filename)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if _, err := io.Copy(w, file); err != nil {
		slog.Error("error streaming photo", "path", photoPath, "error", err)
	}
}
