package services

import (
	"errors"
	"log/slog"
	"net/http"

	"mentorhub/platform/auth"
	"mentorhub/platform/schema"
	"mentorhub/utils"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

// CatalogService serves the shared lookup tables. Departments are the only
// catalog that is editable through the API.
type CatalogService struct {
	db       *gorm.DB
	userAuth *auth.IdentityProvider
}

func (s *CatalogService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.userAuth.Middleware()...)

	r.Route("/departments", func(r chi.Router) {
		r.Get("/", s.ListDepartments)

		r.Group(func(r chi.Router) {
			r.Use(auth.AdminOnly())

			r.Post("/", s.CreateDepartment)
			r.Put("/{department_id}", s.UpdateDepartment)
			r.Delete("/{department_id}", s.DeleteDepartment)
		})
	})

	r.Get("/roles", s.ListRoles)
	r.Get("/track-types", s.ListTrackTypes)
	r.Get("/deadlines", s.ListDeadlines)

	return r
}

func (s *CatalogService) ListDepartments(w http.ResponseWriter, r *http.Request) {
	var departments []schema.Department
	result := s.db.Find(&departments)
	if result.Error != nil {
		slog.Error("sql error listing departments", "error", result.Error)
		writeError(w, dbError())
		return
	}
	utils.WriteJsonResponse(w, departments)
}

type departmentRequest struct {
	Name string `json:"name" validate:"required"`
}

func (s *CatalogService) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var params departmentRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if err := checkRequest(params); err != nil {
		writeError(w, err)
		return
	}

	department := schema.Department{Name: params.Name}

	err := s.db.Transaction(func(txn *gorm.DB) error {
		var existing schema.Department
		result := txn.Limit(1).Find(&existing, "name = ?", params.Name)
		if result.Error != nil {
			slog.Error("sql error checking for duplicate department", "error", result.Error)
			return dbError()
		}
		if result.RowsAffected != 0 {
			return CodedError(errors.New("department "+params.Name+" already exists"), http.StatusForbidden, KindDuplicateValue)
		}

		if result := txn.Create(&department); result.Error != nil {
			return translateStoreError(result.Error)
		}
		return nil
	})

	if err != nil {
		writeError(w, err)
		return
	}

	utils.WriteJsonCreated(w, department)
}

func (s *CatalogService) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	departmentId, err := utils.URLParamUint(r, "department_id")
	if err != nil {
		writeError(w, validationError(err))
		return
	}

	var params departmentRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if err := checkRequest(params); err != nil {
		writeError(w, err)
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if err := checkDepartmentExists(txn, departmentId); err != nil {
			return err
		}

		result := txn.Model(&schema.Department{ID: departmentId}).Update("name", params.Name)
		if result.Error != nil {
			return translateStoreError(result.Error)
		}
		return nil
	})

	if err != nil {
		writeError(w, err)
		return
	}

	utils.WriteMessage(w, "department updated")
}

func (s *CatalogService) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	departmentId, err := utils.URLParamUint(r, "department_id")
	if err != nil {
		writeError(w, validationError(err))
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if err := checkDepartmentExists(txn, departmentId); err != nil {
			return err
		}

		result := txn.Delete(&schema.Department{ID: departmentId})
		if result.Error != nil {
			slog.Error("sql error deleting department", "department_id", departmentId, "error", result.Error)
			return dbError()
		}
		return nil
	})

	if err != nil {
		writeError(w, err)
		return
	}

	utils.WriteSuccess(w)
}

func (s *CatalogService) ListRoles(w http.ResponseWriter, r *http.Request) {
	var roles []schema.Role
	result := s.db.Find(&roles)
	if result.Error != nil {
		slog.Error("sql error listing roles", "error", result.Error)
		writeError(w, dbError())
		return
	}
	utils.WriteJsonResponse(w, roles)
}

func (s *CatalogService) ListTrackTypes(w http.ResponseWriter, r *http.Request) {
	var trackTypes []schema.TrackType
	result := s.db.Find(&trackTypes)
	if result.Error != nil {
		slog.Error("sql error listing track types", "error", result.Error)
		writeError(w, dbError())
		return
	}
	utils.WriteJsonResponse(w, trackTypes)
}

func (s *CatalogService) ListDeadlines(w http.ResponseWriter, r *http.Request) {
	var deadlines []schema.Deadline
	result := s.db.Find(&deadlines)
	if result.Error != nil {
		slog.Error("sql error listing deadlines", "error", result.Error)
		writeError(w, dbError())
		return
	}
	utils.WriteJsonResponse(w, deadlines)
}
