package services

import (
	"errors"
	"log/slog"
	"net/http"

	"mentorhub/platform/auth"
	"mentorhub/platform/schema"
	"mentorhub/utils"

	"github.com/go-chi/chi/v5"
	"github.com/klassmann/cpfcnpj"
	"gorm.io/gorm"
)

type CompanyService struct {
	db       *gorm.DB
	userAuth *auth.IdentityProvider
}

func (s *CompanyService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.userAuth.Middleware()...)

	r.Get("/", s.List)

	r.Group(func(r chi.Router) {
		r.Use(auth.AdminOnly())

		r.Post("/", s.Create)
		r.Put("/{company_id}", s.Update)
		r.Delete("/{company_id}", s.Delete)
	})

	return r
}

func (s *CompanyService) List(w http.ResponseWriter, r *http.Request) {
	var companies []schema.Company
	result := s.db.Find(&companies)
	if result.Error != nil {
		slog.Error("sql error listing companies", "error", result.Error)
		writeError(w, dbError())
		return
	}

	utils.WriteJsonResponse(w, companies)
}

type companyRequest struct {
	LegalName string `json:"legal_name" validate:"required"`
	TaxID     string `json:"tax_id" validate:"required"`
}

func (s *CompanyService) Create(w http.ResponseWriter, r *http.Request) {
	var params companyRequest
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

	company := schema.Company{LegalName: params.LegalName, TaxID: string(taxId)}

	err := s.db.Transaction(func(txn *gorm.DB) error {
		var existing schema.Company
		result := txn.Limit(1).Find(&existing, "tax_id = ?", string(taxId))
		if result.Error != nil {
			slog.Error("sql error checking for existing company", "error", result.Error)
			return dbError()
		}
		if result.RowsAffected != 0 {
			return CodedError(errors.New("company tax id is already registered"), http.StatusConflict, KindDuplicateValue)
		}

		if result := txn.Create(&company); result.Error != nil {
			return translateStoreError(result.Error)
		}
		return nil
	})

	if err != nil {
		writeError(w, err)
		return
	}

	utils.WriteJsonCreated(w, company)
}

func (s *CompanyService) Update(w http.ResponseWriter, r *http.Request) {
	companyId, err := utils.URLParamUint(r, "company_id")
	if err != nil {
		writeError(w, validationError(err))
		return
	}

	var params companyRequest
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

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if err := checkCompanyExists(txn, companyId); err != nil {
			return err
		}

		updates := map[string]interface{}{"legal_name": params.LegalName, "tax_id": string(taxId)}
		result := txn.Model(&schema.Company{ID: companyId}).Updates(updates)
		if result.Error != nil {
			return translateStoreError(result.Error)
		}
		return nil
	})

	if err != nil {
		writeError(w, err)
		return
	}

	utils.WriteMessage(w, "company updated")
}

func (s *CompanyService) Delete(w http.ResponseWriter, r *http.Request) {
	companyId, err := utils.URLParamUint(r, "company_id")
	if err != nil {
		writeError(w, validationError(err))
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if err := checkCompanyExists(txn, companyId); err != nil {
			return err
		}

		result := txn.Delete(&schema.Company{ID: companyId})
		if result.Error != nil {
			slog.Error("sql error deleting company", "company_id", companyId, "error", result.Error)
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
