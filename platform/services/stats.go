package services

import (
	"errors"
	"log/slog"
	"net/http"

	"mentorhub/platform/auth"
	"mentorhub/platform/schema"
	"mentorhub/platform/storage"
	"mentorhub/utils"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

// StatsService reports headcount metrics for dashboards, plus the state of
// the upload store.
type StatsService struct {
	db       *gorm.DB
	userAuth *auth.IdentityProvider
	storage  storage.Storage
}

func (s *StatsService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.userAuth.Middleware()...)

	r.Get("/department", s.DepartmentStats)
	r.Get("/company", s.CompanyStats)
	r.Get("/storage", s.StorageStats)

	return r
}

type departmentStatsResponse struct {
	Apprentices   int64 `json:"apprentices"`
	Interns       int64 `json:"interns"`
	Mentors       int64 `json:"mentors"`
	MentorMentees int64 `json:"mentor_mentees"`
}

func (s *StatsService) countCollaborators(companyId, departmentId uint, extra func(*gorm.DB) *gorm.DB) (int64, error) {
	query := s.db.Model(&schema.Collaborator{}).Where("company_id = ?", companyId)
	if departmentId != 0 {
		query = query.Where("department_id = ?", departmentId)
	}
	query = extra(query)

	var count int64
	result := query.Count(&count)
	if result.Error != nil {
		slog.Error("sql error counting collaborators", "company_id", companyId, "error", result.Error)
		return 0, dbError()
	}
	return count, nil
}

func (s *StatsService) countByRole(companyId, departmentId uint, roleName string) (int64, error) {
	return s.countCollaborators(companyId, departmentId, func(q *gorm.DB) *gorm.DB {
		return q.Joins("JOIN roles ON roles.id = collaborators.role_id").Where("roles.name = ?", roleName)
	})
}

func (s *StatsService) countByKind(companyId, departmentId uint, kind string) (int64, error) {
	return s.countCollaborators(companyId, departmentId, func(q *gorm.DB) *gorm.DB {
		return q.Where("user_kind = ?", kind)
	})
}

func (s *StatsService) DepartmentStats(w http.ResponseWriter, r *http.Request) {
	companyId, err := utils.QueryParamUint(r, "company_id")
	if err != nil {
		writeError(w, validationError(err))
		return
	}
	departmentId, err := utils.QueryParamUint(r, "department_id")
	if err != nil {
		writeError(w, validationError(err))
		return
	}

	var stats departmentStatsResponse

	if stats.Apprentices, err = s.countByRole(companyId, departmentId, "Apprentice"); err != nil {
		writeError(w, err)
		return
	}
	if stats.Interns, err = s.countByRole(companyId, departmentId, "Intern"); err != nil {
		writeError(w, err)
		return
	}
	if stats.Mentors, err = s.countByKind(companyId, departmentId, schema.KindMentor); err != nil {
		writeError(w, err)
		return
	}

	// Optional mentor filter: how many distinct mentees the mentor carries.
	if mentorId, err := utils.QueryParamUint(r, "mentor_id"); err == nil {
		result := s.db.Model(&schema.Pdi{}).
			Where("mentor_id = ?", mentorId).
			Distinct("mentee_id").
			Count(&stats.MentorMentees)
		if result.Error != nil {
			slog.Error("sql error counting mentor mentees", "mentor_id", mentorId, "error", result.Error)
			writeError(w, dbError())
			return
		}
	}

	utils.WriteJsonResponse(w, stats)
}

type companyStatsResponse struct {
	Collaborators int64 `json:"collaborators"`
	Apprentices   int64 `json:"apprentices"`
	Interns       int64 `json:"interns"`
	Mentors       int64 `json:"mentors"`
	Mentees       int64 `json:"mentees"`
	ActivePlans   int64 `json:"active_plans"`
}

func (s *StatsService) CompanyStats(w http.ResponseWriter, r *http.Request) {
	companyId, err := utils.QueryParamUint(r, "company_id")
	if err != nil {
		writeError(w, validationError(err))
		return
	}

	var stats companyStatsResponse

	if stats.Collaborators, err = s.countCollaborators(companyId, 0, func(q *gorm.DB) *gorm.DB { return q }); err != nil {
		writeError(w, err)
		return
	}
	if stats.Apprentices, err = s.countByRole(companyId, 0, "Apprentice"); err != nil {
		writeError(w, err)
		return
	}
	if stats.Interns, err = s.countByRole(companyId, 0, "Intern"); err != nil {
		writeError(w, err)
		return
	}
	if stats.Mentors, err = s.countByKind(companyId, 0, schema.KindMentor); err != nil {
		writeError(w, err)
		return
	}
	if stats.Mentees, err = s.countByKind(companyId, 0, schema.KindMentee); err != nil {
		writeError(w, err)
		return
	}

	result := s.db.Model(&schema.Pdi{}).
		Joins("JOIN collaborators ON collaborators.id = pdis.mentee_id").
		Where("collaborators.company_id = ? AND pdis.status = ?", companyId, schema.PdiActive).
		Count(&stats.ActivePlans)
	if result.Error != nil {
		slog.Error("sql error counting active plans", "company_id", companyId, "error", result.Error)
		writeError(w, dbError())
		return
	}

	utils.WriteJsonResponse(w, stats)
}

type storageStatsResponse struct {
	Location   string `json:"location"`
	TotalBytes uint64 `json:"total_bytes"`
	FreeBytes  uint64 `json:"free_bytes"`
}

// StorageStats reports capacity of the disk backing the upload store.
func (s *StatsService) StorageStats(w http.ResponseWriter, r *http.Request) {
	usage, err := s.storage.Usage()
	if err != nil {
		slog.Error("error reading storage usage", "error", err)
		writeError(w, CodedError(errors.New("error reading storage usage"), http.StatusInternalServerError, KindInternal))
		return
	}

	utils.WriteJsonResponse(w, storageStatsResponse{
		Location:   s.storage.Location(),
		TotalBytes: usage.TotalBytes,
		FreeBytes:  usage.FreeBytes,
	})
}
