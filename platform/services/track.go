package services

import (
	"errors"
	"log/slog"
	"net/http"

	"mentorhub/platform/auth"
	"mentorhub/platform/schema"
	"mentorhub/utils"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var trackCreateMetric = promauto.NewSummary(prometheus.SummaryOpts{Name: "track_create", Help: "Track creations"})

type TrackService struct {
	db       *gorm.DB
	userAuth *auth.IdentityProvider
}

func (s *TrackService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.userAuth.Middleware()...)

	r.Get("/apprenticeship/{company_id}", s.ListApprenticeship)
	r.Get("/internship/{company_id}", s.ListInternship)

	r.With(auth.AdminOnly()).Post("/", s.Create)

	return r
}

type createTrackRequest struct {
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description"`
	Program      string `json:"program" validate:"required"`
	TrackTypeID  uint   `json:"track_type_id" validate:"required"`
	DepartmentID uint   `json:"department_id" validate:"required"`
	CompanyID    uint   `json:"company_id" validate:"required"`
	DeadlineID   uint   `json:"deadline_id" validate:"required"`
}

// Create registers a track. At most one track may exist per (company,
// program, department, track type) tuple; the check runs inside the insert
// transaction and the composite unique index backstops concurrent creates.
func (s *TrackService) Create(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(trackCreateMetric)
	defer timer.ObserveDuration()

	var params createTrackRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if err := checkRequest(params); err != nil {
		writeError(w, err)
		return
	}

	if !schema.ValidProgram(params.Program) {
		writeError(w, validationError(errors.New("invalid program "+params.Program)))
		return
	}

	track := schema.Track{
		TrackTypeID:  params.TrackTypeID,
		Program:      params.Program,
		DepartmentID: params.DepartmentID,
		CompanyID:    params.CompanyID,
		Name:         params.Name,
		Description:  params.Description,
		DeadlineID:   params.DeadlineID,
		Status:       1,
	}

	err := s.db.Transaction(func(txn *gorm.DB) error {
		if err := checkDeadlineExists(txn, params.DeadlineID); err != nil {
			return err
		}
		if err := checkCompanyExists(txn, params.CompanyID); err != nil {
			return err
		}
		if err := checkDepartmentExists(txn, params.DepartmentID); err != nil {
			return err
		}

		var existing schema.Track
		result := txn.Limit(1).Find(&existing,
			"company_id = ? AND program = ? AND department_id = ? AND track_type_id = ?",
			params.CompanyID, params.Program, params.DepartmentID, params.TrackTypeID)
		if result.Error != nil {
			slog.Error("sql error checking for duplicate track", "error", result.Error)
			return dbError()
		}
		if result.RowsAffected != 0 {
			return CodedError(errors.New("invalid track"), http.StatusBadRequest, KindDuplicateTrack)
		}

		if result := txn.Create(&track); result.Error != nil {
			return translateStoreError(result.Error)
		}
		return nil
	})

	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("track created", "track_id", track.ID, "program", track.Program, "company_id", track.CompanyID)

	created, err := schema.GetTrack(track.ID, s.db, true)
	if err != nil {
		writeError(w, dbError())
		return
	}

	utils.WriteJsonCreated(w, trackView(created))
}

type trackResponse struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Program       string `json:"program"`
	TrackTypeID   uint   `json:"track_type_id"`
	TrackTypeName string `json:"track_type_name"`
	DepartmentID  uint   `json:"department_id"`
	CompanyID     uint   `json:"company_id"`
	DeadlineID    uint   `json:"deadline_id"`
	DeadlineLabel string `json:"deadline_label"`
	Status        int    `json:"status"`
}

func trackView(track schema.Track) trackResponse {
	view := trackResponse{
		ID:           track.ID,
		Name:         track.Name,
		Description:  track.Description,
		Program:      track.Program,
		TrackTypeID:  track.TrackTypeID,
		DepartmentID: track.DepartmentID,
		CompanyID:    track.CompanyID,
		DeadlineID:   track.DeadlineID,
		Status:       track.Status,
	}
	if track.TrackType != nil {
		view.TrackTypeName = track.TrackType.Name
	}
	if track.Deadline != nil {
		view.DeadlineLabel = track.Deadline.Label
	}
	return view
}

func (s *TrackService) listByProgram(w http.ResponseWriter, r *http.Request, program string) {
	companyId, err := utils.URLParamUint(r, "company_id")
	if err != nil {
		writeError(w, validationError(err))
		return
	}

	var tracks []schema.Track
	result := s.db.Preload("TrackType").Preload("Deadline").
		Where("company_id = ? AND program = ?", companyId, program).
		Find(&tracks)
	if result.Error != nil {
		slog.Error("sql error listing tracks", "company_id", companyId, "program", program, "error", result.Error)
		writeError(w, dbError())
		return
	}

	views := make([]trackResponse, 0, len(tracks))
	for _, track := range tracks {
		views = append(views, trackView(track))
	}

	utils.WriteJsonResponse(w, views)
}

func (s *TrackService) ListApprenticeship(w http.ResponseWriter, r *http.Request) {
	s.listByProgram(w, r, schema.Apprenticeship)
}

func (s *TrackService) ListInternship(w http.ResponseWriter, r *http.Request) {
	s.listByProgram(w, r, schema.Internship)
}
