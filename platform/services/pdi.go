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

var (
	pdiCreateMetric = promauto.NewSummary(prometheus.SummaryOpts{Name: "pdi_create", Help: "Development plan creations"})
	pdiEditMetric   = promauto.NewSummary(prometheus.SummaryOpts{Name: "pdi_edit", Help: "Development plan edits"})
)

type PdiService struct {
	db       *gorm.DB
	userAuth *auth.IdentityProvider

	// Re-apply the one-active-plan rule when editing, not just on create.
	recheckActiveOnEdit bool
}

func (s *PdiService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.userAuth.Middleware()...)

	r.Get("/mentor/{mentor_id}", s.ListByMentor)

	r.Group(func(r chi.Router) {
		r.Use(auth.AdminOnly())

		r.Post("/", s.Create)
		r.Put("/{pdi_id}", s.Edit)
	})

	return r
}

type createPdiRequest struct {
	TrackID   uint   `json:"track_id" validate:"required"`
	Program   string `json:"program"`
	TrackName string `json:"track_name"`
	MentorID  uint   `json:"mentor_id" validate:"required"`
	MenteeID  uint   `json:"mentee_id" validate:"required"`
	SkillTags string `json:"skill_tags"`
}

// Create opens a development plan for a mentee. The track must exist, the
// mentor and mentee must hold the matching kinds, and the mentee may not
// already have an active plan. The track type and mentor name are snapshotted
// into the plan at this point; the program and track name labels are stored
// as the client supplied them, falling back to the track row when absent.
func (s *PdiService) Create(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(pdiCreateMetric)
	defer timer.ObserveDuration()

	var params createPdiRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if err := checkRequest(params); err != nil {
		writeError(w, err)
		return
	}

	if params.Program != "" && !schema.ValidProgram(params.Program) {
		writeError(w, validationError(errors.New("invalid program "+params.Program)))
		return
	}

	var pdi schema.Pdi

	err := s.db.Transaction(func(txn *gorm.DB) error {
		track, err := schema.GetTrack(params.TrackID, txn, true)
		if err != nil {
			if errors.Is(err, schema.ErrTrackNotFound) {
				return CodedError(err, http.StatusBadRequest, KindInvalidReference)
			}
			return dbError()
		}

		mentor, err := getCollaboratorOfKind(txn, params.MentorID, schema.KindMentor)
		if err != nil {
			return err
		}

		if _, err := getCollaboratorOfKind(txn, params.MenteeID, schema.KindMentee); err != nil {
			return err
		}

		if err := checkNoActivePlan(txn, params.MenteeID, 0); err != nil {
			return err
		}

		pdi = schema.Pdi{
			TrackID:    track.ID,
			Program:    track.Program,
			TrackName:  track.Name,
			MentorID:   mentor.ID,
			MentorName: mentor.Name,
			SkillTags:  params.SkillTags,
			MenteeID:   params.MenteeID,
			Status:     schema.PdiActive,
			Evaluation: schema.EvalNotStarted,
		}
		if params.Program != "" {
			pdi.Program = params.Program
		}
		if params.TrackName != "" {
			pdi.TrackName = params.TrackName
		}
		if track.TrackType != nil {
			pdi.TrackTypeName = track.TrackType.Name
		}

		if result := txn.Create(&pdi); result.Error != nil {
			return translateStoreError(result.Error)
		}
		return nil
	})

	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("development plan created", "pdi_id", pdi.ID, "mentor_id", pdi.MentorID, "mentee_id", pdi.MenteeID)

	utils.WriteJsonCreated(w, pdi)
}

// checkNoActivePlan rejects when the mentee already has an active plan.
// excludePdiId skips the plan being edited; zero excludes nothing.
func checkNoActivePlan(txn *gorm.DB, menteeId, excludePdiId uint) error {
	query := txn.Model(&schema.Pdi{}).Where("mentee_id = ? AND status = ?", menteeId, schema.PdiActive)
	if excludePdiId != 0 {
		query = query.Where("id <> ?", excludePdiId)
	}

	var count int64
	result := query.Count(&count)
	if result.Error != nil {
		slog.Error("sql error checking for active plan", "mentee_id", menteeId, "error", result.Error)
		return dbError()
	}
	if count > 0 {
		return CodedError(errors.New("mentee already has an active development plan"), http.StatusBadRequest, KindMenteeActivePlan)
	}
	return nil
}

type editPdiRequest struct {
	TrackID    uint   `json:"track_id" validate:"required"`
	Program    string `json:"program"`
	TrackName  string `json:"track_name"`
	MentorID   uint   `json:"mentor_id" validate:"required"`
	MenteeID   uint   `json:"mentee_id" validate:"required"`
	SkillTags  string `json:"skill_tags"`
	Status     string `json:"status" validate:"required"`
	Evaluation string `json:"evaluation" validate:"required"`
}

// Edit fully replaces a plan's mutable fields, re-running the reference and
// kind checks and refreshing the snapshots. The program and track name labels
// follow the same client-wins rule as Create. Plans in a terminal status only
// accept writes that keep the status unchanged.
func (s *PdiService) Edit(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(pdiEditMetric)
	defer timer.ObserveDuration()

	pdiId, err := utils.URLParamUint(r, "pdi_id")
	if err != nil {
		writeError(w, validationError(err))
		return
	}

	var params editPdiRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if err := checkRequest(params); err != nil {
		writeError(w, err)
		return
	}

	if params.Program != "" && !schema.ValidProgram(params.Program) {
		writeError(w, validationError(errors.New("invalid program "+params.Program)))
		return
	}
	if !schema.ValidPdiStatus(params.Status) {
		writeError(w, validationError(errors.New("invalid plan status "+params.Status)))
		return
	}
	if !schema.ValidPdiEvaluation(params.Evaluation) {
		writeError(w, validationError(errors.New("invalid plan evaluation "+params.Evaluation)))
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		pdi, err := schema.GetPdi(pdiId, txn)
		if err != nil {
			if errors.Is(err, schema.ErrPdiNotFound) {
				return CodedError(err, http.StatusNotFound, KindInvalidReference)
			}
			return dbError()
		}

		if !schema.CanTransitionPdiStatus(pdi.Status, params.Status) {
			return validationError(errors.New("plan with status " + pdi.Status + " cannot change status"))
		}

		track, err := schema.GetTrack(params.TrackID, txn, true)
		if err != nil {
			if errors.Is(err, schema.ErrTrackNotFound) {
				return CodedError(err, http.StatusBadRequest, KindInvalidReference)
			}
			return dbError()
		}

		mentor, err := getCollaboratorOfKind(txn, params.MentorID, schema.KindMentor)
		if err != nil {
			return err
		}

		if _, err := getCollaboratorOfKind(txn, params.MenteeID, schema.KindMentee); err != nil {
			return err
		}

		if s.recheckActiveOnEdit && params.Status == schema.PdiActive {
			if err := checkNoActivePlan(txn, params.MenteeID, pdiId); err != nil {
				return err
			}
		}

		trackTypeName := ""
		if track.TrackType != nil {
			trackTypeName = track.TrackType.Name
		}

		program := track.Program
		if params.Program != "" {
			program = params.Program
		}
		trackName := track.Name
		if params.TrackName != "" {
			trackName = params.TrackName
		}

		updates := map[string]interface{}{
			"track_id":        track.ID,
			"program":         program,
			"track_name":      trackName,
			"track_type_name": trackTypeName,
			"mentor_id":       mentor.ID,
			"mentor_name":     mentor.Name,
			"skill_tags":      params.SkillTags,
			"mentee_id":       params.MenteeID,
			"status":          params.Status,
			"evaluation":      params.Evaluation,
		}
		result := txn.Model(&schema.Pdi{ID: pdiId}).Updates(updates)
		if result.Error != nil {
			slog.Error("sql error updating development plan", "pdi_id", pdiId, "error", result.Error)
			return dbError()
		}
		return nil
	})

	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("development plan updated", "pdi_id", pdiId, "status", params.Status)

	utils.WriteMessage(w, "development plan updated")
}

func (s *PdiService) ListByMentor(w http.ResponseWriter, r *http.Request) {
	mentorId, err := utils.URLParamUint(r, "mentor_id")
	if err != nil {
		writeError(w, validationError(err))
		return
	}

	var pdis []schema.Pdi
	result := s.db.Preload("Mentee").Where("mentor_id = ?", mentorId).Find(&pdis)
	if result.Error != nil {
		slog.Error("sql error listing plans for mentor", "mentor_id", mentorId, "error", result.Error)
		writeError(w, dbError())
		return
	}

	utils.WriteJsonResponse(w, pdis)
}
