package services

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"mentorhub/platform/auth"
	"mentorhub/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	loginMetric = promauto.NewSummary(prometheus.SummaryOpts{Name: "auth_login", Help: "Login attempts"})
	checkMetric = promauto.NewSummary(prometheus.SummaryOpts{Name: "auth_check", Help: "Session checks"})
)

type AuthService struct {
	db       *gorm.DB
	userAuth *auth.IdentityProvider
}

func (s *AuthService) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(httprate.LimitByIP(10, 1*time.Minute)).Post("/login", s.Login)
	r.Get("/check", s.Check)

	return r
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Token string           `json:"token"`
	User  auth.SessionUser `json:"user"`
}

func (s *AuthService) Login(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(loginMetric)
	defer timer.ObserveDuration()

	var params loginRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if err := checkRequest(params); err != nil {
		writeError(w, err)
		return
	}

	login, err := s.userAuth.Login(params.Email, params.Password)
	if err != nil {
		writeError(w, translateLoginError(err))
		return
	}

	user, err := auth.CurrentUser(s.db, login.Identity)
	if err != nil {
		writeError(w, dbError())
		return
	}

	slog.Info("login successful", "principal_kind", login.Identity.Kind.String(), "principal_id", login.Identity.ID)

	utils.WriteJsonResponse(w, sessionResponse{Token: login.AccessToken, User: user})
}

func translateLoginError(err error) error {
	switch {
	case errors.Is(err, auth.ErrCredentialsNotFound):
		return CodedError(err, http.StatusBadRequest, KindCredentialsNotFound)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return CodedError(err, http.StatusBadRequest, KindInvalidCredentials)
	default:
		return CodedError(err, http.StatusInternalServerError, KindInternal)
	}
}

// Check revalidates a bearer token outside the regular auth middleware so it
// can report expiry as a distinct failure, and returns a fresh session view.
func (s *AuthService) Check(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(checkMetric)
	defer timer.ObserveDuration()

	tokenString := jwtauth.TokenFromHeader(r)
	if tokenString == "" {
		writeError(w, CodedError(errors.New("missing bearer token"), http.StatusUnauthorized, KindInvalidToken))
		return
	}

	identity, err := s.userAuth.JwtManager().DecodeToken(tokenString)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			writeError(w, CodedError(err, http.StatusUnauthorized, KindTokenExpired))
		} else {
			writeError(w, CodedError(err, http.StatusUnauthorized, KindInvalidToken))
		}
		return
	}

	user, err := auth.CurrentUser(s.db, identity)
	if err != nil {
		// The token is valid but its principal no longer resolves.
		writeError(w, CodedError(errors.New("token principal no longer exists"), http.StatusUnauthorized, KindInvalidToken))
		return
	}

	utils.WriteJsonResponse(w, sessionResponse{Token: tokenString, User: user})
}
