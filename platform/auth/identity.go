package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"mentorhub/platform/schema"
	"mentorhub/utils"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrCredentialsNotFound = errors.New("no account found for given email")
	ErrInvalidCredentials  = errors.New("invalid login credentials")
	ErrGeneratingJwt       = errors.New("error generating jwt")
)

type LoginResult struct {
	Identity    Identity
	AccessToken string
}

// IdentityProvider resolves credentials against both principal tables and
// attaches the resolved identity to authenticated requests.
type IdentityProvider struct {
	jwtManager *JwtManager
	db         *gorm.DB
	auditLog   AuditLogger
}

func NewIdentityProvider(db *gorm.DB, jwtManager *JwtManager, auditLog AuditLogger) *IdentityProvider {
	return &IdentityProvider{jwtManager: jwtManager, db: db, auditLog: auditLog}
}

func (auth *IdentityProvider) JwtManager() *JwtManager {
	return auth.jwtManager
}

// resolveEmail probes the admin table first; an admin match wins, so an email
// present in both tables deterministically resolves to the admin. The
// collaborator table is only consulted when no admin holds the email.
func resolveEmail(db *gorm.DB, email string) (Identity, []byte, error) {
	var admin schema.Admin
	result := db.Limit(1).Find(&admin, "email = ?", email)
	if result.Error != nil {
		slog.Error("sql error looking up admin by email", "error", result.Error)
		return Identity{}, nil, schema.ErrDbAccessFailed
	}
	if result.RowsAffected != 0 {
		return Identity{Kind: KindAdmin, ID: admin.ID}, admin.Password, nil
	}

	var collaborator schema.Collaborator
	result = db.Limit(1).Find(&collaborator, "email = ?", email)
	if result.Error != nil {
		slog.Error("sql error looking up collaborator by email", "error", result.Error)
		return Identity{}, nil, schema.ErrDbAccessFailed
	}
	if result.RowsAffected != 0 {
		return Identity{Kind: KindCollaborator, ID: collaborator.ID}, collaborator.Password, nil
	}

	return Identity{}, nil, ErrCredentialsNotFound
}

func (auth *IdentityProvider) Login(email, password string) (LoginResult, error) {
	identity, hashedPwd, err := resolveEmail(auth.db, email)
	if err != nil {
		return LoginResult{}, err
	}

	err = bcrypt.CompareHashAndPassword(hashedPwd, []byte(password))
	if err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := auth.jwtManager.CreateSessionJwt(identity)
	if err != nil {
		return LoginResult{}, ErrGeneratingJwt
	}

	return LoginResult{Identity: identity, AccessToken: token}, nil
}

type requestContextKey string

const identityRequestContextKey requestContextKey = "identity"

func (auth *IdentityProvider) addIdentityToContext() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		handler := func(w http.ResponseWriter, r *http.Request) {
			identity, err := IdentityFromClaims(r)
			if err != nil {
				utils.WriteErrorJson(w, err.Error(), "invalid_token", http.StatusUnauthorized)
				return
			}

			reqCtx := context.WithValue(r.Context(), identityRequestContextKey, identity)
			next.ServeHTTP(w, r.WithContext(reqCtx))
		}

		return http.HandlerFunc(handler)
	}
}

func (auth *IdentityProvider) Middleware() chi.Middlewares {
	return chi.Middlewares{
		auth.jwtManager.Verifier(),
		auth.jwtManager.Authenticator(),
		auth.addIdentityToContext(),
		auth.auditLog.Middleware,
	}
}

func IdentityFromRequest(r *http.Request) (Identity, error) {
	identityUntyped := r.Context().Value(identityRequestContextKey)
	if identityUntyped == nil {
		return Identity{}, errors.New("identity field not found in request context")
	}
	identity, ok := identityUntyped.(Identity)
	if !ok {
		return Identity{}, errors.New("invalid value for identity field")
	}
	return identity, nil
}
