package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mentorhub/utils"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Principal kinds. The codes are part of the token wire format, so they must
// stay stable.
type Kind int

const (
	KindAdmin        Kind = 1
	KindCollaborator Kind = 2
)

func (k Kind) String() string {
	switch k {
	case KindAdmin:
		return "admin"
	case KindCollaborator:
		return "collaborator"
	}
	return "unknown"
}

// Identity names one principal across both principal tables.
type Identity struct {
	Kind Kind
	ID   uint
}

var (
	ErrInvalidToken = errors.New("invalid access token")
	ErrTokenExpired = errors.New("access token has expired")
)

type JwtManager struct {
	auth   *jwtauth.JWTAuth
	expiry time.Duration
}

func NewJwtManager(secret []byte, expiry time.Duration) *JwtManager {
	return &JwtManager{auth: jwtauth.New("HS256", secret, nil), expiry: expiry}
}

func (m *JwtManager) Verifier() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return jwtauth.Verifier(m.auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
		}))
	}
}

// Authenticator rejects requests whose token failed verification. Unlike the
// stock jwtauth authenticator it writes the uniform JSON error body.
func (m *JwtManager) Authenticator() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())
			if err != nil {
				writeAuthError(w, err)
				return
			}
			if token == nil || jwt.Validate(token) != nil {
				writeAuthError(w, ErrInvalidToken)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, err error) {
	if errors.Is(err, jwtauth.ErrExpired) || errors.Is(err, ErrTokenExpired) {
		utils.WriteErrorJson(w, ErrTokenExpired.Error(), "token_expired", http.StatusUnauthorized)
		return
	}
	utils.WriteErrorJson(w, ErrInvalidToken.Error(), "invalid_token", http.StatusUnauthorized)
}

// CreateSessionJwt encodes the identity as the token subject "<id>_<kind>".
// Both halves are integers, so the separator is unambiguous.
func (m *JwtManager) CreateSessionJwt(identity Identity) (string, error) {
	claims := map[string]interface{}{
		"sub": fmt.Sprintf("%d_%d", identity.ID, identity.Kind),
		"exp": time.Now().Add(m.expiry),
	}
	_, token, err := m.auth.Encode(claims)
	if err != nil {
		slog.Error("error generating jwt", "error", err)
		return "", fmt.Errorf("error generating access token: %w", err)
	}
	return token, nil
}

// DecodeToken verifies the signature and expiry of a raw token and recovers
// the identity from its subject. Expired tokens are distinguished from all
// other failure modes.
func (m *JwtManager) DecodeToken(tokenString string) (Identity, error) {
	token, err := jwtauth.VerifyToken(m.auth, tokenString)
	if err != nil {
		if errors.Is(err, jwtauth.ErrExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, ErrInvalidToken
	}

	return identityFromToken(token)
}

func identityFromToken(token jwt.Token) (Identity, error) {
	return identityFromSubject(token.Subject())
}

func identityFromSubject(subject string) (Identity, error) {
	idPart, kindPart, found := strings.Cut(subject, "_")
	if !found {
		return Identity{}, ErrInvalidToken
	}

	id, err := strconv.ParseUint(idPart, 10, 32)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	kindCode, err := strconv.Atoi(kindPart)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	kind := Kind(kindCode)
	if kind != KindAdmin && kind != KindCollaborator {
		return Identity{}, ErrInvalidToken
	}

	return Identity{Kind: kind, ID: uint(id)}, nil
}

// IdentityFromClaims recovers the identity from a request that has already
// passed the Verifier/Authenticator middlewares.
func IdentityFromClaims(r *http.Request) (Identity, error) {
	token, _, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return Identity{}, fmt.Errorf("error retrieving auth claims: %w", err)
	}

	return identityFromToken(token)
}
