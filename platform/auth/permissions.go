package auth

import (
	"fmt"
	"net/http"

	"mentorhub/utils"
)

// AdminOnly restricts an authenticated route group to admin principals.
func AdminOnly() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			identity, err := IdentityFromRequest(r)
			if err != nil {
				utils.WriteErrorJson(w, err.Error(), "internal", http.StatusInternalServerError)
				return
			}

			if identity.Kind != KindAdmin {
				message := fmt.Sprintf("%v %v is not an admin", identity.Kind, identity.ID)
				utils.WriteErrorJson(w, message, "ineligible_principal", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}

// CollaboratorOnly restricts a route group to collaborator principals, for
// self-service endpoints that have no meaning for admins.
func CollaboratorOnly() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			identity, err := IdentityFromRequest(r)
			if err != nil {
				utils.WriteErrorJson(w, err.Error(), "internal", http.StatusInternalServerError)
				return
			}

			if identity.Kind != KindCollaborator {
				message := fmt.Sprintf("%v %v is not a collaborator", identity.Kind, identity.ID)
				utils.WriteErrorJson(w, message, "ineligible_principal", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}
