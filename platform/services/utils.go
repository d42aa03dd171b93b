package services

import (
	"errors"
	"log/slog"
	"net/http"

	"mentorhub/platform/schema"
	"mentorhub/utils"

	"gorm.io/gorm"
)

// Stable machine-readable failure classes carried alongside the human
// readable message in every error body.
const (
	KindValidationError     = "validation_error"
	KindInvalidReference    = "invalid_reference"
	KindCredentialsNotFound = "credentials_not_found"
	KindInvalidCredentials  = "invalid_credentials"
	KindInvalidToken        = "invalid_token"
	KindTokenExpired        = "token_expired"
	KindIneligiblePrincipal = "ineligible_principal"
	KindDuplicateTrack      = "duplicate_track"
	KindMenteeActivePlan    = "mentee_active_plan"
	KindRoleKindMismatch    = "role_kind_mismatch"
	KindDuplicateValue      = "duplicate_value"
	KindInternal            = "internal"
)

type codedError struct {
	err  error
	code int
	kind string
}

func (e *codedError) Error() string {
	return e.err.Error()
}

func (e *codedError) Unwrap() error {
	return e.err
}

func CodedError(err error, code int, kind string) error {
	return &codedError{err: err, code: code, kind: kind}
}

func GetResponseCode(err error) int {
	var cerr *codedError
	if errors.As(err, &cerr) {
		return cerr.code
	}
	slog.Error("non coded error passed to GetResponseCode", "error", err)
	return http.StatusInternalServerError
}

func GetErrorKind(err error) string {
	var cerr *codedError
	if errors.As(err, &cerr) {
		return cerr.kind
	}
	return KindInternal
}

func writeError(w http.ResponseWriter, err error) {
	utils.WriteErrorJson(w, err.Error(), GetErrorKind(err), GetResponseCode(err))
}

func dbError() error {
	return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError, KindInternal)
}

func validationError(err error) error {
	return CodedError(err, http.StatusBadRequest, KindValidationError)
}

// translateStoreError maps unique constraint violations surfaced from the
// insert itself to the registered-value failure. Requires TranslateError on
// the gorm session so dialect-specific duplicate key errors unify.
func translateStoreError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return CodedError(errors.New("value already registered"), http.StatusInternalServerError, KindDuplicateValue)
	}
	slog.Error("sql error on write", "error", err)
	return dbError()
}

func checkCompanyExists(txn *gorm.DB, companyId uint) error {
	if _, err := schema.GetCompany(companyId, txn); err != nil {
		if errors.Is(err, schema.ErrCompanyNotFound) {
			return CodedError(err, http.StatusBadRequest, KindInvalidReference)
		}
		return dbError()
	}
	return nil
}

func checkDepartmentExists(txn *gorm.DB, departmentId uint) error {
	if _, err := schema.GetDepartment(departmentId, txn); err != nil {
		if errors.Is(err, schema.ErrDepartmentNotFound) {
			return CodedError(err, http.StatusBadRequest, KindInvalidReference)
		}
		return dbError()
	}
	return nil
}

func checkDeadlineExists(txn *gorm.DB, deadlineId uint) error {
	if _, err := schema.GetDeadline(deadlineId, txn); err != nil {
		if errors.Is(err, schema.ErrDeadlineNotFound) {
			return CodedError(err, http.StatusBadRequest, KindInvalidReference)
		}
		return dbError()
	}
	return nil
}

// getCollaboratorOfKind loads a collaborator and verifies it participates in
// plans with the expected kind. A collaborator that exists with the wrong
// kind is a distinct failure from a missing reference.
func getCollaboratorOfKind(txn *gorm.DB, collaboratorId uint, kind string) (schema.Collaborator, error) {
	collaborator, err := schema.GetCollaborator(collaboratorId, txn)
	if err != nil {
		if errors.Is(err, schema.ErrCollaboratorNotFound) {
			return collaborator, CodedError(err, http.StatusBadRequest, KindInvalidReference)
		}
		return collaborator, dbError()
	}
	if collaborator.UserKind != kind {
		return collaborator, CodedError(
			errors.New("collaborator is not a "+kind), http.StatusBadRequest, KindIneligiblePrincipal)
	}
	return collaborator, nil
}
