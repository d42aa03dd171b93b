package tests

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"mentorhub/platform/auth"
)

func TestLoginAndCheck(t *testing.T) {
	env := setupTestEnv(t)

	c, info := env.adminClient(t, "acme", testCnpj)

	if c.user.UserKind != "Admin" {
		t.Fatalf("expected admin user kind, got %v", c.user.UserKind)
	}
	if c.user.RoleName != "Administrator" || c.user.DepartmentName != "Administrator" {
		t.Fatalf("admin session should carry administrator defaults, got %v / %v", c.user.RoleName, c.user.DepartmentName)
	}
	if c.user.Status != 1 {
		t.Fatalf("admin session status should be 1, got %d", c.user.Status)
	}
	if c.user.CompanyID != info.Company.ID {
		t.Fatalf("admin session company mismatch")
	}

	session, err := c.check()
	if err != nil {
		t.Fatal(err)
	}
	if session.User.ID != c.user.ID || session.User.UserKind != "Admin" {
		t.Fatalf("check returned wrong principal: %+v", session.User)
	}
}

func TestLoginFailures(t *testing.T) {
	env := setupTestEnv(t)

	c, _ := env.adminClient(t, "acme", testCnpj)

	status, body, err := c.Post("/auth/login").
		Json(map[string]string{"email": "acme@mail.com", "password": "wrong_password"}).DoRaw()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusBadRequest || body["kind"] != "invalid_credentials" {
		t.Fatalf("expected 400 invalid_credentials, got %d %v", status, body)
	}

	status, body, err = c.Post("/auth/login").
		Json(map[string]string{"email": "nobody@mail.com", "password": "whatever12"}).DoRaw()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusBadRequest || body["kind"] != "credentials_not_found" {
		t.Fatalf("expected 400 credentials_not_found, got %d %v", status, body)
	}
}

func TestCheckRejectsBadTokens(t *testing.T) {
	env := setupTestEnv(t)

	c := env.newClient()

	status, body, err := c.Get("/auth/check").Auth("not-a-real-token").DoRaw()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusUnauthorized || body["kind"] != "invalid_token" {
		t.Fatalf("expected 401 invalid_token, got %d %v", status, body)
	}

	status, body, err = c.Get("/auth/check").DoRaw()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusUnauthorized || body["kind"] != "invalid_token" {
		t.Fatalf("expected 401 for missing token, got %d %v", status, body)
	}
}

// An email present in both principal tables must resolve to the admin.
func TestAdminWinsSharedEmail(t *testing.T) {
	env := setupTestEnv(t)

	admin, info := env.adminClient(t, "acme", testCnpj)

	_, err := admin.createCollaborator(collaboratorParams{
		NationalID:   testCpfCommon,
		Name:         "Shared Email",
		Email:        "acme@mail.com",
		Password:     "collab_password1",
		UserKind:     "Common",
		DepartmentID: env.departmentId(t, "Engineering"),
		CompanyID:    info.Company.ID,
		RoleID:       env.roleId(t, "Analyst"),
	})
	if err != nil {
		t.Fatal(err)
	}

	c := env.newClient()
	if err := c.login("acme@mail.com", "admin_password123"); err != nil {
		t.Fatal(err)
	}
	if c.user.UserKind != "Admin" {
		t.Fatalf("shared email should resolve to admin, got %v", c.user.UserKind)
	}
}

func TestSignupRejectsDuplicates(t *testing.T) {
	env := setupTestEnv(t)

	c := env.newClient()
	if _, err := c.signup("admin", "acme@mail.com", "acme", testCnpj, "admin_password123"); err != nil {
		t.Fatal(err)
	}

	status, body, err := c.Post("/signup").Json(map[string]string{
		"name": "other", "email": "other@mail.com", "company": "other co",
		"tax_id": testCnpj, "password": "admin_password123",
	}).DoRaw()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusConflict || body["kind"] != "duplicate_value" {
		t.Fatalf("expected 409 duplicate_value for reused tax id, got %d %v", status, body)
	}

	status, _, err = c.Post("/signup").Json(map[string]string{
		"name": "other", "email": "acme@mail.com", "company": "other co",
		"tax_id": testCnpj2, "password": "admin_password123",
	}).DoRaw()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusConflict {
		t.Fatalf("expected 409 for reused email, got %d", status)
	}
}

func TestSignupRejectsInvalidTaxId(t *testing.T) {
	env := setupTestEnv(t)

	c := env.newClient()
	status, body, err := c.Post("/signup").Json(map[string]string{
		"name": "admin", "email": "acme@mail.com", "company": "acme",
		"tax_id": "11222333000100", "password": "admin_password123",
	}).DoRaw()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusBadRequest || body["kind"] != "validation_error" {
		t.Fatalf("expected 400 validation_error for bad tax id, got %d %v", status, body)
	}
}

func TestAdminPasswordChange(t *testing.T) {
	env := setupTestEnv(t)

	c, _ := env.adminClient(t, "acme", testCnpj)

	status, body, err := c.Put("/admins/password").Json(map[string]string{
		"old_password": "admin_password123", "new_password": "admin_password123",
	}).DoRaw()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusBadRequest || body["kind"] != "validation_error" {
		t.Fatalf("reusing the old password should fail, got %d %v", status, body)
	}

	err = c.Put("/admins/password").Json(map[string]string{
		"old_password": "admin_password123", "new_password": "new_password456",
	}).Do(nil)
	if err != nil {
		t.Fatal(err)
	}

	fresh := env.newClient()
	if err := fresh.login("acme@mail.com", "admin_password123"); err == nil {
		t.Fatal("old password should no longer work")
	}
	if err := fresh.login("acme@mail.com", "new_password456"); err != nil {
		t.Fatal(err)
	}
}

func TestRoutesRequireAuth(t *testing.T) {
	env := setupTestEnv(t)

	c := env.newClient()

	err := c.Get("/collaborators?company_id=1").Do(nil)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

// Auth rejections on protected routes must carry the uniform JSON error body,
// not plain text.
func TestAuthRejectionsAreJson(t *testing.T) {
	env := setupTestEnv(t)

	c := env.newClient()

	status, body, err := c.Get("/collaborators?company_id=1").Auth("garbage-token").DoRaw()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusUnauthorized || body["kind"] != "invalid_token" {
		t.Fatalf("expected 401 invalid_token body, got %d %v", status, body)
	}
	if body["message"] == "" {
		t.Fatalf("expected a message field, got %v", body)
	}

	status, body, err = c.Get("/collaborators?company_id=1").DoRaw()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusUnauthorized || body["kind"] != "invalid_token" {
		t.Fatalf("expected 401 invalid_token for missing token, got %d %v", status, body)
	}

	// Same secret as the test jwt manager, but already expired.
	expiredManager := auth.NewJwtManager([]byte("290zcv02ai249"), -time.Minute)
	expired, err := expiredManager.CreateSessionJwt(auth.Identity{Kind: auth.KindAdmin, ID: 1})
	if err != nil {
		t.Fatal(err)
	}

	status, body, err = c.Get("/collaborators?company_id=1").Auth(expired).DoRaw()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusUnauthorized || body["kind"] != "token_expired" {
		t.Fatalf("expected 401 token_expired, got %d %v", status, body)
	}
}

func TestKindGatingReturnsJson(t *testing.T) {
	env := setupTestEnv(t)

	admin, info := env.adminClient(t, "acme", testCnpj)

	_, err := admin.createCollaborator(collaboratorParams{
		NationalID:   testCpfExtra,
		Name:         "Gate Check",
		Email:        "gate@mail.com",
		Password:     "collab_password1",
		UserKind:     "Common",
		DepartmentID: env.departmentId(t, "Engineering"),
		CompanyID:    info.Company.ID,
		RoleID:       env.roleId(t, "Analyst"),
	})
	if err != nil {
		t.Fatal(err)
	}

	collaborator := env.newClient()
	if err := collaborator.login("gate@mail.com", "collab_password1"); err != nil {
		t.Fatal(err)
	}

	status, body, err := collaborator.Post("/tracks").Json(map[string]string{}).DoRaw()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusForbidden || body["kind"] != "ineligible_principal" {
		t.Fatalf("expected 403 ineligible_principal for collaborator, got %d %v", status, body)
	}

	status, body, err = admin.Put("/collaborators").Json(map[string]string{}).DoRaw()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusForbidden || body["kind"] != "ineligible_principal" {
		t.Fatalf("expected 403 ineligible_principal for admin, got %d %v", status, body)
	}
}
