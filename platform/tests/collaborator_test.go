package tests

import (
	"net/http"
	"testing"
)

func TestCreateCollaboratorAndLogin(t *testing.T) {
	env := setupTestEnv(t)

	admin, info := env.adminClient(t, "acme", testCnpj)

	created, err := admin.createCollaborator(collaboratorParams{
		NationalID:   testCpfMentor,
		Name:         "Maya Mentor",
		Email:        "maya@mail.com",
		Password:     "collab_password1",
		UserKind:     "Mentor",
		DepartmentID: env.departmentId(t, "Engineering"),
		CompanyID:    info.Company.ID,
		RoleID:       env.roleId(t, "Specialist"),
	})
	if err != nil {
		t.Fatal(err)
	}

	if created.UserKind != "Mentor" || created.RoleName != "Specialist" || created.DepartmentName != "Engineering" {
		t.Fatalf("unexpected collaborator view: %+v", created)
	}

	c := env.newClient()
	if err := c.login("maya@mail.com", "collab_password1"); err != nil {
		t.Fatal(err)
	}
	if c.user.UserKind != "Mentor" || c.user.NationalID != testCpfMentor {
		t.Fatalf("unexpected session for collaborator: %+v", c.user)
	}
	if c.user.CompanyName != "acme" {
		t.Fatalf("expected company name in session, got %v", c.user.CompanyName)
	}
}

func TestRoleKindCoupling(t *testing.T) {
	env := setupTestEnv(t)

	admin, info := env.adminClient(t, "acme", testCnpj)

	base := collaboratorParams{
		NationalID:   testCpfMentee,
		Name:         "Ana Apprentice",
		Email:        "ana@mail.com",
		Password:     "collab_password1",
		DepartmentID: env.departmentId(t, "Engineering"),
		CompanyID:    info.Company.ID,
	}

	// Mentee-only role with a non-mentee kind.
	params := base
	params.UserKind = "Mentor"
	params.RoleID = env.roleId(t, "Apprentice")
	status, body, err := admin.Post("/collaborators").Json(params).DoRaw()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusBadRequest || body["kind"] != "role_kind_mismatch" {
		t.Fatalf("expected 400 role_kind_mismatch, got %d %v", status, body)
	}

	// Mentee kind with a role that is not mentee-only.
	params = base
	params.UserKind = "Mentee"
	params.RoleID = env.roleId(t, "Analyst")
	status, body, err = admin.Post("/collaborators").Json(params).DoRaw()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusBadRequest || body["kind"] != "role_kind_mismatch" {
		t.Fatalf("expected 400 role_kind_mismatch, got %d %v", status, body)
	}

	// The matching pair is accepted.
	params = base
	params.UserKind = "Mentee"
	params.RoleID = env.roleId(t, "Apprentice")
	if _, err := admin.createCollaborator(params); err != nil {
		t.Fatal(err)
	}
}

func TestRoleKindCouplingOnAdminEdit(t *testing.T) {
	env := setupTestEnv(t)

	admin, info := env.adminClient(t, "acme", testCnpj)

	created, err := admin.createCollaborator(collaboratorParams{
		NationalID:   testCpfMentee,
		Name:         "Ana Apprentice",
		Email:        "ana@mail.com",
		Password:     "collab_password1",
		UserKind:     "Mentee",
		DepartmentID: env.departmentId(t, "Engineering"),
		CompanyID:    info.Company.ID,
		RoleID:       env.roleId(t, "Apprentice"),
	})
	if err != nil {
		t.Fatal(err)
	}

	status, body, err := admin.Put("/collaborators/admin").Json(map[string]interface{}{
		"collaborator_id": created.ID,
		"name":            "Ana Apprentice",
		"email":           "ana@mail.com",
		"user_kind":       "Common",
		"department_id":   env.departmentId(t, "Engineering"),
		"role_id":         env.roleId(t, "Apprentice"),
		"status":          1,
	}).DoRaw()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusBadRequest || body["kind"] != "role_kind_mismatch" {
		t.Fatalf("expected 400 role_kind_mismatch on edit, got %d %v", status, body)
	}
}

func TestCollaboratorInvalidCpf(t *testing.T) {
	env := setupTestEnv(t)

	admin, info := env.adminClient(t, "acme", testCnpj)

	status, body, err := admin.Post("/collaborators").Json(collaboratorParams{
		NationalID:   "11111111111",
		Name:         "Bad Cpf",
		Email:        "bad@mail.com",
		Password:     "collab_password1",
		UserKind:     "Common",
		DepartmentID: env.departmentId(t, "Engineering"),
		CompanyID:    info.Company.ID,
		RoleID:       env.roleId(t, "Analyst"),
	}).DoRaw()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusBadRequest || body["kind"] != "validation_error" {
		t.Fatalf("expected 400 validation_error, got %d %v", status, body)
	}
}

func TestCollaboratorDuplicates(t *testing.T) {
	env := setupTestEnv(t)

	admin, info := env.adminClient(t, "acme", testCnpj)

	params := collaboratorParams{
		NationalID:   testCpfCommon,
		Name:         "First",
		Email:        "first@mail.com",
		Password:     "collab_password1",
		UserKind:     "Common",
		DepartmentID: env.departmentId(t, "Engineering"),
		CompanyID:    info.Company.ID,
		RoleID:       env.roleId(t, "Analyst"),
	}
	if _, err := admin.createCollaborator(params); err != nil {
		t.Fatal(err)
	}

	dup := params
	dup.Email = "second@mail.com"
	status, body, err := admin.Post("/collaborators").Json(dup).DoRaw()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusConflict || body["kind"] != "duplicate_value" {
		t.Fatalf("expected 409 duplicate_value for reused national id, got %d %v", status, body)
	}

	dup = params
	dup.NationalID = testCpfExtra
	status, _, err = admin.Post("/collaborators").Json(dup).DoRaw()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusConflict {
		t.Fatalf("expected 409 for reused email, got %d", status)
	}
}

func TestCollaboratorKindLists(t *testing.T) {
	env := setupTestEnv(t)

	admin, info := env.adminClient(t, "acme", testCnpj)

	fixtures := []struct {
		cpf, name, email, kind, role string
	}{
		{testCpfMentor, "Maya Mentor", "maya@mail.com", "Mentor", "Specialist"},
		{testCpfMentee, "Ana Apprentice", "ana@mail.com", "Mentee", "Apprentice"},
		{testCpfCommon, "Carl Common", "carl@mail.com", "Common", "Analyst"},
	}
	for _, f := range fixtures {
		_, err := admin.createCollaborator(collaboratorParams{
			NationalID:   f.cpf,
			Name:         f.name,
			Email:        f.email,
			Password:     "collab_password1",
			UserKind:     f.kind,
			DepartmentID: env.departmentId(t, "Engineering"),
			CompanyID:    info.Company.ID,
			RoleID:       env.roleId(t, f.role),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	mentors, err := admin.listMentors(info.Company.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(mentors) != 1 || mentors[0].Name != "Maya Mentor" {
		t.Fatalf("unexpected mentors list: %+v", mentors)
	}

	mentees, err := admin.listMentees(info.Company.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(mentees) != 1 || mentees[0].Name != "Ana Apprentice" {
		t.Fatalf("unexpected mentees list: %+v", mentees)
	}
}
