package tests

import (
	"fmt"
	"net/http"
	"testing"

	"mentorhub/platform/schema"
)

func TestCompanyCrud(t *testing.T) {
	env := setupTestEnv(t)

	admin, _ := env.adminClient(t, "acme", testCnpj)

	var company schema.Company
	err := admin.Post("/companies").Json(map[string]string{
		"legal_name": "subsidiary", "tax_id": testCnpj2,
	}).Do(&company)
	if err != nil {
		t.Fatal(err)
	}

	var companies []schema.Company
	if err := admin.Get("/companies").Do(&companies); err != nil {
		t.Fatal(err)
	}
	if len(companies) != 2 {
		t.Fatalf("expected 2 companies, got %d", len(companies))
	}

	err = admin.Put(fmt.Sprintf("/companies/%d", company.ID)).Json(map[string]string{
		"legal_name": "subsidiary renamed", "tax_id": testCnpj2,
	}).Do(nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := admin.Delete(fmt.Sprintf("/companies/%d", company.ID)).Do(nil); err != nil {
		t.Fatal(err)
	}

	if err := admin.Get("/companies").Do(&companies); err != nil {
		t.Fatal(err)
	}
	if len(companies) != 1 {
		t.Fatalf("expected 1 company after delete, got %d", len(companies))
	}
}

func TestDepartmentCrud(t *testing.T) {
	env := setupTestEnv(t)

	admin, _ := env.adminClient(t, "acme", testCnpj)

	var department schema.Department
	err := admin.Post("/departments").Json(map[string]string{"name": "Research"}).Do(&department)
	if err != nil {
		t.Fatal(err)
	}

	status, body, err := admin.Post("/departments").Json(map[string]string{"name": "Research"}).DoRaw()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusForbidden || body["kind"] != "duplicate_value" {
		t.Fatalf("expected 403 duplicate_value for duplicate department, got %d %v", status, body)
	}

	err = admin.Put(fmt.Sprintf("/departments/%d", department.ID)).Json(map[string]string{"name": "R&D"}).Do(nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := admin.Delete(fmt.Sprintf("/departments/%d", department.ID)).Do(nil); err != nil {
		t.Fatal(err)
	}
}

func TestCatalogLists(t *testing.T) {
	env := setupTestEnv(t)

	admin, _ := env.adminClient(t, "acme", testCnpj)

	var roles []schema.Role
	if err := admin.Get("/roles").Do(&roles); err != nil {
		t.Fatal(err)
	}

	menteeOnly := map[string]bool{}
	for _, role := range roles {
		menteeOnly[role.Name] = role.MenteeOnly
	}
	if !menteeOnly["Apprentice"] || !menteeOnly["Intern"] {
		t.Fatalf("apprentice and intern roles should be mentee-only: %v", menteeOnly)
	}
	if menteeOnly["Analyst"] {
		t.Fatal("analyst role should not be mentee-only")
	}

	var trackTypes []schema.TrackType
	if err := admin.Get("/track-types").Do(&trackTypes); err != nil {
		t.Fatal(err)
	}
	if len(trackTypes) == 0 {
		t.Fatal("expected seeded track types")
	}

	var deadlines []schema.Deadline
	if err := admin.Get("/deadlines").Do(&deadlines); err != nil {
		t.Fatal(err)
	}
	if len(deadlines) != 4 {
		t.Fatalf("expected 4 seeded deadlines, got %d", len(deadlines))
	}
}

func TestCompanyStats(t *testing.T) {
	env := setupTestEnv(t)
	f := setupPdiFixtures(t, env)

	_, err := f.admin.createPdi(pdiParams{TrackID: f.track.ID, MentorID: f.mentor, MenteeID: f.mentee})
	if err != nil {
		t.Fatal(err)
	}

	var stats map[string]int64
	err = f.admin.Get(fmt.Sprintf("/stats/company?company_id=%d", f.admin.user.CompanyID)).Do(&stats)
	if err != nil {
		t.Fatal(err)
	}

	if stats["collaborators"] != 4 {
		t.Fatalf("expected 4 collaborators, got %d", stats["collaborators"])
	}
	if stats["apprentices"] != 1 || stats["interns"] != 1 {
		t.Fatalf("unexpected role counts: %v", stats)
	}
	if stats["mentors"] != 1 || stats["mentees"] != 2 {
		t.Fatalf("unexpected kind counts: %v", stats)
	}
	if stats["active_plans"] != 1 {
		t.Fatalf("expected 1 active plan, got %d", stats["active_plans"])
	}
}

func TestDepartmentStats(t *testing.T) {
	env := setupTestEnv(t)
	f := setupPdiFixtures(t, env)

	_, err := f.admin.createPdi(pdiParams{TrackID: f.track.ID, MentorID: f.mentor, MenteeID: f.mentee})
	if err != nil {
		t.Fatal(err)
	}

	var stats map[string]int64
	endpoint := fmt.Sprintf("/stats/department?company_id=%d&department_id=%d&mentor_id=%d",
		f.admin.user.CompanyID, env.departmentId(t, "Engineering"), f.mentor)
	if err := f.admin.Get(endpoint).Do(&stats); err != nil {
		t.Fatal(err)
	}

	if stats["apprentices"] != 1 || stats["interns"] != 1 || stats["mentors"] != 1 {
		t.Fatalf("unexpected department stats: %v", stats)
	}
	if stats["mentor_mentees"] != 1 {
		t.Fatalf("expected 1 mentee for mentor, got %d", stats["mentor_mentees"])
	}
}
