package tests

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"testing"
)

func uploadPhoto(t *testing.T, c client, endpoint, filename, content string) string {
	body := new(bytes.Buffer)
	form := multipart.NewWriter(body)

	part, err := form.CreateFormFile("photo", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := form.Close(); err != nil {
		t.Fatal(err)
	}

	var res map[string]string
	err = c.Post(endpoint).Header("Content-Type", form.FormDataContentType()).Body(body).Do(&res)
	if err != nil {
		t.Fatal(err)
	}
	if res["photo"] == "" {
		t.Fatal("upload returned no photo path")
	}
	return res["photo"]
}

func TestPhotoUploadAndDownload(t *testing.T) {
	env := setupTestEnv(t)

	admin, _ := env.adminClient(t, "acme", testCnpj)

	first := uploadPhoto(t, admin, "/admins/photo", "avatar.png", "first photo bytes")

	// Stored photos are served without authentication, like a static dir.
	anon := env.newClient()
	status, _, err := anon.Get("/" + first).DoRaw()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusOK {
		t.Fatalf("expected 200 serving photo, got %d", status)
	}

	// Re-uploading stores a fresh file and removes the replaced one.
	second := uploadPhoto(t, admin, "/admins/photo", "avatar.jpg", "second photo bytes")
	if second == first {
		t.Fatal("replacement photo should get a fresh name")
	}

	if exists, err := env.storage.Exists(first); err != nil || exists {
		t.Fatalf("replaced photo should be deleted, exists=%v err=%v", exists, err)
	}
	if exists, err := env.storage.Exists(second); err != nil || !exists {
		t.Fatalf("new photo should be stored, exists=%v err=%v", exists, err)
	}
}

func TestPhotoNotFound(t *testing.T) {
	env := setupTestEnv(t)

	anon := env.newClient()
	status, body, err := anon.Get("/photos/1/no-such-photo.png").DoRaw()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusNotFound || body["kind"] != "invalid_reference" {
		t.Fatalf("expected 404 invalid_reference for missing photo, got %d %v", status, body)
	}
}

func TestStorageStats(t *testing.T) {
	env := setupTestEnv(t)

	admin, _ := env.adminClient(t, "acme", testCnpj)

	var stats struct {
		Location   string `json:"location"`
		TotalBytes uint64 `json:"total_bytes"`
		FreeBytes  uint64 `json:"free_bytes"`
	}
	if err := admin.Get("/stats/storage").Do(&stats); err != nil {
		t.Fatal(err)
	}
	if stats.Location == "" {
		t.Fatal("expected storage location")
	}
	if stats.TotalBytes == 0 {
		t.Fatal("expected nonzero total bytes")
	}
}
