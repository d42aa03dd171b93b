package tests

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mentorhub/platform/auth"
	"mentorhub/platform/schema"
	"mentorhub/platform/services"
	"mentorhub/platform/storage"

	"github.com/go-chi/chi/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	platform services.Platform
	api      chi.Router
	db       *gorm.DB
	storage  storage.Storage
}

// Checksum-valid Brazilian registry numbers for test fixtures.
const (
	testCnpj  = "11222333000181"
	testCnpj2 = "45399755000149"

	testCpfMentor  = "52998224725"
	testCpfMentee  = "11144477735"
	testCpfMentee2 = "12345678909"
	testCpfCommon  = "39053344705"
	testCpfExtra   = "76543219882"
)

func setupTestEnv(t *testing.T) *testEnv {
	return setupTestEnvWithOptions(t, services.Options{})
}

func setupTestEnvWithOptions(t *testing.T, opts services.Options) *testEnv {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatal(err)
	}

	err = db.AutoMigrate(schema.AllModels()...)
	if err != nil {
		t.Fatal(err)
	}

	if err := schema.SeedCatalogs(db); err != nil {
		t.Fatal(err)
	}

	storagePath := filepath.Join(t.TempDir(), "storage")
	err = os.MkdirAll(storagePath, 0777)
	if err != nil {
		t.Fatalf("error creating storage directory: %v", err)
	}

	store := storage.NewSharedDisk(storagePath)

	jwtManager := auth.NewJwtManager([]byte("290zcv02ai249"), time.Hour)
	userAuth := auth.NewIdentityProvider(db, jwtManager, auth.NewAuditLogger(new(bytes.Buffer)))

	platform := services.NewPlatform(db, userAuth, store, opts)

	return &testEnv{platform: platform, api: platform.Routes(), db: db, storage: store}
}

func (t *testEnv) newClient() client {
	return client{api: t.api}
}

// adminClient signs up a fresh company and logs in as its admin.
func (t *testEnv) adminClient(tt *testing.T, company, taxId string) (client, companyInfo) {
	c := t.newClient()

	info, err := c.signup(company+" admin", company+"@mail.com", company, taxId, "admin_password123")
	if err != nil {
		tt.Fatal(err)
	}

	err = c.login(company+"@mail.com", "admin_password123")
	if err != nil {
		tt.Fatal(err)
	}

	return c, info
}

// lookupIds resolves seeded catalog rows by name so tests do not depend on
// insertion order.
func (t *testEnv) roleId(tt *testing.T, name string) uint {
	var role schema.Role
	if err := t.db.First(&role, "name = ?", name).Error; err != nil {
		tt.Fatal(err)
	}
	return role.ID
}

func (t *testEnv) departmentId(tt *testing.T, name string) uint {
	var department schema.Department
	if err := t.db.First(&department, "name = ?", name).Error; err != nil {
		tt.Fatal(err)
	}
	return department.ID
}

func (t *testEnv) trackTypeId(tt *testing.T, name string) uint {
	var trackType schema.TrackType
	if err := t.db.First(&trackType, "name = ?", name).Error; err != nil {
		tt.Fatal(err)
	}
	return trackType.ID
}

func (t *testEnv) deadlineId(tt *testing.T, label string) uint {
	var deadline schema.Deadline
	if err := t.db.First(&deadline, "label = ?", label).Error; err != nil {
		tt.Fatal(err)
	}
	return deadline.ID
}
