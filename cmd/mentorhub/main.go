package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"mentorhub/platform/auth"
	"mentorhub/platform/config"
	"mentorhub/platform/schema"
	"mentorhub/platform/services"
	"mentorhub/platform/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	slogmulti "github.com/samber/slog-multi"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func postgresDsn(databaseUri string) string {
	parts, err := url.Parse(databaseUri)
	if err != nil {
		log.Fatalf("error parsing db uri: %v", err)
	}
	pwd, _ := parts.User.Password()
	dbname := strings.TrimPrefix(parts.Path, "/")
	return fmt.Sprintf("host=%v user=%v password=%v dbname=%v port=%v", parts.Hostname(), parts.User.Username(), pwd, dbname, parts.Port())
}

func initLogging(logFile *os.File) {
	logger := slog.New(slogmulti.Fanout(
		slog.NewJSONHandler(logFile, nil),
		slog.NewTextHandler(os.Stderr, nil),
	))
	slog.SetDefault(logger)
	slog.Info("logging initialized", "log_file", logFile.Name())
}

func initDb(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("error opening database connection: %v", err)
	}

	err = db.AutoMigrate(schema.AllModels()...)
	if err != nil {
		log.Fatalf("error migrating db schema: %v", err)
	}

	if err := schema.SeedCatalogs(db); err != nil {
		log.Fatalf("error seeding catalog tables: %v", err)
	}

	return db
}

func main() {
	env, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	err = os.MkdirAll(filepath.Join(env.ShareDir, "logs/"), 0777)
	if err != nil {
		log.Fatalf("error creating log dir: %v", err)
	}

	logFile, err := os.OpenFile(filepath.Join(env.ShareDir, "logs", env.LogFile), os.O_CREATE|os.O_APPEND|os.O_RDWR, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer logFile.Close()

	auditLog, err := os.OpenFile(filepath.Join(env.ShareDir, "logs/audit.log"), os.O_CREATE|os.O_APPEND|os.O_RDWR, 0666)
	if err != nil {
		log.Fatalf("error opening audit log file: %v", err)
	}
	defer auditLog.Close()

	initLogging(logFile)

	db := initDb(postgresDsn(env.DatabaseURI))

	sharedStorage := storage.NewSharedDisk(env.ShareDir)

	jwtManager := auth.NewJwtManager([]byte(env.JwtSecret), env.TokenExpiry)
	identityProvider := auth.NewIdentityProvider(db, jwtManager, auth.NewAuditLogger(auditLog))

	platform := services.NewPlatform(db, identityProvider, sharedStorage, services.Options{
		PdiRecheckActiveOnEdit: env.PdiRecheckActiveOnEdit,
	})

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Mount("/api", platform.Routes())

	slog.Info("starting server", "port", env.Port)
	err = http.ListenAndServe(fmt.Sprintf(":%d", env.Port), r)
	if err != nil {
		log.Fatalf("listen and serve returned error: %v", err.Error())
	}
}
