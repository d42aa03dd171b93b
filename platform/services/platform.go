package services

import (
	"log"
	"net/http"
	"os"

	"mentorhub/platform/auth"
	"mentorhub/platform/storage"
	"mentorhub/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Platform aggregates all resource services behind one router.
type Platform struct {
	auth         AuthService
	admin        AdminService
	collaborator CollaboratorService
	company      CompanyService
	catalog      CatalogService
	track        TrackService
	pdi          PdiService
	stats        StatsService

	db *gorm.DB
}

type Options struct {
	PdiRecheckActiveOnEdit bool
}

func NewPlatform(db *gorm.DB, userAuth *auth.IdentityProvider, store storage.Storage, opts Options) Platform {
	return Platform{
		auth:         AuthService{db: db, userAuth: userAuth},
		admin:        AdminService{db: db, userAuth: userAuth, storage: store},
		collaborator: CollaboratorService{db: db, userAuth: userAuth, storage: store},
		company:      CompanyService{db: db, userAuth: userAuth},
		catalog:      CatalogService{db: db, userAuth: userAuth},
		track:        TrackService{db: db, userAuth: userAuth},
		pdi:          PdiService{db: db, userAuth: userAuth, recheckActiveOnEdit: opts.PdiRecheckActiveOnEdit},
		stats:        StatsService{db: db, userAuth: userAuth, storage: store},
		db:           db,
	}
}

func (p *Platform) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger: log.New(os.Stderr, "", log.LstdFlags), NoColor: false,
	}))

	r.Post("/signup", p.admin.Signup)
	r.Get("/photos/{company_id}/{filename}", p.admin.ServePhoto)

	r.Mount("/auth", p.auth.Routes())
	r.Mount("/admins", p.admin.Routes())
	r.Mount("/collaborators", p.collaborator.Routes())
	r.Mount("/companies", p.company.Routes())
	r.Mount("/", p.catalog.Routes())
	r.Mount("/tracks", p.track.Routes())
	r.Mount("/pdis", p.pdi.Routes())
	r.Mount("/stats", p.stats.Routes())

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteSuccess(w)
	})

	return r
}
