package main

import (
	"fmt"
	"log"
	"net/url"
	"strings"

	"mentorhub/platform/config"
	"mentorhub/platform/schema"

	"github.com/go-gormigrate/gormigrate/v2"
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

func migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "0_initial_schema",
			Migrate: func(txn *gorm.DB) error {
				return txn.AutoMigrate(schema.AllModels()...)
			},
			Rollback: func(txn *gorm.DB) error {
				for _, model := range schema.AllModels() {
					if err := txn.Migrator().DropTable(model); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			ID: "1_seed_catalogs",
			Migrate: func(txn *gorm.DB) error {
				return schema.SeedCatalogs(txn)
			},
		},
	}
}

func main() {
	env, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	db, err := gorm.Open(postgres.Open(postgresDsn(env.DatabaseURI)), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("error opening database connection: %v", err)
	}

	m := gormigrate.New(db, gormigrate.DefaultOptions, migrations())

	if err := m.Migrate(); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	log.Println("migrations applied successfully")
}
