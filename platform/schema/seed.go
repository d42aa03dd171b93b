package schema

import (
	_ "embed"
	"fmt"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed seed_data.yaml
var seedData []byte

type seedRole struct {
	Name       string `yaml:"name"`
	MenteeOnly bool   `yaml:"mentee_only"`
}

type seedCatalog struct {
	Departments []string   `yaml:"departments"`
	Roles       []seedRole `yaml:"roles"`
	TrackTypes  []string   `yaml:"track_types"`
	Deadlines   []string   `yaml:"deadlines"`
}

// SeedCatalogs loads the shared lookup tables (departments, roles, track
// types, deadlines) from the embedded catalog. Each table is only populated
// when empty, so reruns and restarts are no-ops.
func SeedCatalogs(db *gorm.DB) error {
	var catalog seedCatalog
	if err := yaml.Unmarshal(seedData, &catalog); err != nil {
		return fmt.Errorf("error parsing embedded catalog seeds: %w", err)
	}

	return db.Transaction(func(txn *gorm.DB) error {
		if empty, err := tableEmpty[Department](txn); err != nil {
			return err
		} else if empty {
			departments := lo.Map(catalog.Departments, func(name string, _ int) Department {
				return Department{Name: name}
			})
			if err := txn.Create(&departments).Error; err != nil {
				return fmt.Errorf("error seeding departments: %w", err)
			}
		}

		if empty, err := tableEmpty[Role](txn); err != nil {
			return err
		} else if empty {
			roles := lo.Map(catalog.Roles, func(role seedRole, _ int) Role {
				return Role{Name: role.Name, MenteeOnly: role.MenteeOnly}
			})
			if err := txn.Create(&roles).Error; err != nil {
				return fmt.Errorf("error seeding roles: %w", err)
			}
		}

		if empty, err := tableEmpty[TrackType](txn); err != nil {
			return err
		} else if empty {
			trackTypes := lo.Map(catalog.TrackTypes, func(name string, _ int) TrackType {
				return TrackType{Name: name}
			})
			if err := txn.Create(&trackTypes).Error; err != nil {
				return fmt.Errorf("error seeding track types: %w", err)
			}
		}

		if empty, err := tableEmpty[Deadline](txn); err != nil {
			return err
		} else if empty {
			deadlines := lo.Map(catalog.Deadlines, func(label string, _ int) Deadline {
				return Deadline{Label: label}
			})
			if err := txn.Create(&deadlines).Error; err != nil {
				return fmt.Errorf("error seeding deadlines: %w", err)
			}
		}

		return nil
	})
}

func tableEmpty[T any](db *gorm.DB) (bool, error) {
	var count int64
	if err := db.Model(new(T)).Count(&count).Error; err != nil {
		return false, fmt.Errorf("error counting rows for seed check: %w", err)
	}
	return count == 0, nil
}
