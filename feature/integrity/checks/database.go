package checks

import (
	"fmt"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// DatabaseReport lists the expected tables and whether they exist.
type DatabaseReport struct {
	Dialect string          `json:"dialect"`
	Tables  map[string]bool `json:"tables"`
	Missing []string        `json:"missing"`
	Fixed   []string        `json:"fixed,omitempty"`
}

// CheckSchema verifies that every model has its table and migrates missing ones
// when fix is set.
func CheckSchema(db *gorm.DB, fix bool, models ...schema.Tabler) (*DatabaseReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &DatabaseReport{
		Dialect: db.Dialector.Name(),
		Tables:  map[string]bool{},
		Missing: []string{},
	}
	migrator := db.Migrator()
	for _, model := range models {
		name := model.TableName()
		ok := migrator.HasTable(model)
		if !ok && fix {
			if err := migrator.AutoMigrate(model); err != nil {
				return nil, fmt.Errorf("failed to migrate %s: %w", name, err)
			}
			report.Fixed = append(report.Fixed, name)
			ok = true
		}
		report.Tables[name] = ok
		if !ok {
			report.Missing = append(report.Missing, name)
		}
	}
	sort.Strings(report.Missing)
	return report, nil
}
