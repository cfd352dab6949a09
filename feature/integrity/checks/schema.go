package checks

import (
	"fmt"
	"sort"
	"sync"

	"emby-tagger/core/database"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// SchemaReport is the result of comparing the database with the models.
type SchemaReport struct {
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

// TableReport lists what one table lacks.
type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	Status         string   `json:"status"` // "ok", "missing", "error"
}

// ExpectedColumns resolves the table and column names gorm derives for
// each model, join tables included.
func ExpectedColumns(db *gorm.DB, models ...any) (map[string][]string, error) {
	cache := &sync.Map{}
	tables := make(map[string][]string)

	for _, model := range models {
		s, err := schema.Parse(model, cache, db.NamingStrategy)
		if err != nil {
			return nil, fmt.Errorf("failed to parse model %T: %w", model, err)
		}
		tables[s.Table] = append([]string(nil), s.DBNames...)

		for _, rel := range s.Relationships.Many2Many {
			if rel.JoinTable == nil {
				continue
			}
			tables[rel.JoinTable.Table] = append([]string(nil), rel.JoinTable.DBNames...)
		}
	}
	return tables, nil
}

// CheckSchema verifies that every table and column the models need exists.
func CheckSchema(db *gorm.DB, models ...any) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	expected, err := ExpectedColumns(db, models...)
	if err != nil {
		return nil, err
	}

	report := &SchemaReport{
		Matched: true,
		Tables:  make(map[string]TableReport, len(expected)),
		Errors:  []string{},
	}

	names := make([]string, 0, len(expected))
	for name := range expected {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, table := range names {
		columns := expected[table]
		missing, err := database.MissingColumns(db, table, columns)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", table, err))
			report.Tables[table] = TableReport{MissingColumns: []string{}, Status: "error"}
			report.Matched = false
			continue
		}

		tbl := TableReport{MissingColumns: missing, Status: "ok"}
		switch {
		case len(missing) == len(columns):
			tbl.Status = "missing"
			report.Matched = false
		case len(missing) > 0:
			tbl.Status = "error"
			report.Matched = false
		}
		report.Tables[table] = tbl
	}

	return report, nil
}
