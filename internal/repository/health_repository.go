package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// requiredTables are the persisted tables the calendar system depends on.
var requiredTables = []string{
	"calendar_uploads",
	"calendar_events",
	"parsing_logs",
	"calendar_settings",
	"student_requests",
}

// HealthRepository probes the relational store for the system validation
// endpoint.
type HealthRepository struct {
	db *sqlx.DB
}

// NewHealthRepository constructs a health repository.
func NewHealthRepository(db *sqlx.DB) *HealthRepository {
	return &HealthRepository{db: db}
}

// CheckTables probes each required table with a cheap existence query and
// returns the names of tables that could not be reached.
func (r *HealthRepository) CheckTables(ctx context.Context) []string {
	var missing []string
	for _, table := range requiredTables {
		query := fmt.Sprintf("SELECT 1 FROM %s LIMIT 1", table)
		rows, err := r.db.QueryContext(ctx, query)
		if err != nil {
			missing = append(missing, table)
			continue
		}
		rows.Close()
	}
	return missing
}
