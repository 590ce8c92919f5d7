package store

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates every table the Postgres stores use. It is idempotent.
//
//go:embed schema.sql
var Schema string

// RequiredProfileColumns must exist on the profiles table for the service to be ready.
var RequiredProfileColumns = []string{"id", "username", "name", "interests", "created_at", "updated_at"}

// MissingColumns returns the required columns absent from have, sorted.
func MissingColumns(have []string, required []string) []string {
	set := make(map[string]struct{}, len(have))
	for _, c := range have {
		set[strings.ToLower(c)] = struct{}{}
	}
	var missing []string
	for _, c := range required {
		if _, ok := set[c]; !ok {
			missing = append(missing, c)
		}
	}
	sort.Strings(missing)
	return missing
}

// CheckSchema verifies that the profiles table carries the expected columns.
func CheckSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const q = `SELECT column_name FROM information_schema.columns
	           WHERE table_schema = current_schema() AND table_name = 'profiles'`
	rows, err := pool.Query(ctx, q)
	if err != nil {
		return fmt.Errorf("schema check: %w", err)
	}
	defer rows.Close()

	var have []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return fmt.Errorf("schema check: %w", err)
		}
		have = append(have, c)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("schema check: %w", err)
	}
	if missing := MissingColumns(have, RequiredProfileColumns); len(missing) > 0 {
		return fmt.Errorf("profiles table is missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}
