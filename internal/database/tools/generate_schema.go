//go:build ignore

package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rawdb/internal/database"
	"rawdb/internal/database/migrations"
)

// Regenerates internal/database/schema.go by applying all migrations to an
// in-memory database and extracting the resulting schema from sqlite_master.
func main() {
	db, err := database.OpenConnection(":memory:")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := migrations.Up(db); err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}

	schema, err := extractSchema(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to extract schema: %v\n", err)
		os.Exit(1)
	}

	var out strings.Builder
	out.WriteString("// Code generated by internal/database/tools/generate_schema.go. DO NOT EDIT.\n\n")
	out.WriteString("package database\n\n")
	out.WriteString("// Schema is the full current schema, extracted from an in-memory database\n")
	out.WriteString("// after applying all migrations. Tests use it to build stores without\n")
	out.WriteString("// running the migration machinery.\n")
	out.WriteString("const Schema = `" + schema + "`\n")

	outPath := filepath.Join("internal", "database", "schema.go")
	if err := os.WriteFile(outPath, []byte(out.String()), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write schema file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s from migrations\n", outPath)
}

// extractSchema pulls CREATE statements from sqlite_master, excluding SQLite
// internals and the migration tracking table, tables before indexes.
func extractSchema(db *sql.DB) (string, error) {
	query := `
		SELECT sql || ';'
		FROM sqlite_master
		WHERE type IN ('table', 'index')
		  AND sql IS NOT NULL
		  AND name NOT LIKE 'sqlite_%'
		  AND name != 'schema_migrations'
		  AND tbl_name != 'schema_migrations'
		ORDER BY
		  CASE type WHEN 'table' THEN 0 ELSE 1 END,
		  rootpage`

	rows, err := db.Query(query)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var sb strings.Builder
	for rows.Next() {
		var stmt string
		if err := rows.Scan(&stmt); err != nil {
			return "", err
		}
		sb.WriteString(stmt)
		sb.WriteString("\n")
	}
	return sb.String(), rows.Err()
}
