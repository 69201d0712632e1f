// Package db embeds the SQL schema applied at startup.
package db

import _ "embed"

// Schema holds the DDL for every table and index. RunMigrations executes it
// verbatim on boot, so each statement must be idempotent (IF NOT EXISTS).
//
//go:embed migrations/001_schema.sql
var Schema string
