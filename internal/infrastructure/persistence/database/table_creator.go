// Package database provides schema instantiation
package database

import (
	"database/sql"
	"fmt"
)

// TableCreator handles the creation of the database schema.
type TableCreator struct{}

// NewTableCreator creates a new TableCreator.
func NewTableCreator() *TableCreator {
	return &TableCreator{}
}

// CreateSchema executes all necessary queries to build the database tables and indexes.
func (tc *TableCreator) CreateSchema(db *sql.DB) error {
	for _, tableSQL := range tables {
		if _, err := db.Exec(tableSQL); err != nil {
			return fmt.Errorf("failed to create table for query [%s]: %w", tableSQL, err)
		}
	}

	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index for query [%s]: %w", indexSQL, err)
		}
	}
	return nil
}

var tables = []string{
	`CREATE TABLE IF NOT EXISTS cache_entries (key TEXT PRIMARY KEY, value TEXT NOT NULL, hit_count INTEGER NOT NULL DEFAULT 0, expires_at TIMESTAMP NOT NULL, created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS cache_tags (key TEXT NOT NULL REFERENCES cache_entries(key) ON DELETE CASCADE, tag TEXT NOT NULL, PRIMARY KEY (key, tag))`,
	`CREATE TABLE IF NOT EXISTS clients (id TEXT PRIMARY KEY, name TEXT NOT NULL, slug TEXT NOT NULL UNIQUE, contact_name TEXT NOT NULL, contact_email TEXT NOT NULL, status TEXT NOT NULL DEFAULT 'active', created TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP, changed TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS client_configs (client_id TEXT PRIMARY KEY REFERENCES clients(id), branding_payload TEXT NOT NULL, features_payload TEXT NOT NULL, logo_path TEXT, locale TEXT NOT NULL DEFAULT 'en', changed TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS products (id TEXT PRIMARY KEY, client_id TEXT NOT NULL REFERENCES clients(id), title TEXT NOT NULL, slug TEXT NOT NULL UNIQUE, description TEXT, cover_image_path TEXT, status TEXT NOT NULL DEFAULT 'draft', created TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP, changed TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS modules (id TEXT PRIMARY KEY, product_id TEXT NOT NULL REFERENCES products(id), title TEXT NOT NULL, slug TEXT NOT NULL, ordinal INTEGER NOT NULL DEFAULT 0, status TEXT NOT NULL DEFAULT 'draft', created TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP, changed TIMESTAMP, UNIQUE(product_id, slug))`,
	`CREATE TABLE IF NOT EXISTS lessons (id TEXT PRIMARY KEY, module_id TEXT NOT NULL REFERENCES modules(id), title TEXT NOT NULL, kind TEXT NOT NULL, ordinal INTEGER NOT NULL DEFAULT 0, body TEXT, media_url TEXT, created TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP, changed TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS students (id TEXT PRIMARY KEY, client_id TEXT NOT NULL REFERENCES clients(id), first_name TEXT NOT NULL, last_name TEXT NOT NULL, email TEXT NOT NULL UNIQUE, password_hash TEXT NOT NULL, status TEXT NOT NULL DEFAULT 'active', created TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP, changed TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS enrollments (id TEXT PRIMARY KEY, student_id TEXT NOT NULL REFERENCES students(id), module_id TEXT NOT NULL REFERENCES modules(id), progress REAL NOT NULL DEFAULT 0, completed_at TIMESTAMP, created TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP, UNIQUE(student_id, module_id))`,
	`CREATE TABLE IF NOT EXISTS expert_sessions (id TEXT PRIMARY KEY, client_id TEXT NOT NULL REFERENCES clients(id), expert_name TEXT NOT NULL, topic TEXT NOT NULL, scheduled_at TIMESTAMP NOT NULL, duration_minutes INTEGER NOT NULL, status TEXT NOT NULL DEFAULT 'scheduled', recording_url TEXT, created TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP, changed TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS interviews (id TEXT PRIMARY KEY, student_id TEXT NOT NULL REFERENCES students(id), module_id TEXT NOT NULL REFERENCES modules(id), audio_url TEXT NOT NULL, transcript_id TEXT, transcript TEXT, score REAL, feedback TEXT, status TEXT NOT NULL DEFAULT 'submitted', created TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP, graded_at TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS activity_events (id TEXT PRIMARY KEY, client_id TEXT NOT NULL REFERENCES clients(id), student_id TEXT REFERENCES students(id), object_id TEXT NOT NULL, object_type TEXT NOT NULL, verb TEXT NOT NULL, created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_cache_entries_expires_at ON cache_entries(expires_at)`,
	`CREATE INDEX IF NOT EXISTS idx_cache_tags_tag ON cache_tags(tag)`,
	`CREATE INDEX IF NOT EXISTS idx_clients_slug ON clients(slug)`,
	`CREATE INDEX IF NOT EXISTS idx_products_client_id ON products(client_id)`,
	`CREATE INDEX IF NOT EXISTS idx_products_slug ON products(slug)`,
	`CREATE INDEX IF NOT EXISTS idx_modules_product_id ON modules(product_id)`,
	`CREATE INDEX IF NOT EXISTS idx_modules_ordinal ON modules(ordinal)`,
	`CREATE INDEX IF NOT EXISTS idx_lessons_module_id ON lessons(module_id)`,
	`CREATE INDEX IF NOT EXISTS idx_students_client_id ON students(client_id)`,
	`CREATE INDEX IF NOT EXISTS idx_students_email ON students(email)`,
	`CREATE INDEX IF NOT EXISTS idx_enrollments_student_id ON enrollments(student_id)`,
	`CREATE INDEX IF NOT EXISTS idx_enrollments_module_id ON enrollments(module_id)`,
	`CREATE INDEX IF NOT EXISTS idx_expert_sessions_client_id ON expert_sessions(client_id)`,
	`CREATE INDEX IF NOT EXISTS idx_expert_sessions_scheduled_at ON expert_sessions(scheduled_at)`,
	`CREATE INDEX IF NOT EXISTS idx_interviews_student_id ON interviews(student_id)`,
	`CREATE INDEX IF NOT EXISTS idx_interviews_module_id ON interviews(module_id)`,
	`CREATE INDEX IF NOT EXISTS idx_interviews_status ON interviews(status)`,
	`CREATE INDEX IF NOT EXISTS idx_activity_events_client_id ON activity_events(client_id)`,
	`CREATE INDEX IF NOT EXISTS idx_activity_events_object ON activity_events(object_id, object_type)`,
	`CREATE INDEX IF NOT EXISTS idx_activity_events_created_at ON activity_events(created_at)`,
}
