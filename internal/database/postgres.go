package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

var PostgresDB *sql.DB

// ConnectPostgres connects to PostgreSQL database
func ConnectPostgres(postgresURI string) error {
	var err error

	PostgresDB, err = sql.Open("postgres", postgresURI)
	if err != nil {
		return err
	}

	// Set connection pool settings
	PostgresDB.SetMaxOpenConns(25)
	PostgresDB.SetMaxIdleConns(5)
	PostgresDB.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	if err = PostgresDB.Ping(); err != nil {
		return err
	}

	log.Println("✅ Connected to PostgreSQL")

	// Initialize tables
	if err = InitPostgresTables(); err != nil {
		return err
	}

	return nil
}

// InitPostgresTables creates all necessary tables if they don't exist
func InitPostgresTables() error {
	queries := []string{
		// Users table. Rows are created by the identity sync job, never here.
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			external_id VARCHAR(255) NOT NULL UNIQUE,
			email VARCHAR(255),
			name VARCHAR(255),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		// Collections table
		`CREATE TABLE IF NOT EXISTS collections (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			name VARCHAR(255) NOT NULL,
			description TEXT,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			UNIQUE(user_id, name)
		)`,

		// Entries table. Deleting a collection deletes its entries (product
		// decision: collections own their entries outright).
		`CREATE TABLE IF NOT EXISTS entries (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			title VARCHAR(255) NOT NULL,
			content TEXT NOT NULL,
			mood VARCHAR(50) NOT NULL,
			mood_score INTEGER NOT NULL,
			mood_image_url TEXT,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			collection_id UUID REFERENCES collections(id) ON DELETE CASCADE
		)`,

		// Drafts table. UNIQUE(user_id) enforces the one-draft-per-user
		// invariant; writes upsert on that key.
		`CREATE TABLE IF NOT EXISTS drafts (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title VARCHAR(255),
			content TEXT,
			mood VARCHAR(50),
			UNIQUE(user_id)
		)`,

		// Create indexes for better performance
		`CREATE INDEX IF NOT EXISTS idx_users_external_id ON users(external_id)`,
		`CREATE INDEX IF NOT EXISTS idx_collections_user_id ON collections(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_collections_created_at ON collections(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_user_id ON entries(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_collection_id ON entries(collection_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_created_at ON entries(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_mood ON entries(mood)`,
		`CREATE INDEX IF NOT EXISTS idx_drafts_user_id ON drafts(user_id)`,
	}

	for _, query := range queries {
		if _, err := PostgresDB.Exec(query); err != nil {
			return err
		}
	}

	log.Println("✅ PostgreSQL tables initialized")
	return nil
}

// DisconnectPostgres closes the PostgreSQL connection
func DisconnectPostgres() error {
	if PostgresDB != nil {
		return PostgresDB.Close()
	}
	return nil
}
