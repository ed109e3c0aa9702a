package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the shared database handle
var DB *sqlx.DB

// Connect opens the configured database and prepares the schema. dbType
// selects the driver ("sqlite" or "postgres"); dsn is the sqlite file path
// or the postgres connection string.
func Connect(dbType, dsn string) error {
	switch dbType {
	case "", "sqlite":
		if dsn == "" {
			dsn = filepath.Join("data", "drillbot.db")
		}
		if dsn != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
				return fmt.Errorf("creating data directory: %w", err)
			}
		}
		db, err := sqlx.Connect("sqlite3", dsn)
		if err != nil {
			return fmt.Errorf("connecting to sqlite: %w", err)
		}
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("enabling foreign keys: %w", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		DB = db
	case "postgres":
		db, err := sqlx.Connect("postgres", dsn)
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		db.SetMaxOpenConns(10)
		DB = db
	default:
		return fmt.Errorf("unsupported database type %q", dbType)
	}

	return initializeSchema()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

func isPostgres() bool {
	return DB != nil && DB.DriverName() == "postgres"
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema() error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if isPostgres() {
		serial = "BIGSERIAL PRIMARY KEY"
	}

	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS users (
				id %s,
				email TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				is_admin BOOLEAN DEFAULT false,
				telegram_chat_id BIGINT DEFAULT 0,
				notification_enabled BOOLEAN DEFAULT true,
				notification_hour INTEGER DEFAULT 9,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`, serial),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS topics (
				id %s,
				name TEXT NOT NULL UNIQUE,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`, serial),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS questions (
				id %s,
				topic_id BIGINT NOT NULL,
				category TEXT NOT NULL DEFAULT 'general',
				type TEXT NOT NULL,
				prompt TEXT NOT NULL,
				answer TEXT NOT NULL DEFAULT '',
				choices TEXT NOT NULL DEFAULT '',
				difficulty INTEGER DEFAULT 1,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (topic_id) REFERENCES topics(id),
				UNIQUE(topic_id, prompt)
			)
		`, serial),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS progress (
				id %s,
				user_id BIGINT NOT NULL,
				question_id BIGINT NOT NULL,
				interval INTEGER DEFAULT 1,
				easiness_factor REAL DEFAULT 2.5,
				repetition INTEGER DEFAULT 0,
				last_quality INTEGER DEFAULT 3,
				last_review TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				next_review TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (user_id) REFERENCES users(id),
				FOREIGN KEY (question_id) REFERENCES questions(id),
				UNIQUE(user_id, question_id)
			)
		`, serial),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS session_results (
				id %s,
				user_id BIGINT NOT NULL,
				session_id TEXT NOT NULL DEFAULT '',
				total INTEGER NOT NULL,
				saved INTEGER NOT NULL,
				correct INTEGER NOT NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (user_id) REFERENCES users(id)
			)
		`, serial),
		`CREATE INDEX IF NOT EXISTS idx_questions_topic ON questions(topic_id)`,
		`CREATE INDEX IF NOT EXISTS idx_progress_user ON progress(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_progress_due ON progress(user_id, next_review)`,
		`CREATE INDEX IF NOT EXISTS idx_results_user ON session_results(user_id, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := DB.Exec(stmt); err != nil {
			return fmt.Errorf("initializing schema: %w", err)
		}
	}
	return nil
}
