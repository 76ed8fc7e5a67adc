package database

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const memoryPath = ":memory:"

// OpenAndMigrate opens the sqlite database at dbPath and applies any
// migrations that have not run yet.
func OpenAndMigrate(dbPath string) (*sql.DB, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("DATABASE_PATH is required")
	}

	if isFilePath(dbPath) {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", sqliteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	if isMemory(dbPath) {
		// every new connection to :memory: is a separate empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	n, err := Migrate(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if n > 0 {
		log.Printf("database migrated path=%s applied=%d", dbPath, n)
	}
	return db, nil
}

func sqliteDSN(dbPath string) string {
	if strings.HasPrefix(dbPath, "file:") || isMemory(dbPath) {
		return dbPath
	}
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", dbPath)
}

func isMemory(p string) bool {
	return p == memoryPath || strings.Contains(p, "mode=memory")
}

func isFilePath(p string) bool {
	return !isMemory(p) && !strings.HasPrefix(p, "file:")
}

// Migrate applies pending migrations in file name order, each in its own
// transaction, and reports how many ran.
func Migrate(db *sql.DB) (int, error) {
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		return 0, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}

	applied, err := appliedVersions(db)
	if err != nil {
		return 0, err
	}
	names, err := migrationNames(migrationsFS, "migrations")
	if err != nil {
		return 0, err
	}

	count := 0
	for _, name := range names {
		if applied[name] {
			continue
		}
		body, err := fs.ReadFile(migrationsFS, "migrations/"+name)
		if err != nil {
			return count, fmt.Errorf("read migration %s: %w", name, err)
		}
		if err := applyMigration(db, name, string(body)); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func applyMigration(db *sql.DB, name, body string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	for _, stmt := range splitStatements(body) {
		if _, err := tx.Exec(stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations(version) VALUES (?)`, name); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", name, err)
	}
	return nil
}

func appliedVersions(db *sql.DB) (map[string]bool, error) {
	rows, err := db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan migration version: %w", err)
		}
		out[v] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate migration versions: %w", err)
	}
	return out, nil
}

func migrationNames(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("readdir %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// splitStatements drops "--" line comments and splits the script on ';'.
// Our schema files never put either inside a string literal.
func splitStatements(script string) []string {
	var b strings.Builder
	for _, line := range strings.Split(script, "\n") {
		if i := strings.Index(line, "--"); i >= 0 {
			line = line[:i]
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	var out []string
	for _, part := range strings.Split(b.String(), ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
