package lending

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Database provides the three stores (catalog, customers, borrow ledger)
// over one SQLite connection.
type Database struct {
	db  *sqlx.DB
	log *zap.Logger

	addCustomerStmt *sqlx.Stmt
}

// NewDatabase opens (or creates) the SQLite database at dbPath, applies
// schema migrations, seeds the starter catalog and prepares common
// statements. A nil logger is replaced with a no-op one.
func NewDatabase(dbPath string, logger *zap.Logger) (*Database, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	// Enable busy_timeout and foreign keys.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", dbPath)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	database := &Database{db: db, log: logger}
	if err := database.seedCatalog(); err != nil {
		db.Close()
		return nil, err
	}
	if err := database.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("database ready", zap.String("path", dbPath))
	return database, nil
}

// Close releases prepared statements and closes the DB.
func (d *Database) Close() error {
	if d.addCustomerStmt != nil {
		d.addCustomerStmt.Close()
	}
	return d.db.Close()
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sqlx.DB) error {
	// WAL improves write concurrency.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS customers (
            customer_id TEXT PRIMARY KEY,
            first_name TEXT NOT NULL,
            last_name TEXT NOT NULL,
            email TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS cds (
            cd_id INTEGER PRIMARY KEY,
            cd_name TEXT NOT NULL,
            cd_type TEXT NOT NULL,
            cd_quantity INTEGER NOT NULL CHECK (cd_quantity >= 0),
            cd_artist TEXT NOT NULL,
            cd_released_year INTEGER NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS borrow (
            borrow_number INTEGER PRIMARY KEY AUTOINCREMENT,
            customer_id TEXT NOT NULL REFERENCES customers(customer_id),
            cd_id INTEGER NOT NULL REFERENCES cds(cd_id),
            borrow_date TEXT NOT NULL,
            return_date TEXT,
            overdue_payment REAL
        );`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
        ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Prepared statements
// ---------------------------------------------------------------------------

func (d *Database) prepareStatements() error {
	var err error
	if d.addCustomerStmt, err = d.db.Preparex(
		`INSERT INTO customers(customer_id, first_name, last_name, email) VALUES(?,?,?,?)`); err != nil {
		return err
	}
	return nil
}
