// Package db provides the local sync store: one SQLite table per synced
// entity type, written through idempotent batch upserts.
//
// Although the backend is sqlite for cross-platform desktop use, each
// statement is held in an sql file in the `sql` directory which can be run
// on the sqlite command line with its sample values. The use of external,
// runnable sql files as Go prepared statements is made possible through the
// parameterization scheme set out in parameterize.go.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/jmoiron/sqlx" // helper library
	_ "modernc.org/sqlite"    // pure go sqlite driver
)

//go:embed sql
var SQLEmbeddedFS embed.FS

// namedStmt is an sql file parsed into an sqlx NamedStmt expecting the
// extracted parameters as arguments.
type namedStmt struct {
	sqlFile string
	args    []string
	*sqlx.NamedStmt
}

// verifyArgs determines whether the arguments provided to a namedStmt are
// as expected.
func (n *namedStmt) verifyArgs(args map[string]any) error {
	if got, want := len(args), len(n.args); got != want {
		return fmt.Errorf(
			"argument length to named statement from %q incorrect: got %d want %d",
			n.sqlFile, got, want,
		)
	}
	for _, a := range n.args {
		if _, ok := args[a]; !ok {
			return fmt.Errorf("named statement from %q missing argument %q", n.sqlFile, a)
		}
	}
	return nil
}

// DB wraps the sqlx connection with the application's prepared statements.
type DB struct {
	*sqlx.DB
	sqlFS  fs.FS
	logger *slog.Logger

	companyUpsertStmt     *namedStmt
	personUpsertStmt      *namedStmt
	invoiceUpsertStmt     *namedStmt
	productUpsertStmt     *namedStmt
	transactionUpsertStmt *namedStmt
	accountUpsertStmt     *namedStmt
}

// NewConnection creates a new connection to an SQLite database at the given
// path, loads the schema and prepares the named statements. sqlDir holds
// the sql files; pass the embedded filesystem mounted at "sql" for normal
// use.
func NewConnection(dbPath string, sqlDir fs.FS, logger *slog.Logger) (*DB, error) {

	// dataSource is the default setting for file-based databases.
	dataSource := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", dbPath)

	// for in-memory test databases, check the necessary cached setting is used.
	if strings.Contains(dbPath, ":memory:") {
		if !strings.Contains(dbPath, "cache=shared") {
			return nil, fmt.Errorf("in-memory connection %q should contain '?cache=shared'", dbPath)
		}
		dataSource = dbPath
	}

	dbDB, err := sql.Open("sqlite", dataSource)
	if err != nil {
		return nil, err
	}
	if err := dbDB.Ping(); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(
			os.Stdout,
			&slog.HandlerOptions{Level: slog.LevelInfo},
		))
	}

	db := &DB{
		DB:     sqlx.NewDb(dbDB, "sqlite"),
		sqlFS:  sqlDir,
		logger: logger,
	}

	if err := db.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := db.prepareNamedStatements(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("could not prepare named statements: %w", err)
	}
	return db, nil
}

// initSchema creates the entity tables if they don't already exist. The
// schema file can be run idempotently.
func (db *DB) initSchema() error {
	schema, err := fs.ReadFile(db.sqlFS, schemaSQL)
	if err != nil {
		return fmt.Errorf("could not read schema file at %q: %w", schemaSQL, err)
	}
	_, err = db.ExecContext(context.Background(), string(schema))
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// prepareNamedStatements prepares the upsert statements for this connection.
func (db *DB) prepareNamedStatements() error {
	for _, s := range []struct {
		target  **namedStmt
		sqlFile string
	}{
		{&db.companyUpsertStmt, companyUpsertSQL},
		{&db.personUpsertStmt, personUpsertSQL},
		{&db.invoiceUpsertStmt, invoiceUpsertSQL},
		{&db.productUpsertStmt, productUpsertSQL},
		{&db.transactionUpsertStmt, transactionUpsertSQL},
		{&db.accountUpsertStmt, accountUpsertSQL},
	} {
		stmt, err := db.prepNamedStatement(s.sqlFile)
		if err != nil {
			return fmt.Errorf("%s statement error: %w", s.sqlFile, err)
		}
		*s.target = stmt
	}
	return nil
}

// prepNamedStatement parameterizes and prepares one sql file.
func (db *DB) prepNamedStatement(filePath string) (*namedStmt, error) {
	tpl, err := ParameterizeFile(db.sqlFS, filePath)
	if err != nil {
		return nil, fmt.Errorf("could not parameterize %q: %w", filePath, err)
	}
	prepared, err := db.PrepareNamed(string(tpl.Body))
	if err != nil {
		return nil, fmt.Errorf("could not prepare statement %q: %w", filePath, err)
	}
	return &namedStmt{filePath, tpl.Parameters, prepared}, nil
}
