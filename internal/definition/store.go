// Package definition persists the versioned, domain-keyed step graphs that
// drive wizard-style flows, and resolves step components against live flow
// data. Definitions are immutable per version; activation of a new version
// deactivates the prior one in the same transaction.
package definition

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hearthhub/configflow/internal/util"
	"github.com/hearthhub/configflow/pkg/api"
)

// Store provides versioned persistence for flow definitions
type Store struct {
	db     *sql.DB
	active *util.LRUCache[*api.FlowDefinition]
}

const activeCacheSize = 256

var (
	ErrDefinitionNotFound = errors.New("flow definition not found")
	ErrInvalidDefinition  = errors.New("invalid flow definition")
)

const schema = `
CREATE TABLE IF NOT EXISTS flow_definitions (
    domain TEXT NOT NULL,
    version INTEGER NOT NULL,
    is_active INTEGER NOT NULL DEFAULT 0,
    is_default INTEGER NOT NULL DEFAULT 0,
    initial_step TEXT NOT NULL,
    steps TEXT NOT NULL,
    created_at DATETIME NOT NULL,
    PRIMARY KEY (domain, version)
);

CREATE INDEX IF NOT EXISTS idx_definitions_active
    ON flow_definitions(domain, is_active);
`

// Open creates or opens the definition database at the given path
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open(
		"sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000",
	)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return newStore(db)
}

// OpenMemory creates an in-memory definition database (useful for testing)
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	// each in-memory connection is its own database
	db.SetMaxOpenConns(1)
	return newStore(db)
}

func newStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return &Store{
		db:     db,
		active: util.NewLRUCache[*api.FlowDefinition](activeCacheSize),
	}, nil
}

// Close releases the underlying database handle
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateFlowDefinition validates the definition and inserts it as a new
// version row for its domain. When the definition requests activation, the
// previously active version is deactivated in the same transaction, so at
// most one version per domain is ever active
func (s *Store) CreateFlowDefinition(
	ctx context.Context, def *api.FlowDefinition,
) (*api.FlowDefinition, error) {
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}

	stepsJSON, err := json.Marshal(def.Steps)
	if err != nil {
		return nil, fmt.Errorf("marshaling steps: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var version int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) + 1
		 FROM flow_definitions WHERE domain = ?`, def.Domain,
	).Scan(&version)
	if err != nil {
		return nil, fmt.Errorf("allocating version: %w", err)
	}

	if def.IsActive {
		if _, err := tx.ExecContext(ctx,
			`UPDATE flow_definitions SET is_active = 0
			 WHERE domain = ? AND is_active = 1`, def.Domain,
		); err != nil {
			return nil, fmt.Errorf("deactivating prior version: %w", err)
		}
	}

	created := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO flow_definitions
		 (domain, version, is_active, is_default, initial_step, steps,
		  created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		def.Domain, version, def.IsActive, def.IsDefault,
		def.InitialStep, string(stepsJSON), created,
	); err != nil {
		return nil, fmt.Errorf("inserting definition: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing definition: %w", err)
	}

	s.active.Invalidate(string(def.Domain))

	res := *def
	res.Version = version
	res.CreatedAt = created
	return &res, nil
}

// GetActiveFlowDefinition returns the single active version for the domain
func (s *Store) GetActiveFlowDefinition(
	ctx context.Context, domain api.Domain,
) (*api.FlowDefinition, error) {
	return s.active.Get(string(domain), func() (*api.FlowDefinition, error) {
		row := s.db.QueryRowContext(ctx,
			`SELECT domain, version, is_active, is_default, initial_step,
			        steps, created_at
			 FROM flow_definitions
			 WHERE domain = ? AND is_active = 1`, domain)
		return scanDefinition(row)
	})
}

// GetFlowDefinitionVersion returns one specific version for the domain
func (s *Store) GetFlowDefinitionVersion(
	ctx context.Context, domain api.Domain, version int,
) (*api.FlowDefinition, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT domain, version, is_active, is_default, initial_step, steps,
		        created_at
		 FROM flow_definitions
		 WHERE domain = ? AND version = ?`, domain, version)
	return scanDefinition(row)
}

// GetFlowDefinitionVersions returns all versions for the domain, newest
// first, for audit and rollback UIs
func (s *Store) GetFlowDefinitionVersions(
	ctx context.Context, domain api.Domain,
) ([]*api.FlowDefinition, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT domain, version, is_active, is_default, initial_step, steps,
		        created_at
		 FROM flow_definitions
		 WHERE domain = ? ORDER BY version DESC`, domain)
	if err != nil {
		return nil, fmt.Errorf("listing versions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var defs []*api.FlowDefinition
	for rows.Next() {
		def, err := scanDefinition(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

// ListDomains returns every domain that ships at least one definition
func (s *Store) ListDomains(ctx context.Context) ([]api.Domain, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT domain FROM flow_definitions ORDER BY domain`)
	if err != nil {
		return nil, fmt.Errorf("listing domains: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var domains []api.Domain
	for rows.Next() {
		var domain api.Domain
		if err := rows.Scan(&domain); err != nil {
			return nil, fmt.Errorf("scanning domain: %w", err)
		}
		domains = append(domains, domain)
	}
	return domains, rows.Err()
}

// HasDefinition reports whether the domain ships any definition version
func (s *Store) HasDefinition(
	ctx context.Context, domain api.Domain,
) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM flow_definitions WHERE domain = ?`, domain,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("counting definitions: %w", err)
	}
	return count > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDefinition(row rowScanner) (*api.FlowDefinition, error) {
	def := &api.FlowDefinition{}
	var stepsJSON string
	err := row.Scan(&def.Domain, &def.Version, &def.IsActive, &def.IsDefault,
		&def.InitialStep, &stepsJSON, &def.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDefinitionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning definition: %w", err)
	}
	if err := json.Unmarshal([]byte(stepsJSON), &def.Steps); err != nil {
		return nil, fmt.Errorf("unmarshaling steps: %w", err)
	}
	return def, nil
}
