package session

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MrEthical07/goAuthClient/role"
)

// DefaultPostgresTable is the table PostgresStore uses when none is given.
const DefaultPostgresTable = "goauth_client_sessions"

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// Querier is the subset of *pgxpool.Pool (and pgx.Tx) PostgresStore needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ Querier = (*pgxpool.Pool)(nil)

// PostgresStore keeps one row per account, replaced on Persist.
type PostgresStore struct {
	db  Querier
	now func() time.Time

	createTable string
	upsert      string
	selectOne   string
	deleteOne   string
}

// NewPostgresStore returns a store over db using table, or DefaultPostgresTable when empty.
// Table names are restricted to lower-case identifiers.
func NewPostgresStore(db Querier, table string) (*PostgresStore, error) {
	if db == nil {
		return nil, errors.New("session: nil postgres querier")
	}
	if table == "" {
		table = DefaultPostgresTable
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("session: invalid postgres table name %q", table)
	}
	ident := pgx.Identifier{table}.Sanitize()

	return &PostgresStore{
		db:  db,
		now: time.Now,
		createTable: `CREATE TABLE IF NOT EXISTS ` + ident + ` (
			account_id TEXT PRIMARY KEY,
			token TEXT NOT NULL,
			token_type TEXT NOT NULL,
			roles SMALLINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			expires_at TIMESTAMPTZ NULL
		)`,
		upsert: `INSERT INTO ` + ident + ` (account_id, token, token_type, roles, created_at, expires_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (account_id) DO UPDATE SET
				token = EXCLUDED.token,
				token_type = EXCLUDED.token_type,
				roles = EXCLUDED.roles,
				created_at = EXCLUDED.created_at,
				expires_at = EXCLUDED.expires_at`,
		selectOne: `SELECT account_id, token, token_type, roles, created_at, expires_at FROM ` + ident + ` WHERE account_id = $1`,
		deleteOne: `DELETE FROM ` + ident + ` WHERE account_id = $1`,
	}, nil
}

// OpenPostgresPool connects a pgx pool and pings it.
func OpenPostgresPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return pool, nil
}

// Open creates the sessions table if it does not exist.
func (p *PostgresStore) Open(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, p.createTable); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (p *PostgresStore) Persist(ctx context.Context, s *Session) error {
	if err := s.Validate(); err != nil {
		return err
	}

	var expires *time.Time
	if !s.ExpiresAt.IsZero() {
		t := s.ExpiresAt.UTC()
		expires = &t
	}

	_, err := p.db.Exec(ctx, p.upsert,
		s.AccountID,
		s.Token,
		s.TokenType,
		int16(s.Roles.Raw()),
		s.CreatedAt.UTC(),
		expires,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (p *PostgresStore) Load(ctx context.Context, accountID string) (*Session, error) {
	var (
		s       Session
		roles   int16
		expires *time.Time
	)
	row := p.db.QueryRow(ctx, p.selectOne, accountID)
	if err := row.Scan(&s.AccountID, &s.Token, &s.TokenType, &roles, &s.CreatedAt, &expires); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if roles < 0 || roles > 0xff {
		return nil, fmt.Errorf("%w: roles out of range", ErrCorrupt)
	}
	s.Roles = role.FromRaw(uint8(roles))
	if expires != nil {
		s.ExpiresAt = *expires
	}

	if s.Expired(p.now()) {
		if err := p.Remove(ctx, accountID); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return &s, nil
}

func (p *PostgresStore) Remove(ctx context.Context, accountID string) error {
	if _, err := p.db.Exec(ctx, p.deleteOne, accountID); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
