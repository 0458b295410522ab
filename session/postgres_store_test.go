package session

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrEthical07/goAuthClient/role"
)

func TestNewPostgresStoreValidatesTable(t *testing.T) {
	cases := []string{"Sessions", "1abc", "a-b", "x; DROP TABLE y"}
	for _, name := range cases {
		if _, err := NewPostgresStore(nopQuerier{}, name); err == nil {
			t.Fatalf("expected error for table %q", name)
		}
	}
	if _, err := NewPostgresStore(nopQuerier{}, ""); err != nil {
		t.Fatalf("default table: %v", err)
	}
	if _, err := NewPostgresStore(nil, ""); err == nil {
		t.Fatal("expected error for nil querier")
	}
}

// TestPostgresStoreIntegration runs against a real database when
// GOAUTHCLIENT_TEST_POSTGRES_DSN is set.
func TestPostgresStoreIntegration(t *testing.T) {
	dsn := os.Getenv("GOAUTHCLIENT_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("GOAUTHCLIENT_TEST_POSTGRES_DSN not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := OpenPostgresPool(ctx, dsn)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	defer pool.Close()

	store, err := NewPostgresStore(pool, "goauth_client_sessions_test")
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := store.Open(ctx); err != nil {
		t.Fatalf("open: %v", err)
	}
	defer pool.Exec(context.Background(), `DROP TABLE IF EXISTS goauth_client_sessions_test`)

	sess := testSession()
	if err := store.Persist(ctx, sess); err != nil {
		t.Fatalf("persist: %v", err)
	}
	sess.Roles = role.Of(role.Manager, role.User)
	if err := store.Persist(ctx, sess); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := store.Load(ctx, "bob")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Roles != role.Of(role.Manager, role.User) {
		t.Fatalf("expected upserted roles, got %v", got.Roles)
	}

	if err := store.Remove(ctx, "bob"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := store.Load(ctx, "bob"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

type nopQuerier struct{}

func (nopQuerier) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (nopQuerier) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}
