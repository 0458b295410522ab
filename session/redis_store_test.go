package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/goAuthClient/role"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStoreTest(t *testing.T) (*RedisStore, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(rdb, "t")
	return store, mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func TestRedisStorePersistLoad(t *testing.T) {
	store, mr, done := newRedisStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := store.Open(ctx); err != nil {
		t.Fatalf("open: %v", err)
	}

	sess := testSession()
	if err := store.Persist(ctx, sess); err != nil {
		t.Fatalf("persist: %v", err)
	}

	got, err := store.Load(ctx, "bob")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Token != "abc" || !got.Roles.Has(role.Admin) {
		t.Fatalf("unexpected session: %+v", got)
	}

	if ttl := mr.TTL("t:s:bob"); ttl <= 0 || ttl > time.Hour {
		t.Fatalf("expected key ttl within an hour, got %v", ttl)
	}
	if ok, _ := mr.SIsMember("t:accounts", "bob"); !ok {
		t.Fatal("expected account in index set")
	}
}

func TestRedisStorePersistReplaces(t *testing.T) {
	store, _, done := newRedisStoreTest(t)
	defer done()
	ctx := context.Background()

	first := testSession()
	if err := store.Persist(ctx, first); err != nil {
		t.Fatalf("persist first: %v", err)
	}
	second := testSession()
	second.Token = "def"
	second.Roles = role.Of(role.User)
	if err := store.Persist(ctx, second); err != nil {
		t.Fatalf("persist second: %v", err)
	}

	got, err := store.Load(ctx, "bob")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Token != "def" || got.Roles != role.Of(role.User) {
		t.Fatalf("expected replaced session, got %+v", got)
	}

	accounts, err := store.Accounts(ctx)
	if err != nil {
		t.Fatalf("accounts: %v", err)
	}
	if len(accounts) != 1 || accounts[0] != "bob" {
		t.Fatalf("expected [bob], got %v", accounts)
	}
}

func TestRedisStoreRemoveIdempotent(t *testing.T) {
	store, mr, done := newRedisStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := store.Persist(ctx, testSession()); err != nil {
		t.Fatalf("persist: %v", err)
	}
	if err := store.Remove(ctx, "bob"); err != nil {
		t.Fatalf("first remove: %v", err)
	}
	if err := store.Remove(ctx, "bob"); err != nil {
		t.Fatalf("second remove: %v", err)
	}

	if _, err := store.Load(ctx, "bob"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if ok, _ := mr.SIsMember("t:accounts", "bob"); ok {
		t.Fatal("expected account removed from index")
	}
}

func TestRedisStoreLoadExpiredRemoves(t *testing.T) {
	store, mr, done := newRedisStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := store.Persist(ctx, testSession()); err != nil {
		t.Fatalf("persist: %v", err)
	}

	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := store.Load(ctx, "bob"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if mr.Exists("t:s:bob") {
		t.Fatal("expected expired key to be deleted")
	}
}

func TestRedisStoreRejectsExpiredSession(t *testing.T) {
	store, _, done := newRedisStoreTest(t)
	defer done()

	sess := testSession()
	sess.ExpiresAt = time.Now().Add(-time.Minute)
	if err := store.Persist(context.Background(), sess); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}

func TestRedisStoreAccountsPrunesStale(t *testing.T) {
	store, mr, done := newRedisStoreTest(t)
	defer done()
	ctx := context.Background()

	alice := testSession()
	alice.AccountID = "alice"
	if err := store.Persist(ctx, alice); err != nil {
		t.Fatalf("persist alice: %v", err)
	}
	if err := store.Persist(ctx, testSession()); err != nil {
		t.Fatalf("persist bob: %v", err)
	}

	mr.FastForward(2 * time.Hour)

	accounts, err := store.Accounts(ctx)
	if err != nil {
		t.Fatalf("accounts: %v", err)
	}
	if len(accounts) != 0 {
		t.Fatalf("expected no live accounts, got %v", accounts)
	}
	if ok, _ := mr.SIsMember("t:accounts", "bob"); ok {
		t.Fatal("expected stale index entry pruned")
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	store, mr, done := newRedisStoreTest(t)
	defer done()
	mr.Close()

	ctx := context.Background()
	if err := store.Open(ctx); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable from open, got %v", err)
	}
	if err := store.Persist(ctx, testSession()); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable from persist, got %v", err)
	}
}
