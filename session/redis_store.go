package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

const removeSessionScript = `
local existed = redis.call("DEL", KEYS[1])
redis.call("SREM", KEYS[2], ARGV[1])
return existed
`

var removeSessionLua = redis.NewScript(removeSessionScript)

// RedisStore keeps one key per account holding the encoded session, plus an index set of
// account IDs with a stored session.
//
// Keys: "<prefix>:s:<accountID>" and "<prefix>:accounts".
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisStore returns a store over rdb. An empty prefix defaults to "gac".
func NewRedisStore(rdb redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "gac"
	}
	return &RedisStore{
		redis:  rdb,
		prefix: prefix,
		now:    time.Now,
	}
}

func (s *RedisStore) key(accountID string) string {
	return s.prefix + ":s:" + accountID
}

func (s *RedisStore) indexKey() string {
	return s.prefix + ":accounts"
}

// Open verifies that Redis answers.
func (s *RedisStore) Open(ctx context.Context) error {
	if s.redis == nil {
		return fmt.Errorf("%w: nil redis client", ErrStoreUnavailable)
	}
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Persist writes sess, replacing any previous session of the same account. The key
// expires with the session.
func (s *RedisStore) Persist(ctx context.Context, sess *Session) error {
	data, err := Encode(sess)
	if err != nil {
		return err
	}

	ttl := sess.TTL(s.now())
	if ttl < 0 {
		return fmt.Errorf("%w: session already expired", ErrInvalidSession)
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(sess.AccountID), data, ttl)
		pipe.SAdd(ctx, s.indexKey(), sess.AccountID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Load returns the session of accountID. A stored session found expired is removed and
// reported as ErrNotFound.
func (s *RedisStore) Load(ctx context.Context, accountID string) (*Session, error) {
	data, err := s.redis.Get(ctx, s.key(accountID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	sess, err := Decode(data)
	if err != nil {
		return nil, err
	}

	if sess.Expired(s.now()) {
		if err := s.Remove(ctx, accountID); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return sess, nil
}

// Remove deletes the session of accountID. Removing a missing session is not an error.
func (s *RedisStore) Remove(ctx context.Context, accountID string) error {
	keys := []string{s.key(accountID), s.indexKey()}
	if err := removeSessionLua.Run(ctx, s.redis, keys, accountID).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Accounts lists account IDs with a live session, sorted. Index entries whose key already
// expired are pruned.
func (s *RedisStore) Accounts(ctx context.Context) ([]string, error) {
	ids, err := s.redis.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	live := make([]string, 0, len(ids))
	var stale []interface{}
	for _, id := range ids {
		n, err := s.redis.Exists(ctx, s.key(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if n == 0 {
			stale = append(stale, id)
			continue
		}
		live = append(live, id)
	}

	if len(stale) > 0 {
		if err := s.redis.SRem(ctx, s.indexKey(), stale...).Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	sort.Strings(live)
	return live, nil
}
