package refresh

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redeemStatusNotFound int64 = -1
	redeemStatusSpent    int64 = 0
	redeemStatusRedeemed int64 = 1
)

// Redeem must observe and flip the used flag in one step; a plain
// HGET-then-HSET pair would let two racing callers both win.
const redeemScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return -1
end
if redis.call("HGET", KEYS[1], "used") == "1" then
  return 0
end
if redis.call("HGET", KEYS[1], "revoked") == "1" then
  return 0
end
redis.call("HSET", KEYS[1], "used", "1")
return 1
`

var redeemLua = redis.NewScript(redeemScript)

const revokeScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1], "revoked", "1")
return 1
`

var revokeLua = redis.NewScript(revokeScript)

// RedisStore keeps the ledger as one Redis hash per token. Records carry no
// TTL: expiry makes rows inert, it does not delete them. Retention of stale
// rows is the operator's concern.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore creates a ledger [Store] backed by the given Redis client.
// prefix namespaces the keys; it defaults to "arl" (authcore refresh ledger).
func NewRedisStore(redisClient redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "arl"
	}
	return &RedisStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *RedisStore) key(token string) string {
	return s.prefix + ":" + token
}

func (s *RedisStore) Create(ctx context.Context, rec *Record) error {
	fields := map[string]interface{}{
		"jwt_id":     rec.JWTID,
		"user_id":    rec.UserID,
		"issued_at":  rec.IssuedAt.UTC().Unix(),
		"expires_at": rec.ExpiresAt.UTC().Unix(),
		"used":       boolField(rec.Used),
		"revoked":    boolField(rec.Revoked),
	}
	if err := s.redis.HSet(ctx, s.key(rec.Token), fields).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Find(ctx context.Context, token string) (*Record, error) {
	data, err := s.redis.HGetAll(ctx, s.key(token)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}

	issuedAt, err := strconv.ParseInt(data["issued_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt issued_at: %v", ErrUnavailable, err)
	}
	expiresAt, err := strconv.ParseInt(data["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt expires_at: %v", ErrUnavailable, err)
	}

	return &Record{
		Token:     token,
		JWTID:     data["jwt_id"],
		UserID:    data["user_id"],
		IssuedAt:  time.Unix(issuedAt, 0).UTC(),
		ExpiresAt: time.Unix(expiresAt, 0).UTC(),
		Used:      data["used"] == "1",
		Revoked:   data["revoked"] == "1",
	}, nil
}

func (s *RedisStore) Redeem(ctx context.Context, token string) (bool, error) {
	res, err := redeemLua.Run(ctx, s.redis, []string{s.key(token)}).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	status, ok := res.(int64)
	if !ok {
		return false, fmt.Errorf("%w: unexpected redeem script result %T", ErrUnavailable, res)
	}

	switch status {
	case redeemStatusRedeemed:
		return true, nil
	case redeemStatusSpent:
		return false, nil
	case redeemStatusNotFound:
		return false, ErrNotFound
	default:
		return false, fmt.Errorf("%w: unexpected redeem status %d", ErrUnavailable, status)
	}
}

func (s *RedisStore) Revoke(ctx context.Context, token string) error {
	res, err := revokeLua.Run(ctx, s.redis, []string{s.key(token)}).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if status, ok := res.(int64); !ok || status == 0 {
		if !ok {
			return fmt.Errorf("%w: unexpected revoke script result %T", ErrUnavailable, res)
		}
		return ErrNotFound
	}
	return nil
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

var _ Store = (*RedisStore)(nil)
var _ Store = (*MemoryStore)(nil)
