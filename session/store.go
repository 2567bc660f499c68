// Package session tracks logged-in browsers. The cookie value is a
// signed JWT naming a server-side session id; the Redis record behind
// that id is authoritative, so deleting it invalidates the token
// immediately regardless of the JWT's own expiry.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSession means the presented token does not map to a live session.
var ErrNoSession = errors.New("session: not authenticated")

// Store is the session contract used by handlers and middleware.
type Store interface {
	Create(ctx context.Context, userID uint) (string, error)
	UserID(ctx context.Context, token string) (uint, error)
	Clear(ctx context.Context, token string) error
}

// RedisStore keeps session records in Redis with a TTL.
type RedisStore struct {
	rdb    *redis.Client
	secret []byte
	ttl    time.Duration
}

// NewRedisStore builds a store signing tokens with secret.
func NewRedisStore(rdb *redis.Client, secret string, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, secret: []byte(secret), ttl: ttl}
}

func sessionKey(sid string) string {
	return "session:" + sid
}

// Create registers a new session for userID and returns the cookie token.
func (s *RedisStore) Create(ctx context.Context, userID uint) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	sid := hex.EncodeToString(buf)

	if err := s.rdb.Set(ctx, sessionKey(sid), userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	claims := jwt.MapClaims{
		"sid": sid,
		"sub": strconv.FormatUint(uint64(userID), 10),
		"exp": time.Now().Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// UserID resolves a cookie token to the logged-in user.
func (s *RedisStore) UserID(ctx context.Context, token string) (uint, error) {
	sid, err := s.parseSID(token)
	if err != nil {
		return 0, ErrNoSession
	}

	val, err := s.rdb.Get(ctx, sessionKey(sid)).Result()
	if err == redis.Nil {
		return 0, ErrNoSession
	}
	if err != nil {
		return 0, fmt.Errorf("read session: %w", err)
	}

	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, ErrNoSession
	}
	return uint(id), nil
}

// Clear forgets the session behind token. Garbage tokens are a no-op so
// login can always clear whatever cookie the browser presented.
func (s *RedisStore) Clear(ctx context.Context, token string) error {
	sid, err := s.parseSID(token)
	if err != nil {
		return nil
	}
	return s.rdb.Del(ctx, sessionKey(sid)).Err()
}

func (s *RedisStore) parseSID(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrNoSession
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrNoSession
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", ErrNoSession
	}
	return sid, nil
}
