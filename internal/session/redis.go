package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "session:"
	sessionTTL = 24 * time.Hour
)

type redisManager struct {
	client *redis.Client

	// userMu serializes Update calls per customer; Redis itself does not
	// provide read-modify-write for a JSON blob.
	mu     sync.Mutex
	userMu map[int64]*sync.Mutex
}

// NewRedisManager connects to Redis at the given URL and verifies the
// connection. Sessions survive restarts and are shared across instances.
func NewRedisManager(ctx context.Context, url string) (Manager, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("session: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("session: ping redis: %w", err)
	}
	return &redisManager{client: client, userMu: make(map[int64]*sync.Mutex)}, nil
}

func key(customerID int64) string {
	return keyPrefix + strconv.FormatInt(customerID, 10)
}

func (m *redisManager) lockFor(customerID int64) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.userMu[customerID]
	if !ok {
		l = &sync.Mutex{}
		m.userMu[customerID] = l
	}
	return l
}

func (m *redisManager) load(ctx context.Context, customerID int64) (*Session, error) {
	raw, err := m.client.Get(ctx, key(customerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return New(customerID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: load %d: %w", customerID, err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		// A corrupt blob should not wedge the conversation forever.
		return New(customerID), nil
	}
	return &s, nil
}

func (m *redisManager) Get(ctx context.Context, customerID int64) (*Session, error) {
	return m.load(ctx, customerID)
}

func (m *redisManager) Update(ctx context.Context, customerID int64, fn func(*Session)) error {
	l := m.lockFor(customerID)
	l.Lock()
	defer l.Unlock()

	s, err := m.load(ctx, customerID)
	if err != nil {
		return err
	}
	fn(s)
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: marshal %d: %w", customerID, err)
	}
	if err := m.client.Set(ctx, key(customerID), raw, sessionTTL).Err(); err != nil {
		return fmt.Errorf("session: store %d: %w", customerID, err)
	}
	return nil
}

func (m *redisManager) Clear(ctx context.Context, customerID int64) error {
	if err := m.client.Del(ctx, key(customerID)).Err(); err != nil {
		return fmt.Errorf("session: clear %d: %w", customerID, err)
	}
	return nil
}

func (m *redisManager) Count(ctx context.Context) (int, error) {
	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := m.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return 0, fmt.Errorf("session: scan: %w", err)
		}
		total += len(keys)
		if next == 0 {
			return total, nil
		}
		cursor = next
	}
}
