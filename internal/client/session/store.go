package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	redislib "github.com/redis/go-redis/v9"

	"github.com/medikariyer/api/internal/domain"
)

// ErrNotCached is returned when a storage slot holds no value.
var ErrNotCached = errors.New("session: value not cached")

// Storage slot suffixes. The keys are stable and namespaced; the medium
// behind them is an external collaborator and opaque to the session core.
const (
	keyPrefix           = "medikariyer:session:"
	slotAccessToken     = "access_token"
	slotRefreshToken    = "refresh_token"
	slotAccountSnapshot = "account"
)

// Store persists the client's credentials and last-known account snapshot.
type Store interface {
	AccessToken(ctx context.Context) (string, error)
	SetAccessToken(ctx context.Context, token string) error
	RefreshToken(ctx context.Context) (string, error)
	SetRefreshToken(ctx context.Context, token string) error
	AccountSnapshot(ctx context.Context) (*domain.SessionContext, error)
	SetAccountSnapshot(ctx context.Context, snapshot domain.SessionContext) error
	Clear(ctx context.Context) error
}

type redisStore struct {
	client *redislib.Client
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redislib.Client) Store {
	return &redisStore{client: client}
}

func (s *redisStore) AccessToken(ctx context.Context) (string, error) {
	return s.get(ctx, slotAccessToken)
}

func (s *redisStore) SetAccessToken(ctx context.Context, token string) error {
	return s.client.Set(ctx, keyPrefix+slotAccessToken, token, 0).Err()
}

func (s *redisStore) RefreshToken(ctx context.Context) (string, error) {
	return s.get(ctx, slotRefreshToken)
}

func (s *redisStore) SetRefreshToken(ctx context.Context, token string) error {
	return s.client.Set(ctx, keyPrefix+slotRefreshToken, token, 0).Err()
}

func (s *redisStore) AccountSnapshot(ctx context.Context) (*domain.SessionContext, error) {
	raw, err := s.get(ctx, slotAccountSnapshot)
	if err != nil {
		return nil, err
	}
	var snapshot domain.SessionContext
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (s *redisStore) SetAccountSnapshot(ctx context.Context, snapshot domain.SessionContext) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+slotAccountSnapshot, payload, 0).Err()
}

func (s *redisStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx,
		keyPrefix+slotAccessToken,
		keyPrefix+slotRefreshToken,
		keyPrefix+slotAccountSnapshot,
	).Err()
}

func (s *redisStore) get(ctx context.Context, slot string) (string, error) {
	result, err := s.client.Get(ctx, keyPrefix+slot).Result()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return "", ErrNotCached
		}
		return "", err
	}
	return result, nil
}

// memoryStore backs tests and environments without Redis.
type memoryStore struct {
	mu       sync.Mutex
	values   map[string]string
	snapshot *domain.SessionContext
}

// NewMemoryStore creates an in-process session store.
func NewMemoryStore() Store {
	return &memoryStore{values: make(map[string]string)}
}

func (s *memoryStore) AccessToken(ctx context.Context) (string, error) {
	return s.get(slotAccessToken)
}

func (s *memoryStore) SetAccessToken(_ context.Context, token string) error {
	s.set(slotAccessToken, token)
	return nil
}

func (s *memoryStore) RefreshToken(ctx context.Context) (string, error) {
	return s.get(slotRefreshToken)
}

func (s *memoryStore) SetRefreshToken(_ context.Context, token string) error {
	s.set(slotRefreshToken, token)
	return nil
}

func (s *memoryStore) AccountSnapshot(context.Context) (*domain.SessionContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return nil, ErrNotCached
	}
	copied := *s.snapshot
	return &copied, nil
}

func (s *memoryStore) SetAccountSnapshot(_ context.Context, snapshot domain.SessionContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = &snapshot
	return nil
}

func (s *memoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]string)
	s.snapshot = nil
	return nil
}

func (s *memoryStore) get(slot string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.values[slot]
	if !ok || val == "" {
		return "", ErrNotCached
	}
	return val, nil
}

func (s *memoryStore) set(slot, val string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[slot] = val
}
