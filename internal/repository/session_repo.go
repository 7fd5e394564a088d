package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/gema-essay-api/internal/models"
)

// ErrSessionNotFound indicates no session is stored under the requested id.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository persists assessment sessions between requests.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, id string) (models.Session, error)
	Save(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, id string) error
}

type redisSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisSessionRepository stores sessions as JSON documents that expire after ttl of inactivity.
func NewRedisSessionRepository(client *redis.Client, ttl time.Duration) SessionRepository {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &redisSessionRepository{client: client, ttl: ttl, now: time.Now}
}

func sessionKey(id string) string {
	return fmt.Sprintf("essay:session:%s", id)
}

func (r *redisSessionRepository) Create(ctx context.Context, session *models.Session) error {
	now := r.now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}

	created, err := r.client.SetNX(ctx, sessionKey(session.ID), payload, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	if !created {
		return fmt.Errorf("create session: id %s already exists", session.ID)
	}
	return nil
}

func (r *redisSessionRepository) Get(ctx context.Context, id string) (models.Session, error) {
	payload, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Session{}, ErrSessionNotFound
		}
		return models.Session{}, fmt.Errorf("load session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return models.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return session, nil
}

func (r *redisSessionRepository) Save(ctx context.Context, session *models.Session) error {
	session.UpdatedAt = r.now().UTC()

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}

	stored, err := r.client.SetXX(ctx, sessionKey(session.ID), payload, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if !stored {
		return ErrSessionNotFound
	}
	return nil
}

func (r *redisSessionRepository) Delete(ctx context.Context, id string) error {
	removed, err := r.client.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if removed == 0 {
		return ErrSessionNotFound
	}
	return nil
}

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

type memorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

// NewMemorySessionRepository keeps sessions in process memory. A positive ttl expires
// sessions after that long without a save; zero keeps them for the life of the process.
func NewMemorySessionRepository(ttl time.Duration) SessionRepository {
	return &memorySessionRepository{sessions: map[string]memoryEntry{}, ttl: ttl, now: time.Now}
}

func (r *memorySessionRepository) Create(_ context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	r.sweep(now)
	if _, exists := r.sessions[session.ID]; exists {
		return fmt.Errorf("create session: id %s already exists", session.ID)
	}
	session.CreatedAt = now
	session.UpdatedAt = now
	return r.store(session, now)
}

func (r *memorySessionRepository) Get(_ context.Context, id string) (models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.live(id, r.now().UTC())
	if !ok {
		return models.Session{}, ErrSessionNotFound
	}
	var session models.Session
	if err := json.Unmarshal(entry.payload, &session); err != nil {
		return models.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return session, nil
}

func (r *memorySessionRepository) Save(_ context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	if _, ok := r.live(session.ID, now); !ok {
		return ErrSessionNotFound
	}
	session.UpdatedAt = now
	return r.store(session, now)
}

func (r *memorySessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.live(id, r.now().UTC()); !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

// live returns the entry for id, dropping it when it has expired.
func (r *memorySessionRepository) live(id string, now time.Time) (memoryEntry, bool) {
	entry, ok := r.sessions[id]
	if !ok {
		return memoryEntry{}, false
	}
	if r.expired(entry, now) {
		delete(r.sessions, id)
		return memoryEntry{}, false
	}
	return entry, true
}

func (r *memorySessionRepository) expired(entry memoryEntry, now time.Time) bool {
	return !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt)
}

func (r *memorySessionRepository) sweep(now time.Time) {
	if r.ttl <= 0 {
		return
	}
	for id, entry := range r.sessions {
		if r.expired(entry, now) {
			delete(r.sessions, id)
		}
	}
}

// store keeps a serialized copy so callers never share the session's pointers.
func (r *memorySessionRepository) store(session *models.Session, now time.Time) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	entry := memoryEntry{payload: payload}
	if r.ttl > 0 {
		entry.expiresAt = now.Add(r.ttl)
	}
	r.sessions[session.ID] = entry
	return nil
}
