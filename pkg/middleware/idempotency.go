package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"innkeep/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const IdempotencyKeyHeader = "Idempotency-Key"

// inFlightTTL bounds how long a crashed request can keep its key claimed.
const inFlightTTL = time.Minute

// IdempotencyStore remembers successful responses by key for replay.
// Reserve claims a key for the request being executed and reports false
// while another request holds it; Release drops the claim.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*CachedResponse, bool, error)
	Set(ctx context.Context, key string, response *CachedResponse) error
	Reserve(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
	Stop()
}

type CachedResponse struct {
	StatusCode int         `json:"status_code"`
	Headers    http.Header `json:"headers"`
	Body       []byte      `json:"body"`
	CreatedAt  time.Time   `json:"created_at"`
}

type InMemoryIdempotencyStore struct {
	mu       sync.RWMutex
	store    map[string]*CachedResponse
	inFlight map[string]time.Time
	ttl      time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewInMemoryIdempotencyStore(ttl time.Duration) *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		store:    make(map[string]*CachedResponse),
		inFlight: make(map[string]time.Time),
		ttl:      ttl,
		stopCh:   make(chan struct{}),
	}

	go store.cleanup()

	return store
}

func (s *InMemoryIdempotencyStore) Get(_ context.Context, key string) (*CachedResponse, bool, error) {
	s.mu.RLock()
	response, exists := s.store[key]
	s.mu.RUnlock()

	if !exists {
		return nil, false, nil
	}

	if time.Since(response.CreatedAt) > s.ttl {
		s.mu.Lock()
		delete(s.store, key)
		s.mu.Unlock()
		return nil, false, nil
	}

	return response, true, nil
}

func (s *InMemoryIdempotencyStore) Set(_ context.Context, key string, response *CachedResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	response.CreatedAt = time.Now()
	s.store[key] = response
	return nil
}

func (s *InMemoryIdempotencyStore) Reserve(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if since, held := s.inFlight[key]; held && time.Since(since) < inFlightTTL {
		return false, nil
	}
	s.inFlight[key] = time.Now()
	return true, nil
}

func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inFlight, key)
	return nil
}

func (s *InMemoryIdempotencyStore) cleanup() {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			for key, response := range s.store {
				if time.Since(response.CreatedAt) > s.ttl {
					delete(s.store, key)
				}
			}
			for key, since := range s.inFlight {
				if time.Since(since) >= inFlightTTL {
					delete(s.inFlight, key)
				}
			}
			s.mu.Unlock()
		case <-s.stopCh:
			return
		}
	}
}

func (s *InMemoryIdempotencyStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// RedisIdempotencyStore shares replay state between service replicas. Entries
// expire through the key TTL.
type RedisIdempotencyStore struct {
	client redis.Cmdable
	ttl    time.Duration
	prefix string
}

func NewRedisIdempotencyStore(client redis.Cmdable, ttl time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client, ttl: ttl, prefix: "idempotency:"}
}

func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) (*CachedResponse, bool, error) {
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var cached CachedResponse
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false, err
	}
	return &cached, true, nil
}

func (s *RedisIdempotencyStore) Set(ctx context.Context, key string, response *CachedResponse) error {
	response.CreatedAt = time.Now()
	raw, err := json.Marshal(response)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+key, raw, s.ttl).Err()
}

// Reserve places a SETNX marker next to the cached response key.
func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key string) (bool, error) {
	return s.client.SetNX(ctx, s.prefix+"inflight:"+key, 1, inFlightTTL).Result()
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+"inflight:"+key).Err()
}

func (s *RedisIdempotencyStore) Stop() {}

type responseCapture struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (rc *responseCapture) WriteHeader(statusCode int) {
	rc.statusCode = statusCode
	rc.ResponseWriter.WriteHeader(statusCode)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	rc.body.Write(b)
	return rc.ResponseWriter.Write(b)
}

// Idempotency replays the stored 2xx response for a repeated Idempotency-Key
// on the same method and path. A repeat that arrives while the first request
// is still running gets 409. Store failures degrade to normal processing.
func Idempotency(store IdempotencyStore, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(IdempotencyKeyHeader)
			if header == "" || r.Method == http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}
			key := r.Method + " " + r.URL.Path + " " + header
			requestID := RequestIDFromContext(r.Context())

			if cached, found := lookup(r.Context(), store, key, log, requestID); found {
				replayCachedResponse(w, cached)
				return
			}

			claimed, err := store.Reserve(r.Context(), key)
			if err != nil {
				log.Warn("Idempotency reservation failed", "request_id", requestID, "error", err)
			} else if !claimed {
				log.Warn("Idempotent request already in progress", "request_id", requestID, "path", r.URL.Path)
				writeRejection(w, http.StatusConflict, "CONFLICT", "A request with this Idempotency-Key is still in progress")
				return
			}
			if claimed {
				defer func() {
					if err := store.Release(context.WithoutCancel(r.Context()), key); err != nil {
						log.Warn("Idempotency release failed", "request_id", requestID, "error", err)
					}
				}()
				// The first request may have finished between lookup and claim.
				if cached, found := lookup(r.Context(), store, key, log, requestID); found {
					replayCachedResponse(w, cached)
					return
				}
			}

			capture := &responseCapture{ResponseWriter: w, statusCode: http.StatusOK, body: &bytes.Buffer{}}
			next.ServeHTTP(capture, r)

			if capture.statusCode < 200 || capture.statusCode >= 300 {
				return
			}
			response := &CachedResponse{
				StatusCode: capture.statusCode,
				Headers:    w.Header().Clone(),
				Body:       capture.body.Bytes(),
			}
			if err := store.Set(context.WithoutCancel(r.Context()), key, response); err != nil {
				log.Warn("Idempotency store failed", "request_id", requestID, "error", err)
			}
		})
	}
}

func lookup(ctx context.Context, store IdempotencyStore, key string, log *logger.Logger, requestID string) (*CachedResponse, bool) {
	cached, found, err := store.Get(ctx, key)
	if err != nil {
		log.Warn("Idempotency lookup failed", "request_id", requestID, "error", err)
		return nil, false
	}
	return cached, found
}

func replayCachedResponse(w http.ResponseWriter, cached *CachedResponse) {
	for key, values := range cached.Headers {
		if key == RequestIDHeader {
			continue
		}
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}
