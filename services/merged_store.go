package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrMergedNotFound means the token was revoked, expired or never issued.
var ErrMergedNotFound = errors.New("merged document not found")

// MergedDocument is a published merged PDF. Owner is the user id of the screen that
// published it.
type MergedDocument struct {
	Owner    string
	Filename string
	PDF      []byte
}

// MergedStore holds merged PDFs behind opaque tokens.
type MergedStore interface {
	Put(ctx context.Context, doc MergedDocument) (string, error)
	Get(ctx context.Context, token string) (MergedDocument, error)
	Revoke(ctx context.Context, token string) error
}

func newMergedToken() string {
	return uuid.NewString()
}

// MemoryMergedStore keeps merged documents in process memory.
type MemoryMergedStore struct {
	ttl time.Duration
	now func() time.Time

	mu   sync.Mutex
	docs map[string]memoryMergedEntry
}

type memoryMergedEntry struct {
	doc       MergedDocument
	expiresAt time.Time
}

func NewMemoryMergedStore(ttl time.Duration) *MemoryMergedStore {
	return &MemoryMergedStore{
		ttl:  ttl,
		now:  time.Now,
		docs: make(map[string]memoryMergedEntry),
	}
}

func (s *MemoryMergedStore) Put(_ context.Context, doc MergedDocument) (string, error) {
	token := newMergedToken()
	entry := memoryMergedEntry{doc: doc}
	if s.ttl > 0 {
		entry.expiresAt = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	s.docs[token] = entry
	return token, nil
}

func (s *MemoryMergedStore) Get(_ context.Context, token string) (MergedDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.docs[token]
	if !ok {
		return MergedDocument{}, ErrMergedNotFound
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		delete(s.docs, token)
		return MergedDocument{}, ErrMergedNotFound
	}
	return entry.doc, nil
}

func (s *MemoryMergedStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[token]; !ok {
		return ErrMergedNotFound
	}
	delete(s.docs, token)
	return nil
}

// Len reports how many documents are held, expired ones included until swept.
func (s *MemoryMergedStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

func (s *MemoryMergedStore) sweepLocked() {
	now := s.now()
	for token, entry := range s.docs {
		if !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt) {
			delete(s.docs, token)
		}
	}
}

// RedisMergedStore shares merged documents between gateway replicas.
type RedisMergedStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisMergedStore(client *redis.Client, prefix string, ttl time.Duration) *RedisMergedStore {
	if prefix == "" {
		prefix = "fund-portal:merged:"
	}
	return &RedisMergedStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisMergedStore) key(token string) string {
	return s.prefix + token
}

func (s *RedisMergedStore) Put(ctx context.Context, doc MergedDocument) (string, error) {
	token := newMergedToken()
	key := s.key(token)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "owner", doc.Owner, "filename", doc.Filename, "pdf", doc.PDF)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("store merged document: %w", err)
	}
	return token, nil
}

func (s *RedisMergedStore) Get(ctx context.Context, token string) (MergedDocument, error) {
	values, err := s.client.HMGet(ctx, s.key(token), "owner", "filename", "pdf").Result()
	if err != nil {
		return MergedDocument{}, fmt.Errorf("load merged document: %w", err)
	}
	if len(values) != 3 || values[2] == nil {
		return MergedDocument{}, ErrMergedNotFound
	}
	owner, _ := values[0].(string)
	filename, _ := values[1].(string)
	pdf, _ := values[2].(string)
	return MergedDocument{Owner: owner, Filename: filename, PDF: []byte(pdf)}, nil
}

func (s *RedisMergedStore) Revoke(ctx context.Context, token string) error {
	removed, err := s.client.Del(ctx, s.key(token)).Result()
	if err != nil {
		return fmt.Errorf("revoke merged document: %w", err)
	}
	if removed == 0 {
		return ErrMergedNotFound
	}
	return nil
}
