package storage

import (
	"context"
	"errors"
)

// Store is the durable key-value storage the shop keeps its cart and last order in.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

var ErrNotFound = errors.New("key not found")

// Scoped namespaces every key with a session id so visitors never see each other's data.
type Scoped struct {
	store     Store
	sessionID string
}

func NewScoped(store Store, sessionID string) *Scoped {
	return &Scoped{store: store, sessionID: sessionID}
}

func (s *Scoped) Get(ctx context.Context, key string) ([]byte, error) {
	return s.store.Get(ctx, s.key(key))
}

func (s *Scoped) Set(ctx context.Context, key string, value []byte) error {
	return s.store.Set(ctx, s.key(key), value)
}

func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.store.Delete(ctx, s.key(key))
}

func (s *Scoped) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Scoped) key(key string) string {
	return SessionKey(s.sessionID, key)
}

func SessionKey(sessionID, key string) string {
	return "session:" + sessionID + ":" + key
}
