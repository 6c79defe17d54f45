package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/go_cellar/internal/cart"
	"github.com/fjod/go_cellar/internal/catalog"
	"github.com/fjod/go_cellar/internal/checkout"
	"github.com/fjod/go_cellar/internal/metrics"
	"github.com/fjod/go_cellar/internal/order"
	"github.com/fjod/go_cellar/internal/storage"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultIdleTTL is how long an untouched session stays in memory. Its state stays in storage.
	DefaultIdleTTL = 30 * time.Minute

	// CleanupInterval is how often the background janitor runs
	CleanupInterval = time.Minute

	// RestoreTimeout bounds loading a session from storage.
	RestoreTimeout = 5 * time.Second
)

var (
	// ErrInvalidID rejects ids that are not uuids.
	ErrInvalidID = errors.New("invalid session id")

	// ErrUnavailable means a session's stored state could not be read. Nothing is cached, so the
	// next request tries again.
	ErrUnavailable = errors.New("session storage unavailable")
)

// Session is one visitor's live cart, checkout and confirmation state.
type Session struct {
	ID       string
	Cart     *cart.Store
	Checkout *checkout.Transition
	Orders   *order.Repository

	lastSeen time.Time
}

type Config struct {
	IdleTTL         time.Duration
	CleanupInterval time.Duration
	CheckoutOptions []checkout.Option
}

// Manager keeps live sessions in memory, restoring them from storage on first access.
type Manager struct {
	store     storage.Store
	catalog   catalog.Catalog
	processor checkout.Processor
	cfg       Config
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	sfg      singleflight.Group // one restore per session id

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

func NewManager(store storage.Store, cat catalog.Catalog, processor checkout.Processor, cfg Config) *Manager {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = CleanupInterval
	}
	m := &Manager{
		store:       store,
		catalog:     cat,
		processor:   processor,
		cfg:         cfg,
		now:         time.Now,
		sessions:    make(map[string]*Session),
		stopCleanup: make(chan struct{}),
	}

	m.wg.Add(1)
	go m.cleanupLoop()

	return m
}

// NewID returns a fresh session id.
func NewID() string {
	return uuid.NewString()
}

// Get returns the live session for id, restoring its cart from storage if this process has
// not seen it yet. The restore is shared by concurrent callers, so it does not follow any
// single caller's cancellation.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}

	if s := m.lookup(id); s != nil {
		return s, nil
	}

	v, err, _ := m.sfg.Do(id, func() (interface{}, error) {
		if s := m.lookup(id); s != nil {
			return s, nil
		}

		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), RestoreTimeout)
		defer cancel()

		kv := storage.NewScoped(m.store, id)
		c, err := cart.Restore(rctx, kv, m.catalog)
		if err != nil {
			log.WithError(err).WithField("session", id).Error("session restore failed")
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		orders := order.NewRepository(kv)
		s := &Session{
			ID:       id,
			Cart:     c,
			Checkout: checkout.NewTransition(c, orders, m.processor, m.cfg.CheckoutOptions...),
			Orders:   orders,
		}

		m.mu.Lock()
		s.lastSeen = m.now()
		m.sessions[id] = s
		metrics.ActiveSessions.Set(float64(len(m.sessions)))
		m.mu.Unlock()

		log.WithFields(log.Fields{"session": id, "items": c.ItemCount()}).Debug("session restored")
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (m *Manager) lookup(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil
	}
	s.lastSeen = m.now()
	return s
}

// Len reports how many sessions are held in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// cleanupLoop periodically evicts idle sessions
func (m *Manager) cleanupLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.evictIdle()
		case <-m.stopCleanup:
			return
		}
	}
}

// evictIdle drops sessions unused for longer than the idle TTL. A session in the middle of
// placing an order is kept.
func (m *Manager) evictIdle() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.cfg.IdleTTL)
	evicted := 0
	for id, s := range m.sessions {
		if s.lastSeen.After(cutoff) || s.Checkout.State().IsBusy() {
			continue
		}
		delete(m.sessions, id)
		evicted++
	}
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	if evicted > 0 {
		log.WithField("evicted", evicted).Debug("evicted idle sessions")
	}
	return evicted
}

// Close stops the background cleanup and waits for it to finish
func (m *Manager) Close() error {
	close(m.stopCleanup)
	m.wg.Wait()
	return nil
}
