package blobref

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handle is a scoped reference to the stored bytes of one record
type Handle struct {
	Token     string
	RecordID  string
	ExpiresAt time.Time
}

// Registry issues and releases blob handles. Every Acquire is paired with
// exactly one Release, ReleaseRecord or expiry.
type Registry struct {
	mu      sync.Mutex
	handles map[string]Handle
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// NewRegistry creates a registry whose handles live at most ttl
func NewRegistry(ttl time.Duration, logger *zap.Logger) *Registry {
	return &Registry{
		handles: make(map[string]Handle),
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
	}
}

// Acquire issues a new handle for recordID
func (r *Registry) Acquire(recordID string) Handle {
	h := Handle{
		Token:     uuid.NewString(),
		RecordID:  recordID,
		ExpiresAt: r.now().Add(r.ttl),
	}
	r.mu.Lock()
	r.handles[h.Token] = h
	r.mu.Unlock()
	return h
}

// Lookup returns the record id behind a live handle
func (r *Registry) Lookup(token string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[token]
	if !ok {
		return "", false
	}
	if !r.now().Before(h.ExpiresAt) {
		delete(r.handles, token)
		return "", false
	}
	return h.RecordID, true
}

// Release drops a handle. Releasing an unknown token is a no-op.
func (r *Registry) Release(token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handles[token]; !ok {
		return false
	}
	delete(r.handles, token)
	return true
}

// ReleaseRecord drops every handle of recordID and returns how many
func (r *Registry) ReleaseRecord(recordID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for token, h := range r.handles {
		if h.RecordID == recordID {
			delete(r.handles, token)
			n++
		}
	}
	return n
}

// Sweep drops handles expired at now
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for token, h := range r.handles {
		if !now.Before(h.ExpiresAt) {
			delete(r.handles, token)
			n++
		}
	}
	return n
}

// Len returns the number of live handles
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// Run sweeps every interval until ctx is done
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(r.now()); n > 0 {
				r.logger.Debug("expired blob handles swept", zap.Int("count", n))
			}
		}
	}
}
