package session

import (
	"log/slog"
	"sync"
	"time"
)

// Registry owns the live conversations, keyed by (tenant, conversation).
// Its lock guards map structure only; it is never held across network or
// storage calls, so creation cost is map bookkeeping, not model latency.
type Registry struct {
	mu     sync.Mutex
	conns  map[Key]*Conversation
	logger *slog.Logger
	now    func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		conns:  make(map[Key]*Conversation),
		logger: log.With(slog.String("service", "session_registry")),
		now:    time.Now,
	}
}

// GetOrCreate returns the conversation for key, creating an empty one if
// absent. Concurrent callers for the same key always observe the same
// instance.
func (r *Registry) GetOrCreate(key Key) *Conversation {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.conns[key]; ok {
		c.Touch(now)
		return c
	}
	c := newConversation(now)
	r.conns[key] = c
	r.logger.Debug("conversation created",
		slog.String("tenant_id", key.TenantID),
		slog.String("conversation_id", key.ConversationID))
	return c
}

// Evict removes one conversation. No-op if absent.
func (r *Registry) Evict(key Key) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[key]; !ok {
		return
	}
	delete(r.conns, key)
	r.logger.Info("conversation evicted",
		slog.String("tenant_id", key.TenantID),
		slog.String("conversation_id", key.ConversationID))
}

// EvictTenant removes every conversation belonging to the tenant. Atomic with
// respect to concurrent GetOrCreate calls: a racing caller ends up either
// fully evicted or freshly created, never partially torn down.
func (r *Registry) EvictTenant(tenantID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key := range r.conns {
		if key.TenantID == tenantID {
			delete(r.conns, key)
			removed++
		}
	}
	if removed > 0 {
		r.logger.Info("tenant conversations evicted",
			slog.String("tenant_id", tenantID),
			slog.Int("count", removed))
	}
	return removed
}

// Len reports the number of live conversations.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// SweepIdle evicts conversations untouched for longer than ttl and returns
// how many were removed. Scheduled periodically by the server.
func (r *Registry) SweepIdle(ttl time.Duration) int {
	cutoff := r.now().Add(-ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key, c := range r.conns {
		if c.LastUsed().Before(cutoff) {
			delete(r.conns, key)
			removed++
		}
	}
	if removed > 0 {
		r.logger.Info("idle conversations swept", slog.Int("count", removed))
	}
	return removed
}
