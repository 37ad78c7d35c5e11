package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/brightclass/aigateway/internal/llm"
)

// Key identifies one logical conversation. Both ids are opaque caller-supplied
// strings.
type Key struct {
	TenantID       string
	ConversationID string
}

// Conversation is the live state for one key: the accumulated turn history,
// the set of content fingerprints already delivered to the model, and a
// last-touched timestamp for idle eviction.
//
// The embedded mutex serializes model calls per conversation; callers hold it
// around the resolve-send-mark sequence so at most one invocation is in flight
// per key. The registry's own lock never covers these fields.
type Conversation struct {
	mu      sync.Mutex
	history []llm.Turn
	seen    map[string]struct{}
	// lastUsed is unix nanos; atomic so the sweeper can read it without
	// taking the conversation lock.
	lastUsed  atomic.Int64
	createdAt time.Time
}

func newConversation(now time.Time) *Conversation {
	c := &Conversation{
		seen:      make(map[string]struct{}),
		createdAt: now,
	}
	c.lastUsed.Store(now.UnixNano())
	return c
}

// Lock acquires the per-conversation lock.
func (c *Conversation) Lock() { c.mu.Lock() }

// Unlock releases the per-conversation lock.
func (c *Conversation) Unlock() { c.mu.Unlock() }

// Seen reports whether a content fingerprint was already sent for this
// conversation. Caller must hold the conversation lock.
func (c *Conversation) Seen(digest string) bool {
	_, ok := c.seen[digest]
	return ok
}

// MarkSeen records a fingerprint as delivered. Call only after the content was
// actually included in a successful model call; a failed call must leave the
// set untouched so a retry resends the bytes. Caller must hold the lock.
func (c *Conversation) MarkSeen(digest string) {
	c.seen[digest] = struct{}{}
}

// History returns the turn history. Caller must hold the conversation lock and
// must not retain the slice past Unlock.
func (c *Conversation) History() []llm.Turn {
	return c.history
}

// Append adds turns to the history. Caller must hold the conversation lock.
func (c *Conversation) Append(turns ...llm.Turn) {
	c.history = append(c.history, turns...)
}

// Touch records activity for idle-eviction accounting.
func (c *Conversation) Touch(now time.Time) {
	c.lastUsed.Store(now.UnixNano())
}

// LastUsed returns the most recent activity time.
func (c *Conversation) LastUsed() time.Time {
	return time.Unix(0, c.lastUsed.Load())
}
