package chat

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/triplore/triplore/internal/types"
)

// HistoryRepository keeps per-session conversation history. Histories are
// ephemeral: they live in process memory and expire after the configured TTL
// of inactivity.
type HistoryRepository interface {
	Get(sessionID string) []types.ChatMessage
	Append(sessionID string, messages ...types.ChatMessage)
	Clear(sessionID string)
}

var _ HistoryRepository = (*CacheHistoryRepository)(nil)

type CacheHistoryRepository struct {
	mu          sync.Mutex
	cache       *gocache.Cache
	maxMessages int
}

func NewCacheHistoryRepository(ttl time.Duration, maxMessages int) *CacheHistoryRepository {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if maxMessages <= 0 {
		maxMessages = 20
	}
	return &CacheHistoryRepository{
		cache:       gocache.New(ttl, 2*ttl),
		maxMessages: maxMessages,
	}
}

func (r *CacheHistoryRepository) Get(sessionID string) []types.ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(sessionID)
}

// Append stores the messages and refreshes the session TTL. Only the newest
// maxMessages turns are kept; older ones are dropped from the front.
func (r *CacheHistoryRepository) Append(sessionID string, messages ...types.ChatMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	history := append(r.get(sessionID), messages...)
	if len(history) > r.maxMessages {
		history = history[len(history)-r.maxMessages:]
	}
	r.cache.SetDefault(sessionID, history)
}

func (r *CacheHistoryRepository) Clear(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Delete(sessionID)
}

func (r *CacheHistoryRepository) get(sessionID string) []types.ChatMessage {
	if stored, ok := r.cache.Get(sessionID); ok {
		if history, ok := stored.([]types.ChatMessage); ok {
			return history
		}
	}
	return nil
}
