package memory

import (
	"time"

	"askdb-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionRepository holds per-conversation turn history with expiry. Expiry
// is passive on read plus go-cache's background janitor sweep. Writes are
// last-writer-wins; a session is driven by one conversation at a time.
type SessionRepository struct {
	cache        *cache.Cache
	maxTurnPairs int
}

func NewSessionRepository(ttl time.Duration, maxTurnPairs int) *SessionRepository {
	if ttl <= 0 {
		ttl = 1 * time.Hour
	}
	c := cache.New(ttl, 10*time.Minute)
	return &SessionRepository{
		cache:        c,
		maxTurnPairs: maxTurnPairs,
	}
}

// Get returns a private copy of the session, or (nil, false) if absent or
// expired. Callers may append turns freely; the cached object is never
// handed out.
func (r *SessionRepository) Get(sessionID string) (*store.Session, bool) {
	x, found := r.cache.Get(sessionID)
	if !found {
		return nil, false
	}
	cached := x.(*store.Session)
	out := *cached
	out.Turns = append([]store.Turn(nil), cached.Turns...)
	return &out, true
}

// Save persists the session and refreshes its TTL. The turn sequence is
// trimmed FIFO to the configured pair cap before storing: oldest pair first,
// never the newest. A fresh copy is stored so concurrent saves for the same
// session stay last-writer-wins without sharing a turn slice.
func (r *SessionRepository) Save(session *store.Session) {
	turns := session.Turns
	maxTurns := r.maxTurnPairs * 2
	if maxTurns > 0 && len(turns) > maxTurns {
		turns = turns[len(turns)-maxTurns:]
	}

	stored := &store.Session{
		ID:         session.ID,
		Turns:      append([]store.Turn(nil), turns...),
		CreatedAt:  session.CreatedAt,
		LastAccess: time.Now(),
	}
	r.cache.Set(stored.ID, stored, cache.DefaultExpiration)
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
