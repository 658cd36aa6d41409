package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

const StatusGenerating = "generating"

// GenerationState is the transient, per-instance view of what the tutor is
// doing for a session right now. It never reaches the database.
type GenerationState struct {
	SessionId     string
	Status        string
	StartedAt     time.Time
	FragmentCount int
}

type RuntimeRepository struct {
	cache *cache.Cache
}

func NewRuntimeRepository() *RuntimeRepository {
	// Stale entries expire after an hour so a crashed stream cannot leave a
	// session looking busy forever.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &RuntimeRepository{
		cache: c,
	}
}

func (r *RuntimeRepository) Save(state *GenerationState) {
	r.cache.Set(state.SessionId, state, cache.DefaultExpiration)
}

func (r *RuntimeRepository) Get(sessionId string) (*GenerationState, bool) {
	if x, found := r.cache.Get(sessionId); found {
		return x.(*GenerationState), true
	}
	return nil, false
}

func (r *RuntimeRepository) Delete(sessionId string) {
	r.cache.Delete(sessionId)
}
