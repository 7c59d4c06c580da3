package bot

import (
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// State is where one user currently is in a multi-step dialogue.
type State int

const (
	StateIdle State = iota
	StateAwaitingExchange
	StateAwaitingMode
	StateAwaitingAPIKey
	StateAwaitingAPISecret
	StateAwaitingPassphrase
	StateAwaitingQuestion
)

// Draft is the in-progress input of one dialogue, keyed by user. It holds
// plaintext credentials only until the final step commits them to the store.
type Draft struct {
	State      State
	Exchange   string
	Demo       bool
	APIKey     string
	APISecret  string
	Passphrase string
}

// DraftStore keeps dialogue drafts in memory with a TTL, so an abandoned
// credential entry does not linger forever.
type DraftStore struct {
	cache *gocache.Cache
}

// NewDraftStore creates a store whose drafts expire after ttl.
func NewDraftStore(ttl time.Duration) *DraftStore {
	return &DraftStore{cache: gocache.New(ttl, ttl)}
}

// Get returns the user's draft, or an idle zero draft when none exists.
func (s *DraftStore) Get(userID int64) Draft {
	if v, ok := s.cache.Get(key(userID)); ok {
		return v.(Draft)
	}
	return Draft{State: StateIdle}
}

// Put stores the draft, refreshing its TTL.
func (s *DraftStore) Put(userID int64, d Draft) {
	s.cache.SetDefault(key(userID), d)
}

// Clear drops the user's draft.
func (s *DraftStore) Clear(userID int64) {
	s.cache.Delete(key(userID))
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
