package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/mikeboe/paper-assistant/pkg/citation"
)

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// Store holds sessions in memory. A session expires after ttl without access.
type Store struct {
	sessions     *cache.Cache
	defaultStyle citation.Style
}

func NewStore(ttl time.Duration, defaultStyle citation.Style) *Store {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &Store{
		sessions:     cache.New(ttl, 10*time.Minute),
		defaultStyle: defaultStyle,
	}
}

func (st *Store) Create() *Session {
	s := New(st.defaultStyle)
	st.sessions.SetDefault(s.ID.String(), s)
	return s
}

// Get returns the session and extends its expiry.
func (st *Store) Get(id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	v, ok := st.sessions.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	s := v.(*Session)
	st.sessions.SetDefault(id, s)
	return s, nil
}

func (st *Store) Delete(id string) error {
	if _, ok := st.sessions.Get(id); !ok {
		return ErrNotFound
	}
	st.sessions.Delete(id)
	return nil
}

func (st *Store) Len() int {
	return st.sessions.ItemCount()
}
