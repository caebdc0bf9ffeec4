package session

import (
	"crm-rep/internal/domain/user"
	"sync"
)

// Session is the authenticated representative and their bearer tokens. The
// zero value is the signed-out session.
type Session struct {
	User         *user.User
	Token        string
	RefreshToken string
}

func (s Session) Authenticated() bool {
	return s.User != nil
}

// Tokens is the pair returned by the token endpoint.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Store holds the process-wide session. It is created by the application root
// and handed to every screen that needs it. Reads may run concurrently with
// the background token refresher; every write bumps Version.
type Store struct {
	mu      sync.RWMutex
	current Session
	version uint64
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) User() *user.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.User
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.RefreshToken
}

func (s *Store) Authenticated() bool {
	return s.User() != nil
}

// Version changes whenever the session is written.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Store) SetUser(u *user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.User = u
	s.version++
}

func (s *Store) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Token = token
	s.version++
}

// Establish writes the user and both tokens in one step, so no reader ever
// sees a user without a token.
func (s *Store) Establish(u *user.User, tokens Tokens) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Session{User: u, Token: tokens.Access, RefreshToken: tokens.Refresh}
	s.version++
}

// UpdateAccessToken replaces the access token only if refresh still matches
// the session's refresh token. It reports whether the write happened, so a
// refresh that races a logout is dropped.
func (s *Store) UpdateAccessToken(refresh, access string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current.User == nil || refresh == "" || s.current.RefreshToken != refresh {
		return false
	}
	s.current.Token = access
	s.version++
	return true
}

// ClearIf drops the session only if refresh is still its refresh token. It
// reports whether the session was cleared, so a rejection that arrives after a
// re-login leaves the new session alone.
func (s *Store) ClearIf(refresh string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current.User == nil || refresh == "" || s.current.RefreshToken != refresh {
		return false
	}
	s.current = Session{}
	s.version++
	return true
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Session{}
	s.version++
}
