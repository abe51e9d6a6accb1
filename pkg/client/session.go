package client

import "sync"

// User is the account profile returned by the API.
type User struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
	Avatar   string `json:"avatar,omitempty"`
}

// Session holds the client-side authentication state: the current access
// token and the logged-in user. All access is mutex-guarded so a Client can
// be shared across goroutines; the refresh cookie itself lives in the HTTP
// client's cookie jar, never here.
type Session struct {
	mu    sync.RWMutex
	token string
	user  *User
}

// Token returns the current access token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the profile captured at login, or nil when logged out.
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Active reports whether the session currently holds an access token.
func (s *Session) Active() bool {
	return s.Token() != ""
}

func (s *Session) start(token string, user User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = &user
}

func (s *Session) setToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *Session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
}
