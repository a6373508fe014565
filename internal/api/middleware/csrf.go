package middleware

import (
	"crypto/subtle"
	"net/http"
	"sync"
	"time"

	"github.com/hugh/teamhub/pkg/crypto"
)

const (
	csrfTokenLength = 32
	csrfCookieName  = "csrf_token"
	csrfHeaderName  = "X-CSRF-Token"
	csrfTokenExpiry = 24 * time.Hour
)

// CSRFToken represents a CSRF token with expiry
type CSRFToken struct {
	Token     string
	ExpiresAt time.Time
}

// CSRFStore keeps one token per browser session in memory.
type CSRFStore struct {
	tokens map[string]CSRFToken
	mu     sync.RWMutex
	stop   chan struct{}
	once   sync.Once
}

func NewCSRFStore() *CSRFStore {
	store := &CSRFStore{
		tokens: make(map[string]CSRFToken),
		stop:   make(chan struct{}),
	}

	go store.cleanup()

	return store
}

// Stop ends the background cleanup.
func (s *CSRFStore) Stop() {
	s.once.Do(func() { close(s.stop) })
}

// cleanup removes expired tokens periodically
func (s *CSRFStore) cleanup() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		now := time.Now()
		for sessionID, token := range s.tokens {
			if now.After(token.ExpiresAt) {
				delete(s.tokens, sessionID)
			}
		}
		s.mu.Unlock()
	}
}

// GetOrCreate returns an existing token or creates a new one
func (s *CSRFStore) GetOrCreate(sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token, exists := s.tokens[sessionID]; exists && time.Now().Before(token.ExpiresAt) {
		return token.Token, nil
	}

	token, err := crypto.GenerateRandomString(csrfTokenLength)
	if err != nil {
		return "", err
	}

	s.tokens[sessionID] = CSRFToken{
		Token:     token,
		ExpiresAt: time.Now().Add(csrfTokenExpiry),
	}

	return token, nil
}

// Validate checks if the provided token is valid for the session
func (s *CSRFStore) Validate(sessionID, providedToken string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, exists := s.tokens[sessionID]
	if !exists || time.Now().After(token.ExpiresAt) {
		return false
	}

	// Constant-time comparison to prevent timing attacks
	return subtle.ConstantTimeCompare([]byte(token.Token), []byte(providedToken)) == 1
}

// CSRF protects cookie-authenticated mutations. Requests that carry their
// token in a header, or no session cookie at all, pass through.
func CSRF(store *CSRFStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := getSessionID(r)

			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
				if sessionID != "" {
					ensureCSRFCookie(w, r, store, sessionID)
				}
				next.ServeHTTP(w, r)
				return
			}

			if sessionID == "" || r.Header.Get("Authorization") != "" || r.Header.Get("X-Auth-Token") != "" {
				next.ServeHTTP(w, r)
				return
			}

			csrfToken := r.Header.Get(csrfHeaderName)
			if csrfToken == "" {
				writeError(w, http.StatusForbidden, "CSRF token missing")
				return
			}

			if !store.Validate(sessionID, csrfToken) {
				writeError(w, http.StatusForbidden, "Invalid CSRF token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ensureCSRFCookie sets the CSRF token cookie if not present
func ensureCSRFCookie(w http.ResponseWriter, r *http.Request, store *CSRFStore, sessionID string) {
	if _, err := r.Cookie(csrfCookieName); err == nil {
		return
	}

	token, err := store.GetOrCreate(sessionID)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: false, // JavaScript needs to read this
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(csrfTokenExpiry.Seconds()),
	})
}

// getSessionID uses the token cookie's signature segment as the session
// identifier.
func getSessionID(r *http.Request) string {
	cookie, err := r.Cookie(TokenCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	v := cookie.Value
	if len(v) > 32 {
		return v[len(v)-32:]
	}
	return v
}
