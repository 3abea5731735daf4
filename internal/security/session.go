package security

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
)

const sessionName = "imagemarket_session"

const (
	sessionUserID = "user_id"
	sessionEmail  = "email"
)

// SessionStore mirrors the logged-in identity in a signed, encrypted cookie.
type SessionStore struct {
	store *sessions.CookieStore
}

func NewSessionStore(secret string, secure bool) (*SessionStore, error) {
	hashKey, err := deriveKey(secret, "session-hash", 32)
	if err != nil {
		return nil, err
	}
	blockKey, err := deriveKey(secret, "session-block", 32)
	if err != nil {
		return nil, err
	}

	store := sessions.NewCookieStore(hashKey, blockKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionStore{store: store}, nil
}

// Save records the identity for subsequent requests from the same browser.
func (s *SessionStore) Save(w http.ResponseWriter, r *http.Request, userID, email string) error {
	// Get returns a fresh session when the cookie is missing or unreadable.
	session, _ := s.store.Get(r, sessionName)
	session.Values[sessionUserID] = userID
	session.Values[sessionEmail] = email
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the identity saved by Save, if any.
func (s *SessionStore) Load(r *http.Request) (userID, email string, ok bool) {
	session, err := s.store.Get(r, sessionName)
	if err != nil || session.IsNew {
		return "", "", false
	}
	userID, _ = session.Values[sessionUserID].(string)
	email, _ = session.Values[sessionEmail].(string)
	return userID, email, userID != ""
}

func (s *SessionStore) Clear(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, sessionName)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
