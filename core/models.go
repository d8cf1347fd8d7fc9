package core

import "time"

// User represents a user account in the system
//
// This is the "identity" - who someone is. EcoCoins is the canonical
// reward balance and is only ever changed through credit or debit.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	EcoCoins  int64     `json:"ecoCoins"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Account represents an authentication method
//
// This is the "credential" - how someone proves who they are
type Account struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	ProviderID string    `json:"providerId"` // "credential"
	AccountID  string    `json:"accountId"`
	Password   *string   `json:"-"` // argon2id encoded hash, never exposed
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

const CredentialProvider = "credential"

// Session represents an active login session
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	TokenHash string    `json:"-"` // Never expose in JSON (security!)
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SessionData combines user and session info
//
// It is the explicit session object handed to every ledger operation.
// A nil *SessionData means the caller is anonymous.
type SessionData struct {
	User    *User    `json:"user"`
	Session *Session `json:"session"`
}

// UserID returns the authenticated user id, or "" when anonymous.
func (s *SessionData) UserID() string {
	if s == nil || s.User == nil {
		return ""
	}
	return s.User.ID
}

type CreateSessionResult struct {
	Session *Session `json:"session"`
	Token   string   `json:"token"`
}

// SignUpInput contains the data needed to register a new user
type SignUpInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// SignUpResult contains the newly created user and their first session
type SignUpResult struct {
	User    *User    `json:"user"`
	Session *Session `json:"session"`
	Token   string   `json:"token"` // The raw token (not the hash)
}

// SignInInput contains the credentials for authentication
type SignInInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInResult contains the authenticated user and their session
type SignInResult struct {
	User    *User    `json:"user"`
	Session *Session `json:"session"`
	Token   string   `json:"token"` // The raw token (not the hash)
}
