package entity

import "time"

// AccessToken is one bearer credential issued at login. Only the SHA-256
// digest of the plaintext token is persisted; the plaintext is returned to
// the client once and never stored. Multiple live tokens per user are
// allowed (multi-session); logout flips Revoked on a single token.
type AccessToken struct {
	ID         string
	UserID     string
	TokenHash  string
	Revoked    bool
	CreatedAt  time.Time
	LastUsedAt time.Time
}

// Valid reports whether the token may still resolve an identity.
func (t *AccessToken) Valid() bool {
	return t != nil && !t.Revoked
}
