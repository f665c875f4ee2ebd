package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Session is the identity a download ticket is bound to.
type Session struct {
	ID     string
	UserID string
}

// NewSession derives the session identity from the login token so the raw
// token never ends up in ticket slots or logs.
func NewSession(token, userID string) Session {
	sum := sha256.Sum256([]byte(token))

	return Session{
		ID:     hex.EncodeToString(sum[:]),
		UserID: userID,
	}
}

type Ticket struct {
	SessionID string
	Format    Format
	FileName  string
	DiskPath  string
	MimeType  string
	IssuedAt  time.Time
}
