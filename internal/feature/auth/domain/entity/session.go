package entity

import "time"

// Session represents one browser client's authenticated session.
// It stores session metadata for lifecycle management and security auditing.
type Session struct {
	ID        string     // Opaque session key (64-character hex string)
	UserID    uint       // Associated user ID
	Username  string     // Username at login time, kept for logging
	UserAgent string     // Client's User-Agent header
	IPAddress string     // Client's IP address
	CreatedAt time.Time  // Session creation time
	ExpiresAt time.Time  // Session expiration time (fixed TTL from creation)
	RevokedAt *time.Time // Revocation time (nil if active)
}

// IsExpired returns true if the session has passed its expiration time.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// IsRevoked returns true if the session has been invalidated by logout.
func (s *Session) IsRevoked() bool {
	return s.RevokedAt != nil
}

// IsValid returns true if the session is neither expired nor revoked.
func (s *Session) IsValid() bool {
	return !s.IsExpired() && !s.IsRevoked()
}
