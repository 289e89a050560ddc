// Package auth holds the caller identity that handlers thread into every service call,
// plus password hashing and API token issuance.
package auth

import (
	"time"

	"inkwell/internal/models"
)

// Session is the explicit identity of whoever issued a request. The zero value is an
// anonymous reader.
type Session struct {
	UserID        uint
	Username      string
	Role          string
	Status        int
	PunishExpires *time.Time
}

// Anonymous is the session of a visitor who is not logged in.
var Anonymous = Session{}

func FromUser(u *models.User) Session {
	if u == nil {
		return Anonymous
	}
	return Session{
		UserID:        u.ID,
		Username:      u.Username,
		Role:          u.Role,
		Status:        u.Status,
		PunishExpires: u.PunishExpires,
	}
}

func (s Session) IsAuthenticated() bool { return s.UserID != 0 }

func (s Session) IsAdmin() bool { return s.IsAuthenticated() && s.Role == models.RoleAdmin }

// IsBanned reports a ban that is still in effect at now.
func (s Session) IsBanned(now time.Time) bool {
	return s.Status == models.UserStatusBanned && !s.punishmentExpired(now)
}

// IsMuted reports a mute that is still in effect at now.
func (s Session) IsMuted(now time.Time) bool {
	return s.Status == models.UserStatusMuted && !s.punishmentExpired(now)
}

func (s Session) punishmentExpired(now time.Time) bool {
	return s.PunishExpires != nil && now.After(*s.PunishExpires)
}

// CanModerate reports whether the session may act on content owned by ownerID.
func (s Session) CanModerate(ownerID *uint) bool {
	if s.IsAdmin() {
		return true
	}
	return s.IsAuthenticated() && ownerID != nil && *ownerID == s.UserID
}
