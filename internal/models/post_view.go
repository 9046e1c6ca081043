package models

import (
	"strconv"
	"time"
)

// PostView records a unique view of a post. IdentityKey is derived from the
// strongest identity available (authenticated user, else session key, else
// IP address) so exactly one row exists per (post, identity) tuple no
// matter which identity kind was used.
type PostView struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PostID      uint      `gorm:"not null;uniqueIndex:idx_view_post_identity" json:"post_id"`
	IdentityKey string    `gorm:"size:64;not null;uniqueIndex:idx_view_post_identity" json:"-"`
	UserID      *uint     `gorm:"index" json:"user_id,omitempty"`
	IPAddress   string    `gorm:"size:45" json:"ip_address,omitempty"`
	SessionKey  string    `gorm:"size:40" json:"-"`
	CreatedAt   time.Time `json:"created_at"`

	Post Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"post,omitempty"`
}

// ViewIdentityKey builds the dedup key for a view using the precedence
// user > session > IP. It returns "" when no identity is available, in
// which case the view is not recorded.
func ViewIdentityKey(userID *uint, sessionKey, ip string) string {
	switch {
	case userID != nil && *userID != 0:
		return "user:" + strconv.FormatUint(uint64(*userID), 10)
	case sessionKey != "":
		return "session:" + sessionKey
	case ip != "":
		return "ip:" + ip
	}
	return ""
}
