// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered GitForum user.
type User struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Username    string `gorm:"unique;not null" json:"username"`
	Email       string `gorm:"unique;not null" json:"email"`
	Password    string `gorm:"not null" json:"-"`
	DisplayName string `gorm:"size:100" json:"display_name"`
	Bio         string `gorm:"size:500" json:"bio"`
	Avatar      string `gorm:"size:500" json:"avatar"`

	Location        string `gorm:"size:100" json:"location"`
	Website         string `gorm:"size:200" json:"website"`
	GithubUsername  string `gorm:"size:39" json:"github_username"`
	TwitterUsername string `gorm:"size:15" json:"twitter_username"`
	IsVerified      bool   `gorm:"default:false" json:"is_verified"`
	IsAdmin         bool   `gorm:"default:false" json:"is_admin"`

	// Denormalized counters. Maintained exclusively by the counter engine;
	// never assigned absolute values outside reconciliation.
	FollowersCount int `gorm:"not null;default:0" json:"followers_count"`
	FollowingCount int `gorm:"not null;default:0" json:"following_count"`
	PostsCount     int `gorm:"not null;default:0" json:"posts_count"`

	// IsFollowing indicates whether the requesting user follows this user (computed).
	IsFollowing bool `gorm:"->" json:"is_following"`

	// LastSeenAt is stamped on websocket presence transitions. IsOnline is
	// filled from the presence tracker when serving a profile, never stored.
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
	IsOnline   bool       `gorm:"-" json:"is_online"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Posts []Post `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
}

// Name returns the display name, falling back to the username.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
