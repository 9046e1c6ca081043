package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a comment on a post. ParentID forms an unbounded tree
// in storage; read serialization caps presentation depth and sibling fan-out.
type Comment struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	PostID   uint     `gorm:"not null;index" json:"post_id"`
	Post     Post     `gorm:"foreignKey:PostID" json:"post,omitempty"`
	AuthorID uint     `gorm:"not null" json:"author_id"`
	Author   User     `gorm:"foreignKey:AuthorID" json:"author"`
	ParentID *uint    `gorm:"index" json:"parent_id,omitempty"`
	Parent   *Comment `gorm:"foreignKey:ParentID" json:"-"`
	Content  string   `gorm:"size:2000;not null" json:"content"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// CommentNode is a comment with its bounded reply subtree, as returned by
// the threaded read serialization.
type CommentNode struct {
	Comment
	RepliesCount int            `json:"replies_count"`
	Replies      []*CommentNode `json:"replies"`
}
