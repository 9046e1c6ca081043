package models

import "time"

// Tag categorizes posts. UsageCount is a denormalized counter maintained by
// the counter engine when tags are attached to or detached from posts.
type Tag struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:50;unique;not null" json:"name"`
	Color      string    `gorm:"size:7;default:'#3B82F6'" json:"color"`
	UsageCount int       `gorm:"not null;default:0" json:"usage_count"`
	CreatedAt  time.Time `json:"created_at"`
}
