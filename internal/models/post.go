// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// PostLanguages are the accepted values for the post language tag.
var PostLanguages = []string{
	"javascript", "typescript", "python", "rust", "go", "java", "csharp",
	"cpp", "c", "html", "css", "sql", "shell", "ruby", "php", "swift",
	"kotlin", "dart", "yaml", "json", "markdown", "other",
}

// Post represents a shared code snippet.
type Post struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	AuthorID    uint   `gorm:"not null;index" json:"author_id"`
	Author      User   `gorm:"foreignKey:AuthorID" json:"author"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Filename    string `gorm:"size:255;not null" json:"filename"`
	Language    string `gorm:"size:50;not null" json:"language"`
	Code        string `gorm:"type:text;not null" json:"code"`
	Description string `gorm:"size:2000" json:"description"`
	// No gorm default tag: with one, gorm drops the zero value false from
	// the INSERT and the column default would silently flip private posts
	// to public. The application always writes the field explicitly.
	IsPublic bool `gorm:"not null" json:"is_public"`

	Tags []Tag `gorm:"many2many:post_tags;" json:"tags,omitempty"`

	// Denormalized counters. Each must equal the live count of its
	// relationship rows; mutated only via relative updates by the counter
	// engine, repaired only by the reconciliation routine.
	Views          int `gorm:"not null;default:0" json:"views"`
	LikesCount     int `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount  int `gorm:"not null;default:0" json:"comments_count"`
	BookmarksCount int `gorm:"not null;default:0" json:"bookmarks_count"`
	ForksCount     int `gorm:"not null;default:0" json:"forks_count"`

	// Liked and Bookmarked indicate the requesting user's state (computed at query time).
	Liked      bool `gorm:"->" json:"liked"`
	Bookmarked bool `gorm:"->" json:"bookmarked"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ValidLanguage reports whether lang is an accepted language tag.
func ValidLanguage(lang string) bool {
	for _, l := range PostLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// CodePreview returns the first 500 characters of the code body for list views.
func (p *Post) CodePreview() string {
	r := []rune(p.Code)
	if len(r) <= 500 {
		return p.Code
	}
	return string(r[:500])
}
