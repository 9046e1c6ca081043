package models

import "time"

// PostRevision is an immutable snapshot of a post's content taken right
// before an update is applied. RevisionNumber is 1-based, strictly
// increasing and gap-free per post; the (post, revision_number) unique
// index is the cross-process backstop for the numbering race.
type PostRevision struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	PostID         uint   `gorm:"not null;uniqueIndex:idx_post_revision" json:"post_id"`
	Post           Post   `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	AuthorID       uint   `gorm:"not null" json:"author_id"`
	Author         User   `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	RevisionNumber int    `gorm:"not null;uniqueIndex:idx_post_revision" json:"revision_number"`
	Title          string `gorm:"size:200;not null" json:"title"`
	Code           string `gorm:"type:text;not null" json:"code"`
	Description    string `gorm:"size:2000" json:"description"`
	CommitMessage  string `gorm:"size:500" json:"commit_message"`

	CreatedAt time.Time `json:"created_at"`
}
