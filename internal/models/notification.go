package models

import "time"

// NotificationType tags the event that produced a notification.
type NotificationType string

const (
	// NotificationLike is sent to a post's author when their post is liked.
	NotificationLike NotificationType = "like"
	// NotificationComment is sent to a post's author when their post is commented on.
	NotificationComment NotificationType = "comment"
	// NotificationFollow is sent to a user when someone follows them.
	NotificationFollow NotificationType = "follow"
	// NotificationReply is sent to a comment's author when their comment receives a reply.
	NotificationReply NotificationType = "reply"
	// NotificationNewPost is fanned out to every follower when an author publishes a public post.
	NotificationNewPost NotificationType = "new_post"
)

// Notification is created exclusively by the fan-out engine, never by API
// callers. After creation only the read flag may change; rows disappear only
// by cascade with their post, comment or user.
type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RecipientID uint             `gorm:"not null;index" json:"recipient_id"`
	Recipient   User             `gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE" json:"-"`
	SenderID    uint             `gorm:"not null" json:"sender_id"`
	Sender      User             `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender"`
	Type        NotificationType `gorm:"size:20;not null" json:"type"`
	PostID      *uint            `gorm:"index" json:"post_id,omitempty"`
	Post        *Post            `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"post,omitempty"`
	CommentID   *uint            `json:"comment_id,omitempty"`
	Comment     *Comment         `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE" json:"-"`
	Message     string           `gorm:"size:255" json:"message"`
	IsRead      bool             `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt   time.Time        `gorm:"index" json:"created_at"`
}
