package models

import (
	"time"
)

// CommentStatus represents the lifecycle state of an ingested comment.
type CommentStatus string

const (
	StatusPending CommentStatus = "pending"
	// StatusProcessing marks a comment claimed by a running job. It is an
	// internal in-flight marker; a comment never stays in this state past
	// the end of the run that claimed it.
	StatusProcessing CommentStatus = "processing"
	StatusReplied    CommentStatus = "replied"
	StatusSkipped    CommentStatus = "skipped"
	StatusFailed     CommentStatus = "failed"
)

// ReplyType tags how a reply was produced.
type ReplyType string

const (
	ReplyTypeEmoji ReplyType = "emoji"
	ReplyTypeAI    ReplyType = "ai"
)

// Comment represents one inbound page comment and its reply lifecycle.
type Comment struct {
	ID uint `gorm:"primaryKey;column:id" json:"-"`

	// Platform identity
	CommentID string `gorm:"column:comment_id;uniqueIndex;not null" json:"commentId"`
	PostID    string `gorm:"column:post_id;index" json:"postId"`
	PageID    string `gorm:"column:page_id;index" json:"pageId"`

	// Author
	FromID   string `gorm:"column:from_id" json:"fromId"`
	FromName string `gorm:"column:from_name" json:"fromName"`

	// Content
	Message     string    `gorm:"column:message" json:"message"`
	CreatedTime time.Time `gorm:"column:created_time;index" json:"createdTime"`
	ReceivedAt  time.Time `gorm:"column:received_at" json:"receivedAt"`

	// Reply lifecycle
	Status         CommentStatus `gorm:"column:status;type:comment_status;index;not null;default:pending" json:"status"`
	ReplyType      ReplyType     `gorm:"column:reply_type" json:"replyType,omitempty"`
	ReplyMessage   string        `gorm:"column:reply_message" json:"replyMessage,omitempty"`
	ReplyCommentID string        `gorm:"column:reply_comment_id" json:"replyCommentId,omitempty"`
	RepliedAt      *time.Time    `gorm:"column:replied_at" json:"repliedAt,omitempty"`
	SkipReason     string        `gorm:"column:skip_reason" json:"skipReason,omitempty"`
	ShadowMode     bool          `gorm:"column:shadow_mode;default:false" json:"shadowMode"`
}

// TableName specifies the table name for the Comment model
func (Comment) TableName() string {
	return "comments"
}
