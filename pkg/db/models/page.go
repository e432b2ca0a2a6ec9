package models

import (
	"time"
)

// PageStatus represents whether a connected page is eligible for
// automatic runs.
type PageStatus string

const (
	PageActive PageStatus = "active"
	PagePaused PageStatus = "paused"
)

// Page represents a connected Facebook page under automation.
type Page struct {
	ID uint `gorm:"primaryKey;column:id" json:"id"`

	PageID      string     `gorm:"column:page_id;uniqueIndex;not null" json:"pageId"`
	Name        string     `gorm:"column:name" json:"name"`
	AccessToken string     `gorm:"column:access_token" json:"-"`
	Status      PageStatus `gorm:"column:status;type:page_status;not null;default:active" json:"status"`
	AutoReply   bool       `gorm:"column:auto_reply;default:true" json:"autoReply"`
	ActivatedAt time.Time  `gorm:"column:activated_at" json:"activatedAt"`
	PauseReason string     `gorm:"column:pause_reason" json:"pauseReason,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName specifies the table name for the Page model
func (Page) TableName() string {
	return "pages"
}

// Eligible reports whether the page qualifies for automatic runs.
// Targeted manual runs bypass this check.
func (p *Page) Eligible() bool {
	return p.Status == PageActive && p.AutoReply
}
