package models

import (
	"time"
)

// Default policy values, applied when the settings row is missing a field.
const (
	DefaultMaxRepliesPerRun    = 100
	DefaultMinDelaySeconds     = 5
	DefaultMaxDelaySeconds     = 20
	DefaultThresholdWords      = 6
	DefaultThresholdChars      = 40
	DefaultErrorThreshold      = 5
)

// Settings is the global policy singleton read by every run. It is
// mutated only through the management API; the orchestrator loads it
// once per invocation and never writes it.
type Settings struct {
	ID uint `gorm:"primaryKey;column:id" json:"-"`

	MaxRepliesPerRun           int    `gorm:"column:max_replies_per_run" json:"maxRepliesPerRun"`
	MinDelay                   int    `gorm:"column:min_delay" json:"minDelay"`
	MaxDelay                   int    `gorm:"column:max_delay" json:"maxDelay"`
	ShortCommentThresholdWords int    `gorm:"column:short_comment_threshold_words" json:"shortCommentThresholdWords"`
	ShortCommentThresholdChars int    `gorm:"column:short_comment_threshold_chars" json:"shortCommentThresholdChars"`
	GlobalPause                bool   `gorm:"column:global_pause;default:false" json:"globalPause"`
	ShadowMode                 bool   `gorm:"column:shadow_mode;default:false" json:"shadowMode"`
	AutoPauseOnErrors          bool   `gorm:"column:auto_pause_on_errors;default:true" json:"autoPauseOnErrors"`
	ErrorThreshold             int    `gorm:"column:error_threshold" json:"errorThreshold"`
	AITone                     string `gorm:"column:ai_tone" json:"aiTone"`

	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName specifies the table name for the Settings model
func (Settings) TableName() string {
	return "settings"
}

// DefaultSettings returns the policy used when no settings row exists.
func DefaultSettings() Settings {
	return Settings{
		MaxRepliesPerRun:           DefaultMaxRepliesPerRun,
		MinDelay:                   DefaultMinDelaySeconds,
		MaxDelay:                   DefaultMaxDelaySeconds,
		ShortCommentThresholdWords: DefaultThresholdWords,
		ShortCommentThresholdChars: DefaultThresholdChars,
		AutoPauseOnErrors:          true,
		ErrorThreshold:             DefaultErrorThreshold,
	}
}

// Normalize fills zero-valued tunables with defaults so a partially
// populated settings row never disables pacing or budgets.
func (s *Settings) Normalize() {
	if s.MaxRepliesPerRun <= 0 {
		s.MaxRepliesPerRun = DefaultMaxRepliesPerRun
	}
	if s.MinDelay <= 0 {
		s.MinDelay = DefaultMinDelaySeconds
	}
	if s.MaxDelay < s.MinDelay {
		s.MaxDelay = DefaultMaxDelaySeconds
	}
	if s.MaxDelay < s.MinDelay {
		s.MaxDelay = s.MinDelay
	}
	if s.ShortCommentThresholdWords <= 0 {
		s.ShortCommentThresholdWords = DefaultThresholdWords
	}
	if s.ShortCommentThresholdChars <= 0 {
		s.ShortCommentThresholdChars = DefaultThresholdChars
	}
	if s.ErrorThreshold <= 0 {
		s.ErrorThreshold = DefaultErrorThreshold
	}
}
