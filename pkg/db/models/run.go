package models

import (
	"time"

	"github.com/lib/pq"
)

// Run is the append-only audit record of one orchestrator invocation.
// Rows are inserted once and never updated.
type Run struct {
	ID    uint   `gorm:"primaryKey;column:id" json:"-"`
	RunID string `gorm:"column:run_id;uniqueIndex;not null" json:"runId"`

	Timestamp  time.Time `gorm:"column:timestamp;index;not null" json:"timestamp"`
	ShadowMode bool      `gorm:"column:shadow_mode" json:"shadowMode"`
	ManualRun  bool      `gorm:"column:manual_run" json:"manualRun"`

	// Aggregate results
	Processed     int            `gorm:"column:processed" json:"processed"`
	Replied       int            `gorm:"column:replied" json:"replied"`
	Skipped       int            `gorm:"column:skipped" json:"skipped"`
	Failed        int            `gorm:"column:failed" json:"failed"`
	TotalComments int            `gorm:"column:total_comments" json:"totalComments"`
	Errors        pq.StringArray `gorm:"column:errors;type:text[]" json:"errors"`

	// Message is set for runs that short-circuited (e.g. global pause).
	Message string `gorm:"column:message" json:"message,omitempty"`
}

// TableName specifies the table name for the Run model
func (Run) TableName() string {
	return "runs"
}
