package webhook

import (
	"time"
)

// Event is the envelope Facebook delivers for page webhook
// subscriptions.
type Event struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry is one page's batch of changes within an event.
type Entry struct {
	ID      string   `json:"id"`
	Time    int64    `json:"time"`
	Changes []Change `json:"changes"`
}

// Change is one feed change. Only field="feed" with item="comment" is
// ingested; everything else is ignored.
type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

type ChangeValue struct {
	Item        string `json:"item"`
	CommentID   string `json:"comment_id"`
	PostID      string `json:"post_id"`
	Message     string `json:"message"`
	CreatedTime int64  `json:"created_time"`
	From        Actor  `json:"from"`
}

type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// IsComment reports whether the change describes a new feed comment.
func (c Change) IsComment() bool {
	return c.Field == "feed" && c.Value.Item == "comment"
}

// CreatedAt converts the platform-reported unix seconds.
func (v ChangeValue) CreatedAt() time.Time {
	return time.Unix(v.CreatedTime, 0)
}
