package facebook

// Actor identifies the author of a comment or reply.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CommentData is one comment as returned by the Graph comment listing.
type CommentData struct {
	ID          string `json:"id"`
	Message     string `json:"message"`
	From        *Actor `json:"from"`
	CreatedTime string `json:"created_time"`

	// Comments holds nested replies when the listing requested them
	// (fields=comments.limit(n){from}). Nil when not requested.
	Comments *CommentListing `json:"comments"`
}

// CommentListing is the paginated envelope of a comment listing.
type CommentListing struct {
	Data   []CommentData `json:"data"`
	Paging *Paging       `json:"paging"`
}

// ContentItem is one post or reel from a content listing.
type ContentItem struct {
	ID string `json:"id"`
}

// ContentListing is the paginated envelope of a post/reel listing.
type ContentListing struct {
	Data   []ContentItem `json:"data"`
	Paging *Paging       `json:"paging"`
}

// Paging carries the next-cursor continuation of a Graph listing.
// Absence of Next means the listing is exhausted.
type Paging struct {
	Cursors *Cursors `json:"cursors"`
	Next    string   `json:"next"`
}

type Cursors struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// postResponse is the success body of a reply creation call.
type postResponse struct {
	ID string `json:"id"`
}
