package models

// Post is a farmer-authored issue report. The authoring farmer owns it for
// edit/delete; any expert may append responses. Timestamps are RFC3339
// strings; UpdatedAt is null until the first mutation.
type Post struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CreatedAt   string     `json:"createdAt"`
	UpdatedAt   *string    `json:"updatedAt"`
	AuthorType  string     `json:"authorType"`
	AuthorName  string     `json:"authorName"`
	AuthorEmail string     `json:"authorEmail"`
	Resolved    bool       `json:"resolved"`
	Responses   []Response `json:"responses"`
}

// Response is an expert reply to a Post. Responses are append-only and keep
// insertion order.
type Response struct {
	ID      string `json:"id"`
	By      string `json:"by"`
	ByEmail string `json:"byEmail"`
	Text    string `json:"text"`
	At      string `json:"at"`
}
