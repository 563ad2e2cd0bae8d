package twitter

import "encoding/json"

// Credentials carries the signed user-context token supplied by the OAuth
// layer. The client never refreshes or stores tokens itself.
type Credentials struct {
	AccessToken string
}

// APIError is one structured error entry in a provider response envelope.
type APIError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Type   string `json:"type"`
}

// Envelope is the common provider response shape. A non-empty Errors list
// means failure regardless of HTTP status.
type Envelope struct {
	Data   json.RawMessage `json:"data"`
	Meta   json.RawMessage `json:"meta"`
	Errors []APIError      `json:"errors"`
}

// Response is the outcome of one provider round trip. Body holds the raw
// payload exactly as received, for audit storage.
type Response struct {
	StatusCode int
	Body       []byte
	Envelope   Envelope
}

// User is a provider account as returned by identity and lookup endpoints.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// Tweet is a post as returned by tweet list and create endpoints.
type Tweet struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// LikeResult mirrors the like endpoint's confirmation payload.
type LikeResult struct {
	Liked bool `json:"liked"`
}

// RetweetResult mirrors the retweet endpoint's confirmation payload.
type RetweetResult struct {
	Retweeted bool `json:"retweeted"`
}

// FollowResult mirrors the follow endpoint's confirmation payload.
type FollowResult struct {
	Following     bool `json:"following"`
	PendingFollow bool `json:"pending_follow"`
}

// BookmarkResult mirrors the bookmark endpoint's confirmation payload.
type BookmarkResult struct {
	Bookmarked bool `json:"bookmarked"`
}
