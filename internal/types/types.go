package types

import "encoding/json"

// MessageType is the content type tag of a log message.
type MessageType string

const (
	MessageTypePost    MessageType = "post"
	MessageTypeContact MessageType = "contact"
	MessageTypeAbout   MessageType = "about"
	MessageTypeVote    MessageType = "vote"
	// MessageTypeInvalid tags entries that failed to decode.
	MessageTypeInvalid MessageType = "invalid"
)

// Message is a decoded log entry.
type Message struct {
	ID         string          `json:"id"`
	Seq        int64           `json:"seq"`
	Author     string          `json:"author"`
	Type       MessageType     `json:"type"`
	AssertedAt int64           `json:"asserted_at"`
	ReceivedAt int64           `json:"received_at"`
	Private    bool            `json:"private,omitempty"`
	Content    json.RawMessage `json:"content"`
	Raw        []byte          `json:"-"`
}

// MessageRecord is the bookkeeping row kept for every log entry,
// including unknown and malformed ones.
type MessageRecord struct {
	ID         string      `json:"id"`
	Seq        int64       `json:"seq"`
	Author     string      `json:"author,omitempty"`
	Type       MessageType `json:"type"`
	ReceivedAt int64       `json:"received_at"`
}

// Author is an indexed identity with its latest profile fields.
type Author struct {
	ID          string  `json:"id"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	ImageLink   *string `json:"image_link,omitempty"`
}

// ContactState is the asserted relationship toward another author.
type ContactState string

const (
	ContactNeutral ContactState = "neutral"
	ContactFollow  ContactState = "follow"
	ContactBlock   ContactState = "block"
)

// ContactStatus resolves one direction of a contact edge. Private is
// nil unless the resolving identity owns the edge.
type ContactStatus struct {
	Public  ContactState  `json:"public"`
	Private *ContactState `json:"private,omitempty"`
}

// Post is an indexed post message.
type Post struct {
	ID         string  `json:"id"`
	Author     string  `json:"author"`
	Text       string  `json:"text"`
	AssertedAt int64   `json:"asserted_at"`
	ReceivedAt int64   `json:"received_at"`
	Seq        int64   `json:"seq"`
	RootKey    *string `json:"root_key,omitempty"`
	ForkKey    *string `json:"fork_key,omitempty"`
	Private    bool    `json:"private,omitempty"`
}

// Like is the live vote one author holds on a post.
type Like struct {
	Author string `json:"author"`
	PostID string `json:"post_id"`
	Value  int    `json:"value"`
}

// Thread is a root post with its direct replies, computed on demand.
type Thread struct {
	Root      Post   `json:"root"`
	Replies   []Post `json:"replies"`
	IsPrivate bool   `json:"is_private"`
}

// OrderBy selects one of the three partial orderings.
type OrderBy string

const (
	OrderAsserted OrderBy = "asserted"
	OrderReceived OrderBy = "received"
	OrderCausal   OrderBy = "causal"
)

// Privacy restricts results by the decrypted-privately flag.
type Privacy string

const (
	PrivacyAll     Privacy = "all"
	PrivacyPublic  Privacy = "public"
	PrivacyPrivate Privacy = "private"
)

// Page carries relay-style pagination arguments. First/After paginate
// forward, Last/Before backward; mixing directions is a validation
// error.
type Page struct {
	First  *int
	After  *string
	Last   *int
	Before *string
}

// PostFilter narrows a posts connection. All supplied filters must
// hold simultaneously.
type PostFilter struct {
	Query            string
	Authors          []string
	Privacy          Privacy
	MentionsAuthors  []string
	MentionsChannels []string
}

// ThreadSelector widens a threads connection. A thread qualifies when
// any one supplied selector holds; Privacy applies on top.
type ThreadSelector struct {
	Privacy                               Privacy
	RootsAuthoredBy                       []string
	RootsAuthoredBySomeoneFollowedBy      []string
	HasRepliesAuthoredBy                  []string
	HasRepliesAuthoredBySomeoneFollowedBy []string
	MentionsAuthors                       []string
	MentionsChannels                      []string
}

// PageInfo describes the returned window of a connection.
type PageInfo struct {
	StartCursor     *string `json:"start_cursor,omitempty"`
	EndCursor       *string `json:"end_cursor,omitempty"`
	HasNextPage     bool    `json:"has_next_page"`
	HasPreviousPage bool    `json:"has_previous_page"`
}

// PostEdge pairs a post with its resume cursor.
type PostEdge struct {
	Cursor string `json:"cursor"`
	Node   Post   `json:"node"`
}

// PostConnection is a paginated posts result.
type PostConnection struct {
	Edges      []PostEdge `json:"edges"`
	PageInfo   PageInfo   `json:"page_info"`
	TotalCount int        `json:"total_count"`
}

// ThreadEdge pairs a thread with its resume cursor.
type ThreadEdge struct {
	Cursor string `json:"cursor"`
	Node   Thread `json:"node"`
}

// ThreadConnection is a paginated threads result.
type ThreadConnection struct {
	Edges      []ThreadEdge `json:"edges"`
	PageInfo   PageInfo     `json:"page_info"`
	TotalCount int          `json:"total_count"`
}

// ProcessResult reports one indexing chunk. ChunkSize is the number of
// entries actually read; LatestSequence is the last log offset now
// durable in the indexes, nil when nothing has ever been processed.
type ProcessResult struct {
	ChunkSize      int    `json:"chunk_size"`
	LatestSequence *int64 `json:"latest_sequence,omitempty"`
}
