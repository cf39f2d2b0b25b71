package boardarch

import "time"

// Board describes a crawl target: a top-level forum section containing
// topics. Board info is replaced wholesale on each successful board page
// fetch; a failed fetch leaves the previous document untouched.
type Board struct {
	ID          string    `json:"board_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Topics      *int      `json:"topics"`
	Posts       *int      `json:"posts"`
	URL         string    `json:"url"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Validate returns an error if the board contains invalid fields.
func (b *Board) Validate() error {
	if b.ID == "" {
		return Errorf(EINVALID, "board ID required")
	}
	return nil
}

// TopicSummary is one row of a board's topic listing. Counts and last-post
// fields are forum-maintained and change as the topic receives replies.
// LastPostAt holds the parsed last-post timestamp when the forum's date
// rendering could be parsed; it is zero otherwise and LastPostTime retains
// the raw text either way.
type TopicSummary struct {
	BoardID        string    `json:"board_id"`
	BoardOffset    int       `json:"board_offset"`
	ID             string    `json:"topic_id"`
	Subject        string    `json:"subject"`
	Starter        string    `json:"starter"`
	Replies        *int      `json:"replies"`
	Views          *int      `json:"views"`
	LastPostAuthor string    `json:"last_post_author"`
	LastPostTime   string    `json:"last_post_time"`
	LastPostAt     time.Time `json:"last_post_at,omitzero"`
	LastPostLink   string    `json:"last_post_link,omitempty"`
	URL            string    `json:"topic_url"`
	PageURL        string    `json:"page_url,omitempty"`
	FetchedAt      time.Time `json:"fetched_at"`
}

// Validate returns an error if the summary contains invalid fields.
func (s *TopicSummary) Validate() error {
	if s.ID == "" {
		return Errorf(EINVALID, "topic ID required")
	}
	if s.BoardID == "" {
		return Errorf(EINVALID, "topic board ID required")
	}
	return nil
}

// TopicsIndex is the per-board collection of topic summaries, keyed by topic
// id. Entries are only ever added or updated by a merge, never deleted, so
// topics that drop off the listing remain discoverable.
type TopicsIndex struct {
	BoardID     string                   `json:"board_id"`
	BoardName   string                   `json:"board_name,omitempty"`
	CollectedAt time.Time                `json:"collected_at"`
	Topics      map[string]*TopicSummary `json:"topics"`
}

// NewTopicsIndex returns an empty index for the given board.
func NewTopicsIndex(boardID string) *TopicsIndex {
	return &TopicsIndex{
		BoardID: boardID,
		Topics:  make(map[string]*TopicSummary),
	}
}
