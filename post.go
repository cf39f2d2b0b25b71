package boardarch

import "time"

// Attachment describes a file attached to a post.
type Attachment struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Details string `json:"details,omitempty"`
}

// Post is a single message within a topic. The post id is the dedup key: a
// re-scraped post with a known id updates the stored copy in place (fields
// such as the like count change over time) but is never duplicated.
type Post struct {
	BoardID       string       `json:"board_id"`
	TopicID       string       `json:"topic_id"`
	ID            string       `json:"post_id"`
	Position      int          `json:"position"`
	AuthorName    string       `json:"author_name"`
	AuthorProfile string       `json:"author_profile,omitempty"`
	AuthorTitle   string       `json:"author_title,omitempty"`
	AuthorDetails []string     `json:"author_details,omitempty"`
	Subject       string       `json:"subject,omitempty"`
	PostedAt      string       `json:"posted_at"`
	Permalink     string       `json:"permalink,omitempty"`
	ContentHTML   string       `json:"content_html"`
	ContentText   string       `json:"content_text"`
	ExtractedText string       `json:"extracted_text"`
	SignatureHTML string       `json:"signature_html,omitempty"`
	SignatureText string       `json:"signature_text,omitempty"`
	Edited        string       `json:"edited,omitempty"`
	Likes         *int         `json:"likes"`
	Attachments   []Attachment `json:"attachments,omitempty"`
	PageURL       string       `json:"page_url,omitempty"`
	FetchedAt     time.Time    `json:"fetched_at"`
}

// Validate returns an error if the post contains invalid fields.
func (p *Post) Validate() error {
	if p.ID == "" {
		return Errorf(EINVALID, "post ID required")
	}
	if p.TopicID == "" {
		return Errorf(EINVALID, "post topic ID required")
	}
	return nil
}

// TopicArchive is the on-disk record of every post captured for a topic
// across runs. Posts are append-only: a fresh batch that misses a page never
// removes previously captured posts.
type TopicArchive struct {
	BoardID    string    `json:"board_id"`
	TopicID    string    `json:"topic_id"`
	PostsTotal int       `json:"posts_total"`
	LastOffset int       `json:"last_offset"`
	UpdatedAt  time.Time `json:"updated_at"`
	Posts      []Post    `json:"posts"`
}

// NewTopicArchive returns an empty archive for the given topic.
func NewTopicArchive(boardID, topicID string) *TopicArchive {
	return &TopicArchive{BoardID: boardID, TopicID: topicID}
}
