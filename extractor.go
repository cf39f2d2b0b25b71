package boardarch

// BoardPage holds the structured content of one board listing page.
type BoardPage struct {
	// Info is the board metadata visible on the page. Only the first page
	// of a crawl carries it forward; it may be nil if extraction of the
	// header failed while rows were still readable.
	Info *Board

	// Topics are the summary rows in listing order.
	Topics []TopicSummary

	// Offsets are the pagination offsets discovered on the page, including
	// the current one and 0. The crawler advances through them strictly.
	Offsets []int
}

// TopicPage holds the structured content of one page of a topic.
type TopicPage struct {
	// Posts are the posts on the page in display order.
	Posts []Post

	// Offsets are the pagination offsets discovered on the page.
	Offsets []int
}

// BoardExtractor extracts board metadata and topic summaries from a rendered
// board listing page.
type BoardExtractor interface {
	// ExtractBoardPage parses the page fetched from pageURL at the given
	// pagination offset. A page with no recognizable topic rows is an
	// extraction failure, not an empty board.
	ExtractBoardPage(boardID, pageURL, html string, offset int) (*BoardPage, error)
}

// TopicExtractor extracts posts from a rendered topic page.
type TopicExtractor interface {
	// ExtractTopicPage parses the page fetched from pageURL at the given
	// pagination offset.
	ExtractTopicPage(boardID, topicID, pageURL, html string, offset int) (*TopicPage, error)
}

// TextExtractor produces plain text from a fragment of post content HTML,
// removing markup and boilerplate.
type TextExtractor interface {
	ExtractText(html string) (string, error)
}
