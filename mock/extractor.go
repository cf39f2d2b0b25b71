package mock

import "github.com/fwojciec/boardarch"

var _ boardarch.BoardExtractor = (*BoardExtractor)(nil)

// BoardExtractor is a mock implementation of boardarch.BoardExtractor.
type BoardExtractor struct {
	ExtractBoardPageFn func(boardID, pageURL, html string, offset int) (*boardarch.BoardPage, error)
}

func (e *BoardExtractor) ExtractBoardPage(boardID, pageURL, html string, offset int) (*boardarch.BoardPage, error) {
	return e.ExtractBoardPageFn(boardID, pageURL, html, offset)
}

var _ boardarch.TopicExtractor = (*TopicExtractor)(nil)

// TopicExtractor is a mock implementation of boardarch.TopicExtractor.
type TopicExtractor struct {
	ExtractTopicPageFn func(boardID, topicID, pageURL, html string, offset int) (*boardarch.TopicPage, error)
}

func (e *TopicExtractor) ExtractTopicPage(boardID, topicID, pageURL, html string, offset int) (*boardarch.TopicPage, error) {
	return e.ExtractTopicPageFn(boardID, topicID, pageURL, html, offset)
}

var _ boardarch.TextExtractor = (*TextExtractor)(nil)

// TextExtractor is a mock implementation of boardarch.TextExtractor.
type TextExtractor struct {
	ExtractTextFn func(html string) (string, error)
}

func (e *TextExtractor) ExtractText(html string) (string, error) {
	return e.ExtractTextFn(html)
}
