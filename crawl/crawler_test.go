package crawl_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/boardarch"
	"github.com/fwojciec/boardarch/crawl"
	"github.com/fwojciec/boardarch/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notFound() error {
	return boardarch.Errorf(boardarch.ENOTFOUND, "no such document")
}

// emptyStore returns a mock store that behaves like a fresh data
// directory and records everything saved to it.
type savedState struct {
	mu       sync.Mutex
	board    *boardarch.Board
	index    *boardarch.TopicsIndex
	archives map[string]*boardarch.TopicArchive
}

func emptyStore(saved *savedState) *mock.ArchiveStore {
	saved.archives = make(map[string]*boardarch.TopicArchive)
	return &mock.ArchiveStore{
		LoadBoardFn: func(_ context.Context, _ string) (*boardarch.Board, error) {
			return nil, notFound()
		},
		SaveBoardFn: func(_ context.Context, board *boardarch.Board) error {
			saved.mu.Lock()
			defer saved.mu.Unlock()
			saved.board = board
			return nil
		},
		LoadTopicsIndexFn: func(_ context.Context, _ string) (*boardarch.TopicsIndex, error) {
			return nil, notFound()
		},
		SaveTopicsIndexFn: func(_ context.Context, index *boardarch.TopicsIndex) error {
			saved.mu.Lock()
			defer saved.mu.Unlock()
			saved.index = index
			return nil
		},
		LoadTopicArchiveFn: func(_ context.Context, _, _ string) (*boardarch.TopicArchive, error) {
			return nil, notFound()
		},
		SaveTopicArchiveFn: func(_ context.Context, archive *boardarch.TopicArchive) error {
			saved.mu.Lock()
			defer saved.mu.Unlock()
			saved.archives[archive.TopicID] = archive
			return nil
		},
	}
}

func summaryFor(boardID, topicID, lastPostAuthor string) boardarch.TopicSummary {
	return boardarch.TopicSummary{
		BoardID:        boardID,
		ID:             topicID,
		Subject:        "Topic " + topicID,
		Starter:        "alice",
		LastPostAuthor: lastPostAuthor,
		FetchedAt:      time.Now().UTC(),
	}
}

func postFor(topicID, postID string, position int) boardarch.Post {
	return boardarch.Post{
		ID:          postID,
		TopicID:     topicID,
		Position:    position,
		AuthorName:  "alice",
		ContentText: "post " + postID,
		FetchedAt:   time.Now().UTC(),
	}
}

func TestCrawler_Run(t *testing.T) {
	t.Parallel()

	t.Run("requires a board id", func(t *testing.T) {
		t.Parallel()

		c := &crawl.Crawler{}

		_, err := c.Run(context.Background(), "")

		assert.Equal(t, boardarch.EINVALID, boardarch.ErrorCode(err))
	})

	t.Run("first run archives board info, index and topic posts", func(t *testing.T) {
		t.Parallel()

		var saved savedState
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, _ string) (string, error) {
					return "<html></html>", nil
				},
			},
			Boards: &mock.BoardExtractor{
				ExtractBoardPageFn: func(boardID, _, _ string, offset int) (*boardarch.BoardPage, error) {
					switch offset {
					case 0:
						return &boardarch.BoardPage{
							Info:    &boardarch.Board{ID: boardID, Name: "Tech Talk"},
							Topics:  []boardarch.TopicSummary{summaryFor(boardID, "100", "bob")},
							Offsets: []int{0, 25},
						}, nil
					default:
						return &boardarch.BoardPage{
							Topics:  []boardarch.TopicSummary{summaryFor(boardID, "200", "carol")},
							Offsets: []int{0, 25},
						}, nil
					}
				},
			},
			Topics: &mock.TopicExtractor{
				ExtractTopicPageFn: func(_, topicID, _, _ string, _ int) (*boardarch.TopicPage, error) {
					return &boardarch.TopicPage{
						Posts:   []boardarch.Post{postFor(topicID, topicID+"1", 1)},
						Offsets: []int{0},
					}, nil
				},
			},
			Store:       emptyStore(&saved),
			Concurrency: 2,
			RetryDelays: []time.Duration{0},
		}

		result, err := c.Run(context.Background(), "8")

		require.NoError(t, err)
		assert.Equal(t, 2, result.BoardPages)
		assert.Equal(t, 2, result.TopicsSeen)
		assert.Equal(t, 2, result.TopicsChanged)
		assert.Equal(t, 2, result.TopicsSaved)
		assert.Equal(t, 2, result.PostsAdded)
		assert.Equal(t, 0, result.Failed)
		assert.Empty(t, result.FailedTopics)

		require.NotNil(t, saved.board)
		assert.Equal(t, "Tech Talk", saved.board.Name)

		require.NotNil(t, saved.index)
		assert.Equal(t, "Tech Talk", saved.index.BoardName)
		assert.Len(t, saved.index.Topics, 2)
		assert.False(t, saved.index.CollectedAt.IsZero())

		require.Len(t, saved.archives, 2)
		archive := saved.archives["100"]
		require.NotNil(t, archive)
		assert.Equal(t, "8", archive.BoardID)
		require.Len(t, archive.Posts, 1)
		assert.Equal(t, "1001", archive.Posts[0].ID)
		assert.Equal(t, 1, archive.PostsTotal)
		assert.False(t, archive.UpdatedAt.IsZero())
	})

	t.Run("unchanged topics are not refetched", func(t *testing.T) {
		t.Parallel()

		existing := boardarch.NewTopicsIndex("8")
		stored := summaryFor("8", "100", "bob")
		existing.Topics["100"] = &stored

		var saved savedState
		store := emptyStore(&saved)
		store.LoadTopicsIndexFn = func(_ context.Context, _ string) (*boardarch.TopicsIndex, error) {
			return existing, nil
		}

		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) {
					if strings.Contains(url, "topic=") {
						t.Errorf("unexpected topic fetch: %s", url)
					}
					return "<html></html>", nil
				},
			},
			Boards: &mock.BoardExtractor{
				ExtractBoardPageFn: func(boardID, _, _ string, _ int) (*boardarch.BoardPage, error) {
					fresh := summaryFor(boardID, "100", "bob")
					fresh.FetchedAt = time.Now().UTC().Add(time.Hour)
					return &boardarch.BoardPage{
						Topics:  []boardarch.TopicSummary{fresh},
						Offsets: []int{0},
					}, nil
				},
			},
			Topics: &mock.TopicExtractor{
				ExtractTopicPageFn: func(_, topicID, _, _ string, _ int) (*boardarch.TopicPage, error) {
					t.Errorf("unexpected topic extraction: %s", topicID)
					return nil, nil
				},
			},
			Store:       store,
			RetryDelays: []time.Duration{0},
		}

		result, err := c.Run(context.Background(), "8")

		require.NoError(t, err)
		assert.Equal(t, 1, result.TopicsSeen)
		assert.Equal(t, 0, result.TopicsChanged)
		assert.Equal(t, 0, result.TopicsSaved)
		assert.Empty(t, saved.archives)
	})

	t.Run("failed topic fetch leaves the archive untouched", func(t *testing.T) {
		t.Parallel()

		var saved savedState
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) {
					if strings.Contains(url, "topic=") {
						return "", boardarch.Errorf(boardarch.EUNAVAILABLE, "challenge page")
					}
					return "<html></html>", nil
				},
			},
			Boards: &mock.BoardExtractor{
				ExtractBoardPageFn: func(boardID, _, _ string, _ int) (*boardarch.BoardPage, error) {
					return &boardarch.BoardPage{
						Topics:  []boardarch.TopicSummary{summaryFor(boardID, "100", "bob")},
						Offsets: []int{0},
					}, nil
				},
			},
			Topics:      &mock.TopicExtractor{},
			Store:       emptyStore(&saved),
			RetryDelays: []time.Duration{0},
		}

		result, err := c.Run(context.Background(), "8")

		require.NoError(t, err)
		assert.Equal(t, 1, result.TopicsChanged)
		assert.Equal(t, 0, result.TopicsSaved)
		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, []string{"100"}, result.FailedTopics)
		assert.Empty(t, saved.archives, "a failed fetch must not produce an empty archive")
	})

	t.Run("partially fetched topic still merges what it got", func(t *testing.T) {
		t.Parallel()

		var saved savedState
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) {
					if strings.HasSuffix(url, "topic=100.15") {
						return "", errors.New("connection reset")
					}
					return "<html></html>", nil
				},
			},
			Boards: &mock.BoardExtractor{
				ExtractBoardPageFn: func(boardID, _, _ string, _ int) (*boardarch.BoardPage, error) {
					return &boardarch.BoardPage{
						Topics:  []boardarch.TopicSummary{summaryFor(boardID, "100", "bob")},
						Offsets: []int{0},
					}, nil
				},
			},
			Topics: &mock.TopicExtractor{
				ExtractTopicPageFn: func(_, topicID, _, _ string, offset int) (*boardarch.TopicPage, error) {
					return &boardarch.TopicPage{
						Posts:   []boardarch.Post{postFor(topicID, "1001", 1)},
						Offsets: []int{0, 15},
					}, nil
				},
			},
			Store:       emptyStore(&saved),
			RetryDelays: []time.Duration{0},
		}

		result, err := c.Run(context.Background(), "8")

		require.NoError(t, err)
		assert.Equal(t, 1, result.TopicsSaved)
		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, []string{"100"}, result.FailedTopics)

		archive := saved.archives["100"]
		require.NotNil(t, archive)
		assert.Len(t, archive.Posts, 1, "the page that was fetched is kept")
		assert.Equal(t, 0, archive.LastOffset)
	})

	t.Run("resumes a topic from its last archived offset", func(t *testing.T) {
		t.Parallel()

		existing := boardarch.NewTopicArchive("8", "100")
		existing.Posts = []boardarch.Post{postFor("100", "1001", 1)}
		existing.PostsTotal = 1
		existing.LastOffset = 15

		var saved savedState
		store := emptyStore(&saved)
		store.LoadTopicArchiveFn = func(_ context.Context, _, _ string) (*boardarch.TopicArchive, error) {
			return existing, nil
		}

		var fetched []string
		var mu sync.Mutex
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) {
					if strings.Contains(url, "topic=") {
						mu.Lock()
						fetched = append(fetched, url)
						mu.Unlock()
					}
					return "<html></html>", nil
				},
			},
			Boards: &mock.BoardExtractor{
				ExtractBoardPageFn: func(boardID, _, _ string, _ int) (*boardarch.BoardPage, error) {
					return &boardarch.BoardPage{
						Topics:  []boardarch.TopicSummary{summaryFor(boardID, "100", "bob")},
						Offsets: []int{0},
					}, nil
				},
			},
			Topics: &mock.TopicExtractor{
				ExtractTopicPageFn: func(_, topicID, _, _ string, offset int) (*boardarch.TopicPage, error) {
					return &boardarch.TopicPage{
						Posts:   []boardarch.Post{postFor(topicID, "1002", 2)},
						Offsets: []int{0, 15},
					}, nil
				},
			},
			Store:       emptyStore(&saved),
			RetryDelays: []time.Duration{0},
		}
		c.Store = store

		result, err := c.Run(context.Background(), "8")

		require.NoError(t, err)
		assert.Equal(t, []string{"https://forums.dansdeals.com/index.php?topic=100.15"}, fetched)
		assert.Equal(t, 1, result.TopicsSaved)

		archive := saved.archives["100"]
		require.NotNil(t, archive)
		assert.Len(t, archive.Posts, 2, "new post is merged alongside the archived one")
		assert.Equal(t, 15, archive.LastOffset)
	})

	t.Run("corrupt topics index is quarantined and rebuilt", func(t *testing.T) {
		t.Parallel()

		var saved savedState
		quarantined := false
		store := emptyStore(&saved)
		store.LoadTopicsIndexFn = func(_ context.Context, _ string) (*boardarch.TopicsIndex, error) {
			return nil, boardarch.Errorf(boardarch.ECORRUPT, "invalid document")
		}
		store.QuarantineTopicsIndexFn = func(_ context.Context, _ string) error {
			quarantined = true
			return nil
		}

		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, _ string) (string, error) {
					return "<html></html>", nil
				},
			},
			Boards: &mock.BoardExtractor{
				ExtractBoardPageFn: func(boardID, _, _ string, _ int) (*boardarch.BoardPage, error) {
					return &boardarch.BoardPage{
						Topics:  []boardarch.TopicSummary{summaryFor(boardID, "100", "bob")},
						Offsets: []int{0},
					}, nil
				},
			},
			Topics: &mock.TopicExtractor{
				ExtractTopicPageFn: func(_, topicID, _, _ string, _ int) (*boardarch.TopicPage, error) {
					return &boardarch.TopicPage{
						Posts:   []boardarch.Post{postFor(topicID, "1001", 1)},
						Offsets: []int{0},
					}, nil
				},
			},
			Store:       store,
			RetryDelays: []time.Duration{0},
		}

		result, err := c.Run(context.Background(), "8")

		require.NoError(t, err)
		assert.True(t, quarantined)
		assert.Equal(t, 1, result.TopicsChanged)
		require.NotNil(t, saved.index)
		assert.Len(t, saved.index.Topics, 1)
	})

	t.Run("skip posts stops after the index update", func(t *testing.T) {
		t.Parallel()

		var saved savedState
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, _ string) (string, error) {
					return "<html></html>", nil
				},
			},
			Boards: &mock.BoardExtractor{
				ExtractBoardPageFn: func(boardID, _, _ string, _ int) (*boardarch.BoardPage, error) {
					return &boardarch.BoardPage{
						Topics:  []boardarch.TopicSummary{summaryFor(boardID, "100", "bob")},
						Offsets: []int{0},
					}, nil
				},
			},
			Topics: &mock.TopicExtractor{
				ExtractTopicPageFn: func(_, topicID, _, _ string, _ int) (*boardarch.TopicPage, error) {
					t.Errorf("unexpected topic extraction: %s", topicID)
					return nil, nil
				},
			},
			Store:       emptyStore(&saved),
			SkipPosts:   true,
			RetryDelays: []time.Duration{0},
		}

		result, err := c.Run(context.Background(), "8")

		require.NoError(t, err)
		assert.Equal(t, 1, result.TopicsChanged)
		assert.Equal(t, 0, result.TopicsSaved)
		require.NotNil(t, saved.index)
		assert.Empty(t, saved.archives)
	})

	t.Run("max topics caps the board walk", func(t *testing.T) {
		t.Parallel()

		var saved savedState
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, _ string) (string, error) {
					return "<html></html>", nil
				},
			},
			Boards: &mock.BoardExtractor{
				ExtractBoardPageFn: func(boardID, _, _ string, offset int) (*boardarch.BoardPage, error) {
					return &boardarch.BoardPage{
						Topics: []boardarch.TopicSummary{
							summaryFor(boardID, "100", "bob"),
							summaryFor(boardID, "200", "carol"),
							summaryFor(boardID, "300", "dave"),
						},
						Offsets: []int{0, 25},
					}, nil
				},
			},
			Topics: &mock.TopicExtractor{
				ExtractTopicPageFn: func(_, topicID, _, _ string, _ int) (*boardarch.TopicPage, error) {
					return &boardarch.TopicPage{
						Posts:   []boardarch.Post{postFor(topicID, topicID+"1", 1)},
						Offsets: []int{0},
					}, nil
				},
			},
			Store:       emptyStore(&saved),
			MaxTopics:   2,
			RetryDelays: []time.Duration{0},
		}

		result, err := c.Run(context.Background(), "8")

		require.NoError(t, err)
		assert.Equal(t, 2, result.TopicsSeen)
		assert.Equal(t, 2, result.TopicsChanged)
		assert.Len(t, saved.archives, 2)
	})
}
