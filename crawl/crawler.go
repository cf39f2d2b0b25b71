// Package crawl provides board crawling orchestration.
// It walks a board's paginated index, merges topic summaries into the
// stored index, and re-fetches the posts of topics whose summaries
// changed since the previous run.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/fwojciec/boardarch"
	"golang.org/x/sync/errgroup"
)

// Crawler orchestrates the incremental archiving of a forum board.
type Crawler struct {
	Fetcher boardarch.Fetcher
	Boards  boardarch.BoardExtractor
	Topics  boardarch.TopicExtractor
	Store   boardarch.ArchiveStore
	Limiter boardarch.HostLimiter
	Logger  *slog.Logger

	// BaseURL is the forum root; DefaultBaseURL when empty.
	BaseURL string

	// Concurrency is the number of topic workers; 3 when <= 0.
	Concurrency int

	// RetryDelays overrides the fetch retry backoff; DefaultRetryDelays when nil.
	RetryDelays []time.Duration

	// MaxBoardPages, MaxTopics and MaxTopicPages cap the crawl when > 0.
	MaxBoardPages int
	MaxTopics     int
	MaxTopicPages int

	// SkipPosts stops after the index update, leaving topic archives untouched.
	SkipPosts bool
}

// Result holds the outcome of a crawl run.
type Result struct {
	BoardPages    int
	TopicsSeen    int
	TopicsChanged int
	TopicsSaved   int
	PostsAdded    int
	Failed        int
	FailedTopics  []string
}

// Run crawls the board and persists whatever it managed to merge.
// Fetch and extraction failures are counted in the Result rather than
// aborting the run; the error return is reserved for invalid input and
// persistence failures of the board index itself.
func (c *Crawler) Run(ctx context.Context, boardID string) (*Result, error) {
	if boardID == "" {
		return nil, boardarch.Errorf(boardarch.EINVALID, "board id is required")
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	existing := c.loadBoard(ctx, boardID, logger)
	index := c.loadIndex(ctx, boardID, logger)

	res := &Result{}
	freshBoard, changed := c.walkBoard(ctx, boardID, index, res, logger)

	// Merging and persisting is a unit: a cancellation that arrived during
	// the walk must not lose pages that were already fetched.
	saveCtx := context.WithoutCancel(ctx)

	if merged := boardarch.MergeBoardInfo(existing, freshBoard); merged != nil {
		if err := c.Store.SaveBoard(saveCtx, merged); err != nil {
			return res, err
		}
		index.BoardName = merged.Name
	}
	if len(changed) > 0 {
		index.CollectedAt = time.Now().UTC()
	}
	if err := c.Store.SaveTopicsIndex(saveCtx, index); err != nil {
		return res, err
	}

	res.TopicsChanged = len(changed)
	if c.SkipPosts || len(changed) == 0 {
		return res, ctx.Err()
	}

	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = 3
	}

	var mu sync.Mutex
	g := &errgroup.Group{}
	g.SetLimit(concurrency)
	for _, topicID := range changed {
		g.Go(func() error {
			c.crawlTopic(ctx, boardID, topicID, res, &mu, logger)
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(res.FailedTopics)
	return res, ctx.Err()
}

// walkBoard pages through the board index, merging each page's topic
// summaries. It returns the board info from the first page that carried
// any and the ids of topics whose summaries were inserted or updated.
func (c *Crawler) walkBoard(ctx context.Context, boardID string, index *boardarch.TopicsIndex, res *Result, logger *slog.Logger) (*boardarch.Board, []string) {
	var (
		freshBoard *boardarch.Board
		changed    []string
	)
	seen := make(map[string]bool)
	visited := make(map[int]bool)
	offset := 0

	for pages := 0; c.MaxBoardPages <= 0 || pages < c.MaxBoardPages; pages++ {
		if ctx.Err() != nil {
			break
		}
		visited[offset] = true

		pageURL := BoardPageURL(c.baseURL(), boardID, offset)
		html, err := c.fetchPage(ctx, pageURL, logger)
		if err != nil {
			res.Failed++
			logger.Warn("board page fetch failed", "url", pageURL, "err", err)
			break
		}
		page, err := c.Boards.ExtractBoardPage(boardID, pageURL, html, offset)
		if err != nil {
			res.Failed++
			logger.Warn("board page extraction failed", "url", pageURL, "err", err)
			break
		}
		res.BoardPages++

		if freshBoard == nil && page.Info != nil {
			freshBoard = page.Info
		}

		capped := false
		var batch []boardarch.TopicSummary
		for _, summary := range page.Topics {
			if seen[summary.ID] {
				continue
			}
			if c.MaxTopics > 0 && len(seen) >= c.MaxTopics {
				capped = true
				break
			}
			seen[summary.ID] = true
			batch = append(batch, summary)
		}
		changed = append(changed, boardarch.MergeTopicsIndex(index, batch)...)
		if capped {
			break
		}

		next, ok := nextOffset(page.Offsets, offset)
		if !ok || visited[next] {
			break
		}
		offset = next
	}

	res.TopicsSeen = len(seen)
	return freshBoard, changed
}

// crawlTopic re-fetches one topic starting from the last archived page
// offset, merges whatever pages were reachable, and persists the archive
// when the merge changed it.
func (c *Crawler) crawlTopic(ctx context.Context, boardID, topicID string, res *Result, mu *sync.Mutex, logger *slog.Logger) {
	archive, err := c.loadArchive(ctx, boardID, topicID, logger)
	if err != nil {
		mu.Lock()
		res.Failed++
		res.FailedTopics = append(res.FailedTopics, topicID)
		mu.Unlock()
		return
	}

	var (
		fresh      []boardarch.Post
		failed     bool
		lastOffset = archive.LastOffset
	)
	offset := archive.LastOffset
	before := len(archive.Posts)

	for pages := 0; c.MaxTopicPages <= 0 || pages < c.MaxTopicPages; pages++ {
		if ctx.Err() != nil {
			break
		}

		pageURL := TopicPageURL(c.baseURL(), topicID, offset)
		html, err := c.fetchPage(ctx, pageURL, logger)
		if err != nil {
			failed = true
			logger.Warn("topic page fetch failed", "topic", topicID, "url", pageURL, "err", err)
			break
		}
		page, err := c.Topics.ExtractTopicPage(boardID, topicID, pageURL, html, offset)
		if err != nil {
			failed = true
			logger.Warn("topic page extraction failed", "topic", topicID, "url", pageURL, "err", err)
			break
		}

		fresh = append(fresh, page.Posts...)
		lastOffset = offset

		next, ok := nextOffset(page.Offsets, offset)
		if !ok || next <= offset {
			break
		}
		offset = next
	}

	dirty := boardarch.MergeTopicPosts(archive, fresh)
	added := len(archive.Posts) - before
	if lastOffset > archive.LastOffset {
		archive.LastOffset = lastOffset
		dirty = true
	}

	mu.Lock()
	if failed {
		res.Failed++
		res.FailedTopics = append(res.FailedTopics, topicID)
	}
	mu.Unlock()

	if !dirty {
		return
	}

	archive.UpdatedAt = time.Now().UTC()
	if err := c.Store.SaveTopicArchive(context.WithoutCancel(ctx), archive); err != nil {
		logger.Error("topic archive save failed", "topic", topicID, "err", err)
		mu.Lock()
		res.Failed++
		if !failed {
			res.FailedTopics = append(res.FailedTopics, topicID)
		}
		mu.Unlock()
		return
	}

	mu.Lock()
	res.TopicsSaved++
	res.PostsAdded += added
	mu.Unlock()
}

// loadBoard loads the stored board info, treating a missing file as a
// first run and a corrupt file as quarantined evidence.
func (c *Crawler) loadBoard(ctx context.Context, boardID string, logger *slog.Logger) *boardarch.Board {
	board, err := c.Store.LoadBoard(ctx, boardID)
	switch boardarch.ErrorCode(err) {
	case "":
		return board
	case boardarch.ENOTFOUND:
		return nil
	case boardarch.ECORRUPT:
		logger.Warn("board info corrupt, quarantining", "board", boardID, "err", err)
		if qerr := c.Store.QuarantineBoard(ctx, boardID); qerr != nil {
			logger.Error("quarantine failed", "board", boardID, "err", qerr)
		}
		return nil
	default:
		logger.Error("board info load failed", "board", boardID, "err", err)
		return nil
	}
}

func (c *Crawler) loadIndex(ctx context.Context, boardID string, logger *slog.Logger) *boardarch.TopicsIndex {
	index, err := c.Store.LoadTopicsIndex(ctx, boardID)
	switch boardarch.ErrorCode(err) {
	case "":
		return index
	case boardarch.ENOTFOUND:
		return boardarch.NewTopicsIndex(boardID)
	case boardarch.ECORRUPT:
		logger.Warn("topics index corrupt, quarantining", "board", boardID, "err", err)
		if qerr := c.Store.QuarantineTopicsIndex(ctx, boardID); qerr != nil {
			logger.Error("quarantine failed", "board", boardID, "err", qerr)
		}
		return boardarch.NewTopicsIndex(boardID)
	default:
		logger.Error("topics index load failed", "board", boardID, "err", err)
		return boardarch.NewTopicsIndex(boardID)
	}
}

func (c *Crawler) loadArchive(ctx context.Context, boardID, topicID string, logger *slog.Logger) (*boardarch.TopicArchive, error) {
	archive, err := c.Store.LoadTopicArchive(ctx, boardID, topicID)
	switch boardarch.ErrorCode(err) {
	case "":
		return archive, nil
	case boardarch.ENOTFOUND:
		return boardarch.NewTopicArchive(boardID, topicID), nil
	case boardarch.ECORRUPT:
		logger.Warn("topic archive corrupt, quarantining", "topic", topicID, "err", err)
		if qerr := c.Store.QuarantineTopicArchive(ctx, boardID, topicID); qerr != nil {
			logger.Error("quarantine failed", "topic", topicID, "err", qerr)
			return nil, qerr
		}
		return boardarch.NewTopicArchive(boardID, topicID), nil
	default:
		return nil, err
	}
}

// fetchPage applies the host rate limit and fetches with retry.
func (c *Crawler) fetchPage(ctx context.Context, rawURL string, logger *slog.Logger) (string, error) {
	if c.Limiter != nil {
		if u, err := url.Parse(rawURL); err == nil {
			if err := c.Limiter.Wait(ctx, u.Host); err != nil {
				return "", err
			}
		}
	}

	delays := c.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	logFn := func(format string, args ...any) {
		logger.Debug(fmt.Sprintf(format, args...))
	}
	return FetchWithRetryDelays(ctx, rawURL, c.Fetcher.Fetch, logFn, delays)
}

func (c *Crawler) baseURL() string {
	if c.BaseURL == "" {
		return DefaultBaseURL
	}
	return c.BaseURL
}
