package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	result, err := deps.Crawler.Run(deps.Ctx, c.Board)
	if result == nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "Board %s: %d index pages, %d topics seen, %d changed\n",
		c.Board, result.BoardPages, result.TopicsSeen, result.TopicsChanged)
	if !c.NoPosts {
		fmt.Fprintf(deps.Stdout, "Archived %d topics (%d new or updated posts)\n",
			result.TopicsSaved, result.PostsAdded)
	}

	if result.Failed > 0 {
		fmt.Fprintf(deps.Stderr, "%d failures\n", result.Failed)
		if len(result.FailedTopics) > 0 {
			fmt.Fprintf(deps.Stderr, "failed topics: %s\n", strings.Join(result.FailedTopics, ", "))
		}
	}

	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(deps.Stderr, "crawl interrupted; partial progress was persisted")
	}
	return err
}
