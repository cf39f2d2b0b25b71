package main

import (
	"fmt"
	"sort"

	"github.com/fwojciec/boardarch"
)

// Run executes the topics command.
func (c *TopicsCmd) Run(deps *Dependencies) error {
	index, err := deps.Store.LoadTopicsIndex(deps.Ctx, c.Board)
	if boardarch.ErrorCode(err) == boardarch.ENOTFOUND {
		fmt.Fprintf(deps.Stdout, "No archive for board %s. Use 'boardarch crawl %s' to create one.\n", c.Board, c.Board)
		return nil
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", boardarch.ErrorMessage(err))
		return err
	}

	topics := make([]*boardarch.TopicSummary, 0, len(index.Topics))
	for _, t := range index.Topics {
		topics = append(topics, t)
	}
	// Most recently active first; topics with unparsed last-post dates sink.
	sort.Slice(topics, func(i, j int) bool {
		if !topics[i].LastPostAt.Equal(topics[j].LastPostAt) {
			return topics[i].LastPostAt.After(topics[j].LastPostAt)
		}
		return topics[i].ID < topics[j].ID
	})

	title := index.BoardName
	if title == "" {
		title = c.Board
	}
	fmt.Fprintf(deps.Stdout, "Topics for %s (%d total)\n", title, len(topics))
	for _, t := range topics {
		replies := "-"
		if t.Replies != nil {
			replies = fmt.Sprintf("%d", *t.Replies)
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  (replies: %s, last post: %s %s)\n",
			t.ID, t.Subject, replies, t.LastPostAuthor, t.LastPostTime)
	}

	return nil
}
