package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/boardarch"
)

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	archive, err := deps.Store.LoadTopicArchive(deps.Ctx, c.Board, c.Topic)
	if boardarch.ErrorCode(err) == boardarch.ENOTFOUND {
		fmt.Fprintf(deps.Stderr, "topic %s is not archived for board %s\n", c.Topic, c.Board)
		fmt.Fprintf(deps.Stderr, "Hint: run 'boardarch crawl %s' first\n", c.Board)
		return err
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", boardarch.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Topic %s (%d posts, updated %s)\n",
		archive.TopicID, len(archive.Posts), archive.UpdatedAt.Format("2006-01-02 15:04"))

	for _, p := range archive.Posts {
		fmt.Fprintf(deps.Stdout, "\n#%d %s  %s\n", p.Position, p.AuthorName, p.PostedAt)
		if p.Subject != "" {
			fmt.Fprintf(deps.Stdout, "%s\n", p.Subject)
		}
		if c.Full {
			fmt.Fprintln(deps.Stdout, postText(&p))
		} else {
			fmt.Fprintln(deps.Stdout, firstLine(postText(&p), 100))
		}
	}

	return nil
}

func postText(p *boardarch.Post) string {
	if p.ExtractedText != "" {
		return p.ExtractedText
	}
	return p.ContentText
}

// firstLine returns the first line of s truncated to maxLen runes.
func firstLine(s string, maxLen int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
