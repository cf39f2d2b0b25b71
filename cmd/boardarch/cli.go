package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/boardarch"
	"github.com/fwojciec/boardarch/crawl"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	Store   boardarch.ArchiveStore
	Crawler *crawl.Crawler
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Crawl  CrawlCmd  `cmd:"" help:"Crawl a board and archive its topics"`
	Topics TopicsCmd `cmd:"" help:"List archived topics for a board"`
	Show   ShowCmd   `cmd:"" help:"Show an archived topic"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	Board         string  `arg:"" help:"Board id to crawl"`
	BaseURL       string  `default:"https://forums.dansdeals.com" help:"Forum root URL"`
	Concurrency   int     `short:"c" default:"3" help:"Concurrent topic fetch limit"`
	RPS           float64 `name:"rps" default:"1" help:"Max requests per second per host"`
	MaxBoardPages int     `help:"Stop after N board index pages (0 = all)"`
	MaxTopics     int     `help:"Stop after N topics (0 = all)"`
	MaxTopicPages int     `help:"Stop after N pages per topic (0 = all)"`
	NoPosts       bool    `help:"Update the topics index without fetching posts"`
	NoBrowser     bool    `help:"Fetch with plain HTTP instead of a headless browser"`
	Extractor     string  `default:"trafilatura" enum:"trafilatura,readability" help:"Post text extractor"`
	StorageState  string  `help:"Browser storage state JSON with forum cookies" type:"existingfile"`
	Verbose       bool    `short:"v" help:"Enable debug logging"`
}

// TopicsCmd is the "topics" subcommand.
type TopicsCmd struct {
	Board string `arg:"" help:"Board id"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	Board string `arg:"" help:"Board id"`
	Topic string `arg:"" help:"Topic id"`
	Full  bool   `help:"Print full post text"`
}
