package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/boardarch"
	"github.com/fwojciec/boardarch/crawl"
	"github.com/fwojciec/boardarch/fs"
	"github.com/fwojciec/boardarch/goquery"
	archhttp "github.com/fwojciec/boardarch/http"
	"github.com/fwojciec/boardarch/readability"
	"github.com/fwojciec/boardarch/rod"
	archslog "github.com/fwojciec/boardarch/slog"
	"github.com/fwojciec/boardarch/trafilatura"
	"github.com/google/uuid"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Archive directory. Set before calling Run().
	DataDir string

	// Store is the archive store wired by Run, exposed for end-to-end testing.
	Store boardarch.ArchiveStore
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DataDir: defaultDataDir(),
	}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	// Create Kong parser with dependency binding
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("boardarch"),
		kong.Description("Incremental archiver for SMF forum boards."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'boardarch --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Each run gets an id so interleaved log lines can be attributed.
	level := slog.LevelInfo
	if cmd == "crawl" && cli.Crawl.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})).
		With("run_id", uuid.NewString())
	deps.Logger = logger

	if err := os.MkdirAll(m.DataDir, 0755); err != nil {
		fmt.Fprintf(stderr, "Hint: Set BOARDARCH_DATA to use a different archive path\n")
		return fmt.Errorf("failed to create archive directory at %q: %w", m.DataDir, err)
	}
	m.Store = archslog.NewLoggingArchiveStore(fs.NewStore(m.DataDir), logger)
	deps.Store = m.Store

	if cmd == "crawl" {
		var fetcher boardarch.Fetcher
		if cli.Crawl.NoBrowser {
			if cli.Crawl.StorageState != "" {
				return fmt.Errorf("--storage-state requires the browser fetcher")
			}
			fetcher = archhttp.NewFetcher(archhttp.WithTimeout(fetchTimeout))
		} else {
			opts := []rod.Option{rod.WithFetchTimeout(fetchTimeout)}
			if cli.Crawl.StorageState != "" {
				opt, err := rod.WithStorageState(cli.Crawl.StorageState)
				if err != nil {
					return fmt.Errorf("failed to load storage state: %w", err)
				}
				opts = append(opts, opt)
			}
			rodFetcher, err := rod.NewFetcher(opts...)
			if err != nil {
				fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
				return fmt.Errorf("failed to start browser: %w", err)
			}
			fetcher = rodFetcher
		}
		defer fetcher.Close()

		var text boardarch.TextExtractor = trafilatura.NewExtractor()
		if cli.Crawl.Extractor == "readability" {
			text = readability.NewExtractor()
		}

		deps.Crawler = &crawl.Crawler{
			Fetcher:       archslog.NewLoggingFetcher(fetcher, logger),
			Boards:        goquery.NewBoardExtractor(),
			Topics:        goquery.NewTopicExtractor(text),
			Store:         deps.Store,
			Limiter:       crawl.NewHostLimiter(cli.Crawl.RPS),
			Logger:        logger,
			BaseURL:       cli.Crawl.BaseURL,
			Concurrency:   cli.Crawl.Concurrency,
			MaxBoardPages: cli.Crawl.MaxBoardPages,
			MaxTopics:     cli.Crawl.MaxTopics,
			MaxTopicPages: cli.Crawl.MaxTopicPages,
			SkipPosts:     cli.Crawl.NoPosts,
		}
	}

	return kongCtx.Run(deps)
}

// fetchTimeout bounds a single page load, including the challenge wait.
const fetchTimeout = 90 * time.Second

func defaultDataDir() string {
	if path := os.Getenv("BOARDARCH_DATA"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "archive"
	}
	return filepath.Join(home, ".boardarch")
}
