// Package slog provides logging decorators for the boardarch interfaces.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/boardarch"
)

// Ensure LoggingArchiveStore implements boardarch.ArchiveStore.
var _ boardarch.ArchiveStore = (*LoggingArchiveStore)(nil)

// LoggingArchiveStore wraps an ArchiveStore with debug logging.
// Loads are logged at debug level, saves and quarantines at info level
// since those are the writes an operator cares about.
type LoggingArchiveStore struct {
	next   boardarch.ArchiveStore
	logger *slog.Logger
}

// NewLoggingArchiveStore creates a new LoggingArchiveStore.
func NewLoggingArchiveStore(next boardarch.ArchiveStore, logger *slog.Logger) *LoggingArchiveStore {
	return &LoggingArchiveStore{next: next, logger: logger}
}

// LoadBoard delegates to the wrapped store and logs the operation.
func (s *LoggingArchiveStore) LoadBoard(ctx context.Context, boardID string) (board *boardarch.Board, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("load board info",
			"board", boardID,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.LoadBoard(ctx, boardID)
}

// SaveBoard delegates to the wrapped store and logs the operation.
func (s *LoggingArchiveStore) SaveBoard(ctx context.Context, board *boardarch.Board) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("save board info",
			"board", board.ID,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SaveBoard(ctx, board)
}

// LoadTopicsIndex delegates to the wrapped store and logs the operation.
func (s *LoggingArchiveStore) LoadTopicsIndex(ctx context.Context, boardID string) (index *boardarch.TopicsIndex, err error) {
	defer func(begin time.Time) {
		topics := 0
		if index != nil {
			topics = len(index.Topics)
		}
		s.logger.Debug("load topics index",
			"board", boardID,
			"topics", topics,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.LoadTopicsIndex(ctx, boardID)
}

// SaveTopicsIndex delegates to the wrapped store and logs the operation.
func (s *LoggingArchiveStore) SaveTopicsIndex(ctx context.Context, index *boardarch.TopicsIndex) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("save topics index",
			"board", index.BoardID,
			"topics", len(index.Topics),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SaveTopicsIndex(ctx, index)
}

// LoadTopicArchive delegates to the wrapped store and logs the operation.
func (s *LoggingArchiveStore) LoadTopicArchive(ctx context.Context, boardID, topicID string) (archive *boardarch.TopicArchive, err error) {
	defer func(begin time.Time) {
		posts := 0
		if archive != nil {
			posts = len(archive.Posts)
		}
		s.logger.Debug("load topic archive",
			"board", boardID,
			"topic", topicID,
			"posts", posts,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.LoadTopicArchive(ctx, boardID, topicID)
}

// SaveTopicArchive delegates to the wrapped store and logs the operation.
func (s *LoggingArchiveStore) SaveTopicArchive(ctx context.Context, archive *boardarch.TopicArchive) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("save topic archive",
			"board", archive.BoardID,
			"topic", archive.TopicID,
			"posts", len(archive.Posts),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SaveTopicArchive(ctx, archive)
}

// QuarantineBoard delegates to the wrapped store and logs the operation.
func (s *LoggingArchiveStore) QuarantineBoard(ctx context.Context, boardID string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("quarantine board info",
			"board", boardID,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.QuarantineBoard(ctx, boardID)
}

// QuarantineTopicsIndex delegates to the wrapped store and logs the operation.
func (s *LoggingArchiveStore) QuarantineTopicsIndex(ctx context.Context, boardID string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("quarantine topics index",
			"board", boardID,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.QuarantineTopicsIndex(ctx, boardID)
}

// QuarantineTopicArchive delegates to the wrapped store and logs the operation.
func (s *LoggingArchiveStore) QuarantineTopicArchive(ctx context.Context, boardID, topicID string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("quarantine topic archive",
			"board", boardID,
			"topic", topicID,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.QuarantineTopicArchive(ctx, boardID, topicID)
}
