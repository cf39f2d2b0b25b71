package mock

import (
	"context"

	"github.com/fwojciec/boardarch"
)

var _ boardarch.ArchiveStore = (*ArchiveStore)(nil)

// ArchiveStore is a mock implementation of boardarch.ArchiveStore.
type ArchiveStore struct {
	LoadBoardFn func(ctx context.Context, boardID string) (*boardarch.Board, error)
	SaveBoardFn func(ctx context.Context, board *boardarch.Board) error

	LoadTopicsIndexFn func(ctx context.Context, boardID string) (*boardarch.TopicsIndex, error)
	SaveTopicsIndexFn func(ctx context.Context, index *boardarch.TopicsIndex) error

	LoadTopicArchiveFn func(ctx context.Context, boardID, topicID string) (*boardarch.TopicArchive, error)
	SaveTopicArchiveFn func(ctx context.Context, archive *boardarch.TopicArchive) error

	QuarantineBoardFn        func(ctx context.Context, boardID string) error
	QuarantineTopicsIndexFn  func(ctx context.Context, boardID string) error
	QuarantineTopicArchiveFn func(ctx context.Context, boardID, topicID string) error
}

func (s *ArchiveStore) LoadBoard(ctx context.Context, boardID string) (*boardarch.Board, error) {
	return s.LoadBoardFn(ctx, boardID)
}

func (s *ArchiveStore) SaveBoard(ctx context.Context, board *boardarch.Board) error {
	return s.SaveBoardFn(ctx, board)
}

func (s *ArchiveStore) LoadTopicsIndex(ctx context.Context, boardID string) (*boardarch.TopicsIndex, error) {
	return s.LoadTopicsIndexFn(ctx, boardID)
}

func (s *ArchiveStore) SaveTopicsIndex(ctx context.Context, index *boardarch.TopicsIndex) error {
	return s.SaveTopicsIndexFn(ctx, index)
}

func (s *ArchiveStore) LoadTopicArchive(ctx context.Context, boardID, topicID string) (*boardarch.TopicArchive, error) {
	return s.LoadTopicArchiveFn(ctx, boardID, topicID)
}

func (s *ArchiveStore) SaveTopicArchive(ctx context.Context, archive *boardarch.TopicArchive) error {
	return s.SaveTopicArchiveFn(ctx, archive)
}

func (s *ArchiveStore) QuarantineBoard(ctx context.Context, boardID string) error {
	return s.QuarantineBoardFn(ctx, boardID)
}

func (s *ArchiveStore) QuarantineTopicsIndex(ctx context.Context, boardID string) error {
	return s.QuarantineTopicsIndexFn(ctx, boardID)
}

func (s *ArchiveStore) QuarantineTopicArchive(ctx context.Context, boardID, topicID string) error {
	return s.QuarantineTopicArchiveFn(ctx, boardID, topicID)
}
