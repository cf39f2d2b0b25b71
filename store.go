package boardarch

import "context"

// ArchiveStore persists the three document kinds with atomic replace
// semantics: a crash mid-write never leaves a half-written document, and the
// previous valid document remains readable until the new one is committed.
//
// Load methods return ENOTFOUND when the document does not exist (callers
// substitute an empty default) and ECORRUPT when it exists but fails to
// decode. A corrupt document is never returned partially decoded; callers
// quarantine it and continue with empty state for that one document.
type ArchiveStore interface {
	LoadBoard(ctx context.Context, boardID string) (*Board, error)
	SaveBoard(ctx context.Context, board *Board) error

	LoadTopicsIndex(ctx context.Context, boardID string) (*TopicsIndex, error)
	SaveTopicsIndex(ctx context.Context, index *TopicsIndex) error

	LoadTopicArchive(ctx context.Context, boardID, topicID string) (*TopicArchive, error)
	SaveTopicArchive(ctx context.Context, archive *TopicArchive) error

	// Quarantine methods rename a corrupt document aside (with a .bak
	// suffix) so the next save starts fresh without destroying evidence.
	QuarantineBoard(ctx context.Context, boardID string) error
	QuarantineTopicsIndex(ctx context.Context, boardID string) error
	QuarantineTopicArchive(ctx context.Context, boardID, topicID string) error
}
