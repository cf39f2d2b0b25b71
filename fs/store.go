// Package fs provides JSON file storage for board archives.
package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/boardarch"
)

// Ensure Store implements boardarch.ArchiveStore at compile time.
var _ boardarch.ArchiveStore = (*Store)(nil)

// Store persists board documents as JSON files under a data root:
//
//	<root>/board_<id>/board_info.json
//	<root>/board_<id>/topics_index.json
//	<root>/board_<id>/topics/<topic_id>.json
//
// Writes go through a temporary file in the same directory followed by a
// rename, so a crash mid-write never leaves a half-written document.
type Store struct {
	root string
}

// NewStore creates a Store rooted at the given data directory.
func NewStore(root string) *Store {
	return &Store{root: root}
}

func (s *Store) boardDir(boardID string) string {
	return filepath.Join(s.root, "board_"+boardID)
}

func (s *Store) boardPath(boardID string) string {
	return filepath.Join(s.boardDir(boardID), "board_info.json")
}

func (s *Store) indexPath(boardID string) string {
	return filepath.Join(s.boardDir(boardID), "topics_index.json")
}

func (s *Store) topicPath(boardID, topicID string) string {
	return filepath.Join(s.boardDir(boardID), "topics", topicID+".json")
}

// LoadBoard reads the board info document.
// Returns ENOTFOUND if it does not exist and ECORRUPT if it fails to decode.
func (s *Store) LoadBoard(ctx context.Context, boardID string) (*boardarch.Board, error) {
	var board boardarch.Board
	if err := loadJSON(s.boardPath(boardID), &board); err != nil {
		return nil, err
	}
	return &board, nil
}

// SaveBoard writes the board info document.
func (s *Store) SaveBoard(ctx context.Context, board *boardarch.Board) error {
	if err := board.Validate(); err != nil {
		return err
	}
	return saveJSON(s.boardPath(board.ID), board)
}

// LoadTopicsIndex reads the topics index document.
// Returns ENOTFOUND if it does not exist and ECORRUPT if it fails to decode.
func (s *Store) LoadTopicsIndex(ctx context.Context, boardID string) (*boardarch.TopicsIndex, error) {
	var index boardarch.TopicsIndex
	if err := loadJSON(s.indexPath(boardID), &index); err != nil {
		return nil, err
	}
	if index.Topics == nil {
		index.Topics = make(map[string]*boardarch.TopicSummary)
	}
	return &index, nil
}

// SaveTopicsIndex writes the topics index document.
func (s *Store) SaveTopicsIndex(ctx context.Context, index *boardarch.TopicsIndex) error {
	if index.BoardID == "" {
		return boardarch.Errorf(boardarch.EINVALID, "topics index board ID required")
	}
	return saveJSON(s.indexPath(index.BoardID), index)
}

// LoadTopicArchive reads a per-topic archive document.
// Returns ENOTFOUND if it does not exist and ECORRUPT if it fails to decode.
func (s *Store) LoadTopicArchive(ctx context.Context, boardID, topicID string) (*boardarch.TopicArchive, error) {
	var archive boardarch.TopicArchive
	if err := loadJSON(s.topicPath(boardID, topicID), &archive); err != nil {
		return nil, err
	}
	return &archive, nil
}

// SaveTopicArchive writes a per-topic archive document.
func (s *Store) SaveTopicArchive(ctx context.Context, archive *boardarch.TopicArchive) error {
	if archive.BoardID == "" || archive.TopicID == "" {
		return boardarch.Errorf(boardarch.EINVALID, "topic archive board and topic IDs required")
	}
	return saveJSON(s.topicPath(archive.BoardID, archive.TopicID), archive)
}

// QuarantineBoard renames a corrupt board info document aside.
func (s *Store) QuarantineBoard(ctx context.Context, boardID string) error {
	return quarantine(s.boardPath(boardID))
}

// QuarantineTopicsIndex renames a corrupt topics index document aside.
func (s *Store) QuarantineTopicsIndex(ctx context.Context, boardID string) error {
	return quarantine(s.indexPath(boardID))
}

// QuarantineTopicArchive renames a corrupt topic archive document aside.
func (s *Store) QuarantineTopicArchive(ctx context.Context, boardID, topicID string) error {
	return quarantine(s.topicPath(boardID, topicID))
}

// loadJSON decodes the file at path into v.
func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return boardarch.Errorf(boardarch.ENOTFOUND, "document %s does not exist", filepath.Base(path))
	} else if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return boardarch.Errorf(boardarch.ECORRUPT, "document %s is corrupt: %v", filepath.Base(path), err)
	}
	return nil
}

// saveJSON atomically replaces the file at path with the encoded document.
// The write is skipped entirely when the encoded bytes match what is already
// on disk, so wholesale documents like board_info.json are not rewritten on
// every run.
func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if existing, err := os.ReadFile(path); err == nil {
		if xxhash.Sum64(existing) == xxhash.Sum64(data) {
			return nil
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, path)
}

// quarantine renames a corrupt document aside with a .bak suffix so the next
// save starts fresh without destroying evidence.
func quarantine(path string) error {
	if err := os.Rename(path, path+".bak"); err != nil {
		if os.IsNotExist(err) {
			return boardarch.Errorf(boardarch.ENOTFOUND, "document %s does not exist", filepath.Base(path))
		}
		return err
	}
	return nil
}
