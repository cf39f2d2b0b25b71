package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/boardarch"
	"github.com/fwojciec/boardarch/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Story: Durable JSON Documents
// The store round-trips the three document kinds through the on-disk layout
// and maps missing files to ENOTFOUND and undecodable files to ECORRUPT.

func TestStore_BoardRoundTrip(t *testing.T) {
	t.Parallel()

	store := fs.NewStore(t.TempDir())
	topics := 120
	board := &boardarch.Board{
		ID:          "8",
		Name:        "Tech Talk",
		Description: "All things tech",
		Topics:      &topics,
		URL:         "https://forum.example.com/index.php?board=8.0",
		FetchedAt:   time.Now().UTC().Truncate(time.Second),
	}

	require.NoError(t, store.SaveBoard(context.Background(), board))

	loaded, err := store.LoadBoard(context.Background(), "8")
	require.NoError(t, err)
	assert.Equal(t, board, loaded)
}

func TestStore_TopicsIndexRoundTrip(t *testing.T) {
	t.Parallel()

	store := fs.NewStore(t.TempDir())
	index := boardarch.NewTopicsIndex("8")
	index.BoardName = "Tech Talk"
	index.Topics["100"] = &boardarch.TopicSummary{BoardID: "8", ID: "100", Subject: "Hello"}

	require.NoError(t, store.SaveTopicsIndex(context.Background(), index))

	loaded, err := store.LoadTopicsIndex(context.Background(), "8")
	require.NoError(t, err)
	assert.Equal(t, "Tech Talk", loaded.BoardName)
	require.Contains(t, loaded.Topics, "100")
	assert.Equal(t, "Hello", loaded.Topics["100"].Subject)
}

func TestStore_TopicArchiveRoundTrip(t *testing.T) {
	t.Parallel()

	store := fs.NewStore(t.TempDir())
	archive := boardarch.NewTopicArchive("8", "100")
	archive.Posts = []boardarch.Post{{BoardID: "8", TopicID: "100", ID: "1", Position: 1}}
	archive.PostsTotal = 1

	require.NoError(t, store.SaveTopicArchive(context.Background(), archive))

	loaded, err := store.LoadTopicArchive(context.Background(), "8", "100")
	require.NoError(t, err)
	assert.Equal(t, archive, loaded)
}

func TestStore_LoadMissingReturnsNotFound(t *testing.T) {
	t.Parallel()

	store := fs.NewStore(t.TempDir())

	_, err := store.LoadBoard(context.Background(), "8")
	assert.Equal(t, boardarch.ENOTFOUND, boardarch.ErrorCode(err))

	_, err = store.LoadTopicsIndex(context.Background(), "8")
	assert.Equal(t, boardarch.ENOTFOUND, boardarch.ErrorCode(err))

	_, err = store.LoadTopicArchive(context.Background(), "8", "100")
	assert.Equal(t, boardarch.ENOTFOUND, boardarch.ErrorCode(err))
}

func TestStore_LoadCorruptReturnsCorrupt(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	store := fs.NewStore(base)
	path := filepath.Join(base, "board_8", "topics_index.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := store.LoadTopicsIndex(context.Background(), "8")

	assert.Equal(t, boardarch.ECORRUPT, boardarch.ErrorCode(err))
}

func TestStore_QuarantineRenamesWithBakSuffix(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	store := fs.NewStore(base)
	path := filepath.Join(base, "board_8", "topics_index.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	require.NoError(t, store.QuarantineTopicsIndex(context.Background(), "8"))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "corrupt file should be moved aside")
	data, err := os.ReadFile(path + ".bak")
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data), "quarantined evidence should be preserved")

	// And a fresh save works afterwards
	require.NoError(t, store.SaveTopicsIndex(context.Background(), boardarch.NewTopicsIndex("8")))
}

func TestStore_SaveReplacesAtomically(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	store := fs.NewStore(base)
	board := &boardarch.Board{ID: "8", Name: "Before"}
	require.NoError(t, store.SaveBoard(context.Background(), board))

	board.Name = "After"
	require.NoError(t, store.SaveBoard(context.Background(), board))

	loaded, err := store.LoadBoard(context.Background(), "8")
	require.NoError(t, err)
	assert.Equal(t, "After", loaded.Name)

	// No temp files left behind
	entries, err := os.ReadDir(filepath.Join(base, "board_8"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "board_info.json", entries[0].Name())
}

func TestStore_SaveSkipsUnchangedDocument(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	store := fs.NewStore(base)
	board := &boardarch.Board{ID: "8", Name: "Tech Talk"}
	require.NoError(t, store.SaveBoard(context.Background(), board))

	// Backdate the file; an identical save should not touch it.
	path := filepath.Join(base, "board_8", "board_info.json")
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	require.NoError(t, store.SaveBoard(context.Background(), board))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Before(time.Now().Add(-time.Minute)), "identical document should not be rewritten")
}

func TestStore_SaveRejectsInvalidDocuments(t *testing.T) {
	t.Parallel()

	store := fs.NewStore(t.TempDir())

	err := store.SaveBoard(context.Background(), &boardarch.Board{})
	assert.Equal(t, boardarch.EINVALID, boardarch.ErrorCode(err))

	err = store.SaveTopicsIndex(context.Background(), &boardarch.TopicsIndex{})
	assert.Equal(t, boardarch.EINVALID, boardarch.ErrorCode(err))

	err = store.SaveTopicArchive(context.Background(), &boardarch.TopicArchive{BoardID: "8"})
	assert.Equal(t, boardarch.EINVALID, boardarch.ErrorCode(err))
}
