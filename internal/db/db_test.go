package db

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentLoadMissingReturnsEmpty(t *testing.T) {
	doc := NewDocument(filepath.Join(t.TempDir(), "nested", RecordsFile), NewRecordSet)

	set, err := doc.Load()
	require.NoError(t, err)
	assert.Empty(t, set.Reminders)
	assert.Empty(t, set.Tasks)

	exists, err := doc.Exists()
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDocumentUpdatePersistsWholeDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), RecordsFile)
	doc := NewDocument(path, NewRecordSet)

	err := doc.Update(func(set *RecordSet) error {
		set.Tasks = append(set.Tasks, Task{ID: "t1", Title: "write report", Status: StatusYetToStart})
		return nil
	})
	require.NoError(t, err)

	reopened := NewDocument(path, NewRecordSet)
	set, err := reopened.Load()
	require.NoError(t, err)
	require.Len(t, set.Tasks, 1)
	assert.Equal(t, "write report", set.Tasks[0].Title)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n    \"tasks\"")

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestDocumentUpdateErrorSkipsWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), KnowledgeFile)
	doc := NewDocument(path, func() []KnowledgeItem { return []KnowledgeItem{} })

	require.NoError(t, doc.Update(func(items *[]KnowledgeItem) error {
		*items = append(*items, KnowledgeItem{ID: "k1", Title: "first"})
		return nil
	}))

	sentinel := errors.New("rejected")
	err := doc.Update(func(items *[]KnowledgeItem) error {
		*items = append(*items, KnowledgeItem{ID: "k2", Title: "second"})
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	items, err := doc.Load()
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestDocumentCreateRefusesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), VaultFile)
	doc := NewDocument(path, func() Vault { return Vault{Items: []VaultRecord{}} })

	require.NoError(t, doc.Create(Vault{Salt: "c2FsdA==", Validation: "token", Items: []VaultRecord{}}))
	err := doc.Create(Vault{Salt: "b3RoZXI=", Items: []VaultRecord{}})
	assert.ErrorIs(t, err, ErrDocumentExists)

	vault, err := doc.Load()
	require.NoError(t, err)
	assert.Equal(t, "c2FsdA==", vault.Salt)
}

func TestDocumentCorruptFileSurfacesError(t *testing.T) {
	path := filepath.Join(t.TempDir(), ProjectsFile)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	doc := NewDocument(path, func() []Project { return []Project{} })
	_, err := doc.Load()
	assert.Error(t, err)

	err = doc.Update(func(projects *[]Project) error { return nil })
	assert.Error(t, err)

	raw, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "{not json", string(raw))
}

func TestDocumentWriteFailureIsReported(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, RecordsFile)
	// 目标路径是非空目录，rename 必然失败
	require.NoError(t, os.MkdirAll(filepath.Join(path, "blocker"), 0o755))

	doc := NewDocument(path, NewRecordSet)
	err := doc.Update(func(set *RecordSet) error { return nil })
	assert.Error(t, err)
}

func TestOpenPreparesAllDocuments(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	stores, err := Open(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, RecordsFile), stores.Records.Path())
	assert.Equal(t, filepath.Join(dir, KnowledgeFile), stores.Knowledge.Path())
	assert.Equal(t, filepath.Join(dir, VaultFile), stores.Vault.Path())
	assert.Equal(t, filepath.Join(dir, ProjectsFile), stores.Projects.Path())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
