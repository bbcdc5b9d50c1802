package archive

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytmeta/internal/models"
	"ytmeta/internal/structures"
	"ytmeta/internal/testutil"
)

func testConfig(dir string) *structures.Config {
	return &structures.Config{
		Root: dir,
		Persistence: structures.Persistence{
			FilePath:     filepath.Join(dir, "db.json"),
			SaveInterval: time.Second,
			BackupDir:    filepath.Join(dir, "backups"),
		},
		Archive: structures.ArchiveConfig{
			DumpsDir: filepath.Join(dir, "dumps"),
			HtmlDir:  filepath.Join(dir, "html"),
		},
	}
}

func populatedService(t *testing.T) *testutil.MockHistoryService {
	t.Helper()
	svc := testutil.NewMockHistoryService()
	svc.Ingest(&models.Dump{
		DumpTime: 200,
		Playlists: []*models.Playlist{{
			ID: "PL1",
			Videos: []models.StateRecord{
				{models.KeyID: "v2", models.KeyTitle: "Second", models.KeyStatus: "public", models.KeyDuration: int64(61)},
				{models.KeyID: "v1", models.KeyTitle: "First", models.KeyStatus: "private"},
			},
		}},
	}, 200)
	return svc
}

func newTestFileManager(conf *structures.Config, svc *testutil.MockHistoryService, comp *testutil.MockCompressor) (*FileManager, *testutil.MockMetrics) {
	metrics := &testutil.MockMetrics{}
	return NewFileManager(conf, comp, svc, metrics, &testutil.MockLogger{}), metrics
}

func TestFileManager_SaveToFile_CreatesFile(t *testing.T) {
	conf := testConfig(t.TempDir())
	fm, metrics := newTestFileManager(conf, populatedService(t), &testutil.MockCompressor{})

	require.NoError(t, fm.SaveToFile(conf.Persistence.FilePath))

	data, err := os.ReadFile(conf.Persistence.FilePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n\t\"v2\": {")

	_, err = os.Stat(conf.Persistence.FilePath + ".tmp")
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, 1, metrics.PersistenceObserved)
}

func TestFileManager_RoundTripKeepsOrder(t *testing.T) {
	conf := testConfig(t.TempDir())
	src := populatedService(t)
	fm, _ := newTestFileManager(conf, src, &testutil.MockCompressor{})
	require.NoError(t, fm.SaveToFile(conf.Persistence.FilePath))

	dst := testutil.NewMockHistoryService()
	dst.Dirty = true
	loader, _ := newTestFileManager(conf, dst, &testutil.MockCompressor{})
	require.NoError(t, loader.LoadFromFile(conf.Persistence.FilePath))

	assert.Equal(t, []string{"v2", "v1"}, dst.GetEntities())
	assert.False(t, dst.IsDirty())

	h, ok := dst.GetStore().Get("v2")
	require.True(t, ok)
	rec, ok := h.Get(200)
	require.True(t, ok)
	assert.Equal(t, int64(61), rec[models.KeyDuration])
}

func TestFileManager_ZstdRoundTrip(t *testing.T) {
	conf := testConfig(t.TempDir())
	conf.Persistence.Compress = true
	comp, err := NewCompressor(conf)
	require.NoError(t, err)

	src := populatedService(t)
	fm := NewFileManager(conf, comp, src, &testutil.MockMetrics{}, &testutil.MockLogger{})
	require.NoError(t, fm.SaveToFile(conf.Persistence.FilePath))

	raw, err := os.ReadFile(conf.Persistence.FilePath)
	require.NoError(t, err)
	assert.Equal(t, zstdMagic, raw[:4])

	dst := testutil.NewMockHistoryService()
	loader := NewFileManager(conf, comp, dst, &testutil.MockMetrics{}, &testutil.MockLogger{})
	require.NoError(t, loader.LoadFromFile(conf.Persistence.FilePath))
	assert.Equal(t, 2, dst.GetEntityCount())
}

func TestFileManager_BackupMovesExistingFile(t *testing.T) {
	conf := testConfig(t.TempDir())
	conf.Persistence.Backup = true
	fm, _ := newTestFileManager(conf, populatedService(t), &testutil.MockCompressor{})
	fm.now = func() time.Time { return time.Date(2024, 3, 5, 7, 8, 9, 0, time.Local) }

	require.NoError(t, os.WriteFile(conf.Persistence.FilePath, []byte(`{"old":{}}`), 0o644))
	require.NoError(t, fm.SaveToFile(conf.Persistence.FilePath))

	backup := filepath.Join(conf.Persistence.BackupDir, "db_2024-03-05_07-08-09.json")
	data, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, `{"old":{}}`, string(data))

	current, err := os.ReadFile(conf.Persistence.FilePath)
	require.NoError(t, err)
	assert.Contains(t, string(current), "Second")
}

func TestFileManager_BackupsWithinSameSecondKeepEachOther(t *testing.T) {
	conf := testConfig(t.TempDir())
	conf.Persistence.Backup = true
	fm, _ := newTestFileManager(conf, populatedService(t), &testutil.MockCompressor{})
	fm.now = func() time.Time { return time.Date(2024, 3, 5, 7, 8, 9, 0, time.Local) }

	require.NoError(t, os.WriteFile(conf.Persistence.FilePath, []byte(`{"first":{}}`), 0o644))
	require.NoError(t, fm.SaveToFile(conf.Persistence.FilePath))
	require.NoError(t, fm.SaveToFile(conf.Persistence.FilePath))
	require.NoError(t, fm.SaveToFile(conf.Persistence.FilePath))

	first, err := os.ReadFile(filepath.Join(conf.Persistence.BackupDir, "db_2024-03-05_07-08-09.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"first":{}}`, string(first))

	assert.FileExists(t, filepath.Join(conf.Persistence.BackupDir, "db_2024-03-05_07-08-09_2.json"))
	assert.FileExists(t, filepath.Join(conf.Persistence.BackupDir, "db_2024-03-05_07-08-09_3.json"))

	backups, err := os.ReadDir(conf.Persistence.BackupDir)
	require.NoError(t, err)
	assert.Len(t, backups, 3)
}

func TestFileManager_NoBackupWithoutExistingFile(t *testing.T) {
	conf := testConfig(t.TempDir())
	conf.Persistence.Backup = true
	fm, _ := newTestFileManager(conf, populatedService(t), &testutil.MockCompressor{})

	require.NoError(t, fm.SaveToFile(conf.Persistence.FilePath))

	_, err := os.Stat(conf.Persistence.BackupDir)
	assert.True(t, os.IsNotExist(err))
}

func TestFileManager_BackupDisabled(t *testing.T) {
	conf := testConfig(t.TempDir())
	fm, _ := newTestFileManager(conf, populatedService(t), &testutil.MockCompressor{})

	require.NoError(t, os.WriteFile(conf.Persistence.FilePath, []byte(`{}`), 0o644))
	require.NoError(t, fm.SaveToFile(conf.Persistence.FilePath))

	_, err := os.Stat(conf.Persistence.BackupDir)
	assert.True(t, os.IsNotExist(err))
}

func TestFileManager_LoadFromFile_FileNotExist(t *testing.T) {
	conf := testConfig(t.TempDir())
	svc := populatedService(t)
	fm, _ := newTestFileManager(conf, svc, &testutil.MockCompressor{})

	require.NoError(t, fm.LoadFromFile(filepath.Join(conf.Root, "missing.json")))
	assert.Equal(t, 0, svc.GetEntityCount())
}

func TestFileManager_LoadFromFile_InvalidJSON(t *testing.T) {
	conf := testConfig(t.TempDir())
	require.NoError(t, os.WriteFile(conf.Persistence.FilePath, []byte("not json at all"), 0o644))

	svc := populatedService(t)
	fm, _ := newTestFileManager(conf, svc, &testutil.MockCompressor{})
	assert.Error(t, fm.LoadFromFile(conf.Persistence.FilePath))
	assert.Equal(t, 2, svc.GetEntityCount())
}

func TestFileManager_LoadFromFile_RejectsEmptyHistory(t *testing.T) {
	conf := testConfig(t.TempDir())
	require.NoError(t, os.WriteFile(conf.Persistence.FilePath, []byte(`{"v1":{}}`), 0o644))

	fm, _ := newTestFileManager(conf, testutil.NewMockHistoryService(), &testutil.MockCompressor{})
	err := fm.LoadFromFile(conf.Persistence.FilePath)
	assert.ErrorIs(t, err, models.ErrEmptyHistory)
}

func TestFileManager_CompressError(t *testing.T) {
	conf := testConfig(t.TempDir())
	comp := &testutil.MockCompressor{
		CompressFn: func(b []byte) ([]byte, error) {
			return nil, errors.New("compress failed")
		},
	}
	fm, _ := newTestFileManager(conf, populatedService(t), comp)

	err := fm.SaveToFile(conf.Persistence.FilePath)
	assert.ErrorContains(t, err, "compress failed")
	_, statErr := os.Stat(conf.Persistence.FilePath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileManager_DecompressError(t *testing.T) {
	conf := testConfig(t.TempDir())
	require.NoError(t, os.WriteFile(conf.Persistence.FilePath, []byte("some data"), 0o644))

	comp := &testutil.MockCompressor{
		DecompressFn: func(b []byte) ([]byte, error) {
			return nil, errors.New("decompress failed")
		},
	}
	fm, _ := newTestFileManager(conf, testutil.NewMockHistoryService(), comp)
	assert.ErrorContains(t, fm.LoadFromFile(conf.Persistence.FilePath), "decompress failed")
}
