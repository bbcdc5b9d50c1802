package archive

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytmeta/internal/testutil"
)

func TestScheduler_RestoreFileNotExist(t *testing.T) {
	conf := testConfig(t.TempDir())
	svc := testutil.NewMockHistoryService()
	fm, _ := newTestFileManager(conf, svc, &testutil.MockCompressor{})

	s := NewScheduler(conf, &testutil.MockLogger{}, svc, fm)
	assert.NoError(t, s.Restore())
	assert.Equal(t, 0, svc.GetEntityCount())
}

func TestScheduler_RestoreCorruptedFile(t *testing.T) {
	conf := testConfig(t.TempDir())
	require.NoError(t, os.WriteFile(conf.Persistence.FilePath, []byte("not json"), 0o644))

	svc := testutil.NewMockHistoryService()
	fm, _ := newTestFileManager(conf, svc, &testutil.MockCompressor{})

	s := NewScheduler(conf, &testutil.MockLogger{}, svc, fm)
	assert.Error(t, s.Restore())
}

func TestScheduler_PersistThenRestore(t *testing.T) {
	conf := testConfig(t.TempDir())
	svc := populatedService(t)
	fm, _ := newTestFileManager(conf, svc, &testutil.MockCompressor{})

	s := NewScheduler(conf, &testutil.MockLogger{}, svc, fm)
	require.NoError(t, s.Persist())
	assert.False(t, svc.IsDirty())

	restored := testutil.NewMockHistoryService()
	fm2, _ := newTestFileManager(conf, restored, &testutil.MockCompressor{})
	require.NoError(t, NewScheduler(conf, &testutil.MockLogger{}, restored, fm2).Restore())
	assert.Equal(t, svc.GetEntities(), restored.GetEntities())
}

func TestScheduler_PersistErrorKeepsDirty(t *testing.T) {
	conf := testConfig(t.TempDir())
	svc := populatedService(t)
	comp := &testutil.MockCompressor{
		CompressFn: func(b []byte) ([]byte, error) {
			return nil, errors.New("compress error")
		},
	}
	fm, _ := newTestFileManager(conf, svc, comp)
	logger := &testutil.MockLogger{}

	s := NewScheduler(conf, logger, svc, fm)
	assert.Error(t, s.Persist())
	assert.True(t, svc.IsDirty())
	assert.Equal(t, 1, logger.Count("error"))
}

func TestScheduler_StopNilCron(t *testing.T) {
	conf := testConfig(t.TempDir())
	svc := testutil.NewMockHistoryService()
	fm, _ := newTestFileManager(conf, svc, &testutil.MockCompressor{})

	s := NewScheduler(conf, &testutil.MockLogger{}, svc, fm)
	s.Stop()
}

func TestScheduler_CloseReleasesCompressor(t *testing.T) {
	conf := testConfig(t.TempDir())
	svc := testutil.NewMockHistoryService()
	comp := &testutil.MockCompressor{}
	fm, _ := newTestFileManager(conf, svc, comp)

	s := NewScheduler(conf, &testutil.MockLogger{}, svc, fm)
	s.Init()
	s.Close()
	assert.Equal(t, 1, comp.CloseCalls)
}

func TestScheduler_PeriodicPersistOnlyWhenDirty(t *testing.T) {
	conf := testConfig(t.TempDir())
	svc := populatedService(t)
	svc.MarkClean()
	fm, _ := newTestFileManager(conf, svc, &testutil.MockCompressor{})

	s := NewScheduler(conf, &testutil.MockLogger{}, svc, fm)
	s.Init()
	defer s.Stop()

	time.Sleep(1500 * time.Millisecond)
	_, err := os.Stat(conf.Persistence.FilePath)
	assert.True(t, os.IsNotExist(err), "clean store must not be written")

	svc.MarkDirty()
	assert.Eventually(t, func() bool {
		_, err := os.Stat(conf.Persistence.FilePath)
		return err == nil
	}, 3*time.Second, 100*time.Millisecond)
}
