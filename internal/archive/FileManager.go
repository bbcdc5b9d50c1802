package archive

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"ytmeta/internal/archive/interfaces"
	"ytmeta/internal/models"
	"ytmeta/internal/providers"
	"ytmeta/internal/services"
	"ytmeta/internal/structures"
)

// TimeLayout formats wall-clock times in backup and dump file names.
const TimeLayout = "2006-01-02_15-04-05"

type FileManager struct {
	config     *structures.Config
	service    services.HistoryServiceInterface
	compressor interfaces.CompressorInterface
	metrics    providers.MetricsProviderInterface
	logger     providers.Logger
	now        func() time.Time
}

func NewFileManager(config *structures.Config, compressor interfaces.CompressorInterface, service services.HistoryServiceInterface, metrics providers.MetricsProviderInterface, logger providers.Logger) *FileManager {
	return &FileManager{
		config:     config,
		compressor: compressor,
		service:    service,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// SaveToFile writes the store as tab-indented JSON. An existing file is moved
// to the backup dir first when backups are enabled.
func (f *FileManager) SaveToFile(fileName string) error {
	start := time.Now()
	defer func() {
		f.metrics.ObservePersistenceDuration(time.Since(start))
	}()

	raw, err := json.Marshal(f.service.GetStore())
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	var indented bytes.Buffer
	if err = json.Indent(&indented, raw, "", "\t"); err != nil {
		return fmt.Errorf("indent store: %w", err)
	}
	data, err := f.compressor.Compress(indented.Bytes())
	if err != nil {
		return err
	}

	if err = os.MkdirAll(filepath.Dir(fileName), 0o755); err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	if err = writeSynced(tmpFile, data); err != nil {
		return err
	}

	if f.config.Persistence.Backup {
		if err = f.backup(fileName); err != nil {
			os.Remove(tmpFile)
			return err
		}
	}

	return os.Rename(tmpFile, fileName)
}

// backup moves fileName to <backupDir>/<name>_<time><ext>. A missing file is not an error.
func (f *FileManager) backup(fileName string) error {
	if _, err := os.Stat(fileName); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	dir := f.config.Persistence.BackupDir
	if dir == "" {
		dir = filepath.Dir(fileName)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}

	target, err := backupTarget(dir, fileName, f.now())
	if err != nil {
		return err
	}

	f.logger.Infof(providers.TypeApp, "Backing up %s to %s", fileName, target)
	if err := os.Rename(fileName, target); err != nil {
		return fmt.Errorf("backup %s: %w", fileName, err)
	}
	return nil
}

// backupTarget picks <dir>/<name>_<time><ext>, adding _2, _3, ... when
// earlier saves within the same second already took the name.
func backupTarget(dir, fileName string, at time.Time) (string, error) {
	ext := filepath.Ext(fileName)
	base := fmt.Sprintf("%s_%s", strings.TrimSuffix(filepath.Base(fileName), ext), at.Format(TimeLayout))

	target := filepath.Join(dir, base+ext)
	for n := 2; ; n++ {
		_, err := os.Stat(target)
		if os.IsNotExist(err) {
			return target, nil
		}
		if err != nil {
			return "", err
		}
		target = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, n, ext))
	}
}

func writeSynced(path string, data []byte) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

// LoadFromFile replaces the service store with the file contents. A missing
// file leaves an empty store.
func (f *FileManager) LoadFromFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			f.logger.Warnf(providers.TypeApp, "Cannot load local database %s, creating new one", fileName)
			f.service.PutStore(models.NewStore())
			return nil
		}
		return err
	}

	decompressed, err := f.compressor.Decompress(data)
	if err != nil {
		return err
	}

	store := models.NewStore()
	if err = store.UnmarshalJSON(decompressed); err != nil {
		return fmt.Errorf("load %s: %w", fileName, err)
	}
	f.service.PutStore(store)
	f.service.MarkClean()

	f.logger.Infof(providers.TypeApp, "Loaded %d entities (%d snapshots) from %s", store.Len(), store.RecordCount(), fileName)
	return nil
}
