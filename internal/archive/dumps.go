package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	json "github.com/goccy/go-json"

	"ytmeta/internal/models"
	"ytmeta/internal/providers"
	"ytmeta/internal/structures"
)

var reLabel = regexp.MustCompile(`[^A-Za-z0-9_\-]`)

// DumpWriter stores refs dumps, the per-run record of playlist membership
// that reports are rendered from.
type DumpWriter struct {
	config *structures.Config
	logger providers.Logger
}

func NewDumpWriter(config *structures.Config, logger providers.Logger) *DumpWriter {
	return &DumpWriter{config: config, logger: logger}
}

// DumpFileName is dump_<time>_<label>.json, the time being the local dump time.
func DumpFileName(dumpTime int64, label string) string {
	return fmt.Sprintf("dump_%s_%s.json", time.Unix(dumpTime, 0).Format(TimeLayout), reLabel.ReplaceAllString(label, "_"))
}

// Write saves the refs part of dump and returns the written path.
func (w *DumpWriter) Write(dump *models.Dump, label string) (string, error) {
	if err := os.MkdirAll(w.config.Archive.DumpsDir, 0o755); err != nil {
		return "", fmt.Errorf("create dumps dir: %w", err)
	}

	data, err := json.MarshalIndent(dump.Refs(), "", "\t")
	if err != nil {
		return "", fmt.Errorf("marshal refs dump: %w", err)
	}

	path := filepath.Join(w.config.Archive.DumpsDir, DumpFileName(dump.DumpTime, label))
	if err = writeSynced(path, data); err != nil {
		return "", err
	}
	w.logger.Infof(providers.TypeIngest, "Refs dump written to %s", path)
	return path, nil
}

// ReadDump loads a full or refs dump.
func ReadDump(path string) (*models.Dump, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var dump models.Dump
	if err = json.Unmarshal(data, &dump); err != nil {
		return nil, fmt.Errorf("cannot load dump file %s: %w", path, err)
	}
	return &dump, nil
}
