package services

import (
	"go.uber.org/atomic"
	"ytmeta/internal/models"
	"ytmeta/internal/providers"
)

type HistoryServiceInterface interface {
	Ingest(dump *models.Dump, timestamp int64) models.MergeResult
	Snapshot(id string, timestamp int64) (*models.Snapshot, bool)
	GetHistory(id string) ([]models.Entry, bool)
	GetEntities() []string
	GetEntityCount() int
	GetRecordCount() int
	PutStore(store *models.Store)
	GetStore() *models.Store
	IsDirty() bool
	MarkClean()
	MarkDirty()
}

// HistoryService owns the process-wide store. Ingests must not run concurrently
// with each other; reads may run at any time.
type HistoryService struct {
	logger providers.Logger
	store  *models.Store
	dirty  atomic.Bool
}

func NewHistoryService(logger providers.Logger) HistoryServiceInterface {
	return &HistoryService{
		logger: logger,
		store:  models.NewStore(),
	}
}

// Ingest merges a full dump observed at timestamp into the store.
func (hs *HistoryService) Ingest(dump *models.Dump, timestamp int64) models.MergeResult {
	if dump == nil {
		return models.MergeResult{}
	}

	for _, p := range dump.Playlists {
		if p == nil {
			continue
		}
		if !p.HasVideos() {
			hs.logger.Warnf(providers.TypeIngest, "%q not found in playlist %q, skipping", models.KeyVideos, p.Title)
			continue
		}
		for i, video := range p.Videos {
			if _, ok := video.String(models.KeyID); !ok {
				hs.logger.Warnf(providers.TypeIngest, "%q not found in video #%d of playlist %q, skipping", models.KeyID, i, p.Title)
			}
		}
	}

	result := hs.store.Merge(dump.Batch(), timestamp)
	if result.Changed() {
		hs.dirty.Store(true)
	}
	hs.logger.Infof(providers.TypeIngest, "Merged batch at %d: created=%d bumped=%d appended=%d skipped=%d dropped=%d",
		timestamp, result.Created, result.Bumped, result.Appended, result.Skipped, result.Dropped)
	return result
}

func (hs *HistoryService) Snapshot(id string, timestamp int64) (*models.Snapshot, bool) {
	snap, ok := hs.store.Resolve(id, timestamp)
	if !ok {
		hs.logger.Debugf(providers.TypeReport, "Cannot find in database: %s", id)
		return nil, false
	}
	return snap, true
}

func (hs *HistoryService) GetHistory(id string) ([]models.Entry, bool) {
	h, ok := hs.store.Get(id)
	if !ok {
		return nil, false
	}
	return h.Entries(), true
}

func (hs *HistoryService) GetEntities() []string {
	return hs.store.IDs()
}

func (hs *HistoryService) GetEntityCount() int {
	return hs.store.Len()
}

func (hs *HistoryService) GetRecordCount() int {
	return hs.store.RecordCount()
}

// PutStore replaces the store wholesale, as after loading it from disk.
func (hs *HistoryService) PutStore(store *models.Store) {
	if store == nil {
		store = models.NewStore()
	}
	hs.store = store
}

func (hs *HistoryService) GetStore() *models.Store {
	return hs.store
}

// IsDirty reports whether the store changed since the last MarkClean.
func (hs *HistoryService) IsDirty() bool {
	return hs.dirty.Load()
}

func (hs *HistoryService) MarkClean() {
	hs.dirty.Store(false)
}

func (hs *HistoryService) MarkDirty() {
	hs.dirty.Store(true)
}
