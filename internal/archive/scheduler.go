package archive

import (
	"sync"

	"github.com/roylee0704/gron"

	"ytmeta/internal/archive/interfaces"
	"ytmeta/internal/providers"
	"ytmeta/internal/services"
	"ytmeta/internal/structures"
)

type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	service     services.HistoryServiceInterface
	fileManager *FileManager
	cron        *gron.Cron
	opsMu       sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	s.cron.AddFunc(gron.Every(s.config.Persistence.SaveInterval), func() {
		if !s.service.IsDirty() {
			return
		}
		if err := s.Persist(); err != nil {
			return
		}
		s.logger.Infof(providers.TypeApp, "Persisted data to file %s", s.config.Persistence.FilePath)
	})

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Close stops the cron and releases the compressor. The scheduler is unusable afterwards.
func (s *Scheduler) Close() {
	s.Stop()
	s.fileManager.Close()
}

func (s *Scheduler) Restore() error {
	return s.fileManager.LoadFromFile(s.config.Persistence.FilePath)
}

// Persist saves the store. The dirty flag is cleared before writing so an
// ingest racing with the save marks the store dirty again.
func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeApp, "Persisting database to file...")
	s.service.MarkClean()
	err := s.fileManager.SaveToFile(s.config.Persistence.FilePath)
	if err != nil {
		s.service.MarkDirty()
		s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
		return err
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, service services.HistoryServiceInterface, fileManager *FileManager) interfaces.SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		service:     service,
		fileManager: fileManager,
	}
}
