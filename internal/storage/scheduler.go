package storage

import (
	"sync"
	"time"

	"github.com/roylee0704/gron"

	"weschedule/internal/providers"
	"weschedule/internal/services"
	"weschedule/internal/storage/interfaces"
	"weschedule/internal/structures"
)

// Scheduler drives the periodic background work: snapshot persistence and
// the stale-record sweep into cold storage.
type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	service     services.AvailabilityServiceInterface
	fileManager *FileManager
	cold        *ColdStorage
	metrics     providers.MetricsProviderInterface
	cron        *gron.Cron
	opsMu       sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	s.cron.AddFunc(gron.Every(s.config.Persistence.SaveInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		start := time.Now()
		err := s.fileManager.SaveToFile(s.config.Persistence.FilePath)
		if err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while persisting availability: %s", err)
			return
		}
		s.metrics.ObservePersistenceDuration(time.Since(start))
		s.logger.Infof(providers.TypeApp, "Persisted availability to file %s", s.config.Persistence.FilePath)
	})

	if s.sweepEnabled() {
		s.cron.AddFunc(gron.Every(s.config.Engine.SweepInterval), func() {
			s.opsMu.Lock()
			defer s.opsMu.Unlock()

			swept := s.service.SweepStale(s.config.Engine.StaleAfter)
			if swept == 0 {
				return
			}
			s.logger.Infof(providers.TypeApp, "Swept %d stale availability records to cold storage", swept)
			if err := s.cold.Flush(); err != nil {
				s.logger.Errorf(providers.TypeApp, "Error while flushing cold storage: %s", err)
			}
		})
	}

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	if err := s.fileManager.LoadFromFile(s.config.Persistence.FilePath); err != nil {
		return err
	}
	if s.sweepEnabled() {
		return s.cold.RestoreIndex()
	}
	return nil
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeApp, "Persisting availability to file...")
	if err := s.fileManager.SaveToFile(s.config.Persistence.FilePath); err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting availability: %s", err)
		return err
	}
	return s.cold.Flush()
}

func (s *Scheduler) sweepEnabled() bool {
	return s.config.Engine.SweepInterval > 0 &&
		s.config.Engine.StaleAfter > 0 &&
		s.config.Engine.ColdStorageDir != ""
}

func NewScheduler(config *structures.Config, logger providers.Logger, service services.AvailabilityServiceInterface, fileManager *FileManager, cold *ColdStorage, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	service.SetColdStorage(cold)
	return &Scheduler{
		config:      config,
		logger:      logger,
		service:     service,
		fileManager: fileManager,
		cold:        cold,
		metrics:     metrics,
	}
}
