package dataset

import (
	"context"
	"sync"
	"time"

	"github.com/roylee0704/gron"

	"pdistats/internal/dataset/interfaces"
	"pdistats/internal/models"
	"pdistats/internal/providers"
	"pdistats/internal/services"
	"pdistats/internal/structures"
)

// Scheduler owns the catalog lifecycle: restore at startup, periodic
// refresh of remote sources, periodic snapshot persistence, final persist
// on shutdown. Refresh and persist jobs share opsMu so a snapshot never
// interleaves with a half-finished refresh pass.
type Scheduler struct {
	config    *structures.Config
	logger    providers.Logger
	service   services.CatalogServiceInterface
	loader    *CSVLoader
	fetcher   interfaces.FetcherInterface
	snapshots *SnapshotManager
	metrics   providers.MetricsProviderInterface
	cron      *gron.Cron
	opsMu     sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	if len(s.config.Sources) > 0 && s.config.Refresh.Interval > 0 {
		s.cron.AddFunc(gron.Every(s.config.Refresh.Interval), func() {
			s.RefreshAll()
		})
		// First fetch right away so remote data is up before the first tick.
		go s.RefreshAll()
	}

	if s.config.Snapshot.FilePath != "" && s.config.Snapshot.SaveInterval > 0 {
		s.cron.AddFunc(gron.Every(s.config.Snapshot.SaveInterval), func() {
			s.opsMu.Lock()
			defer s.opsMu.Unlock()

			err := s.snapshots.SaveToFile(s.config.Snapshot.FilePath)
			if err != nil {
				s.logger.Errorf(providers.TypeApp, "Error while persisting catalog: %s", err)
				return
			}
			s.logger.Infof(providers.TypeApp, "Persisted catalog to file %s", s.config.Snapshot.FilePath)
		})
	}

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Restore fills the catalog at startup: local CSV files first, then the
// snapshot of previously fetched sources. Neither failing is fatal; the
// service starts with whatever it could load.
func (s *Scheduler) Restore() error {
	start := time.Now()
	for _, ds := range s.loader.LoadDir() {
		s.service.PutDataset(ds)
	}
	s.metrics.ObserveIngestDuration("local", time.Since(start))

	if s.config.Snapshot.FilePath != "" {
		if err := s.snapshots.LoadFromFile(s.config.Snapshot.FilePath); err != nil {
			s.logger.Warnf(providers.TypeApp, "Could not restore snapshot: %s", err)
		}
	}

	s.service.SetReady(true)
	return nil
}

// RefreshAll fetches every configured source and swaps the results into
// the catalog. Sources fail independently; the latest failure is surfaced
// through the health endpoint until a clean pass.
func (s *Scheduler) RefreshAll() {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	failed := false
	for _, src := range s.config.Sources {
		start := time.Now()

		ctx, cancel := context.WithTimeout(context.Background(), s.config.Fetch.Timeout)
		table, err := s.fetcher.Fetch(ctx, src)
		cancel()

		if err != nil {
			failed = true
			s.metrics.IncRefreshErrors()
			s.service.SetRefreshError(src.Name + ": " + err.Error())
			s.logger.Errorf(providers.TypeSync, "Refresh of %s failed: %s", src.Name, err)
			continue
		}

		s.service.PutDataset(models.NewDataset(src.Name, models.SourceRemote, src.URL, table))
		s.metrics.ObserveIngestDuration(src.Name, time.Since(start))
		s.logger.Infof(providers.TypeSync, "Refreshed %s: %d rows", src.Name, table.Rows())
	}

	if !failed {
		s.service.SetRefreshError("")
	}
}

func (s *Scheduler) Persist() error {
	if s.config.Snapshot.FilePath == "" {
		return nil
	}

	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeApp, "Persisting catalog to file...")
	err := s.snapshots.SaveToFile(s.config.Snapshot.FilePath)
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting catalog: %s", err)
		return err
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, service services.CatalogServiceInterface, loader *CSVLoader, fetcher interfaces.FetcherInterface, snapshots *SnapshotManager, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:    config,
		logger:    logger,
		service:   service,
		loader:    loader,
		fetcher:   fetcher,
		snapshots: snapshots,
		metrics:   metrics,
	}
}
