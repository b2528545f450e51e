package archive

import (
	"context"
	"sync"
	"time"

	"github.com/roylee0704/gron"

	"railpulse/internal/archive/interfaces"
	"railpulse/internal/models"
	"railpulse/internal/providers"
	"railpulse/internal/structures"
)

// Scheduler periodically snapshots records ingested since the last
// run. Flush covers the final partial window on shutdown.
type Scheduler struct {
	config  *structures.Config
	logger  providers.Logger
	records models.RecordRepository
	service ServiceInterface
	cron    *gron.Cron

	opsMu    sync.Mutex
	lastSnap time.Time
}

func NewScheduler(config *structures.Config, logger providers.Logger, records models.RecordRepository, service ServiceInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:  config,
		logger:  logger,
		records: records,
		service: service,
	}
}

func (s *Scheduler) Init() {
	s.lastSnap = time.Now().UTC()

	interval := s.config.Archive.SnapInterval
	if interval <= 0 {
		s.logger.Infof(providers.TypeArchive, "Periodic archiving disabled")
		return
	}

	s.cron = gron.New()
	s.cron.AddFunc(gron.Every(interval), func() {
		if err := s.snapshot(); err != nil {
			s.logger.Errorf(providers.TypeArchive, "Scheduled archive failed: %s", err)
		}
	})
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Flush archives whatever arrived since the last snapshot. Called on
// shutdown after the web server has drained.
func (s *Scheduler) Flush() error {
	return s.snapshot()
}

func (s *Scheduler) snapshot() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	from := s.lastSnap
	now := time.Now().UTC()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tweets, err := s.records.Query(ctx, models.RecordFilter{
		CreatedFrom: &from,
		CreatedTo:   &now,
		OrderAsc:    true,
	})
	if err != nil {
		return err
	}
	if len(tweets) == 0 {
		s.logger.Debugf(providers.TypeArchive, "No records since last snapshot, skipping archive")
		s.lastSnap = now
		return nil
	}

	if name, ok := s.service.Archive(ctx, tweets, ""); !ok {
		s.logger.Errorf(providers.TypeArchive, "Snapshot %s failed, will retry next interval", name)
		return nil
	}

	s.lastSnap = now
	return nil
}
