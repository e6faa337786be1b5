package processor

import (
	"context"
	"errors"

	"trendmart/internal/app/trendmart/service"
	"trendmart/pkg/logger"

	"github.com/robfig/cron/v3"
)

// CronScheduler запускает синхронизацию каталога по расписанию
type CronScheduler struct {
	cron    *cron.Cron
	syncSvc service.SyncServiceInterface
}

func NewCronScheduler(syncSvc service.SyncServiceInterface) *CronScheduler {
	return &CronScheduler{
		cron:    cron.New(),
		syncSvc: syncSvc,
	}
}

// Start регистрирует задачу по расписанию и выполняет первый запуск сразу
// Совпадение с ручным запуском из админки дает ErrSyncInProgress и пропуск
func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting cron scheduler")

	_, err := s.cron.AddFunc(schedule, func() {
		s.runSync(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()

	logger.Info().Msg("Performing initial catalog sync")
	s.runSync(ctx)

	return nil
}

func (s *CronScheduler) runSync(ctx context.Context) {
	if _, err := s.syncSvc.Run(ctx); err != nil {
		if errors.Is(err, service.ErrSyncInProgress) {
			logger.Warn().Msg("Scheduled sync skipped: sync already in progress")
			return
		}
		logger.Error().Err(err).Msg("Scheduled catalog sync failed")
	}
}

func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping cron scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}
