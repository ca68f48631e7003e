package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/guhospital/hospital-api/internal/model"
	"github.com/guhospital/hospital-api/internal/repository"
	"github.com/guhospital/hospital-api/pkg/logger"
)

const (
	jobTimeout          = 2 * time.Minute
	outboxRetention     = 7 * 24 * time.Hour
	expirationAlertDays = 30
)

// Scheduler owns the recurring maintenance jobs: refill countdowns,
// medication expiration sweeps, announcement cleanup and outbox pruning.
type Scheduler struct {
	prescriptionRepo repository.PrescriptionRepository
	pharmacyRepo     repository.PharmacyRepository
	announcementRepo repository.AnnouncementRepository
	outboxRepo       repository.OutboxRepository
	logger           *logger.Logger
	scheduler        *gocron.Scheduler
}

func NewScheduler(
	prescriptionRepo repository.PrescriptionRepository,
	pharmacyRepo repository.PharmacyRepository,
	announcementRepo repository.AnnouncementRepository,
	outboxRepo repository.OutboxRepository,
	log *logger.Logger,
) *Scheduler {
	return &Scheduler{
		prescriptionRepo: prescriptionRepo,
		pharmacyRepo:     pharmacyRepo,
		announcementRepo: announcementRepo,
		outboxRepo:       outboxRepo,
		logger:           log,
		scheduler:        gocron.NewScheduler(time.Local),
	}
}

// Start registers the jobs and runs them asynchronously.
func (s *Scheduler) Start() *gocron.Scheduler {
	s.scheduler.Every(1).Day().At("00:05").Do(func() {
		s.run("refill countdown", s.decrementRefills)
	})
	s.scheduler.Every(1).Day().At("06:00").Do(func() {
		s.run("medication expiration sweep", s.sweepExpiringMedications)
	})
	s.scheduler.Every(1).Day().At("01:00").Do(func() {
		s.run("announcement cleanup", s.cleanupAnnouncements)
	})
	s.scheduler.Every(6).Hours().Do(func() {
		s.run("outbox pruning", s.pruneOutbox)
	})

	s.scheduler.StartAsync()
	s.logger.Info("maintenance scheduler started")

	return s.scheduler
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) run(name string, job func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := job(ctx); err != nil {
		s.logger.Error(err, "scheduled job failed", "job", name)
	}
}

func (s *Scheduler) decrementRefills(ctx context.Context) error {
	n, err := s.prescriptionRepo.DecrementDueRefills(ctx, time.Now())
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("decremented due refills", "count", n)
	}
	return nil
}

func (s *Scheduler) sweepExpiringMedications(ctx context.Context) error {
	alerts, err := s.pharmacyRepo.ExpiringWithin(ctx, expirationAlertDays)
	if err != nil {
		return err
	}

	for _, alert := range alerts {
		s.logger.Warn("medication nearing expiration",
			"medication", alert.Name,
			"stock_level", alert.StockLevel,
			"expiration_date", alert.ExpirationDate.Format("2006-01-02"))
	}

	if len(alerts) == 0 {
		return nil
	}

	payload, err := json.Marshal(alerts)
	if err != nil {
		return err
	}
	return s.outboxRepo.Create(ctx, &model.OutboxEvent{
		EventType: "medication.expiring",
		Payload:   payload,
	})
}

func (s *Scheduler) cleanupAnnouncements(ctx context.Context) error {
	n, err := s.announcementRepo.DeleteExpired(ctx, time.Now())
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("deleted expired announcements", "count", n)
	}
	return nil
}

func (s *Scheduler) pruneOutbox(ctx context.Context) error {
	n, err := s.outboxRepo.DeleteProcessedBefore(ctx, time.Now().Add(-outboxRetention))
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("pruned processed outbox events", "count", n)
	}
	return nil
}
