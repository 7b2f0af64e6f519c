package jobs

import (
	"context"
	"log/slog"
	"time"

	"ovation/internal/messaging"
	"ovation/internal/models"
	"ovation/internal/monitoring"
	"ovation/internal/repository"
)

// ReservationReaperJob removes pending reservations older than the TTL. This
// is ledger hygiene only: a pending reservation holds no inventory, so a late
// confirmation of a reaped transaction simply fails with not-found.
type ReservationReaperJob struct {
	reservationRepo *repository.ReservationRepository
	natsClient      *messaging.NATSClient
	ttl             time.Duration
	interval        time.Duration
	ticker          *time.Ticker
	done            chan bool
}

func NewReservationReaperJob(reservationRepo *repository.ReservationRepository, natsClient *messaging.NATSClient, ttl, interval time.Duration) *ReservationReaperJob {
	return &ReservationReaperJob{
		reservationRepo: reservationRepo,
		natsClient:      natsClient,
		ttl:             ttl,
		interval:        interval,
		done:            make(chan bool),
	}
}

// Start begins the background job that sweeps stale pending reservations.
func (j *ReservationReaperJob) Start(ctx context.Context) {
	slog.Info("Starting reservation reaper job", "check_interval", j.interval.String(), "ttl", j.ttl.String())

	j.ticker = time.NewTicker(j.interval)

	// Run initial sweep immediately
	go j.sweep(ctx)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				go j.sweep(ctx)
			case <-j.done:
				slog.Info("Reservation reaper job stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the background job.
func (j *ReservationReaperJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
}

// sweep deletes pending reservations created before now minus the TTL.
// Finalized reservations are never touched; they are the audit trail.
func (j *ReservationReaperJob) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-j.ttl)

	reaped, err := j.reservationRepo.DeleteStale(ctx, cutoff)
	if err != nil {
		slog.Error("Failed to delete stale reservations", "error", err)
		return
	}

	if len(reaped) == 0 {
		slog.Debug("No stale reservations found")
		return
	}

	slog.Info("Reaped stale reservations", "count", len(reaped))
	monitoring.ReservationsReaped.Add(float64(len(reaped)))

	for _, res := range reaped {
		expirationEvent := models.ReservationExpiredEvent{
			TransactionID: res.TransactionID,
			EventID:       res.EventID,
			Timestamp:     time.Now(),
		}

		if err := j.natsClient.Publish(models.EventReservationExpired, expirationEvent); err != nil {
			slog.Error("Failed to publish reservation expired event",
				"error", err,
				"transaction_id", res.TransactionID,
				"event_type", models.EventReservationExpired)
			// Don't return error - the sweep already succeeded
		}
	}
}
