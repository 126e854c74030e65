package worker

import (
	"context"
	"errors"
	"log"
	"time"

	"shopcore/internal/queue"
	"shopcore/internal/services"
)

// Worker consumes task envelopes and runs the periodic low-stock sweep.
type Worker struct {
	verification  *services.VerificationService
	notifications *services.NotificationService
	alerts        *services.AlertService

	lowStockThreshold int
	lowStockInterval  time.Duration
}

func New(
	verification *services.VerificationService,
	notifications *services.NotificationService,
	alerts *services.AlertService,
	lowStockThreshold int,
	lowStockInterval time.Duration,
) *Worker {
	return &Worker{
		verification:      verification,
		notifications:     notifications,
		alerts:            alerts,
		lowStockThreshold: lowStockThreshold,
		lowStockInterval:  lowStockInterval,
	}
}

// HandleTask routes one envelope. Unknown task types are logged and dropped
// so topic evolution never wedges an old worker.
func (w *Worker) HandleTask(ctx context.Context, t queue.Task) error {
	switch t.Type {
	case queue.TaskVerificationEmail:
		err := w.verification.DeliverWithRetry(t.UserID)
		if errors.Is(err, services.ErrRetriesExhausted) {
			w.alerts.NotifyDeliveryFailure(t.UserID, err)
		}
		return err
	case queue.TaskOrderConfirmation:
		return w.notifications.SendOrderConfirmation(t.OrderID)
	default:
		log.Printf("[worker] unknown task type %q, skipping", t.Type)
		return nil
	}
}

// RunLowStockSweep blocks running the periodic inventory check until ctx is
// cancelled. The first sweep runs immediately.
func (w *Worker) RunLowStockSweep(ctx context.Context) {
	ticker := time.NewTicker(w.lowStockInterval)
	defer ticker.Stop()

	sweep := func() {
		if err := w.notifications.SweepLowStock(w.lowStockThreshold); err != nil {
			log.Printf("[worker][stock] sweep failed: %v", err)
		}
	}

	sweep()
	for {
		select {
		case <-ctx.Done():
			log.Println("[worker][stock] sweep stopped")
			return
		case <-ticker.C:
			sweep()
		}
	}
}
