package workers

import (
	"context"
	"time"

	"sidequest_portal/internal/logger"
)

// Sweeper - хранилище, умеющее удалять просроченные записи
type Sweeper interface {
	Sweep() int
}

// StateWorker периодически чистит кэш состояния сессий в памяти процесса.
// Redis удаляет ключи сам по TTL, для него воркер не нужен.
type StateWorker struct {
	sweeper  Sweeper
	interval time.Duration
}

func NewStateWorker(sweeper Sweeper, interval time.Duration) *StateWorker {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &StateWorker{sweeper: sweeper, interval: interval}
}

// Start запускает фоновую очистку до отмены ctx
func (w *StateWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *StateWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("State worker stopped")
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *StateWorker) sweep() {
	if removed := w.sweeper.Sweep(); removed > 0 {
		logger.Info("Expired session states removed", "count", removed)
	}
}
