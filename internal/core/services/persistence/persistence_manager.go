// Package persistence writes alerts and verdicts to storage in batches off
// the capture path.
package persistence

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
	"github.com/lcalzada-xor/wguard/internal/core/ports"
)

const (
	DefaultBatchSize = 100
	DefaultInterval  = 5 * time.Second
)

// PersistenceManager handles background batch writing of alerts to storage.
type PersistenceManager struct {
	storage   ports.AlertRepository
	queue     chan domain.Alert
	batchSize int
	interval  time.Duration
	logger    *slog.Logger
	done      chan struct{}

	dropped atomic.Int64
}

// NewPersistenceManager creates a manager with a queue of bufferSize alerts.
func NewPersistenceManager(storage ports.AlertRepository, bufferSize int, logger *slog.Logger) *PersistenceManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &PersistenceManager{
		storage:   storage,
		queue:     make(chan domain.Alert, bufferSize),
		batchSize: DefaultBatchSize,
		interval:  DefaultInterval,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Notify queues an alert. It never blocks; a full queue drops the alert.
func (p *PersistenceManager) Notify(_ context.Context, a domain.Alert) {
	select {
	case p.queue <- a:
	default:
		p.dropped.Add(1)
	}
}

// Dropped returns how many alerts were discarded because the queue was full.
func (p *PersistenceManager) Dropped() int64 { return p.dropped.Load() }

// Start begins the flush loop. The remaining buffer is written when ctx is done.
func (p *PersistenceManager) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	buffer := make([]domain.Alert, 0, p.batchSize)

	go func() {
		defer close(p.done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
			drain:
				for {
					select {
					case a := <-p.queue:
						buffer = append(buffer, a)
					default:
						break drain
					}
				}
				p.flush(context.WithoutCancel(ctx), buffer)
				return
			case a := <-p.queue:
				buffer = append(buffer, a)
				if len(buffer) >= p.batchSize {
					p.flush(ctx, buffer)
					buffer = buffer[:0]
				}
			case <-ticker.C:
				if len(buffer) > 0 {
					p.flush(ctx, buffer)
					buffer = buffer[:0]
				}
			}
		}
	}()
}

// Done is closed once the final flush has completed.
func (p *PersistenceManager) Done() <-chan struct{} { return p.done }

func (p *PersistenceManager) flush(ctx context.Context, buffer []domain.Alert) {
	if len(buffer) == 0 || p.storage == nil {
		return
	}

	batch := make([]domain.Alert, len(buffer))
	copy(batch, buffer)
	if err := p.storage.SaveAlerts(ctx, batch); err != nil {
		p.logger.Error("Failed to batch save alerts", "count", len(batch), "error", err)
	}

	for _, a := range batch {
		if a.Subtype != domain.SubtypeEvilTwin {
			continue
		}
		v := domain.RogueVerdict{
			SSID:            a.SSID,
			LegitimateBSSID: a.TargetMAC,
			RogueBSSID:      a.DeviceMAC,
			Channel:         a.Channel,
			DetectedAt:      a.Timestamp,
		}
		if err := p.storage.SaveVerdict(ctx, v); err != nil {
			p.logger.Error("Failed to save verdict", "rogue", v.RogueBSSID, "error", err)
		}
	}
}
