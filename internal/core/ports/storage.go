package ports

import (
	"context"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
)

// AlertRepository persists alerts and rogue verdicts.
type AlertRepository interface {
	SaveAlerts(ctx context.Context, alerts []domain.Alert) error
	ListAlerts(ctx context.Context, limit int) ([]domain.Alert, error)
	SaveVerdict(ctx context.Context, verdict domain.RogueVerdict) error
	ListVerdicts(ctx context.Context) ([]domain.RogueVerdict, error)
	Close() error
}
