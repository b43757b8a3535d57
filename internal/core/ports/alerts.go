package ports

import (
	"context"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
)

// AlertSink receives structured notifications from the engine.
// Implementations must not block the caller for long; capture loops call Notify.
type AlertSink interface {
	Notify(ctx context.Context, alert domain.Alert)
}

// AlertSinkFunc adapts a function to AlertSink.
type AlertSinkFunc func(ctx context.Context, alert domain.Alert)

func (f AlertSinkFunc) Notify(ctx context.Context, alert domain.Alert) { f(ctx, alert) }
