package ports

import (
	"time"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
)

// APInventory exposes the tracked access points.
type APInventory interface {
	List() []domain.APSnapshot
	Stats() domain.APStats
}

// RogueRegistry exposes the legitimacy registry and the countered BSSIDs.
type RogueRegistry interface {
	Registrations() []domain.SSIDRegistration
	Countered() []string
}

// AlertFeed returns the most recent alerts, newest first.
type AlertFeed interface {
	Recent(limit int) []domain.Alert
}

// CaptureStatus reports the capture loops.
type CaptureStatus interface {
	Statuses() []domain.InterfaceStatus
	Running() bool
}

// DropCounter reports how many alerts a sink discarded.
type DropCounter interface {
	Dropped() int64
}

// StalePruner forgets entries not heard since a cutoff.
type StalePruner interface {
	PruneBefore(cutoff time.Time) int
}
