package ports

import (
	"context"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
)

// Countermeasure acts on a rogue AP verdict.
type Countermeasure interface {
	Engage(ctx context.Context, verdict domain.RogueVerdict) (domain.DeauthJobStatus, error)
}

// DeauthService is the manual control surface of the frame forge.
type DeauthService interface {
	// StartJob stops any active job and queues a new one.
	StartJob(ctx context.Context, config domain.DeauthJobConfig) (domain.DeauthJobStatus, error)

	// StopJob cancels the active job, if any.
	StopJob(ctx context.Context)

	// CurrentJob returns the most recently started job.
	CurrentJob(ctx context.Context) (domain.DeauthJobStatus, bool)
}
