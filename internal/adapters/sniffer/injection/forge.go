// Package injection forges deauthentication frames and paces them onto a
// monitor interface, one job at a time.
package injection

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lcalzada-xor/wguard/internal/core/domain"
	"github.com/lcalzada-xor/wguard/internal/core/ports"
	"github.com/lcalzada-xor/wguard/internal/telemetry"
)

// DefaultInterval is the pause between two forged frames.
const DefaultInterval = 4 * time.Millisecond

// Config holds forge options.
type Config struct {
	// Interface labels metrics and alerts.
	Interface string
	Interval  time.Duration
	Logger    *slog.Logger

	// OnStatus, when set, receives the job status on every state change.
	// It runs on the caller or worker goroutine and must not block.
	OnStatus func(domain.DeauthJobStatus)
}

// Forge owns the single injection worker. Starting a job cancels whichever
// job was running or queued, so at most one job transmits at any time.
type Forge struct {
	sender ports.FrameSender
	alerts ports.AlertSink
	cfg    Config
	logger *slog.Logger

	queue chan *domain.DeauthJob

	mu      sync.Mutex
	current *domain.DeauthJob
}

// New creates a forge sending through sender. Call Run to start the worker.
func New(sender ports.FrameSender, alerts ports.AlertSink, cfg Config) *Forge {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Forge{
		sender: sender,
		alerts: alerts,
		cfg:    cfg,
		logger: cfg.Logger,
		queue:  make(chan *domain.DeauthJob, 1),
	}
}

// Run executes queued jobs sequentially until ctx is done.
func (f *Forge) Run(ctx context.Context) {
	f.logger.Info("Frame forge ready", "interface", f.cfg.Interface, "interval", f.cfg.Interval)
	for {
		select {
		case <-ctx.Done():
			f.Stop()
			f.drain()
			return
		case job := <-f.queue:
			f.execute(ctx, job)
		}
	}
}

// Start validates cfg and replaces the current job with a new one.
func (f *Forge) Start(cfg domain.DeauthJobConfig) (domain.DeauthJobStatus, error) {
	if f.sender == nil {
		return domain.DeauthJobStatus{}, domain.ErrNoSender
	}
	job, err := domain.NewDeauthJob(uuid.New().String(), cfg)
	if err != nil {
		return domain.DeauthJobStatus{}, fmt.Errorf("invalid deauth job: %w", err)
	}

	f.mu.Lock()
	if f.current != nil && f.current.IsActive() {
		f.current.Cancel()
		f.logger.Debug("Deauth job replaced", "job", f.current.ID, "by", job.ID)
	}
	f.drain()
	f.report(job)
	f.queue <- job
	f.current = job
	f.mu.Unlock()

	f.logger.Info("Deauth job queued",
		"job", job.ID, "client", job.Config.ClientMAC, "ap", job.Config.APMAC,
		"count", job.Config.Count, "origin", job.Config.Origin)
	return job.Status(), nil
}

// drain discards a job that was queued but never picked up.
func (f *Forge) drain() {
	select {
	case stale := <-f.queue:
		stale.Cancel()
		stale.Finish(nil)
		f.report(stale)
	default:
	}
}

// Stop cancels the current job. The worker finishes the frame in flight and
// marks the job stopped.
func (f *Forge) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current != nil {
		f.current.Cancel()
	}
}

// Current returns the status of the most recently started job.
func (f *Forge) Current() (domain.DeauthJobStatus, bool) {
	f.mu.Lock()
	job := f.current
	f.mu.Unlock()
	if job == nil {
		return domain.DeauthJobStatus{}, false
	}
	return job.Status(), true
}

func (f *Forge) execute(ctx context.Context, job *domain.DeauthJob) {
	if job.Cancelled() {
		job.Finish(nil)
		f.report(job)
		return
	}

	client, _ := domain.ParseMAC(job.Config.ClientMAC)
	ap, _ := domain.ParseMAC(job.Config.APMAC)
	frame := ComposeDeauth(client, ap)

	job.Begin()
	f.logger.Info("Deauth job running", "job", job.ID, "ap", job.Config.APMAC)
	f.report(job)

	ticker := time.NewTicker(f.cfg.Interval)
	defer ticker.Stop()

	for !job.Cancelled() && !job.Done() {
		telemetry.InjectionsTotal.WithLabelValues(f.cfg.Interface).Inc()
		if err := f.sender.Send(frame); err != nil {
			telemetry.InjectionErrors.WithLabelValues(f.cfg.Interface).Inc()
			f.abort(ctx, job, err)
			return
		}
		job.RecordSent()

		select {
		case <-ctx.Done():
			job.Cancel()
		case <-ticker.C:
		}
	}

	job.Finish(nil)
	f.logger.Info("Deauth job stopped", "job", job.ID, "frames", job.Sent())
	f.report(job)
}

func (f *Forge) report(job *domain.DeauthJob) {
	if f.cfg.OnStatus != nil {
		f.cfg.OnStatus(job.Status())
	}
}

func (f *Forge) abort(ctx context.Context, job *domain.DeauthJob, err error) {
	ierr := &domain.InjectionError{JobID: job.ID, Target: job.Config.APMAC, Err: err}
	job.Finish(ierr)
	f.logger.Error("Deauth job failed", "job", job.ID, "frames", job.Sent(), "error", err)
	f.report(job)

	if f.alerts == nil {
		return
	}
	alert := domain.MustAlert(domain.AlertSystem, domain.SubtypeInjectionFailed, domain.SeverityHigh, ierr.Error())
	alert.TargetMAC = job.Config.APMAC
	alert.Interface = f.cfg.Interface
	f.alerts.Notify(ctx, alert)
}

// StartJob implements ports.DeauthService.
func (f *Forge) StartJob(_ context.Context, cfg domain.DeauthJobConfig) (domain.DeauthJobStatus, error) {
	return f.Start(cfg)
}

// StopJob implements ports.DeauthService.
func (f *Forge) StopJob(context.Context) { f.Stop() }

// CurrentJob implements ports.DeauthService.
func (f *Forge) CurrentJob(context.Context) (domain.DeauthJobStatus, bool) { return f.Current() }

// Engage floods every client of the rogue BSSID until another job replaces it
// or it is stopped.
func (f *Forge) Engage(ctx context.Context, v domain.RogueVerdict) (domain.DeauthJobStatus, error) {
	status, err := f.Start(domain.DeauthJobConfig{
		ClientMAC: domain.BroadcastMAC,
		APMAC:     v.RogueBSSID,
		Count:     0,
		Origin:    domain.OriginVerdict,
	})
	if err != nil {
		return status, err
	}

	if f.alerts != nil {
		alert := domain.MustAlert(domain.AlertAnomaly, domain.SubtypeCountermeasureRun, domain.SeverityHigh,
			fmt.Sprintf("Deauthenticating clients of rogue %s (%s)", v.RogueBSSID, v.SSID))
		alert.DeviceMAC = v.RogueBSSID
		alert.SSID = v.SSID
		alert.Channel = v.Channel
		alert.Interface = f.cfg.Interface
		f.alerts.Notify(ctx, alert)
	}
	return status, nil
}

var (
	_ ports.DeauthService  = (*Forge)(nil)
	_ ports.Countermeasure = (*Forge)(nil)
)
