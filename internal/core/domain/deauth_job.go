package domain

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// JobState represents the lifecycle state of a deauth job.
type JobState string

const (
	JobPending JobState = "pending"
	JobRunning JobState = "running"
	JobStopped JobState = "stopped"
	JobFailed  JobState = "failed"
)

// JobOrigin records who asked for the job.
type JobOrigin string

const (
	OriginManual  JobOrigin = "manual"
	OriginVerdict JobOrigin = "verdict"
)

// DeauthJobConfig defines the parameters of one deauthentication run.
type DeauthJobConfig struct {
	// ClientMAC is the receiver address; BroadcastMAC kicks every station.
	ClientMAC string `json:"client_mac"`

	// APMAC is used as both transmitter and BSSID.
	APMAC string `json:"ap_mac"`

	// Count is the number of frames to send (0 for unbounded).
	Count int `json:"count"`

	Origin JobOrigin `json:"origin,omitempty"`
}

// Validate normalizes both MACs and checks the frame count.
func (c *DeauthJobConfig) Validate() error {
	if c.ClientMAC == "" {
		c.ClientMAC = BroadcastMAC
	}
	client, err := NormalizeMAC(c.ClientMAC)
	if err != nil {
		return fmt.Errorf("client: %w", err)
	}
	ap, err := NormalizeMAC(c.APMAC)
	if err != nil {
		return fmt.Errorf("ap: %w", err)
	}
	if c.Count < 0 {
		return ErrInvalidCount
	}
	if c.Origin == "" {
		c.Origin = OriginManual
	}
	c.ClientMAC, c.APMAC = client, ap
	return nil
}

// DeauthJobStatus is a snapshot of a job's runtime state.
type DeauthJobStatus struct {
	ID           string          `json:"id"`
	Config       DeauthJobConfig `json:"config"`
	State        JobState        `json:"state"`
	FramesSent   int64           `json:"frames_sent"`
	StartTime    time.Time       `json:"start_time,omitempty"`
	EndTime      *time.Time      `json:"end_time,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

// DeauthJob is one injection run. The cancellation flag and the sent counter
// are lock free since the injection loop checks them on every frame.
type DeauthJob struct {
	ID     string
	Config DeauthJobConfig

	cancelled atomic.Bool
	sent      atomic.Int64

	mu      sync.Mutex
	state   JobState
	started time.Time
	ended   *time.Time
	errMsg  string
}

// NewDeauthJob validates config and returns a pending job.
func NewDeauthJob(id string, config DeauthJobConfig) (*DeauthJob, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &DeauthJob{ID: id, Config: config, state: JobPending}, nil
}

// Cancel sets the cancellation flag. It does not interrupt a send in flight.
func (j *DeauthJob) Cancel() { j.cancelled.Store(true) }

// Cancelled reports whether Cancel was called.
func (j *DeauthJob) Cancelled() bool { return j.cancelled.Load() }

// RecordSent counts one transmitted frame and returns the new total.
func (j *DeauthJob) RecordSent() int64 { return j.sent.Add(1) }

// Sent returns the number of frames transmitted so far.
func (j *DeauthJob) Sent() int64 { return j.sent.Load() }

// Done reports whether the count target has been reached. Unbounded jobs are never done.
func (j *DeauthJob) Done() bool {
	return j.Config.Count > 0 && j.sent.Load() >= int64(j.Config.Count)
}

// Begin transitions the job to running.
func (j *DeauthJob) Begin() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.state = JobRunning
	j.started = time.Now()
}

// Finish records the final state: failed when err is non-nil, stopped otherwise.
func (j *DeauthJob) Finish(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	now := time.Now()
	j.ended = &now
	if err != nil {
		j.state = JobFailed
		j.errMsg = err.Error()
		return
	}
	j.state = JobStopped
}

// IsActive returns true while the job is queued or transmitting.
func (j *DeauthJob) IsActive() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state == JobPending || j.state == JobRunning
}

// Status returns a snapshot of the job.
func (j *DeauthJob) Status() DeauthJobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return DeauthJobStatus{
		ID:           j.ID,
		Config:       j.Config,
		State:        j.state,
		FramesSent:   j.sent.Load(),
		StartTime:    j.started,
		EndTime:      j.ended,
		ErrorMessage: j.errMsg,
	}
}
