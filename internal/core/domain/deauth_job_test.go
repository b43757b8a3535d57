package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeauthJobConfig_Validate(t *testing.T) {
	cfg := DeauthJobConfig{APMAC: "11-22-33-44-55-66"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, BroadcastMAC, cfg.ClientMAC)
	assert.Equal(t, "11:22:33:44:55:66", cfg.APMAC)
	assert.Equal(t, OriginManual, cfg.Origin)

	bad := DeauthJobConfig{APMAC: "nope"}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidMAC)

	neg := DeauthJobConfig{APMAC: "11:22:33:44:55:66", Count: -1}
	assert.ErrorIs(t, neg.Validate(), ErrInvalidCount)
}

func TestDeauthJob_Lifecycle(t *testing.T) {
	job, err := NewDeauthJob("job-1", DeauthJobConfig{ClientMAC: "aa:bb:cc:dd:ee:ff", APMAC: "11:22:33:44:55:66", Count: 2})
	require.NoError(t, err)
	assert.True(t, job.IsActive())
	assert.Equal(t, JobPending, job.Status().State)

	job.Begin()
	assert.False(t, job.Done())
	job.RecordSent()
	job.RecordSent()
	assert.True(t, job.Done())

	job.Finish(nil)
	st := job.Status()
	assert.Equal(t, JobStopped, st.State)
	assert.Equal(t, int64(2), st.FramesSent)
	assert.NotNil(t, st.EndTime)
	assert.False(t, job.IsActive())
}

func TestDeauthJob_UnboundedNeverDone(t *testing.T) {
	job, err := NewDeauthJob("job-2", DeauthJobConfig{APMAC: "11:22:33:44:55:66"})
	require.NoError(t, err)
	for i := 0; i < 1000; i++ {
		job.RecordSent()
	}
	assert.False(t, job.Done())

	job.Cancel()
	assert.True(t, job.Cancelled())
}

func TestDeauthJob_FinishWithError(t *testing.T) {
	job, err := NewDeauthJob("job-3", DeauthJobConfig{APMAC: "11:22:33:44:55:66"})
	require.NoError(t, err)
	job.Begin()
	job.Finish(errors.New("send: no such device"))

	st := job.Status()
	assert.Equal(t, JobFailed, st.State)
	assert.Contains(t, st.ErrorMessage, "no such device")
}
