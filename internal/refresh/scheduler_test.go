package refresh

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lebfix/lebfix-client/internal/logging"
)

func TestNewScheduler_RejectsBadSchedule(t *testing.T) {
	_, err := NewScheduler("every so often", func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestScheduler_RunNowCarriesRequestID(t *testing.T) {
	var rid string
	s, err := NewScheduler("@every 1m", func(ctx context.Context) error {
		rid = logging.GetRequestID(ctx)
		return errors.New("logged, not returned")
	})
	require.NoError(t, err)

	s.RunNow(context.Background())
	assert.NotEmpty(t, rid)
}

func TestScheduler_RunsOnSchedule(t *testing.T) {
	var runs atomic.Int32
	s, err := NewScheduler("@every 1s", func(context.Context) error {
		runs.Add(1)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))

	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()

	after := runs.Load()
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
}

func TestScheduler_CancelledContextSkipsRuns(t *testing.T) {
	var runs atomic.Int32
	s, err := NewScheduler("@every 1m", func(context.Context) error {
		runs.Add(1)
		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.RunNow(ctx)
	assert.Zero(t, runs.Load())
}
