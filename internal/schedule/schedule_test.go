package schedule

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		spec    string
		wantErr bool
	}{
		{spec: "@every 15m"},
		{spec: "@hourly"},
		{spec: "*/5 * * * *"},
		{spec: "0 */5 * * * *"},
		{spec: "every minute", wantErr: true},
		{spec: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			err := Validate(tt.spec)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAddRejectsBadSchedule(t *testing.T) {
	s := New(nil)
	err := s.Add(Func{TaskName: "assessment", Spec: "sometimes", Fn: func(context.Context) error { return nil }})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assessment")
}

func TestStartRunsUntilCancelled(t *testing.T) {
	s := New(nil)
	var runs atomic.Int32
	require.NoError(t, s.Add(Func{
		TaskName: "assessment",
		Spec:     "@every 1s",
		Fn: func(context.Context) error {
			runs.Add(1)
			return errors.New("one check failed")
		},
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()

	err := s.Start(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, runs.Load(), int32(1))
}

func TestExecuteAppliesTimeout(t *testing.T) {
	s := New(nil)
	var deadline bool
	task := Func{
		TaskName: "slow",
		Spec:     "@every 1h",
		Limit:    20 * time.Millisecond,
		Fn: func(ctx context.Context) error {
			_, deadline = ctx.Deadline()
			<-ctx.Done()
			return ctx.Err()
		},
	}

	start := time.Now()
	s.execute(context.Background(), task)
	assert.True(t, deadline)
	assert.Less(t, time.Since(start), time.Second)
}

func TestExecuteSkipsAfterCancel(t *testing.T) {
	s := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	s.execute(ctx, Func{TaskName: "x", Spec: "@hourly", Fn: func(context.Context) error { called = true; return nil }})
	assert.False(t, called)
}

func TestStartSkipsActivationWhileRunning(t *testing.T) {
	s := New(nil)
	var runs, running, maxRunning atomic.Int32
	require.NoError(t, s.Add(Func{
		TaskName: "assessment",
		Spec:     "@every 1s",
		Fn: func(ctx context.Context) error {
			runs.Add(1)
			n := running.Add(1)
			defer running.Add(-1)
			for {
				m := maxRunning.Load()
				if n <= m || maxRunning.CompareAndSwap(m, n) {
					break
				}
			}
			// outlasts the activations at +1s and +2s
			select {
			case <-ctx.Done():
			case <-time.After(5 * time.Second):
			}
			return nil
		},
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 3500*time.Millisecond)
	defer cancel()

	err := s.Start(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), runs.Load(), "activations during a run are skipped")
	assert.Equal(t, int32(1), maxRunning.Load())
}
