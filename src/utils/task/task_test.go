package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/veesr/escrow/src/utils/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/atomic"
)

func TestTaskTestSuite(t *testing.T) {
	suite.Run(t, new(TaskTestSuite))
}

type TaskTestSuite struct {
	suite.Suite
	config *config.Config
}

func (s *TaskTestSuite) SetupSuite() {
	s.config = config.Default()
	s.config.StopTimeout = 5 * time.Second
}

func (s *TaskTestSuite) TestLifecycle() {
	var ticks atomic.Int64
	var stopped atomic.Bool

	sub := NewTask(s.config, "sub").
		WithPeriodicSubtaskFunc(5*time.Millisecond, func() error {
			ticks.Inc()
			return nil
		})

	task := NewTask(s.config, "parent").
		WithSubtask(sub).
		WithOnStop(func() { stopped.Store(true) })

	require.Nil(s.T(), task.Start())
	require.Eventually(s.T(), func() bool { return ticks.Load() > 2 }, time.Second, time.Millisecond)

	task.StopWait()
	require.True(s.T(), stopped.Load())
	require.True(s.T(), task.IsStopping.Load())

	select {
	case <-task.CtxRunning.Done():
	default:
		s.T().Fatal("task still running")
	}
}

func (s *TaskTestSuite) TestBeforeStartFailure() {
	failure := errors.New("nope")
	task := NewTask(s.config, "failing").
		WithOnBeforeStart(func() error { return failure })
	require.ErrorIs(s.T(), task.Start(), failure)
}

func (s *TaskTestSuite) TestRetryUntilSuccess() {
	var calls, notified int
	err := NewRetry().
		WithMaxInterval(time.Millisecond).
		WithMaxElapsedTime(time.Second).
		WithOnError(func(error) { notified++ }).
		Run(func() error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		})
	require.Nil(s.T(), err)
	require.Equal(s.T(), 3, calls)
	require.Equal(s.T(), 2, notified)
}

func (s *TaskTestSuite) TestRetryPermanent() {
	failure := errors.New("permanent")
	var calls int
	err := NewRetry().
		WithMaxInterval(time.Millisecond).
		Run(func() error {
			calls++
			return backoff.Permanent(failure)
		})
	require.ErrorIs(s.T(), err, failure)
	require.Equal(s.T(), 1, calls)
}

func (s *TaskTestSuite) TestRetryContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewRetry().
		WithContext(ctx).
		WithMaxInterval(time.Millisecond).
		Run(func() error { return errors.New("transient") })
	require.Error(s.T(), err)
}
