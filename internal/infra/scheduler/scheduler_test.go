package scheduler

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct{}

func (f *fakeNotifier) RunOnce(_ context.Context, _ string) error { return nil }

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestStartRejectsInvalidCronSpec(t *testing.T) {
	s := NewExpirationScheduler(&fakeNotifier{}, testLogger(), "not a cron spec")
	require.Error(t, s.Start())
}

func TestStartAndStop(t *testing.T) {
	s := NewExpirationScheduler(&fakeNotifier{}, testLogger(), "0 8 1 * *")
	require.NoError(t, s.Start())
	s.Stop()
}
