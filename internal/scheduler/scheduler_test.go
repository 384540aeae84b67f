package scheduler

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/KotFed0t/portfolio_tracker/utils"
)

func TestIntervalJobRunsImmediatelyWithRequestID(t *testing.T) {
	s, err := New(time.UTC)
	if err != nil {
		t.Fatal(err)
	}

	got := make(chan string, 1)
	err = s.NewIntervalJob("probe", func(ctx context.Context) error {
		select {
		case got <- utils.GetRequestIDFromCtx(ctx):
		default:
		}
		return nil
	}, time.Hour, true)
	if err != nil {
		t.Fatal(err)
	}

	s.Start()
	defer s.Stop()

	select {
	case rqID := <-got:
		if rqID == "" {
			t.Error("job ran without a request id")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}
}

func TestPanickingJobIsRecovered(t *testing.T) {
	s, err := New(time.UTC)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	task := s.taskWithRecover(func(ctx context.Context) error {
		defer close(done)
		panic("boom")
	}, "panics")

	task(context.Background())
	<-done
}

func TestCrontabJobNames(t *testing.T) {
	s, err := New(time.UTC)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.NewCrontabJob("export", func(context.Context) error { return nil }, "0 0 16 * * 1-5", false); err != nil {
		t.Fatal(err)
	}
	if err := s.NewCrontabJob("broken", func(context.Context) error { return nil }, "not a crontab", false); err == nil {
		t.Error("NewCrontabJob(invalid) error = nil")
	}

	if names := s.JobNames(); !slices.Contains(names, "export") || len(names) != 1 {
		t.Errorf("JobNames() = %v, want [export]", names)
	}
}
