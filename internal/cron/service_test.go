package cron

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/angelmondragon/atacado-backend/pkg/logger"
	"github.com/angelmondragon/atacado-backend/pkg/metrics"
)

type fakeLock struct {
	acquired bool
	releases int
	extends  int
	loseAt   int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.acquired {
		return false, nil
	}
	f.acquired = true
	return true, nil
}

func (f *fakeLock) Extend(context.Context) (bool, error) {
	f.extends++
	if f.loseAt > 0 && f.extends >= f.loseAt {
		f.acquired = false
	}
	return f.acquired, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.acquired = false
	f.releases++
	return nil
}

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
}

func TestServiceRunOnceRunsAllJobsEvenOnFailure(t *testing.T) {
	success := &testJob{name: "success"}
	failA := &testJob{name: "fail-a", err: errors.New("boom")}
	failB := &testJob{name: "fail-b", err: errors.New("bust")}
	lock := &fakeLock{}
	reg := prometheus.NewRegistry()
	service, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(failA, success, failB),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(reg),
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}

	err = service.RunOnce(context.Background())
	if err == nil {
		t.Fatalf("expected combined job error")
	}
	if got := len(multierr.Errors(err)); got != 2 {
		t.Fatalf("expected 2 combined errors, got %d", got)
	}
	if !strings.Contains(err.Error(), "fail-a") || !strings.Contains(err.Error(), "fail-b") {
		t.Fatalf("error should name the failing jobs: %v", err)
	}
	for _, job := range []*testJob{success, failA, failB} {
		if job.runs != 1 {
			t.Fatalf("expected %s to run once, ran %d", job.name, job.runs)
		}
	}
	if lock.releases != 1 {
		t.Fatalf("expected lock released once, got %d", lock.releases)
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	runs := map[string]float64{}
	for _, mf := range mfs {
		if mf.GetName() != "atacado_cron_job_runs_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, pair := range m.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			runs[labels["job"]+"/"+labels["outcome"]] = m.GetCounter().GetValue()
		}
	}
	want := map[string]float64{"fail-a/failure": 1, "fail-b/failure": 1, "success/success": 1}
	if len(runs) != len(want) {
		t.Fatalf("unexpected run metrics: %v", runs)
	}
	for key, value := range want {
		if runs[key] != value {
			t.Fatalf("expected %s=%v, got %v", key, value, runs)
		}
	}
}

func TestServiceRunOnceSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "job"}
	lock := &fakeLock{acquired: true}
	service, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	if err := service.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("job must not run without the lock")
	}
	if lock.releases != 0 {
		t.Fatalf("lock held elsewhere must not be released")
	}
}

func TestServiceRunStopsOnCancel(t *testing.T) {
	job := &testJob{name: "job"}
	service, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     &fakeLock{},
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := service.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if job.runs != 1 {
		t.Fatalf("expected the first cycle to run immediately, ran %d", job.runs)
	}
}

func TestNewServiceRequiresLock(t *testing.T) {
	if _, err := NewService(ServiceParams{Logger: testLogger()}); err == nil {
		t.Fatalf("expected missing lock to fail")
	}
}

func TestServiceRunOnceStopsWhenLockIsLost(t *testing.T) {
	first := &testJob{name: "first"}
	second := &testJob{name: "second"}
	third := &testJob{name: "third"}
	lock := &fakeLock{loseAt: 2}
	service, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(first, second, third),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.NewRegistry()),
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}

	if err := service.RunOnce(context.Background()); err != nil {
		t.Fatalf("lost lock is not an error: %v", err)
	}
	if first.runs != 1 || second.runs != 1 {
		t.Fatalf("jobs before the loss should run: first=%d second=%d", first.runs, second.runs)
	}
	if third.runs != 0 {
		t.Fatalf("jobs after the loss must not run")
	}
}
