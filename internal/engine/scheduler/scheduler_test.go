package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"

	"go.uber.org/mock/gomock"

	"github.com/conveyorci/conveyor/internal/adapters/telemetry"
	"github.com/conveyorci/conveyor/internal/core/domain"
	"github.com/conveyorci/conveyor/internal/core/ports"
	"github.com/conveyorci/conveyor/internal/core/ports/mocks"
	"github.com/conveyorci/conveyor/internal/engine/scheduler"
)

type silentLogger struct{}

func (silentLogger) Info(string) {}
func (silentLogger) Warn(string) {}
func (silentLogger) Error(error) {}

func runStep(name, command string) domain.Step {
	return domain.Step{Name: domain.NewInternedString(name), Run: command}
}

func buildWorkflow(t *testing.T, jobs ...*domain.Job) *domain.Workflow {
	t.Helper()
	w := domain.NewWorkflow("ci")
	for _, j := range jobs {
		if err := w.AddJob(j); err != nil {
			t.Fatalf("failed to add job: %v", err)
		}
	}
	if err := w.Validate(); err != nil {
		t.Fatalf("workflow validation failed: %v", err)
	}
	return w
}

func newScheduler(exec ports.Executor, runner ports.ActionRunner, store ports.RunStore) *scheduler.Scheduler {
	return scheduler.NewScheduler(exec, runner, store, telemetry.NewNoOp(), silentLogger{})
}

func anyPuts(store *mocks.MockRunStore) {
	store.EXPECT().Put(gomock.Any()).Return(nil).AnyTimes()
}

func TestScheduler_Run_IndependentJobsOverlap(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		msrv := &domain.Job{Name: domain.NewInternedString("msrv"), Steps: []domain.Step{runStep("build", "cargo build")}}
		test := &domain.Job{Name: domain.NewInternedString("test"), Steps: []domain.Step{runStep("test", "cargo test")}}
		w := buildWorkflow(t, msrv, test)

		msrvStarted := make(chan struct{})
		msrvProceed := make(chan struct{})
		testStarted := make(chan struct{})

		mockExec := mocks.NewMockExecutor(ctrl)
		mockExec.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, step *domain.Step, _ string, _ []string, _ map[string]string) error {
				switch step.Name.String() {
				case "build":
					close(msrvStarted)
					<-msrvProceed
				case "test":
					close(testStarted)
				}
				return nil
			}).AnyTimes()

		store := mocks.NewMockRunStore(ctrl)
		anyPuts(store)

		s := newScheduler(mockExec, mocks.NewMockActionRunner(ctrl), store)

		errCh := make(chan error)
		go func() {
			errCh <- s.Run(context.Background(), w, scheduler.Options{
				Parallelism:   2,
				WorkspaceRoot: t.TempDir(),
			})
		}()

		// Both jobs must be in flight while msrv is blocked.
		synctest.Wait()
		<-msrvStarted
		<-testStarted
		close(msrvProceed)

		if err := <-errCh; err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := s.Status(domain.NewInternedString("msrv")); got != domain.StatusSucceeded {
			t.Errorf("msrv status = %s, want Succeeded", got)
		}
		if got := s.Status(domain.NewInternedString("test")); got != domain.StatusSucceeded {
			t.Errorf("test status = %s, want Succeeded", got)
		}
	})
}

func TestScheduler_Run_StepsFailFast(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		job := &domain.Job{Name: domain.NewInternedString("msrv"), Steps: []domain.Step{
			runStep("lockfile", "mv Cargo.lock.msrv Cargo.lock"),
			runStep("build", "cargo build"),
			runStep("never", "echo unreachable"),
		}}
		w := buildWorkflow(t, job)

		var order []string
		mockExec := mocks.NewMockExecutor(ctrl)
		mockExec.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, step *domain.Step, _ string, _ []string, _ map[string]string) error {
				order = append(order, step.Name.String())
				if step.Name.String() == "build" {
					return errors.New("exit status 101")
				}
				return nil
			}).Times(2)

		store := mocks.NewMockRunStore(ctrl)
		anyPuts(store)

		s := newScheduler(mockExec, mocks.NewMockActionRunner(ctrl), store)

		err := s.Run(context.Background(), w, scheduler.Options{Parallelism: 1, WorkspaceRoot: t.TempDir()})
		if !errors.Is(err, domain.ErrWorkflowFailed) {
			t.Fatalf("expected ErrWorkflowFailed, got %v", err)
		}
		if len(order) != 2 || order[0] != "lockfile" || order[1] != "build" {
			t.Fatalf("steps after a failure must not run, executed: %v", order)
		}
		if got := s.Status(job.Name); got != domain.StatusFailed {
			t.Errorf("job status = %s, want Failed", got)
		}
	})
}

func TestScheduler_Run_FailureSkipsDependents(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		build := &domain.Job{Name: domain.NewInternedString("build"), Steps: []domain.Step{runStep("build", "cargo build")}}
		test := &domain.Job{
			Name:  domain.NewInternedString("test"),
			Needs: []domain.InternedString{build.Name},
			Steps: []domain.Step{runStep("test", "cargo test")},
		}
		lint := &domain.Job{Name: domain.NewInternedString("lint"), Steps: []domain.Step{runStep("lint", "cargo clippy")}}
		w := buildWorkflow(t, build, test, lint)

		mockExec := mocks.NewMockExecutor(ctrl)
		mockExec.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, step *domain.Step, _ string, _ []string, _ map[string]string) error {
				switch step.Name.String() {
				case "build":
					return errors.New("exit status 1")
				case "test":
					t.Error("dependent of a failed job must not run")
					return nil
				default:
					return nil
				}
			}).AnyTimes()

		store := mocks.NewMockRunStore(ctrl)
		anyPuts(store)

		s := newScheduler(mockExec, mocks.NewMockActionRunner(ctrl), store)

		err := s.Run(context.Background(), w, scheduler.Options{Parallelism: 2, WorkspaceRoot: t.TempDir()})
		if !errors.Is(err, domain.ErrWorkflowFailed) {
			t.Fatalf("expected ErrWorkflowFailed, got %v", err)
		}

		if got := s.Status(build.Name); got != domain.StatusFailed {
			t.Errorf("build status = %s, want Failed", got)
		}
		if got := s.Status(test.Name); got != domain.StatusSkipped {
			t.Errorf("test status = %s, want Skipped", got)
		}
		if got := s.Status(lint.Name); got != domain.StatusSucceeded {
			t.Errorf("lint status = %s, want Succeeded", got)
		}
	})
}

func TestScheduler_Run_ActionEnvReachesRunSteps(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		setup := domain.Step{
			Name: domain.NewInternedString("setup"),
			Uses: domain.ActionRef{Name: "setup", Pin: "v1"},
			With: map[string]string{"toolchain": "rust@1.74.0"},
		}
		job := &domain.Job{
			Name:  domain.NewInternedString("test"),
			Env:   map[string]string{"CARGO_INCREMENTAL": "0"},
			Steps: []domain.Step{setup, runStep("build", "cargo build")},
		}
		w := buildWorkflow(t, job)
		w.Env = map[string]string{"RUSTFLAGS": "-D warnings", "CARGO_INCREMENTAL": "1"}

		toolchainEnv := []string{"PATH=/store/rust/1.74.0/bin", "RUSTUP_HOME=/store/rust/1.74.0"}

		runner := mocks.NewMockActionRunner(ctrl)
		runner.EXPECT().Run(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req ports.ActionRequest) ([]string, error) {
				if req.Step.Uses.Name != "setup" {
					t.Errorf("unexpected action %q", req.Step.Uses.Name)
				}
				return toolchainEnv, nil
			}).Times(1)

		mockExec := mocks.NewMockExecutor(ctrl)
		mockExec.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *domain.Step, _ string, actionEnv []string, jobEnv map[string]string) error {
				if len(actionEnv) != 2 || actionEnv[0] != toolchainEnv[0] {
					t.Errorf("toolchain env not exported to run step: %v", actionEnv)
				}
				if jobEnv["RUSTFLAGS"] != "-D warnings" {
					t.Errorf("workflow env missing from job env: %v", jobEnv)
				}
				if jobEnv["CARGO_INCREMENTAL"] != "0" {
					t.Errorf("job env must win over workflow env, got %q", jobEnv["CARGO_INCREMENTAL"])
				}
				return nil
			}).Times(1)

		store := mocks.NewMockRunStore(ctrl)
		anyPuts(store)

		s := newScheduler(mockExec, runner, store)

		if err := s.Run(context.Background(), w, scheduler.Options{Parallelism: 1, WorkspaceRoot: t.TempDir()}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestScheduler_Run_Cancellation(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		job := &domain.Job{Name: domain.NewInternedString("test"), Steps: []domain.Step{runStep("test", "cargo test")}}
		w := buildWorkflow(t, job)

		ctx, cancel := context.WithCancel(context.Background())

		started := make(chan struct{})
		mockExec := mocks.NewMockExecutor(ctrl)
		mockExec.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(execCtx context.Context, _ *domain.Step, _ string, _ []string, _ map[string]string) error {
				close(started)
				<-execCtx.Done()
				return execCtx.Err()
			}).Times(1)

		store := mocks.NewMockRunStore(ctrl)
		anyPuts(store)

		s := newScheduler(mockExec, mocks.NewMockActionRunner(ctrl), store)

		errCh := make(chan error)
		go func() {
			errCh <- s.Run(ctx, w, scheduler.Options{Parallelism: 1, WorkspaceRoot: t.TempDir()})
		}()

		synctest.Wait()
		<-started
		cancel()

		err := <-errCh
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if got := s.Status(job.Name); got != domain.StatusCanceled {
			t.Errorf("job status = %s, want Canceled", got)
		}
	})
}
