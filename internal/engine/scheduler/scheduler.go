// Package scheduler executes the jobs of a workflow: independent jobs run
// concurrently up to a parallelism limit, steps within a job run strictly in
// order and fail fast.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"go.trai.ch/zerr"

	"github.com/conveyorci/conveyor/internal/core/domain"
	"github.com/conveyorci/conveyor/internal/core/ports"
)

const workspacePerm = 0o750

// Options configures a single workflow run.
type Options struct {
	// Parallelism caps how many jobs run at once. Zero means NumCPU.
	Parallelism int
	// WorkspaceRoot is the directory under which each job gets its own
	// isolated workspace.
	WorkspaceRoot string
	// SourceDir is the project directory the checkout action copies from.
	SourceDir string
	// ManifestHash identifies the manifest content for run records.
	ManifestHash string
}

// Scheduler manages the execution of jobs in the workflow dependency graph.
type Scheduler struct {
	executor  ports.Executor
	actions   ports.ActionRunner
	store     ports.RunStore
	telemetry ports.Telemetry
	logger    ports.Logger

	mu        sync.RWMutex
	jobStatus map[domain.InternedString]domain.JobStatus
}

// NewScheduler creates a Scheduler over the given execution adapters.
func NewScheduler(
	executor ports.Executor,
	actions ports.ActionRunner,
	store ports.RunStore,
	telemetry ports.Telemetry,
	logger ports.Logger,
) *Scheduler {
	return &Scheduler{
		executor:  executor,
		actions:   actions,
		store:     store,
		telemetry: telemetry,
		logger:    logger,
		jobStatus: make(map[domain.InternedString]domain.JobStatus),
	}
}

// Run executes every job of the workflow, honoring needs ordering and the
// parallelism limit. The workflow must already have been validated. A failed
// job skips its transitive dependents; jobs on independent paths keep
// running. The returned error joins every job failure and matches
// domain.ErrWorkflowFailed.
func (s *Scheduler) Run(ctx context.Context, w *domain.Workflow, opts Options) error {
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.NumCPU()
	}

	s.initJobStatuses(w)
	state := s.newRunState(ctx, w, opts)

	for !state.isDone() {
		state.schedule()

		if state.isDone() {
			break
		}

		if state.ctx.Err() != nil && state.active == 0 {
			state.cancelPending()
			break
		}

		select {
		case res := <-state.resultsCh:
			state.handleResult(res)
		case <-state.ctx.Done():
		}
	}

	if state.errs != nil {
		state.errs = errors.Join(domain.ErrWorkflowFailed, state.errs)
	}
	if err := state.ctx.Err(); err != nil {
		state.errs = errors.Join(state.errs, err)
	}

	return state.errs
}

// Status returns the current status of a job.
func (s *Scheduler) Status(name domain.InternedString) domain.JobStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobStatus[name]
}

func (s *Scheduler) initJobStatuses(w *domain.Workflow) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobStatus = make(map[domain.InternedString]domain.JobStatus, w.JobCount())
	for job := range w.Walk() {
		s.jobStatus[job.Name] = domain.StatusPending
	}
}

func (s *Scheduler) updateStatus(name domain.InternedString, status domain.JobStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobStatus[name] = status
}

type result struct {
	job domain.InternedString
	err error
}

type runState struct {
	workflow    *domain.Workflow
	opts        Options
	inDegree    map[domain.InternedString]int
	jobs        map[domain.InternedString]domain.Job
	ready       []domain.InternedString
	active      int
	resultsCh   chan result
	errs        error
	ctx         context.Context
	parallelism int
	s           *Scheduler
}

func (s *Scheduler) newRunState(ctx context.Context, w *domain.Workflow, opts Options) *runState {
	jobCount := w.JobCount()
	inDegree := make(map[domain.InternedString]int, jobCount)
	jobs := make(map[domain.InternedString]domain.Job, jobCount)

	for job := range w.Walk() {
		jobs[job.Name] = job
		inDegree[job.Name] = len(job.Needs)
	}

	// Seed from execution order so the initial ready set is deterministic.
	var ready []domain.InternedString
	for job := range w.Walk() {
		if inDegree[job.Name] == 0 {
			ready = append(ready, job.Name)
		}
	}

	return &runState{
		workflow:    w,
		opts:        opts,
		inDegree:    inDegree,
		jobs:        jobs,
		ready:       ready,
		resultsCh:   make(chan result, opts.Parallelism),
		ctx:         ctx,
		parallelism: opts.Parallelism,
		s:           s,
	}
}

func (state *runState) isDone() bool {
	return state.active == 0 && len(state.ready) == 0
}

func (state *runState) schedule() {
	for len(state.ready) > 0 && state.active < state.parallelism && state.ctx.Err() == nil {
		name := state.ready[0]
		state.ready = state.ready[1:]

		state.active++
		state.s.updateStatus(name, domain.StatusRunning)

		go func(j domain.Job) {
			state.resultsCh <- result{job: j.Name, err: state.s.runJob(state.ctx, j, state.opts, state.workflow.Env)}
		}(state.jobs[name])
	}
}

func (state *runState) handleResult(res result) {
	state.active--

	if res.err == nil {
		state.s.updateStatus(res.job, domain.StatusSucceeded)
		for _, dep := range state.workflow.Dependents(res.job) {
			state.inDegree[dep]--
			if state.inDegree[dep] == 0 {
				state.ready = append(state.ready, dep)
			}
		}
		return
	}

	status := domain.StatusFailed
	if state.ctx.Err() != nil && errors.Is(res.err, context.Canceled) {
		status = domain.StatusCanceled
	}
	state.s.updateStatus(res.job, status)
	state.errs = errors.Join(state.errs, zerr.With(zerr.Wrap(res.err, "job failed"), "job", res.job.String()))
	state.skipDependents(res.job)
}

// skipDependents marks the transitive dependents of a failed job Skipped.
// Skipped jobs never reach the ready queue, so the run drains naturally.
func (state *runState) skipDependents(name domain.InternedString) {
	for _, dep := range state.workflow.Dependents(name) {
		if state.s.Status(dep) != domain.StatusPending {
			continue
		}
		state.s.updateStatus(dep, domain.StatusSkipped)
		state.recordOutcome(dep.String(), domain.StatusSkipped, time.Time{}, 0)
		state.skipDependents(dep)
	}
}

// cancelPending marks every job that never started as Canceled.
func (state *runState) cancelPending() {
	for name := range state.jobs {
		if state.s.Status(name) == domain.StatusPending {
			state.s.updateStatus(name, domain.StatusCanceled)
		}
	}
}

func (state *runState) recordOutcome(job string, status domain.JobStatus, started time.Time, d time.Duration) {
	err := state.s.store.Put(domain.RunRecord{
		Job:          job,
		Status:       status,
		ManifestHash: state.opts.ManifestHash,
		StartedAt:    started,
		Duration:     d,
	})
	if err != nil {
		// Run records are bookkeeping; a write failure must not fail the run.
		state.s.logger.Warn(fmt.Sprintf("failed to record outcome of job %q: %v", job, err))
	}
}

// runJob executes the steps of one job sequentially inside its own workspace
// directory. The first failing step aborts the job.
func (s *Scheduler) runJob(ctx context.Context, job domain.Job, opts Options, workflowEnv map[string]string) error {
	started := time.Now()
	ctx, vertex := s.telemetry.Record(ctx, "job "+job.Name.String())

	err := s.runSteps(ctx, job, opts, workflowEnv, vertex)
	vertex.Done(err)

	status := domain.StatusSucceeded
	if err != nil {
		status = domain.StatusFailed
		if errors.Is(err, context.Canceled) {
			status = domain.StatusCanceled
		}
	}

	outcome := domain.RunRecord{
		Job:          job.Name.String(),
		Status:       status,
		ManifestHash: opts.ManifestHash,
		StartedAt:    started,
		Duration:     time.Since(started),
	}
	if putErr := s.store.Put(outcome); putErr != nil {
		s.logger.Warn(fmt.Sprintf("failed to record outcome of job %q: %v", job.Name.String(), putErr))
	}

	return err
}

func (s *Scheduler) runSteps(ctx context.Context, job domain.Job, opts Options, workflowEnv map[string]string, vertex ports.Vertex) error {
	workDir := filepath.Join(opts.WorkspaceRoot, job.Name.String())
	if err := os.MkdirAll(workDir, workspacePerm); err != nil {
		return zerr.Wrap(err, "failed to create job workspace")
	}

	jobEnv := mergeEnv(workflowEnv, job.Env)

	// actionEnv accumulates what earlier action steps exported, so a setup
	// step's toolchain PATH reaches every later run step of the same job.
	var actionEnv []string

	for i := range job.Steps {
		step := &job.Steps[i]
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintf(vertex, "%s\n", step.Name.String())

		if step.IsAction() {
			exported, err := s.actions.Run(ctx, ports.ActionRequest{
				Step:      step,
				Job:       &job,
				WorkDir:   workDir,
				SourceDir: opts.SourceDir,
			})
			if err != nil {
				return zerr.With(zerr.Wrap(err, "action step failed"), "step", step.Name.String())
			}
			actionEnv = append(actionEnv, exported...)
			continue
		}

		if err := s.executor.Execute(ctx, step, workDir, actionEnv, jobEnv); err != nil {
			return err
		}
	}

	return nil
}

// mergeEnv overlays job-level variables on the workflow-level ones.
func mergeEnv(workflow, job map[string]string) map[string]string {
	merged := make(map[string]string, len(workflow)+len(job))
	maps.Copy(merged, workflow)
	maps.Copy(merged, job)
	return merged
}
