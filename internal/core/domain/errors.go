package domain

import "go.trai.ch/zerr"

var (
	// ErrJobAlreadyExists is returned when a workflow declares two jobs with the same name.
	ErrJobAlreadyExists = zerr.New("job already exists")

	// ErrMissingNeed is returned when a job's needs reference a job that is not declared.
	ErrMissingNeed = zerr.New("missing needed job")

	// ErrCycleDetected is returned when the job dependency graph contains a cycle.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrJobNotFound is returned when a requested job is not declared in the workflow.
	ErrJobNotFound = zerr.New("job not found")

	// ErrStepConflict is returned when a step declares both uses and run, or neither.
	ErrStepConflict = zerr.New("step must declare exactly one of uses or run")

	// ErrUnpinnedAction is returned when a uses reference carries no version pin.
	ErrUnpinnedAction = zerr.New("action reference is not pinned")

	// ErrUnknownAction is returned when a uses reference does not resolve to a known action.
	ErrUnknownAction = zerr.New("unknown action")

	// ErrTriggerNotMatched is returned when no trigger of the workflow matches the event.
	ErrTriggerNotMatched = zerr.New("no trigger matched")

	// ErrWorkflowFailed is the terminal error when at least one job failed.
	// The CLI maps it to a non-zero exit without re-logging the per-job errors.
	ErrWorkflowFailed = zerr.New("workflow execution failed")
)
