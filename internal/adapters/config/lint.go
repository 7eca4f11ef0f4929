package config

import (
	"fmt"

	"github.com/conveyorci/conveyor/internal/core/domain"
)

// Issue is a single lint finding in a workflow manifest.
type Issue struct {
	Job  string
	Step string
	Msg  string
}

// String formats the issue for CLI output.
func (i Issue) String() string {
	if i.Step != "" {
		return fmt.Sprintf("job %q, step %q: %s", i.Job, i.Step, i.Msg)
	}
	if i.Job != "" {
		return fmt.Sprintf("job %q: %s", i.Job, i.Msg)
	}
	return i.Msg
}

// Lint checks a loaded workflow against the rules the loader cannot enforce
// structurally: trigger presence, empty step lists, and action resolvability
// (via the supplied resolve func, typically the action registry).
//
// The loader already rejects malformed steps and unpinned references, so
// Lint only reports what would make a structurally valid manifest useless.
func Lint(w *domain.Workflow, resolve func(domain.ActionRef) error) []Issue {
	var issues []Issue

	if len(w.Triggers) == 0 {
		issues = append(issues, Issue{Msg: "workflow has no trigger and can never run"})
	}

	for job := range w.Walk() {
		if len(job.Steps) == 0 {
			issues = append(issues, Issue{Job: job.Name.String(), Msg: "job has no steps"})
			continue
		}
		for i := range job.Steps {
			step := &job.Steps[i]
			if !step.IsAction() {
				continue
			}
			if err := resolve(step.Uses); err != nil {
				issues = append(issues, Issue{
					Job:  job.Name.String(),
					Step: step.Name.String(),
					Msg:  fmt.Sprintf("unresolvable action %q: %v", step.Uses.String(), err),
				})
			}
		}
	}

	return issues
}
