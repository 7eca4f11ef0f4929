// Package domain contains the core model of workflow manifests: triggers,
// jobs, steps, and the job dependency graph.
package domain

import (
	"iter"
	"slices"

	"go.trai.ch/zerr"
)

// Job is a named, ordered sequence of steps executed in its own isolated
// workspace. Jobs with disjoint needs run concurrently; steps never do.
type Job struct {
	Name   InternedString
	RunsOn string
	Needs  []InternedString
	Env    map[string]string
	Steps  []Step
}

// Workflow is the in-memory form of a workflow manifest: trigger
// conditions, process-wide environment, and the job dependency graph.
type Workflow struct {
	Name     string
	Triggers []Trigger
	Env      map[string]string

	jobs           map[InternedString]Job
	executionOrder []InternedString
	dependents     map[InternedString][]InternedString
}

// NewWorkflow creates an empty workflow with the given name.
func NewWorkflow(name string) *Workflow {
	return &Workflow{
		Name: name,
		jobs: make(map[InternedString]Job),
	}
}

// AddJob adds a job to the workflow.
// It returns an error if a job with the same name already exists.
func (w *Workflow) AddJob(j *Job) error {
	if _, exists := w.jobs[j.Name]; exists {
		return zerr.With(ErrJobAlreadyExists, "job", j.Name.String())
	}
	w.jobs[j.Name] = *j
	return nil
}

// Job returns the job with the given name.
func (w *Workflow) Job(name InternedString) (Job, error) {
	j, ok := w.jobs[name]
	if !ok {
		return Job{}, zerr.With(ErrJobNotFound, "job", name.String())
	}
	return j, nil
}

// JobCount returns the number of declared jobs.
func (w *Workflow) JobCount() int {
	return len(w.jobs)
}

// Matches reports whether any trigger of the workflow fires for the given
// event and branch.
func (w *Workflow) Matches(event Event, branch string) bool {
	for _, t := range w.Triggers {
		if t.Matches(event, branch) {
			return true
		}
	}
	return false
}

// Validate checks the job graph for missing needs and cycles using a
// topological sort, and populates the execution order and the reverse
// dependency index. The visit order is sorted by name so the resulting
// order is deterministic across runs.
func (w *Workflow) Validate() error {
	w.executionOrder = make([]InternedString, 0, len(w.jobs))
	w.dependents = make(map[InternedString][]InternedString, len(w.jobs))
	visited := make(map[InternedString]int) // 0: unvisited, 1: visiting, 2: visited
	var path []InternedString

	var visit func(u InternedString) error
	visit = func(u InternedString) error {
		visited[u] = 1
		path = append(path, u)

		job, exists := w.jobs[u]
		if !exists {
			return zerr.With(ErrMissingNeed, "job", u.String())
		}

		for _, need := range job.Needs {
			if visited[need] == 1 {
				return w.buildCycleError(path, need)
			}
			if visited[need] == 0 {
				if err := visit(need); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		w.executionOrder = append(w.executionOrder, u)
		for _, need := range job.Needs {
			w.dependents[need] = append(w.dependents[need], u)
		}
		return nil
	}

	names := make([]string, 0, len(w.jobs))
	for name := range w.jobs {
		names = append(names, name.String())
	}
	slices.Sort(names)

	for _, name := range names {
		interned := NewInternedString(name)
		if visited[interned] == 0 {
			if err := visit(interned); err != nil {
				return err
			}
		}
	}

	return nil
}

// buildCycleError constructs an error carrying the cycle path as metadata.
func (w *Workflow) buildCycleError(path []InternedString, need InternedString) error {
	cyclePath := ""
	startIdx := -1
	for i, node := range path {
		if node == need {
			startIdx = i
			break
		}
	}
	for i := startIdx; i < len(path); i++ {
		cyclePath += path[i].String() + " -> "
	}
	cyclePath += need.String()
	return zerr.With(ErrCycleDetected, "cycle", cyclePath)
}

// Walk returns an iterator that yields jobs in execution order.
// It assumes Validate() has been called and returned nil.
func (w *Workflow) Walk() iter.Seq[Job] {
	return func(yield func(Job) bool) {
		for _, name := range w.executionOrder {
			if !yield(w.jobs[name]) {
				return
			}
		}
	}
}

// Dependents returns the jobs that list name in their needs.
// It assumes Validate() has been called and returned nil.
func (w *Workflow) Dependents(name InternedString) []InternedString {
	return w.dependents[name]
}
