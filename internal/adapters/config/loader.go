// Package config provides the workflow manifest loader for conveyor.
package config

import (
	"fmt"
	"os"

	"github.com/conveyorci/conveyor/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// FileConfigLoader implements ports.ConfigLoader using a YAML file.
type FileConfigLoader struct{}

// NewLoader creates a new FileConfigLoader.
func NewLoader() *FileConfigLoader {
	return &FileConfigLoader{}
}

// Load reads the manifest at the given path and returns the workflow.
func (l *FileConfigLoader) Load(path string) (*domain.Workflow, error) {
	return Load(path)
}

// Load reads a workflow manifest from the given path.
func Load(path string) (*domain.Workflow, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read manifest")
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, zerr.Wrap(err, "failed to parse manifest")
	}

	return fromManifest(&manifest)
}

func fromManifest(manifest *Manifest) (*domain.Workflow, error) {
	if len(manifest.Jobs) == 0 {
		return nil, zerr.With(zerr.New("manifest declares no jobs"), "workflow", manifest.Name)
	}

	w := domain.NewWorkflow(manifest.Name)
	w.Env = manifest.Env
	w.Triggers = triggers(&manifest.On)

	jobNames := make(map[string]bool, len(manifest.Jobs))
	for name := range manifest.Jobs {
		jobNames[name] = true
	}

	for name, dto := range manifest.Jobs {
		for _, need := range dto.Needs {
			if !jobNames[need] {
				return nil, zerr.With(zerr.With(domain.ErrMissingNeed, "need", need), "job", name)
			}
		}

		job, err := fromJobDTO(name, &dto)
		if err != nil {
			return nil, err
		}
		if err := w.AddJob(job); err != nil {
			return nil, err
		}
	}

	return w, nil
}

func triggers(on *TriggersDTO) []domain.Trigger {
	var out []domain.Trigger
	if on.Push != nil {
		out = append(out, domain.Trigger{Event: domain.EventPush, Branches: on.Push.Branches})
	}
	if on.PullRequest != nil {
		out = append(out, domain.Trigger{Event: domain.EventPullRequest, Branches: on.PullRequest.Branches})
	}
	return out
}

func fromJobDTO(name string, dto *JobDTO) (*domain.Job, error) {
	job := &domain.Job{
		Name:   domain.NewInternedString(name),
		RunsOn: dto.RunsOn,
		Needs:  internStrings(dto.Needs),
		Env:    dto.Env,
	}

	for i, stepDTO := range dto.Steps {
		step, err := fromStepDTO(i, &stepDTO)
		if err != nil {
			return nil, zerr.With(err, "job", name)
		}
		job.Steps = append(job.Steps, step)
	}

	return job, nil
}

func fromStepDTO(index int, dto *StepDTO) (domain.Step, error) {
	name := dto.Name
	if name == "" {
		// Unnamed steps get a positional name so status output and errors
		// can still point at them.
		name = fmt.Sprintf("step-%d", index+1)
	}

	step := domain.Step{
		Name:       domain.NewInternedString(name),
		With:       dto.With,
		Run:        dto.Run,
		Env:        dto.Env,
		WorkingDir: dto.WorkingDir,
	}

	if dto.Uses != "" {
		ref, err := domain.ParseActionRef(dto.Uses)
		if err != nil {
			return domain.Step{}, err
		}
		step.Uses = ref
	}

	if err := step.Validate(); err != nil {
		return domain.Step{}, err
	}

	return step, nil
}

func internStrings(strs []string) []domain.InternedString {
	if len(strs) == 0 {
		return nil
	}
	res := make([]domain.InternedString, len(strs))
	for i, s := range strs {
		res[i] = domain.NewInternedString(s)
	}
	return res
}
