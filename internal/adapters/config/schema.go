package config

import "gopkg.in/yaml.v3"

// Manifest mirrors the YAML workflow manifest schema.
type Manifest struct {
	Name string            `yaml:"name"`
	On   TriggersDTO       `yaml:"on"`
	Env  map[string]string `yaml:"env"`
	Jobs map[string]JobDTO `yaml:"jobs"`
}

// TriggersDTO declares the events that fire the workflow.
type TriggersDTO struct {
	Push        *BranchFilterDTO `yaml:"push"`
	PullRequest *BranchFilterDTO `yaml:"pull_request"`
}

// UnmarshalYAML registers a trigger for every known event key, including
// bare keys with no value ("push:" alone means push on every branch).
func (t *TriggersDTO) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i+1 < len(value.Content); i += 2 {
		key := value.Content[i]
		val := value.Content[i+1]

		var filter BranchFilterDTO
		if val.Kind == yaml.MappingNode {
			if err := val.Decode(&filter); err != nil {
				return err
			}
		}

		// Unknown event keys are ignored, like other unknown manifest keys.
		switch key.Value {
		case "push":
			f := filter
			t.Push = &f
		case "pull_request":
			f := filter
			t.PullRequest = &f
		}
	}

	return nil
}

// BranchFilterDTO restricts an event to a set of branches.
// An empty list matches every branch.
type BranchFilterDTO struct {
	Branches []string `yaml:"branches"`
}

// JobDTO represents a job definition in the manifest.
type JobDTO struct {
	RunsOn string            `yaml:"runs-on"`
	Needs  []string          `yaml:"needs"`
	Env    map[string]string `yaml:"env"`
	Steps  []StepDTO         `yaml:"steps"`
}

// StepDTO represents a single step. Exactly one of Uses or Run is set.
type StepDTO struct {
	Name       string            `yaml:"name"`
	Uses       string            `yaml:"uses"`
	With       map[string]string `yaml:"with"`
	Run        string            `yaml:"run"`
	Env        map[string]string `yaml:"env"`
	WorkingDir string            `yaml:"working-directory"`
}
