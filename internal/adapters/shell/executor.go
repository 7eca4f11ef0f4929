// Package shell provides the run-step executor adapter.
package shell

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/conveyorci/conveyor/internal/core/domain"
	"github.com/conveyorci/conveyor/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

// Executor implements ports.Executor using the shell via os/exec.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new shell Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{
		logger: logger,
	}
}

// Execute runs the step's command line with the merged environment.
// Precedence (low to high):
//  1. os.Environ() (system base)
//  2. actionEnv (exports from earlier action steps, PATH prepended)
//  3. jobEnv (workflow-level merged with job-level variables)
//  4. step.Env (step-level overrides)
func (e *Executor) Execute(ctx context.Context, step *domain.Step, workDir string, actionEnv []string, jobEnv map[string]string) error {
	if step.Run == "" {
		return nil
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", step.Run) //nolint:gosec // user provided command

	cmd.Dir = workDir
	if step.WorkingDir != "" {
		if filepath.IsAbs(step.WorkingDir) {
			cmd.Dir = step.WorkingDir
		} else {
			cmd.Dir = filepath.Join(workDir, step.WorkingDir)
		}
	}

	cmd.Env = resolveEnvironment(os.Environ(), actionEnv, jobEnv, step.Env)

	cmd.Stdout = &logWriter{logger: e.logger, level: "info"}
	cmd.Stderr = &logWriter{logger: e.logger, level: "error"}

	if err := cmd.Run(); err != nil {
		exitCode := -1 // unknown or signal
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		stepErr := zerr.With(zerr.Wrap(err, "step command failed"), "step", step.Name.String())
		return zerr.With(stepErr, "exit_code", exitCode)
	}

	return nil
}

type logWriter struct {
	logger ports.Logger
	level  string
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	lines := strings.Split(strings.TrimSuffix(string(p), "\n"), "\n")
	for _, line := range lines {
		if w.level == "info" {
			w.logger.Info(line)
		} else {
			w.logger.Error(zerr.New(line))
		}
	}
	return len(p), nil
}

// resolveEnvironment merges environment variables with the defined priority.
// PATH entries from actionEnv are prepended to the system PATH so pinned
// toolchains shadow whatever the host has installed.
func resolveEnvironment(sysEnv, actionEnv []string, jobEnv, stepEnv map[string]string) []string {
	envMap := make(map[string]string)
	for _, entry := range sysEnv {
		if k, v, ok := strings.Cut(entry, "="); ok {
			envMap[k] = v
		}
	}

	for _, entry := range actionEnv {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if k == "PATH" {
			if sysPath, exists := envMap["PATH"]; exists && sysPath != "" {
				envMap[k] = v + string(os.PathListSeparator) + sysPath
			} else {
				envMap[k] = v
			}
		} else {
			envMap[k] = v
		}
	}

	for k, v := range jobEnv {
		envMap[k] = v
	}
	for k, v := range stepEnv {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	return result
}
