package domain

import "time"

// JobStatus is the lifecycle state of a job within a single run.
type JobStatus string

const (
	// StatusPending indicates the job is waiting for its needs.
	StatusPending JobStatus = "Pending"
	// StatusRunning indicates the job is currently executing steps.
	StatusRunning JobStatus = "Running"
	// StatusSucceeded indicates every step of the job exited zero.
	StatusSucceeded JobStatus = "Succeeded"
	// StatusFailed indicates a step exited non-zero; remaining steps were skipped.
	StatusFailed JobStatus = "Failed"
	// StatusSkipped indicates the job was not run because a needed job failed.
	StatusSkipped JobStatus = "Skipped"
	// StatusCanceled indicates the run was canceled before the job started.
	StatusCanceled JobStatus = "Canceled"
)

// RunRecord is the persisted outcome of one job execution.
type RunRecord struct {
	Job          string        `json:"job,omitzero"`
	Status       JobStatus     `json:"status,omitzero"`
	ManifestHash string        `json:"manifest_hash,omitzero"`
	StartedAt    time.Time     `json:"started_at,omitzero"`
	Duration     time.Duration `json:"duration,omitzero"`
}
