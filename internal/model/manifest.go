package model

import "time"

// StageRecord captures the outcome of one stage execution.
type StageRecord struct {
	Name      string        `json:"name"`
	Started   time.Time     `json:"started"`
	Duration  time.Duration `json:"duration"`
	Status    string        `json:"status"` // "ok" or "failed"
	Error     string        `json:"error,omitempty"`
	Artifacts []string      `json:"artifacts,omitempty"`
}

// Manifest summarizes a pipeline run.
type Manifest struct {
	RunID    string        `json:"run_id"`
	Root     string        `json:"root"`
	Started  time.Time     `json:"started"`
	Finished time.Time     `json:"finished"`
	Stages   []StageRecord `json:"stages"`
}
