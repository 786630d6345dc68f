package pathobridge

import (
	"time"

	"github.com/crimson-sun/pathobridge/internal/model"
)

// Manifest summarizes a run.
type Manifest struct {
	RunID    string
	Root     string
	Started  time.Time
	Finished time.Time
	Stages   []StageRecord
}

// StageRecord is the outcome of one stage.
type StageRecord struct {
	Name      string
	Started   time.Time
	Duration  time.Duration
	Failed    bool
	Error     string
	Artifacts []string // files written, tables and figures
}

func manifestFromModel(m model.Manifest) Manifest {
	out := Manifest{
		RunID:    m.RunID,
		Root:     m.Root,
		Started:  m.Started,
		Finished: m.Finished,
		Stages:   make([]StageRecord, len(m.Stages)),
	}
	for i, s := range m.Stages {
		out.Stages[i] = StageRecord{
			Name:      s.Name,
			Started:   s.Started,
			Duration:  s.Duration,
			Failed:    s.Status != "ok",
			Error:     s.Error,
			Artifacts: s.Artifacts,
		}
	}
	return out
}
