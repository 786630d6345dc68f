package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/crimson-sun/pathobridge/internal/config"
	"github.com/crimson-sun/pathobridge/internal/model"
	"github.com/crimson-sun/pathobridge/internal/output/file"
	"github.com/crimson-sun/pathobridge/internal/stage"
)

// --- mocks ---

// fakeStage records an artifact and returns err.
type fakeStage struct {
	name string
	env  *stage.Env
	err  error
	ran  bool
}

func (f *fakeStage) Name() string { return f.name }

func (f *fakeStage) Run(context.Context) error {
	f.ran = true
	f.env.Record(f.name + ".csv")
	return f.err
}

type mockNotifier struct {
	got []model.Manifest
	err error
}

func (m *mockNotifier) Notify(_ context.Context, man model.Manifest) error {
	m.got = append(m.got, man)
	return m.err
}

func newEnv(t *testing.T) *stage.Env {
	t.Helper()
	var cfg config.Config
	cfg.Paths.Root = t.TempDir()
	return stage.NewEnv(cfg, file.New(cfg.Paths.Root))
}

// --- tests ---

func TestRunAllStages(t *testing.T) {
	env := newEnv(t)
	a := &fakeStage{name: "a", env: env}
	b := &fakeStage{name: "b", env: env}
	path := filepath.Join(env.Config.Paths.Root, "out", "run_manifest.json")
	n := &mockNotifier{}

	m, err := New(env, []stage.Stage{a, b}, WithManifest(path), WithNotifier(n)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if _, err := uuid.Parse(m.RunID); err != nil {
		t.Errorf("run id %q is not a uuid: %v", m.RunID, err)
	}
	if len(m.Stages) != 2 || m.Stages[0].Status != "ok" || m.Stages[1].Artifacts[0] != "b.csv" {
		t.Errorf("stages = %+v", m.Stages)
	}
	if m.Finished.Before(m.Started) {
		t.Error("finished before started")
	}

	b2, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
	var onDisk model.Manifest
	if err := json.Unmarshal(b2, &onDisk); err != nil {
		t.Fatalf("manifest is not JSON: %v", err)
	}
	if onDisk.RunID != m.RunID || len(onDisk.Stages) != 2 {
		t.Errorf("manifest on disk = %+v", onDisk)
	}
	if len(n.got) != 1 || n.got[0].RunID != m.RunID {
		t.Errorf("notifier got %d manifests", len(n.got))
	}
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	env := newEnv(t)
	missing := &stage.MissingInputError{Path: "Table_S3.csv", Hint: "run metabolism"}
	a := &fakeStage{name: "a", env: env, err: missing}
	b := &fakeStage{name: "b", env: env}

	m, err := New(env, []stage.Stage{a, b}).Run(context.Background())
	if !errors.Is(err, stage.ErrMissingInput) {
		t.Fatalf("Run() error = %v, want ErrMissingInput", err)
	}
	if stage.Hint(err) != "run metabolism" {
		t.Errorf("hint lost through wrapping: %q", stage.Hint(err))
	}
	if b.ran {
		t.Error("stage after failure ran")
	}
	if len(m.Stages) != 1 || m.Stages[0].Status != "failed" || m.Stages[0].Error == "" {
		t.Errorf("stages = %+v", m.Stages)
	}
}

func TestRunCancelled(t *testing.T) {
	env := newEnv(t)
	a := &fakeStage{name: "a", env: env}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(env, []stage.Stage{a}).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if a.ran {
		t.Error("stage ran after cancellation")
	}
}

func TestNotifierErrorDoesNotFailRun(t *testing.T) {
	env := newEnv(t)
	n := &mockNotifier{err: errors.New("endpoint down")}
	if _, err := New(env, []stage.Stage{&fakeStage{name: "a", env: env}}, WithNotifier(n)).Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(n.got) != 1 {
		t.Errorf("notifier called %d times", len(n.got))
	}
}

func TestResolveUnknownStage(t *testing.T) {
	if _, err := Resolve(newEnv(t), []string{"no-such-stage"}); err == nil {
		t.Fatal("expected error for unknown stage")
	}
}
