package storage

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/san-kum/cfar/internal/engine"
	"github.com/san-kum/cfar/internal/sim"
)

func sampleResult() *sim.Result {
	recs := []sim.StepRecord{
		{
			Day:        0,
			State:      engine.State{Outcome: 0.52, Norm: 0.5, Attention: 0.55, Constraint: 0.48, Burden: 0.21},
			Resolution: engine.Resolution{Aperture: 0.58, Wavelength: 1.0, ProcessFactor: 0.38, Floor: 0.66},
			Error:      0.38,
			Mode:       sim.ModeFluctuation,
			Attention:  0.1,
			Arm:        0,
			ArmName:    "sms_nudge",
			Reward:     0,
		},
		{
			Day:        1,
			State:      engine.State{Outcome: 0.61, Norm: 0.52, Attention: 0.59, Constraint: 0.46, Burden: 0.2},
			Resolution: engine.Resolution{Aperture: 0.58, Wavelength: 1.0, ProcessFactor: 0.38, Floor: 0.66},
			Error:      0.29,
			Mode:       sim.ModePrecision,
			Attention:  0.05,
			Structural: 0.08,
			Arm:        1,
			ArmName:    "poster_refresh",
			Reward:     1,
		},
	}
	return &sim.Result{
		Records: recs,
		Summary: sim.Summary{
			FinalState:      recs[1].State,
			FinalError:      0.29,
			MaxOutcome:      0.61,
			ArmPulls:        []int{1, 1},
			PrecisionDays:   1,
			FluctuationDays: 1,
		},
		Metrics: map[string]float64{"control_effort": 0.1},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	result := sampleResult()
	runID, err := st.Save("littering", 42, 0.9, 2, result)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(runID, "littering_") {
		t.Errorf("run id %q should carry the scenario prefix", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Scenario != "littering" || meta.Seed != 42 || meta.HorizonDays != 2 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if diff := cmp.Diff(result.Summary, meta.Summary); diff != "" {
		t.Errorf("summary mismatch:\n%s", diff)
	}

	steps, err := st.LoadSteps(runID)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(result.Records, steps); diff != "" {
		t.Errorf("steps mismatch:\n%s", diff)
	}
}

func TestListRuns(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected empty store, got %d runs", len(runs))
	}

	result := sampleResult()
	if _, err := st.Save("a", 1, 0.9, 2, result); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Save("b", 2, 0.9, 2, result); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestListMissingDir(t *testing.T) {
	st := New("/nonexistent/cfar-data")
	runs, err := st.List()
	if err != nil {
		t.Fatalf("missing base dir should not error: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestLoadUnknownRun(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); err == nil {
		t.Error("expected error for unknown run")
	}
	if _, err := st.LoadSteps("nope"); err == nil {
		t.Error("expected error for unknown run steps")
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	result := sampleResult()
	runID, err := st.Save("littering", 42, 0.9, 2, result)
	if err != nil {
		t.Fatal(err)
	}
	meta, err := st.Load(runID)
	if err != nil {
		t.Fatal(err)
	}
	steps, err := st.LoadSteps(runID)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := ExportJSON(&buf, meta, steps); err != nil {
		t.Fatal(err)
	}

	var out ExportData
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("export should be valid JSON: %v", err)
	}
	if out.Meta.ID != runID || len(out.Steps) != 2 {
		t.Errorf("unexpected export content: %s", buf.String())
	}
}
