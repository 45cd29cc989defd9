// Package storage persists runs under a data directory: one directory per
// run holding metadata.json (config echo, summary, metrics) and steps.csv
// (the flat per-day records).
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/cfar/internal/engine"
	"github.com/san-kum/cfar/internal/sim"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Scenario    string             `json:"scenario"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	TargetY     float64            `json:"target_y"`
	HorizonDays int                `json:"horizon_days"`
	Summary     sim.Summary        `json:"summary"`
	Metrics     map[string]float64 `json:"metrics"`
}

var stepHeader = []string{
	"day", "y", "n", "a", "c", "b",
	"aperture", "wavelength", "process_factor", "floor",
	"error", "mode", "u_attention", "u_structural", "u_pulse",
	"arm", "arm_name", "reward",
}

func (s *Store) Save(scenario string, seed int64, target float64, horizon int, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%s", scenario, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Scenario:    scenario,
		Timestamp:   time.Now(),
		Seed:        seed,
		TargetY:     target,
		HorizonDays: horizon,
		Summary:     result.Summary,
		Metrics:     result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "steps.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write(stepHeader); err != nil {
		return "", err
	}
	for _, rec := range result.Records {
		if err := w.Write(stepRow(rec)); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func stepRow(rec sim.StepRecord) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	return []string{
		strconv.Itoa(rec.Day),
		f(rec.State.Outcome), f(rec.State.Norm), f(rec.State.Attention),
		f(rec.State.Constraint), f(rec.State.Burden),
		f(rec.Resolution.Aperture), f(rec.Resolution.Wavelength),
		f(rec.Resolution.ProcessFactor), f(rec.Resolution.Floor),
		f(rec.Error), string(rec.Mode),
		f(rec.Attention), f(rec.Structural), f(rec.Pulse),
		strconv.Itoa(rec.Arm), rec.ArmName, f(rec.Reward),
	}
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSteps reads a run's per-day records back from steps.csv.
func (s *Store) LoadSteps(runID string) ([]sim.StepRecord, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "steps.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return []sim.StepRecord{}, nil
	}

	steps := make([]sim.StepRecord, 0, len(records)-1)
	for _, row := range records[1:] {
		rec, err := parseStepRow(row)
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", runID, err)
		}
		steps = append(steps, rec)
	}
	return steps, nil
}

func parseStepRow(row []string) (sim.StepRecord, error) {
	if len(row) != len(stepHeader) {
		return sim.StepRecord{}, fmt.Errorf("expected %d columns, got %d", len(stepHeader), len(row))
	}

	day, err := strconv.Atoi(row[0])
	if err != nil {
		return sim.StepRecord{}, err
	}
	arm, err := strconv.Atoi(row[15])
	if err != nil {
		return sim.StepRecord{}, err
	}

	fs := make([]float64, len(row))
	for _, i := range []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 12, 13, 14, 17} {
		v, err := strconv.ParseFloat(row[i], 64)
		if err != nil {
			return sim.StepRecord{}, err
		}
		fs[i] = v
	}

	return sim.StepRecord{
		Day: day,
		State: engine.State{
			Outcome: fs[1], Norm: fs[2], Attention: fs[3],
			Constraint: fs[4], Burden: fs[5],
		},
		Resolution: engine.Resolution{
			Aperture: fs[6], Wavelength: fs[7],
			ProcessFactor: fs[8], Floor: fs[9],
		},
		Error:      fs[10],
		Mode:       sim.Mode(row[11]),
		Attention:  fs[12],
		Structural: fs[13],
		Pulse:      fs[14],
		Arm:        arm,
		ArmName:    row[16],
		Reward:     fs[17],
	}, nil
}
