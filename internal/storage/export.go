package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/cfar/internal/sim"
)

// ExportData is the single structured document form of a run: metadata
// plus every per-day record.
type ExportData struct {
	Meta  RunMetadata      `json:"meta"`
	Steps []sim.StepRecord `json:"steps"`
}

// ExportJSON writes a full run as one JSON document.
func ExportJSON(w io.Writer, meta *RunMetadata, steps []sim.StepRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Meta: *meta, Steps: steps})
}
