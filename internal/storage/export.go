package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/jointsim/internal/dynamo"
)

type ExportData struct {
	ID       string             `json:"id"`
	Label    string             `json:"label"`
	Config   dynamo.Config      `json:"config"`
	Steps    int                `json:"steps"`
	Times    []float64          `json:"times"`
	Angles   []float64          `json:"angles"`
	Velocity []float64          `json:"angular_velocities"`
	Controls []float64          `json:"controls"`
	Metrics  map[string]float64 `json:"metrics"`
}

// ExportJSON writes a stored run as a single JSON document with one array
// per channel.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, result, err := s.LoadResult(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		ID:       meta.ID,
		Label:    meta.Label,
		Config:   meta.Config,
		Steps:    len(result.Record),
		Times:    result.Record.Times(),
		Angles:   result.Record.Angles(),
		Velocity: result.Record.Velocities(),
		Controls: result.Record.Controls(),
		Metrics:  meta.Metrics,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
