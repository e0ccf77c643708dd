package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/jointsim/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
)

var csvHeader = []string{"time", "angle", "angular_velocity", "control"}

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
	ID        string             `json:"id"`
	Label     string             `json:"label"`
	Timestamp time.Time          `json:"timestamp"`
	Config    dynamo.Config      `json:"config"`
	Samples   int                `json:"samples"`
	Metrics   map[string]float64 `json:"metrics"`
}

// ErrInvalidName is returned for labels and run ids that are not a single
// path element.
var ErrInvalidName = errors.New("storage: invalid run name")

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func (s *Store) runDir(runID string) (string, error) {
	if err := checkName(runID); err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, runID), nil
}

// Save writes metadata.json and samples.csv under a fresh run directory and
// returns the run id. A failed save leaves no run directory behind.
func (s *Store) Save(label string, result *dynamo.Result, metrics map[string]float64) (string, error) {
	if err := checkName(label); err != nil {
		return "", err
	}

	now := time.Now()
	runID := fmt.Sprintf("%s_%d", label, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Label:     label,
		Timestamp: now,
		Config:    result.Config,
		Samples:   len(result.Record),
		Metrics:   metrics,
	}

	if err := writeRun(runDir, meta, result.Record); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	return runID, nil
}

func writeRun(runDir string, meta RunMetadata, record dynamo.Record) error {
	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}

	csvFile, err := os.Create(filepath.Join(runDir, samplesFile))
	if err != nil {
		return err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, record); err != nil {
		return err
	}
	return csvFile.Sync()
}

// WriteCSV encodes a record with a header row. Values round-trip exactly.
func WriteCSV(out io.Writer, record dynamo.Record) error {
	w := csv.NewWriter(out)

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, smp := range record {
		row := []string{
			formatFloat(smp.Time),
			formatFloat(smp.Angle),
			formatFloat(smp.AngularVelocity),
			formatFloat(smp.Control),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns every readable run, oldest first.
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

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}

		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	dir, err := s.runDir(runID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadRecord reads the samples of a run back.
func (s *Store) LoadRecord(runID string) (dynamo.Record, error) {
	dir, err := s.runDir(runID)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(filepath.Join(dir, samplesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(csvHeader)

	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(rows) < 2 {
		return dynamo.Record{}, nil
	}

	record := make(dynamo.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		var vals [4]float64
		for j, field := range row {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d column %s: %w", samplesFile, i+1, csvHeader[j], err)
			}
			vals[j] = v
		}
		record = append(record, dynamo.Sample{
			Time:            vals[0],
			Angle:           vals[1],
			AngularVelocity: vals[2],
			Control:         vals[3],
		})
	}

	return record, nil
}

// LoadResult rebuilds a run result from metadata and samples.
func (s *Store) LoadResult(runID string) (*RunMetadata, *dynamo.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	record, err := s.LoadRecord(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, &dynamo.Result{Record: record, Target: meta.Config.Target, Config: meta.Config}, nil
}
