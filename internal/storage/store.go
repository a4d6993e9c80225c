// Package storage keeps finished runs on disk: a metadata.json per run and
// the sampled trajectory as CSV, optionally zstd-compressed.
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
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/san-kum/trebsim/internal/fixed"
	"github.com/san-kum/trebsim/internal/flight"
	"github.com/san-kum/trebsim/internal/world"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
	compressedFile = "trajectory.csv.zst"
)

var ErrRunNotFound = errors.New("storage: run not found")

var trajectoryHeader = []string{
	"time", "x_sub", "y_sub", "vx", "vy", "rotation", "altitude", "phase", "stage",
}

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
	ID         string             `json:"id"`
	Preset     string             `json:"preset"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Tick       float64            `json:"tick"`
	FrameTime  float64            `json:"frame_time"`
	Integrator string             `json:"integrator"`
	Frames     int                `json:"frames"`
	Landed     bool               `json:"landed"`
	Compressed bool               `json:"compressed"`
	Stats      flight.Stats       `json:"stats"`
	World      world.Config       `json:"world"`
	Params     map[string]float64 `json:"params,omitempty"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes a run and returns its id. Fields of meta describing the
// result are filled in from result.
func (s *Store) Save(meta RunMetadata, result *flight.Result, compress bool) (string, error) {
	meta.ID = fmt.Sprintf("%s_%s", meta.Preset, uuid.NewString()[:8])
	meta.Timestamp = time.Now()
	meta.Frames = result.Frames
	meta.Landed = result.Landed
	meta.Stats = result.Stats
	meta.Metrics = result.Metrics
	meta.Compressed = compress

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", fmt.Errorf("create run dir: %w", err)
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	name := trajectoryFile
	if compress {
		name = compressedFile
	}
	if err := writeTrajectory(filepath.Join(runDir, name), result.Samples, compress); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTrajectory(path string, samples []flight.Sample, compress bool) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	var out io.Writer = f
	if compress {
		zw, zerr := zstd.NewWriter(f)
		if zerr != nil {
			return fmt.Errorf("zstd writer: %w", zerr)
		}
		defer func() {
			if cerr := zw.Close(); err == nil {
				err = cerr
			}
		}()
		out = zw
	}

	return WriteCSV(out, samples)
}

// WriteCSV writes samples with positions in exact subunits.
func WriteCSV(w io.Writer, samples []flight.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(trajectoryHeader); err != nil {
		return err
	}

	ff := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for _, s := range samples {
		row := []string{
			ff(s.Time),
			strconv.FormatInt(s.Position.X, 10),
			strconv.FormatInt(s.Position.Y, 10),
			ff(s.Velocity.X()),
			ff(s.Velocity.Y()),
			ff(s.Rotation),
			ff(s.Altitude),
			s.Phase.String(),
			s.Stage.String(),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses what WriteCSV wrote.
func ReadCSV(r io.Reader) ([]flight.Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(trajectoryHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read trajectory: %w", err)
	}
	if len(records) < 2 {
		return []flight.Sample{}, nil
	}

	samples := make([]flight.Sample, 0, len(records)-1)
	for i, rec := range records[1:] {
		s, err := parseSample(rec)
		if err != nil {
			return nil, fmt.Errorf("trajectory row %d: %w", i+1, err)
		}
		samples = append(samples, s)
	}
	return samples, nil
}

func parseSample(rec []string) (flight.Sample, error) {
	var s flight.Sample
	var floats [5]float64
	for i, col := range []int{0, 3, 4, 5, 6} {
		v, err := strconv.ParseFloat(rec[col], 64)
		if err != nil {
			return s, err
		}
		floats[i] = v
	}
	x, err := strconv.ParseInt(rec[1], 10, 64)
	if err != nil {
		return s, err
	}
	y, err := strconv.ParseInt(rec[2], 10, 64)
	if err != nil {
		return s, err
	}
	if err := s.Phase.UnmarshalText([]byte(rec[7])); err != nil {
		return s, err
	}
	if err := s.Stage.UnmarshalText([]byte(rec[8])); err != nil {
		return s, err
	}

	s.Time = floats[0]
	s.Position = fixed.V(x, y)
	s.Velocity = mgl64.Vec2{floats[1], floats[2]}
	s.Rotation = floats[3]
	s.Altitude = floats[4]
	return s, nil
}

// List returns every readable run, newest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata for %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadTrajectory(runID string) ([]flight.Sample, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	name := trajectoryFile
	if meta.Compressed {
		name = compressedFile
	}
	f, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if !meta.Compressed {
		return ReadCSV(f)
	}

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer zr.Close()
	return ReadCSV(zr)
}
