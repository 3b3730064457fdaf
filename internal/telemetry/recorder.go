// Package telemetry writes per-frame statistics of the viewer as CSV.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// FrameRecord is one row of the frame trace.
type FrameRecord struct {
	Frame         uint64  `csv:"frame"`
	FrameTimeMS   float32 `csv:"frame_time_ms"`
	ScreenWidth   int32   `csv:"screen_width"`
	ScreenHeight  int32   `csv:"screen_height"`
	RayDataWidth  int32   `csv:"raydata_width"`
	RayDataHeight int32   `csv:"raydata_height"`
	Passes        int     `csv:"passes"`
	GridRebuilt   bool    `csv:"grid_rebuilt"`
	Skipped       bool    `csv:"skipped"`
	Controlled    int     `csv:"controlled"`
	GridSizeX     float32 `csv:"grid_size_x"`
	GridSizeY     float32 `csv:"grid_size_y"`
	GridSizeZ     float32 `csv:"grid_size_z"`
	DensityMass   float32 `csv:"density_mass"`
}

// Recorder appends FrameRecords to a CSV file. A nil Recorder discards
// everything, so callers need no enabled checks.
type Recorder struct {
	path     string
	file     *os.File
	interval uint64

	headerWritten bool
	seen          uint64
	written       int
}

// NewRecorder creates the trace file. Returns nil if path is empty
// (tracing disabled). interval is the number of frames per written row.
func NewRecorder(path string, interval int) (*Recorder, error) {
	if path == "" {
		return nil, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating trace directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating trace file: %w", err)
	}

	return &Recorder{
		path:     path,
		file:     f,
		interval: uint64(max(interval, 1)),
	}, nil
}

// Record writes rec if it falls on the sampling interval.
func (r *Recorder) Record(rec FrameRecord) error {
	if r == nil {
		return nil
	}

	r.seen++
	if (r.seen-1)%r.interval != 0 {
		return nil
	}

	records := []FrameRecord{rec}
	if !r.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, r.file); err != nil {
			return fmt.Errorf("writing frame trace: %w", err)
		}
		r.headerWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, r.file); err != nil {
			return fmt.Errorf("writing frame trace: %w", err)
		}
	}
	r.written++
	return nil
}

// Written returns the number of rows written.
func (r *Recorder) Written() int {
	if r == nil {
		return 0
	}
	return r.written
}

// Path returns the trace file path.
func (r *Recorder) Path() string {
	if r == nil {
		return ""
	}
	return r.path
}

// Close flushes and closes the trace file.
func (r *Recorder) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// ReadFrames loads a trace written by Recorder.
func ReadFrames(path string) ([]FrameRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trace: %w", err)
	}
	defer f.Close()

	var records []FrameRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, fmt.Errorf("reading trace: %w", err)
	}
	return records, nil
}
