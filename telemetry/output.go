package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/pthm-cable/tidal/config"
)

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir        string
	statsFile  *os.File
	perfFile   *os.File
	phasesFile *os.File

	// Track if headers have been written
	statsHeaderWritten  bool
	perfHeaderWritten   bool
	phasesHeaderWritten bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	var err error
	if om.statsFile, err = os.Create(filepath.Join(dir, "telemetry.csv")); err != nil {
		return nil, fmt.Errorf("creating telemetry.csv: %w", err)
	}
	if om.perfFile, err = os.Create(filepath.Join(dir, "perf.csv")); err != nil {
		om.statsFile.Close()
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}
	if om.phasesFile, err = os.Create(filepath.Join(dir, "phases.csv")); err != nil {
		om.statsFile.Close()
		om.perfFile.Close()
		return nil, fmt.Errorf("creating phases.csv: %w", err)
	}

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry writes a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	if err := writeRows(om.statsFile, []WindowStats{stats}, &om.statsHeaderWritten); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}
	if err := writeRows(om.perfFile, []PerfStatsCSV{stats.ToCSV(windowEnd)}, &om.perfHeaderWritten); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WritePhases writes phase transitions to phases.csv.
func (om *OutputManager) WritePhases(records []PhaseRecord) error {
	if om == nil || len(records) == 0 {
		return nil
	}
	if err := writeRows(om.phasesFile, records, &om.phasesHeaderWritten); err != nil {
		return fmt.Errorf("writing phases: %w", err)
	}
	return nil
}

// writeRows marshals rows, including the header only on the first write.
func writeRows(w io.Writer, rows any, headerWritten *bool) error {
	if !*headerWritten {
		if err := gocsv.Marshal(rows, w); err != nil {
			return err
		}
		*headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(rows, w)
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, f := range []*os.File{om.statsFile, om.perfFile, om.phasesFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
