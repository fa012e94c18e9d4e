// Package report persists scan results as a lossless JSON artifact and a
// flattened per-finding CSV artifact.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dorkscan/dorkscan/pkg/finding"
)

// Artifacts identifies the files produced by one Persist call.
type Artifacts struct {
	JSONPath string `json:"json"`
	CSVPath  string `json:"csv"`
}

// csvColumns is the flattened per-finding row layout. One row per finding,
// carrying its parent URL's score and level.
var csvColumns = []string{
	"timestamp",
	"url",
	"risk_score",
	"risk_level",
	"finding_type",
	"match",
	"context",
	"source",
	"confidence",
	"severity",
}

// Writer generates timestamped report artifacts in a directory.
type Writer struct {
	dir string
	now func() time.Time
}

// NewWriter creates a report writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir, now: time.Now}
}

// Persist writes both artifacts and returns their paths. The JSON file
// carries the full result list verbatim; the CSV flattens every finding
// into one row.
func (w *Writer) Persist(results []finding.ScanResult) (Artifacts, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return Artifacts{}, fmt.Errorf("create report dir: %w", err)
	}

	stamp := w.now().Format("20060102_150405")
	arts := Artifacts{
		JSONPath: filepath.Join(w.dir, "report_"+stamp+".json"),
		CSVPath:  filepath.Join(w.dir, "report_"+stamp+".csv"),
	}

	if err := w.writeJSON(arts.JSONPath, results); err != nil {
		return Artifacts{}, err
	}
	if err := w.writeCSV(arts.CSVPath, stamp, results); err != nil {
		return Artifacts{}, err
	}
	return arts, nil
}

func (w *Writer) writeJSON(path string, results []finding.ScanResult) error {
	if results == nil {
		results = []finding.ScanResult{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (w *Writer) writeCSV(path, stamp string, results []finding.ScanResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(csvColumns); err != nil {
		return err
	}
	for _, result := range results {
		for _, fd := range result.Findings {
			row := []string{
				stamp,
				result.URL,
				strconv.Itoa(result.RiskScore),
				string(result.RiskLevel),
				fd.Type,
				sanitizeFormula(fd.Match),
				sanitizeFormula(fd.Context),
				string(fd.Source),
				strconv.FormatFloat(fd.Confidence, 'f', -1, 64),
				string(fd.Severity),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// sanitizeFormula neutralizes spreadsheet formula injection. Matched text
// comes from hostile pages, so cells starting with = + - @ TAB or CR get a
// leading apostrophe before Excel ever sees them.
func sanitizeFormula(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

// Filenames returns the basenames of the artifacts, for download links.
func (a Artifacts) Filenames() (string, string) {
	return filepath.Base(a.JSONPath), filepath.Base(a.CSVPath)
}
