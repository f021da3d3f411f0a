// Package reportstore renders drift reports to self-contained HTML files in
// the reports directory and maintains the latest pointer.
package reportstore

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/OldStager01/driftwatch/pkg/models"
	"github.com/OldStager01/driftwatch/pkg/validation"
)

// ErrStorageFailure indicates a report could not be durably written. The
// previous latest pointer stays intact.
var ErrStorageFailure = errors.New("report storage failure")

// ErrReportNotFound indicates the requested report file does not exist.
var ErrReportNotFound = errors.New("report not found")

const (
	latestName   = "drift_report_latest.html"
	reportPrefix = "drift_report_"
)

//go:embed report.html.tmpl
var reportTemplate string

type Config struct {
	// Dir is the reports directory, created if missing.
	Dir string

	// BaseURL prefixes report links in API responses. Empty means relative
	// /reports/<name> links.
	BaseURL string
}

// Store owns the reports directory. Writes go through a temp file and
// rename, so readers of the latest pointer never observe a half-written
// report. The mutex serializes writers; the scheduler gate already does,
// but the store does not rely on that.
type Store struct {
	dir     string
	baseURL string
	tmpl    *template.Template
	mu      sync.Mutex
}

func New(cfg Config) (*Store, error) {
	if cfg.Dir == "" {
		cfg.Dir = "./reports"
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: failed to create reports directory: %v", ErrStorageFailure, err)
	}

	tmpl, err := template.New("report").Parse(reportTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}

	return &Store{
		dir:     cfg.Dir,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		tmpl:    tmpl,
	}, nil
}

// Save renders the report and persists it under a timestamp-derived name,
// then rewrites the latest pointer. The latest pointer is only touched after
// the timestamped file is durably in place; any failure leaves the previous
// latest intact and returns ErrStorageFailure.
func (s *Store) Save(report *models.DriftReport) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rendered bytes.Buffer
	if err := s.tmpl.Execute(&rendered, report); err != nil {
		return "", fmt.Errorf("%w: failed to render report: %v", ErrStorageFailure, err)
	}

	name := FileName(report)
	if err := s.writeAtomic(name, rendered.Bytes()); err != nil {
		return "", err
	}

	if err := s.writeAtomic(latestName, rendered.Bytes()); err != nil {
		return "", err
	}

	return name, nil
}

// writeAtomic writes via a temp file in the same directory and renames it
// into place, removing temp debris on failure.
func (s *Store) writeAtomic(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file: %v", ErrStorageFailure, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: failed to write report: %v", ErrStorageFailure, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: failed to close report file: %v", ErrStorageFailure, err)
	}

	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: failed to move report into place: %v", ErrStorageFailure, err)
	}

	return nil
}

// FileName derives the stored filename for a report. Manual runs carry a
// distinct prefix so operators can tell them apart in the directory listing.
func FileName(report *models.DriftReport) string {
	if report.Source == models.RunSourceManual {
		return fmt.Sprintf("%smanual_%s.html", reportPrefix, report.ID)
	}
	return fmt.Sprintf("%s%s.html", reportPrefix, report.ID)
}

// ListRecent returns metadata for the n most recently written reports,
// newest first, excluding the latest pointer.
func (s *Store) ListRecent(n int) ([]models.ReportInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read reports directory: %w", err)
	}

	var reports []models.ReportInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == latestName {
			continue
		}
		if !strings.HasPrefix(name, reportPrefix) || !strings.HasSuffix(name, ".html") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		reports = append(reports, models.ReportInfo{
			Name:     name,
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}

	sort.Slice(reports, func(i, j int) bool {
		if reports[i].Modified.Equal(reports[j].Modified) {
			return reports[i].Name > reports[j].Name
		}
		return reports[i].Modified.After(reports[j].Modified)
	})

	if n > 0 && len(reports) > n {
		reports = reports[:n]
	}
	return reports, nil
}

// LatestInfo resolves the latest pointer, reporting whether one exists yet.
func (s *Store) LatestInfo() (models.ReportInfo, bool) {
	info, err := os.Stat(filepath.Join(s.dir, latestName))
	if err != nil {
		return models.ReportInfo{}, false
	}
	return models.ReportInfo{
		Name:     latestName,
		Size:     info.Size(),
		Modified: info.ModTime(),
	}, true
}

// Resolve validates a requested report name and returns its on-disk path.
// Names that could escape the reports directory are rejected.
func (s *Store) Resolve(name string) (string, error) {
	if err := validation.ValidateReportName(name); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", ErrReportNotFound, name)
	}
	return path, nil
}

// URL builds the link clients use to fetch a stored report.
func (s *Store) URL(name string) string {
	return s.baseURL + "/reports/" + name
}
