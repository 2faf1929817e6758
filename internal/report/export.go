package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// fileTimeLayout gives report files a sortable, filesystem-safe name.
const fileTimeLayout = "20060102_150405"

// Filename returns the report file name for the given generation time.
func Filename(t time.Time) string {
	return fmt.Sprintf("syswatch_report_%s.json", t.Format(fileTimeLayout))
}

// WriteJSON writes the report as indented JSON into dir and returns the
// full path of the created file.
func WriteJSON(d *Data, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	path := filepath.Join(dir, Filename(d.GeneratedAt))
	out, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return "", fmt.Errorf("writing report file: %w", err)
	}
	return path, nil
}
