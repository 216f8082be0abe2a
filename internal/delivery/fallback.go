// internal/delivery/fallback.go
package delivery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// Fallback is the append-only local store for samples that could not be
// delivered. The file is UTF-8 comma-separated text with a header row,
// created on first failure. Replay into the sink is a manual operation.
type Fallback struct {
	path   string
	header string
}

// NewFallback builds a fallback store whose header matches the exported
// field set.
func NewFallback(path string, fields []Field) *Fallback {
	labels := make([]string, 0, len(fields)+1)
	labels = append(labels, "Timestamp")
	for _, f := range fields {
		labels = append(labels, f.Label)
	}
	return &Fallback{path: path, header: strings.Join(labels, ", ")}
}

// Append writes one record, creating the file with its header row first if
// it does not yet exist.
func (f *Fallback) Append(rec Record) error {
	_, statErr := os.Stat(f.path)
	writeHeader := errors.Is(statErr, fs.ErrNotExist)

	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("fallback: open: %w", err)
	}
	defer file.Close()

	if writeHeader {
		if _, err := fmt.Fprintln(file, f.header); err != nil {
			return fmt.Errorf("fallback: header: %w", err)
		}
	}

	cols := make([]string, 0, len(rec.Values)+1)
	cols = append(cols, strconv.FormatFloat(rec.Timestamp, 'f', 3, 64))
	for _, v := range rec.Values {
		cols = append(cols, strconv.FormatFloat(v, 'f', -1, 64))
	}
	if _, err := fmt.Fprintln(file, strings.Join(cols, ", ")); err != nil {
		return fmt.Errorf("fallback: append: %w", err)
	}
	return nil
}
