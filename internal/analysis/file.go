package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// fileName matches the name the execution engine's analysis task has always
// used for local output.
const fileName = "adsorption.json"

// FileSink writes records to adsorption.json in Dir (or the working
// directory when Dir is empty). Timestamps serialize as RFC 3339.
type FileSink struct {
	Dir string
}

// Persist implements Sink.
func (f *FileSink) Persist(_ context.Context, rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding analysis record: %w", err)
	}
	path := filepath.Join(f.Dir, fileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
