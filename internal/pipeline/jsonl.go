package pipeline

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tervyx/claimpipe/internal/model"
)

// maxLineBytes bounds one JSONL line; product pages yield at most a
// few hundred claims
const maxLineBytes = 4 * 1024 * 1024

// ReadRecords loads the extraction JSONL. Malformed lines are
// rejected and reported, not fatal: one bad product must not abort an
// aggregate run.
func ReadRecords(path string) ([]model.RawExtractionRecord, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var records []model.RawExtractionRecord
	var rejects []string

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec model.RawExtractionRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			rejects = append(rejects, fmt.Sprintf("line %d: malformed record: %v", lineNum, err))
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	return records, rejects, nil
}

// WriteRecords writes extraction records as JSONL, one per line
func WriteRecords(path string, records []model.RawExtractionRecord) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode record %s: %w", rec.ProductID, err)
		}
	}
	return w.Flush()
}
