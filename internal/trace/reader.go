// File: internal/trace/reader.go
package trace

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xkilldash9x/webtrail-cli/api/schemas"
)

// ReadTrace loads the records of a completed (or crashed) session from its
// line-delimited JSON trace. Blank lines are skipped; a malformed line is an
// error, since every line is written as one complete record object.
func ReadTrace(path string) ([]*schemas.ActionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace %s: %w", path, err)
	}
	defer f.Close()

	var records []*schemas.ActionRecord
	scanner := bufio.NewScanner(f)
	// Element attribute maps can make individual lines large.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec schemas.ActionRecord
		if err := jsonCfg.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("malformed trace line %d in %s: %w", lineNo, path, err)
		}
		records = append(records, &rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trace %s: %w", path, err)
	}
	return records, nil
}

// ReadSessionSummary rebuilds the summary of a recorded session from the JSON
// trace inside its log directory.
func ReadSessionSummary(dir, sessionID string) (schemas.Summary, error) {
	records, err := ReadTrace(filepath.Join(dir, JSONLogName))
	if err != nil {
		return schemas.Summary{}, err
	}
	return SummarizeRecords(sessionID, records), nil
}
