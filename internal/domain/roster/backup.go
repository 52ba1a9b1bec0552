package roster

import (
	"encoding/json"
	"fmt"
	"io"

	"appraisal/internal/domain/assessment"
)

// WriteBackup dumps the whole registry as a JSON array, full fidelity.
func WriteBackup(w io.Writer, records []assessment.Assessment) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if records == nil {
		records = []assessment.Assessment{}
	}
	return encoder.Encode(records)
}

// ReadBackup parses a backup produced by WriteBackup. Restoring replaces the
// registry wholesale; validation is limited to records having ids, since the
// backup is trusted admin input.
func ReadBackup(r io.Reader) ([]assessment.Assessment, error) {
	var records []assessment.Assessment
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("invalid backup payload: %w", err)
	}
	for i, rec := range records {
		if rec.ID == "" {
			return nil, fmt.Errorf("invalid backup payload: record %d has no id", i)
		}
	}
	return records, nil
}
