// Package roster handles the admin bulk surfaces: CSV roster import, CSV
// export of reviewed appraisals, and full-registry JSON backup.
package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"appraisal/internal/domain/assessment"
)

// Import column order is fixed:
// FullName, Email, KPI1..KPI5, ManagerName, ManagerEmail, ManagerPassword(optional).
const (
	colFullName  = 0
	colEmail     = 1
	colFirstKPI  = 2
	kpiColumns   = 5
	colManager   = colFirstKPI + kpiColumns
	colManagerEm = colManager + 1
	colManagerPw = colManagerEm + 1
	minColumns   = colManagerEm + 1
)

var ErrEmptyFile = errors.New("roster file has no data rows")

// SkippedRow records why one import line was dropped. Line is the physical
// line in the uploaded file, so quoted fields with embedded newlines do not
// shift the numbers shown to the admin. Malformed rows never abort the
// import; callers report them alongside the aggregate count.
type SkippedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ParseRoster reads an RFC4180 CSV roster (quoted fields with embedded
// commas and newlines supported, quotes doubled). The first line is the
// header and is discarded. Rows with too few columns or without a
// valid-looking email are skipped, not rejected.
func ParseRoster(r io.Reader) ([]assessment.RosterRow, []SkippedRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var rows []assessment.RosterRow
	var skipped []SkippedRow

	seen := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		seen++
		if err != nil {
			line := seen
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				line = parseErr.Line
			}
			skipped = append(skipped, SkippedRow{Line: line, Reason: fmt.Sprintf("malformed CSV: %v", err)})
			continue
		}
		line, _ := reader.FieldPos(0)
		if seen == 1 {
			continue // header
		}
		if isBlankRow(record) {
			continue
		}
		if len(record) < minColumns {
			skipped = append(skipped, SkippedRow{Line: line, Reason: fmt.Sprintf("expected at least %d columns, got %d", minColumns, len(record))})
			continue
		}
		email := assessment.NormalizeEmail(record[colEmail])
		if !looksLikeEmail(email) {
			skipped = append(skipped, SkippedRow{Line: line, Reason: fmt.Sprintf("invalid email %q", record[colEmail])})
			continue
		}

		row := assessment.RosterRow{
			FullName:     strings.TrimSpace(record[colFullName]),
			Email:        email,
			ManagerName:  strings.TrimSpace(record[colManager]),
			ManagerEmail: assessment.NormalizeEmail(record[colManagerEm]),
		}
		for i := colFirstKPI; i < colFirstKPI+kpiColumns; i++ {
			row.KPISeeds = append(row.KPISeeds, strings.TrimSpace(record[i]))
		}
		if len(record) > colManagerPw {
			row.ManagerPassword = strings.TrimSpace(record[colManagerPw])
		}
		rows = append(rows, row)
	}

	if seen == 0 {
		return nil, nil, ErrEmptyFile
	}
	return rows, skipped, nil
}

func isBlankRow(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// looksLikeEmail is deliberately loose: one @ with a dotted domain. The
// registry is the source of truth, not an address verifier.
func looksLikeEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at != strings.LastIndex(email, "@") {
		return false
	}
	domain := email[at+1:]
	if !strings.Contains(domain, ".") {
		return false
	}
	return !strings.ContainsAny(email, " \t\n")
}
