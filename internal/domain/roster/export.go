package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"appraisal/internal/domain/assessment"
)

// utf8BOM keeps spreadsheet tools from mangling non-ASCII names.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ExportCSV writes one row per reviewed record, flattening KPI and
// competency ratings and comments into fixed named columns. Non-reviewed
// records are excluded: the export is a read-only projection of finished
// appraisals.
func ExportCSV(w io.Writer, records []assessment.Assessment) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}

	writer := csv.NewWriter(w)

	header := []string{"FullName", "Email", "Position", "Division", "ManagerName", "ManagerEmail"}
	for i := 1; i <= kpiColumns; i++ {
		header = append(header,
			fmt.Sprintf("KPI%d Description", i),
			fmt.Sprintf("KPI%d SelfRating", i),
			fmt.Sprintf("KPI%d SelfComments", i),
			fmt.Sprintf("KPI%d ManagerRating", i),
			fmt.Sprintf("KPI%d ManagerComments", i),
		)
	}
	for _, comp := range assessment.CoreCompetencies() {
		header = append(header,
			comp.Name+" SelfRating",
			comp.Name+" ManagerRating",
			comp.Name+" ManagerComments",
		)
	}
	header = append(header,
		"Development SelfComments", "Development ManagerComments",
		"Overall SelfRating", "Overall SelfComments",
		"Overall ManagerRating", "Overall ManagerComments",
		"SubmittedAt", "ReviewedAt",
	)
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, rec := range records {
		if rec.Status != assessment.StatusReviewed {
			continue
		}
		row := []string{
			rec.EmployeeDetails.FullName,
			rec.EmployeeDetails.Email,
			rec.EmployeeDetails.Position,
			rec.EmployeeDetails.Division,
			rec.ManagerName,
			rec.ManagerEmail,
		}
		for i := 0; i < kpiColumns; i++ {
			if i < len(rec.KPIs) {
				k := rec.KPIs[i]
				row = append(row, k.Description, string(k.SelfRating), k.SelfComments, string(k.ManagerRating), k.ManagerComments)
			} else {
				row = append(row, "", "", "", "", "")
			}
		}
		for i := range assessment.CoreCompetencies() {
			if i < len(rec.CoreCompetencies) {
				c := rec.CoreCompetencies[i]
				row = append(row, string(c.SelfRating), string(c.ManagerRating), c.ManagerComments)
			} else {
				row = append(row, "", "", "")
			}
		}
		row = append(row,
			rec.DevelopmentPlan.SelfComments,
			rec.DevelopmentPlan.ManagerComments,
			string(rec.OverallPerformance.SelfRating),
			rec.OverallPerformance.SelfComments,
			string(rec.OverallPerformance.ManagerRating),
			rec.OverallPerformance.ManagerComments,
			formatStamp(rec.SubmittedAt),
			formatStamp(rec.ReviewedAt),
		)
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatStamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
