// Package report renders a finished appraisal as a printable PDF. The
// export is a read-only projection and never feeds back into the lifecycle.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"appraisal/internal/domain/assessment"
)

// WritePDF renders one assessment. Drafts render too (the layout does not
// depend on status), but callers generally expose this for submitted and
// reviewed records only.
func WritePDF(w io.Writer, rec assessment.Assessment) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Performance Appraisal")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s", rec.EmployeeDetails.FullName))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Email: %s", rec.EmployeeDetails.Email))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Position: %s / %s", rec.EmployeeDetails.Position, rec.EmployeeDetails.Division))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Manager: %s (%s)", rec.ManagerName, rec.ManagerEmail))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Status: %s", rec.Status))
	pdf.Ln(6)
	if rec.SubmittedAt != nil {
		pdf.Cell(0, 7, fmt.Sprintf("Submitted: %s", rec.SubmittedAt.UTC().Format(time.RFC3339)))
		pdf.Ln(6)
	}
	if rec.ReviewedAt != nil {
		pdf.Cell(0, 7, fmt.Sprintf("Reviewed: %s", rec.ReviewedAt.UTC().Format(time.RFC3339)))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	section(pdf, "Key Performance Indicators")
	for _, k := range rec.KPIs {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 6, fmt.Sprintf("%s: %s", k.Title, k.Description), "", "L", false)
		pdf.SetFont("Helvetica", "", 10)
		ratingLine(pdf, "Self", k.SelfRating, k.SelfComments)
		ratingLine(pdf, "Manager", k.ManagerRating, k.ManagerComments)
		pdf.Ln(2)
	}

	section(pdf, "Core Competencies")
	for _, c := range rec.CoreCompetencies {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 6, c.Name, "", "L", false)
		pdf.SetFont("Helvetica", "", 10)
		ratingLine(pdf, "Self", c.SelfRating, "")
		ratingLine(pdf, "Manager", c.ManagerRating, c.ManagerComments)
		pdf.Ln(2)
	}

	section(pdf, "Development Plan")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 6, "Employee: "+rec.DevelopmentPlan.SelfComments, "", "L", false)
	pdf.MultiCell(0, 6, "Manager: "+rec.DevelopmentPlan.ManagerComments, "", "L", false)
	pdf.Ln(2)

	section(pdf, "Overall Performance")
	pdf.SetFont("Helvetica", "", 10)
	ratingLine(pdf, "Self", rec.OverallPerformance.SelfRating, rec.OverallPerformance.SelfComments)
	ratingLine(pdf, "Manager", rec.OverallPerformance.ManagerRating, rec.OverallPerformance.ManagerComments)
	pdf.Ln(2)

	section(pdf, "Rating Guide")
	pdf.SetFont("Helvetica", "", 9)
	for _, rating := range assessment.Ratings {
		pdf.MultiCell(0, 5, fmt.Sprintf("%s: %s", rating, assessment.RatingDescriptions[rating]), "", "L", false)
	}

	return pdf.Output(w)
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 9, title)
	pdf.Ln(10)
}

func ratingLine(pdf *gofpdf.Fpdf, who string, rating assessment.Rating, comments string) {
	label := string(rating)
	if label == "" {
		label = "-"
	}
	line := fmt.Sprintf("%s rating: %s", who, label)
	if comments != "" {
		line += " / " + comments
	}
	pdf.MultiCell(0, 5, line, "", "L", false)
}
