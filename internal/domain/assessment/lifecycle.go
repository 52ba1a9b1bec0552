package assessment

import (
	"strings"
	"time"
)

// Submit moves a draft to submitted. The employee triggers this from the
// final wizard stage; it is rejected when the full name is empty. After the
// transition only manager-authored fields remain editable.
func Submit(a *Assessment, now time.Time) error {
	switch a.Status {
	case StatusDraft:
	case StatusSubmitted, StatusReviewed:
		return ErrNotDraft
	default:
		return ErrNotDraft
	}
	if strings.TrimSpace(a.EmployeeDetails.FullName) == "" {
		return ErrMissingName
	}
	a.Status = StatusSubmitted
	stamp := now.UTC()
	a.SubmittedAt = &stamp
	a.UpdatedAt = &stamp
	return nil
}

// Finalize moves a submitted assessment to reviewed. It is rejected when no
// overall manager rating has been set. Reviewed records have no outbound
// transitions; they can only be deleted wholesale by an admin.
func Finalize(a *Assessment, now time.Time) error {
	switch a.Status {
	case StatusSubmitted:
	case StatusDraft:
		return ErrNotSubmitted
	case StatusReviewed:
		return ErrReviewed
	default:
		return ErrNotSubmitted
	}
	if a.OverallPerformance.ManagerRating == "" {
		return ErrMissingFinalGrade
	}
	a.Status = StatusReviewed
	stamp := now.UTC()
	a.ReviewedAt = &stamp
	a.UpdatedAt = &stamp
	return nil
}

// ApplySelfEdits copies the self-authored surface of a working copy onto dst.
// It is the authoritative editability check: the wizard's read-only rendering
// is only a mirror of this rule. The employee email is the natural key and is
// never changed here. Manager-authored fields in the working copy are
// ignored.
func ApplySelfEdits(dst *Assessment, src Assessment, now time.Time) error {
	switch dst.Status {
	case StatusDraft:
	case StatusSubmitted:
		return ErrNotDraft
	case StatusReviewed:
		return ErrReviewed
	default:
		return ErrNotDraft
	}
	if !ValidRating(src.OverallPerformance.SelfRating) {
		return ErrInvalidRating
	}
	for _, k := range src.KPIs {
		if !ValidRating(k.SelfRating) {
			return ErrInvalidRating
		}
	}
	for _, c := range src.CoreCompetencies {
		if !ValidRating(c.SelfRating) {
			return ErrInvalidRating
		}
	}

	dst.EmployeeDetails.FullName = src.EmployeeDetails.FullName
	dst.EmployeeDetails.Position = src.EmployeeDetails.Position
	dst.EmployeeDetails.Division = src.EmployeeDetails.Division

	for i := range dst.KPIs {
		upd, ok := findKPI(src.KPIs, dst.KPIs[i].ID)
		if !ok {
			continue
		}
		dst.KPIs[i].StartDate = upd.StartDate
		dst.KPIs[i].TargetDate = upd.TargetDate
		dst.KPIs[i].State = upd.State
		dst.KPIs[i].SelfRating = upd.SelfRating
		dst.KPIs[i].SelfComments = upd.SelfComments
		dst.KPIs[i].MidYearSelfComments = upd.MidYearSelfComments
	}
	for i := range dst.CoreCompetencies {
		upd, ok := findCompetency(src.CoreCompetencies, dst.CoreCompetencies[i].ID)
		if !ok {
			continue
		}
		dst.CoreCompetencies[i].SelfRating = upd.SelfRating
	}

	dst.DevelopmentPlan.Competencies = append([]string(nil), src.DevelopmentPlan.Competencies...)
	dst.DevelopmentPlan.SelfComments = src.DevelopmentPlan.SelfComments
	dst.OverallPerformance.SelfRating = src.OverallPerformance.SelfRating
	dst.OverallPerformance.SelfComments = src.OverallPerformance.SelfComments

	stamp := now.UTC()
	dst.UpdatedAt = &stamp
	return nil
}

// ApplyManagerEdits copies the manager-authored surface of a working copy
// onto dst. Only submitted assessments accept manager edits; reviewed
// records are frozen.
func ApplyManagerEdits(dst *Assessment, src Assessment, now time.Time) error {
	switch dst.Status {
	case StatusSubmitted:
	case StatusDraft:
		return ErrNotSubmitted
	case StatusReviewed:
		return ErrReviewed
	default:
		return ErrNotSubmitted
	}
	if !ValidRating(src.OverallPerformance.ManagerRating) {
		return ErrInvalidRating
	}
	for _, k := range src.KPIs {
		if !ValidRating(k.ManagerRating) {
			return ErrInvalidRating
		}
	}
	for _, c := range src.CoreCompetencies {
		if !ValidRating(c.ManagerRating) {
			return ErrInvalidRating
		}
	}

	for i := range dst.KPIs {
		upd, ok := findKPI(src.KPIs, dst.KPIs[i].ID)
		if !ok {
			continue
		}
		dst.KPIs[i].ManagerRating = upd.ManagerRating
		dst.KPIs[i].ManagerComments = upd.ManagerComments
		dst.KPIs[i].MidYearManagerComments = upd.MidYearManagerComments
	}
	for i := range dst.CoreCompetencies {
		upd, ok := findCompetency(src.CoreCompetencies, dst.CoreCompetencies[i].ID)
		if !ok {
			continue
		}
		dst.CoreCompetencies[i].ManagerRating = upd.ManagerRating
		dst.CoreCompetencies[i].ManagerComments = upd.ManagerComments
	}

	dst.DevelopmentPlan.ManagerComments = src.DevelopmentPlan.ManagerComments
	dst.OverallPerformance.ManagerRating = src.OverallPerformance.ManagerRating
	dst.OverallPerformance.ManagerComments = src.OverallPerformance.ManagerComments

	stamp := now.UTC()
	dst.UpdatedAt = &stamp
	return nil
}

func findKPI(kpis []KPI, id string) (KPI, bool) {
	for _, k := range kpis {
		if k.ID == id {
			return k, true
		}
	}
	return KPI{}, false
}

func findCompetency(comps []Competency, id string) (Competency, bool) {
	for _, c := range comps {
		if c.ID == id {
			return c, true
		}
	}
	return Competency{}, false
}
