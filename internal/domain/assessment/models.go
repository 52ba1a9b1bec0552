package assessment

import "time"

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusReviewed  Status = "reviewed"
)

// Rating is a closed label set. The leading digits are cosmetic; ratings are
// compared by identity, never by order.
type Rating string

const (
	RatingNA             Rating = "N/A - Not Applicable"
	RatingOutstanding    Rating = "1 - Outstanding"
	RatingExceeds        Rating = "2 - Exceeds requirements"
	RatingMeets          Rating = "3 - Meets requirements"
	RatingPartiallyMeets Rating = "4 - Partially meets requirements"
	RatingNotMet         Rating = "5 - Requirements not met"
)

type EmployeeDetails struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Position string `json:"position"`
	Division string `json:"division"`
}

type KPI struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StartDate   string `json:"startDate"`
	TargetDate  string `json:"targetDate"`
	State       string `json:"status"`

	SelfRating      Rating `json:"selfRating,omitempty"`
	SelfComments    string `json:"selfComments,omitempty"`
	ManagerRating   Rating `json:"managerRating,omitempty"`
	ManagerComments string `json:"managerComments,omitempty"`

	MidYearSelfComments    string `json:"midYearSelfComments,omitempty"`
	MidYearManagerComments string `json:"midYearManagerComments,omitempty"`
}

type Competency struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Indicators  []string `json:"indicators"`

	SelfRating      Rating `json:"selfRating,omitempty"`
	ManagerRating   Rating `json:"managerRating,omitempty"`
	ManagerComments string `json:"managerComments,omitempty"`
}

type DevelopmentPlan struct {
	Competencies    []string `json:"competencies"`
	SelfComments    string   `json:"selfComments"`
	ManagerComments string   `json:"managerComments,omitempty"`
}

type OverallPerformance struct {
	SelfRating      Rating `json:"selfRating,omitempty"`
	SelfComments    string `json:"selfComments"`
	ManagerRating   Rating `json:"managerRating,omitempty"`
	ManagerComments string `json:"managerComments"`
}

// Assessment is the aggregate root. Email on EmployeeDetails is the natural
// key for staff lookup and must always be compared case-insensitively.
type Assessment struct {
	ID              string          `json:"id"`
	EmployeeDetails EmployeeDetails `json:"employeeDetails"`

	ManagerName     string `json:"managerName"`
	ManagerEmail    string `json:"managerEmail"`
	ManagerPassword string `json:"managerPassword,omitempty"`

	KPIs               []KPI              `json:"kpis"`
	DevelopmentPlan    DevelopmentPlan    `json:"developmentPlan"`
	CoreCompetencies   []Competency       `json:"coreCompetencies"`
	OverallPerformance OverallPerformance `json:"overallPerformance"`

	Status      Status     `json:"status"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
	ReviewedAt  *time.Time `json:"reviewedAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`

	// Version counts registry writes; the remote store rejects upserts
	// carrying a version at or below the stored one.
	Version int64 `json:"version"`
}

// Clone returns a deep copy so working copies never alias registry state.
func (a Assessment) Clone() Assessment {
	out := a
	out.KPIs = make([]KPI, len(a.KPIs))
	copy(out.KPIs, a.KPIs)
	out.CoreCompetencies = make([]Competency, len(a.CoreCompetencies))
	for i, c := range a.CoreCompetencies {
		c.Indicators = append([]string(nil), c.Indicators...)
		out.CoreCompetencies[i] = c
	}
	out.DevelopmentPlan.Competencies = append([]string(nil), a.DevelopmentPlan.Competencies...)
	if a.SubmittedAt != nil {
		t := *a.SubmittedAt
		out.SubmittedAt = &t
	}
	if a.ReviewedAt != nil {
		t := *a.ReviewedAt
		out.ReviewedAt = &t
	}
	if a.UpdatedAt != nil {
		t := *a.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}
