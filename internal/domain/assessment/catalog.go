package assessment

// RatingDescriptions maps each rating label to the guidance text shown next
// to it in the appraisal form and the exported report.
var RatingDescriptions = map[Rating]string{
	RatingNA:             "Not Applicable",
	RatingOutstanding:    "The performance far exceeded the requirements of all acknowledged KPIs.",
	RatingExceeds:        "The performance exceeded the requirements of all acknowledged KPIs.",
	RatingMeets:          "The performance met the requirements of all acknowledged KPIs.",
	RatingPartiallyMeets: "The performance met the requirements of some acknowledged KPIs.",
	RatingNotMet:         "The performance was below requirements.",
}

// Ratings lists every valid rating label in display order.
var Ratings = []Rating{
	RatingOutstanding,
	RatingExceeds,
	RatingMeets,
	RatingPartiallyMeets,
	RatingNotMet,
	RatingNA,
}

// ValidRating reports whether r is one of the closed rating labels. The empty
// rating is treated as "not set", not as invalid.
func ValidRating(r Rating) bool {
	if r == "" {
		return true
	}
	_, ok := RatingDescriptions[r]
	return ok
}

// coreCompetencyCatalog is the fixed catalog cloned into every new
// assessment. Names, descriptions and indicators are immutable once cloned.
var coreCompetencyCatalog = []Competency{
	{
		ID:          "comp-1",
		Name:        "Work Effectiveness",
		Description: "Applies professional techniques and knowledge; plans work systematically; manages time effectively.",
		Indicators: []string{
			"Applies job knowledge and technical skills effectively.",
			"Observes deadlines and finishes tasks on time.",
			"Completes assignments meeting quality and productivity standard.",
			"Serves as a source of technical reference for team members.",
		},
	},
	{
		ID:          "comp-2",
		Name:        "Innovation, Adapting & Responding to Change",
		Description: "Thinks creatively; supports changes; is open-minded and willing to adjust.",
		Indicators: []string{
			"Contributes new ideas to improve workflow.",
			"Willing to try out new ways of handling issues.",
			"Adjusts to comply with changes in policies or strategies.",
			"Engages team members to implement solutions.",
		},
	},
	{
		ID:          "comp-3",
		Name:        "Analysing, Decision Making & Problem Solving",
		Description: "Demonstrates analytical ability; understands root problems; makes thorough decisions.",
		Indicators: []string{
			"Analyses numerical and verbal information.",
			"Makes judgments with supporting data.",
			"Develops solutions in own area.",
			"Organises resources to solve problems.",
		},
	},
	{
		ID:          "comp-4",
		Name:        "Customer Focused",
		Description: "Driven to provide quality service; understands and adapts to customer needs.",
		Indicators: []string{
			"Provides quality service to internal/external customers.",
			"Adapts to changing customer needs.",
			"Communicates regularly and responds timely.",
			"Facilitates team members to implement focused practices.",
		},
	},
	{
		ID:          "comp-5",
		Name:        "Drive & Results Orientation",
		Description: "Shows initiative; remains positively minded under pressure; strives for excellence.",
		Indicators: []string{
			"Sustains efforts to achieve assignments.",
			"Remains effective in demanding situations.",
			"Seeks continuous performance improvement.",
			"Drives self and team to achieve work results.",
		},
	},
	{
		ID:          "comp-6",
		Name:        "Ownership & Commitment",
		Description: "Is trustworthy and consistent; upholds professionalism and Group core values.",
		Indicators: []string{
			"Follows core values and professional ethics.",
			"Demonstrates commitment and positive attitudes.",
			"Takes accountability for decisions.",
			"Considers Group credibility in decisions.",
		},
	},
}

// CoreCompetencies returns a fresh copy of the fixed competency catalog.
func CoreCompetencies() []Competency {
	out := make([]Competency, len(coreCompetencyCatalog))
	for i, c := range coreCompetencyCatalog {
		c.Indicators = append([]string(nil), c.Indicators...)
		out[i] = c
	}
	return out
}
