package assessment

// RosterRow is one parsed bulk-import line.
type RosterRow struct {
	FullName        string
	Email           string
	KPISeeds        []string
	ManagerName     string
	ManagerEmail    string
	ManagerPassword string
}

// MergeRoster folds one roster row into an existing record. Only the KPI
// descriptions (and titles for seeded KPIs), manager name, manager email and
// manager password are overwritten; the employee's self-assessment content,
// status and timestamps are preserved untouched. This lets HR re-point an
// employee to a new manager or redefine KPI text mid-cycle without destroying
// in-progress input. The operation is idempotent.
func MergeRoster(existing *Assessment, row RosterRow) {
	existing.ManagerName = row.ManagerName
	existing.ManagerEmail = NormalizeEmail(row.ManagerEmail)
	if row.ManagerPassword != "" {
		existing.ManagerPassword = row.ManagerPassword
	}

	seeded := NewBlank(row.FullName, row.Email, row.ManagerName, row.ManagerEmail, row.KPISeeds, row.ManagerPassword)
	for i, kpi := range seeded.KPIs {
		if i < len(existing.KPIs) {
			existing.KPIs[i].Title = kpi.Title
			existing.KPIs[i].Description = kpi.Description
			continue
		}
		existing.KPIs = append(existing.KPIs, kpi)
	}
}
