package assessment

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewBlank mints a draft assessment for one employee. One KPI is created per
// non-empty seed string, titled positionally ("KPI 1", "KPI 2", ...). The
// competency catalog is cloned in. This is the only place new records are
// created outside the manual form path.
func NewBlank(fullName, email, managerName, managerEmail string, kpiSeeds []string, managerPassword string) Assessment {
	var kpis []KPI
	n := 0
	for _, seed := range kpiSeeds {
		seed = strings.TrimSpace(seed)
		if seed == "" {
			continue
		}
		n++
		kpis = append(kpis, KPI{
			ID:          fmt.Sprintf("kpi-%d", n),
			Title:       fmt.Sprintf("KPI %d", n),
			Description: seed,
		})
	}

	return Assessment{
		ID: uuid.NewString(),
		EmployeeDetails: EmployeeDetails{
			FullName: strings.TrimSpace(fullName),
			Email:    NormalizeEmail(email),
		},
		ManagerName:      strings.TrimSpace(managerName),
		ManagerEmail:     NormalizeEmail(managerEmail),
		ManagerPassword:  managerPassword,
		KPIs:             kpis,
		CoreCompetencies: CoreCompetencies(),
		Status:           StatusDraft,
	}
}

// NormalizeEmail lower-cases and trims an address for comparison and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SameEmail compares two addresses case-insensitively.
func SameEmail(a, b string) bool {
	return NormalizeEmail(a) == NormalizeEmail(b) && NormalizeEmail(a) != ""
}
