package auth

import "appraisal/internal/domain/assessment"

// Role is the closed set of resolved roles. There is no other valid state:
// handlers switch exhaustively over these four values.
type Role string

const (
	RoleUnauthenticated Role = "unauthenticated"
	RoleStaff           Role = "staff"
	RoleManager         Role = "manager"
	RoleAdmin           Role = "admin"
)

// Identity is the outcome of the authentication gate: a role plus the email
// it was resolved for.
type Identity struct {
	Role  Role   `json:"role"`
	Email string `json:"email"`
}

func Anonymous() Identity {
	return Identity{Role: RoleUnauthenticated}
}

func (i Identity) IsAdmin() bool   { return i.Role == RoleAdmin }
func (i Identity) IsManager() bool { return i.Role == RoleManager }
func (i Identity) IsStaff() bool   { return i.Role == RoleStaff }

// CanView reports whether the identity may see a record: admins see all,
// managers see records assigned to their email, staff see their own record.
func (i Identity) CanView(rec assessment.Assessment) bool {
	switch i.Role {
	case RoleAdmin:
		return true
	case RoleManager:
		return assessment.SameEmail(rec.ManagerEmail, i.Email)
	case RoleStaff:
		return assessment.SameEmail(rec.EmployeeDetails.Email, i.Email)
	default:
		return false
	}
}

// CanReview reports whether the identity may author manager fields on a
// record.
func (i Identity) CanReview(rec assessment.Assessment) bool {
	switch i.Role {
	case RoleAdmin:
		return true
	case RoleManager:
		return assessment.SameEmail(rec.ManagerEmail, i.Email)
	default:
		return false
	}
}

// Scope filters records down to what the identity may see.
func Scope(i Identity, records []assessment.Assessment) []assessment.Assessment {
	if i.Role == RoleAdmin {
		return records
	}
	var out []assessment.Assessment
	for _, rec := range records {
		if i.CanView(rec) {
			out = append(out, rec)
		}
	}
	return out
}
