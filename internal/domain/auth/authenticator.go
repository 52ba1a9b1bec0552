package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"appraisal/internal/domain/assessment"
)

var (
	// ErrEmailNotFound is the staff-path failure. It deliberately names the
	// missing email, unlike the assessor path.
	ErrEmailNotFound = errors.New("email not found in registry")
	// ErrInvalidCredentials is the generic assessor-path failure; it never
	// reveals whether the email exists.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Directory is the registry surface the gate scans. A manager's "account"
// exists only as a side effect of having at least one assigned record;
// deleting all such records revokes that manager's access.
type Directory interface {
	GetByEmployeeEmail(email string) (assessment.Assessment, error)
	All() []assessment.Assessment
}

// Authenticator resolves submitted credentials to an identity. The interface
// boundary exists so a real identity provider can replace the registry scan
// without touching the handlers.
type Authenticator interface {
	AuthenticateStaff(ctx context.Context, email string) (Identity, error)
	AuthenticateAssessor(ctx context.Context, email, password string) (Identity, error)
}

// RegistryAuthenticator is the default gate: a scan over the registry with
// static password comparison. Passwords stored or configured as bcrypt
// hashes ($2 prefix) are compared with bcrypt; anything else is compared as
// plain text for parity with the historical behavior.
type RegistryAuthenticator struct {
	Directory              Directory
	SuperAdminEmail        string
	MasterPassword         string
	DefaultManagerPassword string
}

func NewRegistryAuthenticator(dir Directory, superAdminEmail, masterPassword, defaultManagerPassword string) *RegistryAuthenticator {
	return &RegistryAuthenticator{
		Directory:              dir,
		SuperAdminEmail:        assessment.NormalizeEmail(superAdminEmail),
		MasterPassword:         masterPassword,
		DefaultManagerPassword: defaultManagerPassword,
	}
}

// AuthenticateStaff resolves an email-only login. The reserved super-admin
// email is accepted even without a registry record.
func (g *RegistryAuthenticator) AuthenticateStaff(ctx context.Context, email string) (Identity, error) {
	normalized := assessment.NormalizeEmail(email)
	if normalized == "" {
		return Anonymous(), ErrEmailNotFound
	}
	if normalized == g.SuperAdminEmail {
		return Identity{Role: RoleStaff, Email: normalized}, nil
	}
	if _, err := g.Directory.GetByEmployeeEmail(normalized); err != nil {
		return Anonymous(), ErrEmailNotFound
	}
	return Identity{Role: RoleStaff, Email: normalized}, nil
}

// AuthenticateAssessor resolves an email/password pair to manager or admin.
func (g *RegistryAuthenticator) AuthenticateAssessor(ctx context.Context, email, password string) (Identity, error) {
	normalized := assessment.NormalizeEmail(email)
	if normalized == "" || password == "" {
		return Anonymous(), ErrInvalidCredentials
	}

	if normalized == g.SuperAdminEmail && matchPassword(g.MasterPassword, password) {
		return Identity{Role: RoleAdmin, Email: normalized}, nil
	}

	for _, rec := range g.Directory.All() {
		if !assessment.SameEmail(rec.ManagerEmail, normalized) {
			continue
		}
		if rec.ManagerPassword == "" {
			if g.DefaultManagerPassword != "" && matchPassword(g.DefaultManagerPassword, password) {
				return Identity{Role: RoleManager, Email: normalized}, nil
			}
			continue
		}
		if matchPassword(rec.ManagerPassword, password) {
			return Identity{Role: RoleManager, Email: normalized}, nil
		}
	}

	return Anonymous(), ErrInvalidCredentials
}

func matchPassword(stored, input string) bool {
	if stored == "" {
		return false
	}
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(input)) == nil
	}
	return stored == input
}
