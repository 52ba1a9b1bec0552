package auth

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"appraisal/internal/domain/assessment"
	"appraisal/internal/domain/registry"
)

type fakeDirectory struct {
	records []assessment.Assessment
}

func (f *fakeDirectory) GetByEmployeeEmail(email string) (assessment.Assessment, error) {
	for _, rec := range f.records {
		if assessment.SameEmail(rec.EmployeeDetails.Email, email) {
			return rec, nil
		}
	}
	return assessment.Assessment{}, registry.ErrNotFound
}

func (f *fakeDirectory) All() []assessment.Assessment {
	return f.records
}

func gateFixture() (*RegistryAuthenticator, *fakeDirectory) {
	dir := &fakeDirectory{records: []assessment.Assessment{
		assessment.NewBlank("Jane Doe", "Jane@Co.com", "Mark Lee", "M@Co.com", []string{"x"}, "mark-pw"),
		assessment.NewBlank("Sam Po", "sam@co.com", "No Password", "np@co.com", []string{"y"}, ""),
	}}
	return NewRegistryAuthenticator(dir, "admin@co.com", "master-pw", "default-pw"), dir
}

func TestStaffLoginCaseInsensitive(t *testing.T) {
	gate, _ := gateFixture()

	id, err := gate.AuthenticateStaff(context.Background(), "jane@co.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Role != RoleStaff || id.Email != "jane@co.com" {
		t.Fatalf("expected staff identity for jane, got %+v", id)
	}
}

func TestStaffLoginUnknownEmail(t *testing.T) {
	gate, _ := gateFixture()

	if _, err := gate.AuthenticateStaff(context.Background(), "nobody@co.com"); err != ErrEmailNotFound {
		t.Fatalf("expected ErrEmailNotFound, got %v", err)
	}
}

func TestStaffLoginSuperAdminEmail(t *testing.T) {
	gate, _ := gateFixture()

	id, err := gate.AuthenticateStaff(context.Background(), "Admin@Co.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Role != RoleStaff {
		t.Fatalf("super-admin email must pass the staff path, got %+v", id)
	}
}

func TestAssessorLoginMaster(t *testing.T) {
	gate, _ := gateFixture()

	id, err := gate.AuthenticateAssessor(context.Background(), "admin@co.com", "master-pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Role != RoleAdmin {
		t.Fatalf("expected admin, got %+v", id)
	}
}

func TestAssessorLoginManagerPassword(t *testing.T) {
	gate, _ := gateFixture()

	id, err := gate.AuthenticateAssessor(context.Background(), "m@co.com", "mark-pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Role != RoleManager || id.Email != "m@co.com" {
		t.Fatalf("expected manager identity, got %+v", id)
	}
}

func TestAssessorLoginDefaultPassword(t *testing.T) {
	gate, _ := gateFixture()

	id, err := gate.AuthenticateAssessor(context.Background(), "np@co.com", "default-pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Role != RoleManager {
		t.Fatalf("default password must apply to records without one, got %+v", id)
	}
}

func TestAssessorFailuresAreGeneric(t *testing.T) {
	gate, _ := gateFixture()
	ctx := context.Background()

	if _, err := gate.AuthenticateAssessor(ctx, "m@co.com", "wrong"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := gate.AuthenticateAssessor(ctx, "nobody@co.com", "whatever"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
	if _, err := gate.AuthenticateAssessor(ctx, "admin@co.com", "wrong"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for bad master password, got %v", err)
	}
}

func TestAssessorRevokedWhenNoRecordsRemain(t *testing.T) {
	gate, dir := gateFixture()
	dir.records = nil

	if _, err := gate.AuthenticateAssessor(context.Background(), "m@co.com", "mark-pw"); err != ErrInvalidCredentials {
		t.Fatalf("a manager with no assigned records must be rejected, got %v", err)
	}
}

func TestBcryptStoredPasswords(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("master-pw"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gate, _ := gateFixture()
	gate.MasterPassword = string(hash)

	id, err := gate.AuthenticateAssessor(context.Background(), "admin@co.com", "master-pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Role != RoleAdmin {
		t.Fatalf("expected admin via bcrypt hash, got %+v", id)
	}
	if _, err := gate.AuthenticateAssessor(context.Background(), "admin@co.com", "wrong"); err != ErrInvalidCredentials {
		t.Fatalf("expected rejection for wrong password against hash, got %v", err)
	}
}

func TestScope(t *testing.T) {
	_, dir := gateFixture()
	records := dir.All()

	admin := Identity{Role: RoleAdmin, Email: "admin@co.com"}
	if got := Scope(admin, records); len(got) != len(records) {
		t.Fatalf("admin must see all records, got %d", len(got))
	}

	manager := Identity{Role: RoleManager, Email: "m@co.com"}
	scoped := Scope(manager, records)
	if len(scoped) != 1 || !assessment.SameEmail(scoped[0].ManagerEmail, "m@co.com") {
		t.Fatalf("manager must see exactly the assigned subset, got %d", len(scoped))
	}

	staff := Identity{Role: RoleStaff, Email: "jane@co.com"}
	scoped = Scope(staff, records)
	if len(scoped) != 1 || !assessment.SameEmail(scoped[0].EmployeeDetails.Email, "jane@co.com") {
		t.Fatalf("staff must see only their own record, got %d", len(scoped))
	}

	anon := Anonymous()
	if got := Scope(anon, records); len(got) != 0 {
		t.Fatalf("unauthenticated must see nothing, got %d", len(got))
	}
}
