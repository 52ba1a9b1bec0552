package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"appraisal/internal/app/server"
	"appraisal/internal/domain/assessment"
	"appraisal/internal/domain/registry"
	"appraisal/internal/platform/config"
)

type memRemote struct {
	records map[string]assessment.Assessment
}

func newMemRemote() *memRemote {
	return &memRemote{records: map[string]assessment.Assessment{}}
}

func (m *memRemote) FetchAll(ctx context.Context) ([]assessment.Assessment, error) {
	out := make([]assessment.Assessment, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec.Clone())
	}
	return out, nil
}

func (m *memRemote) UpsertAll(ctx context.Context, records []assessment.Assessment) error {
	for _, rec := range records {
		if existing, ok := m.records[rec.ID]; ok && existing.Version > rec.Version {
			return fmt.Errorf("upsert %s: %w", rec.ID, registry.ErrStaleRecord)
		}
		m.records[rec.ID] = rec.Clone()
	}
	return nil
}

func (m *memRemote) Delete(ctx context.Context, id string) error {
	delete(m.records, id)
	return nil
}

type memCache struct {
	snapshot []assessment.Assessment
	writes   int
}

func (m *memCache) Read(ctx context.Context) ([]assessment.Assessment, error) {
	return m.snapshot, nil
}

func (m *memCache) Write(ctx context.Context, records []assessment.Assessment) error {
	m.snapshot = records
	m.writes++
	return nil
}

type cannedSummarizer struct{ text string }

func (c cannedSummarizer) Summarize(ctx context.Context, a assessment.Assessment) (string, error) {
	return c.text, nil
}

func testConfig() config.Config {
	return config.Config{
		Addr:                   ":0",
		Environment:            "development",
		JWTSecret:              "journey-test-secret",
		SessionTTL:             time.Hour,
		SuperAdminEmail:        "admin@metabev.com",
		MasterPassword:         "master-pass",
		DefaultManagerPassword: "Password123",
		MaxBodyBytes:           1 << 20,
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *memRemote) {
	t.Helper()

	remote := newMemRemote()
	app, err := server.New(context.Background(), testConfig(),
		server.WithLocalCache(&memCache{}),
		server.WithRemoteStore(remote),
		server.WithSummarizer(cannedSummarizer{text: "Strong year overall."}),
	)
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	t.Cleanup(app.Close)

	srv := httptest.NewServer(app.Router)
	t.Cleanup(srv.Close)
	return srv, remote
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	RequestID string `json:"requestId"`
}

func call(t *testing.T, srv *httptest.Server, method, path, token string, body []byte) (int, envelope) {
	t.Helper()

	req, err := http.NewRequest(method, srv.URL+path, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode envelope: %v", method, path, err)
	}
	return resp.StatusCode, env
}

func callJSON(t *testing.T, srv *httptest.Server, method, path, token string, payload any) (int, envelope) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return call(t, srv, method, path, token, body)
}

func login(t *testing.T, srv *httptest.Server, path string, payload any) (token, role string) {
	t.Helper()

	status, env := callJSON(t, srv, http.MethodPost, path, "", payload)
	if status != http.StatusOK {
		t.Fatalf("login %s: got status %d, error %+v", path, status, env.Error)
	}
	var out struct {
		Token string `json:"token"`
		Role  string `json:"role"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return out.Token, out.Role
}

const rosterCSV = `Full Name,Email,KPI 1,KPI 2,KPI 3,KPI 4,KPI 5,Manager Name,Manager Email
Jane Doe,jane@metabev.com,Grow regional revenue,Improve onboarding,,,,Sam Lee,sam@metabev.com
too,short
`

func TestAppraisalJourney(t *testing.T) {
	srv, remote := newTestServer(t)

	adminToken, role := login(t, srv, "/api/v1/auth/assessor-login", map[string]string{
		"email":    "admin@metabev.com",
		"password": "master-pass",
	})
	if role != "admin" {
		t.Fatalf("master login role = %q, want admin", role)
	}

	// Roster import creates one record and reports the malformed row.
	status, env := call(t, srv, http.MethodPost, "/api/v1/roster/import", adminToken, []byte(rosterCSV))
	if status != http.StatusOK {
		t.Fatalf("import status = %d, error %+v", status, env.Error)
	}
	var imported struct {
		Imported int `json:"imported"`
		Created  int `json:"created"`
		Updated  int `json:"updated"`
		Skipped  []struct {
			Line   int    `json:"line"`
			Reason string `json:"reason"`
		} `json:"skipped"`
	}
	if err := json.Unmarshal(env.Data, &imported); err != nil {
		t.Fatalf("decode import result: %v", err)
	}
	if imported.Created != 1 || imported.Updated != 0 {
		t.Fatalf("import created/updated = %d/%d, want 1/0", imported.Created, imported.Updated)
	}
	if len(imported.Skipped) != 1 {
		t.Fatalf("skipped rows = %d, want 1", len(imported.Skipped))
	}

	// Staff login is case-insensitive on email.
	staffToken, role := login(t, srv, "/api/v1/auth/staff-login", map[string]string{
		"email": "JANE@Metabev.com",
	})
	if role != "staff" {
		t.Fatalf("staff login role = %q, want staff", role)
	}

	status, env = call(t, srv, http.MethodGet, "/api/v1/assessments/me", staffToken, nil)
	if status != http.StatusOK {
		t.Fatalf("get own assessment status = %d, error %+v", status, env.Error)
	}
	var own assessment.Assessment
	if err := json.Unmarshal(env.Data, &own); err != nil {
		t.Fatalf("decode assessment: %v", err)
	}
	if own.Status != assessment.StatusDraft {
		t.Fatalf("fresh assessment status = %q, want draft", own.Status)
	}
	if own.ManagerPassword != "" {
		t.Fatal("manager password leaked through the staff view")
	}
	if len(own.KPIs) != 2 {
		t.Fatalf("seeded KPIs = %d, want 2", len(own.KPIs))
	}

	// Save a self draft; manager fields in the payload must be ignored.
	working := own.Clone()
	working.KPIs[0].SelfRating = assessment.RatingMeets
	working.KPIs[0].SelfComments = "Opened two new accounts."
	working.OverallPerformance.SelfComments = "Solid progress against targets."
	working.OverallPerformance.ManagerRating = assessment.RatingOutstanding

	status, env = callJSON(t, srv, http.MethodPut, "/api/v1/assessments/"+own.ID+"/draft", staffToken, working)
	if status != http.StatusOK {
		t.Fatalf("save draft status = %d, error %+v", status, env.Error)
	}
	var saved assessment.Assessment
	if err := json.Unmarshal(env.Data, &saved); err != nil {
		t.Fatalf("decode saved draft: %v", err)
	}
	if saved.KPIs[0].SelfComments != "Opened two new accounts." {
		t.Fatal("self comments did not persist")
	}
	if saved.OverallPerformance.ManagerRating != "" {
		t.Fatal("self draft wrote a manager-only field")
	}

	status, env = call(t, srv, http.MethodPost, "/api/v1/assessments/"+own.ID+"/submit", staffToken, nil)
	if status != http.StatusOK {
		t.Fatalf("submit status = %d, error %+v", status, env.Error)
	}

	// Editing after submission is rejected as an invalid state.
	status, env = callJSON(t, srv, http.MethodPut, "/api/v1/assessments/"+own.ID+"/draft", staffToken, working)
	if status != http.StatusConflict {
		t.Fatalf("post-submit draft save status = %d, want 409", status)
	}
	if env.Error == nil || env.Error.Code != "invalid_state" {
		t.Fatalf("post-submit draft save error = %+v, want invalid_state", env.Error)
	}

	// Staff tokens cannot reach the review console.
	status, _ = call(t, srv, http.MethodGet, "/api/v1/review/queue", staffToken, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("staff review queue status = %d, want 401", status)
	}

	// Manager signs in with the shared default password.
	managerToken, role := login(t, srv, "/api/v1/auth/assessor-login", map[string]string{
		"email":    "sam@metabev.com",
		"password": "Password123",
	})
	if role != "manager" {
		t.Fatalf("manager login role = %q, want manager", role)
	}

	status, env = call(t, srv, http.MethodGet, "/api/v1/review/queue", managerToken, nil)
	if status != http.StatusOK {
		t.Fatalf("review queue status = %d, error %+v", status, env.Error)
	}
	var queue []assessment.Assessment
	if err := json.Unmarshal(env.Data, &queue); err != nil {
		t.Fatalf("decode queue: %v", err)
	}
	if len(queue) != 1 || queue[0].ID != own.ID {
		t.Fatalf("queue = %d records, want the submitted one", len(queue))
	}

	// Finalizing without a final grade is refused.
	status, env = call(t, srv, http.MethodPost, "/api/v1/review/"+own.ID+"/finalize", managerToken, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("grade-less finalize status = %d, want 400", status)
	}
	if env.Error == nil || env.Error.Code != "missing_final_grade" {
		t.Fatalf("grade-less finalize error = %+v, want missing_final_grade", env.Error)
	}

	review := queue[0].Clone()
	review.KPIs[0].ManagerRating = assessment.RatingExceeds
	review.KPIs[0].ManagerComments = "Ahead of plan."
	review.OverallPerformance.ManagerRating = assessment.RatingExceeds
	review.OverallPerformance.ManagerComments = "Promote next cycle."

	status, env = callJSON(t, srv, http.MethodPost, "/api/v1/review/"+own.ID+"/finalize", managerToken, review)
	if status != http.StatusOK {
		t.Fatalf("finalize status = %d, error %+v", status, env.Error)
	}
	var reviewed assessment.Assessment
	if err := json.Unmarshal(env.Data, &reviewed); err != nil {
		t.Fatalf("decode reviewed record: %v", err)
	}
	if reviewed.Status != assessment.StatusReviewed || reviewed.ReviewedAt == nil {
		t.Fatalf("finalized record status = %q, reviewedAt = %v", reviewed.Status, reviewed.ReviewedAt)
	}
	if reviewed.KPIs[0].SelfComments != "Opened two new accounts." {
		t.Fatal("finalize dropped the employee's self comments")
	}

	// AI summary comes back through the configured summarizer.
	status, env = call(t, srv, http.MethodPost, "/api/v1/review/"+own.ID+"/summary", managerToken, nil)
	if status != http.StatusOK {
		t.Fatalf("summary status = %d, error %+v", status, env.Error)
	}
	var summary struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal(env.Data, &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Summary != "Strong year overall." {
		t.Fatalf("summary = %q", summary.Summary)
	}

	// Every accepted write reached the remote store with a bumped version.
	stored, ok := remote.records[own.ID]
	if !ok {
		t.Fatal("record never reached the remote store")
	}
	if stored.Status != assessment.StatusReviewed {
		t.Fatalf("remote status = %q, want reviewed", stored.Status)
	}
	if stored.Version < 3 {
		t.Fatalf("remote version = %d, want at least 3", stored.Version)
	}
}

func TestAdminExportsAndDelete(t *testing.T) {
	srv, _ := newTestServer(t)

	adminToken, _ := login(t, srv, "/api/v1/auth/assessor-login", map[string]string{
		"email":    "admin@metabev.com",
		"password": "master-pass",
	})

	status, env := call(t, srv, http.MethodPost, "/api/v1/roster/import", adminToken, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("empty import status = %d, want 400", status)
	}
	if env.Error == nil || env.Error.Code != "invalid_roster" {
		t.Fatalf("empty import error = %+v, want invalid_roster", env.Error)
	}

	status, env = call(t, srv, http.MethodPost, "/api/v1/roster/import", adminToken, []byte(rosterCSV))
	if status != http.StatusOK {
		t.Fatalf("import status = %d, error %+v", status, env.Error)
	}

	// The roster endpoints are closed to non-admin tokens.
	staffToken, _ := login(t, srv, "/api/v1/auth/staff-login", map[string]string{"email": "jane@metabev.com"})
	status, _ = call(t, srv, http.MethodGet, "/api/v1/roster/", staffToken, nil)
	if status != http.StatusForbidden {
		t.Fatalf("staff roster list status = %d, want 403", status)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/roster/export.csv", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("export content type = %q", ct)
	}

	// Backup carries the full registry and restore round-trips it.
	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/api/v1/roster/backup", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err = srv.Client().Do(req)
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	var backup []assessment.Assessment
	if err := json.NewDecoder(resp.Body).Decode(&backup); err != nil {
		t.Fatalf("decode backup: %v", err)
	}
	resp.Body.Close()
	if len(backup) != 1 {
		t.Fatalf("backup records = %d, want 1", len(backup))
	}

	backupBody, _ := json.Marshal(backup)
	status, env = call(t, srv, http.MethodPost, "/api/v1/roster/restore", adminToken, backupBody)
	if status != http.StatusOK {
		t.Fatalf("restore status = %d, error %+v", status, env.Error)
	}

	status, env = call(t, srv, http.MethodDelete, "/api/v1/roster/"+backup[0].ID, adminToken, nil)
	if status != http.StatusOK {
		t.Fatalf("delete status = %d, error %+v", status, env.Error)
	}
	status, env = call(t, srv, http.MethodDelete, "/api/v1/roster/"+backup[0].ID, adminToken, nil)
	if status != http.StatusNotFound {
		t.Fatalf("repeat delete status = %d, want 404", status)
	}

	// The deleted employee can no longer sign in.
	status, env = callJSON(t, srv, http.MethodPost, "/api/v1/auth/staff-login", "", map[string]string{
		"email": "jane@metabev.com",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("deleted staff login status = %d, want 401", status)
	}
	if env.Error == nil || env.Error.Code != "email_not_found" {
		t.Fatalf("deleted staff login error = %+v", env.Error)
	}
}
