package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/starford/changedesk/internal/changeservice"
	"github.com/starford/changedesk/internal/models"
	"github.com/starford/changedesk/internal/narrative"
	"github.com/starford/changedesk/internal/portfolio"
	"github.com/starford/changedesk/internal/registry"
	"github.com/starford/changedesk/internal/testutil"
)

// testEnv sets up a temp SQLite DB, report archive, service and router.
// A non-empty authToken enables token mode.
func testEnv(t *testing.T, authToken string) (*changeservice.Service, http.Handler) {
	t.Helper()
	svc := changeservice.New(testutil.TestDB(t),
		changeservice.WithArchive(testutil.TestArchive(t)),
		changeservice.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if _, err := svc.SeedVendors(context.Background(), registry.Defaults()); err != nil {
		t.Fatalf("SeedVendors: %v", err)
	}
	return svc, NewRouter(svc, authToken != "", authToken, nil)
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rd)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func intake() models.IntakeFields {
	return models.IntakeFields{
		ProjectName:        "CRM Rollout",
		Sponsor:            "COO",
		ChangeType:         "New IT System",
		Scale:              "50-250 people",
		ImpactDepth:        "A few new steps",
		ChangeHistory:      "First time",
		StrategicGoal:      "Growth",
		ImpactedUnits:      []string{"Sales", "Support"},
		BehaviouralBarrier: models.BarrierOpportunity,
	}
}

func createProject(t *testing.T, h http.Handler) models.IntakeRecord {
	t.Helper()
	w := do(t, h, http.MethodPost, "/projects", ProjectRequest{IntakeFields: intake()})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	return decode[models.IntakeRecord](t, w)
}

func TestSubmitAndGetProject(t *testing.T) {
	_, router := testEnv(t, "")
	rec := createProject(t, router)

	// 4 + 2 + 2 + 1 = 9 lands in the medium band.
	if rec.ImpactScore != 9 {
		t.Errorf("impact score = %d, want 9", rec.ImpactScore)
	}
	if rec.ChangeTier != "Medium Support" {
		t.Errorf("tier = %q, want Medium Support", rec.ChangeTier)
	}
	if len(rec.Playbook) == 0 {
		t.Error("expected seeded playbook")
	}

	w := do(t, router, http.MethodGet, "/projects/"+rec.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	got := decode[models.IntakeRecord](t, w)
	if got.ProjectName != "CRM Rollout" {
		t.Errorf("name = %q", got.ProjectName)
	}
}

func TestSubmitProjectValidation(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/projects", map[string]string{"sponsor": "CFO"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing name status = %d, want 400", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/projects", strings.NewReader("{not json"))
	rw := httptest.NewRecorder()
	router.ServeHTTP(rw, req)
	if rw.Code != http.StatusBadRequest {
		t.Errorf("bad json status = %d, want 400", rw.Code)
	}
}

func TestGetProjectNotFound(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodGet, "/projects/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestProjectLifecycle(t *testing.T) {
	_, router := testEnv(t, "")
	rec := createProject(t, router)

	w := do(t, router, http.MethodPut, "/projects/"+rec.ID+"/status", StatusRequest{Status: models.StatusActive})
	if w.Code != http.StatusNoContent {
		t.Fatalf("status update = %d, body = %s", w.Code, w.Body.String())
	}
	w = do(t, router, http.MethodPut, "/projects/"+rec.ID+"/status", StatusRequest{Status: "Paused"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown status = %d, want 400", w.Code)
	}

	edited := intake()
	edited.ChangeType = "Comms Only"
	w = do(t, router, http.MethodPut, "/projects/"+rec.ID, ProjectRequest{IntakeFields: edited})
	if w.Code != http.StatusOK {
		t.Fatalf("retriage = %d, body = %s", w.Code, w.Body.String())
	}
	got := decode[models.IntakeRecord](t, w)
	if got.ImpactScore != 6 {
		t.Errorf("retriaged score = %d, want 6", got.ImpactScore)
	}
	if got.Status != models.StatusActive {
		t.Errorf("status = %q, retriage must keep it", got.Status)
	}

	w = do(t, router, http.MethodDelete, "/projects/"+rec.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", w.Code)
	}
	w = do(t, router, http.MethodDelete, "/projects/"+rec.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
}

func TestPlaybookEndpoints(t *testing.T) {
	_, router := testEnv(t, "")
	rec := createProject(t, router)
	base := "/projects/" + rec.ID + "/tasks"

	w := do(t, router, http.MethodPost, base, TaskRequest{Category: "Custom", Description: "Brief the union"})
	if w.Code != http.StatusCreated {
		t.Fatalf("add = %d, body = %s", w.Code, w.Body.String())
	}
	added := decode[models.PlaybookTask](t, w)
	if added.Position != len(rec.Playbook) {
		t.Errorf("position = %d, want %d", added.Position, len(rec.Playbook))
	}

	w = do(t, router, http.MethodPut, base+"/"+itoa(added.ID)+"/position", map[string]int{"position": 0})
	if w.Code != http.StatusNoContent {
		t.Fatalf("move = %d, body = %s", w.Code, w.Body.String())
	}
	w = do(t, router, http.MethodPut, base+"/"+itoa(added.ID)+"/status", StatusRequest{Status: models.TaskDone})
	if w.Code != http.StatusNoContent {
		t.Fatalf("task status = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodGet, base, nil)
	tasks := decode[struct {
		Tasks []models.PlaybookTask `json:"tasks"`
	}](t, w).Tasks
	if tasks[0].ID != added.ID || tasks[0].Status != models.TaskDone {
		t.Errorf("first task = %+v", tasks[0])
	}

	w = do(t, router, http.MethodPut, base+"/"+itoa(added.ID)+"/position", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("move without position = %d, want 400", w.Code)
	}
	w = do(t, router, http.MethodDelete, base+"/abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad task id = %d, want 400", w.Code)
	}
	w = do(t, router, http.MethodDelete, base+"/"+itoa(added.ID), nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("remove = %d", w.Code)
	}

	w = do(t, router, http.MethodPost, "/projects/"+rec.ID+"/playbook/regenerate", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("regenerate = %d", w.Code)
	}
}

func TestSnapshotsAndPortfolio(t *testing.T) {
	_, router := testEnv(t, "")
	rec := createProject(t, router)

	w := do(t, router, http.MethodPost, "/projects/"+rec.ID+"/snapshots", SnapshotRequest{
		LogDate: "2026-03-01", Readiness: 4, Sentiment: 3, ManagerConfidence: 5, AdoptionRatePct: 40,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("snapshot = %d, body = %s", w.Code, w.Body.String())
	}
	w = do(t, router, http.MethodPost, "/projects/"+rec.ID+"/snapshots", SnapshotRequest{LogDate: "March", Readiness: 4, Sentiment: 3, ManagerConfidence: 5})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad date = %d, want 400", w.Code)
	}
	w = do(t, router, http.MethodPost, "/projects/"+rec.ID+"/snapshots", SnapshotRequest{Readiness: 9, Sentiment: 3, ManagerConfidence: 5})
	if w.Code != http.StatusBadRequest {
		t.Errorf("readiness out of range = %d, want 400", w.Code)
	}

	w = do(t, router, http.MethodGet, "/snapshots", nil)
	snaps := decode[struct {
		Snapshots []models.HealthSnapshot `json:"snapshots"`
	}](t, w).Snapshots
	if len(snaps) != 1 {
		t.Fatalf("snapshots = %d, want 1", len(snaps))
	}

	w = do(t, router, http.MethodGet, "/portfolio", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("portfolio = %d", w.Code)
	}
	m := decode[portfolio.Metrics](t, w)
	if m.TotalProjects != 1 {
		t.Errorf("total = %d", m.TotalProjects)
	}
	if m.Health.Readiness == nil || *m.Health.Readiness != 4 {
		t.Errorf("readiness average = %v", m.Health.Readiness)
	}

	w = do(t, router, http.MethodGet, "/portfolio?sponsor=Nobody", nil)
	if got := decode[portfolio.Metrics](t, w).TotalProjects; got != 0 {
		t.Errorf("filtered total = %d, want 0", got)
	}
}

func TestCohortEndpoints(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/cohorts", CohortRequest{CohortFields: models.CohortFields{
		CohortName:     "EU Managers",
		Region:         "Europe",
		AudienceLevel:  "Senior Leader",
		SelectedVendor: "Center for Creative Leadership",
		BaselineScore:  4,
		TargetScore:    6,
	}})
	if w.Code != http.StatusCreated {
		t.Fatalf("cohort = %d, body = %s", w.Code, w.Body.String())
	}
	out := decode[changeservice.CohortOutcome](t, w)
	if out.Finding == nil {
		t.Fatal("expected a GDPR finding")
	}
	if out.Gap.Delta != 2 {
		t.Errorf("gap delta = %d", out.Gap.Delta)
	}

	w = do(t, router, http.MethodPut, "/cohorts/"+out.Cohort.ID+"/execution", StatusRequest{Status: models.ExecutionPilot})
	if w.Code != http.StatusNoContent {
		t.Fatalf("execution = %d, body = %s", w.Code, w.Body.String())
	}
	w = do(t, router, http.MethodGet, "/cohorts/"+out.Cohort.ID, nil)
	if got := decode[models.CohortRecord](t, w); got.ExecutionStatus != models.ExecutionPilot {
		t.Errorf("execution status = %q", got.ExecutionStatus)
	}

	w = do(t, router, http.MethodGet, "/portfolio/cohorts", nil)
	if w.Code != http.StatusOK {
		t.Errorf("cohort portfolio = %d", w.Code)
	}
}

func TestComplianceAndVendors(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/compliance/check", ComplianceRequest{Region: "Europe", Vendor: "Gartner"})
	if got := decode[map[string]any](t, w); got["risk"] != false {
		t.Errorf("Gartner in Europe = %v", got)
	}
	w = do(t, router, http.MethodPost, "/compliance/check", ComplianceRequest{Region: "Global"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing vendor = %d, want 400", w.Code)
	}

	w = do(t, router, http.MethodPut, "/vendors/Acme", models.VendorRecord{ComplianceRating: models.ComplianceRed})
	if w.Code != http.StatusNoContent {
		t.Fatalf("upsert = %d, body = %s", w.Code, w.Body.String())
	}
	w = do(t, router, http.MethodPost, "/compliance/check", ComplianceRequest{Region: "Global", Vendor: "Acme"})
	if got := decode[map[string]any](t, w); got["risk"] != true {
		t.Errorf("red vendor = %v", got)
	}

	w = do(t, router, http.MethodDelete, "/vendors/Acme", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete vendor = %d", w.Code)
	}
	w = do(t, router, http.MethodDelete, "/vendors/Acme", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
}

func TestGap(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodGet, "/gap?baseline=2&target=8", nil)
	got := decode[map[string]any](t, w)
	if got["tag"] != "Critical Shift" {
		t.Errorf("tag = %v", got["tag"])
	}
	w = do(t, router, http.MethodGet, "/gap?baseline=x", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad gap = %d, want 400", w.Code)
	}
}

func TestNarrativeWithoutKeyIsArchived(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/narratives/friction", TextsRequest{Items: []string{"Three approvals for a laptop"}})
	if w.Code != http.StatusOK {
		t.Fatalf("friction = %d, body = %s", w.Code, w.Body.String())
	}
	res := decode[changeservice.NarrativeResult](t, w)
	if !res.Failed || res.Text != narrative.MsgMissingKey {
		t.Errorf("draft = %+v", res.Draft)
	}
	if res.Report == nil {
		t.Fatal("expected archived report")
	}

	w = do(t, router, http.MethodGet, "/reports/"+res.Report.Path, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get report = %d", w.Code)
	}
	rep := decode[models.Report](t, w)
	if !rep.Failed || !strings.Contains(rep.Body, "API key is missing") {
		t.Errorf("report = %+v", rep)
	}

	w = do(t, router, http.MethodGet, "/reports?kind="+narrative.PromptFrictionAnalysis, nil)
	list := decode[struct {
		Reports []models.Report `json:"reports"`
	}](t, w).Reports
	if len(list) != 1 {
		t.Errorf("reports = %d, want 1", len(list))
	}

	w = do(t, router, http.MethodPost, "/narratives/friction", TextsRequest{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty notes = %d, want 400", w.Code)
	}
}

func TestDevelopLeader(t *testing.T) {
	_, router := testEnv(t, "")
	in := changeservice.LeaderDiagnosticInput{
		LeaderName: "Sam", RoleLevel: "Manager", LOCScore: 6, AmbidextrousScore: 5, COMBScore: 4,
		PrimaryBarrier: models.BarrierMotivation, EthicalA: 3, SafetyA: 2, SafetyB: 3,
		CollabA: 4, CollabB: 4, GrowthA: 2, GrowthB: 3,
	}
	w := do(t, router, http.MethodPost, "/leaders", in)
	if w.Code != http.StatusCreated {
		t.Fatalf("leader = %d, body = %s", w.Code, w.Body.String())
	}
	in.SafetyA = 7
	w = do(t, router, http.MethodPost, "/leaders", in)
	if w.Code != http.StatusBadRequest {
		t.Errorf("out of range answer = %d, want 400", w.Code)
	}
	w = do(t, router, http.MethodGet, "/leaders", nil)
	got := decode[struct {
		Diagnostics []models.LeaderDiagnostic `json:"diagnostics"`
	}](t, w).Diagnostics
	if len(got) != 1 {
		t.Errorf("diagnostics = %d, want 1", len(got))
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	_, router := testEnv(t, "")
	createProject(t, router)

	w := do(t, router, http.MethodGet, "/search", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty query = %d, want 400", w.Code)
	}
	w = do(t, router, http.MethodGet, "/search?q=Sales", nil)
	got := decode[struct {
		Results []models.IntakeRecord `json:"results"`
	}](t, w).Results
	if len(got) != 1 {
		t.Errorf("results = %d, want 1", len(got))
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret")
	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	_, router := testEnv(t, "secret")
	for _, header := range []string{"", "Bearer wrong", "secret"} {
		req := httptest.NewRequest(http.MethodGet, "/projects", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, w.Code)
		}
	}
}

func itoa(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
