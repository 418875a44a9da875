package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/starford/changedesk/internal/apperr"
	"github.com/starford/changedesk/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "changedesk-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedProject(t *testing.T, db *DB, id string, tasks ...string) models.IntakeRecord {
	t.Helper()
	effort := 40
	now := time.Now().UTC()
	rec := models.IntakeRecord{
		ID: id,
		IntakeFields: models.IntakeFields{
			ProjectName:   "Project " + id,
			Sponsor:       "COO",
			StrategicGoal: "Efficiency",
			ImpactedUnits: []string{"Finance", "HR"},
		},
		Status:      models.StatusIntake,
		ImpactScore: 8,
		ChangeTier:  "Medium Support",
		EffortScore: &effort,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	var pb []models.PlaybookTask
	for _, d := range tasks {
		pb = append(pb, models.PlaybookTask{Category: "Plan", Description: d, Status: models.TaskToDo})
	}
	if err := db.InsertProject(context.Background(), rec, pb); err != nil {
		t.Fatalf("InsertProject: %v", err)
	}
	return rec
}

func descriptions(tasks []models.PlaybookTask) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Description
	}
	return out
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	for _, table := range []string{"projects", "playbook_tasks", "health_snapshots", "cohorts", "vendors", "leader_diagnostics"} {
		var count int
		if err := db.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&count); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}
}

func TestInsertAndGetProject(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedProject(t, db, "p1", "a", "b", "c")

	got, err := db.GetProject(ctx, "p1")
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if got.ProjectName != "Project p1" || got.ChangeTier != "Medium Support" {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.EffortScore == nil || *got.EffortScore != 40 {
		t.Errorf("effort = %v, want 40", got.EffortScore)
	}
	if len(got.ImpactedUnits) != 2 || got.ImpactedUnits[1] != "HR" {
		t.Errorf("units = %v", got.ImpactedUnits)
	}
	if len(got.Playbook) != 3 || got.Playbook[2].Position != 2 {
		t.Errorf("playbook = %+v", got.Playbook)
	}
}

func TestGetProjectNotFound(t *testing.T) {
	db := testDB(t)
	if _, err := db.GetProject(context.Background(), "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestNullEffortRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	rec := seedProject(t, db, "p1")
	rec.EffortScore = nil
	if err := db.UpdateAssessment(ctx, rec); err != nil {
		t.Fatalf("UpdateAssessment: %v", err)
	}
	got, _ := db.GetProject(ctx, "p1")
	if got.EffortScore != nil {
		t.Errorf("effort = %d, want nil", *got.EffortScore)
	}
}

func TestUpdateAssessmentKeepsPlaybookAndStatus(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	rec := seedProject(t, db, "p1", "a", "b")
	if err := db.UpdateProjectStatus(ctx, "p1", models.StatusActive); err != nil {
		t.Fatal(err)
	}

	rec.ImpactScore = 14
	rec.ChangeTier = "Full Change Management"
	rec.Status = models.StatusIntake
	if err := db.UpdateAssessment(ctx, rec); err != nil {
		t.Fatal(err)
	}
	got, _ := db.GetProject(ctx, "p1")
	if got.ImpactScore != 14 || got.Status != models.StatusActive || len(got.Playbook) != 2 {
		t.Errorf("got %+v", got)
	}
}

func TestUpdateStatusNotFound(t *testing.T) {
	db := testDB(t)
	err := db.UpdateProjectStatus(context.Background(), "nope", models.StatusActive)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteProjectCascades(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedProject(t, db, "p1", "a")
	if _, err := db.InsertSnapshot(ctx, models.HealthSnapshot{ProjectID: "p1", LogDate: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteProject(ctx, "p1"); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	tasks, _ := db.ListTasks(ctx, "p1")
	snaps, _ := db.ListSnapshots(ctx, "p1")
	if len(tasks) != 0 || len(snaps) != 0 {
		t.Errorf("leftovers: %d tasks, %d snapshots", len(tasks), len(snaps))
	}
	if err := db.DeleteProject(ctx, "p1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestDeleteProjectReportsSnapshotFailure(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedProject(t, db, "p1", "a")
	if _, err := db.conn.Exec(`DROP TABLE health_snapshots`); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteProject(ctx, "p1"); err == nil {
		t.Fatal("expected error when snapshots cannot be deleted")
	}
	if _, err := db.GetProject(ctx, "p1"); err != nil {
		t.Errorf("project should survive a failed delete: %v", err)
	}
	if tasks, _ := db.ListTasks(ctx, "p1"); len(tasks) != 1 {
		t.Errorf("playbook should be rolled back, got %d tasks", len(tasks))
	}
}

func TestSearchProjects(t *testing.T) {
	db := testDB(t)
	seedProject(t, db, "p1")
	res, err := db.SearchProjects(context.Background(), "Finance", 10)
	if err != nil {
		t.Fatalf("SearchProjects: %v", err)
	}
	if len(res) != 1 {
		t.Errorf("expected 1 result, got %d", len(res))
	}
	res, _ = db.SearchProjects(context.Background(), "zzz", 10)
	if len(res) != 0 {
		t.Errorf("expected 0 results, got %d", len(res))
	}
}

func TestPlaybookEditing(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedProject(t, db, "p1", "a", "b", "c")

	added, err := db.AddTask(ctx, models.PlaybookTask{ProjectID: "p1", Category: "Extra", Description: "d", Status: models.TaskToDo})
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if added.Position != 3 {
		t.Errorf("position = %d, want 3", added.Position)
	}

	if err := db.MoveTask(ctx, "p1", added.ID, 0); err != nil {
		t.Fatalf("MoveTask: %v", err)
	}
	tasks, _ := db.ListTasks(ctx, "p1")
	if got := descriptions(tasks); got[0] != "d" || got[1] != "a" || got[3] != "c" {
		t.Errorf("order after move = %v", got)
	}

	if err := db.RemoveTask(ctx, "p1", tasks[1].ID); err != nil {
		t.Fatalf("RemoveTask: %v", err)
	}
	tasks, _ = db.ListTasks(ctx, "p1")
	for i, task := range tasks {
		if task.Position != i {
			t.Errorf("task %d has position %d", i, task.Position)
		}
	}
	if got := descriptions(tasks); len(got) != 3 || got[1] != "b" {
		t.Errorf("order after remove = %v", got)
	}
}

func TestMoveTaskClampsPosition(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedProject(t, db, "p1", "a", "b", "c")
	tasks, _ := db.ListTasks(ctx, "p1")
	if err := db.MoveTask(ctx, "p1", tasks[0].ID, 99); err != nil {
		t.Fatal(err)
	}
	tasks, _ = db.ListTasks(ctx, "p1")
	if got := descriptions(tasks); got[2] != "a" {
		t.Errorf("order = %v", got)
	}
}

func TestUpdateTaskStatusIsolated(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedProject(t, db, "p1", "a", "b")
	tasks, _ := db.ListTasks(ctx, "p1")
	if err := db.UpdateTaskStatus(ctx, "p1", tasks[0].ID, models.TaskDone); err != nil {
		t.Fatal(err)
	}
	tasks, _ = db.ListTasks(ctx, "p1")
	if tasks[0].Status != models.TaskDone || tasks[1].Status != models.TaskToDo {
		t.Errorf("statuses = %q, %q", tasks[0].Status, tasks[1].Status)
	}
	if err := db.UpdateTaskStatus(ctx, "other", tasks[0].ID, models.TaskDone); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("cross-project update err = %v", err)
	}
}

func TestReplacePlaybook(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedProject(t, db, "p1", "a", "b")
	err := db.ReplacePlaybook(ctx, "p1", []models.PlaybookTask{{Description: "x", Status: models.TaskToDo}})
	if err != nil {
		t.Fatal(err)
	}
	tasks, _ := db.ListTasks(ctx, "p1")
	if got := descriptions(tasks); len(got) != 1 || got[0] != "x" {
		t.Errorf("playbook = %v", got)
	}
	if err := db.ReplacePlaybook(ctx, "missing", nil); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSnapshotsOrdered(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, pid := range []string{"p1", "p2", "p1"} {
		if _, err := db.InsertSnapshot(ctx, models.HealthSnapshot{
			ProjectID: pid, LogDate: day, Readiness: i + 1, AdoptionRatePct: 10,
		}); err != nil {
			t.Fatal(err)
		}
	}
	all, _ := db.ListSnapshots(ctx, "")
	if len(all) != 3 || all[0].ID >= all[2].ID {
		t.Errorf("all = %+v", all)
	}
	p1, _ := db.ListSnapshots(ctx, "p1")
	if len(p1) != 2 || p1[1].Readiness != 3 {
		t.Errorf("p1 = %+v", p1)
	}
	if !p1[0].LogDate.Equal(day) {
		t.Errorf("log date = %v, want %v", p1[0].LogDate, day)
	}
}

func TestCohortRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	c := models.CohortRecord{
		ID: "c1",
		CohortFields: models.CohortFields{
			CohortName:      "EU Leaders",
			Region:          "Europe",
			ExecutionStatus: models.ExecutionProposed,
			Governance:      models.GovernanceChecklist{Principles: []string{"Fairness"}, ContentVetted: true},
		},
		RecommendedPathway: "Strategic AI Foresight",
		EstimatedBudget:    75000,
		GovernanceStatus:   models.GovernanceIncomplete,
		CreatedAt:          time.Now(),
	}
	if err := db.InsertCohort(ctx, c); err != nil {
		t.Fatalf("InsertCohort: %v", err)
	}
	if err := db.UpdateCohortExecution(ctx, "c1", models.ExecutionPilot); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetCohort(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if got.ExecutionStatus != models.ExecutionPilot || !got.Governance.ContentVetted || len(got.Governance.Principles) != 1 {
		t.Errorf("got %+v", got)
	}
	if _, err := db.GetCohort(ctx, "nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestVendorRegistry(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	if err := db.UpsertVendor(ctx, models.VendorRecord{Name: "Acme", ComplianceRating: models.ComplianceGreen}); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertVendor(ctx, models.VendorRecord{Name: "Acme", ComplianceRating: models.ComplianceRed}); err != nil {
		t.Fatal(err)
	}
	vs, _ := db.ListVendors(ctx)
	if len(vs) != 1 || vs[0].ComplianceRating != models.ComplianceRed {
		t.Errorf("vendors = %+v", vs)
	}

	if err := db.ReplaceVendors(ctx, []models.VendorRecord{{Name: "B"}, {Name: "A"}}); err != nil {
		t.Fatal(err)
	}
	vs, _ = db.ListVendors(ctx)
	if len(vs) != 2 || vs[0].Name != "A" {
		t.Errorf("vendors = %+v", vs)
	}
	if err := db.DeleteVendor(ctx, "Acme"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestDiagnostics(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	d := models.LeaderDiagnostic{ID: "d1", LeaderName: "Sam", EthicalB: "Escalate", SafetyA: 4, CreatedAt: time.Now()}
	if err := db.InsertDiagnostic(ctx, d); err != nil {
		t.Fatal(err)
	}
	ds, err := db.ListDiagnostics(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ds) != 1 || ds[0].EthicalB != "Escalate" || ds[0].SafetyA != 4 {
		t.Errorf("diagnostics = %+v", ds)
	}
}
