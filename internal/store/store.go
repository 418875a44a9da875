package store

import (
	"context"

	"github.com/starford/changedesk/internal/models"
)

// ChangeStore defines the persistence operations used by the service layer.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
//
// There is no operation that writes a tier without its score: derived fields
// only enter through InsertProject and UpdateAssessment with a full record.
type ChangeStore interface {
	InsertProject(ctx context.Context, rec models.IntakeRecord, playbook []models.PlaybookTask) error
	UpdateAssessment(ctx context.Context, rec models.IntakeRecord) error
	UpdateProjectStatus(ctx context.Context, id, status string) error
	GetProject(ctx context.Context, id string) (*models.IntakeRecord, error)
	ListProjects(ctx context.Context) ([]models.IntakeRecord, error)
	DeleteProject(ctx context.Context, id string) error
	SearchProjects(ctx context.Context, query string, limit int) ([]models.IntakeRecord, error)

	ListTasks(ctx context.Context, projectID string) ([]models.PlaybookTask, error)
	ReplacePlaybook(ctx context.Context, projectID string, tasks []models.PlaybookTask) error
	AddTask(ctx context.Context, task models.PlaybookTask) (models.PlaybookTask, error)
	UpdateTaskStatus(ctx context.Context, projectID string, taskID int64, status string) error
	RemoveTask(ctx context.Context, projectID string, taskID int64) error
	MoveTask(ctx context.Context, projectID string, taskID int64, position int) error

	InsertSnapshot(ctx context.Context, s models.HealthSnapshot) (int64, error)
	ListSnapshots(ctx context.Context, projectID string) ([]models.HealthSnapshot, error)

	InsertCohort(ctx context.Context, c models.CohortRecord) error
	GetCohort(ctx context.Context, id string) (*models.CohortRecord, error)
	ListCohorts(ctx context.Context) ([]models.CohortRecord, error)
	UpdateCohortExecution(ctx context.Context, id, status string) error

	ListVendors(ctx context.Context) ([]models.VendorRecord, error)
	UpsertVendor(ctx context.Context, v models.VendorRecord) error
	DeleteVendor(ctx context.Context, name string) error
	ReplaceVendors(ctx context.Context, vendors []models.VendorRecord) error

	InsertDiagnostic(ctx context.Context, d models.LeaderDiagnostic) error
	ListDiagnostics(ctx context.Context) ([]models.LeaderDiagnostic, error)

	Ping(ctx context.Context) error
	Close() error
}

// Verify *DB satisfies ChangeStore at compile time.
var _ ChangeStore = (*DB)(nil)
