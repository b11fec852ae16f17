package review

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	domainreview "reeldesk/internal/domain/review"
	"reeldesk/internal/infrastructure/permission"
	"reeldesk/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "reeldesk/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "reeldesk/internal/infrastructure/persistence/sqlite/uow"
	"reeldesk/internal/ports"
)

type recordingNotifier struct {
	mu      sync.Mutex
	records []ports.TransitionRecord
}

func (n *recordingNotifier) TransitionCommitted(_ context.Context, record ports.TransitionRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.records = append(n.records, record)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.records)
}

type denyAllGate struct{}

func (denyAllGate) Check(context.Context, string, domainreview.Role, domainreview.Action) (bool, error) {
	return false, nil
}

func setupService(t *testing.T) (*Service, *recordingNotifier) {
	t.Helper()

	svc, notifier, _ := setupServiceWithDB(t)
	return svc, notifier
}

func setupServiceWithDB(t *testing.T) (*Service, *recordingNotifier, *gorm.DB) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "review.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	// sqlite allows one writer; a single conn keeps the bulk worker pool from
	// tripping over busy errors.
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&model.Submission{}, &model.Transition{}, &model.ReviewKV{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	notifier := &recordingNotifier{}
	svc := NewService(
		sqliterepo.NewSubmissionRepository(db),
		sqliteuow.NewUnitOfWork(db),
		permission.NewDefaultGate(),
		notifier,
		nil,
	)
	return svc, notifier, db
}

func createTestSubmission(t *testing.T, svc *Service, ctx context.Context) ports.Submission {
	t.Helper()

	created, err := svc.CreateSubmission(ctx, CreateSubmissionInput{
		CampaignID:      "camp-1",
		CreatorID:       "creator-1",
		ContentURL:      "https://videos.example/v/demo",
		DurationSeconds: 120,
	})
	if err != nil {
		t.Fatalf("create submission: %v", err)
	}
	return created
}

func mustApply(t *testing.T, svc *Service, ctx context.Context, input ApplyActionInput) ApplyActionResult {
	t.Helper()

	result, err := svc.ApplyAction(ctx, input)
	if err != nil {
		t.Fatalf("ApplyAction(%s) error = %v", input.Action, err)
	}
	return result
}
