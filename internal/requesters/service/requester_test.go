package service

import (
	"context"
	"testing"
	"time"

	requestererrors "roomly/internal/requesters/errors"
	"roomly/internal/requesters/validator"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/logger"
	"roomly/pkg/model"
)

const testRequesterID = "64a1b2c3d4e5f6a7b8c9d0e2"

// ────────────────────────────────────────────────
// Mocks
// ────────────────────────────────────────────────

type mockRequesterRepository struct {
	createFunc      func(ctx context.Context, requester *model.Requester) error
	findByIDFunc    func(ctx context.Context, id string) (*model.Requester, error)
	findByEmailFunc func(ctx context.Context, email string) (*model.Requester, error)
	findAllFunc     func(ctx context.Context, limit int, offset int64) ([]*model.Requester, error)
	countFunc       func(ctx context.Context) (int64, error)
	updateFunc      func(ctx context.Context, id string, requester *model.Requester) error
	deleteFunc      func(ctx context.Context, id string) error
}

func (m *mockRequesterRepository) Create(ctx context.Context, requester *model.Requester) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, requester)
	}
	requester.ID = testRequesterID
	return nil
}

func (m *mockRequesterRepository) FindByID(ctx context.Context, id string) (*model.Requester, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Requester{ID: id, Name: "Ada", Email: "ada@example.com", Role: "engineer"}, nil
}

func (m *mockRequesterRepository) FindByEmail(ctx context.Context, email string) (*model.Requester, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return &model.Requester{ID: testRequesterID, Name: "Ada", Email: email, Role: "engineer"}, nil
}

func (m *mockRequesterRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Requester, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockRequesterRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockRequesterRepository) Update(ctx context.Context, id string, requester *model.Requester) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, requester)
	}
	return nil
}

func (m *mockRequesterRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockPurger struct {
	deleteByRequesterFunc func(ctx context.Context, requesterID string) (int64, error)
	calls                 []string
}

func (m *mockPurger) DeleteByRequester(ctx context.Context, requesterID string) (int64, error) {
	m.calls = append(m.calls, requesterID)
	if m.deleteByRequesterFunc != nil {
		return m.deleteByRequesterFunc(ctx, requesterID)
	}
	return 0, nil
}

func newTestService(repo *mockRequesterRepository, purger *mockPurger) RequesterService {
	log := logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
	cfg := &config.Config{
		Log:          log,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	if repo == nil {
		repo = &mockRequesterRepository{}
	}
	if purger == nil {
		purger = &mockPurger{}
	}
	return NewRequesterService(repo, validator.NewRequesterValidator(log), purger, cfg)
}

func validRequester() *model.Requester {
	return &model.Requester{Name: "Ada Lovelace", Email: "ada@example.com", Role: "engineer"}
}

// ────────────────────────────────────────────────
// Create
// ────────────────────────────────────────────────

func TestCreateRequester_Success(t *testing.T) {
	svc := newTestService(nil, nil)

	requester := validRequester()
	if err := svc.Create(context.Background(), requester); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requester.ID == "" {
		t.Error("expected requester ID to be assigned")
	}
}

func TestCreateRequester_NormalizesEmail(t *testing.T) {
	var stored *model.Requester
	repo := &mockRequesterRepository{
		createFunc: func(ctx context.Context, requester *model.Requester) error {
			stored = requester
			return nil
		},
	}
	svc := newTestService(repo, nil)

	requester := validRequester()
	requester.Email = "  Ada.Lovelace@Example.COM  "
	requester.Name = "  Ada Lovelace "

	if err := svc.Create(context.Background(), requester); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Email != "ada.lovelace@example.com" {
		t.Errorf("email not normalized, got %q", stored.Email)
	}
	if stored.Name != "Ada Lovelace" {
		t.Errorf("name not trimmed, got %q", stored.Name)
	}
}

func TestCreateRequester_DuplicateEmail(t *testing.T) {
	repo := &mockRequesterRepository{
		createFunc: func(ctx context.Context, requester *model.Requester) error {
			return requestererrors.ErrDuplicateEmail
		},
	}
	svc := newTestService(repo, nil)

	err := svc.Create(context.Background(), validRequester())
	if !apperrors.HasCode(err, apperrors.CodeDuplicate) {
		t.Fatalf("expected DUPLICATE_KEY, got %v", err)
	}
}

func TestCreateRequester_ValidationErrors(t *testing.T) {
	svc := newTestService(nil, nil)

	tests := []struct {
		name   string
		mutate func(r *model.Requester)
	}{
		{"missing name", func(r *model.Requester) { r.Name = "" }},
		{"malformed email", func(r *model.Requester) { r.Email = "not-an-email" }},
		{"missing email", func(r *model.Requester) { r.Email = "" }},
		{"role too short", func(r *model.Requester) { r.Role = "ab" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requester := validRequester()
			tt.mutate(requester)

			err := svc.Create(context.Background(), requester)
			if !apperrors.HasCode(err, apperrors.CodeValidation) {
				t.Fatalf("expected VALIDATION_ERROR, got %v", err)
			}
		})
	}
}

// ────────────────────────────────────────────────
// Lookup
// ────────────────────────────────────────────────

func TestGetRequesterByEmail(t *testing.T) {
	var queried string
	repo := &mockRequesterRepository{
		findByEmailFunc: func(ctx context.Context, email string) (*model.Requester, error) {
			queried = email
			return &model.Requester{ID: testRequesterID, Name: "Ada", Email: email, Role: "engineer"}, nil
		},
	}
	svc := newTestService(repo, nil)

	got, err := svc.GetByEmail(context.Background(), " Ada@Example.com ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if queried != "ada@example.com" {
		t.Errorf("lookup must use the normalized email, got %q", queried)
	}
	if got.ID != testRequesterID {
		t.Errorf("unexpected requester %+v", got)
	}
}

func TestGetRequesterByEmail_NotFound(t *testing.T) {
	repo := &mockRequesterRepository{
		findByEmailFunc: func(ctx context.Context, email string) (*model.Requester, error) {
			return nil, requestererrors.ErrNotFound
		},
	}
	svc := newTestService(repo, nil)

	_, err := svc.GetByEmail(context.Background(), "ghost@example.com")
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestGetRequesterByID_InvalidID(t *testing.T) {
	repo := &mockRequesterRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Requester, error) {
			return nil, requestererrors.ErrInvalidID
		},
	}
	svc := newTestService(repo, nil)

	_, err := svc.GetByID(context.Background(), "short-id")
	if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

// ────────────────────────────────────────────────
// Update
// ────────────────────────────────────────────────

func TestUpdateRequester_DuplicateEmail(t *testing.T) {
	repo := &mockRequesterRepository{
		updateFunc: func(ctx context.Context, id string, requester *model.Requester) error {
			return requestererrors.ErrDuplicateEmail
		},
	}
	svc := newTestService(repo, nil)

	err := svc.Update(context.Background(), testRequesterID, validRequester())
	if !apperrors.HasCode(err, apperrors.CodeDuplicate) {
		t.Fatalf("expected DUPLICATE_KEY, got %v", err)
	}
}

func TestUpdateRequester_PreservesCreatedAt(t *testing.T) {
	createdAt := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	var updated *model.Requester

	repo := &mockRequesterRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Requester, error) {
			return &model.Requester{ID: id, Name: "Old", Email: "old@example.com", Role: "guest", CreatedAt: createdAt}, nil
		},
		updateFunc: func(ctx context.Context, id string, requester *model.Requester) error {
			updated = requester
			return nil
		},
	}
	svc := newTestService(repo, nil)

	if err := svc.Update(context.Background(), testRequesterID, validRequester()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated == nil {
		t.Fatal("repository update was not called")
	}
	if !updated.CreatedAt.Equal(createdAt) {
		t.Error("update must preserve the original creation time")
	}
}

// ────────────────────────────────────────────────
// Delete cascade
// ────────────────────────────────────────────────

func TestDeleteRequester_CascadesToReservations(t *testing.T) {
	purger := &mockPurger{
		deleteByRequesterFunc: func(ctx context.Context, requesterID string) (int64, error) {
			return 2, nil
		},
	}
	svc := newTestService(nil, purger)

	deleted, err := svc.Delete(context.Background(), testRequesterID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 purged reservations, got %d", deleted)
	}
	if len(purger.calls) != 1 || purger.calls[0] != testRequesterID {
		t.Errorf("expected purge for %s, got %v", testRequesterID, purger.calls)
	}
}

func TestDeleteRequester_NotFoundSkipsPurge(t *testing.T) {
	repo := &mockRequesterRepository{
		deleteFunc: func(ctx context.Context, id string) error {
			return requestererrors.ErrNotFound
		},
	}
	purger := &mockPurger{}
	svc := newTestService(repo, purger)

	_, err := svc.Delete(context.Background(), testRequesterID)
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
	if len(purger.calls) != 0 {
		t.Error("purge must not run for a missing requester")
	}
}
