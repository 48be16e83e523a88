package service

import (
	"context"
	"errors"
	"testing"
	"time"

	roomserrors "roomly/internal/rooms/errors"
	"roomly/internal/rooms/validator"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/logger"
	"roomly/pkg/model"
)

const testRoomID = "64a1b2c3d4e5f6a7b8c9d0e1"

// ────────────────────────────────────────────────
// Mocks
// ────────────────────────────────────────────────

type mockRoomRepository struct {
	createFunc             func(ctx context.Context, room *model.Room) error
	findByIDFunc           func(ctx context.Context, id string) (*model.Room, error)
	findAllFunc            func(ctx context.Context, limit int, offset int64) ([]*model.Room, error)
	countFunc              func(ctx context.Context) (int64, error)
	updateFunc             func(ctx context.Context, id string, room *model.Room) error
	updateAvailabilityFunc func(ctx context.Context, id string, available bool) error
	deleteFunc             func(ctx context.Context, id string) error
	searchFunc             func(ctx context.Context, minCapacity int, available *bool, limit int, offset int64) ([]*model.Room, error)
	countSearchFunc        func(ctx context.Context, minCapacity int, available *bool) (int64, error)
}

func (m *mockRoomRepository) Create(ctx context.Context, room *model.Room) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, room)
	}
	room.ID = testRoomID
	return nil
}

func (m *mockRoomRepository) FindByID(ctx context.Context, id string) (*model.Room, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Room{ID: id, Name: "Room A", Capacity: 4, Location: "Floor 1", Available: true}, nil
}

func (m *mockRoomRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Room, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockRoomRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockRoomRepository) Update(ctx context.Context, id string, room *model.Room) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, room)
	}
	return nil
}

func (m *mockRoomRepository) UpdateAvailability(ctx context.Context, id string, available bool) error {
	if m.updateAvailabilityFunc != nil {
		return m.updateAvailabilityFunc(ctx, id, available)
	}
	return nil
}

func (m *mockRoomRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockRoomRepository) Search(ctx context.Context, minCapacity int, available *bool, limit int, offset int64) ([]*model.Room, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, minCapacity, available, limit, offset)
	}
	return nil, nil
}

func (m *mockRoomRepository) CountSearch(ctx context.Context, minCapacity int, available *bool) (int64, error) {
	if m.countSearchFunc != nil {
		return m.countSearchFunc(ctx, minCapacity, available)
	}
	return 0, nil
}

type mockPurger struct {
	deleteByRoomFunc func(ctx context.Context, roomID string) (int64, error)
	calls            []string
}

func (m *mockPurger) DeleteByRoom(ctx context.Context, roomID string) (int64, error) {
	m.calls = append(m.calls, roomID)
	if m.deleteByRoomFunc != nil {
		return m.deleteByRoomFunc(ctx, roomID)
	}
	return 0, nil
}

func newTestService(repo *mockRoomRepository, purger *mockPurger) RoomService {
	log := logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
	cfg := &config.Config{
		Log:          log,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	if repo == nil {
		repo = &mockRoomRepository{}
	}
	if purger == nil {
		purger = &mockPurger{}
	}
	return NewRoomService(repo, validator.NewRoomValidator(log), purger, cfg)
}

func validRoom() *model.Room {
	return &model.Room{Name: "Conference A", Capacity: 8, Location: "Building 2, Floor 3", Available: true}
}

// ────────────────────────────────────────────────
// Create
// ────────────────────────────────────────────────

func TestCreateRoom_Success(t *testing.T) {
	svc := newTestService(nil, nil)

	room := validRoom()
	if err := svc.Create(context.Background(), room); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if room.ID == "" {
		t.Error("expected room ID to be assigned")
	}
}

func TestCreateRoom_ValidationErrors(t *testing.T) {
	svc := newTestService(nil, nil)

	tests := []struct {
		name   string
		mutate func(r *model.Room)
	}{
		{"missing name", func(r *model.Room) { r.Name = "" }},
		{"name too short", func(r *model.Room) { r.Name = "A" }},
		{"zero capacity", func(r *model.Room) { r.Capacity = 0 }},
		{"missing location", func(r *model.Room) { r.Location = "" }},
		{"location too short", func(r *model.Room) { r.Location = "B2" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room := validRoom()
			tt.mutate(room)

			err := svc.Create(context.Background(), room)
			if !apperrors.HasCode(err, apperrors.CodeValidation) {
				t.Fatalf("expected VALIDATION_ERROR, got %v", err)
			}
		})
	}
}

// ────────────────────────────────────────────────
// Update and availability
// ────────────────────────────────────────────────

func TestUpdateRoom_PreservesCreatedAt(t *testing.T) {
	createdAt := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	var updated *model.Room

	repo := &mockRoomRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Room, error) {
			return &model.Room{ID: id, Name: "Old", Capacity: 2, Location: "Floor 1", CreatedAt: createdAt}, nil
		},
		updateFunc: func(ctx context.Context, id string, room *model.Room) error {
			updated = room
			return nil
		},
	}
	svc := newTestService(repo, nil)

	room := validRoom()
	if err := svc.Update(context.Background(), testRoomID, room); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated == nil {
		t.Fatal("repository update was not called")
	}
	if !updated.CreatedAt.Equal(createdAt) {
		t.Error("update must preserve the original creation time")
	}
}

func TestUpdateRoom_NotFound(t *testing.T) {
	repo := &mockRoomRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Room, error) {
			return nil, roomserrors.ErrNotFound
		},
	}
	svc := newTestService(repo, nil)

	err := svc.Update(context.Background(), testRoomID, validRoom())
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestSetAvailability(t *testing.T) {
	var gotAvailable *bool
	repo := &mockRoomRepository{
		updateAvailabilityFunc: func(ctx context.Context, id string, available bool) error {
			gotAvailable = &available
			return nil
		},
	}
	svc := newTestService(repo, nil)

	t.Run("valid", func(t *testing.T) {
		available := false
		err := svc.SetAvailability(context.Background(), testRoomID, &model.RoomAvailability{Available: &available})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotAvailable == nil || *gotAvailable != false {
			t.Error("repository did not receive the new availability")
		}
	})

	t.Run("missing flag", func(t *testing.T) {
		err := svc.SetAvailability(context.Background(), testRoomID, &model.RoomAvailability{})
		if !apperrors.HasCode(err, apperrors.CodeValidation) {
			t.Fatalf("expected VALIDATION_ERROR, got %v", err)
		}
	})
}

func TestGetAvailability(t *testing.T) {
	repo := &mockRoomRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Room, error) {
			return &model.Room{ID: id, Name: "Room A", Capacity: 4, Location: "Floor 1", Available: false}, nil
		},
	}
	svc := newTestService(repo, nil)

	availability, err := svc.GetAvailability(context.Background(), testRoomID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if availability.Available == nil || *availability.Available != false {
		t.Error("expected availability false")
	}
}

// ────────────────────────────────────────────────
// Delete cascade
// ────────────────────────────────────────────────

func TestDeleteRoom_CascadesToReservations(t *testing.T) {
	purger := &mockPurger{
		deleteByRoomFunc: func(ctx context.Context, roomID string) (int64, error) {
			return 3, nil
		},
	}
	svc := newTestService(nil, purger)

	deleted, err := svc.Delete(context.Background(), testRoomID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 3 {
		t.Errorf("expected 3 purged reservations, got %d", deleted)
	}
	if len(purger.calls) != 1 || purger.calls[0] != testRoomID {
		t.Errorf("expected purge for %s, got %v", testRoomID, purger.calls)
	}
}

func TestDeleteRoom_NotFoundSkipsPurge(t *testing.T) {
	repo := &mockRoomRepository{
		deleteFunc: func(ctx context.Context, id string) error {
			return roomserrors.ErrNotFound
		},
	}
	purger := &mockPurger{}
	svc := newTestService(repo, purger)

	_, err := svc.Delete(context.Background(), testRoomID)
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
	if len(purger.calls) != 0 {
		t.Error("purge must not run for a missing room")
	}
}

func TestDeleteRoom_PurgeFailureSurfaces(t *testing.T) {
	purger := &mockPurger{
		deleteByRoomFunc: func(ctx context.Context, roomID string) (int64, error) {
			return 0, errors.New("reservations service unreachable")
		},
	}
	svc := newTestService(nil, purger)

	_, err := svc.Delete(context.Background(), testRoomID)
	if !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Fatalf("expected INTERNAL_ERROR, got %v", err)
	}
}

// ────────────────────────────────────────────────
// Search
// ────────────────────────────────────────────────

func TestSearchRooms(t *testing.T) {
	repo := &mockRoomRepository{
		searchFunc: func(ctx context.Context, minCapacity int, available *bool, limit int, offset int64) ([]*model.Room, error) {
			return []*model.Room{{ID: testRoomID, Name: "Room A", Capacity: 8, Location: "Floor 1"}}, nil
		},
		countSearchFunc: func(ctx context.Context, minCapacity int, available *bool) (int64, error) {
			return 1, nil
		},
	}
	svc := newTestService(repo, nil)

	rooms, count, err := svc.Search(context.Background(), 4, nil, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 || len(rooms) != 1 {
		t.Errorf("expected 1 result, got count=%d len=%d", count, len(rooms))
	}
}

func TestSearchRooms_NegativeCapacity(t *testing.T) {
	svc := newTestService(nil, nil)

	_, _, err := svc.Search(context.Background(), -1, nil, 10, 0)
	if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}
