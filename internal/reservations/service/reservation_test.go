package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	reservationerrors "roomly/internal/reservations/errors"
	"roomly/internal/reservations/repository"
	"roomly/internal/reservations/validator"
	"roomly/pkg/clock"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/kafka"
	"roomly/pkg/logger"
	"roomly/pkg/model"

	mongotx "roomly/pkg/db/mongo"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	testRoomID      = "64a1b2c3d4e5f6a7b8c9d0e1"
	testRequesterID = "64a1b2c3d4e5f6a7b8c9d0e2"
	testDate        = "2026-09-15"
	testToday       = "2026-09-01"
)

// ────────────────────────────────────────────────
// Mocks
// ────────────────────────────────────────────────

// fakeSessionContext satisfies mongo.SessionContext for transaction mocks.
// The embedded Session is never touched.
type fakeSessionContext struct {
	context.Context
	mongo.Session
}

type memReservationRepo struct {
	mu           sync.Mutex
	byID         map[string]*model.Reservation
	seq          int
	lastInsertID string
}

func newMemReservationRepo() *memReservationRepo {
	return &memReservationRepo{byID: make(map[string]*model.Reservation)}
}

func (m *memReservationRepo) Create(ctx context.Context, reservation *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastInsertID = reservation.ID
	m.seq++
	reservation.ID = fmt.Sprintf("%024x", m.seq)
	reservation.CreatedAt = time.Now().UTC()
	stored := *reservation
	m.byID[reservation.ID] = &stored
	return nil
}

func (m *memReservationRepo) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.byID[id]
	if !ok {
		return nil, reservationerrors.ErrNotFound
	}
	found := *r
	return &found, nil
}

func (m *memReservationRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*model.Reservation, 0, len(m.byID))
	for _, r := range m.byID {
		found := *r
		out = append(out, &found)
	}
	return out, nil
}

func (m *memReservationRepo) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.byID)), nil
}

func (m *memReservationRepo) FindByRoomAndDate(ctx context.Context, roomID, date string, limit int, offset int64) ([]*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*model.Reservation
	for _, r := range m.byID {
		if r.RoomID == roomID && r.Date == date {
			found := *r
			out = append(out, &found)
		}
	}
	return out, nil
}

func (m *memReservationRepo) CountByRoomAndDate(ctx context.Context, roomID, date string) (int64, error) {
	found, err := m.FindByRoomAndDate(ctx, roomID, date, 0, 0)
	if err != nil {
		return 0, err
	}
	return int64(len(found)), nil
}

func (m *memReservationRepo) FindByRequester(ctx context.Context, requesterID string, limit int, offset int64) ([]*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*model.Reservation
	for _, r := range m.byID {
		if r.RequesterID == requesterID {
			found := *r
			out = append(out, &found)
		}
	}
	return out, nil
}

func (m *memReservationRepo) CountByRequester(ctx context.Context, requesterID string) (int64, error) {
	found, err := m.FindByRequester(ctx, requesterID, 0, 0)
	if err != nil {
		return 0, err
	}
	return int64(len(found)), nil
}

func (m *memReservationRepo) Replace(ctx context.Context, id string, reservation *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[id]
	if !ok {
		return reservationerrors.ErrNotFound
	}
	existing.RoomID = reservation.RoomID
	existing.RequesterID = reservation.RequesterID
	existing.Date = reservation.Date
	existing.StartTime = reservation.StartTime
	existing.EndTime = reservation.EndTime
	return nil
}

func (m *memReservationRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[id]; !ok {
		return reservationerrors.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memReservationRepo) DeleteByRoom(ctx context.Context, roomID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for id, r := range m.byID {
		if r.RoomID == roomID {
			delete(m.byID, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *memReservationRepo) DeleteByRequester(ctx context.Context, requesterID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for id, r := range m.byID {
		if r.RequesterID == requesterID {
			delete(m.byID, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *memReservationRepo) OverlapsForCreate(ctx context.Context, roomID, date, startTime, endTime string) ([]*model.Reservation, error) {
	return m.overlapping(roomID, date, startTime, endTime, ""), nil
}

func (m *memReservationRepo) OverlapsForUpdate(ctx context.Context, roomID, date, startTime, endTime, excludeID string) ([]*model.Reservation, error) {
	return m.overlapping(roomID, date, startTime, endTime, excludeID), nil
}

func (m *memReservationRepo) overlapping(roomID, date, startTime, endTime, excludeID string) []*model.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*model.Reservation
	for _, r := range m.byID {
		if r.ID == excludeID || r.RoomID != roomID || r.Date != date {
			continue
		}
		if r.StartTime < endTime && r.EndTime > startTime {
			found := *r
			out = append(out, &found)
		}
	}
	return out
}

func (m *memReservationRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(fakeSessionContext{Context: ctx})
}

type memSlotLockRepo struct {
	mu    sync.Mutex
	locks map[string]time.Time
}

func newMemSlotLockRepo() *memSlotLockRepo {
	return &memSlotLockRepo{locks: make(map[string]time.Time)}
}

func (m *memSlotLockRepo) Acquire(ctx context.Context, lockID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if expiry, held := m.locks[lockID]; held && time.Now().Before(expiry) {
		return reservationerrors.ErrLockHeld
	}
	m.locks[lockID] = time.Now().Add(ttl)
	return nil
}

func (m *memSlotLockRepo) Release(ctx context.Context, lockID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, lockID)
	return nil
}

type stubRooms struct{}

func (stubRooms) GetRoom(ctx context.Context, id string) (*model.Room, error) {
	return &model.Room{ID: id, Name: "Room A", Capacity: 4, Location: "Floor 1", Available: true}, nil
}

type stubRequesters struct{}

func (stubRequesters) GetRequester(ctx context.Context, id string) (*model.Requester, error) {
	return &model.Requester{ID: id, Name: "Ada", Email: "ada@example.com", Role: "engineer"}, nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []kafka.Message
}

func (p *recordingPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingPublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.messages))
	for i := range p.messages {
		types = append(types, p.messages[i].GetEventType())
	}
	return types
}

type testHarness struct {
	svc    ReservationService
	repo   *memReservationRepo
	locks  *memSlotLockRepo
	events *recordingPublisher
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	log := logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
	cfg := &config.Config{
		Log:               log,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		LockWaitTimeout:   2 * time.Second,
		LockRetryInterval: 2 * time.Millisecond,
		LockTTL:           time.Minute,
	}

	repo := newMemReservationRepo()
	locks := newMemSlotLockRepo()
	events := &recordingPublisher{}

	resValidator := validator.NewReservationValidator(
		stubRooms{},
		stubRequesters{},
		repo,
		clock.Fixed(testToday),
		log,
	)

	return &testHarness{
		svc:    NewReservationService(repo, locks, resValidator, events, cfg),
		repo:   repo,
		locks:  locks,
		events: events,
	}
}

func newReservation(start, end string) *model.Reservation {
	return &model.Reservation{
		RoomID:      testRoomID,
		RequesterID: testRequesterID,
		Date:        testDate,
		StartTime:   start,
		EndTime:     end,
	}
}

// ────────────────────────────────────────────────
// Create
// ────────────────────────────────────────────────

func TestCreate_Success(t *testing.T) {
	h := newTestHarness(t)

	r := newReservation("09:00", "10:00")
	if err := h.svc.Create(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ID == "" {
		t.Error("expected reservation ID to be assigned")
	}

	types := h.events.eventTypes()
	if len(types) != 1 || types[0] != EventReservationCreated {
		t.Errorf("expected a single %s event, got %v", EventReservationCreated, types)
	}
}

func TestCreate_IgnoresClientSuppliedID(t *testing.T) {
	h := newTestHarness(t)

	r := newReservation("09:00", "10:00")
	r.ID = "64a1b2c3d4e5f6a7b8c9dddd"

	if err := h.svc.Create(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.repo.lastInsertID != "" {
		t.Errorf("client-supplied ID must be cleared before insert, repo saw %q", h.repo.lastInsertID)
	}
	if r.ID == "64a1b2c3d4e5f6a7b8c9dddd" {
		t.Error("expected a newly assigned ID")
	}
}

func TestCreate_MissingRoomFailsValidation(t *testing.T) {
	h := newTestHarness(t)

	r := newReservation("09:00", "10:00")
	r.RoomID = ""

	err := h.svc.Create(context.Background(), r)
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	if len(h.repo.byID) != 0 {
		t.Error("nothing should be stored on validation failure")
	}
}

func TestCreate_OverlapRejected(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	if err := h.svc.Create(ctx, newReservation("09:00", "10:00")); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	err := h.svc.Create(ctx, newReservation("09:30", "10:30"))
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
	if len(h.repo.byID) != 1 {
		t.Errorf("expected 1 stored reservation, got %d", len(h.repo.byID))
	}
}

func TestCreate_BackToBackAllowed(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	if err := h.svc.Create(ctx, newReservation("09:00", "10:00")); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if err := h.svc.Create(ctx, newReservation("10:00", "11:00")); err != nil {
		t.Fatalf("back-to-back create should pass, got %v", err)
	}
}

func TestCreate_ConcurrentOverlap_ExactlyOneWins(t *testing.T) {
	h := newTestHarness(t)

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	wg.Add(attempts)

	for i := 0; i < attempts; i++ {
		go func(i int) {
			defer wg.Done()
			errs[i] = h.svc.Create(context.Background(), newReservation("14:00", "15:00"))
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case apperrors.HasCode(err, apperrors.CodeConflict):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if wins != 1 {
		t.Errorf("expected exactly 1 winner, got %d", wins)
	}
	if conflicts != attempts-1 {
		t.Errorf("expected %d conflicts, got %d", attempts-1, conflicts)
	}
	if len(h.repo.byID) != 1 {
		t.Errorf("expected 1 stored reservation, got %d", len(h.repo.byID))
	}
}

func TestCreate_ConcurrentDisjoint_AllSucceed(t *testing.T) {
	h := newTestHarness(t)

	intervals := [][2]string{
		{"08:00", "09:00"},
		{"09:00", "10:00"},
		{"10:00", "11:00"},
		{"11:00", "12:00"},
	}

	errs := make([]error, len(intervals))
	var wg sync.WaitGroup
	wg.Add(len(intervals))

	for i, iv := range intervals {
		go func(i int, start, end string) {
			defer wg.Done()
			errs[i] = h.svc.Create(context.Background(), newReservation(start, end))
		}(i, iv[0], iv[1])
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("create %d failed: %v", i, err)
		}
	}
	if len(h.repo.byID) != len(intervals) {
		t.Errorf("expected %d stored reservations, got %d", len(intervals), len(h.repo.byID))
	}
}

func TestCreate_HeldSlotTimesOutBusy(t *testing.T) {
	log := logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
	cfg := &config.Config{
		Log:               log,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		LockWaitTimeout:   30 * time.Millisecond,
		LockRetryInterval: 5 * time.Millisecond,
		LockTTL:           time.Minute,
	}

	repo := newMemReservationRepo()
	locks := newMemSlotLockRepo()
	resValidator := validator.NewReservationValidator(stubRooms{}, stubRequesters{}, repo, clock.Fixed(testToday), log)
	svc := NewReservationService(repo, locks, resValidator, nil, cfg)

	lockID := repository.SlotLockID(testRoomID, testDate)
	if err := locks.Acquire(context.Background(), lockID, time.Minute); err != nil {
		t.Fatalf("failed to pre-hold slot: %v", err)
	}

	err := svc.Create(context.Background(), newReservation("09:00", "10:00"))
	if !apperrors.HasCode(err, apperrors.CodeBusy) {
		t.Fatalf("expected SLOT_BUSY, got %v", err)
	}
}

func TestCreate_ReleasesLockAfterFailure(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	if err := h.svc.Create(ctx, newReservation("09:00", "10:00")); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if err := h.svc.Create(ctx, newReservation("09:00", "10:00")); !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected CONFLICT, got %v", err)
	}

	// The slot must be free again: a non-overlapping create on the same
	// slot should not wait out the lock timeout.
	if err := h.svc.Create(ctx, newReservation("10:00", "11:00")); err != nil {
		t.Fatalf("slot lock leaked after rejected create: %v", err)
	}
}

// ────────────────────────────────────────────────
// Lookup
// ────────────────────────────────────────────────

func TestGetByID(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	r := newReservation("09:00", "10:00")
	if err := h.svc.Create(ctx, r); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	t.Run("found", func(t *testing.T) {
		got, err := h.svc.GetByID(ctx, r.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Interval() != "09:00-10:00" {
			t.Errorf("unexpected interval %s", got.Interval())
		}
	})

	t.Run("not found", func(t *testing.T) {
		_, err := h.svc.GetByID(ctx, "64a1b2c3d4e5f6a7b8c9ffff")
		if !apperrors.HasCode(err, apperrors.CodeNotFound) {
			t.Fatalf("expected NOT_FOUND, got %v", err)
		}
	})

	t.Run("empty id", func(t *testing.T) {
		_, err := h.svc.GetByID(ctx, "")
		if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
			t.Fatalf("expected INVALID_INPUT, got %v", err)
		}
	})
}

// ────────────────────────────────────────────────
// Update
// ────────────────────────────────────────────────

func TestUpdate_MovesReservation(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	r := newReservation("09:00", "10:00")
	if err := h.svc.Create(ctx, r); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	createdAt := r.CreatedAt

	moved := newReservation("11:00", "12:00")
	if err := h.svc.Update(ctx, r.ID, moved); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !moved.CreatedAt.Equal(createdAt) {
		t.Error("update must preserve the original creation time")
	}

	got, err := h.svc.GetByID(ctx, r.ID)
	if err != nil {
		t.Fatalf("lookup after update failed: %v", err)
	}
	if got.Interval() != "11:00-12:00" {
		t.Errorf("expected interval 11:00-12:00, got %s", got.Interval())
	}
}

func TestUpdate_SameSlotPasses(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	r := newReservation("09:00", "10:00")
	if err := h.svc.Create(ctx, r); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Shifting within its own interval overlaps only itself.
	shifted := newReservation("09:30", "10:30")
	if err := h.svc.Update(ctx, r.ID, shifted); err != nil {
		t.Fatalf("update overlapping only itself must pass, got %v", err)
	}
}

func TestUpdate_ConflictWithOther(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	first := newReservation("09:00", "10:00")
	second := newReservation("11:00", "12:00")
	if err := h.svc.Create(ctx, first); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := h.svc.Create(ctx, second); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	err := h.svc.Update(ctx, second.ID, newReservation("09:30", "10:30"))
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected CONFLICT, got %v", err)
	}

	got, lookupErr := h.svc.GetByID(ctx, second.ID)
	if lookupErr != nil {
		t.Fatalf("lookup failed: %v", lookupErr)
	}
	if got.Interval() != "11:00-12:00" {
		t.Errorf("rejected update must not modify the reservation, got %s", got.Interval())
	}
}

func TestUpdate_NotFound(t *testing.T) {
	h := newTestHarness(t)

	err := h.svc.Update(context.Background(), "64a1b2c3d4e5f6a7b8c9ffff", newReservation("09:00", "10:00"))
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

// ────────────────────────────────────────────────
// Delete
// ────────────────────────────────────────────────

func TestDelete(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	r := newReservation("09:00", "10:00")
	if err := h.svc.Create(ctx, r); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := h.svc.Delete(ctx, r.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := h.svc.GetByID(ctx, r.ID); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND after delete, got %v", err)
	}

	types := h.events.eventTypes()
	if len(types) != 2 || types[1] != EventReservationDeleted {
		t.Errorf("expected %s event after delete, got %v", EventReservationDeleted, types)
	}
}

func TestDelete_NotFound(t *testing.T) {
	h := newTestHarness(t)

	err := h.svc.Delete(context.Background(), "64a1b2c3d4e5f6a7b8c9ffff")
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

// ────────────────────────────────────────────────
// FindConflicts
// ────────────────────────────────────────────────

func TestFindConflicts(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	if err := h.svc.Create(ctx, newReservation("09:00", "10:00")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := h.svc.Create(ctx, newReservation("11:00", "12:00")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	t.Run("reports overlapping sorted by start", func(t *testing.T) {
		conflicts, err := h.svc.FindConflicts(ctx, testRoomID, testDate, "09:30", "11:30", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(conflicts) != 2 {
			t.Fatalf("expected 2 conflicts, got %d", len(conflicts))
		}
		if conflicts[0].StartTime != "09:00" || conflicts[1].StartTime != "11:00" {
			t.Errorf("conflicts not sorted by start time: %s, %s", conflicts[0].StartTime, conflicts[1].StartTime)
		}
	})

	t.Run("free interval yields empty non-nil slice", func(t *testing.T) {
		conflicts, err := h.svc.FindConflicts(ctx, testRoomID, testDate, "10:00", "11:00", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if conflicts == nil || len(conflicts) != 0 {
			t.Errorf("expected empty slice, got %v", conflicts)
		}
	})

	t.Run("does not reserve anything", func(t *testing.T) {
		if _, err := h.svc.FindConflicts(ctx, testRoomID, testDate, "13:00", "14:00", ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := h.svc.Create(ctx, newReservation("13:00", "14:00")); err != nil {
			t.Fatalf("probe must not block a later create: %v", err)
		}
	})

	t.Run("exclude leaves out the reservation under edit", func(t *testing.T) {
		existing, _, lookupErr := h.svc.SearchByRoomAndDate(ctx, testRoomID, testDate, 10, 0)
		var first *model.Reservation
		if lookupErr != nil || len(existing) == 0 {
			t.Fatalf("failed to load seeded reservations: %v", lookupErr)
		}
		for _, r := range existing {
			if r.StartTime == "09:00" {
				first = r
			}
		}
		if first == nil {
			t.Fatal("seeded 09:00 reservation not found")
		}

		// Previewing a shift of the 09:00-10:00 reservation within its own
		// slot must not report the reservation itself.
		conflicts, err := h.svc.FindConflicts(ctx, testRoomID, testDate, "09:30", "10:30", first.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(conflicts) != 0 {
			t.Errorf("expected no conflicts when excluding the reservation under edit, got %d", len(conflicts))
		}

		// Without the exclusion the same interval collides with it.
		conflicts, err = h.svc.FindConflicts(ctx, testRoomID, testDate, "09:30", "10:30", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(conflicts) != 1 {
			t.Errorf("expected 1 conflict without exclusion, got %d", len(conflicts))
		}
	})

	t.Run("invalid interval", func(t *testing.T) {
		_, err := h.svc.FindConflicts(ctx, testRoomID, testDate, "14:00", "13:00", "")
		if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
			t.Fatalf("expected INVALID_INPUT, got %v", err)
		}
	})

	t.Run("missing parameters", func(t *testing.T) {
		_, err := h.svc.FindConflicts(ctx, "", testDate, "09:00", "10:00", "")
		if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
			t.Fatalf("expected INVALID_INPUT, got %v", err)
		}
	})
}

// ────────────────────────────────────────────────
// Purge
// ────────────────────────────────────────────────

func TestDeleteByRoom(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	if err := h.svc.Create(ctx, newReservation("09:00", "10:00")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := h.svc.Create(ctx, newReservation("11:00", "12:00")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	deleted, err := h.svc.DeleteByRoom(ctx, testRoomID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 deleted, got %d", deleted)
	}

	types := h.events.eventTypes()
	if len(types) != 3 || types[2] != EventReservationsPurged {
		t.Errorf("expected %s event after purge, got %v", EventReservationsPurged, types)
	}
}

func TestDeleteByRequester(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	if err := h.svc.Create(ctx, newReservation("09:00", "10:00")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	deleted, err := h.svc.DeleteByRequester(ctx, testRequesterID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", deleted)
	}

	deleted, err = h.svc.DeleteByRequester(ctx, testRequesterID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 0 {
		t.Errorf("second purge should delete nothing, got %d", deleted)
	}
}

func TestFindByRequester(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	if err := h.svc.Create(ctx, newReservation("09:00", "10:00")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := h.svc.Create(ctx, newReservation("11:00", "12:00")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	reservations, count, err := h.svc.FindByRequester(ctx, testRequesterID, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 || len(reservations) != 2 {
		t.Errorf("expected 2 results, got count=%d len=%d", count, len(reservations))
	}

	reservations, count, err = h.svc.FindByRequester(ctx, "64a1b2c3d4e5f6a7b8c9ffff", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 || len(reservations) != 0 {
		t.Errorf("expected no results for an unknown requester, got count=%d len=%d", count, len(reservations))
	}

	_, _, err = h.svc.FindByRequester(ctx, "", 10, 0)
	if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestSearchByRoomAndDate(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	if err := h.svc.Create(ctx, newReservation("09:00", "10:00")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	reservations, count, err := h.svc.SearchByRoomAndDate(ctx, testRoomID, testDate, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 || len(reservations) != 1 {
		t.Errorf("expected 1 result, got count=%d len=%d", count, len(reservations))
	}

	_, _, err = h.svc.SearchByRoomAndDate(ctx, "", testDate, 10, 0)
	if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}
