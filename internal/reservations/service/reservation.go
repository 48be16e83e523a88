package service

import (
	"context"
	"errors"
	reservationerrors "roomly/internal/reservations/errors"
	"roomly/internal/reservations/repository"
	"roomly/internal/reservations/validator"
	"roomly/pkg/clock"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/model"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

type ReservationService interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error)
	Update(ctx context.Context, id string, reservation *model.Reservation) error
	Delete(ctx context.Context, id string) error
	SearchByRoomAndDate(ctx context.Context, roomID, date string, limit int, offset int64) ([]*model.Reservation, int64, error)
	FindByRequester(ctx context.Context, requesterID string, limit int, offset int64) ([]*model.Reservation, int64, error)
	FindConflicts(ctx context.Context, roomID, date, startTime, endTime, excludeID string) ([]*model.Reservation, error)
	DeleteByRoom(ctx context.Context, roomID string) (int64, error)
	DeleteByRequester(ctx context.Context, requesterID string) (int64, error)
}

type reservationService struct {
	repo      repository.ReservationRepository
	lockRepo  repository.SlotLockRepository
	validator *validator.ReservationValidator
	events    EventPublisher
	cfg       *config.Config
}

func NewReservationService(
	repo repository.ReservationRepository,
	lockRepo repository.SlotLockRepository,
	resValidator *validator.ReservationValidator,
	events EventPublisher,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:      repo,
		lockRepo:  lockRepo,
		validator: resValidator,
		events:    events,
		cfg:       cfg,
	}
}

// Create admits a new reservation. The whole validation chain, including
// the conflict check, runs while the (room, date) slot is held, so two
// concurrent overlapping requests serialize and exactly one wins.
func (s *reservationService) Create(ctx context.Context, reservation *model.Reservation) error {
	// The ID is assigned on insert; a client-supplied one is ignored.
	reservation.ID = ""

	if reservation.Date == "" || reservation.RoomID == "" {
		// Shape validation produces the detailed message; this only guards
		// the lock key derivation below.
		return s.validateOnly(ctx, reservation)
	}

	lockID, err := s.acquireSlotLock(ctx, reservation.RoomID, reservation.Date)
	if err != nil {
		return err
	}
	defer s.releaseSlotLock(lockID)

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.validator.ValidateCreate(sessCtx, reservation); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, reservation); err != nil {
			return apperrors.Internal("Failed to create reservation", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create reservation",
			"room_id", reservation.RoomID,
			"date", reservation.Date,
			"error", err,
		)
		return err
	}

	s.cfg.Log.Info("Reservation created successfully",
		"id", reservation.ID,
		"room_id", reservation.RoomID,
		"date", reservation.Date,
		"interval", reservation.Interval(),
	)
	s.publishLifecycle(ctx, EventReservationCreated, reservation)
	return nil
}

// validateOnly runs the admission chain without the slot lock for requests
// whose lock key cannot be derived. Shape validation fails first, so no
// repository state is touched.
func (s *reservationService) validateOnly(ctx context.Context, reservation *model.Reservation) error {
	if err := s.validator.ValidateCreate(ctx, reservation); err != nil {
		return err
	}
	return apperrors.InvalidInput("Reservation is missing room or date")
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	return reservation, nil
}

func (s *reservationService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error) {
	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count reservations", "error", errCount)
			errCount = apperrors.Internal("Failed to count reservations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list reservations", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve reservations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, count, nil
}

// Update replaces a reservation wholesale and re-validates it as if it
// were new. Only the target slot is locked: vacating the old slot cannot
// create a conflict there, and a single lock key rules out lock-ordering
// deadlocks.
func (s *reservationService) Update(ctx context.Context, id string, reservation *model.Reservation) error {
	if id == "" {
		return apperrors.InvalidInput("Reservation ID cannot be empty")
	}
	if reservation.Date == "" || reservation.RoomID == "" {
		return s.validateOnly(ctx, reservation)
	}

	lockID, err := s.acquireSlotLock(ctx, reservation.RoomID, reservation.Date)
	if err != nil {
		return err
	}
	defer s.releaseSlotLock(lockID)

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.FindByID(sessCtx, id)
		if err != nil {
			return s.mapLookupError(err, id)
		}

		reservation.ID = id
		reservation.CreatedAt = existing.CreatedAt

		if err := s.validator.ValidateUpdate(sessCtx, reservation, id); err != nil {
			return err
		}
		if err := s.repo.Replace(sessCtx, id, reservation); err != nil {
			return apperrors.Internal("Failed to update reservation", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update reservation", "id", id, "error", err)
		return err
	}

	s.cfg.Log.Info("Reservation updated successfully",
		"id", id,
		"room_id", reservation.RoomID,
		"date", reservation.Date,
		"interval", reservation.Interval(),
	)
	s.publishLifecycle(ctx, EventReservationUpdated, reservation)
	return nil
}

func (s *reservationService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapLookupError(err, id)
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Delete(sessCtx, id); err != nil {
			return s.mapLookupError(err, id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cfg.Log.Info("Reservation deleted successfully", "id", id)
	s.publishLifecycle(ctx, EventReservationDeleted, existing)
	return nil
}

func (s *reservationService) SearchByRoomAndDate(ctx context.Context, roomID, date string, limit int, offset int64) ([]*model.Reservation, int64, error) {
	if roomID == "" || date == "" {
		return nil, 0, apperrors.InvalidInput("room_id and date are required")
	}
	if err := validateDate(date); err != nil {
		return nil, 0, err
	}

	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountByRoomAndDate(ctx, roomID, date)
		if err != nil {
			s.cfg.Log.Error("Failed to count reservations by search",
				"room_id", roomID,
				"date", date,
				"error", err,
			)
			errCount = apperrors.Internal("Failed to count reservations", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		reservations, err = s.repo.FindByRoomAndDate(ctx, roomID, date, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to search reservations",
				"room_id", roomID,
				"date", date,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to search reservations", err)
		}
	}()

	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, count, nil
}

// FindByRequester lists a requester's reservations across all rooms and
// dates.
func (s *reservationService) FindByRequester(ctx context.Context, requesterID string, limit int, offset int64) ([]*model.Reservation, int64, error) {
	if requesterID == "" {
		return nil, 0, apperrors.InvalidInput("Requester ID cannot be empty")
	}

	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountByRequester(ctx, requesterID)
		if err != nil {
			s.cfg.Log.Error("Failed to count reservations by requester",
				"requester_id", requesterID,
				"error", err,
			)
			errCount = apperrors.Internal("Failed to count reservations", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		reservations, err = s.repo.FindByRequester(ctx, requesterID, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list reservations by requester",
				"requester_id", requesterID,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve reservations", err)
		}
	}()

	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, count, nil
}

// FindConflicts is a read-only probe: it reports which reservations an
// interval would collide with, without reserving anything. A non-empty
// excludeID leaves that reservation out, so previewing a move of an
// existing reservation never reports the reservation itself. It runs
// outside the slot lock, so the answer can be stale by the time a create
// lands.
func (s *reservationService) FindConflicts(ctx context.Context, roomID, date, startTime, endTime, excludeID string) ([]*model.Reservation, error) {
	if roomID == "" || date == "" || startTime == "" || endTime == "" {
		return nil, apperrors.InvalidInput("room_id, date, start_time and end_time are required")
	}
	if err := validateDate(date); err != nil {
		return nil, err
	}
	if err := validateInterval(startTime, endTime); err != nil {
		return nil, err
	}

	var candidates []*model.Reservation
	var err error
	if excludeID == "" {
		candidates, err = s.repo.OverlapsForCreate(ctx, roomID, date, startTime, endTime)
	} else {
		candidates, err = s.repo.OverlapsForUpdate(ctx, roomID, date, startTime, endTime, excludeID)
	}
	if err != nil {
		if errors.Is(err, reservationerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid reservation ID format")
		}
		return nil, apperrors.Internal("Failed to find conflicting reservations", err)
	}

	conflicts := validator.FilterOverlapping(candidates, startTime, endTime, excludeID)
	if conflicts == nil {
		conflicts = []*model.Reservation{}
	}
	return conflicts, nil
}

func (s *reservationService) DeleteByRoom(ctx context.Context, roomID string) (int64, error) {
	if roomID == "" {
		return 0, apperrors.InvalidInput("Room ID cannot be empty")
	}

	deleted, err := s.repo.DeleteByRoom(ctx, roomID)
	if err != nil {
		s.cfg.Log.Error("Failed to purge reservations by room", "room_id", roomID, "error", err)
		return 0, apperrors.Internal("Failed to purge reservations", err)
	}

	s.cfg.Log.Info("Reservations purged by room", "room_id", roomID, "deleted", deleted)
	s.publishPurge(ctx, roomID, purgeEvent{RoomID: roomID, Deleted: deleted})
	return deleted, nil
}

func (s *reservationService) DeleteByRequester(ctx context.Context, requesterID string) (int64, error) {
	if requesterID == "" {
		return 0, apperrors.InvalidInput("Requester ID cannot be empty")
	}

	deleted, err := s.repo.DeleteByRequester(ctx, requesterID)
	if err != nil {
		s.cfg.Log.Error("Failed to purge reservations by requester", "requester_id", requesterID, "error", err)
		return 0, apperrors.Internal("Failed to purge reservations", err)
	}

	s.cfg.Log.Info("Reservations purged by requester", "requester_id", requesterID, "deleted", deleted)
	s.publishPurge(ctx, requesterID, purgeEvent{RequesterID: requesterID, Deleted: deleted})
	return deleted, nil
}

// --- Helpers ---

func (s *reservationService) mapLookupError(err error, id string) error {
	if errors.Is(err, reservationerrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Reservation", id)
	}
	if errors.Is(err, reservationerrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid reservation ID format")
	}
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Internal("Failed to retrieve reservation", err)
}

// acquireSlotLock takes the per-(room, date) exclusion, polling while
// another request holds it. Gives up with a Busy error once LockWaitTimeout
// elapses or the caller's context ends.
func (s *reservationService) acquireSlotLock(ctx context.Context, roomID, date string) (string, error) {
	lockID := repository.SlotLockID(roomID, date)
	deadline := time.Now().Add(s.cfg.LockWaitTimeout)

	for {
		err := s.lockRepo.Acquire(ctx, lockID, s.cfg.LockTTL)
		if err == nil {
			return lockID, nil
		}
		if !errors.Is(err, reservationerrors.ErrLockHeld) {
			return "", apperrors.Internal("Failed to acquire slot lock", err)
		}

		if time.Now().After(deadline) {
			s.cfg.Log.Warn("Slot lock wait timed out",
				"lock_id", lockID,
				"wait_timeout", s.cfg.LockWaitTimeout,
			)
			return "", apperrors.Busy("Slot is being modified by another request. Please retry.")
		}

		select {
		case <-ctx.Done():
			return "", apperrors.Busy("Slot is being modified by another request. Please retry.")
		case <-time.After(s.cfg.LockRetryInterval):
		}
	}
}

// releaseSlotLock runs on every exit path. Uses a fresh context so the
// lock is freed even when the request context is already cancelled.
func (s *reservationService) releaseSlotLock(lockID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.lockRepo.Release(ctx, lockID); err != nil {
		s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", err)
	}
}

func validateDate(date string) error {
	if _, err := time.Parse(clock.DateLayout, date); err != nil {
		return apperrors.InvalidInput("invalid date format, must be YYYY-MM-DD")
	}
	return nil
}

func validateInterval(startTime, endTime string) error {
	if _, err := time.Parse(clock.TimeLayout, startTime); err != nil {
		return apperrors.InvalidInput("invalid start_time format, must be HH:MM")
	}
	if _, err := time.Parse(clock.TimeLayout, endTime); err != nil {
		return apperrors.InvalidInput("invalid end_time format, must be HH:MM")
	}
	if startTime >= endTime {
		return apperrors.InvalidInput("start_time must be before end_time")
	}
	return nil
}
