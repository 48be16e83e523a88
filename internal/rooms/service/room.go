package service

import (
	"context"
	"errors"
	roomserrors "roomly/internal/rooms/errors"
	"roomly/internal/rooms/repository"
	"roomly/internal/rooms/validator"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/model"
	"sync"
)

type RoomService interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id string) (*model.Room, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error)
	Update(ctx context.Context, id string, room *model.Room) error
	GetAvailability(ctx context.Context, id string) (*model.RoomAvailability, error)
	SetAvailability(ctx context.Context, id string, availability *model.RoomAvailability) error
	Delete(ctx context.Context, id string) (int64, error)
	Search(ctx context.Context, minCapacity int, available *bool, limit int, offset int64) ([]*model.Room, int64, error)
}

// ReservationPurger removes all reservations referencing a room. Implemented
// by the reservations service client.
type ReservationPurger interface {
	DeleteByRoom(ctx context.Context, roomID string) (int64, error)
}

type roomService struct {
	repo         repository.RoomRepository
	validator    *validator.RoomValidator
	reservations ReservationPurger
	cfg          *config.Config
}

func NewRoomService(
	repo repository.RoomRepository,
	roomValidator *validator.RoomValidator,
	reservations ReservationPurger,
	cfg *config.Config,
) RoomService {
	return &roomService{
		repo:         repo,
		validator:    roomValidator,
		reservations: reservations,
		cfg:          cfg,
	}
}

func (s *roomService) Create(ctx context.Context, room *model.Room) error {
	if err := s.validate(room); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, room); err != nil {
		s.cfg.Log.Error("Failed to create room", "name", room.Name, "error", err)
		return apperrors.Internal("Failed to create room", err)
	}

	s.cfg.Log.Info("Room created successfully",
		"id", room.ID,
		"name", room.Name,
		"capacity", room.Capacity,
	)
	return nil
}

func (s *roomService) GetByID(ctx context.Context, id string) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	return room, nil
}

func (s *roomService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error) {
	var count int64
	var rooms []*model.Room
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count rooms", "error", errCount)
			errCount = apperrors.Internal("Failed to count rooms", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		rooms, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list rooms", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve rooms", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return rooms, count, nil
}

// Update is a full replacement of the room's mutable fields.
func (s *roomService) Update(ctx context.Context, id string, room *model.Room) error {
	if id == "" {
		return apperrors.InvalidInput("Room ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapLookupError(err, id)
	}

	room.ID = id
	room.CreatedAt = existing.CreatedAt

	if err := s.validate(room); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, id, room); err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Room", id)
		}
		s.cfg.Log.Error("Failed to update room", "id", id, "error", err)
		return apperrors.Internal("Failed to update room", err)
	}

	s.cfg.Log.Info("Room updated successfully", "id", id, "name", room.Name)
	return nil
}

func (s *roomService) GetAvailability(ctx context.Context, id string) (*model.RoomAvailability, error) {
	room, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.RoomAvailability{Available: &room.Available}, nil
}

func (s *roomService) SetAvailability(ctx context.Context, id string, availability *model.RoomAvailability) error {
	if id == "" {
		return apperrors.InvalidInput("Room ID cannot be empty")
	}

	if err := s.validator.ValidateAvailability(availability); err != nil {
		s.cfg.Log.Warn("Room availability validation failed", "id", id, "error", err)
		return apperrors.Validation("Room availability validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.UpdateAvailability(ctx, id, *availability.Available); err != nil {
		return s.mapLookupError(err, id)
	}

	s.cfg.Log.Info("Room availability updated", "id", id, "available", *availability.Available)
	return nil
}

// Delete removes a room and cascades to its reservations: no reservation
// may reference a missing room. The room goes first so no new reservations
// can be admitted against it while the purge runs.
func (s *roomService) Delete(ctx context.Context, id string) (int64, error) {
	if id == "" {
		return 0, apperrors.InvalidInput("Room ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return 0, s.mapLookupError(err, id)
	}

	deleted, err := s.reservations.DeleteByRoom(ctx, id)
	if err != nil {
		// Room is gone but its reservations may remain. Surface the failure
		// so the caller retries the purge.
		s.cfg.Log.Error("Room deleted but reservation purge failed", "id", id, "error", err)
		if apperrors.IsAppError(err) {
			return 0, err
		}
		return 0, apperrors.Internal("Room deleted but reservation purge failed", err)
	}

	s.cfg.Log.Info("Room deleted successfully", "id", id, "deleted_reservations", deleted)
	return deleted, nil
}

func (s *roomService) Search(ctx context.Context, minCapacity int, available *bool, limit int, offset int64) ([]*model.Room, int64, error) {
	if minCapacity < 0 {
		return nil, 0, apperrors.InvalidInput("min_capacity cannot be negative")
	}

	var count int64
	var rooms []*model.Room
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountSearch(ctx, minCapacity, available)
		if err != nil {
			s.cfg.Log.Error("Failed to count rooms by search", "error", err)
			errCount = apperrors.Internal("Failed to count rooms", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		rooms, err = s.repo.Search(ctx, minCapacity, available, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to search rooms", "error", err)
			errFind = apperrors.Internal("Failed to search rooms", err)
		}
	}()

	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return rooms, count, nil
}

func (s *roomService) validate(room *model.Room) error {
	if err := s.validator.Validate(room); err != nil {
		s.cfg.Log.Warn("Room validation failed", "name", room.Name, "error", err)
		return apperrors.Validation("Room validation failed", map[string]any{
			"error": err.Error(),
		})
	}
	return nil
}

func (s *roomService) mapLookupError(err error, id string) error {
	if errors.Is(err, roomserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Room", id)
	}
	if errors.Is(err, roomserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid room ID format")
	}
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Internal("Failed to retrieve room", err)
}
