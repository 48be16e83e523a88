package service

import (
	"context"
	"errors"
	requestererrors "roomly/internal/requesters/errors"
	"roomly/internal/requesters/repository"
	"roomly/internal/requesters/validator"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/model"
	"strings"
	"sync"
)

type RequesterService interface {
	Create(ctx context.Context, requester *model.Requester) error
	GetByID(ctx context.Context, id string) (*model.Requester, error)
	GetByEmail(ctx context.Context, email string) (*model.Requester, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Requester, int64, error)
	Update(ctx context.Context, id string, requester *model.Requester) error
	Delete(ctx context.Context, id string) (int64, error)
}

// ReservationPurger removes all reservations referencing a requester.
// Implemented by the reservations service client.
type ReservationPurger interface {
	DeleteByRequester(ctx context.Context, requesterID string) (int64, error)
}

type requesterService struct {
	repo         repository.RequesterRepository
	validator    *validator.RequesterValidator
	reservations ReservationPurger
	cfg          *config.Config
}

func NewRequesterService(
	repo repository.RequesterRepository,
	requesterValidator *validator.RequesterValidator,
	reservations ReservationPurger,
	cfg *config.Config,
) RequesterService {
	return &requesterService{
		repo:         repo,
		validator:    requesterValidator,
		reservations: reservations,
		cfg:          cfg,
	}
}

func (s *requesterService) Create(ctx context.Context, requester *model.Requester) error {
	s.normalize(requester)

	if err := s.validate(requester); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, requester); err != nil {
		if errors.Is(err, requestererrors.ErrDuplicateEmail) {
			return apperrors.Duplicate("email", requester.Email)
		}
		s.cfg.Log.Error("Failed to create requester", "email", requester.Email, "error", err)
		return apperrors.Internal("Failed to create requester", err)
	}

	s.cfg.Log.Info("Requester created successfully",
		"id", requester.ID,
		"email", requester.Email,
	)
	return nil
}

func (s *requesterService) GetByID(ctx context.Context, id string) (*model.Requester, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Requester ID cannot be empty")
	}

	requester, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	return requester, nil
}

func (s *requesterService) GetByEmail(ctx context.Context, email string) (*model.Requester, error) {
	if email == "" {
		return nil, apperrors.InvalidInput("Email cannot be empty")
	}

	requester, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, requestererrors.ErrNotFound) {
			return nil, apperrors.NotFound("Requester")
		}
		return nil, apperrors.Internal("Failed to retrieve requester by email", err)
	}

	return requester, nil
}

func (s *requesterService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Requester, int64, error) {
	var count int64
	var requesters []*model.Requester
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count requesters", "error", errCount)
			errCount = apperrors.Internal("Failed to count requesters", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		requesters, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list requesters", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve requesters", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return requesters, count, nil
}

// Update is a full replacement of the requester's mutable fields.
func (s *requesterService) Update(ctx context.Context, id string, requester *model.Requester) error {
	if id == "" {
		return apperrors.InvalidInput("Requester ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapLookupError(err, id)
	}

	requester.ID = id
	requester.CreatedAt = existing.CreatedAt
	s.normalize(requester)

	if err := s.validate(requester); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, id, requester); err != nil {
		if errors.Is(err, requestererrors.ErrDuplicateEmail) {
			return apperrors.Duplicate("email", requester.Email)
		}
		if errors.Is(err, requestererrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Requester", id)
		}
		s.cfg.Log.Error("Failed to update requester", "id", id, "error", err)
		return apperrors.Internal("Failed to update requester", err)
	}

	s.cfg.Log.Info("Requester updated successfully", "id", id, "email", requester.Email)
	return nil
}

// Delete removes a requester and cascades to their reservations. The
// requester goes first so no new reservations can be admitted for them
// while the purge runs.
func (s *requesterService) Delete(ctx context.Context, id string) (int64, error) {
	if id == "" {
		return 0, apperrors.InvalidInput("Requester ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return 0, s.mapLookupError(err, id)
	}

	deleted, err := s.reservations.DeleteByRequester(ctx, id)
	if err != nil {
		s.cfg.Log.Error("Requester deleted but reservation purge failed", "id", id, "error", err)
		if apperrors.IsAppError(err) {
			return 0, err
		}
		return 0, apperrors.Internal("Requester deleted but reservation purge failed", err)
	}

	s.cfg.Log.Info("Requester deleted successfully", "id", id, "deleted_reservations", deleted)
	return deleted, nil
}

func (s *requesterService) normalize(requester *model.Requester) {
	requester.Name = strings.TrimSpace(requester.Name)
	requester.Email = strings.ToLower(strings.TrimSpace(requester.Email))
	requester.Role = strings.TrimSpace(requester.Role)
}

func (s *requesterService) validate(requester *model.Requester) error {
	if err := s.validator.Validate(requester); err != nil {
		s.cfg.Log.Warn("Requester validation failed", "email", requester.Email, "error", err)
		return apperrors.Validation("Requester validation failed", map[string]any{
			"error": err.Error(),
		})
	}
	return nil
}

func (s *requesterService) mapLookupError(err error, id string) error {
	if errors.Is(err, requestererrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Requester", id)
	}
	if errors.Is(err, requestererrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid requester ID format")
	}
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Internal("Failed to retrieve requester", err)
}
