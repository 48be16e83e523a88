package validator

import (
	"context"
	"errors"
	"fmt"
	"roomly/pkg/clock"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/logger"
	"roomly/pkg/model"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// RoomDirectory resolves room references during validation.
type RoomDirectory interface {
	GetRoom(ctx context.Context, id string) (*model.Room, error)
}

// RequesterDirectory resolves requester references during validation.
type RequesterDirectory interface {
	GetRequester(ctx context.Context, id string) (*model.Requester, error)
}

// ConflictSource supplies same-room same-day reservations that may collide
// with a requested interval. Create and update are distinct call shapes so
// callers never pass sentinel exclude IDs.
type ConflictSource interface {
	OverlapsForCreate(ctx context.Context, roomID, date, startTime, endTime string) ([]*model.Reservation, error)
	OverlapsForUpdate(ctx context.Context, roomID, date, startTime, endTime, excludeID string) ([]*model.Reservation, error)
}

// ReservationValidator runs the admission chain for a reservation request.
// Checks run in a fixed order and the first failure wins: struct shape,
// requester exists, room exists and is available, date not in the past,
// start before end, no overlap with existing reservations.
type ReservationValidator struct {
	validate   *validator.Validate
	rooms      RoomDirectory
	requesters RequesterDirectory
	conflicts  ConflictSource
	clock      clock.Clock
	logger     *logger.Logger
}

func NewReservationValidator(
	rooms RoomDirectory,
	requesters RequesterDirectory,
	conflicts ConflictSource,
	clk clock.Clock,
	log *logger.Logger,
) *ReservationValidator {
	return &ReservationValidator{
		validate:   validator.New(),
		rooms:      rooms,
		requesters: requesters,
		conflicts:  conflicts,
		clock:      clk,
		logger:     log,
	}
}

func (v *ReservationValidator) ValidateCreate(ctx context.Context, reservation *model.Reservation) error {
	if err := v.checkShape(reservation); err != nil {
		return err
	}
	if err := v.checkReferences(ctx, reservation); err != nil {
		return err
	}
	if err := v.checkTemporal(reservation); err != nil {
		return err
	}

	candidates, err := v.conflicts.OverlapsForCreate(ctx, reservation.RoomID, reservation.Date, reservation.StartTime, reservation.EndTime)
	if err != nil {
		return apperrors.Internal("Failed to check existing reservations", err)
	}
	return v.checkConflicts(reservation, FilterOverlapping(candidates, reservation.StartTime, reservation.EndTime, ""))
}

// ValidateUpdate runs the same chain as ValidateCreate but excludes the
// reservation being replaced from conflict detection, so an update that
// keeps (or shrinks) its own interval is never self-conflicting.
func (v *ReservationValidator) ValidateUpdate(ctx context.Context, reservation *model.Reservation, id string) error {
	if err := v.checkShape(reservation); err != nil {
		return err
	}
	if err := v.checkReferences(ctx, reservation); err != nil {
		return err
	}
	if err := v.checkTemporal(reservation); err != nil {
		return err
	}

	candidates, err := v.conflicts.OverlapsForUpdate(ctx, reservation.RoomID, reservation.Date, reservation.StartTime, reservation.EndTime, id)
	if err != nil {
		return apperrors.Internal("Failed to check existing reservations", err)
	}
	return v.checkConflicts(reservation, FilterOverlapping(candidates, reservation.StartTime, reservation.EndTime, id))
}

func (v *ReservationValidator) checkShape(reservation *model.Reservation) error {
	if err := v.validate.Struct(reservation); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			translated := v.translateValidationErrors(validationErrs)
			return apperrors.Validation("Reservation validation failed", map[string]any{"error": translated.Error()})
		}
		return apperrors.Internal("Reservation validation failed", err)
	}
	return nil
}

func (v *ReservationValidator) checkReferences(ctx context.Context, reservation *model.Reservation) error {
	if _, err := v.requesters.GetRequester(ctx, reservation.RequesterID); err != nil {
		return err
	}

	room, err := v.rooms.GetRoom(ctx, reservation.RoomID)
	if err != nil {
		return err
	}
	if !room.Available {
		return apperrors.Validation("Room is not available for booking", map[string]any{
			"room_id": reservation.RoomID,
		})
	}
	return nil
}

func (v *ReservationValidator) checkTemporal(reservation *model.Reservation) error {
	if reservation.Date < v.clock.Today() {
		return apperrors.Validation("Reservation date must not be in the past", map[string]any{
			"date":  reservation.Date,
			"today": v.clock.Today(),
		})
	}

	if reservation.StartTime >= reservation.EndTime {
		return apperrors.Validation("Start time must be before end time", map[string]any{
			"start_time": reservation.StartTime,
			"end_time":   reservation.EndTime,
		})
	}
	return nil
}

func (v *ReservationValidator) checkConflicts(reservation *model.Reservation, conflicts []*model.Reservation) error {
	if len(conflicts) == 0 {
		return nil
	}

	intervals := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		intervals = append(intervals, c.Interval())
	}

	v.logger.Warn("Reservation conflicts with existing bookings",
		"room_id", reservation.RoomID,
		"date", reservation.Date,
		"requested", reservation.Interval(),
		"conflicts", intervals,
	)

	return apperrors.Conflict(fmt.Sprintf("Requested interval %s overlaps existing reservation %s", reservation.Interval(), intervals[0])).WithDetails(map[string]any{
		"room_id":   reservation.RoomID,
		"date":      reservation.Date,
		"requested": reservation.Interval(),
		"conflicts": intervals,
	})
}

// FilterOverlapping returns the candidates whose half-open interval
// [start, end) intersects the requested one, sorted by start time. A
// candidate matching excludeID is skipped. Pure function: the same inputs
// always give the same result, so a conflict probe and the admission check
// agree by construction.
func FilterOverlapping(candidates []*model.Reservation, startTime, endTime, excludeID string) []*model.Reservation {
	var conflicts []*model.Reservation
	for _, c := range candidates {
		if excludeID != "" && c.ID == excludeID {
			continue
		}
		if overlaps(c.StartTime, c.EndTime, startTime, endTime) {
			conflicts = append(conflicts, c)
		}
	}
	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].StartTime < conflicts[j].StartTime
	})
	return conflicts
}

// overlaps applies the half-open interval rule: [s1, e1) and [s2, e2)
// intersect iff s1 < e2 && e1 > s2. Back-to-back intervals sharing an
// endpoint do not overlap. Times are fixed-width "HH:MM" strings, so
// lexicographic comparison matches chronological order.
func overlaps(start1, end1, start2, end2 string) bool {
	return start1 < end2 && end1 > start2
}

func (v *ReservationValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "datetime":
			message = fmt.Sprintf("%s must match format %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
