package service

import (
	"context"
	"roomly/pkg/kafka"
	"roomly/pkg/model"
	"time"
)

// Reservation lifecycle event types.
const (
	EventReservationCreated = "reservation.created"
	EventReservationUpdated = "reservation.updated"
	EventReservationDeleted = "reservation.deleted"
	EventReservationsPurged = "reservations.purged"
)

const eventSource = "reservations"

// EventPublisher emits reservation lifecycle events. Publishing is best
// effort: a failed publish is logged and never fails the booking operation.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type reservationEvent struct {
	Reservation *model.Reservation `json:"reservation,omitempty"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

type purgeEvent struct {
	RoomID      string    `json:"room_id,omitempty"`
	RequesterID string    `json:"requester_id,omitempty"`
	Deleted     int64     `json:"deleted"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func (s *reservationService) publishLifecycle(ctx context.Context, eventType string, reservation *model.Reservation) {
	if s.events == nil {
		return
	}

	// Key on room and day so all events for one slot keep partition order.
	msg := kafka.NewMessage().
		WithKey(reservation.RoomID + ":" + reservation.Date).
		WithEventType(eventType).
		WithSource(eventSource).
		WithValue(reservationEvent{
			Reservation: reservation,
			OccurredAt:  time.Now().UTC(),
		}).
		Build()

	if err := s.events.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish reservation event",
			"event_type", eventType,
			"reservation_id", reservation.ID,
			"error", err,
		)
	}
}

func (s *reservationService) publishPurge(ctx context.Context, key string, event purgeEvent) {
	if s.events == nil {
		return
	}

	event.OccurredAt = time.Now().UTC()
	msg := kafka.NewMessage().
		WithKey(key).
		WithEventType(EventReservationsPurged).
		WithSource(eventSource).
		WithValue(event).
		Build()

	if err := s.events.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish purge event",
			"key", key,
			"deleted", event.Deleted,
			"error", err,
		)
	}
}
