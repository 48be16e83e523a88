package model

import (
	"time"
)

// Reservation is a claim on one room for one requester over the half-open
// interval [start_time, end_time) on a single calendar day. Date and times
// are stored as fixed-width strings ("2006-01-02", "15:04") so that
// lexicographic range queries on the (room_id, date, start_time) index order
// the same way the wall clock does.
type Reservation struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	RoomID      string    `json:"room_id" bson:"room_id" validate:"required,mongodb"`
	RequesterID string    `json:"requester_id" bson:"requester_id" validate:"required,mongodb"`
	Date        string    `json:"date" bson:"date" validate:"required,datetime=2006-01-02"`
	StartTime   string    `json:"start_time" bson:"start_time" validate:"required,datetime=15:04"`
	EndTime     string    `json:"end_time" bson:"end_time" validate:"required,datetime=15:04"`
	CreatedAt   time.Time `json:"created_at,omitempty" bson:"created_at" validate:"omitempty"`
}

// Interval renders the reservation's slot as "HH:MM-HH:MM" for messages.
func (r *Reservation) Interval() string {
	return r.StartTime + "-" + r.EndTime
}
