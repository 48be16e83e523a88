package model

import "time"

// Room is a bookable physical space. Availability is toggled by operators
// independently of any reservations the room carries.
type Room struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Capacity  int       `json:"capacity" bson:"capacity" validate:"required,min=1"`
	Location  string    `json:"location" bson:"location" validate:"required,min=3,max=200"`
	Available bool      `json:"available" bson:"available"`
	CreatedAt time.Time `json:"created_at,omitempty" bson:"created_at" validate:"omitempty"`
}

// RoomAvailability is the payload for toggling a room's availability flag.
type RoomAvailability struct {
	Available *bool `json:"available" validate:"required"`
}
