package model

import "time"

// Requester is the party a reservation is made for. Email is unique across
// all requesters; the requesters service enforces it.
type Requester struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email     string    `json:"email" bson:"email" validate:"required,email,max=150"`
	Role      string    `json:"role" bson:"role" validate:"required,min=3,max=50"`
	CreatedAt time.Time `json:"created_at,omitempty" bson:"created_at" validate:"omitempty"`
}
