package model

import "time"

// ReservationLock is an advisory lock document that serialises booking
// writes for one unit across service replicas.
type ReservationLock struct {
	ID        string    `bson:"_id" json:"id"`
	Token     string    `bson:"token" json:"token"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
