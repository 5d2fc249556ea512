// internal/models/room.go
package models

import "github.com/google/uuid"

// RoomSummary is the public listing entry for a room.
type RoomSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Private     bool      `json:"private"`
	HasPasscode bool      `json:"hasPasscode"`
	SeatCount   int       `json:"seatCount"`
	Occupied    int       `json:"occupied"`
	Phase       string    `json:"phase"`
	MidGameJoin bool      `json:"midGameJoin"`
}
