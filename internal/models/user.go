package models

import "time"

// UserProfile is a denormalized user record cached on the device.
type UserProfile struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone,omitempty"`
	Plan     string    `json:"plan,omitempty"`
	JoinedAt time.Time `json:"joinedAt,omitempty"`
}
