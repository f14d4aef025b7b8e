package models

import "time"

// Profile is one coached user. CreatedAt is the account creation time that
// drives the honeymoon window.
type Profile struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	CreatedAt   time.Time  `json:"created_at"`
	LastSweepAt *time.Time `json:"last_sweep_at"`
}
