package models

import "time"

// Course represents a course a lecturer may own and candidates apply to.
// LecturerID is nullable; a course without a lecturer still appears in
// rosters but contributes to no lecturer's candidate pool.
type Course struct {
	ID         string    `db:"id" json:"id"`
	Code       string    `db:"code" json:"code"`
	Title      string    `db:"title" json:"title"`
	LecturerID *string   `db:"lecturer_id" json:"lecturer_id,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
