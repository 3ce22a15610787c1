package models

import "time"

// Comment is a lecturer's private note about a tutor. Identity is the
// (lecturer, tutor) pair; saving a new comment for an existing pair replaces
// the previous one.
type Comment struct {
	ID         string    `db:"id" json:"id"`
	LecturerID string    `db:"lecturer_id" json:"lecturer_id"`
	TutorID    string    `db:"tutor_id" json:"tutor_id"`
	Comment    string    `db:"comment" json:"comment"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
