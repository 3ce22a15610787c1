package models

import (
	"time"

	"github.com/lib/pq"
)

// CourseApplication is the per-candidate record of applied courses.
// Intended cardinality is one row per user; duplicate rows are tolerated by
// every read path. The row is created lazily with an empty set and its
// contents shrink to empty rather than the row being deleted.
type CourseApplication struct {
	ID        string         `db:"id" json:"id"`
	UserID    string         `db:"user_id" json:"user_id"`
	CourseIDs pq.StringArray `db:"course_ids" json:"course_ids"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// TutorSelection is the per-lecturer record of chosen tutors. Membership is
// what matters; display order lives in TutorOrder.
type TutorSelection struct {
	ID         string         `db:"id" json:"id"`
	LecturerID string         `db:"lecturer_id" json:"lecturer_id"`
	TutorIDs   pq.StringArray `db:"tutor_ids" json:"tutor_ids"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}

// TutorOrder is a lecturer's persisted display order over their selection.
// It is persisted separately from TutorSelection so reordering never rewrites
// the selection relation, and it is fully overwritten on each commit.
type TutorOrder struct {
	ID        string         `db:"id" json:"id"`
	UserID    string         `db:"user_id" json:"user_id"`
	TutorIDs  pq.StringArray `db:"tutor_ids" json:"tutor_ids"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}
