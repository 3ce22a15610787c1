package dto

import "github.com/tutorhub/selection-api/internal/models"

// CourseRoster lists the candidates who applied to a course, regardless of
// whether any lecturer has chosen them.
type CourseRoster struct {
	CourseID   string   `json:"course_id"`
	Code       string   `json:"code"`
	Title      string   `json:"title"`
	Candidates []string `json:"candidates"`
}

// Candidate pairs a user with their profile for lecturer-facing pools.
type Candidate struct {
	User    models.User     `json:"user"`
	Profile *models.Profile `json:"profile,omitempty"`
}
