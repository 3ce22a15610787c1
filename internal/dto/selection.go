package dto

// SetApplicationsRequest replaces a candidate's applied-course set in full.
// An empty list withdraws every application.
type SetApplicationsRequest struct {
	CourseIDs []string `json:"course_ids"`
}

// SaveCommentRequest writes a lecturer's note about a tutor, replacing any
// previous note for the same pair.
type SaveCommentRequest struct {
	Comment string `json:"comment" validate:"required"`
}
