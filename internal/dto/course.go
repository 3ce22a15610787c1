package dto

// CreateCourseRequest carries a new course definition.
type CreateCourseRequest struct {
	Code       string  `json:"code" validate:"required"`
	Title      string  `json:"title" validate:"required"`
	LecturerID *string `json:"lecturer_id"`
}

// UpdateCourseRequest carries mutable course fields. Nil means leave the
// field untouched.
type UpdateCourseRequest struct {
	Code  *string `json:"code"`
	Title *string `json:"title"`
}

// AssignLecturerRequest binds a lecturer to a course.
type AssignLecturerRequest struct {
	LecturerID string `json:"lecturer_id" validate:"required"`
}
