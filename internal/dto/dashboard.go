package dto

// CourseCandidates lists the lecturer-confirmed candidates for a course.
// Every course in the system is present, empty candidate lists included.
type CourseCandidates struct {
	CourseID   string           `json:"course_id"`
	Title      string           `json:"title"`
	Candidates []CandidateBrief `json:"candidates"`
}

// CandidateBrief is the compact candidate representation used by dashboards.
type CandidateBrief struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
