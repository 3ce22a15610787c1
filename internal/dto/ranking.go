package dto

// CommitOrderRequest carries the full tutor ordering a lecturer committed.
// The ids must be a permutation of the lecturer's current effective order.
type CommitOrderRequest struct {
	TutorIDs []string `json:"tutor_ids" validate:"required"`
}

// RankedTutor is one position in a lecturer's effective order.
type RankedTutor struct {
	Position  int    `json:"position"`
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}
