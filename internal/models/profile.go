package models

import (
	"time"

	"github.com/lib/pq"
)

// Profile holds the public-facing candidate/tutor profile for a user.
// TimesSelected is a denormalized counter of how many lecturers currently
// include the user in their selection; it is a cache of a derivable quantity
// and must never be treated as the source of truth.
type Profile struct {
	ID            string         `db:"id" json:"id"`
	UserID        string         `db:"user_id" json:"user_id"`
	About         string         `db:"about" json:"about"`
	PictureURI    string         `db:"picture_uri" json:"picture_uri"`
	Availability  string         `db:"availability" json:"availability"`
	Skills        pq.StringArray `db:"skills" json:"skills"`
	PrevRoles     pq.StringArray `db:"prev_roles" json:"prev_roles"`
	Credentials   pq.StringArray `db:"credentials" json:"credentials"`
	TimesSelected int            `db:"times_selected" json:"times_selected"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}
