package dto

// RegisterRequest carries a new account registration.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Role      string `json:"role" validate:"required"`
}

// UpdateUserRequest carries mutable user identity fields. Nil means leave
// the field untouched.
type UpdateUserRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// UpdateProfileRequest carries mutable profile fields.
type UpdateProfileRequest struct {
	About        *string  `json:"about"`
	PictureURI   *string  `json:"picture_uri"`
	Availability *string  `json:"availability"`
	Skills       []string `json:"skills"`
	PrevRoles    []string `json:"prev_roles"`
	Credentials  []string `json:"credentials"`
}
