package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type createUserRequest struct {
	FirstName string     `json:"firstName" validate:"required"`
	LastName  string     `json:"lastName"  validate:"required"`
	Email     string     `json:"email"     validate:"required,email"`
	Password  string     `json:"password"  validate:"required,min=6"`
	Roles     []roleName `json:"roles"`
}

type updateUserRequest struct {
	FirstName string     `json:"firstName" validate:"required"`
	LastName  string     `json:"lastName"  validate:"required"`
	Email     string     `json:"email"     validate:"required,email"`
	Password  string     `json:"password"  validate:"omitempty,min=6"`
	Roles     []roleName `json:"roles"`
}

// roleName matches the wire shape of a role reference: the id is optional
// and ignored on input, only the name participates in resolution.
type roleName struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name" validate:"required"`
}

type roleResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// userResponse is the outward user view. The password hash has no field
// here: no response path can leak it.
type userResponse struct {
	ID        int64          `json:"id"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Email     string         `json:"email"`
	Roles     []roleResponse `json:"roles"`
}

func roleNames(roles []roleName) []string {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		if r.Name != "" {
			names = append(names, r.Name)
		}
	}
	return names
}
