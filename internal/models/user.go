package models

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleFaculty UserRole = "faculty"
)

func (r UserRole) Valid() bool {
	return r == RoleStudent || r == RoleFaculty
}

// Identity is the caller as reported by the fronting gateway. It is an opaque
// value; the service performs no authentication of its own.
type Identity struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Role UserRole `json:"role"`
}

// Key is the value submissions are matched against when listing a student's
// own evaluations: the display name when present, the id otherwise.
func (i Identity) Key() string {
	if i.Name != "" {
		return i.Name
	}
	return i.ID
}

func (i Identity) IsFaculty() bool {
	return i.Role == RoleFaculty
}
