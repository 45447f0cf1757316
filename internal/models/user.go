package models

// Role identifies what a user may do once logged in
type Role string

// Role values as they are stored in the Usuarios table
const (
	RolePatient   Role = "Patient"
	RoleCounselor Role = "Counselor"
)

// User is one row of the Usuarios table.
// Passwords are stored and compared in plaintext.
type User struct {
	Username  string `json:"username"`
	Password  string `json:"-"`
	Role      Role   `json:"role"`
	Counselor string `json:"counselor,omitempty"` // set only for patients; not enforced
}

// IsCounselor reports whether the user has the counselor role
func (u User) IsCounselor() bool {
	return u.Role == RoleCounselor
}
