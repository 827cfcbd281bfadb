package models

type UserRole string

const (
	RoleRecruiter   UserRole = "recruiter"
	RoleInterviewee UserRole = "interviewee"
)

// IsValidRole reports whether the role is one of the two roles the
// platform knows about.
func IsValidRole(role UserRole) bool {
	return role == RoleRecruiter || role == RoleInterviewee
}

type User struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	PasswordHash string   `json:"-"`
	Role         UserRole `json:"role"`
}

// PublicProfile is the candidate-facing subset of a user record exposed
// alongside submissions.
type PublicProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u User) Profile() PublicProfile {
	return PublicProfile{ID: u.ID, Name: u.Name, Email: u.Email}
}
